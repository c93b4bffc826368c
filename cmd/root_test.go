package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRoot(filepath.Join(t.TempDir(), "missing.env"))
	var out, errBuf bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errBuf)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errBuf.String(), err
}

const cdsRecord = `LOCUS       contig000001            1000 bp    DNA     linear
FEATURES             Location/Qualifiers
     CDS             1..300
                     /EC_number="2.2.2.2"
                     /EC_number="1.1.1.1"
     CDS             400..700
                     /EC_number="2.2.2.2"
//
`

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ggutils version "+VERSION+"\n", out)
}

func TestNetCmptCommand(t *testing.T) {
	dir := t.TempDir()
	withEC := filepath.Join(dir, "strainA.gbk")
	empty := filepath.Join(dir, "strainB.gbk")
	require.NoError(t, os.WriteFile(withEC, []byte(cdsRecord), 0o644))
	require.NoError(t, os.WriteFile(empty, []byte(""), 0o644))

	out, _, err := execute(t, "netcmpt", withEC, empty)
	require.NoError(t, err)

	want := filepath.Join(dir, "strainA") + "\t1.1.1.1 2.2.2.2\n" +
		filepath.Join(dir, "strainB") + "\t\n"
	assert.Equal(t, want, out)
}

func TestNetCmptIgnoresAntismashSettings(t *testing.T) {
	t.Setenv("ANTISMASH_CPUS", "0")

	dir := t.TempDir()
	genome := filepath.Join(dir, "g.gbk")
	require.NoError(t, os.WriteFile(genome, []byte(cdsRecord), 0o644))

	out, _, err := execute(t, "netcmpt", genome)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "g")+"\t1.1.1.1 2.2.2.2\n", out)

	out, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ggutils version "+VERSION+"\n", out)
}

func TestNetCmptCommandErrors(t *testing.T) {
	t.Run("NoArguments", func(t *testing.T) {
		out, errOut, err := execute(t, "netcmpt")
		require.Error(t, err)
		assert.Contains(t, out+errOut, "Usage:")
	})

	t.Run("MissingFile", func(t *testing.T) {
		dir := t.TempDir()
		good := filepath.Join(dir, "good.gbk")
		require.NoError(t, os.WriteFile(good, []byte(cdsRecord), 0o644))

		out, errOut, err := execute(t, "netcmpt", good, filepath.Join(dir, "missing.gbk"))
		require.Error(t, err)
		assert.NotContains(t, out, "good\t")
		assert.NotContains(t, out+errOut, "Usage:")
	})
}

func TestBGCCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake antiSMASH is a shell script")
	}

	binDir := t.TempDir()
	root := t.TempDir()

	writeTool := func(name, body string) string {
		path := filepath.Join(binDir, name)
		script := "#!/bin/sh\n" +
			"while [ $# -gt 0 ]; do\n" +
			"  case \"$1\" in\n" +
			"    --output-dir) out=\"$2\"; shift 2 ;;\n" +
			"    *) shift ;;\n" +
			"  esac\n" +
			"done\n" + body + "\n"
		require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
		return path
	}

	good := writeTool("antismash-ok", `echo '{"clusters": [{}, {}]}' > "$out/summary.json"`)
	bad := writeTool("antismash-broken", "exit 3")

	t.Run("FromEnvironment", func(t *testing.T) {
		t.Setenv("ANTISMASH_EXECUTABLE", good)
		t.Setenv("ANTISMASH_TEMP_DIR", root)

		out, _, err := execute(t, "bgc", "genome.fasta")
		require.NoError(t, err)
		assert.Equal(t, "BGCs found: 2\n", out)
	})

	t.Run("FlagOverridesEnvironment", func(t *testing.T) {
		t.Setenv("ANTISMASH_EXECUTABLE", bad)
		t.Setenv("ANTISMASH_TEMP_DIR", root)

		out, _, err := execute(t, "bgc", "--antismash", good, "--cpus", "2", "genome.fasta")
		require.NoError(t, err)
		assert.Equal(t, "BGCs found: 2\n", out)
	})

	t.Run("ToolFailureIsZero", func(t *testing.T) {
		t.Setenv("ANTISMASH_EXECUTABLE", bad)
		t.Setenv("ANTISMASH_TEMP_DIR", root)

		out, _, err := execute(t, "bgc", "genome.fasta")
		require.NoError(t, err)
		assert.Equal(t, "BGCs found: 0\n", out)
	})

	t.Run("BadCPUEnvironment", func(t *testing.T) {
		t.Setenv("ANTISMASH_EXECUTABLE", good)
		t.Setenv("ANTISMASH_TEMP_DIR", root)
		t.Setenv("ANTISMASH_CPUS", "0")

		out, _, err := execute(t, "bgc", "genome.fasta")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ANTISMASH_CPUS")
		assert.NotContains(t, out, "BGCs found")

		// The flag wins over the bad setting
		out, _, err = execute(t, "bgc", "--cpus", "2", "genome.fasta")
		require.NoError(t, err)
		assert.Equal(t, "BGCs found: 2\n", out)
	})

	t.Run("BadCPUFlag", func(t *testing.T) {
		t.Setenv("ANTISMASH_TEMP_DIR", root)
		_, _, err := execute(t, "bgc", "--antismash", good, "--cpus", "0", "genome.fasta")
		assert.Error(t, err)
	})

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBGCCommandArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Missing", []string{"bgc"}},
		{"TooMany", []string{"bgc", "a.fasta", "b.fasta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, out+errOut, "Usage:")
			assert.NotContains(t, out, "BGCs found")
		})
	}
}

// EC number tables for NetCmpt, one genome per line

package netcmpt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yumyai/ggutils/logger"
	"github.com/yumyai/ggutils/pkg/genbank"
	"go.uber.org/zap"
)

const (
	CDSFeature  = "CDS"
	ECQualifier = "EC_number"
)

type GenomeECResult struct {
	GenomeID  string
	ECNumbers []string // sorted, no duplicates
}

// Line formats the result as "<genome_id>\t<ec1> <ec2> ...". A genome with no
// EC numbers still gets its line, ending in the tab.
func (r *GenomeECResult) Line() string {
	return r.GenomeID + "\t" + strings.Join(r.ECNumbers, " ")
}

// GenomeID strips the final extension from path and keeps any directories.
// Leading dots of the file name do not start an extension, so ".gbk" stays
// as it is while "dir.v1/genome" has nothing to strip.
func GenomeID(path string) string {
	nameStart := strings.LastIndexAny(path, "/"+string(filepath.Separator)) + 1
	name := path[nameStart:]

	dot := strings.LastIndex(name, ".")
	if dot <= 0 || strings.Trim(name[:dot], ".") == "" {
		return path
	}
	return path[:nameStart+dot]
}

// collector gathers EC numbers record by record so whole files never have to
// sit in memory.
type collector struct {
	ecs []string
}

func (c *collector) add(rec *genbank.Record) {
	for _, f := range rec.Features {
		if f.Type != CDSFeature {
			continue
		}
		// A CDS may carry several; duplicates are removed once at the end
		c.ecs = append(c.ecs, f.Values(ECQualifier)...)
	}
}

// result sorts lexicographically, so "1.10.2.1" comes before "1.2.3.4".
func (c *collector) result() []string {
	out := slices.Clone(c.ecs)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// CollectECNumbers returns the distinct EC numbers over every CDS in records.
func CollectECNumbers(records []*genbank.Record) []string {
	var c collector
	for _, rec := range records {
		c.add(rec)
	}
	return c.result()
}

// ExtractReader reads GenBank records from r for the genome identified by path.
func ExtractReader(r io.Reader, path string) (*GenomeECResult, error) {
	reader := genbank.NewReader(r, path)

	var c collector
	nrecords := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		nrecords++
		c.add(rec)
	}

	result := &GenomeECResult{
		GenomeID:  GenomeID(path),
		ECNumbers: c.result(),
	}

	logger.Debug("Extracted EC numbers",
		zap.String("file", path),
		zap.String("genome_id", result.GenomeID),
		zap.Int("records", nrecords),
		zap.Int("ec_numbers", len(result.ECNumbers)),
	)

	return result, nil
}

func ExtractFile(path string) (*GenomeECResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer f.Close()

	result, err := ExtractReader(f, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotation file: %w", err)
	}
	return result, nil
}

// Extract processes paths in order and stops at the first file that cannot
// be read or parsed.
func Extract(paths []string) ([]*GenomeECResult, error) {
	results := make([]*GenomeECResult, 0, len(paths))
	for _, path := range paths {
		result, err := ExtractFile(path)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func WriteTable(w io.Writer, results []*GenomeECResult) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := bw.WriteString(r.Line() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Run extracts every path and only then writes the table, so a failed run
// leaves no partial rows behind.
func Run(w io.Writer, paths []string) error {
	results, err := Extract(paths)
	if err != nil {
		return err
	}
	return WriteTable(w, results)
}

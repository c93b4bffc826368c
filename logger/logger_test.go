package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoggingBeforeInit(t *testing.T) {
	// Must not panic
	Info("not initialised", zap.String("k", "v"))
	Debug("not initialised")
}

func TestInitLoggerWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "ggutils.log")

	require.NoError(t, InitLogger(zapcore.InfoLevel, logFile))
	t.Cleanup(func() { zapLog = zap.NewNop() })

	Info("Counted BGCs", zap.String("genome", "strain1.fna"), zap.Int("clusters", 3))
	Debug("below the level")
	_ = Sync()

	raw, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Counted BGCs")
	assert.Contains(t, string(raw), "strain1.fna")
	assert.NotContains(t, string(raw), "below the level")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

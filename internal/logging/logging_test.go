package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFileConfig("warn", FileConfig{}, &buf)
	log.Info("hidden")
	log.Warn("shown", zap.String("path", "a.obj"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "a.obj")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sceneinfo.log")
	fc := DefaultFileConfig(path)
	fc.Compress = false

	log := NewWithFileConfig("debug", fc, nil)
	log.Debug("scene imported", zap.Int("meshes", 3))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "scene imported", entry["msg"])
	assert.EqualValues(t, 3, entry["meshes"])
}

func TestNoOutputs(t *testing.T) {
	log := NewWithFileConfig("debug", FileConfig{}, nil)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}

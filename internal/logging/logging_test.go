package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyflow/backend/internal/config"
)

func TestJSONLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "taskId", "t-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "t-1", line["taskId"])
}

func TestLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyflow.log")
	var buf bytes.Buffer

	logger, closer, err := newLogger(config.LogConfig{Level: "info", Format: "text", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Info("plan generated", "tasks", 3)
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "plan generated")
	assert.Contains(t, buf.String(), "tasks=3")
}

func TestLoggerRejectsBadLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "chatty"})
	require.Error(t, err)
}

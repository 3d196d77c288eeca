package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ondc-conformance/internal/config"
)

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ondc.log")
	logger, err := New(config.Log{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("stored on_confirm")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"stored on_confirm"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestBadLevel(t *testing.T) {
	_, err := New(config.Log{Level: "loud"})
	assert.Error(t, err)
}

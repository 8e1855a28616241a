package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "rowenc", cfg.AppName)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "hex", cfg.Output.Format)
	assert.False(t, cfg.Output.Frame)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rowenc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_name: orders-loader
schema:
  path: ./orders.yaml
log:
  level: debug
output:
  format: base64
  frame: true
`), 0o644))

	t.Setenv("ROWENC_LOG_FORMAT", "json")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "orders-loader", cfg.AppName)
	assert.Equal(t, "./orders.yaml", cfg.Schema.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "base64", cfg.Output.Format)
	assert.True(t, cfg.Output.Frame)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rowenc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: octal\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "http://127.0.0.1:4096", cfg.Server.URL)
	assert.Empty(t, cfg.Server.Password)
	assert.Equal(t, 120000, cfg.TimeoutMS)
	assert.Equal(t, 1000, cfg.BufferSize)
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, 120000, cfg.TimeoutMS)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)

		t.Setenv("AGENTLINK_SERVER_URL", "http://10.0.0.5:9000")
		t.Setenv("AGENTLINK_SERVER_PASSWORD", "hunter2")
		t.Setenv("AGENTLINK_FORMAT", "ndjson")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.URL)
		assert.Equal(t, "hunter2", cfg.Server.Password)
		assert.Equal(t, "ndjson", cfg.Format)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()

		configContent := `
format: ndjson
verbose: true
timeout_ms: 30000
server:
  url: "http://192.168.1.10:4096"
  password: "s3cret"
  workdir: "/srv/project"
`
		configPath := filepath.Join(tmpDir, "agentlink.yaml")
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, 30000, cfg.TimeoutMS)
		assert.Equal(t, "http://192.168.1.10:4096", cfg.Server.URL)
		assert.Equal(t, "s3cret", cfg.Server.Password)
		assert.Equal(t, "/srv/project", cfg.Server.WorkDir)
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	App    App    `mapstructure:"app"`
	Logger Logger `mapstructure:"logger"`
	API    API    `mapstructure:"api"`
	Server Server `mapstructure:"server"`
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	var cfg testConfig
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg, map[string]interface{}{
		"server.port": 8080,
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  name: dash
api:
  base_url: http://backend:9000
  timeout: 5s
logger:
  level: debug
  output_paths: ["/tmp/dash.log"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("API_BASE_URL", "https://api.example.com")

	var cfg testConfig
	require.NoError(t, Load(path, &cfg, nil))

	assert.Equal(t, "dash", cfg.App.Name)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"/tmp/dash.log"}, cfg.Logger.OutputPaths)
}

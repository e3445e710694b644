package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dailyPlanner/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yml")})

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "inmemory", cfg.Repository.Type)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 100, cfg.Server.RateLimit)
	assert.Equal(t, int32(10), cfg.Database.MaxConnections)
	assert.Equal(t, ":8080", cfg.GetServerAddr())
	assert.False(t, cfg.PrintConfig)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "config.yml", `
server:
  host: 127.0.0.1
  port: "9000"
  request_timeout: 5s
  cors_origins: ["http://localhost:3000"]
database:
  url: postgres://file
  max_connections: 4
repository:
  type: sqlite
logging:
  development: false
`)

	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		wantPort string
		wantRepo string
		wantURL  string
	}{
		{
			name:     "file only",
			wantPort: "9000",
			wantRepo: "sqlite",
			wantURL:  "postgres://file",
		},
		{
			name:     "env overrides file",
			env:      map[string]string{"PLANNER_SERVER_PORT": "9100", "PLANNER_DATABASE_URL": "postgres://env"},
			wantPort: "9100",
			wantRepo: "sqlite",
			wantURL:  "postgres://env",
		},
		{
			name:     "flags override env",
			env:      map[string]string{"PLANNER_SERVER_PORT": "9100"},
			args:     []string{"--port", "9200", "--repository", "postgres"},
			wantPort: "9200",
			wantRepo: "postgres",
			wantURL:  "postgres://file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load(append([]string{"--config", path}, tt.args...))

			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantRepo, cfg.Repository.Type)
			assert.Equal(t, tt.wantURL, cfg.Database.URL)
			assert.Equal(t, "127.0.0.1", cfg.Server.Host)
			assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
			assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
			assert.Equal(t, int32(4), cfg.Database.MaxConnections)
			assert.False(t, cfg.Logging.Development)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		args []string
	}{
		{name: "unknown repository", args: []string{"--repository", "mongo"}},
		{name: "postgres without url", args: []string{"--repository", "postgres"}},
		{name: "broken yaml", file: "server: [port"},
		{name: "unknown flag", args: []string{"--verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.yml")
			if tt.file != "" {
				path = writeFile(t, "config.yml", tt.file)
			}

			cfg, err := config.Load(append([]string{"--config", path}, tt.args...))

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_PrintYAML(t *testing.T) {
	cfg, err := config.Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yml"), "--print-config"})
	require.NoError(t, err)
	assert.True(t, cfg.PrintConfig)

	var buf bytes.Buffer
	require.NoError(t, cfg.PrintYAML(&buf))

	var printed map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &printed))
	assert.Equal(t, "8080", printed["server"]["port"])
	assert.Equal(t, "inmemory", printed["repository"]["type"])
	assert.NotContains(t, buf.String(), "printconfig")
}

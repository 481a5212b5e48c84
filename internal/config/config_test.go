package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/starpath/internal/catalog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STARPATH_USER", "STARPATH_DB_DRIVER", "STARPATH_DB", "STARPATH_DB_DSN",
		"STARPATH_LOG_LEVEL", "STARPATH_LOG_FILE", "STARPATH_LLM_PROVIDER",
		"STARPATH_CATALOG", "STARPATH_DEFAULT_CATEGORY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Equal(t, catalog.CategorySkill, cfg.DefaultCategory())
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
user: alice
database:
  path: /tmp/alice.db
log:
  level: debug
llm:
  enabled: true
  provider: gemini
  timeout: 8s
catalog:
  default_category: health
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/alice.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, 8*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, catalog.CategoryHealth, cfg.DefaultCategory())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "user: alice\nlog:\n  level: debug\n")
	t.Setenv("STARPATH_USER", "bob")
	t.Setenv("STARPATH_LOG_LEVEL", "error")
	t.Setenv("STARPATH_LLM_PROVIDER", "mock")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.User)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "mock", cfg.ProviderConfig().Provider)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown driver",
			body:    "database:\n  driver: mysql\n",
			wantErr: "unknown database driver",
		},
		{
			name:    "postgres without dsn",
			body:    "database:\n  driver: postgres\n",
			wantErr: "database.dsn is required",
		},
		{
			name:    "center is not a default category",
			body:    "catalog:\n  default_category: center\n",
			wantErr: "not a star-map category",
		},
		{
			name:    "malformed yaml",
			body:    "user: [",
			wantErr: "parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviderConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("STARPATH_OPENAI_API_KEY", "sk-test")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.Timeout = 2 * time.Second

	pc := cfg.ProviderConfig()
	assert.Equal(t, "openai", pc.Provider)
	assert.Equal(t, "sk-test", pc.OpenAI.APIKey)
	assert.Equal(t, 2*time.Second, pc.Timeout)
	assert.NoError(t, pc.Validate())
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "starpath", "config.yaml"), DefaultConfigPath())
}

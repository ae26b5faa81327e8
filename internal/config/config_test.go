package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SURREAL_URL", "ws://localhost:8000/rpc")
	t.Setenv("SURREAL_NS", "test")
	t.Setenv("SURREAL_DB", "notebook")
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ws://localhost:8000/rpc", cfg.GetDBURL())
	assert.Equal(t, DefaultServerAddr, cfg.GetServerAddr())
	assert.Equal(t, DefaultQueryTimeout, cfg.GetDBQueryTimeout())
	assert.Equal(t, DefaultRetryMax, cfg.GetRetryMax())
	assert.Equal(t, DefaultRetryBaseDelay, cfg.GetRetryBaseDelay())
	assert.Equal(t, DefaultOfflineCacheName, cfg.GetOfflineCacheName())
	assert.Equal(t, "log", cfg.GetEmailProvider())
}

func TestLoad_YAMLFileIsOverriddenByEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notebook.yaml")
	yamlBody := []byte("surreal_url: ws://yaml:8000/rpc\nsurreal_ns: yaml\nsurreal_db: yamldb\nretry_max: 7\ncache_ttl: 1m\napp_base_url: https://notes.example.com/\n")
	require.NoError(t, os.WriteFile(path, yamlBody, 0o644))

	t.Setenv("SURREAL_NS", "env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://yaml:8000/rpc", cfg.GetDBURL())
	assert.Equal(t, "env", cfg.GetDBNs(), "environment should win over the file")
	assert.Equal(t, "yamldb", cfg.GetDBDb())
	assert.Equal(t, 7, cfg.GetRetryMax())
	assert.Equal(t, time.Minute, cfg.GetCacheTTL())
	assert.Equal(t, "https://notes.example.com", cfg.GetAppBaseURL(), "trailing slash is trimmed")
}

func TestValidate_MissingSettings(t *testing.T) {
	cfg := &Config{DBURL: "ws://localhost:8000/rpc"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SURREAL_NS")
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

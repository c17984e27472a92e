package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "data/docsync.db", cfg.CacheDBPath)
	assert.Equal(t, int64(10<<20), cfg.CacheCapacityBytes)
	assert.Equal(t, int64(1<<20), cfg.InlineThresholdBytes)
	assert.Equal(t, 3, cfg.EvictBatch)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "s3", cfg.RemoteBackend)
	assert.Equal(t, 15*time.Second, cfg.RemoteOpTimeout)
}

func TestLoad_SourcesAndPrecedence(t *testing.T) {
	t.Run("no path keeps defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, int64(10<<20), cfg.CacheCapacityBytes)
	})

	t.Run("JSON overlays defaults", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"cache_capacity_bytes": 1 << 20,
			"remote_backend":       "docdb",
			"docdb_dsn":            "postgres://localhost/docs",
			"remote_op_timeout":    "10s",
			"allowed_mime_types":   []string{"application/pdf"},
		})

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, int64(1<<20), cfg.CacheCapacityBytes)
		assert.Equal(t, "docdb", cfg.RemoteBackend)
		assert.Equal(t, "postgres://localhost/docs", cfg.DocDBDSN)
		assert.Equal(t, 10*time.Second, cfg.RemoteOpTimeout)
		assert.Equal(t, []string{"application/pdf"}, cfg.AllowedMIMETypes)

		// Keys absent from the JSON keep their defaults.
		assert.Equal(t, "data/docsync.db", cfg.CacheDBPath)
		assert.Equal(t, 3, cfg.EvictBatch)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		_, err := Load(bad)
		require.Error(t, err)
	})
}

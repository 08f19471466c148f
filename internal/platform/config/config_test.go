package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "/static/videos", cfg.Media.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 90*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, DefaultCookieName, cfg.Session.CookieName)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SAATHI_ADDR", ":9090")
	t.Setenv("FACE_TIMEOUT", "2s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SAATHI_ENV", "production")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.Providers.FaceTimeout)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 45*time.Second, cfg.HTTP.WriteTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FACE_TIMEOUT", "soon")
	t.Setenv("REDIS_POOL_SIZE", "many")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FACE_TIMEOUT")
	assert.Contains(t, err.Error(), "REDIS_POOL_SIZE")
}

func TestFromEnv_LoadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("UPLOAD_DIR=/data/uploads\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("UPLOAD_DIR") })

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/data/uploads", cfg.Uploads.Dir)
}

func TestFromEnv_MissingExplicitEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SAATHI_ENV_FILE", "does-not-exist.env")

	_, err := FromEnv()
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 50, cfg.Upload.MaxSizeMB)
	assert.Equal(t, int64(50*1024*1024), cfg.UploadLimitBytes())
	assert.Equal(t, 300*time.Second, cfg.Site.Revalidate.Home)
	assert.Equal(t, 60*time.Second, cfg.Site.Revalidate.Blog)
	assert.Equal(t, "auto", cfg.R2.Region)
	assert.Contains(t, cfg.DSN, "tcp(127.0.0.1:3306)/forexfactory")
	assert.True(t, cfg.IsDev())
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: production
database:
  driver: sqlite
  path: /tmp/site.db
site:
  url: https://example.com/
  revalidate:
    home: 120s
upload:
  max_size_mb: 10
access_policy:
  "get /api/admin/categories": staff
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "/tmp/site.db", cfg.DSN)
	assert.Equal(t, "https://example.com", cfg.Site.URL)
	assert.Equal(t, 120*time.Second, cfg.Site.Revalidate.Home)
	assert.Equal(t, 60*time.Second, cfg.Site.Revalidate.Blog)
	assert.Equal(t, int64(10*1024*1024), cfg.UploadLimitBytes())
	assert.Equal(t, map[string]string{"GET /api/admin/categories": "staff"}, cfg.AccessPolicy)
}

func TestLoadRejectsUnknownFieldsAndBadValues(t *testing.T) {
	_, err := Load(writeConfig(t, "nope: 1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "port: 70000\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "access_policy:\n  \"GET /x\": root\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestApplyEnvOverridesFile(t *testing.T) {
	cfg := defaultAppConfig()
	env := map[string]string{
		"FF_PORT":                         "9000",
		"CLOUDFLARE_R2_ENDPOINT":          "https://acc.r2.cloudflarestorage.com/",
		"CLOUDFLARE_R2_ACCESS_KEY_ID":     "key",
		"CLOUDFLARE_R2_SECRET_ACCESS_KEY": "secret",
		"CLOUDFLARE_R2_BUCKET_NAME":       "files",
		"CLOUDFLARE_R2_PUBLIC_URL":        "https://cdn.example.com/",
		"SITE_URL":                        "  ",
	}
	applyEnv(&cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	normalize(&cfg)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.StorageEnabled())
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", cfg.R2.Endpoint)
	assert.Equal(t, "https://cdn.example.com", cfg.R2.PublicURL)
	assert.Equal(t, defaultSiteURL, cfg.Site.URL)
}

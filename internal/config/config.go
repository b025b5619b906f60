package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath, applies environment overrides
// and fills defaults. A missing default config file is not an error so the
// server can run from environment variables alone.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnv(&cfg, os.LookupEnv)
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Driver:    defaultDriver,
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Site: SiteConfig{
			URL:  defaultSiteURL,
			Name: defaultSiteName,
			Revalidate: RevalidateConfig{
				Home: defaultHomeRevalidate,
				Blog: defaultBlogRevalidate,
			},
		},
		Session: SessionConfig{TTL: defaultSessionTTL},
		R2:      R2Config{Region: defaultR2Region},
		Upload:  UploadConfig{MaxSizeMB: defaultUploadMB, MediaLimit: defaultMediaLimit},
		Paths:   RuntimePathsConfig{Public: defaultPublicDir},
		HTTP: HTTPConfig{
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
	}
}

// Validate rejects configurations the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Upload.MaxSizeMB < 1 {
		return fmt.Errorf("invalid upload.max_size_mb %d, expected >= 1", c.Upload.MaxSizeMB)
	}
	for route, capability := range c.AccessPolicy {
		if capability != "admin" && capability != "staff" {
			return fmt.Errorf("access_policy %q: unknown capability %q", route, capability)
		}
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return c.Env == "development"
}

// PublicDir is where robots.txt and sitemap.xml are persisted.
func (c *AppConfig) PublicDir() string {
	return ResolveRuntimePath(c.Paths.Public, defaultPublicDir)
}

// UploadLimitBytes is the single size cap applied to uploads.
func (c *AppConfig) UploadLimitBytes() int64 {
	return int64(c.Upload.MaxSizeMB) * 1024 * 1024
}

// StorageEnabled reports whether enough R2 settings are present to build a client.
func (c *AppConfig) StorageEnabled() bool {
	return c.R2.Endpoint != "" && c.R2.Bucket != "" && c.R2.AccessKeyID != "" && c.R2.SecretAccessKey != ""
}

package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3000
	defaultEnv        = "development"
	defaultDriver     = DriverMySQL
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "forexfactory"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultSQLitePath = "data/site.db"
	defaultSiteURL    = "http://localhost:3000"
	defaultSiteName   = "ForexFactory"
	defaultPublicDir  = "public"
	defaultR2Region   = "auto"
	defaultUploadMB   = 50
	defaultMediaLimit = 50

	defaultSessionTTL     = 7 * 24 * time.Hour
	defaultHomeRevalidate = 300 * time.Second
	defaultBlogRevalidate = 60 * time.Second
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 60 * time.Second
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	DSN            string                `yaml:"dsn"`
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Site           SiteConfig            `yaml:"site"`
	Session        SessionConfig         `yaml:"session"`
	R2             R2Config              `yaml:"r2"`
	Upload         UploadConfig          `yaml:"upload"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	HTTP           HTTPConfig            `yaml:"http"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	// AccessPolicy overrides the required capability of individual routes,
	// keyed by "METHOD /full/path", valued "admin" or "staff".
	AccessPolicy map[string]string `yaml:"access_policy"`
}

type DatabaseRuntimeConfig struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	Path      string            `yaml:"path"` // sqlite file
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type SiteConfig struct {
	URL        string           `yaml:"url"`
	Name       string           `yaml:"name"`
	Revalidate RevalidateConfig `yaml:"revalidate"`
}

// RevalidateConfig sets how long rendered public pages stay cached.
type RevalidateConfig struct {
	Home time.Duration `yaml:"home"`
	Blog time.Duration `yaml:"blog"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	Secure bool          `yaml:"secure"`
}

// R2Config points the S3 client at a Cloudflare R2 bucket.
type R2Config struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	PublicURL       string `yaml:"public_url"`
	Region          string `yaml:"region"`
}

type UploadConfig struct {
	MaxSizeMB  int `yaml:"max_size_mb"`
	MediaLimit int `yaml:"media_limit"`
}

type RuntimePathsConfig struct {
	Public string `yaml:"public"`
}

type HTTPConfig struct {
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

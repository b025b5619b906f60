package config

import (
	"strconv"
	"strings"
)

type lookupFunc func(key string) (string, bool)

// applyEnv lets deployment environments override file settings. Names follow
// the variables the hosting platform already exports.
func applyEnv(cfg *AppConfig, lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("FF_PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Port = port
		}
	}
	str("FF_ENV", &cfg.Env)
	str("DATABASE_URL", &cfg.DSN)
	str("FF_DSN", &cfg.DSN)
	str("FF_DB_DRIVER", &cfg.Database.Driver)
	str("REDIS_URL", &cfg.RedisURL)
	str("SITE_URL", &cfg.Site.URL)
	str("SESSION_SECRET", &cfg.Session.Secret)

	str("CLOUDFLARE_R2_ENDPOINT", &cfg.R2.Endpoint)
	str("CLOUDFLARE_R2_ACCESS_KEY_ID", &cfg.R2.AccessKeyID)
	str("CLOUDFLARE_R2_SECRET_ACCESS_KEY", &cfg.R2.SecretAccessKey)
	str("CLOUDFLARE_R2_BUCKET_NAME", &cfg.R2.Bucket)
	str("CLOUDFLARE_R2_PUBLIC_URL", &cfg.R2.PublicURL)
}

package config

import "strings"

func normalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	if cfg.DSN == "" {
		cfg.DSN = cfg.Database.DSNValue()
	}

	cfg.Site.URL = strings.TrimRight(strings.TrimSpace(cfg.Site.URL), "/")
	if cfg.Site.URL == "" {
		cfg.Site.URL = defaultSiteURL
	}
	cfg.Site.Name = strings.TrimSpace(cfg.Site.Name)
	if cfg.Site.Name == "" {
		cfg.Site.Name = defaultSiteName
	}
	if cfg.Site.Revalidate.Home <= 0 {
		cfg.Site.Revalidate.Home = defaultHomeRevalidate
	}
	if cfg.Site.Revalidate.Blog <= 0 {
		cfg.Site.Revalidate.Blog = defaultBlogRevalidate
	}

	cfg.Session.Secret = strings.TrimSpace(cfg.Session.Secret)
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = defaultSessionTTL
	}

	cfg.R2 = normalizeR2Config(cfg.R2)
	if cfg.Upload.MaxSizeMB == 0 {
		cfg.Upload.MaxSizeMB = defaultUploadMB
	}
	if cfg.Upload.MediaLimit <= 0 {
		cfg.Upload.MediaLimit = defaultMediaLimit
	}
	cfg.Paths.Public = strings.TrimSpace(cfg.Paths.Public)
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = defaultReadTimeout
	}
	if cfg.HTTP.WriteTimeout <= 0 {
		cfg.HTTP.WriteTimeout = defaultWriteTimeout
	}
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.AccessPolicy = normalizeAccessPolicy(cfg.AccessPolicy)
}

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	if cfg.Driver == "" {
		cfg.Driver = defaultDriver
	}
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.Path = strings.TrimSpace(cfg.Path)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Charset = strings.TrimSpace(cfg.Charset)
	cfg.Loc = strings.TrimSpace(cfg.Loc)

	if cfg.Driver == DriverSQLite && cfg.Path == "" {
		cfg.Path = defaultSQLitePath
	}
	if cfg.Host == "" {
		cfg.Host = defaultDBHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultDBPort
	}
	if cfg.User == "" {
		cfg.User = defaultDBUser
	}
	if cfg.Name == "" {
		cfg.Name = defaultDBName
	}
	if cfg.Charset == "" {
		cfg.Charset = defaultDBCharset
	}
	if cfg.Loc == "" {
		cfg.Loc = defaultDBLoc
	}
	return cfg
}

func normalizeR2Config(cfg R2Config) R2Config {
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	cfg.AccessKeyID = strings.TrimSpace(cfg.AccessKeyID)
	cfg.SecretAccessKey = strings.TrimSpace(cfg.SecretAccessKey)
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	cfg.PublicURL = strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/")
	cfg.Region = strings.TrimSpace(cfg.Region)
	if cfg.Region == "" {
		cfg.Region = defaultR2Region
	}
	return cfg
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

// normalizeAccessPolicy uppercases the method part of each route key so
// "get /api/admin/blog" and "GET /api/admin/blog" address the same route.
func normalizeAccessPolicy(policy map[string]string) map[string]string {
	if len(policy) == 0 {
		return nil
	}
	out := make(map[string]string, len(policy))
	for route, capability := range policy {
		route = strings.TrimSpace(route)
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			continue
		}
		key := strings.ToUpper(method) + " " + strings.TrimSpace(path)
		out[key] = strings.ToLower(strings.TrimSpace(capability))
	}
	return out
}

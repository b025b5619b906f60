package app

import (
	"time"

	"github.com/forexfactory/site/internal/config"
	jwtpkg "github.com/forexfactory/site/internal/pkg/jwt"
	"github.com/forexfactory/site/internal/pkg/response"
	"go.uber.org/zap"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	response.SetLogger(logger)
	if cfg.Session.Secret != "" {
		jwtpkg.SetSecret(cfg.Session.Secret)
		return
	}
	if cfg.IsDev() {
		logger.Warn("session.secret is empty, using built-in default secret")
		return
	}
	logger.Error("session.secret is empty in production, tokens are signed with the built-in default")
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Truncate(time.Second).String()
	}
	if d < time.Hour {
		return d.Truncate(time.Minute).String()
	}
	if d < 24*time.Hour {
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}

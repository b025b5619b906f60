package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/database"
	"github.com/forexfactory/site/internal/middleware"
	pkgredis "github.com/forexfactory/site/internal/pkg/redis"
	"github.com/forexfactory/site/internal/pkg/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the already-connected collaborators the router is built from.
// Redis may be nil; Store must not be.
type Deps struct {
	Config *config.AppConfig
	Logger *zap.Logger
	DB     *gorm.DB
	Redis  *pkgredis.Client
	Store  storage.Store
}

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	rc     *pkgredis.Client
	logger *zap.Logger
}

// New initializes the application: config → DB → Redis → storage → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	applyRuntimeSettings(cfg, logger)

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if rc == nil {
		logger.Warn("redis_url is empty, page cache and rate limiting are disabled")
	}

	var store storage.Store
	client, err := storage.New(cfg.R2)
	switch {
	case err == nil:
		store = client
	case errors.Is(err, storage.ErrDisabled):
		logger.Warn("r2 is not configured, uploads are kept in memory")
		store = storage.NewMemory(cfg.Site.URL + "/admin/media")
	default:
		return nil, fmt.Errorf("storage: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := NewRouter(Deps{Config: cfg, Logger: logger, DB: db, Redis: rc, Store: store})
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	return &App{cfg: cfg, router: router, rc: rc, logger: logger}, nil
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) (*gin.Engine, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(d.Logger))
	router.Use(newCORS(d.Config.AllowedOrigins, d.Config.IsDev()))
	router.Use(middleware.Authenticate(d.DB))

	if err := registerRoutes(router, d); err != nil {
		return nil, err
	}
	return router, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Server returns an http.Server carrying the configured timeouts.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:              a.Addr(),
		Handler:           a.router,
		ReadTimeout:       a.cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.cfg.HTTP.WriteTimeout,
	}
}

// Shutdown releases connections held outside the HTTP server.
func (a *App) Shutdown(context.Context) {
	if err := a.rc.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
}

var processStart = time.Now()

package app

import (
	"net/http"
	"time"

	"github.com/forexfactory/site/internal/middleware"
	"github.com/forexfactory/site/internal/modules/adminui"
	"github.com/forexfactory/site/internal/modules/auth"
	"github.com/forexfactory/site/internal/modules/blog"
	"github.com/forexfactory/site/internal/modules/category"
	"github.com/forexfactory/site/internal/modules/feed"
	"github.com/forexfactory/site/internal/modules/media"
	"github.com/forexfactory/site/internal/modules/search"
	"github.com/forexfactory/site/internal/modules/seo"
	"github.com/forexfactory/site/internal/modules/signal"
	"github.com/forexfactory/site/internal/modules/site"
	"github.com/forexfactory/site/internal/modules/stats"
	"github.com/forexfactory/site/internal/modules/upload"
	"github.com/forexfactory/site/internal/pkg/flash"
	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func registerRoutes(r *gin.Engine, d Deps) error {
	cfg := d.Config
	db := d.DB
	rc := d.Redis
	policy := buildPolicy(cfg.AccessPolicy)

	// Shared services
	authSvc := auth.NewService(db, cfg.Session.TTL)
	blogSvc := blog.NewService(db, d.Logger)
	signalSvc := signal.NewService(db)
	categorySvc := category.NewService(db)
	mediaSvc := media.NewService(db)
	searchSvc := search.NewService(db)
	seoSvc := seo.NewService(db, blogSvc, signalSvc, cfg.PublicDir(), cfg.Site.URL)
	statsSvc := stats.NewService(db)

	loginLimiter := middleware.RateLimit(rc.Raw(), middleware.RateLimitOptions{Name: "login", Max: 10, Window: time.Minute})
	searchLimiter := middleware.RateLimit(rc.Raw(), middleware.RateLimitOptions{Name: "search", Max: 60, Window: time.Minute})

	siteHandler, err := site.NewHandler(blogSvc, signalSvc, categorySvc, searchSvc, cfg.Site, d.Logger)
	if err != nil {
		return err
	}
	adminHandler, err := adminui.NewHandler(adminui.Services{
		Auth:       authSvc,
		Stats:      statsSvc,
		Blogs:      blogSvc,
		Signals:    signalSvc,
		Categories: categorySvc,
		Media:      mediaSvc,
		SEO:        seoSvc,
	}, flash.New(cfg.Session.Secret, cfg.Session.Secure), cfg.Session.Secure, cfg.Upload.MediaLimit, d.Logger)
	if err != nil {
		return err
	}

	r.NoRoute(siteHandler.NotFound)
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Public JSON API
	api := r.Group("/api")
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		up := time.Since(processStart)
		c.JSON(http.StatusOK, gin.H{"timestamp": up.Milliseconds(), "humanize": humanizeDuration(up)})
	})
	auth.NewHandler(authSvc, cfg.Session.Secure).RegisterRoutes(api, loginLimiter)
	blog.NewHandler(blogSvc).RegisterPublicRoutes(api)
	signalHandler := signal.NewHandler(signalSvc, d.Store)
	signalHandler.RegisterPublicRoutes(api)
	search.NewHandler(searchSvc).RegisterRoutes(api, searchLimiter)

	uploads := api.Group("", middleware.RequireAPI(policy), middleware.PurgeOnWrite(rc))
	upload.NewHandler(upload.NewService(d.Store, cfg.Upload.MaxSizeMB), d.Logger).RegisterRoutes(uploads)

	// Guarded admin API
	admin := api.Group("/admin", middleware.RequireAPI(policy), middleware.PurgeOnWrite(rc))
	blog.NewHandler(blogSvc).RegisterRoutes(admin)
	signalHandler.RegisterRoutes(admin)
	category.NewHandler(categorySvc).RegisterRoutes(admin)
	mediaHandler := media.NewHandler(mediaSvc, d.Store, cfg, d.Logger)
	mediaHandler.RegisterRoutes(admin)
	seoHandler := seo.NewHandler(seoSvc)
	seoHandler.RegisterRoutes(admin)
	stats.NewHandler(statsSvc).RegisterRoutes(admin)
	admin.POST("/cache/purge", func(c *gin.Context) {
		deleted, err := middleware.PurgePageCache(c.Request.Context(), rc)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		d.Logger.Info("page cache purged", zap.Int64("deleted", deleted))
		response.OK(c, gin.H{"deleted": deleted})
	})

	// Root-level files and downloads
	signalHandler.RegisterDownloadRoute(r)
	mediaHandler.RegisterFileRoute(r)
	seoHandler.RegisterPublicRoutes(r)
	feed.NewHandler(blogSvc, cfg.Site, d.Logger).RegisterRoutes(r)

	// Server-rendered pages
	revalidate := cfg.Site.Revalidate
	siteHandler.RegisterRoutes(r, site.PageCaches{
		Home: []gin.HandlerFunc{middleware.RevalidateHeader(revalidate.Home), middleware.PageCache(rc, revalidate.Home)},
		Blog: []gin.HandlerFunc{middleware.RevalidateHeader(revalidate.Blog), middleware.PageCache(rc, revalidate.Blog)},
	})
	adminHandler.RegisterRoutes(r, middleware.RequirePage(policy), loginLimiter)
	return nil
}

// Package adminui serves the server-rendered admin panel. Pages are read-only
// views; edits go through the JSON API from the page script.
package adminui

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/middleware"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/auth"
	"github.com/forexfactory/site/internal/modules/blog"
	"github.com/forexfactory/site/internal/modules/category"
	"github.com/forexfactory/site/internal/modules/media"
	"github.com/forexfactory/site/internal/modules/seo"
	"github.com/forexfactory/site/internal/modules/signal"
	"github.com/forexfactory/site/internal/modules/stats"
	"github.com/forexfactory/site/internal/pkg/authz"
	"github.com/forexfactory/site/internal/pkg/flash"
	"github.com/forexfactory/site/internal/pkg/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	dashboardPath = "/admin/dashboard"
	recentBlogs   = 5
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"date":    func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"isAdmin": func(p *authz.Principal) bool { return p.Allows(authz.Admin) },
	"isImage": media.IsImage,
	"join":    func(s []string) string { return strings.Join(s, "\n") },
	"deref": func(v any) any {
		switch p := v.(type) {
		case *float64:
			if p != nil {
				return *p
			}
		case *string:
			if p != nil {
				return *p
			}
		case *uint:
			if p != nil {
				return *p
			}
		}
		return ""
	},
}

// Services are the content services the panel reads from.
type Services struct {
	Auth       *auth.Service
	Stats      *stats.Service
	Blogs      *blog.Service
	Signals    *signal.Service
	Categories *category.Service
	Media      *media.Service
	SEO        *seo.Service
}

type Handler struct {
	svc          Services
	flash        *flash.Store
	secureCookie bool
	mediaLimit   int
	log          *zap.Logger
	pages        *view.Set
}

func NewHandler(svc Services, flashes *flash.Store, secureCookie bool, mediaLimit int, log *zap.Logger) (*Handler, error) {
	pages, err := view.Parse(templateFS, "templates/*.html", []string{"templates/layout.html"}, funcs)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:          svc,
		flash:        flashes,
		secureCookie: secureCookie,
		mediaLimit:   mediaLimit,
		log:          log.Named("admin"),
		pages:        pages,
	}, nil
}

// RegisterRoutes mounts the login pages on r and every other page behind
// guard. limiter may be nil.
func (h *Handler) RegisterRoutes(r gin.IRouter, guard, limiter gin.HandlerFunc) {
	r.GET("/admin/login", h.loginForm)
	if limiter != nil {
		r.POST("/admin/login", limiter, h.login)
	} else {
		r.POST("/admin/login", h.login)
	}

	g := r.Group("/admin", guard)
	g.GET("", func(c *gin.Context) { c.Redirect(http.StatusFound, dashboardPath) })
	g.POST("/logout", h.logout)
	g.GET("/dashboard", h.dashboard)
	g.GET("/blogs", h.blogList)
	g.GET("/blogs/new", h.blogForm)
	g.GET("/blogs/:id/edit", h.blogForm)
	g.GET("/signals", h.signalList)
	g.GET("/signals/new", h.signalForm)
	g.GET("/signals/:id/edit", h.signalForm)
	g.GET("/categories", h.categoryList)
	g.GET("/media", h.mediaList)
	g.GET("/seo", h.seoPage)
}

type page struct {
	Title     string
	Nav       string
	Principal *authz.Principal
	Flashes   []string
	Data      any
}

func (h *Handler) show(c *gin.Context, status int, name, title string, data any) {
	p := &page{
		Title:     title,
		Nav:       name,
		Principal: middleware.CurrentPrincipal(c),
		Flashes:   h.flash.Pop(c.Writer, c.Request),
		Data:      data,
	}
	if err := h.pages.Render(c, status, name, p); err != nil {
		h.log.Error("render admin page", zap.String("page", name), zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Internal Server Error"))
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.log.Error("admin page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	h.show(c, http.StatusInternalServerError, "error", "Error", nil)
}

func (h *Handler) notFound(c *gin.Context) {
	h.show(c, http.StatusNotFound, "error", "Not found", gin.H{"NotFound": true})
}

func (h *Handler) loginForm(c *gin.Context) {
	if middleware.CurrentPrincipal(c).Allows(authz.Staff) {
		c.Redirect(http.StatusFound, safeNext(c.Query("next")))
		return
	}
	h.show(c, http.StatusOK, "login", "Sign in", gin.H{"Next": safeNext(c.Query("next"))})
}

func (h *Handler) login(c *gin.Context) {
	next := safeNext(c.PostForm("next"))
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	back := middleware.LoginPath + "?next=" + url.QueryEscape(next)

	if username == "" || password == "" {
		h.redirectWithFlash(c, back, "Username and password are required")
		return
	}
	token, _, err := h.svc.Auth.Login(c.Request.Context(), username, password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.redirectWithFlash(c, back, "Invalid username or password")
			return
		}
		h.fail(c, err)
		return
	}
	auth.SetCookie(c, token, h.svc.Auth.TTL(), h.secureCookie)
	c.Redirect(http.StatusFound, next)
}

func (h *Handler) logout(c *gin.Context) {
	if p := middleware.CurrentPrincipal(c); p != nil {
		if err := h.svc.Auth.Logout(c.Request.Context(), p.UserID, p.SessionID); err != nil {
			h.log.Warn("logout", zap.Error(err))
		}
	}
	auth.ClearCookie(c, h.secureCookie)
	h.redirectWithFlash(c, middleware.LoginPath, "Signed out")
}

func (h *Handler) redirectWithFlash(c *gin.Context, target, msg string) {
	if err := h.flash.Add(c.Writer, c.Request, msg); err != nil {
		h.log.Warn("flash", zap.Error(err))
	}
	c.Redirect(http.StatusFound, target)
}

// safeNext keeps post-login redirects inside the admin panel.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/admin") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return dashboardPath
	}
	if next == middleware.LoginPath || strings.HasPrefix(next, middleware.LoginPath+"?") {
		return dashboardPath
	}
	return next
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	overview, err := h.svc.Stats.Overview(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	recent, err := h.svc.Stats.RecentBlogs(ctx, recentBlogs)
	if err != nil {
		h.fail(c, err)
		return
	}
	popular, err := h.svc.Stats.PopularSignals(ctx, recentBlogs)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "dashboard", "Dashboard", gin.H{
		"Overview": overview,
		"Recent":   recent,
		"Popular":  popular,
	})
}

func (h *Handler) blogList(c *gin.Context) {
	blogs, err := h.svc.Blogs.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "blogs", "Blog posts", gin.H{"Blogs": blogs})
}

type blogFormData struct {
	Blog       *models.Blog
	Seo        *models.SeoMeta
	Categories []category.WithCount
	Selected   map[uint]bool
	Statuses   []string
}

func (h *Handler) blogForm(c *gin.Context) {
	ctx := c.Request.Context()
	data := blogFormData{
		Blog:     &models.Blog{Status: models.BlogDraft, Author: "Admin"},
		Selected: map[uint]bool{},
		Statuses: []string{models.BlogDraft, models.BlogPublished, models.BlogArchived},
	}
	title := "New blog post"
	if c.Param("id") != "" {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c)
			return
		}
		b, err := h.svc.Blogs.Get(ctx, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		if b == nil {
			h.notFound(c)
			return
		}
		ids, err := h.svc.Blogs.CategoryIDs(ctx, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		for _, cid := range ids {
			data.Selected[cid] = true
		}
		data.Blog = b
		data.Seo = b.PrimarySeo()
		title = "Edit: " + b.Title
	}
	cats, err := h.svc.Categories.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	data.Categories = cats
	h.show(c, http.StatusOK, "blog_form", title, data)
}

func (h *Handler) signalList(c *gin.Context) {
	signals, err := h.svc.Signals.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "signals", "Signals", gin.H{"Signals": signals})
}

func (h *Handler) signalForm(c *gin.Context) {
	data := gin.H{
		"Signal":    &models.Signal{Status: models.SignalActive, Platform: models.PlatformMT4},
		"Platforms": []string{models.PlatformMT4, models.PlatformMT5, models.PlatformBoth},
		"Statuses":  []string{models.SignalActive, "inactive"},
	}
	title := "New signal"
	if c.Param("id") != "" {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c)
			return
		}
		s, err := h.svc.Signals.Get(c.Request.Context(), id)
		if err != nil {
			h.fail(c, err)
			return
		}
		if s == nil {
			h.notFound(c)
			return
		}
		data["Signal"] = s
		title = "Edit: " + s.Title
	}
	h.show(c, http.StatusOK, "signal_form", title, data)
}

func (h *Handler) categoryList(c *gin.Context) {
	cats, err := h.svc.Categories.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "categories", "Categories", gin.H{"Categories": cats})
}

func (h *Handler) mediaList(c *gin.Context) {
	kind := c.DefaultQuery("type", media.KindAll)
	items, err := h.svc.Media.List(c.Request.Context(), kind, h.mediaLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "media", "Media", gin.H{"Media": items, "Kind": kind})
}

func (h *Handler) seoPage(c *gin.Context) {
	items, st, err := h.svc.SEO.Content(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	robots, err := h.svc.SEO.Robots()
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "seo", "SEO", gin.H{"Items": items, "Stats": st, "Robots": robots})
}

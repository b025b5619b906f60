// Package site renders the public HTML pages.
package site

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/middleware"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/blog"
	"github.com/forexfactory/site/internal/modules/category"
	"github.com/forexfactory/site/internal/modules/search"
	"github.com/forexfactory/site/internal/modules/signal"
	"github.com/forexfactory/site/internal/pkg/htmlsafe"
	"github.com/forexfactory/site/internal/pkg/pagination"
	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/forexfactory/site/internal/pkg/slug"
	"github.com/forexfactory/site/internal/pkg/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	blogListSize     = 20
	signalListSize   = 50
	downloadListSize = 9
	categoryPageSize = 20
	searchPageSize   = 20
	suggestedSignals = 3
)

type Handler struct {
	blogs      *blog.Service
	signals    *signal.Service
	categories *category.Service
	search     *search.Service
	site       config.SiteConfig
	log        *zap.Logger

	pages    *view.Set
	markdown map[string]mdPage
}

func NewHandler(blogs *blog.Service, signals *signal.Service, categories *category.Service, searchSvc *search.Service, site config.SiteConfig, log *zap.Logger) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	md, err := loadMarkdownPages()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		blogs:      blogs,
		signals:    signals,
		categories: categories,
		search:     searchSvc,
		site:       site,
		log:        log.Named("site"),
		pages:      pages,
		markdown:   md,
	}, nil
}

// PageCaches are optional middlewares placed in front of cacheable pages.
type PageCaches struct {
	Home []gin.HandlerFunc
	Blog []gin.HandlerFunc
}

func (h *Handler) RegisterRoutes(r gin.IRouter, caches PageCaches) {
	r.GET("/", chain(caches.Home, h.home)...)
	r.GET("/blog", chain(caches.Blog, h.blogList)...)
	r.GET("/blog/:slug", chain(caches.Blog, h.blogDetail)...)
	r.GET("/signals", h.signalList)
	r.GET("/signals/:uuid", h.signalDetail)
	r.GET("/downloads", h.downloadList)
	r.GET("/downloads/:uuid", h.downloadDetail)
	r.GET("/category/:slug", h.categoryPage)
	r.GET("/search", h.searchPage)
	r.GET("/about", h.markdownPage("about"))
	r.GET("/contact", h.markdownPage("contact"))
}

func chain(mw []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, handler)
}

// pageView is the root value handed to every template.
type pageView struct {
	Site          config.SiteConfig
	Meta          Meta
	Year          int
	Path          string
	Authenticated bool
	Query         string
	Data          any
}

func (h *Handler) show(c *gin.Context, status int, page string, meta Meta, data any) {
	v := &pageView{
		Site:          h.site,
		Meta:          meta,
		Year:          time.Now().Year(),
		Path:          c.Request.URL.Path,
		Authenticated: middleware.IsAuthenticated(c),
		Query:         c.Query("q"),
		Data:          data,
	}
	if err := h.pages.Render(c, status, page, v); err != nil {
		h.log.Error("render page", zap.String("page", page), zap.Error(err))
		errorPage(c)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.log.Error("page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	meta := pageMeta(h.site, "Something went wrong", "", c.Request.URL.Path)
	meta.NoIndex = true
	h.show(c, http.StatusInternalServerError, "error", meta, nil)
}

// NotFound renders the 404 page, or the JSON envelope for API paths.
func (h *Handler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.NotFound(c)
		return
	}
	meta := pageMeta(h.site, "Page not found", "", c.Request.URL.Path)
	meta.NoIndex = true
	h.show(c, http.StatusNotFound, "notfound", meta, nil)
}

func (h *Handler) home(c *gin.Context) {
	data, err := h.loadHome(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	meta := pageMeta(h.site, "", "Forex articles, indicators, Expert Advisors and trading tools.", "/")
	meta.Title = h.site.Name
	meta.OgTitle = h.site.Name
	h.show(c, http.StatusOK, "home", meta, data)
}

func (h *Handler) blogList(c *gin.Context) {
	q := pagination.FromContext(c, blogListSize)
	blogs, total, err := h.blogs.ListPublished(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	pages := int((total + int64(q.Size) - 1) / int64(q.Size))
	h.show(c, http.StatusOK, "blogs", pageMeta(h.site, "Blog", "Forex trading articles and guides.", "/blog"), gin.H{
		"Blogs":      blogs,
		"Page":       q.Page,
		"TotalPages": pages,
		"Total":      total,
	})
}

type blogPage struct {
	Blog    *models.Blog
	Content template.HTML
	TOC     []htmlsafe.Heading
}

func (h *Handler) blogDetail(c *gin.Context) {
	ctx := c.Request.Context()
	b, err := h.blogs.FindPublished(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if b == nil {
		h.NotFound(c)
		return
	}
	if err := h.blogs.IncrementViews(ctx, b.ID); err != nil {
		h.log.Warn("increment views", zap.Uint("blogId", b.ID), zap.Error(err))
	} else {
		b.Views++
	}

	content, toc := htmlsafe.WithTOC(b.Content)
	h.show(c, http.StatusOK, "blog", blogMeta(h.site, b), blogPage{
		Blog:    b,
		Content: template.HTML(content),
		TOC:     toc,
	})
}

func (h *Handler) signalList(c *gin.Context) {
	signals, err := h.signals.Latest(c.Request.Context(), signalListSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "signals", pageMeta(h.site, "Trading Signals", "Expert Advisors and trading signals for MT4 and MT5.", "/signals"), gin.H{
		"Signals": signals,
	})
}

type signalPage struct {
	Signal       *models.Signal
	Description  template.HTML
	Install      template.HTML
	DownloadPath string
	Suggested    []models.Signal
}

func (h *Handler) loadSignal(c *gin.Context) (*signalPage, bool) {
	s, err := h.signals.GetByUUID(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if s == nil || s.Status != models.SignalActive {
		h.NotFound(c)
		return nil, false
	}
	return &signalPage{
		Signal:       s,
		Description:  template.HTML(s.Description),
		Install:      template.HTML(s.InstallInstructions),
		DownloadPath: "/download/" + s.UUID,
	}, true
}

func (h *Handler) signalDetail(c *gin.Context) {
	page, ok := h.loadSignal(c)
	if !ok {
		return
	}
	h.show(c, http.StatusOK, "signal", signalMeta(h.site, page.Signal, "/signals/"+page.Signal.UUID), page)
}

func (h *Handler) downloadList(c *gin.Context) {
	ctx := c.Request.Context()
	signals, err := h.signals.Latest(ctx, downloadListSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	total, err := h.signals.CountActive(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.show(c, http.StatusOK, "downloads", pageMeta(h.site, "Downloads", "Download Expert Advisors, indicators and trading tools.", "/downloads"), gin.H{
		"Signals": signals,
		"Total":   total,
	})
}

func (h *Handler) downloadDetail(c *gin.Context) {
	page, ok := h.loadSignal(c)
	if !ok {
		return
	}
	suggested, err := h.signals.Suggested(c.Request.Context(), page.Signal.UUID, suggestedSignals)
	if err != nil {
		h.fail(c, err)
		return
	}
	page.Suggested = suggested
	h.show(c, http.StatusOK, "download", signalMeta(h.site, page.Signal, "/downloads/"+page.Signal.UUID), page)
}

func (h *Handler) categoryPage(c *gin.Context) {
	ctx := c.Request.Context()
	cat, err := h.categories.FindByName(ctx, slug.CategoryName(c.Param("slug")))
	if err != nil {
		h.fail(c, err)
		return
	}
	if cat == nil {
		h.NotFound(c)
		return
	}
	blogs, err := h.blogs.InCategory(ctx, cat.CategoryID, categoryPageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	description := ""
	if cat.Description != nil {
		description = *cat.Description
	}
	h.show(c, http.StatusOK, "category", pageMeta(h.site, cat.Name, description, "/category/"+c.Param("slug")), gin.H{
		"Category":    cat,
		"Description": description,
		"Blogs":       blogs,
	})
}

func (h *Handler) searchPage(c *gin.Context) {
	q := search.NewQuery(c.Query("q"), c.Query("type"), searchPageSize)
	res, err := h.search.Search(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	meta := pageMeta(h.site, "Search", "", "/search")
	meta.NoIndex = true
	h.show(c, http.StatusOK, "search", meta, gin.H{
		"Results":    res,
		"Searchable": q.Searchable(),
		"Text":       q.Text,
	})
}

func (h *Handler) markdownPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := h.markdown[name]
		if !ok {
			h.NotFound(c)
			return
		}
		h.show(c, http.StatusOK, "page", pageMeta(h.site, page.Title, page.Description, "/"+name), page)
	}
}

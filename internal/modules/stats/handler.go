package stats

import (
	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/stats")
	g.GET("", h.overview)
	g.GET("/popular", h.popular)
	g.GET("/category-distribution", h.categoryDistribution)
	g.GET("/tag-cloud", h.tagCloud)
}

func (h *Handler) overview(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := h.svc.Overview(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	recent, err := h.svc.RecentBlogs(ctx, defaultTop)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"overview": o, "recentBlogs": recent})
}

func (h *Handler) popular(c *gin.Context) {
	ctx := c.Request.Context()
	blogs, err := h.svc.PopularBlogs(ctx, defaultTop)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	signals, err := h.svc.PopularSignals(ctx, defaultTop)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"blogs": blogs, "signals": signals})
}

func (h *Handler) categoryDistribution(c *gin.Context) {
	rows, err := h.svc.CategoryDistribution(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, rows)
}

func (h *Handler) tagCloud(c *gin.Context) {
	rows, err := h.svc.TagCloud(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, rows)
}

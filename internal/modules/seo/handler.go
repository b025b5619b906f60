package seo

import (
	"errors"
	"strconv"

	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /seo on the guarded admin API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	seo := rg.Group("/seo")
	seo.GET("/content", h.content)
	seo.PUT("/content/:id", h.updateContent)
	seo.GET("/robots", h.robots)
	seo.PUT("/robots", h.saveRobots)
	seo.GET("/sitemap", h.sitemap)
	seo.POST("/sitemap", h.regenerateSitemap)
}

// RegisterPublicRoutes serves the crawler files at the site root.
func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.GET("/robots.txt", h.robotsTxt)
	r.GET("/sitemap.xml", h.sitemapXML)
}

func (h *Handler) content(c *gin.Context) {
	items, stats, err := h.svc.Content(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"content": items, "stats": stats})
}

func (h *Handler) updateContent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid ID")
		return
	}
	var dto ContentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err = h.svc.UpdateContent(c.Request.Context(), uint(id), &dto)
	switch {
	case errors.Is(err, ErrInvalidType):
		response.BadRequest(c, "Invalid type")
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, "Content not found")
	case err != nil:
		response.InternalError(c, err)
	default:
		response.OK(c, gin.H{"success": true})
	}
}

func (h *Handler) robots(c *gin.Context) {
	content, err := h.svc.Robots()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"content": content})
}

func (h *Handler) saveRobots(c *gin.Context) {
	var dto struct {
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil || dto.Content == nil {
		response.BadRequest(c, "content is required")
		return
	}
	if err := h.svc.SaveRobots(*dto.Content); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) sitemap(c *gin.Context) {
	data, err := h.svc.SitemapPreview(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"preview": string(data)})
}

func (h *Handler) regenerateSitemap(c *gin.Context) {
	data, err := h.svc.RegenerateSitemap(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "preview": string(data)})
}

func (h *Handler) robotsTxt(c *gin.Context) {
	content, err := h.svc.Robots()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(200, "text/plain; charset=utf-8", []byte(content))
}

func (h *Handler) sitemapXML(c *gin.Context) {
	data, err := h.svc.SitemapPreview(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(200, "application/xml; charset=utf-8", data)
}

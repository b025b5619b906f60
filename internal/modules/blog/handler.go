package blog

import (
	"errors"
	"strconv"

	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/pagination"
	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler serves the admin blog API and the public blog listing.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /blog on the guarded admin group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	blogs := rg.Group("/blog")
	blogs.GET("", h.list)
	blogs.POST("", h.create)
	blogs.GET("/:id", h.get)
	blogs.PUT("/:id", h.update)
	blogs.DELETE("/:id", h.delete)
}

// RegisterPublicRoutes mounts /blogs on the public API group.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/blogs", h.listPublished)
}

type blogDetail struct {
	*models.Blog
	CategoryIDs []uint `json:"categoryIds"`
}

// list GET /blog
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"blogs": items})
}

// create POST /blog
func (h *Handler) create(c *gin.Context) {
	var dto CreateBlogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"success": true, "blog": b})
}

// get GET /blog/:id
func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if b == nil {
		response.NotFoundMsg(c, "Blog post not found")
		return
	}
	ids, err := h.svc.CategoryIDs(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, blogDetail{Blog: b, CategoryIDs: ids})
}

// update PUT /blog/:id
func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdateBlogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	b, err := h.svc.Update(c.Request.Context(), id, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "blog": b})
}

// delete DELETE /blog/:id
func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// listPublished GET /blogs
func (h *Handler) listPublished(c *gin.Context) {
	q := pagination.FromContext(c, pagination.DefaultSize)
	blogs, total, err := h.svc.ListPublished(c.Request.Context(), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.OK(c, gin.H{
		"data":       blogs,
		"total":      total,
		"page":       q.Page,
		"totalPages": totalPages,
	})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid blog ID")
		return 0, false
	}
	return uint(id), true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		response.BadRequest(c, "Title and content are required")
	case errors.Is(err, ErrSlugTaken):
		response.BadRequest(c, "A blog with this slug already exists")
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, "Blog post not found")
	default:
		response.InternalError(c, err)
	}
}

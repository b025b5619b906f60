package category

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

// RegisterRoutes mounts /categories; rg carries the admin guard.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	cats := rg.Group("/categories")
	cats.GET("", h.list)
	cats.POST("", h.create)
	cats.PUT("", h.update)
	cats.DELETE("", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	cats, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"categories": cats})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Category name is required")
		return
	}
	cat, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, gin.H{"success": true, "category": cat})
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Category ID is required")
		return
	}
	cat, err := h.svc.Update(c.Request.Context(), &dto)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "category": cat})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Category ID is required")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), uint(id)); err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNameTaken):
		response.BadRequest(c, "Category name already exists")
	case errors.Is(err, ErrNameRequired):
		response.BadRequest(c, "Category name is required")
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, "Category not found")
	default:
		response.InternalError(c, err)
	}
}

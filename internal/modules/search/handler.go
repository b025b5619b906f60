package search

import (
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

// RegisterRoutes mounts /search on the public API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	if limiter != nil {
		rg.GET("/search", limiter, h.search)
		return
	}
	rg.GET("/search", h.search)
}

// search GET /search?q=&type=&limit=
func (h *Handler) search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.svc.Search(c.Request.Context(), NewQuery(c.Query("q"), c.Query("type"), limit))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, res)
}

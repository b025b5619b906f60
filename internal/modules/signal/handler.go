package signal

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/forexfactory/site/internal/pkg/storage"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc   *Service
	store storage.Store
}

func NewHandler(svc *Service, store storage.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

// RegisterRoutes mounts /signals on the guarded admin group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	signals := rg.Group("/signals")
	signals.GET("", h.list)
	signals.POST("", h.create)
	signals.GET("/:id", h.get)
	signals.PUT("/:id", h.update)
	signals.DELETE("/:id", h.delete)
}

// RegisterPublicRoutes mounts the uuid lookup on the public API group.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/signals/:uuid", h.getByUUID)
}

// RegisterDownloadRoute mounts /download/:uuid at the site root.
func (h *Handler) RegisterDownloadRoute(r gin.IRouter) {
	r.GET("/download/:uuid", h.download)
}

func (h *Handler) list(c *gin.Context) {
	signals, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"signals": signals})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSignalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sig, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"success": true, "signal": sig})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sig, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sig == nil {
		response.NotFoundMsg(c, "Signal not found")
		return
	}
	response.OK(c, sig)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdateSignalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sig, err := h.svc.Update(c.Request.Context(), id, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "signal": sig})
}

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

// getByUUID GET /api/signals/:uuid
func (h *Handler) getByUUID(c *gin.Context) {
	sig, err := h.svc.GetByUUID(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sig == nil {
		response.NotFoundMsg(c, "Signal not found")
		return
	}
	response.OK(c, sig)
}

// download GET /download/:uuid counts the download and redirects to the file.
func (h *Handler) download(c *gin.Context) {
	ctx := c.Request.Context()
	sig, err := h.svc.GetByUUID(ctx, c.Param("uuid"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sig == nil {
		response.NotFoundMsg(c, "Signal not found")
		return
	}
	if err := h.svc.IncrementDownloads(ctx, sig.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.fileURL(sig.FilePath))
}

// fileURL turns a stored file path into a URL; absolute URLs pass through.
func (h *Handler) fileURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || h.store == nil {
		return path
	}
	return h.store.PublicURL(strings.TrimPrefix(path, "/"))
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid signal ID")
		return 0, false
	}
	return uint(id), true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		response.BadRequest(c, "Title, description, and file are required")
	case errors.Is(err, ErrNotFound):
		response.NotFoundMsg(c, "Signal not found")
	default:
		response.InternalError(c, err)
	}
}

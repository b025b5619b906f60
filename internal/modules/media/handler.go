package media

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/middleware"
	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/forexfactory/site/internal/pkg/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const immutableCache = "public, max-age=31536000, immutable"

type Handler struct {
	svc          *Service
	store        storage.Store
	log          *zap.Logger
	defaultLimit int
}

func NewHandler(svc *Service, store storage.Store, cfg *config.AppConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	limit := cfg.Upload.MediaLimit
	if limit <= 0 {
		limit = 50
	}
	return &Handler{svc: svc, store: store, log: log.Named("media"), defaultLimit: limit}
}

// RegisterRoutes mounts /media on the guarded admin API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	m := rg.Group("/media")
	m.GET("", h.list)
	m.POST("", h.create)
	m.DELETE("", h.delete)
}

// RegisterFileRoute mounts the object proxy used by embedded images.
func (h *Handler) RegisterFileRoute(r gin.IRouter) {
	r.GET("/admin/media/*path", h.serve)
}

func (h *Handler) list(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultLimit)))
	if err != nil || limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > 500 {
		limit = 500
	}
	items, err := h.svc.List(c.Request.Context(), c.DefaultQuery("type", KindAll), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"media": items})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateMediaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing required fields")
		return
	}
	if dto.UploadedBy == 0 {
		if p := middleware.CurrentPrincipal(c); p != nil {
			dto.UploadedBy = p.UserID
		}
	}
	m, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			response.BadRequest(c, "Missing required fields")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"success": true, "media": m})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Media ID is required")
		return
	}
	m, err := h.svc.Delete(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFoundMsg(c, "Media not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	if h.store != nil {
		if key, ok := h.store.KeyFromURL(m.FilePath); ok {
			if err := h.store.Delete(c.Request.Context(), key); err != nil {
				h.log.Warn("stored object not removed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	response.OK(c, gin.H{"success": true})
}

// serve GET /admin/media/*path streams an object from the bucket.
func (h *Handler) serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("path"), "/")
	if key == "" || strings.Contains(key, "..") || h.store == nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}
	obj, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.String(http.StatusNotFound, "File not found")
			return
		}
		h.log.Error("object fetch failed", zap.String("key", key), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error fetching file")
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	length := obj.ContentLength
	if length <= 0 {
		length = -1
	}
	c.DataFromReader(http.StatusOK, length, contentType, obj.Body, map[string]string{
		"Cache-Control": immutableCache,
	})
}

// Package upload accepts admin file uploads and forwards them to object storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/forexfactory/site/internal/pkg/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	presignTTL = time.Hour
	// formOverhead is the room left for multipart boundaries and the
	// folder field on top of the file size cap.
	formOverhead = 64 << 10
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrNoFile       = errors.New("no file provided")
)

// Result describes a stored upload.
type Result struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

type Service struct {
	store    storage.Store
	maxMB    int
	maxBytes int64
}

// NewService caps uploads at maxMB megabytes.
func NewService(store storage.Store, maxMB int) *Service {
	return &Service{store: store, maxMB: maxMB, maxBytes: int64(maxMB) << 20}
}

// Store checks the declared size first and only then touches storage.
func (s *Service) Store(ctx context.Context, fh *multipart.FileHeader, folder string) (*Result, error) {
	if fh == nil {
		return nil, ErrNoFile
	}
	if fh.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := storage.GenerateFileKey(fh.Filename, folder)
	url, err := s.store.Upload(ctx, key, io.LimitReader(f, s.maxBytes+1), fh.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}
	return &Result{
		Success:  true,
		URL:      url,
		Key:      key,
		Filename: fh.Filename,
		Size:     fh.Size,
		Type:     contentType,
	}, nil
}

// Presign returns a URL the browser can PUT the file to directly.
func (s *Service) Presign(ctx context.Context, filename, contentType, folder string) (key, uploadURL, publicURL string, err error) {
	key = storage.GenerateFileKey(filename, folder)
	uploadURL, err = s.store.PresignUpload(ctx, key, contentType, presignTTL)
	if err != nil {
		return "", "", "", err
	}
	return key, uploadURL, s.store.PublicURL(key), nil
}

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log.Named("upload")}
}

// RegisterRoutes mounts /upload on the guarded API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.POST("/upload/presign", h.presign)
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.svc.maxBytes + formOverhead
	if c.Request.ContentLength > limit {
		h.tooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.tooLarge(c)
		case errors.Is(err, http.ErrMissingFile):
			response.BadRequest(c, "No file provided")
		default:
			response.BadRequest(c, "Invalid multipart form")
		}
		return
	}
	folder := storage.CleanFolder(c.PostForm("folder"))

	res, err := h.svc.Store(c.Request.Context(), fh, folder)
	switch {
	case errors.Is(err, ErrFileTooLarge):
		h.tooLarge(c)
	case errors.Is(err, ErrNoFile):
		response.BadRequest(c, "No file provided")
	case err != nil:
		h.log.Error("upload failed", zap.String("filename", fh.Filename), zap.Error(err))
		response.InternalError(c, err)
	default:
		response.OK(c, res)
	}
}

func (h *Handler) tooLarge(c *gin.Context) {
	response.BadRequest(c, fmt.Sprintf("File size exceeds %dMB limit", h.svc.maxMB))
}

type presignDTO struct {
	Filename    string `json:"filename"    binding:"required"`
	ContentType string `json:"contentType"`
	Folder      string `json:"folder"`
}

func (h *Handler) presign(c *gin.Context) {
	var dto presignDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "filename is required")
		return
	}
	contentType := strings.TrimSpace(dto.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key, uploadURL, publicURL, err := h.svc.Presign(c.Request.Context(), dto.Filename, contentType, storage.CleanFolder(dto.Folder))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "key": key, "uploadUrl": uploadURL, "url": publicURL, "expiresIn": int(presignTTL.Seconds())})
}

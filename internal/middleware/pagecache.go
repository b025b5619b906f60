package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgredis "github.com/forexfactory/site/internal/pkg/redis"
	"github.com/gin-gonic/gin"
)

const (
	PageCachePrefix       = "ff:page:"
	defaultPageCacheBytes = 2 << 20
)

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	if len(w.body)+len(data) > w.maxBodyBytes {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

// PageCache serves a rendered GET page from Redis for ttl after its first
// render. Signed-in staff always get a fresh render. A nil client disables it.
func PageCache(rc *pkgredis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || ttl <= 0 || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if IsAuthenticated(c) {
			c.Header("Cache-Control", "private, no-store")
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := PageCachePrefix + c.Request.URL.RequestURI()
		if page, ok := readCachedPage(ctx, rc, key); ok {
			c.Header("X-Page-Cache", "hit")
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{ResponseWriter: c.Writer, maxBodyBytes: defaultPageCacheBytes}
		c.Writer = buffer
		c.Next()

		status := c.Writer.Status()
		if status != http.StatusOK || buffer.overflow || len(buffer.body) == 0 {
			return
		}
		if cc := strings.ToLower(c.Writer.Header().Get("Cache-Control")); strings.Contains(cc, "no-store") || strings.Contains(cc, "private") {
			return
		}

		raw, err := json.Marshal(cachedPage{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		})
		if err != nil {
			return
		}
		_ = rc.Set(ctx, key, raw, ttl)
	}
}

// PurgeOnWrite drops every cached page after a successful mutating request,
// so edits show up without waiting for the revalidation window.
func PurgeOnWrite(rc *pkgredis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if rc == nil || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			_, _ = PurgePageCache(context.WithoutCancel(c.Request.Context()), rc)
		}
	}
}

// PurgePageCache deletes all cached pages.
func PurgePageCache(ctx context.Context, rc *pkgredis.Client) (int64, error) {
	return rc.DelPrefix(ctx, PageCachePrefix)
}

func readCachedPage(ctx context.Context, rc *pkgredis.Client, key string) (cachedPage, bool) {
	raw, err := rc.Get(ctx, key)
	if err != nil || raw == "" {
		return cachedPage{}, false
	}
	var page cachedPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return cachedPage{}, false
	}
	if page.Status <= 0 {
		page.Status = http.StatusOK
	}
	if page.ContentType == "" {
		page.ContentType = "text/html; charset=utf-8"
	}
	body, err := base64.StdEncoding.DecodeString(page.BodyBase64)
	if err != nil {
		return cachedPage{}, false
	}
	page.Body = body
	return page, true
}

// RevalidateHeader advertises the page's revalidation window to CDNs.
// Headers are flushed with the body, so it is set before the handler runs.
func RevalidateHeader(ttl time.Duration) gin.HandlerFunc {
	value := "public, s-maxage=" + strconv.Itoa(int(ttl/time.Second)) + ", stale-while-revalidate=60"
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}

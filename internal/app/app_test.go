package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/database/dbtest"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/auth"
	"github.com/forexfactory/site/internal/pkg/authz"
	jwtpkg "github.com/forexfactory/site/internal/pkg/jwt"
	"github.com/forexfactory/site/internal/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	db     *gorm.DB
	store  *storage.Memory
	router *gin.Engine
	auth   *auth.Service
}

func testConfig(t *testing.T) *config.AppConfig {
	return &config.AppConfig{
		Port: 3000,
		Env:  "production",
		Site: config.SiteConfig{
			URL:  "https://example.test",
			Name: "Forex Factory",
			Revalidate: config.RevalidateConfig{
				Home: 300 * time.Second,
				Blog: 60 * time.Second,
			},
		},
		Session: config.SessionConfig{Secret: "test-secret", TTL: time.Hour},
		Upload:  config.UploadConfig{MaxSizeMB: 1, MediaLimit: 50},
		Paths:   config.RuntimePathsConfig{Public: t.TempDir()},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtpkg.SetSecret("test-secret")
	db := dbtest.New(t)
	store := storage.NewMemory("https://cdn.example.test")
	cfg := testConfig(t)
	router, err := NewRouter(Deps{Config: cfg, DB: db, Store: store})
	require.NoError(t, err)
	return &harness{db: db, store: store, router: router, auth: auth.NewService(db, time.Hour)}
}

func (h *harness) token(t *testing.T, username, role string) string {
	t.Helper()
	ctx := context.Background()
	_, err := h.auth.CreateUser(ctx, auth.CreateUserInput{Username: username, Password: "password123", Role: role})
	require.NoError(t, err)
	token, _, err := h.auth.Login(ctx, username, "password123", "127.0.0.1", "test")
	require.NoError(t, err)
	return token
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func TestAnonymousWriteIsRejected(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/admin/blog", "", map[string]string{"title": "Hello", "content": "<p>hi</p>"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":0`)
	assert.Zero(t, h.count(t, &models.Blog{}))

	body, ctype := uploadBody(t, "a.png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, h.store.Calls())
}

func TestEditorIsLimitedToStaffRoutes(t *testing.T) {
	h := newHarness(t)
	editor := h.token(t, "editor", models.RoleEditor)
	admin := h.token(t, "admin", models.RoleAdmin)

	w := h.do(http.MethodPost, "/api/admin/blog", editor, map[string]string{"title": "Hello World", "content": "<p>hi</p>"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var blog models.Blog
	require.NoError(t, h.db.First(&blog).Error)
	assert.Equal(t, "hello-world", blog.SeoSlug)

	itemPath := "/api/admin/blog/" + strconv.FormatUint(uint64(blog.ID), 10)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodDelete, itemPath, editor, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/admin/categories", editor, map[string]string{"name": "MT4"}).Code)
	assert.Zero(t, h.count(t, &models.Category{}))
	assert.Equal(t, int64(1), h.count(t, &models.Blog{}))

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, itemPath, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, itemPath, admin, nil).Code)
}

func TestOversizeUploadNeverReachesStorage(t *testing.T) {
	h := newHarness(t)
	editor := h.token(t, "editor", models.RoleEditor)

	body, ctype := uploadBody(t, "big.zip", bytes.Repeat([]byte("x"), 1024*1024+1))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", "Bearer "+editor)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File size exceeds 1MB limit")
	assert.Zero(t, h.store.Calls())
}

func TestPublishedBlogPage(t *testing.T) {
	h := newHarness(t)
	admin := h.token(t, "admin", models.RoleAdmin)

	w := h.do(http.MethodPost, "/api/admin/blog", admin, map[string]string{
		"title":   "Hello World",
		"content": "<h2>Setup</h2><p>hi</p>",
		"status":  models.BlogPublished,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	page := h.do(http.MethodGet, "/blog/hello-world", "", nil)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Hello World")
	assert.True(t, strings.HasPrefix(page.Header().Get("Cache-Control"), "public, s-maxage=60"))

	missing := h.do(http.MethodGet, "/blog/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	apiMissing := h.do(http.MethodGet, "/api/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, apiMissing.Code)
	assert.Contains(t, apiMissing.Body.String(), `"ok":0`)
}

func TestAdminPagesRedirectToLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/admin/dashboard", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fdashboard", w.Header().Get("Location"))

	login := h.do(http.MethodGet, "/admin/login", "", nil)
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestEveryGuardedRouteIsInThePolicyTable(t *testing.T) {
	h := newHarness(t)

	for _, route := range h.router.Routes() {
		guarded := strings.HasPrefix(route.Path, "/api/admin") ||
			strings.HasPrefix(route.Path, "/api/upload") ||
			(strings.HasPrefix(route.Path, "/admin") && route.Path != "/admin/login" && !strings.HasPrefix(route.Path, "/admin/media/"))
		if !guarded {
			continue
		}
		_, ok := accessPolicy.Routes[route.Method+" "+route.Path]
		assert.True(t, ok, "no policy entry for %s %s", route.Method, route.Path)
	}
}

func TestPolicyOverride(t *testing.T) {
	p := buildPolicy(map[string]string{"GET /admin/categories": "staff"})
	assert.Equal(t, authz.Staff, p.Required(http.MethodGet, "/admin/categories"))
	assert.Equal(t, authz.Admin, accessPolicy.Required(http.MethodGet, "/admin/categories"))
	assert.Equal(t, authz.Admin, p.Required(http.MethodGet, "/api/admin/unlisted"))
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/ping", "", nil).Code)
	up := h.do(http.MethodGet, "/api/uptime", "", nil)
	assert.Equal(t, http.StatusOK, up.Code)
	assert.Contains(t, up.Body.String(), "humanize")
}

func TestMatchOriginPattern(t *testing.T) {
	assert.True(t, matchOriginPattern("example.com", extractOriginHost("https://example.com")))
	assert.True(t, matchOriginPattern("*.example.com", "admin.example.com"))
	assert.True(t, matchOriginPattern("localhost:*", "localhost:5173"))
	assert.False(t, matchOriginPattern("*.example.com", "example.org"))
}

func uploadBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

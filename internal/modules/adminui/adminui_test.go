package adminui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/forexfactory/site/internal/database/dbtest"
	"github.com/forexfactory/site/internal/middleware"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/auth"
	"github.com/forexfactory/site/internal/modules/blog"
	"github.com/forexfactory/site/internal/modules/category"
	"github.com/forexfactory/site/internal/modules/media"
	"github.com/forexfactory/site/internal/modules/seo"
	"github.com/forexfactory/site/internal/modules/signal"
	"github.com/forexfactory/site/internal/modules/stats"
	"github.com/forexfactory/site/internal/pkg/authz"
	"github.com/forexfactory/site/internal/pkg/flash"
	jwtpkg "github.com/forexfactory/site/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	router  http.Handler
	cookies map[string]*http.Cookie
}

func (cl *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck
	}
	return w
}

type fixture struct {
	auth  *auth.Service
	blogs *blog.Service
	new   func() *client
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtpkg.SetSecret("test-secret")
	db := dbtest.New(t)

	authSvc := auth.NewService(db, time.Hour)
	authSvc.FailureDelay = 0
	blogs := blog.NewService(db, nil)
	signals := signal.NewService(db)
	svc := Services{
		Auth:       authSvc,
		Stats:      stats.NewService(db),
		Blogs:      blogs,
		Signals:    signals,
		Categories: category.NewService(db),
		Media:      media.NewService(db),
		SEO:        seo.NewService(db, blogs, signals, t.TempDir(), "https://example.com"),
	}
	h, err := NewHandler(svc, flash.New("flash-secret", false), false, 50, nil)
	require.NoError(t, err)

	policy := middleware.Policy{
		Routes: map[string]authz.Capability{
			"GET /admin/categories":     authz.Admin,
			"GET /admin/blogs/:id/edit": authz.Admin,
		},
		Fallback: authz.Staff,
	}
	r := gin.New()
	r.Use(middleware.Authenticate(db))
	h.RegisterRoutes(r, middleware.RequirePage(policy), nil)

	return &fixture{
		auth:  authSvc,
		blogs: blogs,
		new: func() *client {
			return &client{router: r, cookies: map[string]*http.Cookie{}}
		},
	}
}

func (f *fixture) user(t *testing.T, name, role string) {
	t.Helper()
	_, err := f.auth.CreateUser(context.Background(), auth.CreateUserInput{Username: name, Password: "secret", Role: role})
	require.NoError(t, err)
}

func TestPagesRedirectAnonymousVisitorsToLogin(t *testing.T) {
	f := setup(t)
	cl := f.new()

	w := cl.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fdashboard", w.Header().Get("Location"))

	w = cl.do(http.MethodGet, "/admin/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="next" value="/admin/dashboard"`)
}

func TestLoginFailureShowsFlashOnce(t *testing.T) {
	f := setup(t)
	f.user(t, "admin", models.RoleAdmin)
	cl := f.new()

	w := cl.do(http.MethodPost, "/admin/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/admin/login"))
	assert.NotContains(t, cl.cookies, middleware.TokenCookie)

	w = cl.do(http.MethodGet, "/admin/login", nil)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	w = cl.do(http.MethodGet, "/admin/login", nil)
	assert.NotContains(t, w.Body.String(), "Invalid username or password")
}

func TestLoginDashboardAndLogout(t *testing.T) {
	f := setup(t)
	f.user(t, "admin", models.RoleAdmin)
	_, err := f.blogs.Create(context.Background(), &blog.CreateBlogDTO{Title: "First post", Content: "<p>x</p>"})
	require.NoError(t, err)
	cl := f.new()

	w := cl.do(http.MethodPost, "/admin/login", url.Values{
		"username": {"admin"}, "password": {"secret"}, "next": {"/admin/blogs"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/blogs", w.Header().Get("Location"))
	require.Contains(t, cl.cookies, middleware.TokenCookie)

	w = cl.do(http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "First post")
	assert.Contains(t, w.Body.String(), `href="/admin/categories"`)

	w = cl.do(http.MethodGet, "/admin/login", nil)
	assert.Equal(t, http.StatusFound, w.Code, "signed-in users skip the form")

	w = cl.do(http.MethodPost, "/admin/logout", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))

	w = cl.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestEditorCannotOpenAdminOnlyPages(t *testing.T) {
	f := setup(t)
	f.user(t, "ed", models.RoleEditor)
	b, err := f.blogs.Create(context.Background(), &blog.CreateBlogDTO{Title: "Post", Content: "<p>x</p>"})
	require.NoError(t, err)
	cl := f.new()

	w := cl.do(http.MethodPost, "/admin/login", url.Values{"username": {"ed"}, "password": {"secret"}})
	require.Equal(t, http.StatusFound, w.Code)

	w = cl.do(http.MethodGet, "/admin/blogs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "/edit")
	assert.NotContains(t, w.Body.String(), `href="/admin/categories"`)

	w = cl.do(http.MethodGet, "/admin/categories", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = cl.do(http.MethodGet, "/admin/blogs/"+strconv.FormatUint(uint64(b.ID), 10)+"/edit", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = cl.do(http.MethodGet, "/admin/blogs/new", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEditFormsForMissingItemsAre404(t *testing.T) {
	f := setup(t)
	f.user(t, "admin", models.RoleAdmin)
	cl := f.new()
	cl.do(http.MethodPost, "/admin/login", url.Values{"username": {"admin"}, "password": {"secret"}})

	for _, path := range []string{"/admin/blogs/999/edit", "/admin/signals/999/edit", "/admin/signals/abc/edit"} {
		w := cl.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	for _, path := range []string{"/admin/signals", "/admin/signals/new", "/admin/media", "/admin/seo", "/admin/categories"} {
		w := cl.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                      dashboardPath,
		"/admin/seo":            "/admin/seo",
		"https://evil.example":  dashboardPath,
		"//evil.example/admin":  dashboardPath,
		"/admin/login?next=/x":  dashboardPath,
		"/blog/hello":           dashboardPath,
		"/admin\\@evil.example": dashboardPath,
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), in)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/authz"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func withPrincipal(p *authz.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			c.Set(contextKeyPrincipal, p)
		}
		c.Next()
	}
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

var testPolicy = Policy{
	Fallback: authz.Admin,
	Routes: map[string]authz.Capability{
		"POST /api/items":    authz.Staff,
		"GET /admin/items":   authz.Staff,
		"GET /admin/secrets": authz.Admin,
	},
}

func TestPolicyRequired(t *testing.T) {
	assert.Equal(t, authz.Staff, testPolicy.Required(http.MethodPost, "/api/items"))
	assert.Equal(t, authz.Admin, testPolicy.Required(http.MethodDelete, "/api/items"))
	assert.Equal(t, authz.Admin, Policy{}.Required(http.MethodGet, "/x"))

	o := testPolicy.Override(map[string]string{"GET /admin/secrets": "staff", "GET /bogus": "root"})
	assert.Equal(t, authz.Staff, o.Required(http.MethodGet, "/admin/secrets"))
	assert.Equal(t, authz.Admin, testPolicy.Required(http.MethodGet, "/admin/secrets"))
	_, ok := o.Routes["GET /bogus"]
	assert.False(t, ok)
}

func TestRequireAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	editor := &authz.Principal{UserID: 2, Role: models.RoleEditor}
	admin := &authz.Principal{UserID: 1, Role: models.RoleAdmin}

	cases := []struct {
		name   string
		p      *authz.Principal
		method string
		want   int
	}{
		{"anonymous", nil, http.MethodPost, http.StatusUnauthorized},
		{"editor staff route", editor, http.MethodPost, http.StatusOK},
		{"editor fallback route", editor, http.MethodDelete, http.StatusUnauthorized},
		{"admin fallback route", admin, http.MethodDelete, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			r := gin.New()
			r.Use(withPrincipal(tc.p), RequireAPI(testPolicy))
			r.Handle(tc.method, "/api/items", func(c *gin.Context) {
				calls++
				c.Status(http.StatusOK)
			})
			w := serve(r, tc.method, "/api/items")
			assert.Equal(t, tc.want, w.Code)
			if tc.want != http.StatusOK {
				assert.Zero(t, calls)
			}
		})
	}
}

func TestRequirePageRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withPrincipal(&authz.Principal{UserID: 2, Role: models.RoleEditor}))
	g := r.Group("/admin", RequirePage(testPolicy))
	g.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.GET("/secrets", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin/items").Code)

	w := serve(r, http.MethodGet, "/admin/secrets?tab=1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fsecrets%3Ftab%3D1", w.Header().Get("Location"))
}

func TestPrincipalAllows(t *testing.T) {
	var anon *authz.Principal
	assert.True(t, anon.Allows(authz.Public))
	assert.False(t, anon.Allows(authz.Staff))
	editor := &authz.Principal{Role: models.RoleEditor}
	assert.True(t, editor.Allows(authz.Staff))
	assert.False(t, editor.Allows(authz.Admin))
	assert.False(t, (&authz.Principal{Role: "viewer"}).Allows(authz.Staff))
}

func TestPageCacheWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	renders := 0
	r := gin.New()
	r.GET("/", RevalidateHeader(5*time.Minute), PageCache(nil, 5*time.Minute), func(c *gin.Context) {
		renders++
		c.String(http.StatusOK, "home")
	})

	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodGet, "/")
		assert.Equal(t, "home", w.Body.String())
		assert.Equal(t, "public, s-maxage=300, stale-while-revalidate=60", w.Header().Get("Cache-Control"))
		assert.Empty(t, w.Header().Get("X-Page-Cache"))
	}
	assert.Equal(t, 2, renders)
}

func TestRevalidateHeaderSkipsSignedInStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withPrincipal(&authz.Principal{UserID: 1, Role: models.RoleAdmin}))
	r.GET("/", RevalidateHeader(time.Minute), func(c *gin.Context) { c.String(http.StatusOK, "home") })

	assert.Empty(t, serve(r, http.MethodGet, "/").Header().Get("Cache-Control"))
}

func TestRateLimitWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/search", RateLimit(nil, RateLimitOptions{Name: "search", Max: 1}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/search").Code)
	}
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Empty(t, NormalizeToken("   "))
}

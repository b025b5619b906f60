package app

import (
	"github.com/forexfactory/site/internal/middleware"
	"github.com/forexfactory/site/internal/pkg/authz"
)

// accessPolicy is the single table of role requirements for guarded routes.
// Category management and single-item blog/signal routes are admin only;
// the rest of the admin surface is open to editors. Routes not listed here
// require admin.
var accessPolicy = middleware.Policy{
	Fallback: authz.Admin,
	Routes: map[string]authz.Capability{
		"GET /api/admin/blog":        authz.Staff,
		"POST /api/admin/blog":       authz.Staff,
		"GET /api/admin/blog/:id":    authz.Admin,
		"PUT /api/admin/blog/:id":    authz.Admin,
		"DELETE /api/admin/blog/:id": authz.Admin,

		"GET /api/admin/signals":        authz.Staff,
		"POST /api/admin/signals":       authz.Staff,
		"GET /api/admin/signals/:id":    authz.Admin,
		"PUT /api/admin/signals/:id":    authz.Admin,
		"DELETE /api/admin/signals/:id": authz.Admin,

		"GET /api/admin/categories":    authz.Admin,
		"POST /api/admin/categories":   authz.Admin,
		"PUT /api/admin/categories":    authz.Admin,
		"DELETE /api/admin/categories": authz.Admin,

		"GET /api/admin/media":    authz.Staff,
		"POST /api/admin/media":   authz.Staff,
		"DELETE /api/admin/media": authz.Staff,

		"GET /api/admin/seo/content":     authz.Staff,
		"PUT /api/admin/seo/content/:id": authz.Staff,
		"GET /api/admin/seo/robots":      authz.Staff,
		"PUT /api/admin/seo/robots":      authz.Staff,
		"GET /api/admin/seo/sitemap":     authz.Staff,
		"POST /api/admin/seo/sitemap":    authz.Staff,

		"GET /api/admin/stats":                       authz.Staff,
		"GET /api/admin/stats/popular":               authz.Staff,
		"GET /api/admin/stats/category-distribution": authz.Staff,
		"GET /api/admin/stats/tag-cloud":             authz.Staff,

		"POST /api/admin/cache/purge": authz.Admin,

		"POST /api/upload":         authz.Staff,
		"POST /api/upload/presign": authz.Staff,

		"GET /admin":                  authz.Staff,
		"POST /admin/logout":          authz.Staff,
		"GET /admin/dashboard":        authz.Staff,
		"GET /admin/blogs":            authz.Staff,
		"GET /admin/blogs/new":        authz.Staff,
		"GET /admin/blogs/:id/edit":   authz.Admin,
		"GET /admin/signals":          authz.Staff,
		"GET /admin/signals/new":      authz.Staff,
		"GET /admin/signals/:id/edit": authz.Admin,
		"GET /admin/categories":       authz.Admin,
		"GET /admin/media":            authz.Staff,
		"GET /admin/seo":              authz.Staff,
	},
}

// buildPolicy applies the configured per-route overrides.
func buildPolicy(overrides map[string]string) middleware.Policy {
	if len(overrides) == 0 {
		return accessPolicy
	}
	return accessPolicy.Override(overrides)
}

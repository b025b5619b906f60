package middleware

import (
	"net/http"
	"net/url"

	"github.com/forexfactory/site/internal/pkg/authz"
	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// LoginPath is where unauthenticated admin UI visitors are sent.
const LoginPath = "/admin/login"

// Policy maps "METHOD /route/pattern" to the capability it requires.
// Routes missing from the table require Fallback.
type Policy struct {
	Routes   map[string]authz.Capability
	Fallback authz.Capability
}

// Required returns the capability for a method and registered route pattern.
func (p Policy) Required(method, fullPath string) authz.Capability {
	if c, ok := p.Routes[method+" "+fullPath]; ok {
		return c
	}
	if p.Fallback == "" {
		return authz.Admin
	}
	return p.Fallback
}

// Override replaces entries from config; unknown capabilities are ignored.
func (p Policy) Override(entries map[string]string) Policy {
	routes := make(map[string]authz.Capability, len(p.Routes)+len(entries))
	for k, v := range p.Routes {
		routes[k] = v
	}
	for k, v := range entries {
		if c, ok := authz.ParseCapability(v); ok {
			routes[k] = c
		}
	}
	return Policy{Routes: routes, Fallback: p.Fallback}
}

// RequireAPI rejects callers lacking the route's capability with 401 before
// the handler runs.
func RequireAPI(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).Allows(p.Required(c.Request.Method, c.FullPath())) {
			response.Unauthorized(c)
			return
		}
		c.Next()
	}
}

// RequirePage redirects admin UI visitors lacking the route's capability to
// the login page.
func RequirePage(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).Allows(p.Required(c.Request.Method, c.FullPath())) {
			target := LoginPath
			if c.Request.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

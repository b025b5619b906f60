// Package authz defines the authenticated principal carried through a
// request and the capabilities routes can require.
package authz

import (
	"context"

	"github.com/forexfactory/site/internal/models"
)

// Capability is what a route requires of the caller.
type Capability string

const (
	// Public routes require nothing.
	Public Capability = "public"
	// Staff is any admin-panel user: admin or editor.
	Staff Capability = "staff"
	// Admin is restricted to the admin role.
	Admin Capability = "admin"
)

// ParseCapability maps a config value to a Capability.
func ParseCapability(s string) (Capability, bool) {
	switch Capability(s) {
	case Public, Staff, Admin:
		return Capability(s), true
	}
	return "", false
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uint
	SessionID string
	Username  string
	Name      string
	Role      string
}

// Allows reports whether the principal satisfies c. A nil principal only
// satisfies Public.
func (p *Principal) Allows(c Capability) bool {
	switch c {
	case Public:
		return true
	case Staff:
		return p != nil && (p.Role == models.RoleAdmin || p.Role == models.RoleEditor)
	case Admin:
		return p != nil && p.Role == models.RoleAdmin
	}
	return false
}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKey{}).(*Principal)
	return p
}

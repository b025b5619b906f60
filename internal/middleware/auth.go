package middleware

import (
	"errors"
	"strings"

	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/authz"
	"github.com/forexfactory/site/internal/pkg/jwt"
	sessionpkg "github.com/forexfactory/site/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// TokenCookie holds the session token for browser clients.
	TokenCookie         = "ff_token"
	contextKeyPrincipal = "principal"
)

var errInactiveSession = errors.New("session expired or revoked")

// Authenticate resolves the caller from a bearer token or the session cookie
// and stores the principal on the request. It never rejects; RequireAPI and
// RequirePage do.
func Authenticate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, err := ResolvePrincipal(db.WithContext(c.Request.Context()), extractToken(c)); err == nil && p != nil {
			c.Set(contextKeyPrincipal, p)
			c.Request = c.Request.WithContext(authz.WithPrincipal(c.Request.Context(), p))
		}
		c.Next()
	}
}

// ResolvePrincipal validates a raw token against its session row and loads
// the user's current role.
func ResolvePrincipal(db *gorm.DB, rawToken string) (*authz.Principal, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, nil
	}
	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	active, err := sessionpkg.IsActive(db, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, errInactiveSession
	}

	var u models.User
	if err := db.Select("id, username, name, role").First(&u, claims.UserID).Error; err != nil {
		return nil, err
	}
	return &authz.Principal{
		UserID:    u.ID,
		SessionID: claims.SessionID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
	}, nil
}

// CurrentPrincipal returns the authenticated caller, or nil.
func CurrentPrincipal(c *gin.Context) *authz.Principal {
	v, ok := c.Get(contextKeyPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*authz.Principal)
	return p
}

// IsAuthenticated returns true if the request carries a valid session.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentPrincipal(c) != nil
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return NormalizeToken(cookie)
	}
	return ""
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

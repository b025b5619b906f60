package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/forexfactory/site/internal/middleware"
	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc          *Service
	secureCookie bool
}

func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RegisterRoutes mounts /auth. limiter guards the login endpoint and may be nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	g := rg.Group("/auth")
	if limiter != nil {
		g.POST("/login", limiter, h.login)
	} else {
		g.POST("/login", h.login)
	}
	g.POST("/logout", h.logout)
	g.GET("/session", h.session)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Username and password are required")
		return
	}
	token, user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.UnauthorizedMsg(c, "Invalid username or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	SetCookie(c, token, h.svc.TTL(), h.secureCookie)
	response.OK(c, gin.H{"token": token, "user": user})
}

func (h *Handler) logout(c *gin.Context) {
	if p := middleware.CurrentPrincipal(c); p != nil {
		if err := h.svc.Logout(c.Request.Context(), p.UserID, p.SessionID); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	ClearCookie(c, h.secureCookie)
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) session(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		response.OK(c, gin.H{"authenticated": false, "user": nil})
		return
	}
	response.OK(c, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":       p.UserID,
			"username": p.Username,
			"name":     p.Name,
			"role":     p.Role,
		},
	})
}

// SetCookie stores the session token in an HttpOnly cookie.
func SetCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearCookie expires the session cookie.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", secure, true)
}

package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"anoa.com/schoolhub/internal/entity"
	authService "anoa.com/schoolhub/internal/modules/auth/service"
	"anoa.com/schoolhub/internal/modules/auth/session"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

type AuthMiddleware struct {
	auth     authService.AuthService
	sessions *session.Manager
}

func NewAuthMiddleware(auth authService.AuthService, sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		auth:     auth,
		sessions: sessions,
	}
}

// LoadPrincipal resolves the current principal from a bearer token or the
// session marker. It never rejects a request.
func (m *AuthMiddleware) LoadPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" {
			if p, err := m.auth.ResolveToken(c.Request.Context(), raw); err == nil {
				c.Set(principalKey, p)
			}
			c.Next()
			return
		}

		if marker, ok := m.sessions.Marker(c.Request); ok {
			if p := m.auth.Resolve(c.Request.Context(), marker); p != nil {
				c.Set(principalKey, p)
			}
		}
		c.Next()
	}
}

// RequireAuth sends anonymous browsers to the login page.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) != nil {
			c.Next()
			return
		}

		_ = m.sessions.AddFlash(c.Writer, c.Request, "Please log in to access this page.")
		c.Redirect(http.StatusFound, "/auth/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RequireAPIAuth answers 401 JSON for anonymous API calls.
func (m *AuthMiddleware) RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles must run after RequireAuth or RequireAPIAuth.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p != nil && p.HasRole(roles...) {
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}

		_ = m.sessions.AddFlash(c.Writer, c.Request, "You do not have permission to access this page.")
		c.Redirect(http.StatusFound, "/dashboard")
		c.Abort()
	}
}

// CurrentPrincipal returns the principal loaded for this request, or nil.
func CurrentPrincipal(c *gin.Context) *entity.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*entity.Principal)
	return p
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Browsers cannot set headers on WebSocket handshakes.
	if strings.HasSuffix(c.Request.URL.Path, "/ws") {
		return c.Query("token")
	}
	return ""
}

// SafeNext keeps redirects on this site: only local absolute paths pass.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}

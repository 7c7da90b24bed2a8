package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

// SessionResolver turns a signed token into a session, or nil.
type SessionResolver interface {
	ResolveSession(token string) *model.Session
}

type AuthMiddleware struct {
	resolver   SessionResolver
	cookieName string
}

func NewAuthMiddleware(resolver SessionResolver, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		resolver:   resolver,
		cookieName: cookieName,
	}
}

// Authenticate reads the session token from the cookie, falling back to a
// bearer token, and stores the session in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.token(c)
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("sign in required"))
			c.Abort()
			return
		}

		session := m.resolver.ResolveSession(token)
		if session == nil {
			_ = c.Error(apperrors.Unauthorized("session expired or invalid"))
			c.Abort()
			return
		}

		handler.SetSession(c, session)
		c.Next()
	}
}

func (m *AuthMiddleware) token(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

const (
	ContextKeyIdentity = "identity"
	ContextKeyToken    = "token"
)

// AuthMiddleware returns Gin middleware that resolves the bearer token to the
// calling identity and stores it in the context.
func AuthMiddleware(resolver port.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		identity, err := resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrAuthUnavailable) {
				abort(c, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "auth service unavailable")
				return
			}
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

// GetIdentity extracts the caller identity from the Gin context.
func GetIdentity(c *gin.Context) (*domain.Identity, error) {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil, domain.ErrUnauthorized
	}
	identity, ok := val.(*domain.Identity)
	if !ok || identity == nil {
		return nil, domain.ErrUnauthorized
	}
	return identity, nil
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": msg},
		"detail":  msg,
	})
}

package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/service"
)

const claimsContextKey = "authClaims"

// AuthMiddleware creates middleware that validates access tokens
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := auth.VerifyAccess(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrInfrastructure) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			}
			return
		}

		c.Set(claimsContextKey, claims)

		c.Next()
	}
}

// ClaimsFromContext returns the verified claims stored by AuthMiddleware,
// or nil when the request was not authenticated.
func ClaimsFromContext(c *gin.Context) *core.Claims {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*core.Claims)
	if !ok {
		return nil
	}
	return claims
}

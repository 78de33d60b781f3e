package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/martijn/serverlist/internal/api/dto"
	"github.com/martijn/serverlist/internal/core/service"
)

const (
	AuthHeaderKey  = "Authorization"
	AuthContextKey = "auth"
)

// OptionalAuthMiddleware lets anonymous requests through. A request that does
// carry an Authorization header must present a valid bearer token.
func OptionalAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			c.Next()
			return
		}

		// Check if it's a Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'")
			return
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(AuthContextKey, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
		Code:    http.StatusUnauthorized,
	})
}

// GetAuthClaims retrieves auth claims from context
func GetAuthClaims(c *gin.Context) (*service.TokenClaims, bool) {
	claims, exists := c.Get(AuthContextKey)
	if !exists {
		return nil, false
	}

	tokenClaims, ok := claims.(*service.TokenClaims)
	return tokenClaims, ok
}

// GetAuthContext returns the caller's identity, anonymous when no token was sent
func GetAuthContext(c *gin.Context) service.AuthContext {
	claims, ok := GetAuthClaims(c)
	if !ok {
		return service.Anonymous
	}
	return claims.AuthContext()
}

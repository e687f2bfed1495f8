package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nplusone-backend/internal/shared/response"
	"nplusone-backend/pkg/jwt"
)

// AdminAuth validates the bearer token and requires the admin role.
// Claims are stored on the context for handlers that need the subject.
func AdminAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := manager.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if claims.Role != "admin" {
			response.ErrorResponse(c, http.StatusForbidden, "AUTH_403", "Admin access required")
			c.Abort()
			return
		}

		c.Set("admin_subject", claims.Subject)
		c.Set("admin_role", claims.Role)

		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"nplusone-backend/internal/shared/response"
	"nplusone-backend/pkg/logger"
)

// Recovery converts panics into a 500 response instead of killing the worker.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorWith("Panic recovered", fmt.Errorf("%v", r), map[string]interface{}{
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"request_id": c.GetString("request_id"),
					"stack":      string(debug.Stack()),
				})

				response.ErrorResponse(c, http.StatusInternalServerError, "SYS_001", "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}

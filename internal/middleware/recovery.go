package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"taskboard/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// RecoveryWithLog converts a handler panic into a generic 500 envelope.
// The panic value and stack stay in the server log; nothing internal
// reaches the caller.
func RecoveryWithLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic recovered: %v\n%s", r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.APIResponse{
					Success: false,
					Error:   "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

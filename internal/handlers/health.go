package handlers

import (
	"net/http"
	"time"

	"taskboard/backend/internal/models"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Health is the liveness probe: 200 whenever the process is serving.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startTime).Seconds(),
	})
}

// NotFound answers unmatched routes with the standard error envelope.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.APIResponse{
		Success: false,
		Error:   "Route " + c.Request.URL.Path + " not found",
	})
}

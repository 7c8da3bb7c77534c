package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/websocket"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	redis  *redis.Client
	hub    *websocket.Hub
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(redis *redis.Client, hub *websocket.Hub, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		redis:  redis,
		hub:    hub,
		logger: logger,
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "log-picker",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Redis backs the result cache; the service degrades without it but can
	// still solve.
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "degraded"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	response.Checks["websocket"] = fmt.Sprintf("ok: %d clients", h.hub.GetConnectionCount())

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	c.JSON(statusCode, response)
}

// GetReady returns readiness for traffic
func (h *HealthHandler) GetReady(c *gin.Context) {
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		h.logger.WithError(err).Warn("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

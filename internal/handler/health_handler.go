// Package handler contains HTTP request handlers.
// In Gin, a handler is any function with signature func(*gin.Context),
// grouped here by resource.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleveque/market-radar/internal/service"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	session *service.Session
}

// NewHealthHandler creates a new HealthHandler reporting on session.
func NewHealthHandler(session *service.Session) *HealthHandler {
	return &HealthHandler{session: session}
}

// Healthz responds with service status and the state of the analysis slot.
// A failed analysis does not make the service unhealthy.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "market-radar",
		"analysis": h.session.Current().State,
	})
}

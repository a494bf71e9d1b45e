package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matcheco/matcheco/backend/portal-service/internal/db"
)

// Handler holds dependencies for API handlers
type Handler struct {
	DB *db.Database
}

// NewHandler creates a new API handler
func NewHandler(database *db.Database) *Handler {
	return &Handler{DB: database}
}

// requestContext returns a bounded context for a handler's database work.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

// Health handles health check requests
func (h *Handler) Health(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database not connected",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.DB.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Live reports process liveness regardless of downstream health
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Root greets on the base route
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Hello, welcome to base route")
}

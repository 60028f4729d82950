package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shipping-rates-service/internal/events"
)

// HealthHandler reports service health
type HealthHandler struct {
	db        *gorm.DB
	publisher *events.Publisher
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, publisher *events.Publisher) *HealthHandler {
	return &HealthHandler{db: db, publisher: publisher}
}

// HealthCheck handles GET /health and GET /ready
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbStatus := "up"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	natsStatus := "disconnected"
	if h.publisher != nil && h.publisher.IsConnected() {
		natsStatus = "connected"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"service":  "shipping-rates-service",
		"database": dbStatus,
		"nats":     natsStatus,
	})
}

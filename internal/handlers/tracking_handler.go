package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/repository"
)

// TrackingHandler handles the append-only shipment state history
type TrackingHandler struct {
	tracking repository.TrackingRepository
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(tracking repository.TrackingRepository) *TrackingHandler {
	return &TrackingHandler{tracking: tracking}
}

// AddEvent handles POST /api/v1/shipping/orders/:orderId/tracking
// @Summary Append a tracking event to an order
// @Tags tracking
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param event body models.AddTrackingEventRequest true "Tracking event"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/shipping/orders/{orderId}/tracking [post]
func (h *TrackingHandler) AddEvent(c *gin.Context) {
	tenantID := getTenantID(c)

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respondBadRequest(c, "Order ID must be a valid UUID")
		return
	}

	var req models.AddTrackingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	event := &models.ShipmentEvent{
		TenantID:    tenantID,
		OrderID:     orderID,
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
	}
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	if err := h.tracking.Append(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Message: "Tracking event recorded",
		Data:    event,
	})
}

// ListEvents handles GET /api/v1/shipping/orders/:orderId/tracking
// @Summary List an order's tracking events, newest first
// @Tags tracking
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/shipping/orders/{orderId}/tracking [get]
func (h *TrackingHandler) ListEvents(c *gin.Context) {
	tenantID := getTenantID(c)

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respondBadRequest(c, "Order ID must be a valid UUID")
		return
	}

	events, err := h.tracking.ListByOrder(c.Request.Context(), orderID, tenantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    events,
	})
}

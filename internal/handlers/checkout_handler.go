package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/services"
)

// CheckoutHandler handles checkout shipping calculations
type CheckoutHandler struct {
	checkoutService services.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// CalculateShipping handles POST /api/v1/shipping/calculate-checkout
// @Summary Calculate shipping options for a cart
// @Description Resolves the delivery address to a zone and prices every applicable method, ranked free-first then cheapest-first. An empty method list means the address cannot be served.
// @Tags checkout
// @Accept json
// @Produce json
// @Param cart body models.CalculateCheckoutRequest true "Cart and delivery address"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/shipping/calculate-checkout [post]
func (h *CheckoutHandler) CalculateShipping(c *gin.Context) {
	tenantID := getTenantID(c)

	var req models.CalculateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.checkoutService.CalculateShippingOptions(c.Request.Context(), tenantID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    result,
	})
}

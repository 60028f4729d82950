package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/services"
)

func getTenantID(c *gin.Context) string {
	// Try lowercase first (set by IstioAuth middleware from x-jwt-claim-tenant-id)
	tenantID := c.GetString("tenant_id")

	// Fall back to camelCase (set by TenantMiddleware)
	if tenantID == "" {
		tenantID = c.GetString("tenantID")
	}

	// Fall back to header
	if tenantID == "" {
		tenantID = c.GetHeader("X-Tenant-ID")
	}

	if tenantID == "" {
		return "00000000-0000-0000-0000-000000000001" // Default tenant
	}
	return tenantID
}

// respondError maps service errors to the uniform envelope. Validation,
// conflict and dependency problems are the caller's fault (400), missing
// records are 404, everything else is a 500 with the detail withheld.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
		dependencyErr *services.DependencyError
		stateErr      *services.InvalidStateError
		subRegionErr  *services.InvalidSubRegionError
	)

	switch {
	case errors.As(err, &dependencyErr):
		c.JSON(http.StatusBadRequest, models.DependencyErrorResponse{
			Success:          false,
			Error:            true,
			Message:          dependencyErr.Error(),
			DependentMethods: dependencyErr.DependentMethods,
		})
	case errors.As(err, &validationErr),
		errors.As(err, &conflictErr),
		errors.As(err, &stateErr),
		errors.As(err, &subRegionErr):
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   true,
			Message: err.Error(),
		})
	case errors.As(err, &notFoundErr), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, models.APIResponse{
			Success: false,
			Error:   true,
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   true,
			Message: "Internal server error",
		})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.APIResponse{
		Success: false,
		Error:   true,
		Message: message,
	})
}

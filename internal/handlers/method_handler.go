package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/services"
)

// MethodHandler handles HTTP requests for shipping methods
type MethodHandler struct {
	methodService services.MethodService
}

// NewMethodHandler creates a new method handler
func NewMethodHandler(methodService services.MethodService) *MethodHandler {
	return &MethodHandler{methodService: methodService}
}

// ListMethods handles GET /api/v1/shipping/methods
// @Summary List shipping methods
// @Description Lists the tenant's shipping methods. Tenants with none configured get a default set seeded on first call.
// @Tags methods
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} models.ListResponse
// @Router /api/v1/shipping/methods [get]
func (h *MethodHandler) ListMethods(c *gin.Context) {
	tenantID := getTenantID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	if err := h.methodService.SeedDefaults(c.Request.Context(), tenantID); err != nil {
		respondError(c, err)
		return
	}

	methods, total, err := h.methodService.ListMethods(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewListResponse(methods, total, limit, offset))
}

// GetMethod handles GET /api/v1/shipping/methods/:id
// @Summary Get a shipping method
// @Tags methods
// @Produce json
// @Param id path string true "Method ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/shipping/methods/{id} [get]
func (h *MethodHandler) GetMethod(c *gin.Context) {
	tenantID := getTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Method ID must be a valid UUID")
		return
	}

	method, err := h.methodService.GetMethod(c.Request.Context(), tenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    method,
	})
}

// CreateMethod handles POST /api/v1/shipping/methods
// @Summary Create a shipping method
// @Description Creates a method of the given type. Only the config block matching the type is used.
// @Tags methods
// @Accept json
// @Produce json
// @Param method body models.CreateMethodRequest true "Method definition"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/shipping/methods [post]
func (h *MethodHandler) CreateMethod(c *gin.Context) {
	tenantID := getTenantID(c)

	var req models.CreateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	method, err := h.methodService.CreateMethod(c.Request.Context(), tenantID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Message: "Method created successfully",
		Data:    method,
	})
}

// UpdateMethod handles PUT /api/v1/shipping/methods/:id
// @Summary Update a shipping method
// @Description Updates a method. The type is immutable.
// @Tags methods
// @Accept json
// @Produce json
// @Param id path string true "Method ID"
// @Param method body models.UpdateMethodRequest true "Fields to update"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/shipping/methods/{id} [put]
func (h *MethodHandler) UpdateMethod(c *gin.Context) {
	tenantID := getTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Method ID must be a valid UUID")
		return
	}

	var req models.UpdateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	method, err := h.methodService.UpdateMethod(c.Request.Context(), tenantID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Method updated successfully",
		Data:    method,
	})
}

// DeleteMethod handles DELETE /api/v1/shipping/methods/:id
// @Summary Delete a shipping method
// @Description Deletes a method unless orders still reference it
// @Tags methods
// @Produce json
// @Param id path string true "Method ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.DependencyErrorResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/shipping/methods/{id} [delete]
func (h *MethodHandler) DeleteMethod(c *gin.Context) {
	tenantID := getTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Method ID must be a valid UUID")
		return
	}

	if err := h.methodService.DeleteMethod(c.Request.Context(), tenantID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Method deleted successfully",
	})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipping-rates-service/internal/geo"
	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/services"
)

// ZoneHandler handles HTTP requests for shipping zones
type ZoneHandler struct {
	zoneService services.ZoneService
	directory   *geo.Directory
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(zoneService services.ZoneService, directory *geo.Directory) *ZoneHandler {
	return &ZoneHandler{
		zoneService: zoneService,
		directory:   directory,
	}
}

// ListRegions handles GET /api/v1/shipping/regions
// @Summary List reference regions
// @Description Returns the states and sub-regions available for zone coverage
// @Tags zones
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /api/v1/shipping/regions [get]
func (h *ZoneHandler) ListRegions(c *gin.Context) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.directory.Regions(),
	})
}

// ListZones handles GET /api/v1/shipping/zones
// @Summary List shipping zones
// @Tags zones
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} models.ListResponse
// @Router /api/v1/shipping/zones [get]
func (h *ZoneHandler) ListZones(c *gin.Context) {
	tenantID := getTenantID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	zones, total, err := h.zoneService.ListZones(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewListResponse(zones, total, limit, offset))
}

// GetZone handles GET /api/v1/shipping/zones/:id
// @Summary Get a shipping zone
// @Tags zones
// @Produce json
// @Param id path string true "Zone ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/shipping/zones/{id} [get]
func (h *ZoneHandler) GetZone(c *gin.Context) {
	tenantID := getTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Zone ID must be a valid UUID")
		return
	}

	zone, err := h.zoneService.GetZone(c.Request.Context(), tenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    zone,
	})
}

// CreateZone handles POST /api/v1/shipping/zones
// @Summary Create a shipping zone
// @Tags zones
// @Accept json
// @Produce json
// @Param zone body models.CreateZoneRequest true "Zone definition"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/shipping/zones [post]
func (h *ZoneHandler) CreateZone(c *gin.Context) {
	tenantID := getTenantID(c)

	var req models.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	zone, err := h.zoneService.CreateZone(c.Request.Context(), tenantID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Message: "Zone created successfully",
		Data:    zone,
	})
}

// UpdateZone handles PUT /api/v1/shipping/zones/:id
// @Summary Update a shipping zone
// @Tags zones
// @Accept json
// @Produce json
// @Param id path string true "Zone ID"
// @Param zone body models.UpdateZoneRequest true "Fields to update"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/shipping/zones/{id} [put]
func (h *ZoneHandler) UpdateZone(c *gin.Context) {
	tenantID := getTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Zone ID must be a valid UUID")
		return
	}

	var req models.UpdateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	zone, err := h.zoneService.UpdateZone(c.Request.Context(), tenantID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Zone updated successfully",
		Data:    zone,
	})
}

// DeleteZone handles DELETE /api/v1/shipping/zones/:id
// @Summary Delete a shipping zone
// @Description Deletes a zone. Blocked when shipping methods reference the zone unless cascade=true, which deletes the dependent methods too.
// @Tags zones
// @Produce json
// @Param id path string true "Zone ID"
// @Param cascade query bool false "Delete dependent methods as well"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.DependencyErrorResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/shipping/zones/{id} [delete]
func (h *ZoneHandler) DeleteZone(c *gin.Context) {
	tenantID := getTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Zone ID must be a valid UUID")
		return
	}

	cascade, _ := strconv.ParseBool(c.DefaultQuery("cascade", "false"))

	if err := h.zoneService.DeleteZone(c.Request.Context(), tenantID, id, cascade); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Zone deleted successfully",
	})
}

// ResolveZone handles POST /api/v1/shipping/zones/resolve
// @Summary Resolve the zone covering a location
// @Description Returns the first active zone covering the state/sub-region, or null data when none does
// @Tags zones
// @Accept json
// @Produce json
// @Param location body models.ResolveZoneRequest true "Location to resolve"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/shipping/zones/resolve [post]
func (h *ZoneHandler) ResolveZone(c *gin.Context) {
	tenantID := getTenantID(c)

	var req models.ResolveZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	zone, err := h.zoneService.ResolveZone(c.Request.Context(), tenantID, req.State, req.SubRegion)
	if err != nil {
		respondError(c, err)
		return
	}

	if zone == nil {
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Message: "No zone covers this location",
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    zone,
	})
}

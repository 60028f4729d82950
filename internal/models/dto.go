package models

import (
	"time"

	"github.com/google/uuid"
)

// APIResponse is the uniform response envelope. Error and Success always
// mirror the HTTP status.
type APIResponse struct {
	Success bool        `json:"success"`
	Error   bool        `json:"error"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse is the envelope for paginated list endpoints.
type ListResponse struct {
	Success     bool        `json:"success"`
	Error       bool        `json:"error"`
	Message     string      `json:"message,omitempty"`
	Data        interface{} `json:"data"`
	TotalCount  int64       `json:"totalCount"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
}

// NewListResponse builds a list envelope from limit/offset pagination.
func NewListResponse(data interface{}, total int64, limit, offset int) ListResponse {
	if limit <= 0 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return ListResponse{
		Success:     true,
		Data:        data,
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: offset/limit + 1,
	}
}

// DependencyErrorResponse is returned when a delete is blocked by
// referencing records.
type DependencyErrorResponse struct {
	Success          bool     `json:"success"`
	Error            bool     `json:"error"`
	Message          string   `json:"message"`
	DependentMethods []string `json:"dependentMethods"`
}

// StateCoverageInput is the request shape for one state of a zone.
type StateCoverageInput struct {
	StateName         string       `json:"stateName" binding:"required"`
	CoverageType      CoverageType `json:"coverageType"`
	CoveredSubRegions []string     `json:"coveredSubRegions"`
}

// CreateZoneRequest creates a shipping zone.
type CreateZoneRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	States      []StateCoverageInput `json:"states" binding:"required"`
	IsActive    *bool                `json:"isActive"`
	SortOrder   int                  `json:"sortOrder"`
}

// UpdateZoneRequest partially updates a zone. A non-nil States replaces
// the coverage wholesale.
type UpdateZoneRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	States      []StateCoverageInput `json:"states"`
	IsActive    *bool                `json:"isActive"`
	SortOrder   *int                 `json:"sortOrder"`
}

// ResolveZoneRequest looks up the zone covering a location.
type ResolveZoneRequest struct {
	State     string `json:"state" binding:"required"`
	SubRegion string `json:"subRegion"`
	City      string `json:"city"`
}

// CreateMethodRequest creates a shipping method. Exactly the config block
// matching Type is used; the others are ignored.
type CreateMethodRequest struct {
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description"`
	Type             MethodType       `json:"type" binding:"required"`
	IsActive         *bool            `json:"isActive"`
	SortOrder        int              `json:"sortOrder"`
	EstimatedDaysMin int              `json:"estimatedDaysMin"`
	EstimatedDaysMax int              `json:"estimatedDaysMax"`
	FlatRate         *FlatRateConfig  `json:"flatRate"`
	TableRate        *TableRateConfig `json:"tableShipping"`
	Pickup           *PickupConfig    `json:"pickup"`
}

// UpdateMethodRequest updates a method. Type is immutable; supplying a
// different one is rejected.
type UpdateMethodRequest struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	Type             MethodType       `json:"type"`
	IsActive         *bool            `json:"isActive"`
	SortOrder        *int             `json:"sortOrder"`
	EstimatedDaysMin *int             `json:"estimatedDaysMin"`
	EstimatedDaysMax *int             `json:"estimatedDaysMax"`
	FlatRate         *FlatRateConfig  `json:"flatRate"`
	TableRate        *TableRateConfig `json:"tableShipping"`
	Pickup           *PickupConfig    `json:"pickup"`
}

// CheckoutItem is one cart line in a checkout calculation.
type CheckoutItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CalculateCheckoutRequest asks for the shipping options of a cart.
type CalculateCheckoutRequest struct {
	AddressID   string         `json:"addressId" binding:"required"`
	Items       []CheckoutItem `json:"items" binding:"required,min=1"`
	OrderValue  float64        `json:"orderValue"`
	TotalWeight *float64       `json:"totalWeight"`
}

// ShippingCalculation is the outcome of pricing one method. Ineligibility
// is a normal result, never an error.
type ShippingCalculation struct {
	Eligible bool    `json:"eligible"`
	Cost     float64 `json:"cost"`
	Reason   string  `json:"reason,omitempty"`
}

// CheckoutShippingOption is one method offered to the buyer.
type CheckoutShippingOption struct {
	MethodID         uuid.UUID        `json:"methodId"`
	Name             string           `json:"name"`
	Code             string           `json:"code"`
	Type             MethodType       `json:"type"`
	Cost             float64          `json:"cost"`
	Reason           string           `json:"reason,omitempty"`
	EstimatedDaysMin int              `json:"estimatedDaysMin"`
	EstimatedDaysMax int              `json:"estimatedDaysMax"`
	PickupLocations  []PickupLocation `json:"pickupLocations,omitempty"`
}

// CheckoutAddress echoes the resolved delivery location.
type CheckoutAddress struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	SubRegion string `json:"subRegion"`
	City      string `json:"city"`
}

// CheckoutShippingResponse is the full checkout shipping result. Zone is
// nil when no zone covers the address; Methods may legitimately be empty.
type CheckoutShippingResponse struct {
	Zone             *ZoneSummary             `json:"zone"`
	Methods          []CheckoutShippingOption `json:"methods"`
	CalculatedWeight float64                  `json:"calculatedWeight"`
	Address          CheckoutAddress          `json:"address"`
}

// AddTrackingEventRequest appends one entry to an order's state history.
type AddTrackingEventRequest struct {
	Status      string     `json:"status" binding:"required"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Timestamp   *time.Time `json:"timestamp"`
}

package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shipping-rates-service/internal/models"
)

// RateItem is one cart line as seen by the rate engine.
type RateItem struct {
	ProductID  string
	CategoryID string
	Quantity   int
	Weight     float64
}

// RateInput is everything a pricing strategy may consult. ZoneID is
// uuid.Nil when no zone covers the delivery address.
type RateInput struct {
	Weight     float64
	OrderValue float64
	ZoneID     uuid.UUID
	Items      []RateItem
}

// RateEngine prices a method for a given cart and zone. It is pure: no
// storage, no clock, no network.
type RateEngine struct{}

// NewRateEngine creates a rate engine
func NewRateEngine() *RateEngine {
	return &RateEngine{}
}

// CalculateShippingCost prices one method. Ineligibility comes back as a
// calculation with Eligible=false and a human-readable reason; an error
// means the method's config could not be decoded.
func (e *RateEngine) CalculateShippingCost(method *models.ShippingMethod, input RateInput) (models.ShippingCalculation, error) {
	switch method.Type {
	case models.MethodFlatRate:
		cfg, err := method.FlatRate()
		if err != nil {
			return models.ShippingCalculation{}, err
		}
		return e.flatRateCost(cfg, input), nil
	case models.MethodTableRate:
		cfg, err := method.TableRate()
		if err != nil {
			return models.ShippingCalculation{}, err
		}
		return e.tableRateCost(cfg, input), nil
	case models.MethodPickup:
		cfg, err := method.Pickup()
		if err != nil {
			return models.ShippingCalculation{}, err
		}
		return e.pickupCost(cfg, input), nil
	}
	return models.ShippingCalculation{}, fmt.Errorf("unknown method type %q on method %s", method.Type, method.Code)
}

// flatRateCost is always eligible. Zone overrides beat the default cost,
// and free shipping applies at or above the threshold (inclusive).
func (e *RateEngine) flatRateCost(cfg *models.FlatRateConfig, input RateInput) models.ShippingCalculation {
	cost := cfg.DefaultCost
	for _, zr := range cfg.ZoneRates {
		if input.ZoneID != uuid.Nil && zr.ZoneID == input.ZoneID {
			cost = zr.Cost
			if zr.FreeShippingOverride != nil && *zr.FreeShippingOverride {
				return models.ShippingCalculation{Eligible: true, Cost: 0, Reason: "Free shipping"}
			}
			break
		}
	}

	if cfg.FreeShipping.Enabled && input.OrderValue >= cfg.FreeShipping.MinimumOrderAmount {
		return models.ShippingCalculation{Eligible: true, Cost: 0, Reason: "Free shipping"}
	}
	return models.ShippingCalculation{Eligible: true, Cost: cost}
}

// tableRateCost requires a resolved zone with a configured rate table and
// a band containing the cart weight. The first matching band wins.
func (e *RateEngine) tableRateCost(cfg *models.TableRateConfig, input RateInput) models.ShippingCalculation {
	if input.ZoneID == uuid.Nil {
		return models.ShippingCalculation{Reason: "Zone required for table shipping"}
	}

	for _, zr := range cfg.ZoneRates {
		if zr.ZoneID != input.ZoneID {
			continue
		}
		for _, band := range zr.WeightRanges {
			if input.Weight >= band.MinWeight && input.Weight <= band.MaxWeight {
				return models.ShippingCalculation{Eligible: true, Cost: band.Cost}
			}
		}
		return models.ShippingCalculation{Reason: fmt.Sprintf("No shipping rate for weight %gkg", input.Weight)}
	}
	return models.ShippingCalculation{Reason: "No shipping rates configured for this zone"}
}

// pickupCost is eligible whenever any pickup location serves the zone,
// falling back to the default locations when no zone resolved.
func (e *RateEngine) pickupCost(cfg *models.PickupConfig, input RateInput) models.ShippingCalculation {
	if len(e.pickupLocations(cfg, input.ZoneID)) == 0 {
		return models.ShippingCalculation{Reason: "No pickup locations available"}
	}
	reason := ""
	if cfg.Cost == 0 {
		reason = "Free pickup available"
	}
	return models.ShippingCalculation{Eligible: true, Cost: cfg.Cost, Reason: reason}
}

// PickupLocationsForZone lists the pickup points offered for a zone,
// including the zone-independent defaults.
func (e *RateEngine) PickupLocationsForZone(method *models.ShippingMethod, zoneID uuid.UUID) ([]models.PickupLocation, error) {
	cfg, err := method.Pickup()
	if err != nil {
		return nil, err
	}
	return e.pickupLocations(cfg, zoneID), nil
}

func (e *RateEngine) pickupLocations(cfg *models.PickupConfig, zoneID uuid.UUID) []models.PickupLocation {
	var locations []models.PickupLocation
	if zoneID != uuid.Nil {
		for _, zl := range cfg.ZoneLocations {
			if zl.ZoneID == zoneID {
				locations = append(locations, zl.Locations...)
			}
		}
	}
	locations = append(locations, cfg.DefaultLocations...)
	return locations
}

// AppliesToItems checks the method's assignment filter against the cart.
// An empty category/product list under the matching mode means no
// narrowing has been configured and the method applies to everything.
func (e *RateEngine) AppliesToItems(method *models.ShippingMethod, items []RateItem) (bool, error) {
	filter, err := method.Filter()
	if err != nil {
		return false, err
	}

	switch filter.Assignment {
	case models.AssignCategories:
		if len(filter.Categories) == 0 {
			return true, nil
		}
		for _, item := range items {
			if containsFold(filter.Categories, item.CategoryID) {
				return true, nil
			}
		}
		return false, nil
	case models.AssignSpecificProducts:
		if len(filter.Products) == 0 {
			return true, nil
		}
		for _, item := range items {
			if containsFold(filter.Products, item.ProductID) {
				return true, nil
			}
		}
		return false, nil
	}
	return true, nil
}

// IsAvailableInZone reports whether a method can serve a zone at all,
// before pricing. Flat rate serves every zone; table shipping only zones
// it has a rate table for; pickup needs a location reachable from the
// zone or a default one.
func (e *RateEngine) IsAvailableInZone(method *models.ShippingMethod, zoneID uuid.UUID) (bool, error) {
	switch method.Type {
	case models.MethodFlatRate:
		return true, nil
	case models.MethodTableRate:
		cfg, err := method.TableRate()
		if err != nil {
			return false, err
		}
		if zoneID == uuid.Nil {
			return false, nil
		}
		for _, zr := range cfg.ZoneRates {
			if zr.ZoneID == zoneID {
				return true, nil
			}
		}
		return false, nil
	case models.MethodPickup:
		cfg, err := method.Pickup()
		if err != nil {
			return false, err
		}
		return len(e.pickupLocations(cfg, zoneID)) > 0, nil
	}
	return false, fmt.Errorf("unknown method type %q on method %s", method.Type, method.Code)
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MethodType is the pricing strategy of a shipping method. It is fixed at
// creation and can never change afterwards.
type MethodType string

const (
	MethodFlatRate  MethodType = "flat_rate"
	MethodTableRate MethodType = "table_shipping"
	MethodPickup    MethodType = "pickup"
)

// CodePrefix returns the method-code prefix for the type.
func (t MethodType) CodePrefix() string {
	switch t {
	case MethodFlatRate:
		return "FR"
	case MethodTableRate:
		return "TS"
	case MethodPickup:
		return "PU"
	}
	return ""
}

// Valid reports whether t is one of the three supported strategies.
func (t MethodType) Valid() bool {
	return t == MethodFlatRate || t == MethodTableRate || t == MethodPickup
}

// AssignmentType selects which cart items a method applies to.
type AssignmentType string

const (
	AssignAllProducts      AssignmentType = "all_products"
	AssignCategories       AssignmentType = "categories"
	AssignSpecificProducts AssignmentType = "specific_products"
)

// ShippingMethod is a tenant's shipping method. The strategy-specific
// configuration lives in a single JSONB column keyed on Type, so a method
// can never carry config belonging to a different strategy.
type ShippingMethod struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID         string         `json:"tenantId" gorm:"type:varchar(255);not null;index;uniqueIndex:idx_method_code,priority:1"`
	Name             string         `json:"name" gorm:"type:varchar(100);not null"`
	Code             string         `json:"code" gorm:"type:varchar(20);not null;uniqueIndex:idx_method_code,priority:2"`
	Description      string         `json:"description" gorm:"type:text"`
	Type             MethodType     `json:"type" gorm:"type:varchar(30);not null"`
	IsActive         bool           `json:"isActive" gorm:"default:true"`
	SortOrder        int            `json:"sortOrder" gorm:"default:0"`
	EstimatedDaysMin int            `json:"estimatedDaysMin" gorm:"default:1"`
	EstimatedDaysMax int            `json:"estimatedDaysMax" gorm:"default:5"`
	Config           datatypes.JSON `json:"config" gorm:"type:jsonb;not null"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for ShippingMethod
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// AssignmentFilter narrows a method to categories or specific products.
// An empty Categories/Products list under its matching assignment mode
// means the operator has not narrowed the filter yet and the method
// applies to everything.
type AssignmentFilter struct {
	Assignment AssignmentType `json:"assignment"`
	Categories []string       `json:"categories,omitempty"`
	Products   []string       `json:"products,omitempty"`
}

// DateWindow bounds when a method is usable. A nil bound is open-ended.
type DateWindow struct {
	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

// Contains reports whether now falls inside the window.
func (w DateWindow) Contains(now time.Time) bool {
	if w.ValidFrom != nil && now.Before(*w.ValidFrom) {
		return false
	}
	if w.ValidUntil != nil && now.After(*w.ValidUntil) {
		return false
	}
	return true
}

// FreeShippingRule waives the cost above an order-value threshold. The
// threshold is inclusive.
type FreeShippingRule struct {
	Enabled            bool    `json:"enabled"`
	MinimumOrderAmount float64 `json:"minimumOrderAmount"`
}

// FlatZoneRate overrides the default flat cost for one zone.
type FlatZoneRate struct {
	ZoneID uuid.UUID `json:"zone"`
	Cost   float64   `json:"cost"`
	// FreeShippingOverride forces this zone free regardless of the
	// order-value threshold.
	FreeShippingOverride *bool `json:"freeShippingOverride,omitempty"`
}

// FlatRateConfig configures a flat_rate method.
type FlatRateConfig struct {
	AssignmentFilter
	DateWindow
	DefaultCost  float64          `json:"defaultCost"`
	ZoneRates    []FlatZoneRate   `json:"zoneRates,omitempty"`
	FreeShipping FreeShippingRule `json:"freeShipping"`
}

// WeightRange is one band of a table-shipping rate. Bounds are inclusive.
type WeightRange struct {
	MinWeight float64 `json:"minWeight"`
	MaxWeight float64 `json:"maxWeight"`
	Cost      float64 `json:"cost"`
}

// TableZoneRate is the banded rate table for one zone. Bands need not be
// sorted, contiguous, or exhaustive: the first band containing the weight
// wins, and a weight in a gap is not shippable.
type TableZoneRate struct {
	ZoneID       uuid.UUID     `json:"zone"`
	WeightRanges []WeightRange `json:"weightRanges"`
}

// TableRateConfig configures a table_shipping method.
type TableRateConfig struct {
	AssignmentFilter
	DateWindow
	ZoneRates []TableZoneRate `json:"zoneRates"`
}

// PickupLocation is a physical pickup point. Name, address, city, state
// and sub-region are all required for the location to count.
type PickupLocation struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	SubRegion      string `json:"subRegion"`
	OperatingHours string `json:"operatingHours,omitempty"`
	IsActive       bool   `json:"isActive"`
}

// Usable reports whether the location is complete enough to offer.
func (l PickupLocation) Usable() bool {
	return l.IsActive && l.Name != "" && l.Address != "" && l.City != "" &&
		l.State != "" && l.SubRegion != ""
}

// PickupZoneLocations lists pickup points offered within one zone.
type PickupZoneLocations struct {
	ZoneID    uuid.UUID        `json:"zone"`
	Locations []PickupLocation `json:"locations"`
}

// PickupConfig configures a pickup method. DefaultLocations are offered
// regardless of zone resolution, which makes pickup the only strategy that
// works for addresses no zone covers.
type PickupConfig struct {
	AssignmentFilter
	ZoneLocations    []PickupZoneLocations `json:"zoneLocations,omitempty"`
	DefaultLocations []PickupLocation      `json:"defaultLocations,omitempty"`
	Cost             float64               `json:"cost"`
}

// SetConfig marshals a strategy config into the JSONB column.
func (m *ShippingMethod) SetConfig(cfg interface{}) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode method config: %w", err)
	}
	m.Config = datatypes.JSON(raw)
	return nil
}

// FlatRate decodes the config of a flat_rate method.
func (m *ShippingMethod) FlatRate() (*FlatRateConfig, error) {
	if m.Type != MethodFlatRate {
		return nil, fmt.Errorf("method %s is %s, not %s", m.Code, m.Type, MethodFlatRate)
	}
	var cfg FlatRateConfig
	if err := json.Unmarshal(m.Config, &cfg); err != nil {
		return nil, fmt.Errorf("malformed flat rate config on method %s: %w", m.Code, err)
	}
	return &cfg, nil
}

// TableRate decodes the config of a table_shipping method.
func (m *ShippingMethod) TableRate() (*TableRateConfig, error) {
	if m.Type != MethodTableRate {
		return nil, fmt.Errorf("method %s is %s, not %s", m.Code, m.Type, MethodTableRate)
	}
	var cfg TableRateConfig
	if err := json.Unmarshal(m.Config, &cfg); err != nil {
		return nil, fmt.Errorf("malformed table rate config on method %s: %w", m.Code, err)
	}
	return &cfg, nil
}

// Pickup decodes the config of a pickup method.
func (m *ShippingMethod) Pickup() (*PickupConfig, error) {
	if m.Type != MethodPickup {
		return nil, fmt.Errorf("method %s is %s, not %s", m.Code, m.Type, MethodPickup)
	}
	var cfg PickupConfig
	if err := json.Unmarshal(m.Config, &cfg); err != nil {
		return nil, fmt.Errorf("malformed pickup config on method %s: %w", m.Code, err)
	}
	return &cfg, nil
}

// Filter decodes just the assignment filter, regardless of strategy.
func (m *ShippingMethod) Filter() (AssignmentFilter, error) {
	var f AssignmentFilter
	if err := json.Unmarshal(m.Config, &f); err != nil {
		return f, fmt.Errorf("malformed config on method %s: %w", m.Code, err)
	}
	if f.Assignment == "" {
		f.Assignment = AssignAllProducts
	}
	return f, nil
}

// ValidAt reports whether the method's date window contains now. Methods
// without date fields are always valid; pickup methods carry no window.
func (m *ShippingMethod) ValidAt(now time.Time) bool {
	var w DateWindow
	if err := json.Unmarshal(m.Config, &w); err != nil {
		return false
	}
	return w.Contains(now)
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CoverageType declares how a zone covers a state.
type CoverageType string

const (
	// CoverageAll covers every sub-region of the state.
	CoverageAll CoverageType = "all"
	// CoverageSpecific covers only the named sub-regions.
	CoverageSpecific CoverageType = "specific"
)

// ShippingZone is a named delivery area made up of state coverages.
type ShippingZone struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string          `json:"tenantId" gorm:"type:varchar(255);not null;index;uniqueIndex:idx_zone_name,priority:1;uniqueIndex:idx_zone_code,priority:1"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_zone_name,priority:2"`
	Code        string          `json:"code" gorm:"type:varchar(20);not null;uniqueIndex:idx_zone_code,priority:2"`
	Description string          `json:"description" gorm:"type:text"`
	IsActive    bool            `json:"isActive" gorm:"default:true"`
	SortOrder   int             `json:"sortOrder" gorm:"default:0"`
	States      []StateCoverage `json:"states" gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name for ShippingZone
func (ShippingZone) TableName() string {
	return "shipping_zones"
}

// StateCoverage declares a zone's coverage of a single state: either the
// entire state or only the listed sub-regions.
type StateCoverage struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ZoneID       uuid.UUID    `json:"zoneId" gorm:"type:uuid;not null;index"`
	StateName    string       `json:"stateName" gorm:"type:varchar(100);not null"`
	StateCode    string       `json:"stateCode" gorm:"type:varchar(10)"`
	CoverageType CoverageType `json:"coverageType" gorm:"type:varchar(20);not null;default:'all'"`

	// AvailableSubRegions is the full reference list for the state at the
	// time the coverage was saved; informational for admin UIs.
	AvailableSubRegions pq.StringArray `json:"availableSubRegions" gorm:"type:text[]"`
	// CoveredSubRegions is only meaningful when CoverageType is "specific".
	CoveredSubRegions pq.StringArray `json:"coveredSubRegions" gorm:"type:text[]"`
}

// TableName specifies the table name for StateCoverage
func (StateCoverage) TableName() string {
	return "shipping_zone_states"
}

// CoversAll reports whether the coverage spans the whole state. An empty
// covered list under "specific" is treated as full coverage for records
// written before the coverage type existed.
func (sc *StateCoverage) CoversAll() bool {
	return sc.CoverageType != CoverageSpecific || len(sc.CoveredSubRegions) == 0
}

// Matches reports whether this coverage includes the given location.
// Comparison is case-insensitive on both state and sub-region.
func (sc *StateCoverage) Matches(state, subRegion string) bool {
	if !strings.EqualFold(sc.StateName, strings.TrimSpace(state)) {
		return false
	}
	if sc.CoversAll() {
		return true
	}
	for _, covered := range sc.CoveredSubRegions {
		if strings.EqualFold(covered, strings.TrimSpace(subRegion)) {
			return true
		}
	}
	return false
}

// Covers reports whether any of the zone's state coverages match the
// given location.
func (z *ShippingZone) Covers(state, subRegion string) bool {
	for i := range z.States {
		if z.States[i].Matches(state, subRegion) {
			return true
		}
	}
	return false
}

// Summary returns the lightweight zone view surfaced to checkout callers.
func (z *ShippingZone) Summary() ZoneSummary {
	return ZoneSummary{ID: z.ID, Name: z.Name, Code: z.Code}
}

// ZoneSummary is the zone projection returned by checkout calculations.
type ZoneSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentEvent is one entry in an order's delivery state history. Events
// are append-only; there is no carrier ingestion, callers post updates
// manually or from payment webhooks.
type ShipmentEvent struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	OrderID     uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	Status      string    `json:"status" gorm:"type:varchar(100);not null"`
	Location    string    `json:"location" gorm:"type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName specifies the table name for ShipmentEvent
func (ShipmentEvent) TableName() string {
	return "shipment_events"
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shipping-rates-service/internal/models"
)

// TrackingRepository handles the append-only shipment state history
type TrackingRepository interface {
	Append(ctx context.Context, event *models.ShipmentEvent) error
	ListByOrder(ctx context.Context, orderID uuid.UUID, tenantID string) ([]models.ShipmentEvent, error)
}

type trackingRepository struct {
	db *gorm.DB
}

// NewTrackingRepository creates a new tracking repository
func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

// Append adds one tracking event
func (r *trackingRepository) Append(ctx context.Context, event *models.ShipmentEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByOrder retrieves an order's tracking events, newest first
func (r *trackingRepository) ListByOrder(ctx context.Context, orderID uuid.UUID, tenantID string) ([]models.ShipmentEvent, error) {
	var events []models.ShipmentEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		Order("timestamp DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

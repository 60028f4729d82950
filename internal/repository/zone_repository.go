package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shipping-rates-service/internal/models"
)

// ZoneRepository handles database operations for shipping zones
type ZoneRepository interface {
	Create(ctx context.Context, zone *models.ShippingZone) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*models.ShippingZone, error)
	GetByName(ctx context.Context, tenantID, name string) (*models.ShippingZone, error)
	CodeExists(ctx context.Context, tenantID, code string) (bool, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingZone, int64, error)
	ListActive(ctx context.Context, tenantID string) ([]models.ShippingZone, error)
	Update(ctx context.Context, zone *models.ShippingZone) error
	ReplaceStates(ctx context.Context, zoneID uuid.UUID, states []models.StateCoverage) error
	Delete(ctx context.Context, id uuid.UUID, tenantID string) error
}

type zoneRepository struct {
	db *gorm.DB
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(db *gorm.DB) ZoneRepository {
	return &zoneRepository{db: db}
}

// Create creates a new zone together with its state coverages
func (r *zoneRepository) Create(ctx context.Context, zone *models.ShippingZone) error {
	if zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	zone.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(zone).Error
}

// GetByID retrieves a zone by ID with its state coverages
func (r *zoneRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Preload("States").
		First(&zone).Error
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

// GetByName retrieves a zone by name, case-insensitively
func (r *zoneRepository) GetByName(ctx context.Context, tenantID, name string) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name).
		Preload("States").
		First(&zone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &zone, nil
}

// CodeExists reports whether a zone code is already taken for the tenant
func (r *zoneRepository) CodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShippingZone{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error
	return count > 0, err
}

// List retrieves zones with pagination
func (r *zoneRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingZone, int64, error) {
	var zones []models.ShippingZone
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.ShippingZone{}).
		Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("States").
		Order("sort_order ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&zones).Error
	if err != nil {
		return nil, 0, err
	}
	return zones, total, nil
}

// ListActive retrieves all active zones in resolution order: sort_order
// first, creation order as the deterministic tie-break
func (r *zoneRepository) ListActive(ctx context.Context, tenantID string) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Preload("States").
		Order("sort_order ASC, created_at ASC").
		Find(&zones).Error
	if err != nil {
		return nil, err
	}
	return zones, nil
}

// Update updates a zone's scalar fields (state coverages go through
// ReplaceStates)
func (r *zoneRepository) Update(ctx context.Context, zone *models.ShippingZone) error {
	zone.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Omit("States").Save(zone).Error
}

// ReplaceStates swaps a zone's state coverages wholesale
func (r *zoneRepository) ReplaceStates(ctx context.Context, zoneID uuid.UUID, states []models.StateCoverage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("zone_id = ?", zoneID).Delete(&models.StateCoverage{}).Error; err != nil {
			return err
		}
		for i := range states {
			states[i].ZoneID = zoneID
			if states[i].ID == uuid.Nil {
				states[i].ID = uuid.New()
			}
		}
		if len(states) == 0 {
			return nil
		}
		return tx.Create(&states).Error
	})
}

// Delete removes a zone and, via the FK constraint, its state coverages
func (r *zoneRepository) Delete(ctx context.Context, id uuid.UUID, tenantID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.ShippingZone{}).Error
}

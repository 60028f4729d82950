package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shipping-rates-service/internal/models"
)

// MethodRepository handles database operations for shipping methods
type MethodRepository interface {
	Create(ctx context.Context, method *models.ShippingMethod) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*models.ShippingMethod, error)
	CodeExists(ctx context.Context, tenantID, code string) (bool, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingMethod, int64, error)
	ListActive(ctx context.Context, tenantID string) ([]models.ShippingMethod, error)
	ListAll(ctx context.Context, tenantID string) ([]models.ShippingMethod, error)
	Update(ctx context.Context, method *models.ShippingMethod) error
	Delete(ctx context.Context, id uuid.UUID, tenantID string) error
	Count(ctx context.Context, tenantID string) (int64, error)
}

type methodRepository struct {
	db *gorm.DB
}

// NewMethodRepository creates a new method repository
func NewMethodRepository(db *gorm.DB) MethodRepository {
	return &methodRepository{db: db}
}

// Create creates a new shipping method
func (r *methodRepository) Create(ctx context.Context, method *models.ShippingMethod) error {
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	method.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(method).Error
}

// GetByID retrieves a method by ID
func (r *methodRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*models.ShippingMethod, error) {
	var method models.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// CodeExists reports whether a method code is already taken for the tenant
func (r *methodRepository) CodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShippingMethod{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error
	return count > 0, err
}

// List retrieves methods with pagination
func (r *methodRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingMethod, int64, error) {
	var methods []models.ShippingMethod
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.ShippingMethod{}).
		Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&methods).Error
	if err != nil {
		return nil, 0, err
	}
	return methods, total, nil
}

// ListActive retrieves all active methods ordered by sort_order
func (r *methodRepository) ListActive(ctx context.Context, tenantID string) ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("sort_order ASC, created_at ASC").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// ListAll retrieves every method for the tenant, active or not. Used by
// the zone dependency scan before a zone delete.
func (r *methodRepository) ListAll(ctx context.Context, tenantID string) ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC, created_at ASC").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// Update updates a shipping method
func (r *methodRepository) Update(ctx context.Context, method *models.ShippingMethod) error {
	method.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(method).Error
}

// Delete removes a shipping method
func (r *methodRepository) Delete(ctx context.Context, id uuid.UUID, tenantID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.ShippingMethod{}).Error
}

// Count returns the number of methods configured for the tenant
func (r *methodRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShippingMethod{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

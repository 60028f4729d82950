package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shipping-rates-service/internal/events"
	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/repository"
)

// OrderCounter reports how many orders reference a shipping method. The
// orders service implements it.
type OrderCounter interface {
	CountOrdersForShippingMethod(ctx context.Context, tenantID string, methodID uuid.UUID) (int64, error)
}

// MethodService owns shipping method lifecycle.
type MethodService interface {
	CreateMethod(ctx context.Context, tenantID string, req models.CreateMethodRequest) (*models.ShippingMethod, error)
	GetMethod(ctx context.Context, tenantID string, id uuid.UUID) (*models.ShippingMethod, error)
	ListMethods(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingMethod, int64, error)
	UpdateMethod(ctx context.Context, tenantID string, id uuid.UUID, req models.UpdateMethodRequest) (*models.ShippingMethod, error)
	DeleteMethod(ctx context.Context, tenantID string, id uuid.UUID) error
	SeedDefaults(ctx context.Context, tenantID string) error
}

type methodService struct {
	methods   repository.MethodRepository
	orders    OrderCounter
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewMethodService creates a method service. orders and publisher may be nil.
func NewMethodService(
	methods repository.MethodRepository,
	orders OrderCounter,
	publisher *events.Publisher,
	logger *logrus.Logger,
) MethodService {
	return &methodService{
		methods:   methods,
		orders:    orders,
		publisher: publisher,
		logger:    logger.WithField("component", "method-service"),
	}
}

// CreateMethod validates and persists a new method. Only the config block
// matching the declared type is honored.
func (s *methodService) CreateMethod(ctx context.Context, tenantID string, req models.CreateMethodRequest) (*models.ShippingMethod, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("method name is required")
	}
	if !req.Type.Valid() {
		return nil, NewValidationError("invalid method type %q", req.Type)
	}

	method := &models.ShippingMethod{
		TenantID:         tenantID,
		Name:             name,
		Description:      req.Description,
		Type:             req.Type,
		IsActive:         true,
		SortOrder:        req.SortOrder,
		EstimatedDaysMin: req.EstimatedDaysMin,
		EstimatedDaysMax: req.EstimatedDaysMax,
	}
	if req.IsActive != nil {
		method.IsActive = *req.IsActive
	}
	if method.EstimatedDaysMin <= 0 {
		method.EstimatedDaysMin = 1
	}
	if method.EstimatedDaysMax < method.EstimatedDaysMin {
		method.EstimatedDaysMax = method.EstimatedDaysMin
	}

	if err := s.applyConfig(method, req.FlatRate, req.TableRate, req.Pickup); err != nil {
		return nil, err
	}

	code, err := s.generateMethodCode(ctx, tenantID, req.Type, name)
	if err != nil {
		return nil, err
	}
	method.Code = code

	if err := s.methods.Create(ctx, method); err != nil {
		return nil, fmt.Errorf("failed to create method: %w", err)
	}

	if err := s.publisher.PublishMethodEvent(ctx, events.MethodCreated, tenantID, method.ID.String(), method.Name, method.Code, string(method.Type)); err != nil {
		s.logger.WithError(err).Warn("Failed to publish method created event")
	}

	return method, nil
}

// GetMethod retrieves a method by ID
func (s *methodService) GetMethod(ctx context.Context, tenantID string, id uuid.UUID) (*models.ShippingMethod, error) {
	method, err := s.methods.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "shipping method", ID: id.String()}
		}
		return nil, err
	}
	return method, nil
}

// ListMethods retrieves methods with pagination
func (s *methodService) ListMethods(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingMethod, int64, error) {
	return s.methods.List(ctx, tenantID, limit, offset)
}

// UpdateMethod applies a partial update. The type is immutable; config
// updates are re-sanitized and replace the stored config wholesale.
func (s *methodService) UpdateMethod(ctx context.Context, tenantID string, id uuid.UUID, req models.UpdateMethodRequest) (*models.ShippingMethod, error) {
	method, err := s.GetMethod(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Type != "" && req.Type != method.Type {
		return nil, NewValidationError("method type cannot be changed from %s to %s; create a new method instead", method.Type, req.Type)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("method name cannot be empty")
		}
		method.Name = name
	}
	if req.Description != nil {
		method.Description = *req.Description
	}
	if req.IsActive != nil {
		method.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		method.SortOrder = *req.SortOrder
	}
	if req.EstimatedDaysMin != nil {
		method.EstimatedDaysMin = *req.EstimatedDaysMin
	}
	if req.EstimatedDaysMax != nil {
		method.EstimatedDaysMax = *req.EstimatedDaysMax
	}
	if method.EstimatedDaysMin <= 0 {
		method.EstimatedDaysMin = 1
	}
	if method.EstimatedDaysMax < method.EstimatedDaysMin {
		method.EstimatedDaysMax = method.EstimatedDaysMin
	}

	// Only the config block matching the method's type can replace the
	// stored config; blocks for other strategies are ignored.
	configSupplied := (method.Type == models.MethodFlatRate && req.FlatRate != nil) ||
		(method.Type == models.MethodTableRate && req.TableRate != nil) ||
		(method.Type == models.MethodPickup && req.Pickup != nil)
	if configSupplied {
		if err := s.applyConfig(method, req.FlatRate, req.TableRate, req.Pickup); err != nil {
			return nil, err
		}
	}

	if err := s.methods.Update(ctx, method); err != nil {
		return nil, fmt.Errorf("failed to update method: %w", err)
	}

	if err := s.publisher.PublishMethodEvent(ctx, events.MethodUpdated, tenantID, method.ID.String(), method.Name, method.Code, string(method.Type)); err != nil {
		s.logger.WithError(err).Warn("Failed to publish method updated event")
	}

	return method, nil
}

// DeleteMethod removes a method unless orders still reference it.
func (s *methodService) DeleteMethod(ctx context.Context, tenantID string, id uuid.UUID) error {
	method, err := s.GetMethod(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if s.orders != nil {
		count, err := s.orders.CountOrdersForShippingMethod(ctx, tenantID, method.ID)
		if err != nil {
			// Orders service unreachable: refuse rather than risk
			// orphaning order references.
			return fmt.Errorf("failed to check orders for method %s: %w", method.Code, err)
		}
		if count > 0 {
			return &DependencyError{
				Message:          fmt.Sprintf("method %q is referenced by %d order(s)", method.Name, count),
				DependentMethods: []string{method.Name},
			}
		}
	}

	if err := s.methods.Delete(ctx, method.ID, tenantID); err != nil {
		return fmt.Errorf("failed to delete method: %w", err)
	}

	if err := s.publisher.PublishMethodEvent(ctx, events.MethodDeleted, tenantID, method.ID.String(), method.Name, method.Code, string(method.Type)); err != nil {
		s.logger.WithError(err).Warn("Failed to publish method deleted event")
	}

	return nil
}

// applyConfig sanitizes and stores the config block matching the method's
// type, ignoring the others.
func (s *methodService) applyConfig(method *models.ShippingMethod, flat *models.FlatRateConfig, table *models.TableRateConfig, pickup *models.PickupConfig) error {
	switch method.Type {
	case models.MethodFlatRate:
		if flat == nil {
			flat = &models.FlatRateConfig{}
		}
		cfg := *flat
		sanitizeFilter(&cfg.AssignmentFilter)
		if cfg.DefaultCost < 0 {
			return NewValidationError("default cost cannot be negative")
		}
		rates := cfg.ZoneRates[:0]
		for _, zr := range cfg.ZoneRates {
			if zr.ZoneID == uuid.Nil {
				continue
			}
			if zr.Cost < 0 {
				return NewValidationError("zone rate cost cannot be negative")
			}
			rates = append(rates, zr)
		}
		cfg.ZoneRates = rates
		return method.SetConfig(cfg)

	case models.MethodTableRate:
		if table == nil {
			return NewValidationError("table shipping configuration is required")
		}
		cfg := *table
		sanitizeFilter(&cfg.AssignmentFilter)
		if len(cfg.ZoneRates) == 0 {
			return NewValidationError("table shipping requires at least one zone rate")
		}
		for _, zr := range cfg.ZoneRates {
			if zr.ZoneID == uuid.Nil {
				return NewValidationError("table shipping zone rate is missing its zone")
			}
			if len(zr.WeightRanges) == 0 {
				return NewValidationError("table shipping zone rate requires at least one weight range")
			}
			for _, wr := range zr.WeightRanges {
				if wr.MinWeight < 0 || wr.MaxWeight < wr.MinWeight {
					return NewValidationError("invalid weight range %g-%g", wr.MinWeight, wr.MaxWeight)
				}
				if wr.Cost < 0 {
					return NewValidationError("weight range cost cannot be negative")
				}
			}
		}
		return method.SetConfig(cfg)

	case models.MethodPickup:
		if pickup == nil {
			return NewValidationError("pickup configuration is required")
		}
		cfg := *pickup
		sanitizeFilter(&cfg.AssignmentFilter)
		if cfg.Cost < 0 {
			return NewValidationError("pickup cost cannot be negative")
		}
		zones := cfg.ZoneLocations[:0]
		for _, zl := range cfg.ZoneLocations {
			if zl.ZoneID == uuid.Nil {
				continue
			}
			locations := usableLocations(zl.Locations)
			if len(locations) == 0 {
				continue
			}
			zl.Locations = locations
			zones = append(zones, zl)
		}
		cfg.ZoneLocations = zones
		cfg.DefaultLocations = usableLocations(cfg.DefaultLocations)
		if len(cfg.ZoneLocations) == 0 && len(cfg.DefaultLocations) == 0 {
			return NewValidationError("pickup requires at least one usable location")
		}
		return method.SetConfig(cfg)
	}
	return NewValidationError("invalid method type %q", method.Type)
}

// sanitizeFilter normalizes the assignment filter: lists belonging to an
// assignment mode other than the active one are force-cleared so a stale
// list can never narrow the method.
func sanitizeFilter(f *models.AssignmentFilter) {
	if f.Assignment == "" {
		f.Assignment = models.AssignAllProducts
	}
	if f.Assignment != models.AssignCategories {
		f.Categories = nil
	}
	if f.Assignment != models.AssignSpecificProducts {
		f.Products = nil
	}
}

func usableLocations(locations []models.PickupLocation) []models.PickupLocation {
	var usable []models.PickupLocation
	for _, l := range locations {
		if l.Usable() {
			usable = append(usable, l)
		}
	}
	return usable
}

// generateMethodCode builds "{prefix}-{first two letters of name}", with a
// numeric suffix on collision.
func (s *methodService) generateMethodCode(ctx context.Context, tenantID string, methodType models.MethodType, name string) (string, error) {
	letters := make([]rune, 0, 2)
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters = append(letters, r)
		}
		if len(letters) == 2 {
			break
		}
	}
	base := fmt.Sprintf("%s-%s", methodType.CodePrefix(), strings.ToUpper(string(letters)))

	taken, err := s.methods.CodeExists(ctx, tenantID, base)
	if err != nil {
		return "", fmt.Errorf("failed to check method code: %w", err)
	}
	if !taken {
		return base, nil
	}

	for i := 2; i <= maxCodeAttempts; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		taken, err := s.methods.CodeExists(ctx, tenantID, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check method code: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", &ConflictError{Message: fmt.Sprintf("could not generate a unique code for %q", name)}
}

// SeedDefaults creates a starter method set for tenants with none
// configured. Called from the list endpoint on first use.
func (s *methodService) SeedDefaults(ctx context.Context, tenantID string) error {
	count, err := s.methods.Count(ctx, tenantID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	standard := &models.ShippingMethod{
		TenantID:         tenantID,
		Name:             "Standard Delivery",
		Description:      "Door-to-door delivery within 2-5 business days",
		Type:             models.MethodFlatRate,
		IsActive:         true,
		SortOrder:        0,
		EstimatedDaysMin: 2,
		EstimatedDaysMax: 5,
	}
	if err := standard.SetConfig(models.FlatRateConfig{
		AssignmentFilter: models.AssignmentFilter{Assignment: models.AssignAllProducts},
		DefaultCost:      1500,
		FreeShipping:     models.FreeShippingRule{Enabled: false},
	}); err != nil {
		return err
	}
	code, err := s.generateMethodCode(ctx, tenantID, standard.Type, standard.Name)
	if err != nil {
		return err
	}
	standard.Code = code
	if err := s.methods.Create(ctx, standard); err != nil {
		return fmt.Errorf("failed to seed default method: %w", err)
	}

	s.logger.WithField("tenant_id", tenantID).Info("Seeded default shipping methods")
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shipping-rates-service/internal/events"
	"shipping-rates-service/internal/geo"
	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/repository"
)

// maxCodeAttempts bounds the numeric-suffix search when generating codes.
const maxCodeAttempts = 999

// ZoneService is the zone registry: it owns zone lifecycle and resolves
// delivery addresses to covering zones.
type ZoneService interface {
	ResolveZone(ctx context.Context, tenantID, state, subRegion string) (*models.ShippingZone, error)
	CreateZone(ctx context.Context, tenantID string, req models.CreateZoneRequest) (*models.ShippingZone, error)
	GetZone(ctx context.Context, tenantID string, id uuid.UUID) (*models.ShippingZone, error)
	ListZones(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingZone, int64, error)
	UpdateZone(ctx context.Context, tenantID string, id uuid.UUID, req models.UpdateZoneRequest) (*models.ShippingZone, error)
	DeleteZone(ctx context.Context, tenantID string, id uuid.UUID, cascade bool) error
}

type zoneService struct {
	zones     repository.ZoneRepository
	methods   repository.MethodRepository
	directory *geo.Directory
	cache     *ZoneCache
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewZoneService creates a zone service. cache and publisher may be nil.
func NewZoneService(
	zones repository.ZoneRepository,
	methods repository.MethodRepository,
	directory *geo.Directory,
	cache *ZoneCache,
	publisher *events.Publisher,
	logger *logrus.Logger,
) ZoneService {
	return &zoneService{
		zones:     zones,
		methods:   methods,
		directory: directory,
		cache:     cache,
		publisher: publisher,
		logger:    logger.WithField("component", "zone-service"),
	}
}

// ResolveZone finds the zone covering a location. Zones are checked in
// sort_order then creation order, first match wins. Returns (nil, nil)
// when no zone covers the location; callers treat that as "no shipping
// available" unless a pickup method with default locations applies.
func (s *zoneService) ResolveZone(ctx context.Context, tenantID, state, subRegion string) (*models.ShippingZone, error) {
	if cachedID, hit := s.cache.Get(ctx, tenantID, state, subRegion); hit {
		if cachedID == uuid.Nil {
			return nil, nil
		}
		zone, err := s.zones.GetByID(ctx, cachedID, tenantID)
		if err == nil {
			return zone, nil
		}
		// Stale cache entry; fall through to a full resolution.
	}

	zones, err := s.zones.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}

	for i := range zones {
		if zones[i].Covers(state, subRegion) {
			s.cache.Put(ctx, tenantID, state, subRegion, zones[i].ID)
			return &zones[i], nil
		}
	}

	s.cache.Put(ctx, tenantID, state, subRegion, uuid.Nil)
	return nil, nil
}

// CreateZone validates coverage against the reference directory and
// persists a new zone with an auto-generated code.
func (s *zoneService) CreateZone(ctx context.Context, tenantID string, req models.CreateZoneRequest) (*models.ShippingZone, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("zone name is required")
	}
	if len(req.States) == 0 {
		return nil, NewValidationError("zone must cover at least one state")
	}

	existing, err := s.zones.GetByName(ctx, tenantID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check zone name: %w", err)
	}
	if existing != nil {
		return nil, &ConflictError{Message: fmt.Sprintf("zone %q already exists", name)}
	}

	states, err := s.buildStateCoverages(req.States)
	if err != nil {
		return nil, err
	}

	code, err := s.generateZoneCode(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	zone := &models.ShippingZone{
		TenantID:    tenantID,
		Name:        name,
		Code:        code,
		Description: req.Description,
		IsActive:    isActive,
		SortOrder:   req.SortOrder,
		States:      states,
	}
	if err := s.zones.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}

	s.cache.Invalidate(ctx, tenantID)
	if err := s.publisher.PublishZoneEvent(ctx, events.ZoneCreated, tenantID, zone.ID.String(), zone.Name, zone.Code); err != nil {
		s.logger.WithError(err).Warn("Failed to publish zone created event")
	}

	return zone, nil
}

// GetZone retrieves a zone by ID
func (s *zoneService) GetZone(ctx context.Context, tenantID string, id uuid.UUID) (*models.ShippingZone, error) {
	zone, err := s.zones.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "zone", ID: id.String()}
		}
		return nil, err
	}
	return zone, nil
}

// ListZones retrieves zones with pagination
func (s *zoneService) ListZones(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingZone, int64, error) {
	return s.zones.List(ctx, tenantID, limit, offset)
}

// UpdateZone applies a partial update. A supplied States slice replaces
// the coverage wholesale after full re-validation.
func (s *zoneService) UpdateZone(ctx context.Context, tenantID string, id uuid.UUID, req models.UpdateZoneRequest) (*models.ShippingZone, error) {
	zone, err := s.GetZone(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("zone name cannot be empty")
		}
		if !strings.EqualFold(name, zone.Name) {
			existing, err := s.zones.GetByName(ctx, tenantID, name)
			if err != nil {
				return nil, fmt.Errorf("failed to check zone name: %w", err)
			}
			if existing != nil && existing.ID != zone.ID {
				return nil, &ConflictError{Message: fmt.Sprintf("zone %q already exists", name)}
			}
		}
		zone.Name = name
	}
	if req.Description != nil {
		zone.Description = *req.Description
	}
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		zone.SortOrder = *req.SortOrder
	}

	if req.States != nil {
		states, err := s.buildStateCoverages(req.States)
		if err != nil {
			return nil, err
		}
		if err := s.zones.ReplaceStates(ctx, zone.ID, states); err != nil {
			return nil, fmt.Errorf("failed to replace zone states: %w", err)
		}
		zone.States = states
	}

	if err := s.zones.Update(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to update zone: %w", err)
	}

	s.cache.Invalidate(ctx, tenantID)
	if err := s.publisher.PublishZoneEvent(ctx, events.ZoneUpdated, tenantID, zone.ID.String(), zone.Name, zone.Code); err != nil {
		s.logger.WithError(err).Warn("Failed to publish zone updated event")
	}

	return zone, nil
}

// DeleteZone removes a zone. When methods still reference the zone the
// delete is rejected with the dependents listed, unless cascade is set,
// in which case the dependent methods are deleted first. The scan and the
// delete are not atomic against concurrent method creation; acceptable
// for an admin-operated path.
func (s *zoneService) DeleteZone(ctx context.Context, tenantID string, id uuid.UUID, cascade bool) error {
	zone, err := s.GetZone(ctx, tenantID, id)
	if err != nil {
		return err
	}

	methods, err := s.methods.ListAll(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to scan methods: %w", err)
	}

	var dependents []models.ShippingMethod
	for i := range methods {
		for _, ref := range methodZoneRefs(&methods[i]) {
			if ref == zone.ID {
				dependents = append(dependents, methods[i])
				break
			}
		}
	}

	if len(dependents) > 0 && !cascade {
		names := make([]string, len(dependents))
		for i, m := range dependents {
			names[i] = m.Name
		}
		return &DependencyError{
			Message:          fmt.Sprintf("zone %q is referenced by shipping methods", zone.Name),
			DependentMethods: names,
		}
	}

	for i := range dependents {
		if err := s.methods.Delete(ctx, dependents[i].ID, tenantID); err != nil {
			return fmt.Errorf("failed to cascade delete method %s: %w", dependents[i].Code, err)
		}
		s.logger.WithFields(logrus.Fields{
			"method": dependents[i].Code,
			"zone":   zone.Code,
		}).Info("Cascade deleted shipping method")
	}

	if err := s.zones.Delete(ctx, zone.ID, tenantID); err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}

	s.cache.Invalidate(ctx, tenantID)
	if err := s.publisher.PublishZoneEvent(ctx, events.ZoneDeleted, tenantID, zone.ID.String(), zone.Name, zone.Code); err != nil {
		s.logger.WithError(err).Warn("Failed to publish zone deleted event")
	}

	return nil
}

// buildStateCoverages validates coverage input against the reference
// directory and fills in state codes and the canonical sub-region lists.
func (s *zoneService) buildStateCoverages(inputs []models.StateCoverageInput) ([]models.StateCoverage, error) {
	seen := make(map[string]bool, len(inputs))
	states := make([]models.StateCoverage, 0, len(inputs))

	for _, in := range inputs {
		region, ok := s.directory.LookupState(in.StateName)
		if !ok {
			return nil, &InvalidStateError{State: in.StateName}
		}
		key := strings.ToLower(region.State)
		if seen[key] {
			return nil, NewValidationError("state %q appears more than once", region.State)
		}
		seen[key] = true

		coverage := in.CoverageType
		if coverage == "" {
			coverage = models.CoverageAll
		}
		if coverage != models.CoverageAll && coverage != models.CoverageSpecific {
			return nil, NewValidationError("invalid coverage type %q for state %q", coverage, region.State)
		}

		var covered []string
		if coverage == models.CoverageSpecific {
			if len(in.CoveredSubRegions) == 0 {
				return nil, NewValidationError("specific coverage of %q requires at least one sub-region", region.State)
			}
			var unknown []string
			for _, sub := range in.CoveredSubRegions {
				if !s.directory.HasSubRegion(region.State, sub) {
					unknown = append(unknown, sub)
				}
			}
			if len(unknown) > 0 {
				return nil, &InvalidSubRegionError{State: region.State, SubRegions: unknown}
			}
			covered = in.CoveredSubRegions
		}

		states = append(states, models.StateCoverage{
			StateName:           region.State,
			StateCode:           region.StateCode,
			CoverageType:        coverage,
			AvailableSubRegions: region.LGAs,
			CoveredSubRegions:   covered,
		})
	}

	return states, nil
}

// generateZoneCode derives a code from the name's initials: uppercase
// initials of up to the first three words, or the first three letters of
// a single word, padded to at least two characters. Collisions get an
// incrementing numeric suffix.
func (s *zoneService) generateZoneCode(ctx context.Context, tenantID, name string) (string, error) {
	base := codeInitials(name)

	taken, err := s.zones.CodeExists(ctx, tenantID, base)
	if err != nil {
		return "", fmt.Errorf("failed to check zone code: %w", err)
	}
	if !taken {
		return base, nil
	}

	for i := 2; i <= maxCodeAttempts; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		taken, err := s.zones.CodeExists(ctx, tenantID, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check zone code: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", &ConflictError{Message: fmt.Sprintf("could not generate a unique code for %q", name)}
}

// codeInitials builds the base code from a name.
func codeInitials(name string) string {
	words := strings.Fields(name)
	var b strings.Builder
	if len(words) == 1 {
		for _, r := range words[0] {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
			}
			if b.Len() >= 3 {
				break
			}
		}
	} else {
		for i, w := range words {
			if i >= 3 {
				break
			}
			for _, r := range w {
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					b.WriteRune(unicode.ToUpper(r))
					break
				}
			}
		}
	}
	code := b.String()
	for len(code) < 2 {
		code += "Z"
	}
	return code
}

// methodZoneRefs lists every zone a method's config references.
func methodZoneRefs(m *models.ShippingMethod) []uuid.UUID {
	var refs []uuid.UUID
	switch m.Type {
	case models.MethodFlatRate:
		cfg, err := m.FlatRate()
		if err != nil {
			return nil
		}
		for _, zr := range cfg.ZoneRates {
			refs = append(refs, zr.ZoneID)
		}
	case models.MethodTableRate:
		cfg, err := m.TableRate()
		if err != nil {
			return nil
		}
		for _, zr := range cfg.ZoneRates {
			refs = append(refs, zr.ZoneID)
		}
	case models.MethodPickup:
		cfg, err := m.Pickup()
		if err != nil {
			return nil
		}
		for _, zl := range cfg.ZoneLocations {
			refs = append(refs, zl.ZoneID)
		}
	}
	return refs
}

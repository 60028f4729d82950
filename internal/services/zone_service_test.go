package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipping-rates-service/internal/geo"
	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/repository"
)

const testTenant = "00000000-0000-0000-0000-000000000001"

// MockZoneRepository is a mock implementation of ZoneRepository
type MockZoneRepository struct {
	mock.Mock
}

var _ repository.ZoneRepository = (*MockZoneRepository)(nil)

func (m *MockZoneRepository) Create(ctx context.Context, zone *models.ShippingZone) error {
	args := m.Called(ctx, zone)
	if args.Error(0) == nil && zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockZoneRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*models.ShippingZone, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShippingZone), args.Error(1)
}

func (m *MockZoneRepository) GetByName(ctx context.Context, tenantID, name string) (*models.ShippingZone, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShippingZone), args.Error(1)
}

func (m *MockZoneRepository) CodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockZoneRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingZone, int64, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]models.ShippingZone), args.Get(1).(int64), args.Error(2)
}

func (m *MockZoneRepository) ListActive(ctx context.Context, tenantID string) ([]models.ShippingZone, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.ShippingZone), args.Error(1)
}

func (m *MockZoneRepository) Update(ctx context.Context, zone *models.ShippingZone) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

func (m *MockZoneRepository) ReplaceStates(ctx context.Context, zoneID uuid.UUID, states []models.StateCoverage) error {
	args := m.Called(ctx, zoneID, states)
	return args.Error(0)
}

func (m *MockZoneRepository) Delete(ctx context.Context, id uuid.UUID, tenantID string) error {
	args := m.Called(ctx, id, tenantID)
	return args.Error(0)
}

// MockMethodRepository is a mock implementation of MethodRepository
type MockMethodRepository struct {
	mock.Mock
}

var _ repository.MethodRepository = (*MockMethodRepository)(nil)

func (m *MockMethodRepository) Create(ctx context.Context, method *models.ShippingMethod) error {
	args := m.Called(ctx, method)
	if args.Error(0) == nil && method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockMethodRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*models.ShippingMethod, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShippingMethod), args.Error(1)
}

func (m *MockMethodRepository) CodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockMethodRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]models.ShippingMethod, int64, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]models.ShippingMethod), args.Get(1).(int64), args.Error(2)
}

func (m *MockMethodRepository) ListActive(ctx context.Context, tenantID string) ([]models.ShippingMethod, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.ShippingMethod), args.Error(1)
}

func (m *MockMethodRepository) ListAll(ctx context.Context, tenantID string) ([]models.ShippingMethod, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.ShippingMethod), args.Error(1)
}

func (m *MockMethodRepository) Update(ctx context.Context, method *models.ShippingMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockMethodRepository) Delete(ctx context.Context, id uuid.UUID, tenantID string) error {
	args := m.Called(ctx, id, tenantID)
	return args.Error(0)
}

func (m *MockMethodRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestZoneService(zones *MockZoneRepository, methods *MockMethodRepository) ZoneService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewZoneService(zones, methods, geo.NewDirectory(geo.Nigeria()), nil, nil, logger)
}

func lagosZone(id uuid.UUID) models.ShippingZone {
	return models.ShippingZone{
		ID:       id,
		TenantID: testTenant,
		Name:     "Lagos Mainland",
		Code:     "LM",
		IsActive: true,
		States: []models.StateCoverage{{
			StateName:         "Lagos",
			StateCode:         "LA",
			CoverageType:      models.CoverageSpecific,
			CoveredSubRegions: []string{"Ikeja", "Agege"},
		}},
	}
}

func TestResolveZone(t *testing.T) {
	ctx := context.Background()

	t.Run("first covering zone wins", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		mainland := lagosZone(uuid.New())
		allLagos := models.ShippingZone{
			ID:       uuid.New(),
			TenantID: testTenant,
			Name:     "Lagos",
			Code:     "LG",
			IsActive: true,
			States: []models.StateCoverage{{
				StateName:    "Lagos",
				CoverageType: models.CoverageAll,
			}},
		}
		zones.On("ListActive", ctx, testTenant).Return([]models.ShippingZone{mainland, allLagos}, nil)

		zone, err := svc.ResolveZone(ctx, testTenant, "Lagos", "Ikeja")
		require.NoError(t, err)
		require.NotNil(t, zone)
		assert.Equal(t, mainland.ID, zone.ID)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		mainland := lagosZone(uuid.New())
		zones.On("ListActive", ctx, testTenant).Return([]models.ShippingZone{mainland}, nil)

		zone, err := svc.ResolveZone(ctx, testTenant, "lagos", "IKEJA")
		require.NoError(t, err)
		require.NotNil(t, zone)
		assert.Equal(t, mainland.ID, zone.ID)
	})

	t.Run("uncovered location resolves to nil without error", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		mainland := lagosZone(uuid.New())
		zones.On("ListActive", ctx, testTenant).Return([]models.ShippingZone{mainland}, nil)

		zone, err := svc.ResolveZone(ctx, testTenant, "Lagos", "Epe")
		require.NoError(t, err)
		assert.Nil(t, zone)
	})
}

func TestCreateZone(t *testing.T) {
	ctx := context.Background()

	t.Run("creates zone with generated code and reference data", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zones.On("GetByName", ctx, testTenant, "South West Express").Return(nil, nil)
		zones.On("CodeExists", ctx, testTenant, "SWE").Return(false, nil)
		zones.On("Create", ctx, mock.AnythingOfType("*models.ShippingZone")).Return(nil)

		zone, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name: "South West Express",
			States: []models.StateCoverageInput{
				{StateName: "Lagos", CoverageType: models.CoverageAll},
				{StateName: "Ogun", CoverageType: models.CoverageAll},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "SWE", zone.Code)
		assert.True(t, zone.IsActive)
		require.Len(t, zone.States, 2)
		assert.Equal(t, "Lagos", zone.States[0].StateName)
		assert.NotEmpty(t, zone.States[0].AvailableSubRegions)
	})

	t.Run("single-word name uses first three letters", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zones.On("GetByName", ctx, testTenant, "Northern").Return(nil, nil)
		zones.On("CodeExists", ctx, testTenant, "NOR").Return(false, nil)
		zones.On("Create", ctx, mock.AnythingOfType("*models.ShippingZone")).Return(nil)

		zone, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name:   "Northern",
			States: []models.StateCoverageInput{{StateName: "Kano"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "NOR", zone.Code)
	})

	t.Run("code collision gets a numeric suffix", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zones.On("GetByName", ctx, testTenant, "Northern").Return(nil, nil)
		zones.On("CodeExists", ctx, testTenant, "NOR").Return(true, nil)
		zones.On("CodeExists", ctx, testTenant, "NOR2").Return(false, nil)
		zones.On("Create", ctx, mock.AnythingOfType("*models.ShippingZone")).Return(nil)

		zone, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name:   "Northern",
			States: []models.StateCoverageInput{{StateName: "Kano"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "NOR2", zone.Code)
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		existing := lagosZone(uuid.New())
		zones.On("GetByName", ctx, testTenant, "Lagos Mainland").Return(&existing, nil)

		_, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name:   "Lagos Mainland",
			States: []models.StateCoverageInput{{StateName: "Lagos"}},
		})
		var conflictErr *ConflictError
		assert.ErrorAs(t, err, &conflictErr)
	})

	t.Run("unknown state is rejected", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zones.On("GetByName", ctx, testTenant, "Atlantis Zone").Return(nil, nil)

		_, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name:   "Atlantis Zone",
			States: []models.StateCoverageInput{{StateName: "Atlantis"}},
		})
		var stateErr *InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})

	t.Run("unknown sub-regions are rejected and listed", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zones.On("GetByName", ctx, testTenant, "Lagos Islands").Return(nil, nil)

		_, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name: "Lagos Islands",
			States: []models.StateCoverageInput{{
				StateName:         "Lagos",
				CoverageType:      models.CoverageSpecific,
				CoveredSubRegions: []string{"Ikeja", "Gotham"},
			}},
		})
		var subErr *InvalidSubRegionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, []string{"Gotham"}, subErr.SubRegions)
	})

	t.Run("specific coverage requires sub-regions", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zones.On("GetByName", ctx, testTenant, "Lagos Islands").Return(nil, nil)

		_, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name: "Lagos Islands",
			States: []models.StateCoverageInput{{
				StateName:    "Lagos",
				CoverageType: models.CoverageSpecific,
			}},
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("duplicate state in one zone is rejected", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zones.On("GetByName", ctx, testTenant, "Doubled").Return(nil, nil)

		_, err := svc.CreateZone(ctx, testTenant, models.CreateZoneRequest{
			Name: "Doubled",
			States: []models.StateCoverageInput{
				{StateName: "Lagos"},
				{StateName: "lagos"},
			},
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestDeleteZone(t *testing.T) {
	ctx := context.Background()

	referencingMethod := func(t *testing.T, zoneID uuid.UUID) models.ShippingMethod {
		t.Helper()
		m := models.ShippingMethod{
			ID:       uuid.New(),
			TenantID: testTenant,
			Name:     "Heavy Goods",
			Code:     "TS-HE",
			Type:     models.MethodTableRate,
		}
		require.NoError(t, m.SetConfig(models.TableRateConfig{
			ZoneRates: []models.TableZoneRate{{
				ZoneID:       zoneID,
				WeightRanges: []models.WeightRange{{MinWeight: 0, MaxWeight: 10, Cost: 1000}},
			}},
		}))
		return m
	}

	t.Run("blocked when methods reference the zone", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zone := lagosZone(uuid.New())
		zones.On("GetByID", ctx, zone.ID, testTenant).Return(&zone, nil)
		methods.On("ListAll", ctx, testTenant).Return([]models.ShippingMethod{referencingMethod(t, zone.ID)}, nil)

		err := svc.DeleteZone(ctx, testTenant, zone.ID, false)
		var depErr *DependencyError
		require.ErrorAs(t, err, &depErr)
		assert.Equal(t, []string{"Heavy Goods"}, depErr.DependentMethods)
		zones.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cascade deletes dependents first", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zone := lagosZone(uuid.New())
		dependent := referencingMethod(t, zone.ID)
		zones.On("GetByID", ctx, zone.ID, testTenant).Return(&zone, nil)
		methods.On("ListAll", ctx, testTenant).Return([]models.ShippingMethod{dependent}, nil)
		methods.On("Delete", ctx, dependent.ID, testTenant).Return(nil)
		zones.On("Delete", ctx, zone.ID, testTenant).Return(nil)

		err := svc.DeleteZone(ctx, testTenant, zone.ID, true)
		require.NoError(t, err)
		methods.AssertCalled(t, "Delete", ctx, dependent.ID, testTenant)
		zones.AssertCalled(t, "Delete", ctx, zone.ID, testTenant)
	})

	t.Run("unreferenced zone deletes cleanly", func(t *testing.T) {
		zones := new(MockZoneRepository)
		methods := new(MockMethodRepository)
		svc := newTestZoneService(zones, methods)

		zone := lagosZone(uuid.New())
		zones.On("GetByID", ctx, zone.ID, testTenant).Return(&zone, nil)
		methods.On("ListAll", ctx, testTenant).Return([]models.ShippingMethod{referencingMethod(t, uuid.New())}, nil)
		zones.On("Delete", ctx, zone.ID, testTenant).Return(nil)

		err := svc.DeleteZone(ctx, testTenant, zone.ID, false)
		require.NoError(t, err)
	})
}

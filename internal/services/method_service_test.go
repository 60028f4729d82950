package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipping-rates-service/internal/models"
)

// MockOrderCounter is a mock implementation of OrderCounter
type MockOrderCounter struct {
	mock.Mock
}

func (m *MockOrderCounter) CountOrdersForShippingMethod(ctx context.Context, tenantID string, methodID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, methodID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestMethodService(methods *MockMethodRepository, orders *MockOrderCounter) MethodService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	if orders == nil {
		return NewMethodService(methods, nil, nil, logger)
	}
	return NewMethodService(methods, orders, nil, logger)
}

func TestCreateMethod(t *testing.T) {
	ctx := context.Background()

	t.Run("flat rate with generated code", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		methods.On("CodeExists", ctx, testTenant, "FR-EX").Return(false, nil)
		methods.On("Create", ctx, mock.AnythingOfType("*models.ShippingMethod")).Return(nil)

		method, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name:     "Express Delivery",
			Type:     models.MethodFlatRate,
			FlatRate: &models.FlatRateConfig{DefaultCost: 2500},
		})
		require.NoError(t, err)
		assert.Equal(t, "FR-EX", method.Code)
		assert.Equal(t, models.MethodFlatRate, method.Type)

		cfg, err := method.FlatRate()
		require.NoError(t, err)
		assert.Equal(t, 2500.0, cfg.DefaultCost)
		assert.Equal(t, models.AssignAllProducts, cfg.Assignment)
	})

	t.Run("invalid type is rejected", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		_, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name: "Courier",
			Type: "drone_drop",
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("code collision gets a numeric suffix", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		methods.On("CodeExists", ctx, testTenant, "FR-EX").Return(true, nil)
		methods.On("CodeExists", ctx, testTenant, "FR-EX2").Return(false, nil)
		methods.On("Create", ctx, mock.AnythingOfType("*models.ShippingMethod")).Return(nil)

		method, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name:     "Express Delivery",
			Type:     models.MethodFlatRate,
			FlatRate: &models.FlatRateConfig{DefaultCost: 2500},
		})
		require.NoError(t, err)
		assert.Equal(t, "FR-EX2", method.Code)
	})

	t.Run("stale filter lists are force-cleared", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		methods.On("CodeExists", ctx, testTenant, "FR-ST").Return(false, nil)
		methods.On("Create", ctx, mock.AnythingOfType("*models.ShippingMethod")).Return(nil)

		method, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name: "Standard Delivery",
			Type: models.MethodFlatRate,
			FlatRate: &models.FlatRateConfig{
				AssignmentFilter: models.AssignmentFilter{
					Assignment: models.AssignCategories,
					Categories: []string{"coffee-beans"},
					Products:   []string{"leftover-product"},
				},
				DefaultCost: 1500,
			},
		})
		require.NoError(t, err)

		cfg, err := method.FlatRate()
		require.NoError(t, err)
		assert.Equal(t, []string{"coffee-beans"}, cfg.Categories)
		assert.Nil(t, cfg.Products)
	})

	t.Run("flat rate drops zone rates without a zone", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		methods.On("CodeExists", ctx, testTenant, "FR-ST").Return(false, nil)
		methods.On("Create", ctx, mock.AnythingOfType("*models.ShippingMethod")).Return(nil)

		zoneID := uuid.New()
		method, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name: "Standard Delivery",
			Type: models.MethodFlatRate,
			FlatRate: &models.FlatRateConfig{
				DefaultCost: 1500,
				ZoneRates: []models.FlatZoneRate{
					{ZoneID: uuid.Nil, Cost: 900},
					{ZoneID: zoneID, Cost: 1100},
				},
			},
		})
		require.NoError(t, err)

		cfg, err := method.FlatRate()
		require.NoError(t, err)
		require.Len(t, cfg.ZoneRates, 1)
		assert.Equal(t, zoneID, cfg.ZoneRates[0].ZoneID)
	})

	t.Run("table shipping requires zone rates", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		_, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name:      "Heavy Goods",
			Type:      models.MethodTableRate,
			TableRate: &models.TableRateConfig{},
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("pickup keeps only usable locations", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		methods.On("CodeExists", ctx, testTenant, "PU-ST").Return(false, nil)
		methods.On("Create", ctx, mock.AnythingOfType("*models.ShippingMethod")).Return(nil)

		incomplete := models.PickupLocation{Name: "No Address", IsActive: true}
		method, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name: "Store Pickup",
			Type: models.MethodPickup,
			Pickup: &models.PickupConfig{
				DefaultLocations: []models.PickupLocation{incomplete, testLocation("Ikeja Store")},
			},
		})
		require.NoError(t, err)

		cfg, err := method.Pickup()
		require.NoError(t, err)
		require.Len(t, cfg.DefaultLocations, 1)
		assert.Equal(t, "Ikeja Store", cfg.DefaultLocations[0].Name)
	})

	t.Run("pickup with no usable location anywhere is rejected", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		inactive := testLocation("Closed Store")
		inactive.IsActive = false
		_, err := svc.CreateMethod(ctx, testTenant, models.CreateMethodRequest{
			Name: "Store Pickup",
			Type: models.MethodPickup,
			Pickup: &models.PickupConfig{
				DefaultLocations: []models.PickupLocation{inactive},
			},
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestUpdateMethod(t *testing.T) {
	ctx := context.Background()

	existing := func(t *testing.T) *models.ShippingMethod {
		t.Helper()
		m := &models.ShippingMethod{
			ID:       uuid.New(),
			TenantID: testTenant,
			Name:     "Standard Delivery",
			Code:     "FR-ST",
			Type:     models.MethodFlatRate,
			IsActive: true,
		}
		require.NoError(t, m.SetConfig(models.FlatRateConfig{DefaultCost: 1500}))
		return m
	}

	t.Run("type is immutable", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		m := existing(t)
		methods.On("GetByID", ctx, m.ID, testTenant).Return(m, nil)

		_, err := svc.UpdateMethod(ctx, testTenant, m.ID, models.UpdateMethodRequest{
			Type: models.MethodPickup,
		})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		methods.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("config update replaces the stored config", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		m := existing(t)
		methods.On("GetByID", ctx, m.ID, testTenant).Return(m, nil)
		methods.On("Update", ctx, m).Return(nil)

		updated, err := svc.UpdateMethod(ctx, testTenant, m.ID, models.UpdateMethodRequest{
			FlatRate: &models.FlatRateConfig{
				DefaultCost:  2000,
				FreeShipping: models.FreeShippingRule{Enabled: true, MinimumOrderAmount: 30000},
			},
		})
		require.NoError(t, err)

		cfg, err := updated.FlatRate()
		require.NoError(t, err)
		assert.Equal(t, 2000.0, cfg.DefaultCost)
		assert.True(t, cfg.FreeShipping.Enabled)
	})

	t.Run("partial update keeps config untouched", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		m := existing(t)
		methods.On("GetByID", ctx, m.ID, testTenant).Return(m, nil)
		methods.On("Update", ctx, m).Return(nil)

		name := "Door Delivery"
		updated, err := svc.UpdateMethod(ctx, testTenant, m.ID, models.UpdateMethodRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Door Delivery", updated.Name)

		cfg, err := updated.FlatRate()
		require.NoError(t, err)
		assert.Equal(t, 1500.0, cfg.DefaultCost)
	})
}

func TestDeleteMethod(t *testing.T) {
	ctx := context.Background()

	existing := func(t *testing.T) *models.ShippingMethod {
		t.Helper()
		m := &models.ShippingMethod{
			ID:       uuid.New(),
			TenantID: testTenant,
			Name:     "Standard Delivery",
			Code:     "FR-ST",
			Type:     models.MethodFlatRate,
		}
		require.NoError(t, m.SetConfig(models.FlatRateConfig{DefaultCost: 1500}))
		return m
	}

	t.Run("blocked when orders reference the method", func(t *testing.T) {
		methods := new(MockMethodRepository)
		orders := new(MockOrderCounter)
		svc := newTestMethodService(methods, orders)

		m := existing(t)
		methods.On("GetByID", ctx, m.ID, testTenant).Return(m, nil)
		orders.On("CountOrdersForShippingMethod", ctx, testTenant, m.ID).Return(int64(3), nil)

		err := svc.DeleteMethod(ctx, testTenant, m.ID)
		var depErr *DependencyError
		require.ErrorAs(t, err, &depErr)
		assert.Equal(t, []string{"Standard Delivery"}, depErr.DependentMethods)
		methods.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unreferenced method deletes cleanly", func(t *testing.T) {
		methods := new(MockMethodRepository)
		orders := new(MockOrderCounter)
		svc := newTestMethodService(methods, orders)

		m := existing(t)
		methods.On("GetByID", ctx, m.ID, testTenant).Return(m, nil)
		orders.On("CountOrdersForShippingMethod", ctx, testTenant, m.ID).Return(int64(0), nil)
		methods.On("Delete", ctx, m.ID, testTenant).Return(nil)

		err := svc.DeleteMethod(ctx, testTenant, m.ID)
		require.NoError(t, err)
	})
}

func TestSeedDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds on an empty tenant", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		methods.On("Count", ctx, testTenant).Return(int64(0), nil)
		methods.On("CodeExists", ctx, testTenant, "FR-ST").Return(false, nil)
		methods.On("Create", ctx, mock.AnythingOfType("*models.ShippingMethod")).Return(nil)

		require.NoError(t, svc.SeedDefaults(ctx, testTenant))
		methods.AssertCalled(t, "Create", ctx, mock.AnythingOfType("*models.ShippingMethod"))
	})

	t.Run("does nothing when methods exist", func(t *testing.T) {
		methods := new(MockMethodRepository)
		svc := newTestMethodService(methods, nil)

		methods.On("Count", ctx, testTenant).Return(int64(4), nil)

		require.NoError(t, svc.SeedDefaults(ctx, testTenant))
		methods.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

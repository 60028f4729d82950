package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"shipping-rates-service/internal/clients"
	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/repository"
)

// defaultItemWeight is assumed for products without a configured weight.
const defaultItemWeight = 1.0

// CheckoutService computes the shipping options for a cart at checkout.
type CheckoutService interface {
	CalculateShippingOptions(ctx context.Context, tenantID string, req models.CalculateCheckoutRequest) (*models.CheckoutShippingResponse, error)
}

type checkoutService struct {
	zones     ZoneService
	methods   repository.MethodRepository
	engine    *RateEngine
	products  clients.ProductsClient
	customers clients.CustomersClient
	logger    *logrus.Entry
}

// NewCheckoutService creates a checkout service
func NewCheckoutService(
	zones ZoneService,
	methods repository.MethodRepository,
	engine *RateEngine,
	products clients.ProductsClient,
	customers clients.CustomersClient,
	logger *logrus.Logger,
) CheckoutService {
	return &checkoutService{
		zones:     zones,
		methods:   methods,
		engine:    engine,
		products:  products,
		customers: customers,
		logger:    logger.WithField("component", "checkout-service"),
	}
}

// CalculateShippingOptions resolves the address to a zone, weighs the
// cart, prices every active method and returns the eligible ones ranked
// free-first then cheapest-first. An empty method list is a normal result.
func (s *checkoutService) CalculateShippingOptions(ctx context.Context, tenantID string, req models.CalculateCheckoutRequest) (*models.CheckoutShippingResponse, error) {
	address, err := s.customers.GetAddress(ctx, req.AddressID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch address: %w", err)
	}
	if address == nil {
		return nil, &NotFoundError{Resource: "address", ID: req.AddressID}
	}

	zone, err := s.zones.ResolveZone(ctx, tenantID, address.State, address.SubRegion)
	if err != nil {
		return nil, err
	}
	zoneID := uuid.Nil
	var zoneSummary *models.ZoneSummary
	if zone != nil {
		zoneID = zone.ID
		summary := zone.Summary()
		zoneSummary = &summary
	}

	items, weight, err := s.collectItems(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}
	if req.TotalWeight != nil && *req.TotalWeight > 0 {
		weight = *req.TotalWeight
	}

	input := RateInput{
		Weight:     weight,
		OrderValue: req.OrderValue,
		ZoneID:     zoneID,
		Items:      items,
	}

	methods, err := s.methods.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list methods: %w", err)
	}

	options := make([]models.CheckoutShippingOption, 0, len(methods))
	now := time.Now().UTC()
	for i := range methods {
		method := &methods[i]
		option, ok := s.priceMethod(method, input, now, zoneID)
		if ok {
			options = append(options, option)
		}
	}

	// Free options first, then cheapest first. Stable so sort_order
	// breaks cost ties.
	sort.SliceStable(options, func(i, j int) bool {
		if (options[i].Cost == 0) != (options[j].Cost == 0) {
			return options[i].Cost == 0
		}
		return options[i].Cost < options[j].Cost
	})

	return &models.CheckoutShippingResponse{
		Zone:             zoneSummary,
		Methods:          options,
		CalculatedWeight: weight,
		Address: models.CheckoutAddress{
			ID:        address.ID,
			State:     address.State,
			SubRegion: address.SubRegion,
			City:      address.City,
		},
	}, nil
}

// priceMethod runs one method through the eligibility gates and the rate
// engine. A broken method is logged and skipped, never failing checkout.
func (s *checkoutService) priceMethod(method *models.ShippingMethod, input RateInput, now time.Time, zoneID uuid.UUID) (models.CheckoutShippingOption, bool) {
	if !method.ValidAt(now) {
		return models.CheckoutShippingOption{}, false
	}

	applies, err := s.engine.AppliesToItems(method, input.Items)
	if err != nil {
		s.logger.WithError(err).WithField("method", method.Code).Warn("Skipping method with unreadable config")
		return models.CheckoutShippingOption{}, false
	}
	if !applies {
		return models.CheckoutShippingOption{}, false
	}

	available, err := s.engine.IsAvailableInZone(method, zoneID)
	if err != nil {
		s.logger.WithError(err).WithField("method", method.Code).Warn("Skipping method with unreadable config")
		return models.CheckoutShippingOption{}, false
	}
	if !available {
		return models.CheckoutShippingOption{}, false
	}

	calc, err := s.engine.CalculateShippingCost(method, input)
	if err != nil {
		s.logger.WithError(err).WithField("method", method.Code).Warn("Skipping method with unreadable config")
		return models.CheckoutShippingOption{}, false
	}
	if !calc.Eligible {
		return models.CheckoutShippingOption{}, false
	}

	option := models.CheckoutShippingOption{
		MethodID:         method.ID,
		Name:             method.Name,
		Code:             method.Code,
		Type:             method.Type,
		Cost:             calc.Cost,
		Reason:           calc.Reason,
		EstimatedDaysMin: method.EstimatedDaysMin,
		EstimatedDaysMax: method.EstimatedDaysMax,
	}

	if method.Type == models.MethodPickup {
		locations, err := s.engine.PickupLocationsForZone(method, zoneID)
		if err != nil {
			s.logger.WithError(err).WithField("method", method.Code).Warn("Skipping method with unreadable config")
			return models.CheckoutShippingOption{}, false
		}
		option.PickupLocations = locations
	}

	return option, true
}

// collectItems fetches each cart line's product and sums the cart weight.
// Unavailable or unpublished products are skipped; a cart with no valid
// line cannot be shipped.
func (s *checkoutService) collectItems(ctx context.Context, tenantID string, lines []models.CheckoutItem) ([]RateItem, float64, error) {
	items := make([]RateItem, 0, len(lines))
	var weight float64

	for _, line := range lines {
		product, err := s.products.GetProduct(ctx, line.ProductID, tenantID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch product %s: %w", line.ProductID, err)
		}
		if product == nil || !product.IsAvailable || !product.IsPublished {
			s.logger.WithField("product_id", line.ProductID).Warn("Skipping unavailable product in checkout")
			continue
		}

		itemWeight := defaultItemWeight
		if product.Weight != nil && *product.Weight > 0 {
			itemWeight = *product.Weight
		}

		items = append(items, RateItem{
			ProductID:  product.ID,
			CategoryID: product.CategoryID,
			Quantity:   line.Quantity,
			Weight:     itemWeight,
		})
		weight += itemWeight * float64(line.Quantity)
	}

	if len(items) == 0 {
		return nil, 0, NewValidationError("no shippable items in cart")
	}
	return items, weight, nil
}

package events

import (
	"context"
	"os"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"
)

// Shipping configuration event types
const (
	ZoneCreated   = "shipping.zone_created"
	ZoneUpdated   = "shipping.zone_updated"
	ZoneDeleted   = "shipping.zone_deleted"
	MethodCreated = "shipping.method_created"
	MethodUpdated = "shipping.method_updated"
	MethodDeleted = "shipping.method_deleted"
)

// ShippingEvent represents a shipping configuration event
type ShippingEvent struct {
	events.BaseEvent
	ZoneID     string `json:"zoneId,omitempty"`
	ZoneName   string `json:"zoneName,omitempty"`
	ZoneCode   string `json:"zoneCode,omitempty"`
	MethodID   string `json:"methodId,omitempty"`
	MethodName string `json:"methodName,omitempty"`
	MethodCode string `json:"methodCode,omitempty"`
	MethodType string `json:"methodType,omitempty"`
}

func (e *ShippingEvent) GetSubject() string {
	return e.EventType
}

func (e *ShippingEvent) GetStream() string {
	return "SHIPPING_EVENTS"
}

// Publisher wraps the shared events publisher for zone/method events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new shipping events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "shipping-rates-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := publisher.EnsureStream(ctx, "SHIPPING_EVENTS", []string{"shipping.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure SHIPPING_EVENTS stream")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishZoneEvent publishes a zone lifecycle event
func (p *Publisher) PublishZoneEvent(ctx context.Context, eventType, tenantID, zoneID, zoneName, zoneCode string) error {
	if p == nil {
		return nil
	}
	event := &ShippingEvent{
		BaseEvent: events.BaseEvent{
			EventType: eventType,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
		},
		ZoneID:   zoneID,
		ZoneName: zoneName,
		ZoneCode: zoneCode,
	}
	return p.publisher.Publish(ctx, event)
}

// PublishMethodEvent publishes a method lifecycle event
func (p *Publisher) PublishMethodEvent(ctx context.Context, eventType, tenantID, methodID, methodName, methodCode, methodType string) error {
	if p == nil {
		return nil
	}
	event := &ShippingEvent{
		BaseEvent: events.BaseEvent{
			EventType: eventType,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
		},
		MethodID:   methodID,
		MethodName: methodName,
		MethodCode: methodCode,
		MethodType: methodType,
	}
	return p.publisher.Publish(ctx, event)
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	p.publisher.Close()
}

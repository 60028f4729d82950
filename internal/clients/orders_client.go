package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// OrdersClient defines the interface for communicating with orders-service
type OrdersClient interface {
	// CountOrdersForShippingMethod reports how many orders reference a
	// shipping method, used to guard method deletion.
	CountOrdersForShippingMethod(ctx context.Context, tenantID string, methodID uuid.UUID) (int64, error)
}

type orderCountResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Count int64 `json:"count"`
	} `json:"data"`
}

type ordersClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOrdersClient creates a new orders service client
func NewOrdersClient(baseURL string) OrdersClient {
	return &ordersClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CountOrdersForShippingMethod counts orders that use a shipping method
func (c *ordersClient) CountOrdersForShippingMethod(ctx context.Context, tenantID string, methodID uuid.UUID) (int64, error) {
	url := fmt.Sprintf("%s/api/v1/orders/count?shippingMethodId=%s", c.baseURL, methodID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("orders service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var countResp orderCountResponse
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return countResp.Data.Count, nil
}

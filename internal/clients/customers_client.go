package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CustomersClient defines the interface for communicating with customers-service
type CustomersClient interface {
	// GetAddress fetches a saved delivery address. Returns (nil, nil) when
	// the address does not exist.
	GetAddress(ctx context.Context, addressID string, tenantID string) (*Address, error)
}

// Address represents the delivery address fields used for zone resolution
type Address struct {
	ID        string `json:"id"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	SubRegion string `json:"subRegion,omitempty"`
	State     string `json:"state"`
	Country   string `json:"country,omitempty"`
}

type addressResponse struct {
	Success bool    `json:"success"`
	Data    Address `json:"data"`
}

type customersClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCustomersClient creates a new customers service client
func NewCustomersClient(baseURL string) CustomersClient {
	return &customersClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetAddress fetches a customer address by ID
func (c *customersClient) GetAddress(ctx context.Context, addressID string, tenantID string) (*Address, error) {
	url := fmt.Sprintf("%s/api/v1/customers/addresses/%s", c.baseURL, addressID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("customers service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var addrResp addressResponse
	if err := json.NewDecoder(resp.Body).Decode(&addrResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &addrResp.Data, nil
}

package staff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/models"
)

// Client is the typed HTTP client the staff terminal uses to talk to the
// order service. Every order it hands out has been normalized, so a
// missing status is already coerced to pending at this boundary.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ListOrders fetches the full order collection, creation-time descending.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/history", nil, http.StatusOK, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Normalize()
	}
	return orders, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/orders/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &order); err != nil {
		return nil, err
	}
	order.Normalize()
	return &order, nil
}

// CreateOrder submits a new order and returns the assigned id.
func (c *Client) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (int, error) {
	var resp models.CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, http.StatusCreated, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateStatus applies a status change to one order and returns the full
// updated record. Callers replace their cached copy, never merge.
func (c *Client) UpdateStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/orders/%d/status", id)
	body := models.UpdateStatusRequest{Status: string(status)}
	if err := c.do(ctx, http.MethodPatch, path, body, http.StatusOK, &order); err != nil {
		return nil, err
	}
	order.Normalize()
	return &order, nil
}

// do performs one API round-trip and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, wantStatus int, out interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.errorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorFromResponse maps an API error payload onto the shared sentinels.
func (c *Client) errorFromResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return models.ErrNotFound
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server rejected request: %s", payload.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/multiship/internal/core/domain"
)

const (
	defaultTimeout = 30 * time.Second
	shopAPIVersion = "v24_1"
)

// Config holds the commerce API connection settings.
type Config struct {
	BaseURL     string
	SiteID      string
	AccessToken string
	Timeout     time.Duration
}

// Client talks to the external commerce API over its shop REST surface.
// Baskets, items and shipments are owned by the server; the client only
// issues mutations and decodes the returned state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// APIError is a non-2xx response from the commerce API.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("commerce api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("commerce api: status %d", e.Status)
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("commerce base URL is required")
	}
	if cfg.SiteID == "" {
		return nil, fmt.Errorf("commerce site ID is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    fmt.Sprintf("%s/s/%s/dw/shop/%s", base, cfg.SiteID, shopAPIVersion),
		token:      cfg.AccessToken,
	}, nil
}

func (c *Client) GetBasket(ctx context.Context, basketID string) (*domain.Basket, error) {
	var out basketDTO
	if err := c.do(ctx, http.MethodGet, "/baskets/"+url.PathEscape(basketID), nil, &out); err != nil {
		return nil, fmt.Errorf("get basket %s: %w", basketID, err)
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateItem(ctx context.Context, basketID string, update domain.ItemUpdate) (*domain.Basket, error) {
	path := fmt.Sprintf("/baskets/%s/items/%s", url.PathEscape(basketID), url.PathEscape(update.ItemID))
	var out basketDTO
	if err := c.do(ctx, http.MethodPatch, path, itemUpdateBody(update), &out); err != nil {
		return nil, fmt.Errorf("update item %s: %w", update.ItemID, err)
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateItems(ctx context.Context, basketID string, updates []domain.ItemUpdate) (*domain.Basket, error) {
	body := make([]map[string]any, len(updates))
	for i, u := range updates {
		b := itemUpdateBody(u)
		b["item_id"] = u.ItemID
		body[i] = b
	}
	var out basketDTO
	if err := c.do(ctx, http.MethodPatch, "/baskets/"+url.PathEscape(basketID)+"/items", body, &out); err != nil {
		return nil, fmt.Errorf("update %d item(s): %w", len(updates), err)
	}
	return out.toDomain(), nil
}

func (c *Client) CreateShipment(ctx context.Context, basketID string) (*domain.Shipment, error) {
	var out shipmentDTO
	if err := c.do(ctx, http.MethodPost, "/baskets/"+url.PathEscape(basketID)+"/shipments", map[string]any{}, &out); err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}
	return out.toDomain(), nil
}

func (c *Client) RemoveShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID) error {
	path := fmt.Sprintf("/baskets/%s/shipments/%s", url.PathEscape(basketID), url.PathEscape(string(shipmentID)))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("remove shipment %s: %w", shipmentID, err)
	}
	return nil
}

func (c *Client) UpdateShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID, update domain.ShipmentUpdate) (*domain.Shipment, error) {
	body := map[string]any{}
	if update.ShippingMethodID != "" {
		body["shipping_method"] = map[string]any{"id": update.ShippingMethodID}
	}
	if update.FromStoreID != nil {
		if *update.FromStoreID == "" {
			body["c_fromStoreId"] = nil
		} else {
			body["c_fromStoreId"] = *update.FromStoreID
		}
	}
	if update.ShippingAddress != nil {
		body["shipping_address"] = addressDTOFrom(*update.ShippingAddress)
	}

	path := fmt.Sprintf("/baskets/%s/shipments/%s", url.PathEscape(basketID), url.PathEscape(string(shipmentID)))
	var out shipmentDTO
	if err := c.do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return nil, fmt.Errorf("update shipment %s: %w", shipmentID, err)
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateShipmentAddress(ctx context.Context, basketID string, shipmentID domain.ShipmentID, address domain.Address) error {
	path := fmt.Sprintf("/baskets/%s/shipments/%s/shipping_address", url.PathEscape(basketID), url.PathEscape(string(shipmentID)))
	if err := c.do(ctx, http.MethodPut, path, addressDTOFrom(address), nil); err != nil {
		return fmt.Errorf("update shipping address on %s: %w", shipmentID, err)
	}
	return nil
}

func (c *Client) GetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID) (*domain.ShippingMethodResult, error) {
	path := fmt.Sprintf("/baskets/%s/shipments/%s/shipping_methods", url.PathEscape(basketID), url.PathEscape(string(shipmentID)))
	var out shippingMethodResultDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get shipping methods for %s: %w", shipmentID, err)
	}
	return out.toDomain(), nil
}

func (c *Client) GetProducts(ctx context.Context, ids []string, inventoryIDs []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("expand", "availability,set_products,bundled_products")
	if len(inventoryIDs) > 0 {
		query.Set("inventory_ids", strings.Join(inventoryIDs, ","))
	}
	path := fmt.Sprintf("/products/(%s)?%s", url.PathEscape(strings.Join(ids, ",")), query.Encode())

	var out struct {
		Data []productDTO `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	products := make([]domain.Product, len(out.Data))
	for i, dto := range out.Data {
		products[i] = dto.toDomain()
	}
	return products, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var fault faultDTO
		if json.Unmarshal(data, &fault) == nil {
			apiErr.Type = fault.Fault.Type
			apiErr.Message = fault.Fault.Message
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func itemUpdateBody(u domain.ItemUpdate) map[string]any {
	body := map[string]any{
		"product_id":  u.ProductID,
		"quantity":    u.Quantity,
		"shipment_id": string(u.ShipmentID),
	}
	if u.InventoryID != "" {
		body["inventory_id"] = u.InventoryID
	}
	return body
}

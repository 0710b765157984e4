package port

import (
	"context"

	"github.com/rl1809/multiship/internal/core/domain"
)

// CacheRepository caches applicable-shipping-methods fetches per basket and
// shipment. Cache failures are advisory; callers fall back to the commerce
// API.
type CacheRepository interface {
	// GetShippingMethods returns the cached result, or nil, nil on a miss
	GetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID) (*domain.ShippingMethodResult, error)

	// SetShippingMethods caches the result for the basket/shipment pair
	SetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID, result *domain.ShippingMethodResult) error

	// InvalidateBasket drops every cached entry for the basket
	InvalidateBasket(ctx context.Context, basketID string) error
}

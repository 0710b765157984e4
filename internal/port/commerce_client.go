package port

import (
	"context"

	"github.com/rl1809/multiship/internal/core/domain"
)

// CommerceClient is the gateway to the externally-owned commerce API. The
// basket is the single source of truth; every method that mutates it returns
// or implies a server-side state change, and callers refetch rather than
// patching local copies.
type CommerceClient interface {
	// GetBasket fetches the current basket state
	GetBasket(ctx context.Context, basketID string) (*domain.Basket, error)

	// UpdateItem applies a single item mutation and returns the updated basket
	UpdateItem(ctx context.Context, basketID string, update domain.ItemUpdate) (*domain.Basket, error)

	// UpdateItems applies a batch of item mutations in one call
	UpdateItems(ctx context.Context, basketID string, updates []domain.ItemUpdate) (*domain.Basket, error)

	// CreateShipment adds a new shipment to the basket
	CreateShipment(ctx context.Context, basketID string) (*domain.Shipment, error)

	// RemoveShipment deletes a shipment; the default shipment is never removable
	RemoveShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID) error

	// UpdateShipment patches a shipment's method, store link and address
	UpdateShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID, update domain.ShipmentUpdate) (*domain.Shipment, error)

	// UpdateShipmentAddress replaces a shipment's shipping address
	UpdateShipmentAddress(ctx context.Context, basketID string, shipmentID domain.ShipmentID, address domain.Address) error

	// GetShippingMethods fetches the applicable shipping methods for a shipment
	GetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID) (*domain.ShippingMethodResult, error)

	// GetProducts fetches products by id, with store-scoped availability for
	// the given inventory list ids
	GetProducts(ctx context.Context, ids []string, inventoryIDs []string) ([]domain.Product, error)
}

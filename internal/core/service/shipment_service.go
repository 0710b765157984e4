package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/multiship/internal/core/domain"
	"github.com/rl1809/multiship/internal/port"
)

// defaultPickupMethodID is used when a pickup shipment must be configured
// and no pickup-enabled method id was resolved from the applicable methods.
const defaultPickupMethodID = "store-pickup"

// pickupAddressLastName marks a shipment address as a store pickup address.
const pickupAddressLastName = "pickup"

var (
	ErrNoBasket                = errors.New("no basket available")
	ErrInvalidBasketOrItems    = errors.New("invalid basket or product item(s)")
	ErrNoStoreSelected         = errors.New("no store selected for pickup")
	ErrStoreMissingInventoryID = errors.New("selected store has no inventory id")
	ErrShipmentNotResolved     = errors.New("failed to find or create shipment")
	ErrNoPickupMethod          = errors.New("no pickup-enabled shipping method available")
)

// PickupShippingMethodID returns the id of the first applicable method
// flagged for store pickup, or "" when the result is absent or holds none.
// First match wins; there is no further tie-break.
func PickupShippingMethodID(result *domain.ShippingMethodResult) string {
	if result == nil {
		return ""
	}
	for _, m := range result.ApplicableShippingMethods {
		if m.StorePickupEnabled {
			return m.ID
		}
	}
	return ""
}

// DefaultShippingMethodID returns the server-designated default method id,
// or "" when the result is absent. An empty id means the server chooses.
func DefaultShippingMethodID(result *domain.ShippingMethodResult) string {
	if result == nil {
		return ""
	}
	return result.DefaultShippingMethodID
}

// ShipmentFinder resolves the destination shipment id for an item
// reassignment, creating the shipment when necessary.
type ShipmentFinder func(ctx context.Context) (domain.ShipmentID, error)

// PickupShipmentOptions tunes UpdatePickupShipment.
type PickupShipmentOptions struct {
	// ShippingMethodID overrides the hardcoded default pickup method id.
	ShippingMethodID string
}

// ShipmentService owns the shipment-level primitives: configuring a shipment
// for pickup or delivery and reassigning basket items between shipments.
type ShipmentService struct {
	commerce port.CommerceClient
	stores   port.StoreRepository
	cache    port.CacheRepository
	log      *zap.Logger
}

func NewShipmentService(commerce port.CommerceClient, stores port.StoreRepository, cache port.CacheRepository, log *zap.Logger) *ShipmentService {
	return &ShipmentService{
		commerce: commerce,
		stores:   stores,
		cache:    cache,
		log:      log,
	}
}

// applicableMethods is a read-through cached fetch of the applicable
// shipping methods for one shipment. Cache failures are logged and ignored.
func (s *ShipmentService) applicableMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID) (*domain.ShippingMethodResult, error) {
	cached, err := s.cache.GetShippingMethods(ctx, basketID, shipmentID)
	if err != nil {
		s.log.Warn("shipping method cache read failed",
			zap.String("basket_id", basketID),
			zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	result, err := s.commerce.GetShippingMethods(ctx, basketID, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch shipping methods for shipment %s: %w", shipmentID, err)
	}

	if err := s.cache.SetShippingMethods(ctx, basketID, shipmentID, result); err != nil {
		s.log.Warn("shipping method cache write failed",
			zap.String("basket_id", basketID),
			zap.Error(err))
	}
	return result, nil
}

// invalidateMethods drops cached shipping methods after a shipment mutation.
func (s *ShipmentService) invalidateMethods(ctx context.Context, basketID string) {
	if err := s.cache.InvalidateBasket(ctx, basketID); err != nil {
		s.log.Warn("shipping method cache invalidation failed",
			zap.String("basket_id", basketID),
			zap.Error(err))
	}
}

// HasPickupItems reports whether any basket item sits on a pickup shipment.
func (s *ShipmentService) HasPickupItems(basket *domain.Basket) bool {
	if basket == nil {
		return false
	}
	for _, item := range basket.ProductItems {
		if basket.Shipment(item.ShipmentID).IsPickup() {
			return true
		}
	}
	return false
}

// AddInventoryIDsToPickupItems stamps the store inventory id onto every
// pickup item that is missing one, one batched call per pickup shipment.
func (s *ShipmentService) AddInventoryIDsToPickupItems(ctx context.Context, basket *domain.Basket) error {
	if basket == nil {
		return ErrNoBasket
	}
	for _, sh := range basket.Shipments {
		if !sh.IsPickup() || sh.FromStoreID == "" {
			continue
		}
		store, err := s.stores.GetStore(ctx, sh.FromStoreID)
		if err != nil {
			return fmt.Errorf("resolve store %s: %w", sh.FromStoreID, err)
		}
		if store == nil || store.InventoryID == "" {
			s.log.Warn("pickup shipment store has no inventory id",
				zap.String("basket_id", basket.ID),
				zap.String("store_id", sh.FromStoreID))
			continue
		}

		var missing []domain.ProductItem
		for _, item := range basket.ItemsInShipment(sh.ID) {
			if item.InventoryID == "" {
				missing = append(missing, item)
			}
		}
		if err := s.UpdateItemsToPickupShipment(ctx, basket.ID, missing, sh.ID, store.InventoryID); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePickupShipment configures a shipment for pickup at the given store:
// pickup method id, c_fromStoreId, and a shipping address constructed from
// the store. Resolves to a no-op when the store is absent or carries no
// inventory id.
func (s *ShipmentService) UpdatePickupShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID, store *domain.Store, opts PickupShipmentOptions) error {
	if store == nil || store.InventoryID == "" {
		return nil
	}

	methodID := opts.ShippingMethodID
	if methodID == "" {
		methodID = defaultPickupMethodID
	}

	fromStoreID := store.ID
	update := domain.ShipmentUpdate{
		ShippingMethodID: methodID,
		FromStoreID:      &fromStoreID,
		ShippingAddress: &domain.Address{
			FirstName:   store.Name,
			LastName:    pickupAddressLastName,
			Address1:    store.Address1,
			City:        store.City,
			StateCode:   store.StateCode,
			PostalCode:  store.PostalCode,
			CountryCode: store.CountryCode,
			Phone:       store.Phone,
		},
	}

	if _, err := s.commerce.UpdateShipment(ctx, basketID, shipmentID, update); err != nil {
		return fmt.Errorf("update shipment %s for pickup: %w", shipmentID, err)
	}
	s.invalidateMethods(ctx, basketID)
	return nil
}

// UpdateDeliveryShipment reconfigures a shipment for ship-to-address:
// clears the store link and the address, and assigns the given method id.
// An empty method id is omitted so the server chooses.
func (s *ShipmentService) UpdateDeliveryShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID, shippingMethodID string) error {
	cleared := ""
	update := domain.ShipmentUpdate{
		ShippingMethodID: shippingMethodID,
		FromStoreID:      &cleared,
		ShippingAddress:  &domain.Address{},
	}

	if _, err := s.commerce.UpdateShipment(ctx, basketID, shipmentID, update); err != nil {
		return fmt.Errorf("update shipment %s for delivery: %w", shipmentID, err)
	}
	s.invalidateMethods(ctx, basketID)
	return nil
}

// UpdateDefaultShipmentIfNeeded reconfigures the default shipment when the
// requested pickup state or store differs from its current configuration.
// Acts only on the default shipment id and no-ops when nothing changed.
func (s *ShipmentService) UpdateDefaultShipmentIfNeeded(ctx context.Context, basket *domain.Basket, target domain.ShipmentID, pickup bool, store *domain.Store) error {
	if basket == nil || !target.IsDefault() {
		return nil
	}

	current := basket.Shipment(domain.DefaultShipmentID)
	currentPickup := current.IsPickup()
	storeChanged := pickup && store != nil && (current == nil || current.FromStoreID != store.ID)
	if pickup == currentPickup && !storeChanged {
		return nil
	}

	methods, err := s.applicableMethods(ctx, basket.ID, domain.DefaultShipmentID)
	if err != nil {
		return err
	}

	if pickup {
		return s.UpdatePickupShipment(ctx, basket.ID, domain.DefaultShipmentID, store, PickupShipmentOptions{
			ShippingMethodID: PickupShippingMethodID(methods),
		})
	}
	return s.UpdateDeliveryShipment(ctx, basket.ID, domain.DefaultShipmentID, DefaultShippingMethodID(methods))
}

// UpdateItemToPickupShipment moves one item onto a pickup shipment and
// stamps the store inventory id.
func (s *ShipmentService) UpdateItemToPickupShipment(ctx context.Context, basketID string, item *domain.ProductItem, shipmentID domain.ShipmentID, inventoryID string) error {
	if basketID == "" || item == nil {
		return ErrInvalidBasketOrItems
	}
	_, err := s.commerce.UpdateItem(ctx, basketID, domain.ItemUpdate{
		ItemID:      item.ItemID,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		ShipmentID:  shipmentID,
		InventoryID: inventoryID,
	})
	if err != nil {
		return fmt.Errorf("move item %s to pickup shipment %s: %w", item.ItemID, shipmentID, err)
	}
	return nil
}

// UpdateItemToDeliveryShipment moves one item onto a delivery shipment. The
// inventory id, when given, points the item back at the default inventory
// list.
func (s *ShipmentService) UpdateItemToDeliveryShipment(ctx context.Context, basketID string, item *domain.ProductItem, shipmentID domain.ShipmentID, inventoryID string) error {
	if basketID == "" || item == nil {
		return ErrInvalidBasketOrItems
	}
	_, err := s.commerce.UpdateItem(ctx, basketID, domain.ItemUpdate{
		ItemID:      item.ItemID,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		ShipmentID:  shipmentID,
		InventoryID: inventoryID,
	})
	if err != nil {
		return fmt.Errorf("move item %s to delivery shipment %s: %w", item.ItemID, shipmentID, err)
	}
	return nil
}

// UpdateItemsToPickupShipment batch-moves items onto a pickup shipment. An
// empty item list resolves successfully without touching the API.
func (s *ShipmentService) UpdateItemsToPickupShipment(ctx context.Context, basketID string, items []domain.ProductItem, shipmentID domain.ShipmentID, inventoryID string) error {
	if basketID == "" {
		return ErrInvalidBasketOrItems
	}
	if len(items) == 0 {
		return nil
	}
	if _, err := s.commerce.UpdateItems(ctx, basketID, itemUpdates(items, shipmentID, inventoryID)); err != nil {
		return fmt.Errorf("move %d item(s) to pickup shipment %s: %w", len(items), shipmentID, err)
	}
	return nil
}

// UpdateItemsToDeliveryShipment batch-moves items onto a delivery shipment.
// An empty item list resolves successfully without touching the API.
func (s *ShipmentService) UpdateItemsToDeliveryShipment(ctx context.Context, basketID string, items []domain.ProductItem, shipmentID domain.ShipmentID, inventoryID string) error {
	if basketID == "" {
		return ErrInvalidBasketOrItems
	}
	if len(items) == 0 {
		return nil
	}
	if _, err := s.commerce.UpdateItems(ctx, basketID, itemUpdates(items, shipmentID, inventoryID)); err != nil {
		return fmt.Errorf("move %d item(s) to delivery shipment %s: %w", len(items), shipmentID, err)
	}
	return nil
}

func itemUpdates(items []domain.ProductItem, shipmentID domain.ShipmentID, inventoryID string) []domain.ItemUpdate {
	updates := make([]domain.ItemUpdate, len(items))
	for i, item := range items {
		updates[i] = domain.ItemUpdate{
			ItemID:      item.ItemID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			ShipmentID:  shipmentID,
			InventoryID: inventoryID,
		}
	}
	return updates
}

// UpdateDeliveryOption flips one item between pickup and delivery. The
// destination shipment is resolved through the injected finders, then the
// item is reassigned.
func (s *ShipmentService) UpdateDeliveryOption(ctx context.Context, basketID string, item *domain.ProductItem, pickup bool, store *domain.Store, defaultInventoryID string, findPickup, findDelivery ShipmentFinder) error {
	if basketID == "" || item == nil {
		return ErrInvalidBasketOrItems
	}

	if pickup {
		if store == nil {
			return ErrNoStoreSelected
		}
		if store.InventoryID == "" {
			return ErrStoreMissingInventoryID
		}
		shipmentID, err := findPickup(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrShipmentNotResolved, err)
		}
		if shipmentID == "" {
			return ErrShipmentNotResolved
		}
		return s.UpdateItemToPickupShipment(ctx, basketID, item, shipmentID, store.InventoryID)
	}

	shipmentID, err := findDelivery(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShipmentNotResolved, err)
	}
	if shipmentID == "" {
		return ErrShipmentNotResolved
	}
	return s.UpdateItemToDeliveryShipment(ctx, basketID, item, shipmentID, defaultInventoryID)
}

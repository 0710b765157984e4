package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/multiship/internal/core/domain"
	"github.com/rl1809/multiship/internal/port"
)

// MultishipService reconciles a basket's shipments against per-item delivery
// selections: find-or-create of the right shipment for a set of items,
// consolidation and removal of empty shipments, and the per-item
// pickup/delivery toggle. All mutations go through the commerce API; the
// basket is refetched rather than patched between dependent writes.
type MultishipService struct {
	commerce  port.CommerceClient
	shipments *ShipmentService
	stores    port.StoreRepository
	log       *zap.Logger
}

func NewMultishipService(commerce port.CommerceClient, shipments *ShipmentService, stores port.StoreRepository, log *zap.Logger) *MultishipService {
	return &MultishipService{
		commerce:  commerce,
		shipments: shipments,
		stores:    stores,
		log:       log,
	}
}

// FindOrCreateDeliveryShipment returns the id of a shipment usable for
// ship-to-address items, creating and configuring one when every existing
// shipment is pickup. Method-less shipments count as delivery; the default
// shipment normally satisfies the search.
func (s *MultishipService) FindOrCreateDeliveryShipment(ctx context.Context, basket *domain.Basket) (domain.ShipmentID, error) {
	if basket == nil || basket.ID == "" {
		return "", ErrNoBasket
	}

	for _, sh := range basket.Shipments {
		if !sh.IsPickup() {
			return sh.ID, nil
		}
	}

	created, err := s.commerce.CreateShipment(ctx, basket.ID)
	if err != nil {
		return "", fmt.Errorf("create delivery shipment: %w", err)
	}

	methods, err := s.shipments.applicableMethods(ctx, basket.ID, created.ID)
	if err != nil {
		return "", err
	}
	// An empty default method id is passed through: the server chooses.
	if err := s.shipments.UpdateDeliveryShipment(ctx, basket.ID, created.ID, DefaultShippingMethodID(methods)); err != nil {
		return "", err
	}
	return created.ID, nil
}

// FindOrCreatePickupShipment returns the id of the shipment picking up at
// the given store, creating and configuring one when none exists. Fails with
// ErrNoPickupMethod when the basket's shipment zone offers no pickup-enabled
// method.
func (s *MultishipService) FindOrCreatePickupShipment(ctx context.Context, basket *domain.Basket, store *domain.Store) (domain.ShipmentID, error) {
	if basket == nil || basket.ID == "" {
		return "", ErrNoBasket
	}
	if store == nil {
		return "", ErrNoStoreSelected
	}

	for _, sh := range basket.Shipments {
		if sh.IsPickup() && sh.FromStoreID == store.ID {
			return sh.ID, nil
		}
	}

	created, err := s.commerce.CreateShipment(ctx, basket.ID)
	if err != nil {
		return "", fmt.Errorf("create pickup shipment: %w", err)
	}

	methods, err := s.shipments.applicableMethods(ctx, basket.ID, created.ID)
	if err != nil {
		return "", err
	}
	methodID := PickupShippingMethodID(methods)
	if methodID == "" {
		return "", ErrNoPickupMethod
	}

	if err := s.shipments.UpdatePickupShipment(ctx, basket.ID, created.ID, store, PickupShipmentOptions{ShippingMethodID: methodID}); err != nil {
		return "", err
	}
	return created.ID, nil
}

// ShipmentIDForItems resolves the shipment a set of items belongs on given
// the selected delivery option. With no basket yet there is nothing to
// reconcile and the default shipment id is returned.
func (s *MultishipService) ShipmentIDForItems(ctx context.Context, basket *domain.Basket, pickup bool, store *domain.Store) (domain.ShipmentID, error) {
	if basket == nil || basket.ID == "" {
		return domain.DefaultShipmentID, nil
	}
	if pickup {
		return s.FindOrCreatePickupShipment(ctx, basket, store)
	}
	return s.FindOrCreateDeliveryShipment(ctx, basket)
}

// RemoveEmptyShipments removes every non-default shipment holding zero
// items. When the default shipment itself is empty and exactly one other
// shipment exists, that shipment's configuration and items are consolidated
// into the default first, so its removal loses nothing. Consolidation
// failures are logged and the stale shipment is left in place.
func (s *MultishipService) RemoveEmptyShipments(ctx context.Context, basket *domain.Basket) error {
	if basket == nil || basket.ID == "" {
		return ErrNoBasket
	}

	if src := s.consolidationCandidate(basket); src != nil {
		if err := s.consolidateIntoDefault(ctx, basket, src); err != nil {
			s.log.Warn("shipment consolidation failed, keeping shipment",
				zap.String("basket_id", basket.ID),
				zap.String("shipment_id", string(src.ID)),
				zap.Error(err))
		} else {
			fresh, err := s.commerce.GetBasket(ctx, basket.ID)
			if err != nil {
				return fmt.Errorf("refetch basket after consolidation: %w", err)
			}
			basket = fresh
		}
	}

	for _, sh := range basket.Shipments {
		if sh.ID.IsDefault() || len(basket.ItemsInShipment(sh.ID)) > 0 {
			continue
		}
		if err := s.commerce.RemoveShipment(ctx, basket.ID, sh.ID); err != nil {
			return fmt.Errorf("remove empty shipment %s: %w", sh.ID, err)
		}
		s.shipments.invalidateMethods(ctx, basket.ID)
	}
	return nil
}

// consolidationCandidate returns the sole non-default shipment when the
// default shipment is empty and that shipment still holds items.
func (s *MultishipService) consolidationCandidate(basket *domain.Basket) *domain.Shipment {
	if len(basket.ItemsInShipment(domain.DefaultShipmentID)) > 0 {
		return nil
	}
	var sole *domain.Shipment
	for i := range basket.Shipments {
		if basket.Shipments[i].ID.IsDefault() {
			continue
		}
		if sole != nil {
			return nil
		}
		sole = &basket.Shipments[i]
	}
	if sole == nil || len(basket.ItemsInShipment(sole.ID)) == 0 {
		return nil
	}
	return sole
}

// consolidateIntoDefault moves the source shipment's configuration, address
// and items onto the default shipment.
func (s *MultishipService) consolidateIntoDefault(ctx context.Context, basket *domain.Basket, src *domain.Shipment) error {
	var store *domain.Store
	if src.IsPickup() && src.FromStoreID != "" {
		st, err := s.stores.GetStore(ctx, src.FromStoreID)
		if err != nil {
			return fmt.Errorf("resolve store %s: %w", src.FromStoreID, err)
		}
		store = st
	}

	if err := s.shipments.UpdateDefaultShipmentIfNeeded(ctx, basket, domain.DefaultShipmentID, src.IsPickup(), store); err != nil {
		return err
	}

	if src.ShippingAddress != nil {
		if err := s.commerce.UpdateShipmentAddress(ctx, basket.ID, domain.DefaultShipmentID, *src.ShippingAddress); err != nil {
			return fmt.Errorf("copy shipping address to default shipment: %w", err)
		}
	}

	items := basket.ItemsInShipment(src.ID)
	if src.IsPickup() {
		inventoryID := ""
		if store != nil {
			inventoryID = store.InventoryID
		}
		return s.shipments.UpdateItemsToPickupShipment(ctx, basket.ID, items, domain.DefaultShipmentID, inventoryID)
	}
	return s.shipments.UpdateItemsToDeliveryShipment(ctx, basket.ID, items, domain.DefaultShipmentID, "")
}

// UpdateShipmentsWithoutMethods assigns the default shipping method to any
// shipment missing one. Best effort: failures are logged, never propagated.
func (s *MultishipService) UpdateShipmentsWithoutMethods(ctx context.Context, basket *domain.Basket) error {
	if basket == nil || basket.ID == "" {
		return ErrNoBasket
	}

	for _, sh := range basket.Shipments {
		if sh.ShippingMethod != nil && sh.ShippingMethod.ID != "" {
			continue
		}

		methods, err := s.shipments.applicableMethods(ctx, basket.ID, sh.ID)
		if err != nil {
			s.log.Warn("fetching methods for method-less shipment failed",
				zap.String("basket_id", basket.ID),
				zap.String("shipment_id", string(sh.ID)),
				zap.Error(err))
			continue
		}
		methodID := DefaultShippingMethodID(methods)
		if methodID == "" {
			continue
		}

		if _, err := s.commerce.UpdateShipment(ctx, basket.ID, sh.ID, domain.ShipmentUpdate{ShippingMethodID: methodID}); err != nil {
			s.log.Warn("assigning default shipping method failed",
				zap.String("basket_id", basket.ID),
				zap.String("shipment_id", string(sh.ID)),
				zap.Error(err))
			continue
		}
		s.shipments.invalidateMethods(ctx, basket.ID)
	}
	return nil
}

// UpdateDeliveryOption is the per-item toggle entry point. It validates the
// preconditions, resolves or creates the destination shipment, and
// reassigns the item.
func (s *MultishipService) UpdateDeliveryOption(ctx context.Context, basket *domain.Basket, item *domain.ProductItem, pickup bool, store *domain.Store, defaultInventoryID string) error {
	if basket == nil || basket.ID == "" {
		return ErrNoBasket
	}

	findPickup := func(ctx context.Context) (domain.ShipmentID, error) {
		return s.FindOrCreatePickupShipment(ctx, basket, store)
	}
	findDelivery := func(ctx context.Context) (domain.ShipmentID, error) {
		return s.FindOrCreateDeliveryShipment(ctx, basket)
	}
	return s.shipments.UpdateDeliveryOption(ctx, basket.ID, item, pickup, store, defaultInventoryID, findPickup, findDelivery)
}

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/rl1809/multiship/internal/core/domain"
)

func newMultishipService(commerce *mockCommerce, stores *mockStores, cache *mockCache) *MultishipService {
	if stores == nil {
		stores = newMockStores()
	}
	if cache == nil {
		cache = newMockCache()
	}
	shipments := NewShipmentService(commerce, stores, cache, zap.NewNop())
	return NewMultishipService(commerce, shipments, stores, zap.NewNop())
}

func TestFindOrCreateDeliveryShipment_ReturnsExisting(t *testing.T) {
	commerce := newMockCommerce()
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{ID: "b1", Shipments: []domain.Shipment{
		{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "std"}},
	}}

	id, err := svc.FindOrCreateDeliveryShipment(context.Background(), basket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != domain.DefaultShipmentID {
		t.Errorf("expected default shipment, got %s", id)
	}
	if commerce.created != 0 {
		t.Errorf("expected no shipment creation, got %d", commerce.created)
	}
}

func TestFindOrCreateDeliveryShipment_CreatesWhenAllPickup(t *testing.T) {
	commerce := newMockCommerce()
	commerce.createdShipment = &domain.Shipment{ID: "ship-2"}
	commerce.methods["ship-2"] = pickupMethods("bopis")
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{ID: "b1", Shipments: []domain.Shipment{
		{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1"},
	}}

	id, err := svc.FindOrCreateDeliveryShipment(context.Background(), basket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "ship-2" {
		t.Errorf("expected ship-2, got %s", id)
	}
	if commerce.created != 1 {
		t.Fatalf("expected 1 shipment creation, got %d", commerce.created)
	}
	if len(commerce.shipmentUpdates) != 1 {
		t.Fatalf("expected 1 shipment update, got %d", len(commerce.shipmentUpdates))
	}
	if got := commerce.shipmentUpdates[0].update.ShippingMethodID; got != "std" {
		t.Errorf("expected default method std, got %q", got)
	}
}

func TestFindOrCreatePickupShipment_ReturnsMatchingStore(t *testing.T) {
	commerce := newMockCommerce()
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{ID: "b1", Shipments: []domain.Shipment{
		{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "std"}},
		{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1"},
	}}

	id, err := svc.FindOrCreatePickupShipment(context.Background(), basket, &domain.Store{ID: "s1", InventoryID: "inv-s1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "pickup-1" {
		t.Errorf("expected pickup-1, got %s", id)
	}
	if commerce.created != 0 {
		t.Errorf("expected no creation for matching store, got %d", commerce.created)
	}
}

func TestFindOrCreatePickupShipment_CreatesForNewStore(t *testing.T) {
	commerce := newMockCommerce()
	commerce.createdShipment = &domain.Shipment{ID: "ship-2"}
	commerce.methods["ship-2"] = pickupMethods("bopis")
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{ID: "b1", Shipments: []domain.Shipment{
		{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1"},
	}}

	id, err := svc.FindOrCreatePickupShipment(context.Background(), basket, &domain.Store{ID: "s2", InventoryID: "inv-s2", Name: "Uptown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "ship-2" {
		t.Errorf("expected ship-2, got %s", id)
	}
	if len(commerce.shipmentUpdates) != 1 {
		t.Fatalf("expected pickup configuration, got %d updates", len(commerce.shipmentUpdates))
	}
	update := commerce.shipmentUpdates[0].update
	if update.ShippingMethodID != "bopis" || update.FromStoreID == nil || *update.FromStoreID != "s2" {
		t.Errorf("unexpected pickup configuration: %+v", update)
	}
}

func TestFindOrCreatePickupShipment_NoPickupMethod(t *testing.T) {
	commerce := newMockCommerce()
	commerce.createdShipment = &domain.Shipment{ID: "ship-2"}
	commerce.methods["ship-2"] = &domain.ShippingMethodResult{
		ApplicableShippingMethods: []domain.ShippingMethod{{ID: "std"}},
		DefaultShippingMethodID:   "std",
	}
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{ID: "b1"}

	_, err := svc.FindOrCreatePickupShipment(context.Background(), basket, &domain.Store{ID: "s1", InventoryID: "inv-s1"})
	if !errors.Is(err, ErrNoPickupMethod) {
		t.Errorf("expected ErrNoPickupMethod, got %v", err)
	}
}

func TestShipmentIDForItems_NoBasketDefaultsToMe(t *testing.T) {
	svc := newMultishipService(newMockCommerce(), nil, nil)

	id, err := svc.ShipmentIDForItems(context.Background(), nil, true, &domain.Store{ID: "s1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != domain.DefaultShipmentID {
		t.Errorf("expected default shipment id, got %s", id)
	}
}

func TestRemoveEmptyShipments_RemovesEmptyNonDefault(t *testing.T) {
	commerce := newMockCommerce()
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{
		ID: "b1",
		Shipments: []domain.Shipment{
			{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "std"}},
			{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}},
			{ID: "pickup-2", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}},
		},
		ProductItems: []domain.ProductItem{
			{ItemID: "i1", ShipmentID: domain.DefaultShipmentID},
			{ItemID: "i2", ShipmentID: "pickup-2"},
		},
	}

	if err := svc.RemoveEmptyShipments(context.Background(), basket); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(commerce.removed) != 1 || commerce.removed[0] != "pickup-1" {
		t.Errorf("expected only pickup-1 removed, got %v", commerce.removed)
	}
}

// The consolidation scenario: the default shipment is empty and a single
// pickup shipment holds the basket's only item. The default must take over
// the pickup configuration, the item must move onto it, and the now
// redundant shipment must go.
func TestRemoveEmptyShipments_ConsolidatesSoleShipment(t *testing.T) {
	store := domain.Store{ID: "s1", InventoryID: "inv-s1", Name: "Downtown"}
	pickupAddr := &domain.Address{FirstName: "Downtown", LastName: "pickup"}

	commerce := newMockCommerce()
	commerce.methods[domain.DefaultShipmentID] = pickupMethods("bopis")
	// state the refetch after consolidation observes: item moved, source empty
	commerce.basket = &domain.Basket{
		ID: "b1",
		Shipments: []domain.Shipment{
			{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1", ShippingAddress: pickupAddr},
			{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1"},
		},
		ProductItems: []domain.ProductItem{
			{ItemID: "i1", ProductID: "p1", Quantity: 1, ShipmentID: domain.DefaultShipmentID, InventoryID: "inv-s1"},
		},
	}

	svc := newMultishipService(commerce, newMockStores(store), nil)
	basket := &domain.Basket{
		ID: "b1",
		Shipments: []domain.Shipment{
			{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "std"}},
			{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1", ShippingAddress: pickupAddr},
		},
		ProductItems: []domain.ProductItem{
			{ItemID: "i1", ProductID: "p1", Quantity: 1, ShipmentID: "pickup-1", InventoryID: "inv-s1"},
		},
	}

	if err := svc.RemoveEmptyShipments(context.Background(), basket); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (1) default reconfigured for pickup at s1
	if len(commerce.shipmentUpdates) != 1 {
		t.Fatalf("expected 1 shipment update, got %d", len(commerce.shipmentUpdates))
	}
	reconfig := commerce.shipmentUpdates[0]
	if reconfig.shipmentID != domain.DefaultShipmentID {
		t.Errorf("expected default shipment reconfigured, got %s", reconfig.shipmentID)
	}
	if reconfig.update.ShippingMethodID != "bopis" || reconfig.update.FromStoreID == nil || *reconfig.update.FromStoreID != "s1" {
		t.Errorf("unexpected reconfiguration: %+v", reconfig.update)
	}

	// (2) address copied, item reassigned onto the default shipment
	if len(commerce.addressUpdates) != 1 {
		t.Errorf("expected 1 address copy, got %d", len(commerce.addressUpdates))
	}
	if len(commerce.batchUpdates) != 1 {
		t.Fatalf("expected 1 batched reassignment, got %d", len(commerce.batchUpdates))
	}
	moved := commerce.batchUpdates[0]
	if len(moved) != 1 || moved[0].ItemID != "i1" || moved[0].ShipmentID != domain.DefaultShipmentID || moved[0].InventoryID != "inv-s1" {
		t.Errorf("unexpected reassignment: %+v", moved)
	}

	// (3) redundant shipment removed
	if len(commerce.removed) != 1 || commerce.removed[0] != "pickup-1" {
		t.Errorf("expected pickup-1 removed, got %v", commerce.removed)
	}
}

func TestRemoveEmptyShipments_ConsolidationFailureKeepsShipment(t *testing.T) {
	store := domain.Store{ID: "s1", InventoryID: "inv-s1", Name: "Downtown"}
	commerce := newMockCommerce()
	commerce.methods[domain.DefaultShipmentID] = pickupMethods("bopis")
	commerce.addressErr = errors.New("address update rejected")
	svc := newMultishipService(commerce, newMockStores(store), nil)
	basket := &domain.Basket{
		ID: "b1",
		Shipments: []domain.Shipment{
			{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "std"}},
			{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1", ShippingAddress: &domain.Address{FirstName: "Downtown", LastName: "pickup"}},
		},
		ProductItems: []domain.ProductItem{
			{ItemID: "i1", ProductID: "p1", Quantity: 1, ShipmentID: "pickup-1"},
		},
	}

	if err := svc.RemoveEmptyShipments(context.Background(), basket); err != nil {
		t.Fatalf("consolidation failure must not propagate, got %v", err)
	}

	if len(commerce.removed) != 0 {
		t.Errorf("failed consolidation must keep the shipment, removed %v", commerce.removed)
	}
	if len(commerce.batchUpdates) != 0 {
		t.Errorf("expected no item reassignment after failure, got %v", commerce.batchUpdates)
	}
}

func TestUpdateShipmentsWithoutMethods_AssignsDefault(t *testing.T) {
	commerce := newMockCommerce()
	commerce.methods[domain.DefaultShipmentID] = &domain.ShippingMethodResult{
		ApplicableShippingMethods: []domain.ShippingMethod{{ID: "std"}},
		DefaultShippingMethodID:   "std",
	}
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{ID: "b1", Shipments: []domain.Shipment{
		{ID: domain.DefaultShipmentID},
		{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}},
	}}

	if err := svc.UpdateShipmentsWithoutMethods(context.Background(), basket); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(commerce.shipmentUpdates) != 1 {
		t.Fatalf("expected exactly 1 method assignment, got %d", len(commerce.shipmentUpdates))
	}
	assigned := commerce.shipmentUpdates[0]
	if assigned.shipmentID != domain.DefaultShipmentID || assigned.update.ShippingMethodID != "std" {
		t.Errorf("expected std assigned to default shipment, got %+v", assigned)
	}
}

func TestUpdateShipmentsWithoutMethods_FetchFailureIsBestEffort(t *testing.T) {
	commerce := newMockCommerce()
	commerce.methodsErr = errors.New("api down")
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{ID: "b1", Shipments: []domain.Shipment{{ID: domain.DefaultShipmentID}}}

	if err := svc.UpdateShipmentsWithoutMethods(context.Background(), basket); err != nil {
		t.Fatalf("fetch failure must not propagate, got %v", err)
	}
	if len(commerce.shipmentUpdates) != 0 {
		t.Errorf("expected no assignment, got %d", len(commerce.shipmentUpdates))
	}
}

func TestUpdateDeliveryOption_RequiresBasket(t *testing.T) {
	svc := newMultishipService(newMockCommerce(), nil, nil)
	item := &domain.ProductItem{ItemID: "i1", ProductID: "p1", Quantity: 1}

	err := svc.UpdateDeliveryOption(context.Background(), nil, item, false, nil, "")
	if !errors.Is(err, ErrNoBasket) {
		t.Errorf("expected ErrNoBasket, got %v", err)
	}
}

func TestUpdateDeliveryOption_TogglesToPickupEndToEnd(t *testing.T) {
	commerce := newMockCommerce()
	svc := newMultishipService(commerce, nil, nil)
	basket := &domain.Basket{
		ID: "b1",
		Shipments: []domain.Shipment{
			{ID: domain.DefaultShipmentID, ShippingMethod: &domain.ShippingMethod{ID: "std"}},
			{ID: "pickup-1", ShippingMethod: &domain.ShippingMethod{ID: "bopis", StorePickupEnabled: true}, FromStoreID: "s1"},
		},
		ProductItems: []domain.ProductItem{
			{ItemID: "i1", ProductID: "p1", Quantity: 1, ShipmentID: domain.DefaultShipmentID},
		},
	}
	store := &domain.Store{ID: "s1", InventoryID: "inv-s1"}

	err := svc.UpdateDeliveryOption(context.Background(), basket, basket.Item("i1"), true, store, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(commerce.singleUpdates) != 1 {
		t.Fatalf("expected 1 item update, got %d", len(commerce.singleUpdates))
	}
	update := commerce.singleUpdates[0]
	if update.ShipmentID != "pickup-1" || update.InventoryID != "inv-s1" {
		t.Errorf("expected item moved to existing pickup shipment, got %+v", update)
	}
	if commerce.created != 0 {
		t.Errorf("expected no new shipment, got %d", commerce.created)
	}
}

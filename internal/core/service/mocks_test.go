package service

import (
	"context"
	"sync"

	"github.com/rl1809/multiship/internal/core/domain"
)

// Mock CommerceClient recording every mutation it is asked to perform.
type mockCommerce struct {
	mu sync.Mutex

	basket          *domain.Basket
	basketErr       error
	methods         map[domain.ShipmentID]*domain.ShippingMethodResult
	methodsErr      error
	createdShipment *domain.Shipment
	createErr       error
	updateItemErr   error
	updateShipErr   error
	addressErr      error
	removeErr       error
	products        []domain.Product

	basketFetches   int
	methodFetches   []domain.ShipmentID
	singleUpdates   []domain.ItemUpdate
	batchUpdates    [][]domain.ItemUpdate
	shipmentUpdates []recordedShipmentUpdate
	addressUpdates  []domain.Address
	removed         []domain.ShipmentID
	created         int
}

type recordedShipmentUpdate struct {
	shipmentID domain.ShipmentID
	update     domain.ShipmentUpdate
}

func newMockCommerce() *mockCommerce {
	return &mockCommerce{
		methods: make(map[domain.ShipmentID]*domain.ShippingMethodResult),
	}
}

func (m *mockCommerce) GetBasket(ctx context.Context, basketID string) (*domain.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basketFetches++
	if m.basketErr != nil {
		return nil, m.basketErr
	}
	return m.basket, nil
}

func (m *mockCommerce) UpdateItem(ctx context.Context, basketID string, update domain.ItemUpdate) (*domain.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateItemErr != nil {
		return nil, m.updateItemErr
	}
	m.singleUpdates = append(m.singleUpdates, update)
	return m.basket, nil
}

func (m *mockCommerce) UpdateItems(ctx context.Context, basketID string, updates []domain.ItemUpdate) (*domain.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateItemErr != nil {
		return nil, m.updateItemErr
	}
	m.batchUpdates = append(m.batchUpdates, updates)
	return m.basket, nil
}

func (m *mockCommerce) CreateShipment(ctx context.Context, basketID string) (*domain.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created++
	if m.createdShipment != nil {
		return m.createdShipment, nil
	}
	return &domain.Shipment{ID: "new-shipment"}, nil
}

func (m *mockCommerce) RemoveShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, shipmentID)
	return nil
}

func (m *mockCommerce) UpdateShipment(ctx context.Context, basketID string, shipmentID domain.ShipmentID, update domain.ShipmentUpdate) (*domain.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateShipErr != nil {
		return nil, m.updateShipErr
	}
	m.shipmentUpdates = append(m.shipmentUpdates, recordedShipmentUpdate{shipmentID: shipmentID, update: update})
	return &domain.Shipment{ID: shipmentID}, nil
}

func (m *mockCommerce) UpdateShipmentAddress(ctx context.Context, basketID string, shipmentID domain.ShipmentID, address domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addressErr != nil {
		return m.addressErr
	}
	m.addressUpdates = append(m.addressUpdates, address)
	return nil
}

func (m *mockCommerce) GetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID) (*domain.ShippingMethodResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methodFetches = append(m.methodFetches, shipmentID)
	if m.methodsErr != nil {
		return nil, m.methodsErr
	}
	if res, ok := m.methods[shipmentID]; ok {
		return res, nil
	}
	return &domain.ShippingMethodResult{}, nil
}

func (m *mockCommerce) GetProducts(ctx context.Context, ids []string, inventoryIDs []string) ([]domain.Product, error) {
	return m.products, nil
}

func (m *mockCommerce) mutationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.singleUpdates) + len(m.batchUpdates) + len(m.shipmentUpdates) +
		len(m.addressUpdates) + len(m.removed) + m.created
}

// Mock StoreRepository backed by a map.
type mockStores struct {
	mu     sync.Mutex
	stores map[string]domain.Store
}

func newMockStores(stores ...domain.Store) *mockStores {
	m := &mockStores{stores: make(map[string]domain.Store)}
	for _, s := range stores {
		m.stores[s.ID] = s
	}
	return m
}

func (m *mockStores) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *mockStores) FindNearby(ctx context.Context, lat, lng float64, limit int) ([]domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Store
	for _, s := range m.stores {
		out = append(out, s)
	}
	return out, nil
}

// Mock CacheRepository counting hits, misses and invalidations.
type mockCache struct {
	mu            sync.Mutex
	entries       map[string]*domain.ShippingMethodResult
	getErr        error
	sets          int
	invalidations int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*domain.ShippingMethodResult)}
}

func cacheKey(basketID string, shipmentID domain.ShipmentID) string {
	return basketID + "|" + string(shipmentID)
}

func (m *mockCache) GetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID) (*domain.ShippingMethodResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[cacheKey(basketID, shipmentID)], nil
}

func (m *mockCache) SetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID, result *domain.ShippingMethodResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[cacheKey(basketID, shipmentID)] = result
	return nil
}

func (m *mockCache) InvalidateBasket(ctx context.Context, basketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++
	for key := range m.entries {
		if len(key) > len(basketID) && key[:len(basketID)] == basketID {
			delete(m.entries, key)
		}
	}
	return nil
}

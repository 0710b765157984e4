package commerce

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/multiship/internal/core/domain"
)

// Wire structs for the commerce API's snake_case JSON. Custom attributes
// keep their c_ prefixed names.

type faultDTO struct {
	Fault struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"fault"`
}

type addressDTO struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address1,omitempty"`
	City        string `json:"city,omitempty"`
	StateCode   string `json:"state_code,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

func addressDTOFrom(a domain.Address) addressDTO {
	return addressDTO{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Address1:    a.Address1,
		City:        a.City,
		StateCode:   a.StateCode,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
	}
}

func (a *addressDTO) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Address1:    a.Address1,
		City:        a.City,
		StateCode:   a.StateCode,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
	}
}

type shippingMethodDTO struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name,omitempty"`
	Price              decimal.Decimal `json:"price"`
	StorePickupEnabled bool            `json:"c_storePickupEnabled,omitempty"`
}

func (m *shippingMethodDTO) toDomain() *domain.ShippingMethod {
	if m == nil {
		return nil
	}
	return &domain.ShippingMethod{
		ID:                 m.ID,
		Name:               m.Name,
		Price:              m.Price,
		StorePickupEnabled: m.StorePickupEnabled,
	}
}

type shippingMethodResultDTO struct {
	ApplicableShippingMethods []shippingMethodDTO `json:"applicable_shipping_methods"`
	DefaultShippingMethodID   string              `json:"default_shipping_method_id"`
}

func (r *shippingMethodResultDTO) toDomain() *domain.ShippingMethodResult {
	result := &domain.ShippingMethodResult{
		DefaultShippingMethodID: r.DefaultShippingMethodID,
	}
	for _, m := range r.ApplicableShippingMethods {
		result.ApplicableShippingMethods = append(result.ApplicableShippingMethods, *m.toDomain())
	}
	return result
}

type shipmentDTO struct {
	ShipmentID      string             `json:"shipment_id"`
	ShippingMethod  *shippingMethodDTO `json:"shipping_method,omitempty"`
	FromStoreID     string             `json:"c_fromStoreId,omitempty"`
	ShippingAddress *addressDTO        `json:"shipping_address,omitempty"`
}

func (s *shipmentDTO) toDomain() *domain.Shipment {
	if s == nil {
		return nil
	}
	return &domain.Shipment{
		ID:              domain.ShipmentID(s.ShipmentID),
		ShippingMethod:  s.ShippingMethod.toDomain(),
		FromStoreID:     s.FromStoreID,
		ShippingAddress: s.ShippingAddress.toDomain(),
	}
}

type productItemDTO struct {
	ItemID      string          `json:"item_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	ShipmentID  string          `json:"shipment_id"`
	InventoryID string          `json:"inventory_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type basketDTO struct {
	BasketID     string           `json:"basket_id"`
	Shipments    []shipmentDTO    `json:"shipments"`
	ProductItems []productItemDTO `json:"product_items"`
}

func (b *basketDTO) toDomain() *domain.Basket {
	basket := &domain.Basket{ID: b.BasketID}
	for _, s := range b.Shipments {
		basket.Shipments = append(basket.Shipments, *s.toDomain())
	}
	for _, item := range b.ProductItems {
		basket.ProductItems = append(basket.ProductItems, domain.ProductItem{
			ItemID:      item.ItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			ShipmentID:  domain.ShipmentID(item.ShipmentID),
			InventoryID: item.InventoryID,
			Price:       item.Price,
		})
	}
	return basket
}

type inventoryDTO struct {
	ID         string `json:"id,omitempty"`
	StockLevel int    `json:"stock_level"`
	Orderable  bool   `json:"orderable"`
}

func (i *inventoryDTO) toDomain() *domain.Inventory {
	if i == nil {
		return nil
	}
	return &domain.Inventory{
		ID:         i.ID,
		StockLevel: i.StockLevel,
		Orderable:  i.Orderable,
	}
}

type bundledProductDTO struct {
	Product  productDTO `json:"product"`
	Quantity int        `json:"quantity"`
}

type productDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type struct {
		Item   bool `json:"item,omitempty"`
		Set    bool `json:"set,omitempty"`
		Bundle bool `json:"bundle,omitempty"`
	} `json:"type"`
	Inventory       *inventoryDTO       `json:"inventory,omitempty"`
	Inventories     []inventoryDTO      `json:"inventories,omitempty"`
	SetProducts     []productDTO        `json:"set_products,omitempty"`
	BundledProducts []bundledProductDTO `json:"bundled_products,omitempty"`
}

func (p *productDTO) toDomain() domain.Product {
	product := domain.Product{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.productType(),
		Inventory: p.Inventory.toDomain(),
	}
	for _, inv := range p.Inventories {
		if product.StoreInventories == nil {
			product.StoreInventories = make(map[string]domain.Inventory, len(p.Inventories))
		}
		product.StoreInventories[inv.ID] = *inv.toDomain()
	}
	for _, child := range p.SetProducts {
		product.SetProducts = append(product.SetProducts, child.toDomain())
	}
	for _, child := range p.BundledProducts {
		product.BundledProducts = append(product.BundledProducts, domain.BundledProduct{
			Product:  child.Product.toDomain(),
			Quantity: child.Quantity,
		})
	}
	return product
}

func (p *productDTO) productType() domain.ProductType {
	switch {
	case p.Type.Set:
		return domain.ProductTypeSet
	case p.Type.Bundle:
		return domain.ProductTypeBundle
	default:
		return domain.ProductTypeItem
	}
}

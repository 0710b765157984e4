package domain

import "github.com/shopspring/decimal"

type ProductItem struct {
	ItemID      string          `json:"item_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	ShipmentID  ShipmentID      `json:"shipment_id"`
	InventoryID string          `json:"inventory_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// Basket mirrors the server-side cart aggregate. It is owned by the commerce
// API; this service only triggers server-side mutations and refetches, it
// never mutates a basket locally.
type Basket struct {
	ID           string        `json:"basket_id"`
	Shipments    []Shipment    `json:"shipments"`
	ProductItems []ProductItem `json:"product_items"`
}

// Shipment returns the shipment with the given id, or nil.
func (b *Basket) Shipment(id ShipmentID) *Shipment {
	if b == nil {
		return nil
	}
	for i := range b.Shipments {
		if b.Shipments[i].ID == id {
			return &b.Shipments[i]
		}
	}
	return nil
}

// Item returns the product item with the given id, or nil.
func (b *Basket) Item(itemID string) *ProductItem {
	if b == nil {
		return nil
	}
	for i := range b.ProductItems {
		if b.ProductItems[i].ItemID == itemID {
			return &b.ProductItems[i]
		}
	}
	return nil
}

// ItemsInShipment returns the product items currently assigned to the given
// shipment.
func (b *Basket) ItemsInShipment(id ShipmentID) []ProductItem {
	if b == nil {
		return nil
	}
	var items []ProductItem
	for _, item := range b.ProductItems {
		if item.ShipmentID == id {
			items = append(items, item)
		}
	}
	return items
}

// Subtotal sums the line item prices.
func (b *Basket) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if b == nil {
		return total
	}
	for _, item := range b.ProductItems {
		total = total.Add(item.Price)
	}
	return total
}

// ItemUpdate describes a basket item mutation reassigning the item to a
// shipment and optionally stamping a store inventory id.
type ItemUpdate struct {
	ItemID      string
	ProductID   string
	Quantity    int
	ShipmentID  ShipmentID
	InventoryID string
}

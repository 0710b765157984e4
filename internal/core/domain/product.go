package domain

type ProductType string

const (
	ProductTypeItem   ProductType = "item"
	ProductTypeSet    ProductType = "set"
	ProductTypeBundle ProductType = "bundle"
)

// BundledProduct is a child of a bundle with its per-bundle quantity.
type BundledProduct struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Product struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type ProductType `json:"type"`

	// Inventory is the product's global stock record. For sets it holds the
	// derived aggregate; nil when the aggregate cannot be computed.
	Inventory *Inventory `json:"inventory,omitempty"`

	// StoreInventories holds store-scoped stock records keyed by inventory
	// list id.
	StoreInventories map[string]Inventory `json:"store_inventories,omitempty"`

	SetProducts     []Product        `json:"set_products,omitempty"`
	BundledProducts []BundledProduct `json:"bundled_products,omitempty"`
}

// StoreInventory returns the stock record for the given inventory list id,
// or nil when the product carries none.
func (p *Product) StoreInventory(inventoryID string) *Inventory {
	if p == nil || inventoryID == "" {
		return nil
	}
	if inv, ok := p.StoreInventories[inventoryID]; ok {
		return &inv
	}
	return nil
}

package domain

// Inventory is a stock record for a product, either global or scoped to one
// store's inventory list.
type Inventory struct {
	ID         string `json:"id,omitempty"`
	StockLevel int    `json:"stock_level"`
	Orderable  bool   `json:"orderable"`

	// LowestStockLevelProductName names the bottleneck child when this
	// record is a derived aggregate for a product set.
	LowestStockLevelProductName string `json:"lowest_stock_level_product_name,omitempty"`
}

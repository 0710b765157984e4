package service

import "github.com/rl1809/multiship/internal/core/domain"

// EffectiveInventory derives the stock picture actually usable for an
// add-to-cart decision. Simple products pass through unchanged. For sets the
// aggregate inventory is the minimum stock level across children, computed
// separately for global and store-scoped records and tagged with the
// bottleneck child's name; if any child is missing inventory data the
// aggregate is left nil rather than guessed. For bundles only the per-child
// override substitution is applied; bundle capacity is evaluated per child by
// the caller.
//
// Pure function of its inputs; overrides are keyed by child product id and
// take precedence over the child's own inventory record.
func EffectiveInventory(product domain.Product, overrides map[string]domain.Inventory, store *domain.Store) domain.Product {
	switch product.Type {
	case domain.ProductTypeSet:
		children := make([]domain.Product, len(product.SetProducts))
		for i, child := range product.SetProducts {
			children[i] = applyInventoryOverride(child, overrides)
		}
		product.SetProducts = children

		product.Inventory = minChildInventory(children, func(c *domain.Product) *domain.Inventory {
			return c.Inventory
		})

		if store != nil && store.InventoryID != "" {
			storeAggregate := minChildInventory(children, func(c *domain.Product) *domain.Inventory {
				return c.StoreInventory(store.InventoryID)
			})
			if storeAggregate != nil {
				// fresh map; the caller's map must stay untouched
				inventories := make(map[string]domain.Inventory, len(product.StoreInventories)+1)
				for id, inv := range product.StoreInventories {
					inventories[id] = inv
				}
				storeAggregate.ID = store.InventoryID
				inventories[store.InventoryID] = *storeAggregate
				product.StoreInventories = inventories
			}
		}

	case domain.ProductTypeBundle:
		children := make([]domain.BundledProduct, len(product.BundledProducts))
		for i, child := range product.BundledProducts {
			child.Product = applyInventoryOverride(child.Product, overrides)
			children[i] = child
		}
		product.BundledProducts = children
	}

	return product
}

func applyInventoryOverride(child domain.Product, overrides map[string]domain.Inventory) domain.Product {
	if inv, ok := overrides[child.ID]; ok {
		child.Inventory = &inv
	}
	return child
}

// minChildInventory computes the lowest-stock aggregate across children, or
// nil when any child lacks inventory data. The aggregate never exceeds any
// child's stock level, is orderable only if every child is, and carries the
// bottleneck child's inventory list id.
func minChildInventory(children []domain.Product, pick func(*domain.Product) *domain.Inventory) *domain.Inventory {
	if len(children) == 0 {
		return nil
	}

	var aggregate *domain.Inventory
	orderable := true
	for i := range children {
		inv := pick(&children[i])
		if inv == nil {
			return nil
		}
		orderable = orderable && inv.Orderable
		if aggregate == nil || inv.StockLevel < aggregate.StockLevel {
			aggregate = &domain.Inventory{
				ID:                          inv.ID,
				StockLevel:                  inv.StockLevel,
				LowestStockLevelProductName: children[i].Name,
			}
		}
	}
	aggregate.Orderable = orderable
	return aggregate
}

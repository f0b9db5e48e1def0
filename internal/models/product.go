package models

// Product is a catalog item. Price is the default per-unit price; clients may
// carry per-product overrides (Client.CustomPrices).
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Unit           string  `json:"unit"`            // "un", "kg", ...
	TargetQuantity int     `json:"target_quantity"` // configured daily production target
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// ProductIndex builds a lookup map by product id.
func ProductIndex(products []Product) map[string]Product {
	idx := make(map[string]Product, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

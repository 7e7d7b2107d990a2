package entity

// Product is a catalog entry. The console never mutates it.
type Product struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Description   string `json:"description,omitempty"`
	Price         Money  `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
	ImageURL      string `json:"image_url,omitempty"`
}

type StockLevel string

const (
	StockOut StockLevel = "out-of-stock"
	StockLow StockLevel = "low"
	StockIn  StockLevel = "in-stock"
)

// LowStockThreshold is the highest quantity still reported as low stock.
const LowStockThreshold = 5

func (p Product) StockLevel() StockLevel {
	switch {
	case p.StockQuantity <= 0:
		return StockOut
	case p.StockQuantity <= LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

func (p Product) InStock() bool { return p.StockQuantity > 0 }

// ProductIndex maps product ids to products.
type ProductIndex map[int]Product

func IndexProducts(products []Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

package model

import "time"

// Product is the stock-relevant projection of a catalog entry.
//
// StockQuantity is nullable: nil means the product is not stock-tracked and
// is always treated as available. A tracked quantity never goes below zero.
type Product struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Price         int64     `json:"price" db:"price"`
	SalePrice     *int64    `json:"salePrice,omitempty" db:"sale_price"`
	Category      string    `json:"category,omitempty" db:"category"`
	Image         string    `json:"image,omitempty" db:"image"`
	StockQuantity *int      `json:"stockQuantity" db:"stock_quantity"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// StockCheckItem is a single line of a batch availability check.
type StockCheckItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// StockCheckResult is the per-item outcome of an availability check.
type StockCheckResult struct {
	ProductID string `json:"productId"`
	Available bool   `json:"available"`
	Stock     int    `json:"stock"`
}

// StockCheckRequest is the payload for POST /api/stock/check.
type StockCheckRequest struct {
	Items []StockCheckItem `json:"items"`
}

// StockCheckResponse is the batch availability response.
type StockCheckResponse struct {
	AllAvailable bool               `json:"allAvailable"`
	Items        []StockCheckResult `json:"items"`
}

// StockAdjustOp selects the admin stock mutation to apply.
type StockAdjustOp string

// Stock adjustment operations.
const (
	StockOpIncrement StockAdjustOp = "increment"
	StockOpDecrement StockAdjustOp = "decrement"
	StockOpSet       StockAdjustOp = "set"
)

// StockAdjustRequest is the payload for PATCH /api/stock/{productId}.
type StockAdjustRequest struct {
	Op       StockAdjustOp `json:"op"`
	Quantity int           `json:"quantity"`
}

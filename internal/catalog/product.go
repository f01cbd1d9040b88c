package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
)

// Product is a read-only catalog entry.
type Product struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Category      enums.ProductCategory `json:"category"`
	Price         decimal.Decimal       `json:"price"`
	StockQuantity int                   `json:"stock_quantity"`
	Brand         string                `json:"brand"`
	AgeRange      string                `json:"age_range"`
	ImageURL      string                `json:"image_url"`
	CreatedAt     time.Time             `json:"created_at"`
}

// InStock reports whether any units remain.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// Filter narrows and orders a catalog listing.
type Filter struct {
	// Category limits results to one category. Empty matches every category.
	Category enums.ProductCategory
	// Search is matched case-insensitively against name, description and brand.
	Search string
	Sort   enums.ProductSort
}

package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/catalog"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
)

// Snapshot is the product as it looked when it entered the cart.
type Snapshot struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Price    decimal.Decimal       `json:"price"`
	ImageURL string                `json:"image_url"`
	Brand    string                `json:"brand"`
	Category enums.ProductCategory `json:"category"`
}

func snapshotOf(p catalog.Product) Snapshot {
	return Snapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Brand:    p.Brand,
		Category: p.Category,
	}
}

// Item is one cart line.
type Item struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	Product   Snapshot  `json:"product"`
}

// Subtotal is the snapshot price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// sanitize drops lines that could not have been written by this package:
// non-positive quantities and repeated products.
func sanitize(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.ID == "" {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		out = append(out, item)
	}
	return out
}

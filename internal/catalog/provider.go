package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/pagination"
)

// Page is one slice of a query result.
type Page struct {
	Products   []Product
	Total      int
	NextCursor string
}

// Provider serves an immutable product list.
type Provider struct {
	products []Product
	byID     map[string]int
}

// NewProvider indexes products, rejecting duplicate ids.
func NewProvider(products []Product) (*Provider, error) {
	byID := make(map[string]int, len(products))
	stored := make([]Product, len(products))
	for i, p := range products {
		if _, dup := byID[p.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product id %q", p.ID))
		}
		byID[p.ID] = i
		stored[i] = p
	}
	return &Provider{products: stored, byID: byID}, nil
}

// List returns every product in seed order.
func (p *Provider) List() []Product {
	out := make([]Product, len(p.products))
	copy(out, p.products)
	return out
}

// Get looks up a product by id.
func (p *Provider) Get(id string) (Product, bool) {
	idx, ok := p.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, false
	}
	return p.products[idx], true
}

// Lookup is Get with a NotFound error.
func (p *Provider) Lookup(id string) (Product, error) {
	product, ok := p.Get(id)
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q not found", id))
	}
	return product, nil
}

// Featured returns up to n products for the home page.
func (p *Provider) Featured(n int) []Product {
	if n <= 0 {
		return []Product{}
	}
	if n > len(p.products) {
		n = len(p.products)
	}
	out := make([]Product, n)
	copy(out, p.products[:n])
	return out
}

// Categories lists the filter options, "All" first.
func (p *Provider) Categories() []string {
	out := []string{enums.ProductCategoryAll}
	for _, c := range enums.ProductCategories() {
		out = append(out, c.String())
	}
	return out
}

// Query filters and sorts the catalog.
func (p *Provider) Query(f Filter) []Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Product, 0, len(p.products))
	for _, product := range p.products {
		if f.Category != "" && product.Category != f.Category {
			continue
		}
		if search != "" && !matches(product, search) {
			continue
		}
		out = append(out, product)
	}

	switch f.Sort {
	case enums.ProductSortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.ProductSortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case enums.ProductSortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

// QueryPage runs Query and returns the page selected by params.
func (p *Provider) QueryPage(f Filter, params pagination.Params) (Page, error) {
	all := p.Query(f)
	products, next, err := pagination.Slice(all, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid page cursor")
	}
	return Page{Products: products, Total: len(all), NextCursor: next}, nil
}

func matches(p Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle)
}

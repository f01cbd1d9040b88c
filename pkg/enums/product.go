package enums

import (
	"fmt"
	"strings"
)

// ProductCategory represents the toy categories the catalog is organised by.
type ProductCategory string

const (
	ProductCategoryActionFigures ProductCategory = "Action Figures"
	ProductCategoryDolls         ProductCategory = "Dolls & Playsets"
	ProductCategoryEducational   ProductCategory = "Educational"
	ProductCategoryVehicles      ProductCategory = "Vehicles"
	ProductCategoryArtsCrafts    ProductCategory = "Arts & Crafts"
	ProductCategoryPlush         ProductCategory = "Plush Toys"
)

// ProductCategoryAll is the filter value that matches every category.
const ProductCategoryAll = "All"

var validProductCategories = []ProductCategory{
	ProductCategoryActionFigures,
	ProductCategoryDolls,
	ProductCategoryEducational,
	ProductCategoryVehicles,
	ProductCategoryArtsCrafts,
	ProductCategoryPlush,
}

// ProductCategories returns the canonical categories in display order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// Slug returns a URL/CLI friendly form, e.g. "arts-crafts".
func (c ProductCategory) Slug() string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(string(c)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory accepts either the display name or the slug, case-insensitively.
func ParseProductCategory(value string) (ProductCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProductCategories {
		if strings.EqualFold(string(candidate), trimmed) || candidate.Slug() == strings.ToLower(trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductSort enumerates the catalog orderings offered on the products page.
type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortPriceLow  ProductSort = "price-low"
	ProductSortPriceHigh ProductSort = "price-high"
	ProductSortNewest    ProductSort = "newest"
)

var validProductSorts = []ProductSort{
	ProductSortName,
	ProductSortPriceLow,
	ProductSortPriceHigh,
	ProductSortNewest,
}

// String implements fmt.Stringer.
func (s ProductSort) String() string {
	return string(s)
}

// Label is the human readable option label.
func (s ProductSort) Label() string {
	switch s {
	case ProductSortPriceLow:
		return "Price: Low to High"
	case ProductSortPriceHigh:
		return "Price: High to Low"
	case ProductSortNewest:
		return "Newest First"
	default:
		return "Name"
	}
}

// IsValid reports whether the value is a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort. Empty input means name order.
func ParseProductSort(value string) (ProductSort, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ProductSortName, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}

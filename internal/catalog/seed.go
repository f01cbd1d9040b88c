package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var embeddedSeed []byte

type seedFile struct {
	Products []seedProduct `yaml:"products" validate:"dive"`
}

type seedProduct struct {
	ID            string `yaml:"id" validate:"required"`
	Name          string `yaml:"name" validate:"required"`
	Description   string `yaml:"description"`
	Category      string `yaml:"category" validate:"required"`
	Price         string `yaml:"price" validate:"required"`
	StockQuantity int    `yaml:"stock_quantity" validate:"gte=0"`
	Brand         string `yaml:"brand"`
	AgeRange      string `yaml:"age_range"`
	ImageURL      string `yaml:"image_url" validate:"omitempty,url"`
	CreatedAt     string `yaml:"created_at" validate:"required"`
}

var seedValidator = validator.New()

// Load reads the catalog from path, or from the embedded seed when path is empty.
func Load(path string) (*Provider, error) {
	raw := embeddedSeed
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read catalog file")
		}
		raw = data
	}
	products, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return NewProvider(products)
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) ([]Product, error) {
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog")
	}
	if err := seedValidator.Struct(doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog")
	}

	products := make([]Product, 0, len(doc.Products))
	for _, rec := range doc.Products {
		product, err := rec.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (r seedProduct) toProduct() (Product, error) {
	category, err := enums.ParseProductCategory(r.Category)
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("product %s", r.ID))
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("product %s price", r.ID))
	}
	if price.IsNegative() {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s price must be non-negative", r.ID))
	}
	createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("product %s created_at", r.ID))
	}
	return Product{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Category:      category,
		Price:         price,
		StockQuantity: r.StockQuantity,
		Brand:         r.Brand,
		AgeRange:      r.AgeRange,
		ImageURL:      r.ImageURL,
		CreatedAt:     createdAt.UTC(),
	}, nil
}

// Package catalog defines the read-only product catalog contract consumed by
// the cart core. The catalog itself is an external collaborator; only the
// lookup interface and the priced entities live here.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a product id does not resolve.
	ErrProductNotFound = errors.New("product not found")
	// ErrVariantNotFound is returned when a variant selector does not resolve.
	ErrVariantNotFound = errors.New("variant not found")
)

// VariantKind distinguishes the supported variant dimensions.
type VariantKind string

const (
	VariantColor VariantKind = "color"
	VariantSize  VariantKind = "size"
)

// Product is a catalog item with a non-negative base price.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string
}

// Variant is a priced attribute selection (a color or a size) that adds to a
// line item's price. Variants are looked up by kind plus human-readable name.
type Variant struct {
	ID    string
	Kind  VariantKind
	Name  string
	Price decimal.Decimal
}

// Repository defines read operations against the catalog.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	// GetVariant resolves a variant by kind and human-readable name
	// (e.g. size "M", color "Navy").
	GetVariant(ctx context.Context, kind VariantKind, name string) (*Variant, error)
}

package memory

import (
	"context"
	"slices"

	"github.com/xenking/optic-storefront/internal/domain/catalog"
)

var _ catalog.Source = (*Catalog)(nil)

// Catalog is a fixed product collection.
type Catalog struct {
	products []catalog.Product
}

// NewCatalog returns a Catalog serving products in the given order.
func NewCatalog(products []catalog.Product) *Catalog {
	return &Catalog{products: slices.Clone(products)}
}

// FetchAll implements catalog.Source.
func (c *Catalog) FetchAll(context.Context) ([]catalog.Product, error) {
	return slices.Clone(c.products), nil
}

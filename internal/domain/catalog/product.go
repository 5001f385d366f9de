// Package catalog derives the displayed product list from filter state.
package catalog

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Gender is the target audience of a product.
type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderKids   Gender = "kids"
	GenderUnisex Gender = "unisex"
)

// Badge is a merchandising tag used for display emphasis.
type Badge string

const (
	BadgeNone       Badge = ""
	BadgeNew        Badge = "new"
	BadgeBestseller Badge = "bestseller"
	BadgeLimited    Badge = "limited"
)

// Category slugs known to the storefront.
const (
	CategoryFrames     = "frames"
	CategoryLenses     = "lenses"
	CategorySunglasses = "sunglasses"
)

// Product is immutable catalog reference data.
type Product struct {
	ID              string
	Name            string
	Price           money.Amount
	MRP             money.Amount
	DiscountPercent int
	Category        string
	Gender          Gender
	Shape           string
	Material        string
	Colors          []string
	Rating          float64
	ReviewCount     int
	Images          []string
	Badge           Badge
}

// PrimaryImage returns the first image reference, or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Source provides the visible product collection. Implementations filter
// out inactive products before returning.
type Source interface {
	FetchAll(ctx context.Context) ([]Product, error)
}

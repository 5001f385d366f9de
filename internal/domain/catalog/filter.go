package catalog

import (
	"slices"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

// PageSize is the number of products on one catalog page.
const PageSize = 6

// DefaultMaxPrice is the price ceiling used when none is selected.
var DefaultMaxPrice = money.FromUnits(10000)

// Sort selects the result ordering.
type Sort string

const (
	SortFeatured  Sort = "featured"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
	SortRating    Sort = "rating"
)

// ParseSort returns the Sort for s, falling back to SortFeatured.
func ParseSort(s string) Sort {
	switch v := Sort(s); v {
	case SortPriceAsc, SortPriceDesc, SortRating:
		return v
	default:
		return SortFeatured
	}
}

// Filter is the transient catalog selection of one browsing session.
//
// Mutators return a copy; every mutator except WithPage resets Page to 1.
type Filter struct {
	Category string
	Genders  []Gender
	Shapes   []string
	Colors   []string
	MaxPrice money.Amount
	Sort     Sort
	Page     int
}

// NewFilter returns the initial filter: frames, no facets, featured, page 1.
func NewFilter() Filter {
	return Filter{
		Category: CategoryFrames,
		MaxPrice: DefaultMaxPrice,
		Sort:     SortFeatured,
		Page:     1,
	}
}

func (f Filter) WithCategory(category string) Filter {
	f.Category = category
	f.Page = 1
	return f
}

func (f Filter) ToggleGender(g Gender) Filter {
	f.Genders = toggle(f.Genders, g)
	f.Page = 1
	return f
}

func (f Filter) ToggleShape(shape string) Filter {
	f.Shapes = toggle(f.Shapes, shape)
	f.Page = 1
	return f
}

func (f Filter) ToggleColor(color string) Filter {
	f.Colors = toggle(f.Colors, color)
	f.Page = 1
	return f
}

func (f Filter) WithMaxPrice(max money.Amount) Filter {
	f.MaxPrice = max
	f.Page = 1
	return f
}

func (f Filter) WithSort(s Sort) Filter {
	f.Sort = s
	f.Page = 1
	return f
}

func (f Filter) WithPage(page int) Filter {
	f.Page = page
	return f
}

// Clear drops gender, shape, color and price selections. The category and
// sort order are kept.
func (f Filter) Clear() Filter {
	f.Genders = nil
	f.Shapes = nil
	f.Colors = nil
	f.MaxPrice = DefaultMaxPrice
	f.Page = 1
	return f
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

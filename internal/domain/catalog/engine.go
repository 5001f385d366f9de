package catalog

import (
	"cmp"
	"slices"
)

// Page is one page of the filtered and sorted catalog.
type Page struct {
	Items      []Product
	Total      int
	Page       int
	TotalPages int
}

// Apply filters, sorts and paginates products. The input slice is never
// reordered.
func Apply(products []Product, f Filter) Page {
	sorted := Sorted(Match(products, f), f.Sort)
	return Paginate(sorted, f.Page)
}

// Match returns the products passing every facet of f, in input order.
func Match(products []Product, f Filter) []Product {
	category := f.Category
	if category == "" {
		category = CategoryFrames
	}
	maxPrice := f.MaxPrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category != category {
			continue
		}
		if len(f.Genders) > 0 && p.Gender != GenderUnisex && !slices.Contains(f.Genders, p.Gender) {
			continue
		}
		if len(f.Shapes) > 0 && !slices.Contains(f.Shapes, p.Shape) {
			continue
		}
		if len(f.Colors) > 0 && !intersects(p.Colors, f.Colors) {
			continue
		}
		if p.Price > maxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sorted returns a new slice ordered by s. Ties keep their input order.
func Sorted(products []Product, s Sort) []Product {
	out := slices.Clone(products)
	switch s {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortRating:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(b.Rating, a.Rating) })
	}
	return out
}

// Paginate slices products into the 1-based page. Pages past the end are
// empty.
func Paginate(products []Product, page int) Page {
	if page < 1 {
		page = 1
	}
	total := len(products)
	res := Page{
		Total:      total,
		Page:       page,
		TotalPages: (total + PageSize - 1) / PageSize,
	}
	from := (page - 1) * PageSize
	if from >= total {
		res.Items = []Product{}
		return res
	}
	res.Items = products[from:min(from+PageSize, total)]
	return res
}

// Featured returns up to limit products carrying badge, highest rated first.
func Featured(products []Product, badge Badge, limit int) []Product {
	var out []Product
	for _, p := range products {
		if p.Badge == badge {
			out = append(out, p)
		}
	}
	out = Sorted(out, SortRating)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}

package handler

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-faster/jx"

	"github.com/xenking/optic-storefront/internal/domain/cart"
	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/money"
)

const (
	defaultFeaturedLimit = 4
	maxFeaturedLimit     = 24
)

// ListProducts applies the query string filter to the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}
	page, err := h.Catalog.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) { h.encodeProducts(e, page.Items) })
			e.Field("total", func(e *jx.Encoder) { e.Int(page.Total) })
			e.Field("page", func(e *jx.Encoder) { e.Int(page.Page) })
			e.Field("totalPages", func(e *jx.Encoder) { e.Int(page.TotalPages) })
			e.Field("pageSize", func(e *jx.Encoder) { e.Int(catalog.PageSize) })
		})
	})
}

// FeaturedProducts lists products carrying a badge, best rated first.
func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	badge := catalog.Badge(q.Get("badge"))
	if badge == catalog.BadgeNone {
		badge = catalog.BadgeBestseller
	}
	limit := defaultFeaturedLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(w, r, badRequest("limit must be a positive integer"))
			return
		}
		limit = min(n, maxFeaturedLimit)
	}
	list, err := h.Catalog.Featured(r.Context(), badge, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeProducts(e, list) })
}

// GetProduct returns one product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeProduct(e, *p) })
}

// SearchProducts returns quick search suggestions for q.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := catalog.DefaultSearchLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(w, r, badRequest("limit must be a positive integer"))
			return
		}
		limit = min(n, maxFeaturedLimit)
	}
	list, err := h.Catalog.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeProducts(e, list) })
}

// ListCategories returns the visible categories in display order.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.CatalogAdmin.Categories(r.Context(), false)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCategories(e, list) })
}

// LensOptions returns the lens type and add-on price tables.
func (h *Handler) LensOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("lensTypes", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, l := range cart.LensTypes {
						e.Obj(func(e *jx.Encoder) {
							e.Field("id", func(e *jx.Encoder) { e.Str(l.ID) })
							e.Field("label", func(e *jx.Encoder) { e.Str(l.Label) })
							e.Field("description", func(e *jx.Encoder) { e.Str(l.Description) })
							e.Field("price", func(e *jx.Encoder) { encodeAmount(e, l.Price) })
						})
					}
				})
			})
			e.Field("addons", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, a := range cart.Addons {
						e.Obj(func(e *jx.Encoder) {
							e.Field("id", func(e *jx.Encoder) { e.Str(a.ID) })
							e.Field("label", func(e *jx.Encoder) { e.Str(a.Label) })
							e.Field("price", func(e *jx.Encoder) { encodeAmount(e, a.Price) })
						})
					}
				})
			})
		})
	})
}

// parseFilter replays the query parameters onto the initial filter through
// its mutators. The page is applied last so any facet resets it to 1 unless
// given explicitly. Multi-valued facets accept repeated keys and
// comma-separated lists.
func parseFilter(q url.Values) (catalog.Filter, error) {
	f := catalog.NewFilter()
	if c := q.Get("category"); c != "" {
		f = f.WithCategory(c)
	}
	for _, g := range listParam(q, "gender") {
		f = f.ToggleGender(catalog.Gender(g))
	}
	for _, s := range listParam(q, "shape") {
		f = f.ToggleShape(s)
	}
	for _, c := range listParam(q, "color") {
		f = f.ToggleColor(c)
	}
	if v := q.Get("maxPrice"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 || n > money.MaxUnits.IntPart() {
			return f, badRequest("maxPrice must be a non-negative integer")
		}
		f = f.WithMaxPrice(money.FromUnits(n))
	}
	if v := q.Get("sort"); v != "" {
		f = f.WithSort(catalog.ParseSort(v))
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, badRequest("page must be an integer")
		}
		f = f.WithPage(n)
	}
	return f, nil
}

// listParam returns the distinct values of key in first-seen order.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" || strings.Contains(path, "://") {
		return path
	}
	return h.imageBaseURL + "/" + strings.TrimPrefix(path, "/")
}

func (h *Handler) encodeProducts(e *jx.Encoder, list []catalog.Product) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range list {
			h.encodeProduct(e, p)
		}
	})
}

func (h *Handler) encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.Obj(func(e *jx.Encoder) { productFields(e, p, h.imageURL) })
}

// productFields writes the fields of p, mapping image paths through image.
func productFields(e *jx.Encoder, p catalog.Product, image func(string) string) {
	e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
	e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
	e.Field("price", func(e *jx.Encoder) { encodeAmount(e, p.Price) })
	e.Field("mrp", func(e *jx.Encoder) { encodeAmount(e, p.MRP) })
	e.Field("discountPercent", func(e *jx.Encoder) { e.Int(p.DiscountPercent) })
	e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
	e.Field("gender", func(e *jx.Encoder) { e.Str(string(p.Gender)) })
	e.Field("shape", func(e *jx.Encoder) { e.Str(p.Shape) })
	e.Field("material", func(e *jx.Encoder) { e.Str(p.Material) })
	e.Field("colors", func(e *jx.Encoder) { encodeStrings(e, p.Colors) })
	e.Field("rating", func(e *jx.Encoder) { e.Float64(p.Rating) })
	e.Field("reviewCount", func(e *jx.Encoder) { e.Int(p.ReviewCount) })
	e.Field("images", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, img := range p.Images {
				e.Str(image(img))
			}
		})
	})
	if p.Badge != catalog.BadgeNone {
		e.Field("badge", func(e *jx.Encoder) { e.Str(string(p.Badge)) })
	}
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/optic-storefront/internal/domain/catalog"
)

// AdminListProducts pages through every product, hidden ones included.
func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage, err := pageParams(q)
	if err != nil {
		fail(w, r, err)
		return
	}
	f := catalog.AdminFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Page:     page,
		PerPage:  perPage,
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			fail(w, r, badRequest("active must be true or false"))
			return
		}
		f.Active = &active
	}
	list, total, err := h.CatalogAdmin.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeListPage(e, total, page, func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range list {
					encodeListing(e, l)
				}
			})
		})
	})
}

// AdminGetProduct returns one product whether or not it is active.
func (h *Handler) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	l, err := h.CatalogAdmin.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeListing(e, *l) })
}

// AdminCreateProduct adds a product. New products are active unless the
// body says otherwise.
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	l := catalog.Listing{
		Product: catalog.Product{Gender: catalog.GenderUnisex},
		Active:  true,
	}
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		return decodeListingField(d, key, &l)
	}); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.CatalogAdmin.Create(r.Context(), &l); err != nil {
		fail(w, r, productWriteError(err))
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeListing(e, l) })
}

// AdminUpdateProduct applies the fields present in the body to a product.
// Sending only "active" toggles its storefront visibility.
func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var fields []func(l *catalog.Listing) error
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		if key == "id" {
			return d.Skip()
		}
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		// Malformed values fail before the product is loaded.
		var scratch catalog.Listing
		if err := decodeListingField(jx.DecodeBytes(raw), key, &scratch); err != nil {
			return err
		}
		fields = append(fields, func(l *catalog.Listing) error {
			return decodeListingField(jx.DecodeBytes(raw), key, l)
		})
		return nil
	}); err != nil {
		fail(w, r, err)
		return
	}
	l, err := h.CatalogAdmin.Update(r.Context(), r.PathValue("id"), func(l *catalog.Listing) error {
		for _, apply := range fields {
			if err := apply(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		fail(w, r, productWriteError(err))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeListing(e, *l) })
}

// AdminDeleteProduct removes a product.
func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogAdmin.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminListCategories returns every category, hidden ones included.
func (h *Handler) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.CatalogAdmin.Categories(r.Context(), true)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCategories(e, list) })
}

// AdminCreateCategory adds a category. It is active unless the body says
// otherwise.
func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	c := catalog.Category{Active: true}
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		return decodeCategoryField(d, key, &c)
	}); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.CatalogAdmin.CreateCategory(r.Context(), &c); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCategory(e, c) })
}

// AdminUpdateCategory applies the fields present in the body to a category.
func (h *Handler) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var edit catalog.Category
	seen := map[string]bool{}
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		seen[key] = true
		return decodeCategoryField(d, key, &edit)
	}); err != nil {
		fail(w, r, err)
		return
	}
	c, err := h.CatalogAdmin.UpdateCategory(r.Context(), r.PathValue("slug"), func(c *catalog.Category) error {
		if seen["name"] {
			c.Name = edit.Name
		}
		if seen["sortOrder"] {
			c.SortOrder = edit.SortOrder
		}
		if seen["active"] {
			c.Active = edit.Active
		}
		return nil
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCategory(e, *c) })
}

// AdminDeleteCategory removes a category without products.
func (h *Handler) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogAdmin.DeleteCategory(r.Context(), r.PathValue("slug")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// productWriteError reports an unknown category on a product as a client
// error rather than a missing resource.
func productWriteError(err error) error {
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		return badRequest("unknown category")
	}
	return err
}

func decodeListingField(d *jx.Decoder, key string, l *catalog.Listing) error {
	var err error
	switch key {
	case "active":
		l.Active, err = d.Bool()
	case "price":
		l.Price, err = decodeAmount(d, "price")
	case "mrp":
		l.MRP, err = decodeAmount(d, "mrp")
	default:
		err = l.DecodeField(d, key)
	}
	return err
}

func decodeCategoryField(d *jx.Decoder, key string, c *catalog.Category) error {
	var err error
	switch key {
	case "slug":
		c.Slug, err = d.Str()
	case "name":
		c.Name, err = d.Str()
	case "sortOrder":
		c.SortOrder, err = d.Int()
	case "active":
		c.Active, err = d.Bool()
	default:
		err = d.Skip()
	}
	return err
}

func encodeListing(e *jx.Encoder, l catalog.Listing) {
	e.Obj(func(e *jx.Encoder) {
		productFields(e, l.Product, func(s string) string { return s })
		e.Field("active", func(e *jx.Encoder) { e.Bool(l.Active) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, l.CreatedAt) })
	})
}

func encodeCategories(e *jx.Encoder, list []catalog.Category) {
	e.Arr(func(e *jx.Encoder) {
		for _, c := range list {
			encodeCategory(e, c)
		}
	})
}

func encodeCategory(e *jx.Encoder, c catalog.Category) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("slug", func(e *jx.Encoder) { e.Str(c.Slug) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("sortOrder", func(e *jx.Encoder) { e.Int(c.SortOrder) })
		e.Field("active", func(e *jx.Encoder) { e.Bool(c.Active) })
	})
}

package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/optic-storefront/internal/domain/wishlist"
	"github.com/xenking/optic-storefront/internal/storage/session"
)

func (h *Handler) loadWishlist(r *http.Request, sid string) *wishlist.Wishlist {
	return wishlist.Load(r.Context(), session.WishlistStore(h.Sessions, sid))
}

// GetWishlist returns the saved product IDs of the session.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request, sid string) {
	wl := h.loadWishlist(r, sid)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("productIds", func(e *jx.Encoder) { encodeStrings(e, wl.IDs()) })
			e.Field("count", func(e *jx.Encoder) { e.Int(wl.Count()) })
		})
	})
}

// ToggleWishlist saves or removes a product.
func (h *Handler) ToggleWishlist(w http.ResponseWriter, r *http.Request, sid string) {
	id := r.PathValue("productId")
	wl := h.loadWishlist(r, sid)
	if !wl.Has(id) {
		if _, err := h.Catalog.Get(r.Context(), id); err != nil {
			fail(w, r, err)
			return
		}
	}
	on, err := wl.Toggle(r.Context(), id)
	persisted(r, wishlist.StorageKey, err)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("productId", func(e *jx.Encoder) { e.Str(id) })
			e.Field("saved", func(e *jx.Encoder) { e.Bool(on) })
			e.Field("count", func(e *jx.Encoder) { e.Int(wl.Count()) })
		})
	})
}

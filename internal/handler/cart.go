package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/optic-storefront/internal/domain/cart"
	"github.com/xenking/optic-storefront/internal/storage/session"
	"github.com/xenking/optic-storefront/pkg/httpmiddleware"
)

func (h *Handler) loadCart(r *http.Request, sid string) *cart.Cart {
	return cart.Load(r.Context(), session.CartStore(h.Sessions, sid))
}

// persisted logs a failed write-through. The response still carries the
// mutated state.
func persisted(r *http.Request, what string, err error) {
	if err != nil {
		zctx.From(r.Context()).Warn("Session state not persisted", zap.String("key", what), zap.Error(err))
	}
}

// GetCart returns the session cart with totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, sid string) {
	writeCart(w, http.StatusOK, h.loadCart(r, sid))
}

// AddCartItem adds a configured product to the cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request, sid string) {
	var (
		productID string
		lensType  string
		addons    []string
		qty       = 1
	)
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "productId":
			productID, err = d.Str()
		case "lensType":
			lensType, err = d.Str()
		case "addons":
			addons, err = decodeStrings(d)
		case "qty":
			qty, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	if productID == "" {
		fail(w, r, badRequest("productId is required"))
		return
	}
	p, err := h.Catalog.Get(r.Context(), productID)
	if err != nil {
		fail(w, r, err)
		return
	}

	c := h.loadCart(r, sid)
	persisted(r, cart.StorageKey, c.AddItem(r.Context(), *p, cart.ResolveConfig(lensType, addons, qty)))
	h.countCart(r, "add")
	writeCart(w, http.StatusCreated, c)
}

// UpdateCartItem changes the quantity and/or add-ons of a line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request, sid string) {
	var (
		qty       *int
		addonIDs  []string
		setAddons bool
	)
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "qty":
			n, err := d.Int()
			qty = &n
			return err
		case "addons":
			ids, err := decodeStrings(d)
			addonIDs, setAddons = ids, true
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		fail(w, r, err)
		return
	}

	key := r.PathValue("key")
	c := h.loadCart(r, sid)
	if _, ok := c.Get(key); !ok {
		httpmiddleware.WriteError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	if qty != nil {
		persisted(r, cart.StorageKey, c.UpdateQty(r.Context(), key, *qty))
	}
	if setAddons {
		refs, price := cart.ResolveAddons(addonIDs)
		persisted(r, cart.StorageKey, c.UpdateAddons(r.Context(), key, refs, price))
	}
	h.countCart(r, "update")
	writeCart(w, http.StatusOK, c)
}

// RemoveCartItem deletes a line. Unknown keys are ignored.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request, sid string) {
	c := h.loadCart(r, sid)
	persisted(r, cart.StorageKey, c.RemoveItem(r.Context(), r.PathValue("key")))
	h.countCart(r, "remove")
	writeCart(w, http.StatusOK, c)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, sid string) {
	c := h.loadCart(r, sid)
	persisted(r, cart.StorageKey, c.Clear(r.Context()))
	h.countCart(r, "clear")
	writeCart(w, http.StatusOK, c)
}

func writeCart(w http.ResponseWriter, status int, c *cart.Cart) {
	items, totals := c.Snapshot(), c.Totals()
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) { encodeLineItems(e, items) })
			e.Field("itemCount", func(e *jx.Encoder) { e.Int(totals.ItemCount) })
			e.Field("subtotal", func(e *jx.Encoder) { encodeAmount(e, totals.Subtotal) })
			e.Field("delivery", func(e *jx.Encoder) { encodeAmount(e, totals.Delivery) })
			e.Field("total", func(e *jx.Encoder) { encodeAmount(e, totals.Total) })
			e.Field("freeDelivery", func(e *jx.Encoder) { e.Bool(totals.FreeDelivery) })
			e.Field("remainingForFreeDelivery", func(e *jx.Encoder) { encodeAmount(e, totals.RemainingForFree) })
		})
	})
}

func encodeLineItems(e *jx.Encoder, items []cart.LineItem) {
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			e.Obj(func(e *jx.Encoder) {
				e.Field("key", func(e *jx.Encoder) { e.Str(it.Key) })
				e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
				e.Field("unitPrice", func(e *jx.Encoder) { encodeAmount(e, it.UnitPrice) })
				e.Field("lensType", func(e *jx.Encoder) { e.Str(it.LensType) })
				e.Field("lensTypePrice", func(e *jx.Encoder) { encodeAmount(e, it.LensTypePrice) })
				e.Field("addons", func(e *jx.Encoder) {
					e.Arr(func(e *jx.Encoder) {
						for _, a := range it.Addons {
							e.Obj(func(e *jx.Encoder) {
								e.Field("id", func(e *jx.Encoder) { e.Str(a.ID) })
								e.Field("label", func(e *jx.Encoder) { e.Str(a.Label) })
							})
						}
					})
				})
				e.Field("addonsPrice", func(e *jx.Encoder) { encodeAmount(e, it.AddonsPrice) })
				e.Field("image", func(e *jx.Encoder) { e.Str(it.Image) })
				e.Field("qty", func(e *jx.Encoder) { e.Int(it.Qty) })
				e.Field("lineTotal", func(e *jx.Encoder) { encodeAmount(e, it.LineTotal()) })
			})
		}
	})
}

package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/optic-storefront/internal/domain/order"
)

// PlaceOrder checks out the session cart and empties it on success.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request, sid string) {
	req := order.PlaceOrderRequest{SessionID: sid}
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "promoCode":
			req.PromoCode, _, err = decodeOptStr(d)
		case "shipping":
			req.Shipping, err = decodeShipping(d)
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}

	c := h.loadCart(r, sid)
	req.Items = c.Snapshot()
	o, err := h.Orders.PlaceOrder(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.ordersPlaced.Add(r.Context(), 1)
	if err := c.Clear(r.Context()); err != nil {
		zctx.From(r.Context()).Warn("Cart not cleared after order",
			zap.String("order_id", o.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

// ListOrders returns the session's orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request, sid string) {
	list, err := h.Orders.ListBySession(r.Context(), sid)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, list) })
}

func decodeShipping(d *jx.Decoder) (order.Shipping, error) {
	var s order.Shipping
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) (err error) {
		switch string(key) {
		case "name":
			s.Name, err = d.Str()
		case "phone":
			s.Phone, err = d.Str()
		case "address":
			s.Address, err = d.Str()
		case "city":
			s.City, err = d.Str()
		case "pincode":
			s.Pincode, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return s, err
}

func encodeOrders(e *jx.Encoder, list []order.Order) {
	e.Arr(func(e *jx.Encoder) {
		for _, o := range list {
			encodeOrder(e, o)
		}
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("items", func(e *jx.Encoder) { encodeLineItems(e, o.Items) })
		e.Field("subtotal", func(e *jx.Encoder) { encodeAmount(e, o.Subtotal) })
		e.Field("deliveryCharge", func(e *jx.Encoder) { encodeAmount(e, o.DeliveryCharge) })
		e.Field("discount", func(e *jx.Encoder) { encodeAmount(e, o.Discount) })
		e.Field("total", func(e *jx.Encoder) { encodeAmount(e, o.Total) })
		if o.PromoCode != "" {
			e.Field("promoCode", func(e *jx.Encoder) { e.Str(o.PromoCode) })
		}
		e.Field("shipping", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(o.Shipping.Name) })
				e.Field("phone", func(e *jx.Encoder) { e.Str(o.Shipping.Phone) })
				e.Field("address", func(e *jx.Encoder) { e.Str(o.Shipping.Address) })
				e.Field("city", func(e *jx.Encoder) { e.Str(o.Shipping.City) })
				e.Field("pincode", func(e *jx.Encoder) { e.Str(o.Shipping.Pincode) })
			})
		})
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("paymentStatus", func(e *jx.Encoder) { e.Str(string(o.PaymentStatus)) })
		if o.PaymentRef != "" {
			e.Field("paymentRef", func(e *jx.Encoder) { e.Str(o.PaymentRef) })
		}
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, o.CreatedAt) })
	})
}

package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/appointment"
	"github.com/xenking/optic-storefront/internal/domain/order"
	"github.com/xenking/optic-storefront/internal/domain/promo"
)

// ListPromoCodes returns every promo code.
func (h *Handler) ListPromoCodes(w http.ResponseWriter, r *http.Request) {
	list, err := h.PromoAdmin.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range list {
				encodePromoCode(e, c)
			}
		})
	})
}

// CreatePromoCode stores a new promo code. Codes are active unless the
// request says otherwise.
func (h *Handler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	c := promo.Code{Active: true}
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "code":
			c.Code, err = d.Str()
		case "discountType":
			var s string
			s, err = d.Str()
			c.DiscountType = promo.DiscountType(s)
		case "value":
			var n jx.Num
			if n, err = d.Num(); err == nil {
				c.Value, err = decimal.NewFromString(n.String())
			}
		case "minOrderValue":
			c.MinOrderValue, err = decodeAmount(d, "minOrderValue")
		case "maxUses":
			c.MaxUses, err = d.Int()
		case "expiresAt":
			var (
				s  string
				ok bool
			)
			if s, ok, err = decodeOptStr(d); err == nil && ok {
				var t time.Time
				if t, err = time.Parse(time.RFC3339, s); err != nil {
					return badRequest("expiresAt must be an RFC 3339 timestamp")
				}
				c.ExpiresAt = &t
			}
		case "active":
			c.Active, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	if err := c.Check(); err != nil {
		fail(w, r, badRequest(err.Error()))
		return
	}
	if err := h.PromoAdmin.Create(r.Context(), &c); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodePromoCode(e, c) })
}

// DeletePromoCode removes a promo code by ID.
func (h *Handler) DeletePromoCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", promo.ErrNotFound)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.PromoAdmin.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminListOrders pages through all orders.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage, err := pageParams(q)
	if err != nil {
		fail(w, r, err)
		return
	}
	f := order.ListFilter{
		Status:  order.Status(q.Get("status")),
		Search:  q.Get("search"),
		Page:    page,
		PerPage: perPage,
	}
	list, total, err := h.Orders.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeListPage(e, total, page, func(e *jx.Encoder) { encodeOrders(e, list) })
	})
}

// AdminUpdateOrder changes the status of an order or records a payment.
func (h *Handler) AdminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var (
		status  order.Status
		payment *order.Payment
	)
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "status":
			var s string
			s, err = d.Str()
			status = order.Status(s)
		case "payment":
			var p order.Payment
			p, err = decodePayment(d)
			payment = &p
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}

	id, err := pathID(r, "id", order.ErrNotFound)
	if err != nil {
		fail(w, r, err)
		return
	}
	var o *order.Order
	switch {
	case payment != nil:
		o, err = h.Orders.UpdatePayment(r.Context(), id, *payment)
	case status != "":
		o, err = h.Orders.UpdateStatus(r.Context(), id, status)
	default:
		err = badRequest("status or payment is required")
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

func decodePayment(d *jx.Decoder) (order.Payment, error) {
	var p order.Payment
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) (err error) {
		switch string(key) {
		case "providerOrderId":
			p.ProviderOrderID, err = d.Str()
		case "paymentId":
			p.PaymentID, err = d.Str()
		case "status":
			var s string
			s, err = d.Str()
			p.Status = order.PaymentStatus(s)
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil && !p.Status.Valid() {
		err = badRequest("unknown payment status")
	}
	return p, err
}

// AdminListAppointments pages through bookings, optionally for one date.
func (h *Handler) AdminListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage, err := pageParams(q)
	if err != nil {
		fail(w, r, err)
		return
	}
	f := appointment.ListFilter{
		Status:  appointment.Status(q.Get("status")),
		Page:    page,
		PerPage: perPage,
	}
	if v := q.Get("date"); v != "" {
		if f.Date, err = parseDate(v); err != nil {
			fail(w, r, err)
			return
		}
	}
	list, total, err := h.Appointments.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeListPage(e, total, page, func(e *jx.Encoder) { encodeAppointments(e, list) })
	})
}

// AdminUpdateAppointment sets status and staff notes of a booking.
func (h *Handler) AdminUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var (
		status appointment.Status
		notes  *string
	)
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "status":
			var s string
			s, err = d.Str()
			status = appointment.Status(s)
		case "adminNotes":
			var (
				s  string
				ok bool
			)
			if s, ok, err = decodeOptStr(d); ok {
				notes = &s
			}
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "id", appointment.ErrNotFound)
	if err != nil {
		fail(w, r, err)
		return
	}
	a, err := h.Appointments.UpdateStatus(r.Context(), id, status, notes)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeAppointment(e, *a) })
}

// AdminStats returns the dashboard counters.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.Orders.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("todayRevenue", func(e *jx.Encoder) { encodeAmount(e, s.TodayRevenue) })
			e.Field("monthRevenue", func(e *jx.Encoder) { encodeAmount(e, s.MonthRevenue) })
			e.Field("pendingOrders", func(e *jx.Encoder) { e.Int(s.PendingOrders) })
			e.Field("todayAppointments", func(e *jx.Encoder) { e.Int(s.TodayAppointments) })
		})
	})
}

// pageParams reads page and perPage. Zero values let services apply
// their defaults.
func pageParams(q url.Values) (page, perPage int, err error) {
	for _, p := range []struct {
		key string
		dst *int
	}{{"page", &page}, {"perPage", &perPage}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			return 0, 0, badRequest(p.key + " must be a positive integer")
		}
		*p.dst = n
	}
	return page, perPage, nil
}

func encodeListPage(e *jx.Encoder, total, page int, items func(e *jx.Encoder)) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", items)
		e.Field("total", func(e *jx.Encoder) { e.Int(total) })
		e.Field("page", func(e *jx.Encoder) { e.Int(max(page, 1)) })
	})
}

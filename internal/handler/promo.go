package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/optic-storefront/internal/domain/money"
	"github.com/xenking/optic-storefront/internal/domain/promo"
)

// ValidatePromo checks a code against an explicit subtotal or the
// session cart subtotal.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request, sid string) {
	var (
		code     string
		subtotal *money.Amount
	)
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			s, err := d.Str()
			code = s
			return err
		case "subtotal":
			a, err := decodeAmount(d, "subtotal")
			subtotal = &a
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		fail(w, r, err)
		return
	}
	if subtotal == nil {
		s := h.loadCart(r, sid).Subtotal()
		subtotal = &s
	}

	res := h.Promos.Validate(r.Context(), code, *subtotal)
	h.promoValidations.Add(r.Context(), 1, metric.WithAttributes(attribute.Bool("valid", res.Valid)))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePromoResult(e, res, *subtotal) })
}

func encodePromoResult(e *jx.Encoder, res promo.Result, subtotal money.Amount) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("valid", func(e *jx.Encoder) { e.Bool(res.Valid) })
		if !res.Valid {
			e.Field("message", func(e *jx.Encoder) { e.Str(res.Message) })
			return
		}
		e.Field("code", func(e *jx.Encoder) { e.Str(res.Promo.Code) })
		e.Field("discountType", func(e *jx.Encoder) { e.Str(string(res.Promo.DiscountType)) })
		e.Field("discount", func(e *jx.Encoder) { encodeAmount(e, res.DiscountAmount) })
		e.Field("subtotal", func(e *jx.Encoder) { encodeAmount(e, subtotal) })
	})
}

func encodePromoCode(e *jx.Encoder, c promo.Code) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		e.Field("discountType", func(e *jx.Encoder) { e.Str(string(c.DiscountType)) })
		e.Field("value", func(e *jx.Encoder) { e.Float64(c.Value.InexactFloat64()) })
		e.Field("minOrderValue", func(e *jx.Encoder) { encodeAmount(e, c.MinOrderValue) })
		e.Field("maxUses", func(e *jx.Encoder) { e.Int(c.MaxUses) })
		e.Field("usedCount", func(e *jx.Encoder) { e.Int(c.UsedCount) })
		e.Field("expiresAt", func(e *jx.Encoder) {
			if c.ExpiresAt == nil {
				e.Null()
				return
			}
			encodeTime(e, *c.ExpiresAt)
		})
		e.Field("active", func(e *jx.Encoder) { e.Bool(c.Active) })
		if !c.CreatedAt.IsZero() {
			e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, c.CreatedAt) })
		}
	})
}

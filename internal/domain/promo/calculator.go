package promo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// Result is the outcome of a validation. When Valid is false only Message
// is set.
type Result struct {
	Valid          bool
	Message        string
	DiscountAmount money.Amount
	Promo          *Code
}

func invalid(msg string) Result {
	return Result{Message: msg}
}

// Calculator validates codes read from a Store.
type Calculator struct {
	store Store
	now   func() time.Time
}

// NewCalculator creates a Calculator backed by store.
func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store, now: time.Now}
}

// Validate checks code against subtotal. The checks run in order and the
// first failure is returned: lookup, expiry, usage limit, minimum order.
// Usage is not recorded here.
func (c *Calculator) Validate(ctx context.Context, code string, subtotal money.Amount) Result {
	normalized := Normalize(code)
	if normalized == "" {
		return invalid(MsgInvalid)
	}

	p, err := c.store.FindActiveByCode(ctx, normalized)
	if err != nil || p == nil || !p.Active {
		if err != nil && !errors.Is(err, ErrNotFound) {
			zctx.From(ctx).Warn("Promo lookup failed", zap.String("code", normalized), zap.Error(err))
		}
		return invalid(MsgInvalid)
	}

	if p.ExpiresAt != nil && p.ExpiresAt.Before(c.now()) {
		return invalid(MsgExpired)
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return invalid(MsgLimitReached)
	}
	if subtotal < p.MinOrderValue {
		return invalid(MinOrderMessage(p.MinOrderValue))
	}

	return Result{
		Valid:          true,
		DiscountAmount: Discount(p, subtotal),
		Promo:          p,
	}
}

// Discount computes the discount p grants on subtotal. Percent discounts are
// rounded half-up to whole currency units; fixed discounts are returned
// as configured.
func Discount(p *Code, subtotal money.Amount) money.Amount {
	switch p.DiscountType {
	case DiscountPercent:
		return money.FromDecimal(subtotal.Decimal().Mul(p.Value).Div(hundred).Round(0))
	case DiscountFixed:
		return money.FromDecimal(p.Value)
	default:
		return 0
	}
}

// MinOrderMessage formats the minimum-order failure message.
func MinOrderMessage(min money.Amount) string {
	return fmt.Sprintf("Minimum order %s required", min)
}

// Normalize trims and upper-cases a customer-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Package promo validates discount codes against an order subtotal.
package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercent takes a percentage of the subtotal.
	DiscountPercent DiscountType = "percent"
	// DiscountFixed takes a fixed amount. It is not capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercent || t == DiscountFixed
}

// ErrNotFound is returned by stores when no active code matches.
var ErrNotFound = errors.New("promo code not found")

// Validation messages shown to customers.
const (
	MsgInvalid      = "Invalid promo code"
	MsgExpired      = "Promo code expired"
	MsgLimitReached = "Promo code limit reached"
)

// Code is a discount voucher. Its lifecycle belongs to the store.
type Code struct {
	ID            string
	Code          string
	DiscountType  DiscountType
	Value         decimal.Decimal
	MinOrderValue money.Amount
	MaxUses       int
	UsedCount     int
	ExpiresAt     *time.Time
	Active        bool
	CreatedAt     time.Time
}

// Store looks up active codes. The code passed is already upper-case.
type Store interface {
	FindActiveByCode(ctx context.Context, code string) (*Code, error)
}

// Redeemer records a successful redemption.
type Redeemer interface {
	IncrementUses(ctx context.Context, code string) error
}

// ErrDuplicate is returned when creating a code that already exists.
var ErrDuplicate = errors.New("promo code already exists")

// Repository is the full promo code lifecycle used by the admin API.
type Repository interface {
	Store
	Redeemer
	Create(ctx context.Context, c *Code) error
	List(ctx context.Context) ([]Code, error)
	Delete(ctx context.Context, id string) error
}

// Check validates an admin-supplied code and normalizes Code in place.
func (c *Code) Check() error {
	c.Code = Normalize(c.Code)
	switch {
	case c.Code == "":
		return errors.New("code is required")
	case !c.DiscountType.Valid():
		return errors.Errorf("unknown discount type %q", c.DiscountType)
	case c.Value.IsNegative():
		return errors.New("discount value must not be negative")
	case c.Value.GreaterThan(money.MaxUnits):
		return errors.New("discount value is too large")
	case c.DiscountType == DiscountPercent && c.Value.GreaterThan(hundred):
		return errors.New("percent discount must not exceed 100")
	case c.MinOrderValue < 0 || c.MinOrderValue > money.FromDecimal(money.MaxUnits):
		return errors.New("minimum order is out of range")
	case c.MaxUses < 0:
		return errors.New("max uses must not be negative")
	}
	return nil
}

package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems    = errors.New("items required")
	ErrInvalidStatus = errors.New("invalid order status")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PromoError indicates the promo code on an order did not validate. Message
// is the customer-facing reason.
type PromoError struct {
	Code    string
	Message string
}

func (e *PromoError) Error() string {
	return fmt.Sprintf("promo %s: %s", e.Code, e.Message)
}

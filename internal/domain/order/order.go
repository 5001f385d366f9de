// Package order places orders from cart lines and tracks their status.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/optic-storefront/internal/domain/cart"
	"github.com/xenking/optic-storefront/internal/domain/money"
)

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentFailed
}

// Shipping is the delivery address of an order.
type Shipping struct {
	Name    string
	Phone   string
	Address string
	City    string
	Pincode string
}

// Order is a placed order. Items are a snapshot of the cart at checkout.
type Order struct {
	ID             string
	SessionID      string
	Items          []cart.LineItem
	Subtotal       money.Amount
	DeliveryCharge money.Amount
	Discount       money.Amount
	Total          money.Amount
	PromoCode      string
	Shipping       Shipping
	Status         Status
	PaymentStatus  PaymentStatus
	PaymentRef     string
	CreatedAt      time.Time
}

// Payment is the result reported by a payment provider.
type Payment struct {
	ProviderOrderID string
	PaymentID       string
	Status          PaymentStatus
}

// ListFilter selects orders for the admin listing.
type ListFilter struct {
	Status  Status
	Search  string
	Page    int
	PerPage int
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	UpdatePayment(ctx context.Context, id string, p Payment, status Status) (*Order, error)
	SumTotals(ctx context.Context, since time.Time, paidOnly bool) (money.Amount, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}

// EventPlaced is the type of the event published after an order is stored.
const EventPlaced = "order.placed"

// Event is published to downstream consumers.
type Event struct {
	Type  string
	Order *Order
	At    time.Time
}

// Publisher delivers order events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// AppointmentCounter counts appointments booked for a day.
type AppointmentCounter interface {
	CountOnDate(ctx context.Context, day time.Time) (int, error)
}

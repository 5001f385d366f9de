package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/optic-storefront/internal/domain/cart"
	"github.com/xenking/optic-storefront/internal/domain/money"
	"github.com/xenking/optic-storefront/internal/domain/promo"
)

// PromoValidator validates a promo code against a subtotal.
type PromoValidator interface {
	Validate(ctx context.Context, code string, subtotal money.Amount) promo.Result
}

var _ PromoValidator = (*promo.Calculator)(nil)

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	SessionID string
	Items     []cart.LineItem
	PromoCode string
	Shipping  Shipping
}

// Stats summarizes store activity for the admin dashboard.
type Stats struct {
	TodayRevenue      money.Amount
	MonthRevenue      money.Amount
	PendingOrders     int
	TodayAppointments int
}

// Service encapsulates order placement business logic.
type Service struct {
	orders       Repository
	promos       PromoValidator
	redeemer     promo.Redeemer
	publisher    Publisher
	appointments AppointmentCounter
	now          func() time.Time
}

// NewService creates an order Service. A nil publisher drops events.
func NewService(
	orders Repository,
	promos PromoValidator,
	redeemer promo.Redeemer,
	publisher Publisher,
	appointments AppointmentCounter,
) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		orders:       orders,
		promos:       promos,
		redeemer:     redeemer,
		publisher:    publisher,
		appointments: appointments,
		now:          time.Now,
	}
}

func validateRequest(req PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyItems
	}
	for _, it := range req.Items {
		if it.Qty < 1 {
			return &ValidationError{Field: "items", Message: "quantity must be greater than 0 for " + it.Key}
		}
	}
	required := []struct {
		field string
		value string
	}{
		{"shipping.name", req.Shipping.Name},
		{"shipping.phone", req.Shipping.Phone},
		{"shipping.address", req.Shipping.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: "required"}
		}
	}
	return nil
}

// PlaceOrder prices the cart lines, applies the promo code, persists the
// order and publishes an EventPlaced event.
//
// The total is subtotal + delivery - discount and is not floored, so a
// fixed discount larger than the order yields a negative total.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	totals := cart.ComputeTotals(req.Items)

	var (
		discount money.Amount
		code     string
	)
	if strings.TrimSpace(req.PromoCode) != "" {
		res := s.promos.Validate(ctx, req.PromoCode, totals.Subtotal)
		if !res.Valid {
			return nil, &PromoError{Code: promo.Normalize(req.PromoCode), Message: res.Message}
		}
		discount = res.DiscountAmount
		code = res.Promo.Code
	}

	items := make([]cart.LineItem, len(req.Items))
	copy(items, req.Items)

	o := &Order{
		ID:             uuid.New().String(),
		SessionID:      req.SessionID,
		Items:          items,
		Subtotal:       totals.Subtotal,
		DeliveryCharge: totals.Delivery,
		Discount:       discount,
		Total:          totals.Subtotal + totals.Delivery - discount,
		PromoCode:      code,
		Shipping:       req.Shipping,
		Status:         StatusPending,
		PaymentStatus:  PaymentPending,
		CreatedAt:      s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	lg := zctx.From(ctx).With(zap.String("order_id", o.ID))
	if code != "" && s.redeemer != nil {
		if err := s.redeemer.IncrementUses(ctx, code); err != nil {
			lg.Warn("Failed to record promo usage", zap.String("code", code), zap.Error(err))
		}
	}
	if err := s.publisher.Publish(ctx, Event{Type: EventPlaced, Order: o, At: o.CreatedAt}); err != nil {
		lg.Warn("Failed to publish order event", zap.Error(err))
	}

	return o, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}

// ListBySession returns the orders of a session, newest first.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]Order, error) {
	orders, err := s.orders.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// List returns a page of orders and the total number matching f.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	return orders, total, nil
}

// UpdateStatus sets the fulfilment status of an order.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	return o, nil
}

// UpdatePayment records a payment result. A paid order becomes confirmed,
// anything else leaves it pending.
func (s *Service) UpdatePayment(ctx context.Context, id string, p Payment) (*Order, error) {
	if !p.Status.Valid() {
		return nil, &ValidationError{Field: "paymentStatus", Message: "unknown status"}
	}
	status := StatusPending
	if p.Status == PaymentPaid {
		status = StatusConfirmed
	}
	o, err := s.orders.UpdatePayment(ctx, id, p, status)
	if err != nil {
		return nil, errors.Wrap(err, "update order payment")
	}
	return o, nil
}

// Stats collects dashboard figures. Today and the month are taken in the
// location of the service clock.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	collect := func(name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				return errors.Wrap(err, name)
			}
			return nil
		})
	}
	collect("today revenue", func() (err error) {
		st.TodayRevenue, err = s.orders.SumTotals(gctx, today, false)
		return err
	})
	collect("month revenue", func() (err error) {
		st.MonthRevenue, err = s.orders.SumTotals(gctx, monthStart, true)
		return err
	})
	collect("pending orders", func() (err error) {
		st.PendingOrders, err = s.orders.CountByStatus(gctx, StatusPending)
		return err
	})
	if s.appointments != nil {
		collect("today appointments", func() (err error) {
			st.TodayAppointments, err = s.appointments.CountOnDate(gctx, today)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/cart"
	"github.com/xenking/optic-storefront/internal/domain/money"
	"github.com/xenking/optic-storefront/internal/domain/order"
)

const (
	orderColumns = `id, session_id, items, subtotal, delivery_charge, discount, total, promo_code,
		shipping_name, shipping_phone, shipping_address, shipping_city, shipping_pincode,
		status, payment_status, payment_id, created_at`

	insertOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersBySessionSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE session_id = $1 ORDER BY created_at DESC`

	orderFilterSQL = ` WHERE ($1 = '' OR status = $1)
		AND ($2 = '' OR shipping_name ILIKE $2 OR shipping_phone ILIKE $2)`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders` + orderFilterSQL + `
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	countOrdersSQL = `SELECT count(*) FROM orders` + orderFilterSQL

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 RETURNING ` + orderColumns

	updateOrderPaymentSQL = `UPDATE orders SET provider_order_id = $2, payment_id = $3,
		payment_status = $4, status = $5, updated_at = now()
		WHERE id = $1 RETURNING ` + orderColumns

	sumOrderTotalsSQL = `SELECT COALESCE(sum(total), 0) FROM orders
		WHERE created_at >= $1 AND (NOT $2 OR payment_status = 'paid')`

	countOrdersByStatusSQL = `SELECT count(*) FROM orders WHERE status = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items are stored as a JSONB cart snapshot.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, insertOrderSQL,
		o.ID, o.SessionID, cart.EncodeSnapshot(o.Items),
		o.Subtotal.Decimal(), o.DeliveryCharge.Decimal(), o.Discount.Decimal(), o.Total.Decimal(),
		o.PromoCode,
		o.Shipping.Name, o.Shipping.Phone, o.Shipping.Address, o.Shipping.City, o.Shipping.Pincode,
		string(o.Status), string(o.PaymentStatus), o.PaymentRef, o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// GetByID returns a single order.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.one(ctx, "get", getOrderSQL, id)
}

// ListBySession returns the orders of a session, newest first.
func (r *OrderRepository) ListBySession(ctx context.Context, sessionID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersBySessionSQL, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders by session")
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}
	return orders, nil
}

// List returns a page of orders matching f and the total number of matches.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, int, error) {
	var total int
	search := containsPattern(f.Search)
	if err := r.pool.QueryRow(ctx, countOrdersSQL, string(f.Status), search).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	rows, err := r.pool.Query(ctx, listOrdersSQL, string(f.Status), search, f.PerPage, (f.Page-1)*f.PerPage)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scan orders")
	}
	return orders, total, nil
}

// UpdateStatus sets the fulfilment status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	return r.one(ctx, "update status of", updateOrderStatusSQL, id, string(status))
}

// UpdatePayment records a payment result together with the derived status.
func (r *OrderRepository) UpdatePayment(ctx context.Context, id string, p order.Payment, status order.Status) (*order.Order, error) {
	return r.one(ctx, "update payment of", updateOrderPaymentSQL,
		id, p.ProviderOrderID, p.PaymentID, string(p.Status), string(status))
}

// SumTotals adds up order totals created at or after since.
func (r *OrderRepository) SumTotals(ctx context.Context, since time.Time, paidOnly bool) (money.Amount, error) {
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, sumOrderTotalsSQL, since, paidOnly).Scan(&sum); err != nil {
		return 0, errors.Wrap(err, "sum order totals")
	}
	return money.FromDecimal(sum), nil
}

// CountByStatus counts orders in status.
func (r *OrderRepository) CountByStatus(ctx context.Context, status order.Status) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countOrdersByStatusSQL, string(status)).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count orders by status")
	}
	return n, nil
}

func (r *OrderRepository) one(ctx context.Context, op, sql string, args ...any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s order %q", op, args[0])
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "%s order %q", op, args[0])
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                                   order.Order
		items                               []byte
		subtotal, delivery, discount, total decimal.Decimal
		status, paymentStatus               string
	)
	err := row.Scan(
		&o.ID, &o.SessionID, &items, &subtotal, &delivery, &discount, &total, &o.PromoCode,
		&o.Shipping.Name, &o.Shipping.Phone, &o.Shipping.Address, &o.Shipping.City, &o.Shipping.Pincode,
		&status, &paymentStatus, &o.PaymentRef, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Items, err = cart.DecodeSnapshot(items)
	if err != nil {
		return o, errors.Wrapf(err, "decode items of order %q", o.ID)
	}
	o.Subtotal = money.FromDecimal(subtotal)
	o.DeliveryCharge = money.FromDecimal(delivery)
	o.Discount = money.FromDecimal(discount)
	o.Total = money.FromDecimal(total)
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	return o, nil
}

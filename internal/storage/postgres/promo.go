package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/money"
	"github.com/xenking/optic-storefront/internal/domain/promo"
)

const (
	promoColumns = `id::text, code, discount_type, discount_value, min_order_value,
		max_uses, used_count, expires_at, is_active, created_at`

	findPromoByCodeSQL = `SELECT ` + promoColumns + `
		FROM promo_codes WHERE code = $1 AND is_active`

	listPromosSQL = `SELECT ` + promoColumns + `
		FROM promo_codes ORDER BY created_at DESC`

	insertPromoSQL = `INSERT INTO promo_codes
		(code, discount_type, discount_value, min_order_value, max_uses, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at`

	importPromoSQL = `INSERT INTO promo_codes
		(code, discount_type, discount_value, min_order_value, max_uses, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING`

	deletePromoSQL = `DELETE FROM promo_codes WHERE id = $1::uuid`

	incrementPromoUsesSQL = `UPDATE promo_codes SET used_count = used_count + 1 WHERE code = $1`
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindActiveByCode looks up an active code. The caller passes it upper-cased.
func (r *PromoRepository) FindActiveByCode(ctx context.Context, code string) (*promo.Code, error) {
	rows, err := r.pool.Query(ctx, findPromoByCodeSQL, code)
	if err != nil {
		return nil, errors.Wrapf(err, "find promo %q", code)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanPromo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find promo %q", code)
	}
	return &c, nil
}

// IncrementUses atomically increments the usage counter of code.
func (r *PromoRepository) IncrementUses(ctx context.Context, code string) error {
	if _, err := r.pool.Exec(ctx, incrementPromoUsesSQL, code); err != nil {
		return errors.Wrapf(err, "increment uses of promo %q", code)
	}
	return nil
}

// Create inserts c and fills its ID and CreatedAt.
func (r *PromoRepository) Create(ctx context.Context, c *promo.Code) error {
	err := r.pool.QueryRow(ctx, insertPromoSQL, promoArgs(c)...).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return promo.ErrDuplicate
		}
		return errors.Wrapf(err, "create promo %q", c.Code)
	}
	return nil
}

// Import inserts codes in one batch, skipping codes that already exist. It
// returns the number of rows inserted.
func (r *PromoRepository) Import(ctx context.Context, codes []promo.Code) (int64, error) {
	batch := &pgx.Batch{}
	for i := range codes {
		batch.Queue(importPromoSQL, promoArgs(&codes[i])...)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	var inserted int64
	for i := range codes {
		tag, err := br.Exec()
		if err != nil {
			return inserted, errors.Wrapf(err, "import promo %q", codes[i].Code)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// List returns every code, newest first.
func (r *PromoRepository) List(ctx context.Context) ([]promo.Code, error) {
	rows, err := r.pool.Query(ctx, listPromosSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list promos")
	}
	codes, err := pgx.CollectRows(rows, scanPromo)
	if err != nil {
		return nil, errors.Wrap(err, "scan promos")
	}
	return codes, nil
}

// Delete removes the code with the given ID.
func (r *PromoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deletePromoSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete promo %q", id)
	}
	if tag.RowsAffected() == 0 {
		return promo.ErrNotFound
	}
	return nil
}

func promoArgs(c *promo.Code) []any {
	return []any{
		c.Code, string(c.DiscountType), c.Value, c.MinOrderValue.Decimal(),
		c.MaxUses, c.ExpiresAt, c.Active,
	}
}

func scanPromo(row pgx.CollectableRow) (promo.Code, error) {
	var (
		c            promo.Code
		discountType string
		minOrder     decimal.Decimal
		expiresAt    *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Code, &discountType, &c.Value, &minOrder,
		&c.MaxUses, &c.UsedCount, &expiresAt, &c.Active, &c.CreatedAt,
	)
	c.DiscountType = promo.DiscountType(discountType)
	c.MinOrderValue = money.FromDecimal(minOrder)
	c.ExpiresAt = expiresAt
	return c, err
}

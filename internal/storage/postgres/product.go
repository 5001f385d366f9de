package postgres

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/money"
)

const (
	productColumns = `id, name, price, mrp, discount_percent, category, gender, shape, material,
		colors, rating, review_count, images, badge`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products WHERE is_active ORDER BY sort_order, created_at, id`

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = $1 AND is_active`

	upsertCategorySQL = `INSERT INTO categories (slug, name, sort_order) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, sort_order = EXCLUDED.sort_order`

	upsertProductSQL = `INSERT INTO products (` + productColumns + `, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, mrp = EXCLUDED.mrp,
			discount_percent = EXCLUDED.discount_percent, category = EXCLUDED.category,
			gender = EXCLUDED.gender, shape = EXCLUDED.shape, material = EXCLUDED.material,
			colors = EXCLUDED.colors, rating = EXCLUDED.rating, review_count = EXCLUDED.review_count,
			images = EXCLUDED.images, badge = EXCLUDED.badge, sort_order = EXCLUDED.sort_order,
			is_active = TRUE`
)

var _ catalog.Source = (*ProductRepository)(nil)

// ProductRepository reads the catalog from PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// FetchAll returns every active product in merchandising order.
func (r *ProductRepository) FetchAll(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	return products, nil
}

// GetByID returns a single active product.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	return &p, nil
}

// Upsert writes products and their categories in one transaction. Input
// order becomes the merchandising order.
func (r *ProductRepository) Upsert(ctx context.Context, products []catalog.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		seen := map[string]bool{}
		batch := &pgx.Batch{}
		for i, p := range products {
			if !seen[p.Category] {
				seen[p.Category] = true
				batch.Queue(upsertCategorySQL, p.Category, categoryName(p.Category), len(seen))
			}
			batch.Queue(upsertProductSQL,
				p.ID, p.Name, p.Price.Decimal(), p.MRP.Decimal(), p.DiscountPercent, p.Category,
				string(p.Gender), p.Shape, p.Material, nonNil(p.Colors), p.Rating, p.ReviewCount,
				nonNil(p.Images), string(p.Badge), i,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "upsert products")
		}
		return nil
	})
}

func categoryName(slug string) string {
	if slug == "" {
		return ""
	}
	return strings.ToUpper(slug[:1]) + slug[1:]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p          catalog.Product
		price, mrp decimal.Decimal
		gender     string
		badge      string
	)
	err := row.Scan(
		&p.ID, &p.Name, &price, &mrp, &p.DiscountPercent, &p.Category, &gender, &p.Shape,
		&p.Material, &p.Colors, &p.Rating, &p.ReviewCount, &p.Images, &badge,
	)
	p.Price = money.FromDecimal(price)
	p.MRP = money.FromDecimal(mrp)
	p.Gender = catalog.Gender(gender)
	p.Badge = catalog.Badge(badge)
	return p, err
}

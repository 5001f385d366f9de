package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/money"
)

const (
	listingColumns = productColumns + `, is_active, created_at`

	listingFilterSQL = ` WHERE ($1 = '' OR name ILIKE $1)
		AND ($2 = '' OR category = $2)
		AND ($3::boolean IS NULL OR is_active = $3)`

	adminListProductsSQL = `SELECT ` + listingColumns + ` FROM products` + listingFilterSQL + `
		ORDER BY created_at DESC, id LIMIT $4 OFFSET $5`

	adminCountProductsSQL = `SELECT count(*) FROM products` + listingFilterSQL

	adminGetProductSQL = `SELECT ` + listingColumns + ` FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products (` + productColumns + `, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			(SELECT COALESCE(max(sort_order), 0) + 1 FROM products))
		RETURNING created_at`

	updateProductSQL = `UPDATE products SET
			name = $2, price = $3, mrp = $4, discount_percent = $5, category = $6,
			gender = $7, shape = $8, material = $9, colors = $10, rating = $11,
			review_count = $12, images = $13, badge = $14, is_active = $15
		WHERE id = $1 RETURNING created_at`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	listCategoriesSQL = `SELECT slug, name, sort_order, is_active FROM categories
		WHERE $1 OR is_active ORDER BY sort_order, slug`

	insertCategorySQL = `INSERT INTO categories (slug, name, sort_order, is_active) VALUES ($1, $2, $3, $4)`

	updateCategorySQL = `UPDATE categories SET name = $2, sort_order = $3, is_active = $4 WHERE slug = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE slug = $1`
)

var (
	_ catalog.ProductAdmin       = (*ProductRepository)(nil)
	_ catalog.CategoryRepository = (*ProductRepository)(nil)
)

// AdminList returns a page of products matching f, newest first, and the
// total number of matches. Search matches the name as a literal substring.
func (r *ProductRepository) AdminList(ctx context.Context, f catalog.AdminFilter) ([]catalog.Listing, int, error) {
	search := containsPattern(f.Search)
	var total int
	if err := r.pool.QueryRow(ctx, adminCountProductsSQL, search, f.Category, f.Active).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}
	rows, err := r.pool.Query(ctx, adminListProductsSQL, search, f.Category, f.Active, f.PerPage, (f.Page-1)*f.PerPage)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	list, err := pgx.CollectRows(rows, scanListing)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scan products")
	}
	return list, total, nil
}

// AdminGet returns a product whether or not it is active.
func (r *ProductRepository) AdminGet(ctx context.Context, id string) (*catalog.Listing, error) {
	rows, err := r.pool.Query(ctx, adminGetProductSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	l, err := pgx.CollectExactlyOneRow(rows, scanListing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	return &l, nil
}

// Create inserts l at the end of the merchandising order and fills
// CreatedAt.
func (r *ProductRepository) Create(ctx context.Context, l *catalog.Listing) error {
	err := r.pool.QueryRow(ctx, insertProductSQL, listingArgs(l)...).Scan(&l.CreatedAt)
	if err != nil {
		return productError(err, "create", l.ID)
	}
	return nil
}

// Update overwrites every field of the product with l.ID.
func (r *ProductRepository) Update(ctx context.Context, l *catalog.Listing) error {
	err := r.pool.QueryRow(ctx, updateProductSQL, listingArgs(l)...).Scan(&l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrNotFound
		}
		return productError(err, "update", l.ID)
	}
	return nil
}

// Delete removes the product with id. Placed orders keep their snapshot.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete product %q", id)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ListCategories returns categories in display order. Hidden categories
// are only included when includeHidden is set.
func (r *ProductRepository) ListCategories(ctx context.Context, includeHidden bool) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL, includeHidden)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.Slug, &c.Name, &c.SortOrder, &c.Active)
		return c, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan categories")
	}
	return list, nil
}

// CreateCategory inserts c.
func (r *ProductRepository) CreateCategory(ctx context.Context, c *catalog.Category) error {
	if _, err := r.pool.Exec(ctx, insertCategorySQL, c.Slug, c.Name, c.SortOrder, c.Active); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return catalog.ErrCategoryDuplicate
		}
		return errors.Wrapf(err, "create category %q", c.Slug)
	}
	return nil
}

// UpdateCategory overwrites the name, order and visibility of c.Slug.
func (r *ProductRepository) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.Slug, c.Name, c.SortOrder, c.Active)
	if err != nil {
		return errors.Wrapf(err, "update category %q", c.Slug)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes an empty category.
func (r *ProductRepository) DeleteCategory(ctx context.Context, slug string) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, slug)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return catalog.ErrCategoryInUse
		}
		return errors.Wrapf(err, "delete category %q", slug)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func productError(err error, op, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return catalog.ErrDuplicate
		case foreignKeyViolation:
			return catalog.ErrCategoryNotFound
		}
	}
	return errors.Wrapf(err, "%s product %q", op, id)
}

func listingArgs(l *catalog.Listing) []any {
	p := &l.Product
	return []any{
		p.ID, p.Name, p.Price.Decimal(), p.MRP.Decimal(), p.DiscountPercent, p.Category,
		string(p.Gender), p.Shape, p.Material, nonNil(p.Colors), p.Rating, p.ReviewCount,
		nonNil(p.Images), string(p.Badge), l.Active,
	}
}

func scanListing(row pgx.CollectableRow) (catalog.Listing, error) {
	var (
		l          catalog.Listing
		price, mrp decimal.Decimal
		gender     string
		badge      string
	)
	err := row.Scan(
		&l.ID, &l.Name, &price, &mrp, &l.DiscountPercent, &l.Category, &gender, &l.Shape,
		&l.Material, &l.Colors, &l.Rating, &l.ReviewCount, &l.Images, &badge, &l.Active, &l.CreatedAt,
	)
	l.Price = money.FromDecimal(price)
	l.MRP = money.FromDecimal(mrp)
	l.Gender = catalog.Gender(gender)
	l.Badge = catalog.Badge(badge)
	return l, err
}

package catalog

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
)

// Admin page sizes.
const (
	DefaultAdminPerPage = 20
	MaxAdminPerPage     = 100
)

// ValidationError reports a product or category rejected by its Check.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(err error) error {
	return &ValidationError{Message: err.Error()}
}

// Admin manages products and categories for the dashboard.
type Admin struct {
	products   ProductAdmin
	categories CategoryRepository
}

// NewAdmin creates an Admin over the given repositories.
func NewAdmin(products ProductAdmin, categories CategoryRepository) *Admin {
	return &Admin{products: products, categories: categories}
}

// List returns a page of listings and the total number matching f.
func (a *Admin) List(ctx context.Context, f AdminFilter) ([]Listing, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultAdminPerPage
	}
	f.PerPage = min(f.PerPage, MaxAdminPerPage)
	list, total, err := a.products.AdminList(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return list, total, nil
}

// Get returns a listing whether or not it is active.
func (a *Admin) Get(ctx context.Context, id string) (*Listing, error) {
	return a.products.AdminGet(ctx, id)
}

// Create validates and stores a new listing.
func (a *Admin) Create(ctx context.Context, l *Listing) error {
	if err := l.Check(); err != nil {
		return invalid(err)
	}
	return a.products.Create(ctx, l)
}

// Update loads the listing with id, applies edit and stores the result.
// The ID cannot be changed.
func (a *Admin) Update(ctx context.Context, id string, edit func(l *Listing) error) (*Listing, error) {
	l, err := a.products.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := edit(l); err != nil {
		return nil, err
	}
	l.ID = id
	if err := l.Check(); err != nil {
		return nil, invalid(err)
	}
	if err := a.products.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// SetActive shows or hides a product on the storefront.
func (a *Admin) SetActive(ctx context.Context, id string, active bool) (*Listing, error) {
	return a.Update(ctx, id, func(l *Listing) error {
		l.Active = active
		return nil
	})
}

// Delete removes a product.
func (a *Admin) Delete(ctx context.Context, id string) error {
	return a.products.Delete(ctx, id)
}

// Categories lists categories in display order.
func (a *Admin) Categories(ctx context.Context, includeHidden bool) ([]Category, error) {
	list, err := a.categories.ListCategories(ctx, includeHidden)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return list, nil
}

// CreateCategory validates and stores c.
func (a *Admin) CreateCategory(ctx context.Context, c *Category) error {
	if err := c.Check(); err != nil {
		return invalid(err)
	}
	return a.categories.CreateCategory(ctx, c)
}

// UpdateCategory loads the category with slug, applies edit and stores the
// result. The slug cannot be changed.
func (a *Admin) UpdateCategory(ctx context.Context, slug string, edit func(c *Category) error) (*Category, error) {
	list, err := a.Categories(ctx, true)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(list, func(c Category) bool { return c.Slug == slug })
	if i < 0 {
		return nil, ErrCategoryNotFound
	}
	c := list[i]
	if err := edit(&c); err != nil {
		return nil, err
	}
	c.Slug = slug
	if err := c.Check(); err != nil {
		return nil, invalid(err)
	}
	if err := a.categories.UpdateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCategory removes a category without products.
func (a *Admin) DeleteCategory(ctx context.Context, slug string) error {
	return a.categories.DeleteCategory(ctx, slug)
}

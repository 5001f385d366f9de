package catalog

import (
	"context"
	"regexp"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrDuplicate is returned when a product ID is already taken.
	ErrDuplicate = errors.New("product already exists")
	// ErrCategoryNotFound is returned for unknown category slugs.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryDuplicate is returned when a category slug is already taken.
	ErrCategoryDuplicate = errors.New("category already exists")
	// ErrCategoryInUse is returned when deleting a category that still has
	// products.
	ErrCategoryInUse = errors.New("category has products")
)

// Listing is a product with the state only the admin dashboard sees.
type Listing struct {
	Product
	Active    bool
	CreatedAt time.Time
}

// AdminFilter selects listings for the admin product table. A nil Active
// matches both active and hidden products.
type AdminFilter struct {
	Search   string
	Category string
	Active   *bool
	Page     int
	PerPage  int
}

// ProductAdmin manages the full product table, hidden products included.
type ProductAdmin interface {
	AdminList(ctx context.Context, f AdminFilter) ([]Listing, int, error)
	AdminGet(ctx context.Context, id string) (*Listing, error)
	Create(ctx context.Context, l *Listing) error
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
}

// Category groups products on the storefront.
type Category struct {
	Slug      string
	Name      string
	SortOrder int
	Active    bool
}

// CategoryRepository stores categories ordered by SortOrder.
type CategoryRepository interface {
	ListCategories(ctx context.Context, includeHidden bool) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, slug string) error
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Check validates c.
func (c *Category) Check() error {
	switch {
	case !slugPattern.MatchString(c.Slug):
		return errors.New("slug must be lowercase letters, digits and dashes")
	case c.Name == "":
		return errors.New("name is required")
	case c.SortOrder < 0:
		return errors.New("sort order must not be negative")
	}
	return nil
}

// Check validates p. A zero DiscountPercent is derived from MRP and Price.
func (p *Product) Check() error {
	switch {
	case p.ID == "":
		return errors.New("id is required")
	case p.Name == "":
		return errors.New("name is required")
	case p.Price <= 0:
		return errors.New("price must be positive")
	case p.MRP != 0 && p.MRP < p.Price:
		return errors.New("mrp must not be below price")
	case p.Category == "":
		return errors.New("category is required")
	case !p.Gender.Valid():
		return errors.Errorf("unknown gender %q", p.Gender)
	case p.DiscountPercent < 0 || p.DiscountPercent > 100:
		return errors.New("discount percent must be between 0 and 100")
	case p.Rating < 0 || p.Rating > 5:
		return errors.New("rating must be between 0 and 5")
	case p.ReviewCount < 0:
		return errors.New("review count must not be negative")
	}
	if p.DiscountPercent == 0 && p.MRP > p.Price {
		p.DiscountPercent = int((p.MRP - p.Price) * 100 / p.MRP)
	}
	return nil
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderMen, GenderWomen, GenderKids, GenderUnisex:
		return true
	default:
		return false
	}
}

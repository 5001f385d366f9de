// Package cart implements the persisted shopping cart of one session.
//
// A Cart keeps an ordered list of line items keyed by product and lens type.
// Every mutation writes the full list through to its Store before returning.
package cart

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/money"
)

// StorageKey is the logical key cart snapshots are stored under.
const StorageKey = "sc_cart"

// ErrCorrupt is returned by stores and the codec for unreadable snapshots.
var ErrCorrupt = errors.New("corrupt cart snapshot")

// Store persists cart snapshots for a single session.
type Store interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// Cart is the cart of one session. It is not safe for concurrent use; each
// session owns its cart exclusively.
type Cart struct {
	store Store
	items []LineItem
}

// New creates a cart over store initialised with a persisted snapshot.
func New(store Store, snapshot []LineItem) *Cart {
	c := &Cart{store: store}
	for _, it := range snapshot {
		c.items = append(c.items, it.clone())
	}
	return c
}

// Load re-hydrates the cart from store. Missing or corrupt state yields an
// empty cart.
func Load(ctx context.Context, store Store) *Cart {
	items, err := store.Load(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Discarding unreadable cart", zap.Error(err))
		items = nil
	}
	return New(store, items)
}

// Snapshot returns a copy of the line items in cart order.
func (c *Cart) Snapshot() []LineItem {
	out := make([]LineItem, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// Get returns the line with key.
func (c *Cart) Get(key string) (LineItem, bool) {
	if i := c.index(key); i >= 0 {
		return c.items[i].clone(), true
	}
	return LineItem{}, false
}

// AddItem adds product with cfg. A line with the same product and lens type
// has its quantity increased; otherwise a new line is appended.
func (c *Cart) AddItem(ctx context.Context, p catalog.Product, cfg Config) error {
	cfg = cfg.withDefaults()
	key := ItemKey(p.ID, cfg.LensType)

	if i := c.index(key); i >= 0 {
		c.items[i].Qty += cfg.Qty
		return c.save(ctx)
	}

	c.items = append(c.items, LineItem{
		Key:           key,
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		LensType:      cfg.LensType,
		LensTypePrice: cfg.LensTypePrice,
		Addons:        slices.Clone(cfg.Addons),
		AddonsPrice:   cfg.AddonsPrice,
		Image:         p.PrimaryImage(),
		Qty:           cfg.Qty,
	})
	return c.save(ctx)
}

// RemoveItem deletes the line with key. Unknown keys are ignored.
func (c *Cart) RemoveItem(ctx context.Context, key string) error {
	i := c.index(key)
	if i < 0 {
		return nil
	}
	c.items = slices.Delete(c.items, i, i+1)
	return c.save(ctx)
}

// UpdateQty sets the quantity of the line with key. Quantities below 1 are
// ignored; RemoveItem drops a line.
func (c *Cart) UpdateQty(ctx context.Context, key string, qty int) error {
	if qty < 1 {
		return nil
	}
	i := c.index(key)
	if i < 0 {
		return nil
	}
	c.items[i].Qty = qty
	return c.save(ctx)
}

// UpdateAddons replaces the add-on selection of the line with key.
func (c *Cart) UpdateAddons(ctx context.Context, key string, addons []AddonRef, price money.Amount) error {
	i := c.index(key)
	if i < 0 {
		return nil
	}
	if addons == nil {
		addons = []AddonRef{}
	}
	c.items[i].Addons = slices.Clone(addons)
	c.items[i].AddonsPrice = price
	return c.save(ctx)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	c.items = nil
	return c.save(ctx)
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.items) }

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int { return ItemCount(c.items) }

// Subtotal is the sum of (unit + lens + add-ons) * qty over all lines.
func (c *Cart) Subtotal() money.Amount { return Subtotal(c.items) }

// Totals prices the cart including delivery.
func (c *Cart) Totals() Totals { return ComputeTotals(c.items) }

func (c *Cart) index(key string) int {
	return slices.IndexFunc(c.items, func(it LineItem) bool { return it.Key == key })
}

func (c *Cart) save(ctx context.Context) error {
	if err := c.store.Save(ctx, c.Snapshot()); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// Package wishlist keeps the saved products of one session.
package wishlist

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// StorageKey is the logical key wishlist snapshots are stored under.
const StorageKey = "sc_wishlist"

// ErrCorrupt is returned for unreadable snapshots.
var ErrCorrupt = errors.New("corrupt wishlist snapshot")

// Store persists the wishlist of a single session.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// Wishlist is an ordered set of product IDs, oldest first.
type Wishlist struct {
	store Store
	ids   []string
}

// Load re-hydrates the wishlist from store. Missing or corrupt state yields
// an empty wishlist.
func Load(ctx context.Context, store Store) *Wishlist {
	ids, err := store.Load(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Discarding unreadable wishlist", zap.Error(err))
		ids = nil
	}
	w := &Wishlist{store: store}
	for _, id := range ids {
		if id != "" && !slices.Contains(w.ids, id) {
			w.ids = append(w.ids, id)
		}
	}
	return w
}

// Toggle adds productID if absent and removes it otherwise. It reports
// whether the product is saved after the call.
func (w *Wishlist) Toggle(ctx context.Context, productID string) (bool, error) {
	saved := true
	if i := slices.Index(w.ids, productID); i >= 0 {
		w.ids = slices.Delete(w.ids, i, i+1)
		saved = false
	} else {
		w.ids = append(w.ids, productID)
	}
	if err := w.store.Save(ctx, w.IDs()); err != nil {
		return saved, errors.Wrap(err, "save wishlist")
	}
	return saved, nil
}

// Has reports whether productID is saved.
func (w *Wishlist) Has(productID string) bool {
	return slices.Contains(w.ids, productID)
}

// IDs returns a copy of the saved product IDs.
func (w *Wishlist) IDs() []string {
	return append([]string{}, w.ids...)
}

// Count is the number of saved products.
func (w *Wishlist) Count() int { return len(w.ids) }

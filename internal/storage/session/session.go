// Package session adapts a key-value store to the per-session cart and
// wishlist stores.
package session

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/optic-storefront/internal/domain/cart"
	"github.com/xenking/optic-storefront/internal/domain/wishlist"
)

// ErrNotFound is returned by KV implementations for missing keys.
var ErrNotFound = errors.New("session key not found")

// KV stores opaque snapshots addressed by session and key.
type KV interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
}

// CartStore returns the cart store of sessionID.
func CartStore(kv KV, sessionID string) cart.Store {
	return &cartStore{kv: kv, sessionID: sessionID}
}

// WishlistStore returns the wishlist store of sessionID.
func WishlistStore(kv KV, sessionID string) wishlist.Store {
	return &wishlistStore{kv: kv, sessionID: sessionID}
}

type cartStore struct {
	kv        KV
	sessionID string
}

func (s *cartStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	data, err := s.kv.Get(ctx, s.sessionID, cart.StorageKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load cart")
	}
	return cart.DecodeSnapshot(data)
}

func (s *cartStore) Save(ctx context.Context, items []cart.LineItem) error {
	return s.kv.Set(ctx, s.sessionID, cart.StorageKey, cart.EncodeSnapshot(items))
}

type wishlistStore struct {
	kv        KV
	sessionID string
}

func (s *wishlistStore) Load(ctx context.Context) ([]string, error) {
	data, err := s.kv.Get(ctx, s.sessionID, wishlist.StorageKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load wishlist")
	}
	return wishlist.DecodeSnapshot(data)
}

func (s *wishlistStore) Save(ctx context.Context, ids []string) error {
	return s.kv.Set(ctx, s.sessionID, wishlist.StorageKey, wishlist.EncodeSnapshot(ids))
}

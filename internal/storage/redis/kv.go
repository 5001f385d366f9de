// Package redis stores session snapshots in Redis.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/optic-storefront/internal/storage/session"
)

var _ session.KV = (*KV)(nil)

// KV is a session.KV backed by Redis string keys. Every write refreshes the
// key TTL.
type KV struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewKV creates a KV storing keys under prefix with the given TTL. A zero
// TTL keeps keys forever.
func NewKV(client redis.UniversalClient, prefix string, ttl time.Duration) *KV {
	return &KV{client: client, prefix: prefix, ttl: ttl}
}

// NewClient parses a redis:// URL and returns a connected client.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

func (s *KV) key(sessionID, key string) string {
	return s.prefix + sessionID + ":" + key
}

// Get implements session.KV.
func (s *KV) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(sessionID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, errors.Wrap(err, "redis get")
	}
	return v, nil
}

// Set implements session.KV.
func (s *KV) Set(ctx context.Context, sessionID, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(sessionID, key), value, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *KV) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

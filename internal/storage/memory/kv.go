// Package memory provides in-process stores for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/optic-storefront/internal/storage/session"
)

var _ session.KV = (*KV)(nil)

// KV is a session.KV held in a map.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKV creates an empty KV.
func NewKV() *KV {
	return &KV{data: map[string][]byte{}}
}

func kvKey(sessionID, key string) string {
	return sessionID + "/" + key
}

// Get implements session.KV.
func (s *KV) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[kvKey(sessionID, key)]
	if !ok {
		return nil, session.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements session.KV.
func (s *KV) Set(_ context.Context, sessionID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[kvKey(sessionID, key)] = append([]byte(nil), value...)
	return nil
}

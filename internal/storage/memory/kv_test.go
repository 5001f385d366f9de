package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/optic-storefront/internal/storage/session"
)

func TestKV(t *testing.T) {
	ctx := context.Background()
	kv := NewKV()

	_, err := kv.Get(ctx, "s", "k")
	require.ErrorIs(t, err, session.ErrNotFound)

	value := []byte("v1")
	require.NoError(t, kv.Set(ctx, "s", "k", value))
	value[0] = 'x'

	got, err := kv.Get(ctx, "s", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	_, err = kv.Get(ctx, "other", "k")
	require.ErrorIs(t, err, session.ErrNotFound)
}

package wishlist

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	loaded  []string
	loadErr error
	saved   [][]string
	saveErr error
}

func (m *mockStore) Load(context.Context) ([]string, error) {
	return m.loaded, m.loadErr
}

func (m *mockStore) Save(_ context.Context, ids []string) error {
	m.saved = append(m.saved, ids)
	return m.saveErr
}

func TestToggle_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	w := Load(ctx, store)

	saved, err := w.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, w.Has("p1"))

	_, err = w.Toggle(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, w.IDs())

	saved, err = w.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.False(t, w.Has("p1"))
	assert.Equal(t, 1, w.Count())

	require.Len(t, store.saved, 3)
	assert.Equal(t, []string{"p2"}, store.saved[2])
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		store *mockStore
		want  []string
	}{
		{"empty", &mockStore{}, []string{}},
		{"dedupes", &mockStore{loaded: []string{"a", "b", "a", ""}}, []string{"a", "b"}},
		{"corrupt", &mockStore{loadErr: ErrCorrupt}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Load(context.Background(), tt.store)
			assert.Equal(t, tt.want, w.IDs())
		})
	}
}

func TestToggle_SaveFailureKeepsChange(t *testing.T) {
	w := Load(context.Background(), &mockStore{saveErr: errors.New("redis down")})

	saved, err := w.Toggle(context.Background(), "p1")

	require.Error(t, err)
	assert.True(t, saved)
	assert.True(t, w.Has("p1"))
}

func TestIDsIsACopy(t *testing.T) {
	w := Load(context.Background(), &mockStore{loaded: []string{"a"}})
	ids := w.IDs()
	ids[0] = "z"
	assert.True(t, w.Has("a"))
}

func TestSnapshotCodec(t *testing.T) {
	ids := []string{"p1", "p\"2"}
	got, err := DecodeSnapshot(EncodeSnapshot(ids))
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	empty, err := DecodeSnapshot([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = DecodeSnapshot([]byte(`[1,2]`))
	require.ErrorIs(t, err, ErrCorrupt)

	_, err = DecodeSnapshot([]byte(`{"a":`))
	require.ErrorIs(t, err, ErrCorrupt)
}

package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

func TestSnapshotCodec(t *testing.T) {
	items := []LineItem{
		{
			Key:           "p1-singleVision",
			ProductID:     "p1",
			Name:          "Vincent Chase \"Aviator\"",
			UnitPrice:     money.Amount(249950),
			LensType:      "singleVision",
			LensTypePrice: money.FromUnits(500),
			Addons:        []AddonRef{{ID: "blueCut", Label: "Blue Cut (Anti-glare)"}},
			AddonsPrice:   money.FromUnits(300),
			Image:         "p1/front.jpg",
			Qty:           2,
		},
		{Key: "p2-zeroPower", ProductID: "p2", LensType: DefaultLensType, Addons: []AddonRef{}, Qty: 1},
	}

	got, err := DecodeSnapshot(EncodeSnapshot(items))
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestDecodeSnapshot_Empty(t *testing.T) {
	for _, in := range []string{"", "null", "[]"} {
		got, err := DecodeSnapshot([]byte(in))
		require.NoError(t, err, in)
		assert.Empty(t, got, in)
	}
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	inputs := []string{
		`{`,
		`{"key":"p1"}`,
		`[{"key":"p1-zeroPower","qty":"two"}]`,
		`[{"key":"p1-zeroPower","qty":0}]`,
		`[{"id":"p1","qty":1}]`,
		`not json`,
	}
	for _, in := range inputs {
		_, err := DecodeSnapshot([]byte(in))
		require.ErrorIs(t, err, ErrCorrupt, in)
	}
}

func TestDecodeSnapshot_IgnoresUnknownFields(t *testing.T) {
	got, err := DecodeSnapshot([]byte(`[{"key":"p1-zeroPower","qty":1,"legacy":{"a":[1,2]}}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1-zeroPower", got[0].Key)
}

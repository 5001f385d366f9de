package wishlist

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// EncodeSnapshot encodes ids as a JSON array of strings.
func EncodeSnapshot(ids []string) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, id := range ids {
		e.Str(id)
	}
	e.ArrEnd()
	return e.Bytes()
}

// DecodeSnapshot parses a snapshot written by EncodeSnapshot. Empty input
// and JSON null decode to an empty wishlist.
func DecodeSnapshot(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil, nil
	}

	var ids []string
	if err := d.Arr(func(d *jx.Decoder) error {
		id, err := d.Str()
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	}); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}
	return ids, nil
}

package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

// EncodeSnapshot serializes items as a JSON array. Amounts are written in
// minor units.
func EncodeSnapshot(items []LineItem) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		encodeItem(&e, it)
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeItem(e *jx.Encoder, it LineItem) {
	e.ObjStart()
	e.FieldStart("key")
	e.Str(it.Key)
	e.FieldStart("id")
	e.Str(it.ProductID)
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("price")
	e.Int64(int64(it.UnitPrice))
	e.FieldStart("lensType")
	e.Str(it.LensType)
	e.FieldStart("lensTypePrice")
	e.Int64(int64(it.LensTypePrice))
	e.FieldStart("addons")
	e.ArrStart()
	for _, a := range it.Addons {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(a.ID)
		e.FieldStart("label")
		e.Str(a.Label)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("addonsPrice")
	e.Int64(int64(it.AddonsPrice))
	e.FieldStart("image")
	e.Str(it.Image)
	e.FieldStart("qty")
	e.Int(it.Qty)
	e.ObjEnd()
}

// DecodeSnapshot parses a snapshot written by EncodeSnapshot. Empty input
// and JSON null decode to an empty cart. Any malformed input, including
// lines without a key or with a quantity below 1, wraps ErrCorrupt.
func DecodeSnapshot(data []byte) ([]LineItem, error) {
	if len(data) == 0 {
		return nil, nil
	}
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil, nil
	}

	var items []LineItem
	if err := d.Arr(func(d *jx.Decoder) error {
		it, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, errors.Wrap(ErrCorrupt, err.Error())
	}

	for _, it := range items {
		if it.Key == "" || it.Qty < 1 {
			return nil, errors.Wrapf(ErrCorrupt, "invalid line %q", it.Key)
		}
	}
	return items, nil
}

func decodeItem(d *jx.Decoder) (LineItem, error) {
	it := LineItem{Addons: []AddonRef{}}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "key":
			it.Key, err = d.Str()
		case "id":
			it.ProductID, err = d.Str()
		case "name":
			it.Name, err = d.Str()
		case "price":
			it.UnitPrice, err = decodeAmount(d)
		case "lensType":
			it.LensType, err = d.Str()
		case "lensTypePrice":
			it.LensTypePrice, err = decodeAmount(d)
		case "addons":
			err = d.Arr(func(d *jx.Decoder) error {
				var a AddonRef
				if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
					var err error
					switch string(key) {
					case "id":
						a.ID, err = d.Str()
					case "label":
						a.Label, err = d.Str()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				it.Addons = append(it.Addons, a)
				return nil
			})
		case "addonsPrice":
			it.AddonsPrice, err = decodeAmount(d)
		case "image":
			it.Image, err = d.Str()
		case "qty":
			it.Qty, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return it, err
}

func decodeAmount(d *jx.Decoder) (money.Amount, error) {
	v, err := d.Int64()
	return money.Amount(v), err
}

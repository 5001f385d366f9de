package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

// DecodeProducts parses a JSON array of products. Prices are in whole
// currency units and may carry decimals. Unknown fields are skipped.
func DecodeProducts(data []byte) ([]Product, error) {
	var products []Product
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		if p.ID == "" {
			return errors.New("product without id")
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	p := Product{Gender: GenderUnisex, Category: CategoryFrames}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return p.DecodeField(d, string(key))
	})
	return p, err
}

// DecodeField decodes the product field named key from d into p. Unknown
// keys are skipped.
func (p *Product) DecodeField(d *jx.Decoder, key string) error {
	var err error
	switch key {
	case "id":
		p.ID, err = d.Str()
	case "name":
		p.Name, err = d.Str()
	case "price":
		p.Price, err = decodeUnits(d)
	case "mrp":
		p.MRP, err = decodeUnits(d)
	case "discountPercent":
		p.DiscountPercent, err = d.Int()
	case "category":
		p.Category, err = d.Str()
	case "gender":
		var g string
		g, err = d.Str()
		p.Gender = Gender(g)
	case "shape":
		p.Shape, err = d.Str()
	case "material":
		p.Material, err = d.Str()
	case "colors":
		p.Colors, err = decodeStrings(d)
	case "rating":
		p.Rating, err = d.Float64()
	case "reviewCount":
		p.ReviewCount, err = d.Int()
	case "images":
		p.Images, err = decodeStrings(d)
	case "badge":
		var b string
		b, err = d.Str()
		p.Badge = Badge(b)
	default:
		err = d.Skip()
	}
	return err
}

func decodeUnits(d *jx.Decoder) (money.Amount, error) {
	n, err := d.Num()
	if err != nil {
		return 0, err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, errors.Wrap(err, "parse amount")
	}
	return money.Parse(v)
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	out := []string{}
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		out = append(out, s)
		return err
	})
	return out, err
}

package cart

import (
	"slices"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

// DefaultLensType is the lens type used when a product is added without one.
const DefaultLensType = "zeroPower"

// AddonRef identifies a selected lens add-on.
type AddonRef struct {
	ID    string
	Label string
}

// LineItem is one product configured with one lens type.
type LineItem struct {
	Key           string
	ProductID     string
	Name          string
	UnitPrice     money.Amount
	LensType      string
	LensTypePrice money.Amount
	Addons        []AddonRef
	AddonsPrice   money.Amount
	Image         string
	Qty           int
}

// ItemKey returns the composite line key for a product and lens type.
func ItemKey(productID, lensType string) string {
	return productID + "-" + lensType
}

// EachPrice is the price of a single unit with its lens and add-ons.
func (li LineItem) EachPrice() money.Amount {
	return li.UnitPrice + li.LensTypePrice + li.AddonsPrice
}

// LineTotal is EachPrice times quantity.
func (li LineItem) LineTotal() money.Amount {
	return li.EachPrice().Times(li.Qty)
}

func (li LineItem) clone() LineItem {
	li.Addons = slices.Clone(li.Addons)
	return li
}

// Config is the lens configuration chosen when adding a product.
// Zero fields take the defaults listed in withDefaults.
type Config struct {
	LensType      string
	LensTypePrice money.Amount
	Addons        []AddonRef
	AddonsPrice   money.Amount
	Qty           int
}

// withDefaults fills {LensType: zeroPower, LensTypePrice: 0, Addons: empty,
// AddonsPrice: 0, Qty: 1}.
func (c Config) withDefaults() Config {
	if c.LensType == "" {
		c.LensType = DefaultLensType
	}
	if c.Addons == nil {
		c.Addons = []AddonRef{}
	}
	if c.Qty < 1 {
		c.Qty = 1
	}
	return c
}

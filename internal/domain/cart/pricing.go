package cart

import (
	"slices"

	"github.com/xenking/optic-storefront/internal/domain/money"
)

var (
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold = money.FromUnits(1499)
	// DeliveryCharge is added to orders below FreeDeliveryThreshold.
	DeliveryCharge = money.FromUnits(99)
)

// LensType is a pricing tier for optical correction.
type LensType struct {
	ID          string
	Label       string
	Description string
	Price       money.Amount
}

// Addon is an optional lens treatment with a flat surcharge.
type Addon struct {
	ID    string
	Label string
	Price money.Amount
}

// LensTypes lists the lens tiers offered on frames.
var LensTypes = []LensType{
	{ID: DefaultLensType, Label: "Zero Power (Fashion/Protection)", Description: "Includes anti-glare coating", Price: 0},
	{ID: "singleVision", Label: "Single Vision", Description: "For Distance or Reading", Price: money.FromUnits(500)},
	{ID: "bifocal", Label: "Bifocal / Progressive", Description: "For both Distance & Reading", Price: money.FromUnits(1200)},
}

// Addons lists the independently toggleable lens treatments.
var Addons = []Addon{
	{ID: "blueCut", Label: "Blue Cut (Anti-glare)", Price: money.FromUnits(300)},
	{ID: "photochromic", Label: "Photochromic", Price: money.FromUnits(800)},
	{ID: "antiFog", Label: "Anti-Fog", Price: money.FromUnits(200)},
}

// ResolveConfig prices a lens type and add-on selection from the tables.
// Unknown lens types fall back to the default; unknown or repeated add-ons
// are ignored.
func ResolveConfig(lensType string, addonIDs []string, qty int) Config {
	cfg := Config{LensType: DefaultLensType, Qty: qty}
	if i := slices.IndexFunc(LensTypes, func(l LensType) bool { return l.ID == lensType }); i >= 0 {
		cfg.LensType = LensTypes[i].ID
		cfg.LensTypePrice = LensTypes[i].Price
	}
	cfg.Addons, cfg.AddonsPrice = ResolveAddons(addonIDs)
	return cfg.withDefaults()
}

// ResolveAddons returns the known add-ons among ids and their total surcharge.
func ResolveAddons(ids []string) ([]AddonRef, money.Amount) {
	refs := []AddonRef{}
	var total money.Amount
	for _, id := range ids {
		i := slices.IndexFunc(Addons, func(a Addon) bool { return a.ID == id })
		if i < 0 || slices.ContainsFunc(refs, func(r AddonRef) bool { return r.ID == id }) {
			continue
		}
		refs = append(refs, AddonRef{ID: Addons[i].ID, Label: Addons[i].Label})
		total += Addons[i].Price
	}
	return refs, total
}

// Totals is the priced summary of a cart.
type Totals struct {
	ItemCount        int
	Subtotal         money.Amount
	Delivery         money.Amount
	Total            money.Amount
	FreeDelivery     bool
	RemainingForFree money.Amount
}

// Subtotal sums the line totals of items.
func Subtotal(items []LineItem) money.Amount {
	var sum money.Amount
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

// ItemCount sums the quantities of items.
func ItemCount(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Qty
	}
	return n
}

// Delivery returns the delivery charge for subtotal.
func Delivery(subtotal money.Amount) money.Amount {
	if subtotal >= FreeDeliveryThreshold {
		return 0
	}
	return DeliveryCharge
}

// ComputeTotals prices items including delivery.
func ComputeTotals(items []LineItem) Totals {
	sub := Subtotal(items)
	t := Totals{
		ItemCount: ItemCount(items),
		Subtotal:  sub,
		Delivery:  Delivery(sub),
	}
	t.FreeDelivery = t.Delivery == 0
	t.Total = sub + t.Delivery
	if !t.FreeDelivery {
		t.RemainingForFree = FreeDeliveryThreshold - sub
	}
	return t
}

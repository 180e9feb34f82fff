package pricing

import "strings"

// Regime selects how tax is presented on a breakdown.
type Regime string

const (
	// RegimeGeneral itemises tax separately from the base amounts.
	RegimeGeneral Regime = "general"
	// RegimeSimplified folds tax into displayed amounts and reports no
	// separate tax lines (régimen simplificado).
	RegimeSimplified Regime = "simplified"
)

// ParseRegime normalises a raw regime flag. Anything other than "simplified"
// is the general regime.
func ParseRegime(raw string) Regime {
	if strings.EqualFold(strings.TrimSpace(raw), string(RegimeSimplified)) {
		return RegimeSimplified
	}
	return RegimeGeneral
}

// Line is a cart line as priced at add-to-cart time. UnitPrice is the pre-tax
// snapshot in whole colones; IVAPercent is the already-resolved per-item rate.
type Line struct {
	Qty         int
	UnitPrice   int64
	IVAPercent  float64
	WeightGrams float64
}

// Breakdown is the auditable cost decomposition of an order. All fields are
// whole colones.
type Breakdown struct {
	ItemsSubtotal int64 `json:"itemsSubtotal"`
	ItemsTax      int64 `json:"itemsTax"`
	ShippingBase  int64 `json:"shippingBase"`
	ShippingTax   int64 `json:"shippingTax"`
	Total         int64 `json:"total"`
}

// TotalWeight sums line weights in grams, applying the default product weight.
func TotalWeight(lines []Line) float64 {
	var grams float64
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		weight := line.WeightGrams
		if weight <= 0 {
			weight = DefaultWeightGrams
		}
		grams += float64(line.Qty) * weight
	}
	return grams
}

// ComputeBreakdown produces the order cost breakdown from cart lines, the raw
// shipping base fee and the tax regime. Callers pass shippingBase == 0 when
// the destination is incomplete; the zeroed shipping fields then simply mean
// "not yet calculable", which the caller detects from the destination itself.
//
// Item tax is rounded per line and then summed. The sum can therefore differ
// from rounding the aggregate once; that per-line behaviour is intentional and
// must stay the single strategy used everywhere a breakdown is shown.
func ComputeBreakdown(lines []Line, shippingBase int64, regime Regime) Breakdown {
	var subtotal, itemsTax int64
	for _, line := range lines {
		if line.Qty <= 0 || line.UnitPrice <= 0 {
			continue
		}
		lineTotal := int64(line.Qty) * line.UnitPrice
		subtotal += lineTotal
		if regime != RegimeSimplified {
			// IVAPercent is already resolved at line construction; zero means
			// a genuinely exempt product, not a missing rate.
			itemsTax += Round(float64(lineTotal) * line.IVAPercent / 100)
		}
	}

	if shippingBase < 0 {
		shippingBase = 0
	}
	// Scale in integer space before the single rounding step so exact
	// half-colón values are not lost to binary float representation.
	var shippingTax int64
	switch regime {
	case RegimeSimplified:
		// Tax is folded into the displayed base instead of broken out.
		shippingBase = Round(float64(shippingBase*113) / 100)
	default:
		shippingTax = Round(float64(shippingBase*13) / 100)
	}

	return Breakdown{
		ItemsSubtotal: subtotal,
		ItemsTax:      itemsTax,
		ShippingBase:  shippingBase,
		ShippingTax:   shippingTax,
		Total:         subtotal + itemsTax + shippingBase + shippingTax,
	}
}

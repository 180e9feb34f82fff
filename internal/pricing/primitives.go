package pricing

import (
	"math"
	"strconv"
	"strings"
)

// DefaultIVAPercent is the tax rate applied when a product carries no usable
// rate of its own.
const DefaultIVAPercent = 13

// DefaultWeightGrams is assumed for products that do not declare a weight.
const DefaultWeightGrams = 100

// ResellerTiers lists the pricing categories in fallback order.
var ResellerTiers = [...]string{"cat1", "cat2", "cat3", "cat4", "cat5"}

// IVARateOr13 parses a raw tax rate as stored on a product record. A trailing
// percent sign is tolerated; an absent or unparseable value falls back to the
// standard 13%. Every place that needs a tax rate goes through this function.
func IVARateOr13(raw string) float64 {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if trimmed == "" {
		return DefaultIVAPercent
	}
	rate, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || rate < 0 {
		return DefaultIVAPercent
	}
	return rate
}

// WeightOr100 resolves an optional product weight in grams.
func WeightOr100(raw *float64) float64 {
	if raw == nil || *raw <= 0 {
		return DefaultWeightGrams
	}
	return *raw
}

// Round converts a fractional colón amount to whole currency units. Prices are
// integral colones; rounding happens at each computation stage, never only at
// the end.
func Round(amount float64) int64 {
	return int64(math.Round(amount))
}

// PriceForTier selects the reseller price for the given tier. When the tier is
// unknown or unpriced it falls back to the lowest-numbered populated tier so a
// misconfigured record still renders a deterministic price.
func PriceForTier(prices map[string]int64, tier string) (int64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	tier = strings.ToLower(strings.TrimSpace(tier))
	if price, ok := prices[tier]; ok && price > 0 {
		return price, true
	}
	for _, fallback := range ResellerTiers {
		if price, ok := prices[fallback]; ok && price > 0 {
			return price, true
		}
	}
	return 0, false
}

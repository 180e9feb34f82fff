package catalog

import (
	"encoding/json"

	"github.com/revendelo/backend-tienda/internal/pricing"
	"github.com/revendelo/backend-tienda/internal/sku"
)

// FlexValue is a JSON scalar that the upstream backend serialises sometimes as
// a string and sometimes as a number (legacy records). It always reads back as
// a string.
type FlexValue string

// UnmarshalJSON accepts string, number and null payloads.
func (v *FlexValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FlexValue(s)
		return nil
	}
	*v = FlexValue(data)
	return nil
}

// MarshalJSON renders the value as a plain string.
func (v FlexValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// Product is a sellable record as served by the upstream commerce backend.
// Several fields are optional on legacy records; resolve them through the
// named default helpers instead of inline fallbacks.
type Product struct {
	ID             string           `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	ResellerPrices map[string]int64 `json:"resellerPrices"`
	IVA            FlexValue        `json:"iva,omitempty"`
	CountInStock   int              `json:"countInStock"`
	Weight         *float64         `json:"weight,omitempty"`
	ImageURLs      []string         `json:"imageUrls,omitempty"`
}

// BaseCode returns the product-family identifier encoded in the SKU.
func (p Product) BaseCode() string {
	return sku.Parse(p.Code).Base
}

// Attributes returns the variant attribute segments of the SKU.
func (p Product) Attributes() []string {
	return sku.Parse(p.Code).Attributes
}

// IVAPercent resolves the product tax rate, defaulting to the standard 13%.
func (p Product) IVAPercent() float64 {
	return pricing.IVARateOr13(string(p.IVA))
}

// WeightGrams resolves the product weight, defaulting to 100 g.
func (p Product) WeightGrams() float64 {
	return pricing.WeightOr100(p.Weight)
}

// PriceForTier selects the reseller price for the given tier.
func (p Product) PriceForTier(tier string) (int64, bool) {
	return pricing.PriceForTier(p.ResellerPrices, tier)
}

// InStock reports whether at least one unit can be sold.
func (p Product) InStock() bool {
	return p.CountInStock > 0
}

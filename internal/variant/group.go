package variant

import (
	"errors"
	"sort"
	"strings"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/sku"
)

var (
	// ErrVariantNotFound is returned when a complete selection matches no
	// stocked SKU. The catalog has a gap; the caller disables add-to-cart
	// instead of failing.
	ErrVariantNotFound = errors.New("variant: no sku matches the selection")
	// ErrIncompleteSelection is returned when Resolve is called before every
	// attribute position has a value.
	ErrIncompleteSelection = errors.New("variant: selection is incomplete")
	// ErrUnknownAttribute is returned for a selection against an attribute
	// type or value the group never discovered.
	ErrUnknownAttribute = errors.New("variant: unknown attribute")
	// ErrLoading is returned while the sibling set is still being fetched.
	// No selection or availability may be derived from a partial option set.
	ErrLoading = errors.New("variant: option set still loading")
)

// AttributeGroup is one selectable position: its positional label and the
// distinct values observed there across all sibling variants, in canonical
// (code-sorted) discovery order.
type AttributeGroup struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// Option is a single value at a position together with whether the current
// selection state allows picking it.
type Option struct {
	Value     string `json:"value"`
	Available bool   `json:"isAvailable"`
}

// Group is the immutable selection model built once per base-code family:
// ordered attribute positions plus the selection-key to variant lookup table.
type Group struct {
	variants   []catalog.Product
	attributes []AttributeGroup
	lookup     map[string]catalog.Product
}

// NewGroup builds the attribute option sets and lookup table from all records
// sharing one base code. Records are sorted lexicographically by SKU first so
// value discovery order is deterministic.
func NewGroup(records []catalog.Product) *Group {
	variants := make([]catalog.Product, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Code) == "" {
			continue
		}
		variants = append(variants, r)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].Code < variants[j].Code })

	maxAttrs := 0
	for _, v := range variants {
		if n := len(v.Attributes()); n > maxAttrs {
			maxAttrs = n
		}
	}

	var attributes []AttributeGroup
	for pos := 0; pos < maxAttrs; pos++ {
		seen := make(map[string]struct{})
		var values []string
		for _, v := range variants {
			attrs := v.Attributes()
			if pos >= len(attrs) {
				continue
			}
			value := attrs[pos]
			if value == "" {
				continue
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			values = append(values, value)
		}
		if len(values) == 0 {
			// Positions that never carry a value are dropped and the
			// remaining ones relabelled positionally.
			continue
		}
		attributes = append(attributes, AttributeGroup{Values: values})
	}
	for i := range attributes {
		attributes[i].Type = sku.PositionLabel(i)
	}

	lookup := make(map[string]catalog.Product, len(variants))
	for _, v := range variants {
		attrs := v.Attributes()
		if len(attrs) != len(attributes) {
			// Only variants matching the selection structure are keyed;
			// transient short records cannot be resolved to.
			continue
		}
		lookup[sku.JoinKey(attrs)] = v
	}

	return &Group{variants: variants, attributes: attributes, lookup: lookup}
}

// Attributes returns the ordered selectable positions.
func (g *Group) Attributes() []AttributeGroup {
	return g.attributes
}

// Positions returns the number of selectable attribute positions.
func (g *Group) Positions() int {
	return len(g.attributes)
}

// Variants returns the code-sorted sibling records.
func (g *Group) Variants() []catalog.Product {
	return g.variants
}

func (g *Group) positionOf(attrType string) int {
	for i, attr := range g.attributes {
		if attr.Type == attrType {
			return i
		}
	}
	return -1
}

func (g *Group) hasValue(pos int, value string) bool {
	if pos < 0 || pos >= len(g.attributes) {
		return false
	}
	for _, v := range g.attributes[pos].Values {
		if v == value {
			return true
		}
	}
	return false
}

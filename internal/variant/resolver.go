package variant

import (
	"strings"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/sku"
)

// Selected pairs a position label with its currently chosen value. An empty
// Value means the position is unselected.
type Selected struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Resolver tracks one shopper's selection walk over a Group. Selections fill
// left to right; changing an earlier position cascades a reset over every
// position to its right.
type Resolver struct {
	group    *Group
	selected []string
}

// NewResolver seeds a resolver from the variant the shopper landed on: each
// position takes the loaded variant's value when the group discovered it,
// otherwise the first value in canonical order.
func (g *Group) NewResolver(loaded catalog.Product) *Resolver {
	attrs := loaded.Attributes()
	selected := make([]string, len(g.attributes))
	for i := range g.attributes {
		if i < len(attrs) && g.hasValue(i, attrs[i]) {
			selected[i] = attrs[i]
			continue
		}
		selected[i] = g.attributes[i].Values[0]
	}
	return &Resolver{group: g, selected: selected}
}

// Select records a value at the named position and clears every position to
// its right. Unknown types or values are rejected without mutating state.
func (r *Resolver) Select(attrType, value string) error {
	pos := r.group.positionOf(attrType)
	if pos < 0 {
		return ErrUnknownAttribute
	}
	if !r.group.hasValue(pos, value) {
		return ErrUnknownAttribute
	}
	r.selected[pos] = value
	for i := pos + 1; i < len(r.selected); i++ {
		r.selected[i] = ""
	}
	return nil
}

// Selection returns the current per-position state in order.
func (r *Resolver) Selection() []Selected {
	out := make([]Selected, len(r.selected))
	for i, v := range r.selected {
		out[i] = Selected{Type: r.group.attributes[i].Type, Value: v}
	}
	return out
}

// Complete reports whether every position carries a value.
func (r *Resolver) Complete() bool {
	for _, v := range r.selected {
		if v == "" {
			return false
		}
	}
	return true
}

// Available reports, for the position at index pos, which values can still
// lead to a real SKU. The first position is always fully available; a later
// position is gated until everything to its left is selected, and then a
// value is available only when some keyed variant matches the left prefix
// plus that value.
func (r *Resolver) Available(pos int) []Option {
	if pos < 0 || pos >= len(r.group.attributes) {
		return nil
	}
	values := r.group.attributes[pos].Values
	options := make([]Option, len(values))
	for i, v := range values {
		options[i] = Option{Value: v}
	}

	if pos == 0 {
		for i := range options {
			options[i].Available = true
		}
		return options
	}
	for i := 0; i < pos; i++ {
		if r.selected[i] == "" {
			return options
		}
	}

	for i, v := range values {
		for key := range r.group.lookup {
			segments := strings.Split(key, "|")
			if segments[pos] != v {
				continue
			}
			match := true
			for j := 0; j < pos; j++ {
				if segments[j] != r.selected[j] {
					match = false
					break
				}
			}
			if match {
				options[i].Available = true
				break
			}
		}
	}
	return options
}

// Resolve maps the completed selection to its variant. Groups with no
// selectable positions resolve trivially to the single keyed record.
func (r *Resolver) Resolve() (catalog.Product, error) {
	if len(r.selected) == 0 {
		if p, ok := r.group.lookup[""]; ok {
			return p, nil
		}
		if len(r.group.variants) > 0 {
			return r.group.variants[0], nil
		}
		return catalog.Product{}, ErrVariantNotFound
	}
	if !r.Complete() {
		return catalog.Product{}, ErrIncompleteSelection
	}
	p, ok := r.group.lookup[sku.JoinKey(r.selected)]
	if !ok {
		return catalog.Product{}, ErrVariantNotFound
	}
	return p, nil
}

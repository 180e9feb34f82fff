package sku

import (
	"fmt"
	"strings"
)

// Separator delimits the base code from its attribute segments inside a SKU.
const Separator = "_"

// Code is a parsed SKU: the family base code plus the ordered attribute segments
// that distinguish one sellable variant from its siblings.
type Code struct {
	Base       string
	Attributes []string
}

// Parse splits a raw SKU on the first underscore only. Everything before it is
// the base code; everything after is split again into ordered attribute
// segments. A code without an underscore is a simple, non-variant product and
// yields zero attributes.
func Parse(raw string) Code {
	raw = strings.TrimSpace(raw)
	base, rest, found := strings.Cut(raw, Separator)
	if !found {
		return Code{Base: raw}
	}
	return Code{Base: base, Attributes: strings.Split(rest, Separator)}
}

// SameFamily reports whether two raw SKUs belong to the same product family,
// i.e. share the identical base code.
func SameFamily(a, b string) bool {
	return Parse(a).Base == Parse(b).Base
}

// JoinKey builds the canonical lookup key for an ordered attribute value list.
func JoinKey(values []string) string {
	return strings.Join(values, "|")
}

// positionLabels are the fixed semantic-looking labels assigned to attribute
// positions. The mapping is purely positional; a "color" label says nothing
// about what the segment actually encodes.
var positionLabels = [...]string{"color", "size", "model", "type", "material"}

// PositionLabel returns the label for the attribute at the given position.
func PositionLabel(i int) string {
	if i >= 0 && i < len(positionLabels) {
		return positionLabels[i]
	}
	return fmt.Sprintf("attribute_%d", i)
}

// PositionOf returns the position for a label produced by PositionLabel, or -1
// when the label is unknown.
func PositionOf(label string) int {
	for i, known := range positionLabels {
		if label == known {
			return i
		}
	}
	var n int
	if _, err := fmt.Sscanf(label, "attribute_%d", &n); err == nil && n >= len(positionLabels) {
		return n
	}
	return -1
}

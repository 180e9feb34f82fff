package sku_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revendelo/backend-tienda/internal/sku"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw   string
		base  string
		attrs []string
	}{
		{"ABC123", "ABC123", nil},
		{"ABC_RED_M", "ABC", []string{"RED", "M"}},
		{"ABC_RED_M_XL", "ABC", []string{"RED", "M", "XL"}},
		{"  ABC_AZUL ", "ABC", []string{"AZUL"}},
		{"", "", nil},
	}
	for _, tc := range cases {
		code := sku.Parse(tc.raw)
		require.Equal(t, tc.base, code.Base, "base of %q", tc.raw)
		require.Equal(t, tc.attrs, code.Attributes, "attributes of %q", tc.raw)
	}
}

func TestSameFamily(t *testing.T) {
	t.Parallel()

	require.True(t, sku.SameFamily("CAM01_RED", "CAM01_BLUE_XL"))
	require.True(t, sku.SameFamily("CAM01", "CAM01_BLUE"))
	require.False(t, sku.SameFamily("CAM01_RED", "CAM02_RED"))
}

func TestJoinKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "RED|M", sku.JoinKey([]string{"RED", "M"}))
	require.Equal(t, "", sku.JoinKey(nil))
}

func TestPositionLabels(t *testing.T) {
	t.Parallel()

	require.Equal(t, "color", sku.PositionLabel(0))
	require.Equal(t, "size", sku.PositionLabel(1))
	require.Equal(t, "material", sku.PositionLabel(4))
	require.Equal(t, "attribute_5", sku.PositionLabel(5))

	for _, i := range []int{0, 1, 2, 3, 4, 5, 9} {
		require.Equal(t, i, sku.PositionOf(sku.PositionLabel(i)))
	}
	require.Equal(t, -1, sku.PositionOf("flavour"))
}

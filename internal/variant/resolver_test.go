package variant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/variant"
)

func product(code string) catalog.Product {
	return catalog.Product{ID: code, Code: code, Name: "Producto " + code, CountInStock: 3}
}

func shirtFamily() []catalog.Product {
	return []catalog.Product{
		product("CAM01_ROJO_S"),
		product("CAM01_ROJO_M"),
		product("CAM01_AZUL_M"),
		product("CAM01_AZUL_L"),
	}
}

func TestNewGroupDiscoversAttributes(t *testing.T) {
	group := variant.NewGroup(shirtFamily())

	attrs := group.Attributes()
	require.Len(t, attrs, 2)
	require.Equal(t, "color", attrs[0].Type)
	require.Equal(t, "size", attrs[1].Type)
	// Discovery follows code-sorted order: AZUL variants sort first.
	require.Equal(t, []string{"AZUL", "ROJO"}, attrs[0].Values)
	require.Equal(t, []string{"L", "M", "S"}, attrs[1].Values)
}

func TestNewGroupSkipsShortRecords(t *testing.T) {
	records := append(shirtFamily(), product("CAM01_VERDE"))
	group := variant.NewGroup(records)

	// The short record contributes its value to discovery but is never keyed.
	require.Contains(t, group.Attributes()[0].Values, "VERDE")
	resolver := group.NewResolver(records[0])
	require.NoError(t, resolver.Select("color", "VERDE"))
	require.False(t, resolver.Complete())
}

func TestResolverSeedsFromLoadedVariant(t *testing.T) {
	group := variant.NewGroup(shirtFamily())
	resolver := group.NewResolver(product("CAM01_ROJO_M"))

	selection := resolver.Selection()
	require.Equal(t, "ROJO", selection[0].Value)
	require.Equal(t, "M", selection[1].Value)
	require.True(t, resolver.Complete())

	resolved, err := resolver.Resolve()
	require.NoError(t, err)
	require.Equal(t, "CAM01_ROJO_M", resolved.Code)
}

func TestResolverSeedsDefaultsForUnknownValues(t *testing.T) {
	group := variant.NewGroup(shirtFamily())
	resolver := group.NewResolver(product("CAM01_NEGRO_XXL"))

	selection := resolver.Selection()
	require.Equal(t, "AZUL", selection[0].Value)
	require.Equal(t, "L", selection[1].Value)
}

func TestSelectCascadesReset(t *testing.T) {
	group := variant.NewGroup(shirtFamily())
	resolver := group.NewResolver(product("CAM01_ROJO_M"))

	require.NoError(t, resolver.Select("color", "AZUL"))
	selection := resolver.Selection()
	require.Equal(t, "AZUL", selection[0].Value)
	require.Empty(t, selection[1].Value)
	require.False(t, resolver.Complete())

	_, err := resolver.Resolve()
	require.ErrorIs(t, err, variant.ErrIncompleteSelection)

	require.NoError(t, resolver.Select("size", "L"))
	resolved, err := resolver.Resolve()
	require.NoError(t, err)
	require.Equal(t, "CAM01_AZUL_L", resolved.Code)
}

func TestSelectRejectsUnknownAttribute(t *testing.T) {
	group := variant.NewGroup(shirtFamily())
	resolver := group.NewResolver(product("CAM01_ROJO_M"))

	require.ErrorIs(t, resolver.Select("material", "CUERO"), variant.ErrUnknownAttribute)
	require.ErrorIs(t, resolver.Select("color", "NEGRO"), variant.ErrUnknownAttribute)
	// Failed selections leave the state untouched.
	require.Equal(t, "M", resolver.Selection()[1].Value)
}

func TestAvailabilityGating(t *testing.T) {
	group := variant.NewGroup(shirtFamily())
	resolver := group.NewResolver(product("CAM01_ROJO_M"))

	first := resolver.Available(0)
	for _, opt := range first {
		require.True(t, opt.Available, opt.Value)
	}

	require.NoError(t, resolver.Select("color", "ROJO"))
	sizes := map[string]bool{}
	for _, opt := range resolver.Available(1) {
		sizes[opt.Value] = opt.Available
	}
	require.True(t, sizes["S"])
	require.True(t, sizes["M"])
	require.False(t, sizes["L"])

	require.NoError(t, resolver.Select("color", "AZUL"))
	for _, opt := range resolver.Available(1) {
		switch opt.Value {
		case "M", "L":
			require.True(t, opt.Available, opt.Value)
		default:
			require.False(t, opt.Available, opt.Value)
		}
	}
}

func TestAvailabilityNeverWidensAsSelectionGrows(t *testing.T) {
	records := []catalog.Product{
		product("ZAP9_NEGRO_40_CUERO"),
		product("ZAP9_NEGRO_42_LONA"),
		product("ZAP9_CAFE_40_LONA"),
	}
	group := variant.NewGroup(records)
	resolver := group.NewResolver(records[0])

	unselected := map[string]bool{}
	require.NoError(t, resolver.Select("color", "NEGRO"))
	require.NoError(t, resolver.Select("size", "40"))
	for _, opt := range resolver.Available(2) {
		unselected[opt.Value] = opt.Available
	}
	require.True(t, unselected["CUERO"])
	require.False(t, unselected["LONA"])
}

func TestResolveTrivialForSimpleProduct(t *testing.T) {
	simple := product("TAZA01")
	group := variant.NewGroup([]catalog.Product{simple})
	resolver := group.NewResolver(simple)

	require.Empty(t, group.Attributes())
	resolved, err := resolver.Resolve()
	require.NoError(t, err)
	require.Equal(t, "TAZA01", resolved.Code)
}

func TestResolveCatalogGap(t *testing.T) {
	// Every pairwise combination is selectable, but ROJO+L has no SKU.
	records := []catalog.Product{
		product("CAM01_ROJO_S"),
		product("CAM01_AZUL_L"),
	}
	group := variant.NewGroup(records)
	resolver := group.NewResolver(records[0])

	require.NoError(t, resolver.Select("color", "ROJO"))
	require.NoError(t, resolver.Select("size", "L"))
	_, err := resolver.Resolve()
	require.ErrorIs(t, err, variant.ErrVariantNotFound)
}

package variant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/variant"
)

type fakeFetcher struct {
	byCode    map[string]catalog.Product
	byBase    map[string][]catalog.Product
	all       []catalog.Product
	baseErr   error
	listErr   error
	baseCalls int
}

func (f *fakeFetcher) ProductByCode(_ context.Context, code string) (catalog.Product, error) {
	p, ok := f.byCode[code]
	if !ok {
		return catalog.Product{}, errors.New("not found")
	}
	return p, nil
}

func (f *fakeFetcher) VariantsByBase(_ context.Context, baseCode string) ([]catalog.Product, error) {
	f.baseCalls++
	if f.baseErr != nil {
		return nil, f.baseErr
	}
	return f.byBase[baseCode], nil
}

func (f *fakeFetcher) Products(_ context.Context) ([]catalog.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.all, nil
}

func TestSiblingsRemote(t *testing.T) {
	loaded := product("CAM01_ROJO_M")
	fetcher := &fakeFetcher{byBase: map[string][]catalog.Product{"CAM01": shirtFamily()}}
	source := variant.NewSource(fetcher, nil, zerolog.Nop())

	lookup := source.Siblings(context.Background(), loaded)
	require.Equal(t, variant.OriginRemote, lookup.Origin)
	require.False(t, lookup.Degraded())
	require.Len(t, lookup.Variants, 4)
}

func TestSiblingsIncludesLoadedWhenUpstreamOmitsIt(t *testing.T) {
	loaded := product("CAM01_VERDE_M")
	fetcher := &fakeFetcher{byBase: map[string][]catalog.Product{"CAM01": shirtFamily()}}
	source := variant.NewSource(fetcher, nil, zerolog.Nop())

	lookup := source.Siblings(context.Background(), loaded)
	require.Len(t, lookup.Variants, 5)
}

func TestSiblingsLocalFallback(t *testing.T) {
	loaded := product("CAM01_ROJO_M")
	fetcher := &fakeFetcher{
		baseErr: errors.New("upstream down"),
		all: append(shirtFamily(),
			product("CAM01_LARGO"),  // one attribute, structure mismatch
			product("GORRA02_AZUL"), // other family
		),
	}
	source := variant.NewSource(fetcher, nil, zerolog.Nop())

	lookup := source.Siblings(context.Background(), loaded)
	require.Equal(t, variant.OriginLocal, lookup.Origin)
	require.True(t, lookup.Degraded())
	require.Equal(t, "upstream down", lookup.Reason)
	require.Len(t, lookup.Variants, 4)
	for _, v := range lookup.Variants {
		require.NotEqual(t, "CAM01_LARGO", v.Code)
		require.NotEqual(t, "GORRA02_AZUL", v.Code)
	}
}

func TestSiblingsNoneWhenEverythingFails(t *testing.T) {
	loaded := product("CAM01_ROJO_M")
	fetcher := &fakeFetcher{baseErr: errors.New("down"), listErr: errors.New("also down")}
	source := variant.NewSource(fetcher, nil, zerolog.Nop())

	lookup := source.Siblings(context.Background(), loaded)
	require.Equal(t, variant.OriginNone, lookup.Origin)
	require.Equal(t, []catalog.Product{loaded}, lookup.Variants)
}

func TestSiblingsCancelledContextDiscards(t *testing.T) {
	loaded := product("CAM01_ROJO_M")
	fetcher := &fakeFetcher{byBase: map[string][]catalog.Product{"CAM01": shirtFamily()}}
	source := variant.NewSource(fetcher, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lookup := source.Siblings(ctx, loaded)
	require.Equal(t, variant.OriginNone, lookup.Origin)
	require.Empty(t, lookup.Variants)
}

func TestSiblingsUsesCache(t *testing.T) {
	loaded := product("CAM01_ROJO_M")
	fetcher := &fakeFetcher{byBase: map[string][]catalog.Product{"CAM01": shirtFamily()}}
	cache := variant.NewMemoryCache()
	source := variant.NewSource(fetcher, cache, zerolog.Nop())

	first := source.Siblings(context.Background(), loaded)
	require.Equal(t, variant.OriginRemote, first.Origin)

	second := source.Siblings(context.Background(), loaded)
	require.Equal(t, variant.OriginCache, second.Origin)
	require.Equal(t, 1, fetcher.baseCalls)
	require.Len(t, second.Variants, 4)
}

func TestRedisCacheRoundTripAndClear(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := variant.NewRedisCache(client, 0)
	ctx := context.Background()

	_, hit, err := cache.Get(ctx, "CAM01")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, cache.Set(ctx, "CAM01", shirtFamily()))
	got, hit, err := cache.Get(ctx, "CAM01")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 4)

	require.NoError(t, cache.Clear(ctx))
	_, hit, err = cache.Get(ctx, "CAM01")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestSessionLoadingGate(t *testing.T) {
	loaded := product("CAM01_ROJO_M")
	session := variant.NewSession(loaded)
	require.True(t, session.Loading())

	require.ErrorIs(t, session.Select("color", "AZUL"), variant.ErrLoading)
	_, err := session.Resolve()
	require.ErrorIs(t, err, variant.ErrLoading)

	fetcher := &fakeFetcher{byBase: map[string][]catalog.Product{"CAM01": shirtFamily()}}
	session.Load(context.Background(), variant.NewSource(fetcher, nil, zerolog.Nop()))
	require.False(t, session.Loading())

	require.NoError(t, session.Select("color", "AZUL"))
	require.NoError(t, session.Select("size", "L"))
	resolved, err := session.Resolve()
	require.NoError(t, err)
	require.Equal(t, "CAM01_AZUL_L", resolved.Code)
}

func TestSessionCancelledLoadStaysLoading(t *testing.T) {
	loaded := product("CAM01_ROJO_M")
	session := variant.NewSession(loaded)
	fetcher := &fakeFetcher{byBase: map[string][]catalog.Product{"CAM01": shirtFamily()}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session.Load(ctx, variant.NewSource(fetcher, nil, zerolog.Nop()))
	require.True(t, session.Loading())
}

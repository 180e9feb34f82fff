package variant_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/events"
	"github.com/revendelo/backend-tienda/internal/variant"
)

func codeIndex(products []catalog.Product) map[string]catalog.Product {
	index := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		index[p.Code] = p
	}
	return index
}

func newTestService(fetcher *fakeFetcher) *variant.Service {
	return variant.NewService(variant.ServiceConfig{
		Source: variant.NewSource(fetcher, nil, zerolog.Nop()),
		Logger: zerolog.Nop(),
	})
}

func TestServiceOptionsResolvesSelection(t *testing.T) {
	family := shirtFamily()
	fetcher := &fakeFetcher{
		byCode: codeIndex(family),
		byBase: map[string][]catalog.Product{"CAM01": family},
	}
	svc := newTestService(fetcher)

	view, err := svc.Options(t.Context(), "CAM01_ROJO_M", map[string]string{"color": "AZUL", "size": "L"})
	require.NoError(t, err)
	require.True(t, view.Found)
	require.NotNil(t, view.Resolved)
	require.Equal(t, "CAM01_AZUL_L", view.Resolved.Code)
	require.Equal(t, variant.OriginRemote, view.Origin)
	require.False(t, view.Degraded)
	require.Len(t, view.Attributes, 2)
}

func TestServiceOptionsIgnoresUnknownSelections(t *testing.T) {
	family := shirtFamily()
	fetcher := &fakeFetcher{
		byCode: codeIndex(family),
		byBase: map[string][]catalog.Product{"CAM01": family},
	}
	svc := newTestService(fetcher)

	view, err := svc.Options(t.Context(), "CAM01_ROJO_M", map[string]string{"color": "NEGRO", "talla": "M"})
	require.NoError(t, err)
	// Unknown value ignored; seeded selection from the loaded variant holds.
	require.True(t, view.Found)
	require.Equal(t, "CAM01_ROJO_M", view.Resolved.Code)
}

func TestServiceOptionsDegradedLookup(t *testing.T) {
	family := shirtFamily()
	fetcher := &fakeFetcher{
		byCode:  codeIndex(family),
		baseErr: errors.New("upstream down"),
		all:     family,
	}
	store := &events.MemoryStore{}
	svc := variant.NewService(variant.ServiceConfig{
		Source: variant.NewSource(fetcher, nil, zerolog.Nop()),
		Bus:    &events.Bus{Store: store},
		Logger: zerolog.Nop(),
	})

	view, err := svc.Options(t.Context(), "CAM01_ROJO_M", nil)
	require.NoError(t, err)
	require.True(t, view.Degraded)
	require.Equal(t, variant.OriginLocal, view.Origin)
	require.True(t, view.Found)
	recorded := store.All()
	require.Len(t, recorded, 1)
	require.Equal(t, events.TopicCatalogFallback, recorded[0].Topic)
	require.Equal(t, "CAM01", recorded[0].AggregateID)
}

func TestOptionsHandler(t *testing.T) {
	family := shirtFamily()
	fetcher := &fakeFetcher{
		byCode: codeIndex(family),
		byBase: map[string][]catalog.Product{"CAM01": family},
	}
	handler := variant.NewHandler(variant.HandlerConfig{Service: newTestService(fetcher)})

	router := chi.NewRouter()
	router.Get("/api/v1/products/{code}/options", handler.Options)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/CAM01_ROJO_M/options?color=AZUL&size=M", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data variant.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Data.Found)
	require.Equal(t, "CAM01_AZUL_M", payload.Data.Resolved.Code)
}

func TestOptionsHandlerUpstreamFailure(t *testing.T) {
	handler := variant.NewHandler(variant.HandlerConfig{Service: newTestService(&fakeFetcher{})})

	router := chi.NewRouter()
	router.Get("/api/v1/products/{code}/options", handler.Options)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/NOPE/options", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

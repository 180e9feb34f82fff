package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/common"
)

func TestClientFetchesProducts(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/code/CAM01_RED":
			// iva arrives as a bare number on legacy records
			_, _ = w.Write([]byte(`{"id":"p1","code":"CAM01_RED","name":"Camiseta","resellerPrices":{"cat1":5200},"iva":13,"countInStock":4}`))
		case "/api/products/variants/CAM01":
			_ = json.NewEncoder(w).Encode([]catalog.Product{
				{ID: "p1", Code: "CAM01_RED"},
				{ID: "p2", Code: "CAM01_BLUE"},
			})
		case "/api/products":
			_ = json.NewEncoder(w).Encode([]catalog.Product{{ID: "p1", Code: "CAM01_RED"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	client, err := catalog.NewClient(catalog.ClientConfig{BaseURL: upstream.URL})
	require.NoError(t, err)

	ctx := context.Background()

	product, err := client.ProductByCode(ctx, "CAM01_RED")
	require.NoError(t, err)
	require.Equal(t, "CAM01_RED", product.Code)
	require.Equal(t, 13.0, product.IVAPercent())
	require.True(t, product.InStock())

	variants, err := client.VariantsByBase(ctx, "CAM01")
	require.NoError(t, err)
	require.Len(t, variants, 2)

	all, err := client.Products(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestClientReportsNotFound(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	client, err := catalog.NewClient(catalog.ClientConfig{BaseURL: upstream.URL})
	require.NoError(t, err)

	_, err = client.ProductByCode(context.Background(), "NOPE")
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := catalog.NewClient(catalog.ClientConfig{})
	require.Error(t, err)
}

func TestProductDefaults(t *testing.T) {
	t.Parallel()

	var p catalog.Product
	require.NoError(t, json.Unmarshal([]byte(`{"code":"TAZ9","iva":"4%","weight":250}`), &p))
	require.Equal(t, "TAZ9", p.BaseCode())
	require.Empty(t, p.Attributes())
	require.Equal(t, 4.0, p.IVAPercent())
	require.Equal(t, 250.0, p.WeightGrams())

	var bare catalog.Product
	require.NoError(t, json.Unmarshal([]byte(`{"code":"TAZ9_AZUL"}`), &bare))
	require.Equal(t, 13.0, bare.IVAPercent())
	require.Equal(t, 100.0, bare.WeightGrams())
	require.Equal(t, []string{"AZUL"}, bare.Attributes())
}

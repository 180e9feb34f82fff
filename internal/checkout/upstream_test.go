package checkout_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revendelo/backend-tienda/internal/checkout"
	"github.com/revendelo/backend-tienda/internal/resilience"
)

func TestUpstreamPosterPostOrder(t *testing.T) {
	var received checkout.UpstreamOrder
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ORD-77","status":"PENDING"}`))
	}))
	defer srv.Close()

	poster, err := checkout.NewUpstreamPoster(checkout.UpstreamPosterConfig{
		BaseURL: srv.URL,
		HTTP:    resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	})
	require.NoError(t, err)

	result, err := poster.PostOrder(t.Context(), checkout.UpstreamOrder{
		Customer: checkout.CustomerInput{Name: "Ana", Phone: "8888-0000"},
		Regime:   "general",
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-77", result.OrderID)
	require.Equal(t, "PENDING", result.Status)
	require.Equal(t, "Ana", received.Customer.Name)
}

func TestUpstreamPosterRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	poster, err := checkout.NewUpstreamPoster(checkout.UpstreamPosterConfig{
		BaseURL: srv.URL,
		HTTP:    resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	})
	require.NoError(t, err)

	_, err = poster.PostOrder(t.Context(), checkout.UpstreamOrder{})
	require.Error(t, err)
}

func TestNewUpstreamPosterRequiresBaseURL(t *testing.T) {
	_, err := checkout.NewUpstreamPoster(checkout.UpstreamPosterConfig{})
	require.Error(t, err)
}

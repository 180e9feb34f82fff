package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/revendelo/backend-tienda/internal/common"
	"github.com/revendelo/backend-tienda/internal/resilience"
)

// Fetcher is the catalog query surface the rest of the service depends on.
type Fetcher interface {
	// ProductByCode fetches a single product record by its full SKU.
	ProductByCode(ctx context.Context, code string) (Product, error)
	// VariantsByBase fetches all sibling variants sharing a base code.
	VariantsByBase(ctx context.Context, baseCode string) ([]Product, error)
	// Products fetches the bulk product list used as a local fallback corpus.
	Products(ctx context.Context) ([]Product, error)
}

// Client queries the upstream commerce backend REST API. Outbound requests go
// through the resilience wrapper with an instrumented transport.
type Client struct {
	baseURL string
	http    resilience.HTTPClient
}

// ClientConfig groups Client construction parameters.
type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
	Breaker     *resilience.Breaker
}

// NewClient constructs a Client against the upstream base URL.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("catalog: upstream base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("catalog: invalid upstream base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	return &Client{
		baseURL: base,
		http: resilience.HTTPClient{
			Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
			Breaker:     cfg.Breaker,
			BaseBackoff: cfg.BaseBackoff,
			MaxAttempts: maxAttempts,
			Timeout:     timeout,
		},
	}, nil
}

// ProductByCode implements Fetcher.
func (c *Client) ProductByCode(ctx context.Context, code string) (Product, error) {
	var product Product
	path := "/api/products/code/" + url.PathEscape(strings.TrimSpace(code))
	if err := c.getJSON(ctx, path, &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// VariantsByBase implements Fetcher.
func (c *Client) VariantsByBase(ctx context.Context, baseCode string) ([]Product, error) {
	var variants []Product
	path := "/api/products/variants/" + url.PathEscape(strings.TrimSpace(baseCode))
	if err := c.getJSON(ctx, path, &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

// Products implements Fetcher.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return common.NotFoundError("product not found")
	case resp.StatusCode >= 400:
		return fmt.Errorf("catalog: %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return nil
}

package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/revendelo/backend-tienda/internal/pricing"
	"github.com/revendelo/backend-tienda/internal/resilience"
)

// UpstreamOrder is the payload posted to the upstream commerce backend.
type UpstreamOrder struct {
	Customer    CustomerInput     `json:"customer"`
	Destination DestinationInput  `json:"destination"`
	Notes       string            `json:"notes,omitempty"`
	Lines       []QuoteLine       `json:"lines"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
	Regime      string            `json:"regime"`
}

// UpstreamOrderResult is the upstream backend's acknowledgement.
type UpstreamOrderResult struct {
	OrderID string `json:"id"`
	Status  string `json:"status"`
}

// UpstreamPoster posts orders to the upstream backend over HTTP with retry
// and circuit-breaker protection.
type UpstreamPoster struct {
	baseURL string
	http    resilience.HTTPClient
}

// UpstreamPosterConfig configures an UpstreamPoster.
type UpstreamPosterConfig struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

// NewUpstreamPoster constructs an UpstreamPoster.
func NewUpstreamPoster(cfg UpstreamPosterConfig) (*UpstreamPoster, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("checkout: upstream base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("checkout: invalid upstream base url: %w", err)
	}
	return &UpstreamPoster{baseURL: base, http: cfg.HTTP}, nil
}

// PostOrder submits the order to POST /api/orders.
func (p *UpstreamPoster) PostOrder(ctx context.Context, order UpstreamOrder) (UpstreamOrderResult, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return UpstreamOrderResult{}, fmt.Errorf("checkout: encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return UpstreamOrderResult{}, fmt.Errorf("checkout: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(ctx, req)
	if err != nil {
		return UpstreamOrderResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return UpstreamOrderResult{}, fmt.Errorf("checkout: upstream rejected order: %s", resp.Status)
	}
	var result UpstreamOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UpstreamOrderResult{}, fmt.Errorf("checkout: decode response: %w", err)
	}
	if result.Status == "" {
		result.Status = "PENDING"
	}
	return result, nil
}

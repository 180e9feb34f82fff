package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/common"
	"github.com/revendelo/backend-tienda/internal/events"
	"github.com/revendelo/backend-tienda/internal/obs"
	"github.com/revendelo/backend-tienda/internal/pricing"
	"github.com/revendelo/backend-tienda/internal/shipping"
)

// ErrEmptyOrder is returned when a quote or order carries no purchasable lines.
var ErrEmptyOrder = errors.New("checkout: order has no items")

// ItemInput is one requested line: a full SKU plus a quantity.
type ItemInput struct {
	Code string `json:"code" validate:"required"`
	Qty  int    `json:"qty" validate:"required,gt=0"`
}

// DestinationInput is the delivery destination as entered by the shopper.
// Both fields empty means delivery is still pending a destination.
type DestinationInput struct {
	Province string `json:"province"`
	Canton   string `json:"canton"`
}

// QuoteInput is the request for a checkout quote.
type QuoteInput struct {
	Items       []ItemInput      `json:"items" validate:"required,min=1,dive"`
	Destination DestinationInput `json:"destination"`
	Tier        string           `json:"tier" validate:"omitempty,oneof=cat1 cat2 cat3 cat4 cat5"`
}

// QuoteLine echoes one priced line back to the caller.
type QuoteLine struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Qty         int     `json:"qty"`
	UnitPrice   int64   `json:"unitPrice"`
	Subtotal    int64   `json:"subtotal"`
	IVAPercent  float64 `json:"ivaPercent"`
	WeightGrams float64 `json:"weightGrams"`
}

// QuoteOutput is the full quote: priced lines plus the money breakdown.
type QuoteOutput struct {
	QuoteID         string            `json:"quoteId"`
	Lines           []QuoteLine       `json:"lines"`
	Breakdown       pricing.Breakdown `json:"breakdown"`
	Regime          string            `json:"regime"`
	TotalWeight     float64           `json:"totalWeightGrams"`
	InGAM           bool              `json:"inGam"`
	ShippingPending bool              `json:"shippingPending"`
}

// OrderInput is the request to submit an order upstream.
type OrderInput struct {
	QuoteInput
	Customer CustomerInput `json:"customer" validate:"required"`
	Notes    string        `json:"notes"`
}

// CustomerInput identifies the buyer for the upstream order record.
type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// OrderOutput reports the upstream order reference.
type OrderOutput struct {
	OrderID string      `json:"orderId"`
	Status  string      `json:"status"`
	Quote   QuoteOutput `json:"quote"`
}

// OrderPoster forwards a finalized order to the upstream commerce backend.
type OrderPoster interface {
	PostOrder(ctx context.Context, order UpstreamOrder) (UpstreamOrderResult, error)
}

// Service computes quotes and submits orders. Prices, tax rates, and weights
// always come from the upstream catalog, never from the request.
type Service struct {
	fetcher     catalog.Fetcher
	poster      OrderPoster
	bus         *events.Bus
	logger      zerolog.Logger
	regime      pricing.Regime
	defaultTier string
}

// Config groups Service dependencies.
type Config struct {
	Fetcher     catalog.Fetcher
	Poster      OrderPoster
	Bus         *events.Bus
	Logger      zerolog.Logger
	Regime      pricing.Regime
	DefaultTier string
}

// NewService constructs a Service.
func NewService(cfg Config) *Service {
	tier := cfg.DefaultTier
	if tier == "" {
		tier = pricing.ResellerTiers[0]
	}
	return &Service{
		fetcher:     cfg.Fetcher,
		poster:      cfg.Poster,
		bus:         cfg.Bus,
		logger:      cfg.Logger,
		regime:      cfg.Regime,
		defaultTier: tier,
	}
}

// Quote prices the requested lines, computes the shipping fee for the
// destination, and returns the money breakdown under the configured regime.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (QuoteOutput, error) {
	if len(in.Items) == 0 {
		return QuoteOutput{}, ErrEmptyOrder
	}
	tier := in.Tier
	if tier == "" {
		tier = s.defaultTier
	}

	lines := make([]pricing.Line, 0, len(in.Items))
	echoes := make([]QuoteLine, 0, len(in.Items))
	for _, item := range in.Items {
		product, err := s.fetcher.ProductByCode(ctx, item.Code)
		if err != nil {
			return QuoteOutput{}, fmt.Errorf("checkout: load %s: %w", item.Code, err)
		}
		price, ok := product.PriceForTier(tier)
		if !ok {
			return QuoteOutput{}, &common.AppError{
				Code:       common.CodeNoPrice,
				Message:    fmt.Sprintf("product %s has no price for tier %s", item.Code, tier),
				HTTPStatus: http.StatusUnprocessableEntity,
			}
		}
		line := pricing.Line{
			Qty:         item.Qty,
			UnitPrice:   price,
			IVAPercent:  product.IVAPercent(),
			WeightGrams: product.WeightGrams(),
		}
		lines = append(lines, line)
		echoes = append(echoes, QuoteLine{
			Code:        product.Code,
			Name:        product.Name,
			Qty:         item.Qty,
			UnitPrice:   price,
			Subtotal:    int64(item.Qty) * price,
			IVAPercent:  line.IVAPercent,
			WeightGrams: line.WeightGrams,
		})
	}

	dest := shipping.Destination{Province: in.Destination.Province, Canton: in.Destination.Canton}
	totalWeight := pricing.TotalWeight(lines)
	baseFee := shipping.BaseFee(dest, totalWeight)
	breakdown := pricing.ComputeBreakdown(lines, baseFee, s.regime)

	out := QuoteOutput{
		QuoteID:         uuid.NewString(),
		Lines:           echoes,
		Breakdown:       breakdown,
		Regime:          string(s.regime),
		TotalWeight:     totalWeight,
		InGAM:           dest.InGAM(),
		ShippingPending: !dest.Complete(),
	}
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(string(s.regime)).Inc()
	}
	if s.bus != nil {
		_, _ = s.bus.Emit(ctx, events.TopicQuoteComputed, out.QuoteID, map[string]any{
			"total":           breakdown.Total,
			"regime":          string(s.regime),
			"shippingPending": out.ShippingPending,
		})
	}
	return out, nil
}

// Submit recomputes the quote server side and forwards the order upstream.
// A destination is mandatory here: orders cannot ship to an unknown canton.
func (s *Service) Submit(ctx context.Context, in OrderInput) (OrderOutput, error) {
	dest := shipping.Destination{Province: in.Destination.Province, Canton: in.Destination.Canton}
	if !dest.Complete() {
		return OrderOutput{}, common.ValidationError("province and canton are required to submit an order", nil)
	}
	quote, err := s.Quote(ctx, in.QuoteInput)
	if err != nil {
		return OrderOutput{}, err
	}
	if s.poster == nil {
		return OrderOutput{}, errors.New("checkout: order poster not configured")
	}

	started := time.Now()
	result, err := s.poster.PostOrder(ctx, UpstreamOrder{
		Customer:    in.Customer,
		Destination: in.Destination,
		Notes:       in.Notes,
		Lines:       quote.Lines,
		Breakdown:   quote.Breakdown,
		Regime:      quote.Regime,
	})
	elapsed := float64(time.Since(started).Milliseconds())
	if err != nil {
		if obs.OrderSubmitTotal != nil {
			obs.OrderSubmitTotal.WithLabelValues("error").Inc()
		}
		if obs.OrderSubmitLatency != nil {
			obs.OrderSubmitLatency.WithLabelValues("error").Observe(elapsed)
		}
		if s.bus != nil {
			_, _ = s.bus.Emit(ctx, events.TopicOrderRejected, quote.QuoteID, map[string]any{"reason": err.Error()})
		}
		return OrderOutput{}, fmt.Errorf("checkout: submit order: %w", err)
	}
	if obs.OrderSubmitTotal != nil {
		obs.OrderSubmitTotal.WithLabelValues("ok").Inc()
	}
	if obs.OrderSubmitLatency != nil {
		obs.OrderSubmitLatency.WithLabelValues("ok").Observe(elapsed)
	}
	if s.bus != nil {
		_, _ = s.bus.Emit(ctx, events.TopicOrderSubmitted, result.OrderID, map[string]any{
			"total":  quote.Breakdown.Total,
			"status": result.Status,
		})
	}
	s.logger.Info().
		Str("order_id", result.OrderID).
		Int64("total", quote.Breakdown.Total).
		Str("regime", quote.Regime).
		Msg("order submitted")
	return OrderOutput{OrderID: result.OrderID, Status: result.Status, Quote: quote}, nil
}

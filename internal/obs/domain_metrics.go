package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts checkout quote computations by tax regime.
	QuoteTotal *prometheus.CounterVec
	// OrderSubmitTotal counts order submissions forwarded upstream by outcome.
	OrderSubmitTotal *prometheus.CounterVec
	// OrderSubmitLatency records upstream order submission latency in milliseconds.
	OrderSubmitLatency *prometheus.HistogramVec
	// VariantResolutions counts variant resolution outcomes.
	VariantResolutions *prometheus.CounterVec
	// CatalogFallbacks counts degraded sibling lookups by fallback origin.
	CatalogFallbacks *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_quote_total",
			Help:      "Count of computed checkout quotes by tax regime.",
		}, []string{"regime"})
		OrderSubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_submit_total",
			Help:      "Count of order submissions by outcome.",
		}, []string{"result"})
		OrderSubmitLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_submit_duration_ms",
			Help:      "Latency for upstream order submissions in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"result"})
		VariantResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variant_resolution_total",
			Help:      "Count of variant resolution attempts by outcome.",
		}, []string{"outcome"})
		CatalogFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fallback_total",
			Help:      "Count of degraded sibling lookups by fallback origin.",
		}, []string{"origin"})

		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, OrderSubmitTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderSubmitTotal = v
			}
		})
		mustRegisterCollector(reg, OrderSubmitLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				OrderSubmitLatency = v
			}
		})
		mustRegisterCollector(reg, VariantResolutions, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VariantResolutions = v
			}
		})
		mustRegisterCollector(reg, CatalogFallbacks, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogFallbacks = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

package app

import (
	"context"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies enumerates core services shared across modules to make future wiring explicit.
type Dependencies struct {
	Context         context.Context
	Redis           *redis.Client
	Validator       *validator.Validate
	Limiter         *limiter.Limiter
	LimiterStore    limiter.Store
	MetricsRegistry *prometheus.Registry
	TracerProvider  trace.TracerProvider
	MeterProvider   metric.MeterProvider
}

// NewIPLimiter builds the global per-IP limiter. It prefers Redis so limits
// hold across instances and falls back to an in-memory store when Redis is
// not configured.
func NewIPLimiter(rdb *redis.Client, requests int, window time.Duration) (*limiter.Limiter, error) {
	if requests <= 0 {
		requests = 120
	}
	if window <= 0 {
		window = time.Minute
	}
	rate := limiter.Rate{Period: window, Limit: int64(requests)}
	if rdb == nil {
		return limiter.New(memorystore.NewStore(), rate), nil
	}
	store, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "tienda:ratelimit"})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

// Tracer returns the default OpenTelemetry tracer for instrumentation hooks.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Meter returns the default OpenTelemetry meter for instrumentation hooks.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

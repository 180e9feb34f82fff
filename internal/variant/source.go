package variant

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/revendelo/backend-tienda/internal/catalog"
)

// Origin tags where a sibling set came from.
type Origin string

const (
	// OriginRemote marks a fresh upstream variants-by-base lookup.
	OriginRemote Origin = "remote"
	// OriginCache marks a memoized sibling set.
	OriginCache Origin = "cache"
	// OriginLocal marks a degraded result filtered from the bulk product
	// list after the dedicated lookup failed.
	OriginLocal Origin = "local"
	// OriginNone marks a product with no discoverable siblings; it is
	// treated as a simple, non-variant product.
	OriginNone Origin = "none"
)

// Lookup is a sibling-set fetch outcome. Reason is populated only when the
// result is degraded or empty.
type Lookup struct {
	Variants []catalog.Product
	Origin   Origin
	Reason   string
}

// Degraded reports whether the sibling set did not come from the dedicated
// upstream lookup.
func (l Lookup) Degraded() bool {
	return l.Origin == OriginLocal || l.Origin == OriginNone
}

// Source resolves the sibling variants of a loaded product: cache first, then
// the upstream variants-by-base endpoint, then a bulk-list filter when the
// upstream lookup fails.
type Source struct {
	fetcher catalog.Fetcher
	cache   Cache
	logger  zerolog.Logger
}

// NewSource wires a sibling source. cache may be nil to disable memoization.
func NewSource(fetcher catalog.Fetcher, cache Cache, logger zerolog.Logger) *Source {
	return &Source{fetcher: fetcher, cache: cache, logger: logger}
}

// Siblings returns every variant sharing the loaded product's base code,
// including the loaded product itself. Cache errors are logged and treated as
// misses; upstream errors trigger the local fallback.
func (s *Source) Siblings(ctx context.Context, loaded catalog.Product) Lookup {
	base := loaded.BaseCode()
	if base == "" {
		return Lookup{Variants: []catalog.Product{loaded}, Origin: OriginNone, Reason: "empty base code"}
	}

	if s.cache != nil {
		variants, hit, err := s.cache.Get(ctx, base)
		if err != nil {
			s.logger.Warn().Err(err).Str("base_code", base).Msg("variant cache read failed")
		} else if hit && len(variants) > 0 {
			return Lookup{Variants: withLoaded(variants, loaded), Origin: OriginCache}
		}
	}
	if err := ctx.Err(); err != nil {
		return Lookup{Origin: OriginNone, Reason: err.Error()}
	}

	variants, err := s.fetcher.VariantsByBase(ctx, base)
	if err == nil && len(variants) > 0 {
		variants = withLoaded(variants, loaded)
		if s.cache != nil {
			if cerr := s.cache.Set(ctx, base, variants); cerr != nil {
				s.logger.Warn().Err(cerr).Str("base_code", base).Msg("variant cache write failed")
			}
		}
		return Lookup{Variants: variants, Origin: OriginRemote}
	}
	if cause := ctx.Err(); cause != nil {
		return Lookup{Origin: OriginNone, Reason: cause.Error()}
	}

	reason := "upstream returned no variants"
	if err != nil {
		reason = err.Error()
		s.logger.Warn().Err(err).Str("base_code", base).Msg("variant lookup failed, falling back to bulk list")
	}

	all, lerr := s.fetcher.Products(ctx)
	if lerr != nil {
		s.logger.Error().Err(lerr).Str("base_code", base).Msg("bulk list fallback failed")
		return Lookup{Variants: []catalog.Product{loaded}, Origin: OriginNone, Reason: reason}
	}

	wantAttrs := len(loaded.Attributes())
	var filtered []catalog.Product
	for _, p := range all {
		if p.BaseCode() != base || len(p.Attributes()) != wantAttrs {
			continue
		}
		filtered = append(filtered, p)
	}
	filtered = withLoaded(filtered, loaded)
	if len(filtered) <= 1 {
		return Lookup{Variants: filtered, Origin: OriginNone, Reason: reason}
	}
	return Lookup{Variants: filtered, Origin: OriginLocal, Reason: reason}
}

func withLoaded(variants []catalog.Product, loaded catalog.Product) []catalog.Product {
	for _, v := range variants {
		if v.Code == loaded.Code {
			return variants
		}
	}
	return append(variants, loaded)
}

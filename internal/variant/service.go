package variant

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/revendelo/backend-tienda/internal/catalog"
	"github.com/revendelo/backend-tienda/internal/events"
	"github.com/revendelo/backend-tienda/internal/obs"
)

// Service assembles the selectable-options view for a product page: it loads
// the product, discovers its siblings, replays the shopper's selection, and
// reports per-position availability plus the resolved SKU.
type Service struct {
	source *Source
	bus    *events.Bus
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Source *Source
	Bus    *events.Bus
	Logger zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{source: cfg.Source, bus: cfg.Bus, logger: cfg.Logger}
}

// AttributeView is one position of the rendered option matrix.
type AttributeView struct {
	Type     string   `json:"type"`
	Options  []Option `json:"options"`
	Selected string   `json:"selected,omitempty"`
}

// View is the full options payload for a product code plus a selection.
type View struct {
	Product    catalog.Product  `json:"product"`
	Attributes []AttributeView  `json:"attributes"`
	Resolved   *catalog.Product `json:"resolved,omitempty"`
	Found      bool             `json:"found"`
	Origin     Origin           `json:"origin"`
	Degraded   bool             `json:"degraded"`
}

// Options loads the product identified by code, rebuilds its variant group,
// applies selections in position order, and returns the availability view.
// Selections for unknown types or values are ignored rather than rejected so
// stale links still render.
func (s *Service) Options(ctx context.Context, code string, selections map[string]string) (View, error) {
	loaded, err := s.source.fetcher.ProductByCode(ctx, code)
	if err != nil {
		return View{}, err
	}

	lookup := s.source.Siblings(ctx, loaded)
	if lookup.Degraded() {
		if obs.CatalogFallbacks != nil {
			obs.CatalogFallbacks.WithLabelValues(string(lookup.Origin)).Inc()
		}
		s.logger.Info().
			Str("code", code).
			Str("origin", string(lookup.Origin)).
			Str("reason", lookup.Reason).
			Msg("variant lookup degraded")
		if s.bus != nil {
			_, _ = s.bus.Emit(ctx, events.TopicCatalogFallback, loaded.BaseCode(), map[string]any{
				"origin": string(lookup.Origin),
				"reason": lookup.Reason,
			})
		}
	}

	group := NewGroup(lookup.Variants)
	resolver := group.NewResolver(loaded)
	for _, attr := range group.Attributes() {
		value, ok := selections[attr.Type]
		if !ok {
			continue
		}
		if err := resolver.Select(attr.Type, value); err != nil {
			s.logger.Debug().Str("code", code).Str("type", attr.Type).Str("value", value).Msg("ignoring unknown selection")
		}
	}

	view := View{
		Product:  loaded,
		Origin:   lookup.Origin,
		Degraded: lookup.Degraded(),
	}
	selection := resolver.Selection()
	for i, attr := range group.Attributes() {
		view.Attributes = append(view.Attributes, AttributeView{
			Type:     attr.Type,
			Options:  resolver.Available(i),
			Selected: selection[i].Value,
		})
	}

	resolved, rerr := resolver.Resolve()
	outcome := "incomplete"
	switch rerr {
	case nil:
		view.Resolved = &resolved
		view.Found = true
		outcome = "found"
	case ErrVariantNotFound:
		outcome = "not_found"
	}
	if obs.VariantResolutions != nil {
		obs.VariantResolutions.WithLabelValues(outcome).Inc()
	}
	return view, nil
}

// Session is a stateful selection walk with an explicit loading gate for
// long-lived consumers. Until Load completes, selection and resolution are
// rejected so nothing is derived from a partial option set.
type Session struct {
	mu       sync.Mutex
	loaded   catalog.Product
	resolver *Resolver
	group    *Group
	origin   Origin
	loading  bool
}

// NewSession starts a session for the loaded product. The session stays in
// the loading state until Load finishes.
func NewSession(loaded catalog.Product) *Session {
	return &Session{loaded: loaded, loading: true}
}

// Load fetches siblings and builds the selection model. A canceled context
// discards the fetch and leaves the session loading so a stale option set is
// never installed.
func (s *Session) Load(ctx context.Context, source *Source) {
	lookup := source.Siblings(ctx, s.loaded)
	if ctx.Err() != nil {
		return
	}
	group := NewGroup(lookup.Variants)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group = group
	s.resolver = group.NewResolver(s.loaded)
	s.origin = lookup.Origin
	s.loading = false
}

// Loading reports whether the sibling fetch is still outstanding.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Select forwards to the underlying resolver once loading has finished.
func (s *Session) Select(attrType, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return ErrLoading
	}
	return s.resolver.Select(attrType, value)
}

// Resolve forwards to the underlying resolver once loading has finished.
func (s *Session) Resolve() (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return catalog.Product{}, ErrLoading
	}
	return s.resolver.Resolve()
}

package events

// Topic constants for domain events emitted by the storefront service.
const (
	TopicQuoteComputed   = "quote.computed"
	TopicOrderSubmitted  = "order.submitted"
	TopicOrderRejected   = "order.rejected"
	TopicCatalogFallback = "catalog.fallback"
)

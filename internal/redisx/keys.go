package redisx

import "time"

const (
	// Checkout replay: idem:checkout:{idempotency_key} -> hosted url
	KeyIdemCheckout = "idem:checkout:%s"

	// Dedup provider event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Catalog snapshot: catalog:products -> JSON array
	KeyCatalog = "catalog:products"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
	TTLCatalog     = 5 * time.Minute
)

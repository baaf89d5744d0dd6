package checkout

import "errors"

var (
	// ErrInvalidCheckout is caused by the client, e.g. a cart with nothing valid in it.
	ErrInvalidCheckout = errors.New("invalid checkout")
	// ErrPersistence means the pending order could not be written.
	ErrPersistence = errors.New("order could not be saved")
	// ErrCheckoutUnavailable means a collaborator (catalog, payment provider) failed.
	ErrCheckoutUnavailable = errors.New("checkout temporarily unavailable")
	// ErrIdempotencyMismatch means an Idempotency-Key was reused for another buyer or cart.
	ErrIdempotencyMismatch = errors.New("idempotency key reused with a different request")
)

// Package payment wraps the hosted-checkout provider: creating sessions and
// authenticating the events it posts back.
package payment

import (
	"context"
	"errors"
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrSignatureInvalid   = errors.New("webhook signature invalid")
	ErrMalformedEvent     = errors.New("webhook payload malformed")
)

type LineItem struct {
	Name       string
	ImageURL   string
	UnitAmount int64 // minor units
	Quantity   int
}

type SessionRequest struct {
	Lines      []LineItem
	Currency   string
	BuyerEmail string
	SuccessURL string
	CancelURL  string
}

type SessionHandle struct {
	ID        string
	HostedURL string
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (SessionHandle, error)
}

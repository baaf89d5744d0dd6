package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway creates hosted Checkout Sessions in payment mode.
type StripeGateway struct {
	sessions sessionCreator
	timeout  time.Duration
}

// NewStripeGateway returns a gateway that fails every call with
// ErrGatewayUnavailable when secretKey is empty.
func NewStripeGateway(secretKey string, timeout time.Duration) *StripeGateway {
	g := &StripeGateway{timeout: timeout}
	if secretKey != "" {
		g.sessions = &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	}
	return g
}

func (g *StripeGateway) Configured() bool { return g.sessions != nil }

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (SessionHandle, error) {
	if g.sessions == nil {
		return SessionHandle{}, fmt.Errorf("%w: secret key not configured", ErrGatewayUnavailable)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.BuyerEmail != "" {
		params.CustomerEmail = stripe.String(req.BuyerEmail)
	}
	for _, l := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(l.Name),
		}
		if l.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{l.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(int64(l.Quantity)),
		})
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return SessionHandle{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return SessionHandle{ID: s.ID, HostedURL: s.URL}, nil
}

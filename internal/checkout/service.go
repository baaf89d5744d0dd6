// Package checkout turns a client cart into a pending order and a hosted
// payment session.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/storefront/internal/cart"
	"github.com/ariefcatur/storefront/internal/catalog"
	"github.com/ariefcatur/storefront/internal/orders"
	"github.com/ariefcatur/storefront/internal/payment"
	"github.com/rs/zerolog"
)

type OrderStore interface {
	CreatePendingOrder(ctx context.Context, email string, c cart.Normalized) (int64, error)
	AttachSessionReference(ctx context.Context, orderID int64, sessionRef string) error
}

type Request struct {
	Cart           cart.Cart
	BuyerEmail     string
	IdempotencyKey string
	TraceID        string
}

type Result struct {
	OrderID   int64
	HostedURL string
	Replayed  bool
}

type Service struct {
	Catalog  catalog.Source
	Store    OrderStore
	Gateway  payment.Gateway
	Events   *orders.Notifier
	Replay   *ReplayCache // optional
	Currency string
	BaseURL  string // success/cancel redirects and relative image paths
	Log      zerolog.Logger
}

// Checkout runs normalize -> replay lookup -> persist -> create session -> link session.
// A pending order whose session could not be created is left in place; the
// buyer may retry and the stale row does no harm.
func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	log := s.Log.With().Str("trace_id", req.TraceID).Logger()

	products, err := s.Catalog.ListProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("catalog unavailable")
		return Result{}, fmt.Errorf("%w: catalog: %v", ErrCheckoutUnavailable, err)
	}

	normalized, err := cart.Normalize(req.Cart, products)
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidCheckout, err)
		}
		return Result{}, err
	}

	useReplay := req.IdempotencyKey != "" && s.Replay != nil
	var fingerprint string
	if useReplay {
		fingerprint = Fingerprint(req.BuyerEmail, normalized)
		res, ok, err := s.Replay.Get(ctx, req.IdempotencyKey, fingerprint)
		switch {
		case errors.Is(err, ErrIdempotencyMismatch):
			log.Warn().Str("idempotency_key", req.IdempotencyKey).Msg("idempotency key reused for a different checkout")
			return Result{}, err
		case err != nil:
			log.Warn().Err(err).Str("idempotency_key", req.IdempotencyKey).Msg("replay lookup failed")
		case ok:
			log.Info().Int64("order_id", res.OrderID).Str("idempotency_key", req.IdempotencyKey).Msg("checkout replayed")
			return res, nil
		}
	}

	orderID, err := s.Store.CreatePendingOrder(ctx, req.BuyerEmail, normalized)
	if err != nil {
		log.Error().Err(err).Int64("total_cents", normalized.TotalMinor).Msg("create pending order failed")
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log = log.With().Int64("order_id", orderID).Logger()

	handle, err := s.Gateway.CreateSession(ctx, s.sessionRequest(orderID, req.BuyerEmail, normalized))
	if err != nil {
		log.Error().Err(err).Msg("create payment session failed, order left pending")
		return Result{}, fmt.Errorf("%w: %w", ErrCheckoutUnavailable, err)
	}
	log = log.With().Str("session_ref", handle.ID).Logger()

	// the buyer can pay without this link, but a webhook for the session
	// will then match no order
	if err := s.Store.AttachSessionReference(ctx, orderID, handle.ID); err != nil {
		log.Error().Err(err).Msg("attach session reference failed, webhook for this session will be dropped")
	} else {
		s.Events.OrderPlaced(orderID, handle.ID, normalized.TotalMinor, s.Currency, req.TraceID)
	}

	res := Result{OrderID: orderID, HostedURL: handle.HostedURL}
	if useReplay {
		if err := s.Replay.Put(ctx, req.IdempotencyKey, fingerprint, res); err != nil {
			log.Warn().Err(err).Str("idempotency_key", req.IdempotencyKey).Msg("replay store failed")
		}
	}
	log.Info().Int64("total_cents", normalized.TotalMinor).Msg("checkout session created")
	return res, nil
}

func (s *Service) sessionRequest(orderID int64, email string, n cart.Normalized) payment.SessionRequest {
	lines := make([]payment.LineItem, 0, len(n.Lines))
	for _, l := range n.Lines {
		lines = append(lines, payment.LineItem{
			Name:       l.Product.Name,
			ImageURL:   s.absoluteURL(l.Product.Img),
			UnitAmount: l.UnitMinor,
			Quantity:   l.Quantity,
		})
	}
	return payment.SessionRequest{
		Lines:      lines,
		Currency:   s.Currency,
		BuyerEmail: email,
		SuccessURL: fmt.Sprintf("%s/?success=1&order=%d", s.BaseURL, orderID),
		CancelURL:  fmt.Sprintf("%s/?canceled=1&order=%d", s.BaseURL, orderID),
	}
}

func (s *Service) absoluteURL(ref string) string {
	if strings.HasPrefix(ref, "/") {
		return s.BaseURL + ref
	}
	return ref
}

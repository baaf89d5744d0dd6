// Package reconcile applies payment provider webhook events to orders.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/storefront/internal/orders"
	"github.com/ariefcatur/storefront/internal/payment"
	"github.com/ariefcatur/storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrApply means the event was authentic but the store could not record its
// effect. The provider should redeliver.
var ErrApply = errors.New("apply event failed")

type Verifier interface {
	Mode() payment.Mode
	VerifyEvent(payload []byte, sigHeader string) (payment.Event, error)
}

type OrderStore interface {
	MarkPaid(ctx context.Context, sessionRef string) (int64, error)
	MarkCanceled(ctx context.Context, sessionRef string) (int64, error)
}

// Ack is returned for every delivery that passed verification, including
// ones that matched no order.
type Ack struct {
	Received  bool   `json:"received"`
	EventID   string `json:"-"`
	EventType string `json:"-"`
	Affected  int64  `json:"-"`
	Duplicate bool   `json:"-"`
}

type Reconciler struct {
	Verifier    Verifier
	Store       OrderStore
	Events      *orders.Notifier
	Dedup       redis.Cmdable // optional
	DedupTTL    time.Duration
	ServiceName string
	Log         zerolog.Logger
}

func (r *Reconciler) Handle(ctx context.Context, payload []byte, sigHeader, traceID string) (Ack, error) {
	log := r.Log.With().Str("trace_id", traceID).Logger()
	if r.Verifier.Mode() == payment.ModeUnverified {
		log.Warn().Msg("webhook signature verification disabled, accepting unauthenticated event")
	}

	ev, err := r.Verifier.VerifyEvent(payload, sigHeader)
	if err != nil {
		log.Warn().Err(err).Msg("webhook rejected")
		return Ack{}, err
	}
	ack := Ack{Received: true, EventID: ev.EventID(), EventType: ev.EventType()}
	log = log.With().Str("event_id", ack.EventID).Str("event_type", ack.EventType).Logger()

	if r.seen(ctx, ack.EventID, log) {
		log.Info().Msg("event already applied")
		ack.Duplicate = true
		return ack, nil
	}

	var (
		sessionRef string
		target     orders.Status
	)
	switch e := ev.(type) {
	case payment.Completed:
		sessionRef, target = e.SessionRef, orders.StatusPaid
	case payment.Canceled:
		sessionRef, target = e.SessionRef, orders.StatusCanceled
	case payment.Other:
		if e.Reason != "" {
			log.Warn().Str("reason", e.Reason).Msg("session event acknowledged without action")
		} else {
			log.Debug().Msg("event ignored")
		}
		r.remember(ctx, ack.EventID, log)
		return ack, nil
	default:
		return ack, fmt.Errorf("%w: unexpected event %T", payment.ErrMalformedEvent, ev)
	}
	log = log.With().Str("session_ref", sessionRef).Logger()

	n, err := r.transition(ctx, sessionRef, target)
	if err != nil {
		log.Error().Err(err).Str("status", string(target)).Msg("order transition failed")
		return Ack{}, fmt.Errorf("%w: %v", ErrApply, err)
	}
	ack.Affected = n

	if n == 0 {
		// unknown session, already terminal, or lost a race with a concurrent delivery
		log.Info().Str("status", string(target)).Msg("no pending order matched")
	} else {
		log.Info().Str("status", string(target)).Int64("affected", n).Msg("order transitioned")
		r.Events.StatusChanged(sessionRef, target, n, traceID)
	}
	r.remember(ctx, ack.EventID, log)
	return ack, nil
}

func (r *Reconciler) transition(ctx context.Context, sessionRef string, to orders.Status) (int64, error) {
	if to == orders.StatusPaid {
		return r.Store.MarkPaid(ctx, sessionRef)
	}
	return r.Store.MarkCanceled(ctx, sessionRef)
}

func (r *Reconciler) dedupKey(eventID string) string {
	return fmt.Sprintf(redisx.KeyDedup, r.ServiceName, eventID)
}

func (r *Reconciler) seen(ctx context.Context, eventID string, log zerolog.Logger) bool {
	if r.Dedup == nil || eventID == "" {
		return false
	}
	ok, err := redisx.Exists(ctx, r.Dedup, r.dedupKey(eventID))
	if err != nil {
		log.Warn().Err(err).Msg("dedup lookup failed")
		return false
	}
	return ok
}

func (r *Reconciler) remember(ctx context.Context, eventID string, log zerolog.Logger) {
	if r.Dedup == nil || eventID == "" {
		return
	}
	ttl := r.DedupTTL
	if ttl <= 0 {
		ttl = redisx.TTLDedup
	}
	if err := r.Dedup.Set(ctx, r.dedupKey(eventID), 1, ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("dedup store failed")
	}
}

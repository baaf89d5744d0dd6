package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ariefcatur/storefront/internal/payment"
	"github.com/ariefcatur/storefront/internal/reconcile"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Stripe caps event payloads well below this.
const maxWebhookBody = 1 << 20

type EventReconciler interface {
	Handle(ctx context.Context, payload []byte, sigHeader, traceID string) (reconcile.Ack, error)
}

type WebhookHandler struct {
	Reconciler EventReconciler
	Log        zerolog.Logger
}

func (h *WebhookHandler) Register(r chi.Router) {
	r.Post("/webhook", h.receive)
}

func (h *WebhookHandler) receive(w http.ResponseWriter, r *http.Request) {
	// the signature covers the exact bytes, so the body is never re-encoded
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ack, err := h.Reconciler.Handle(r.Context(), payload, r.Header.Get("Stripe-Signature"), middleware.GetReqID(r.Context()))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ack)
	case errors.Is(err, payment.ErrSignatureInvalid):
		writeError(w, http.StatusBadRequest, "signature verification failed")
	case errors.Is(err, payment.ErrMalformedEvent):
		writeError(w, http.StatusBadRequest, "malformed event")
	default:
		// provider redelivers on 5xx; transitions are idempotent
		writeError(w, http.StatusInternalServerError, "event not applied")
	}
}

package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/storefront/internal/cart"
	"github.com/ariefcatur/storefront/internal/checkout"
	"github.com/ariefcatur/storefront/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxCheckoutBody = 64 << 10

type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

type BuyerVerifier interface {
	Verify(token string) (string, error)
}

type CheckoutHandler struct {
	Service CheckoutService
	Buyers  BuyerVerifier // nil ignores Authorization
	Log     zerolog.Logger
}

type CheckoutReq struct {
	Items cart.Cart `json:"items"`
	Email string    `json:"email"`
}

type CheckoutResp struct {
	URL      string `json:"url"`
	OrderID  int64  `json:"order_id"`
	Replayed bool   `json:"replayed,omitempty"`
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/api/create-checkout-session", h.createSession)
}

func (h *CheckoutHandler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCheckoutBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	email := req.Email
	if h.Buyers != nil {
		token, err := identity.BearerToken(r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, identity.ErrNoToken):
		case err != nil:
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		default:
			if email, err = h.Buyers.Verify(token); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
		}
	}

	res, err := h.Service.Checkout(r.Context(), checkout.Request{
		Cart:           req.Items,
		BuyerEmail:     email,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		TraceID:        middleware.GetReqID(r.Context()),
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, CheckoutResp{URL: res.HostedURL, OrderID: res.OrderID, Replayed: res.Replayed})
	case errors.Is(err, checkout.ErrInvalidCheckout):
		writeError(w, http.StatusBadRequest, "cart empty")
	case errors.Is(err, checkout.ErrIdempotencyMismatch):
		writeError(w, http.StatusConflict, "idempotency key already used for a different checkout")
	case errors.Is(err, checkout.ErrCheckoutUnavailable):
		writeError(w, http.StatusServiceUnavailable, "failed creating session")
	case errors.Is(err, checkout.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "failed saving order")
	default:
		h.Log.Error().Err(err).Msg("checkout")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxAdminListLimit = 500

type OrderReader interface {
	GetOrder(ctx context.Context, orderID int64) (*orders.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]orders.OrderItem, error)
	ListOrders(ctx context.Context, limit int) ([]orders.Order, error)
}

type OperatorGate interface {
	Allow(authorizationHeader string) bool
}

type AdminHandler struct {
	Orders       OrderReader
	Operator     OperatorGate
	DefaultLimit int
	Log          zerolog.Logger
}

type OrderDetailResp struct {
	Order orders.Order       `json:"order"`
	Items []orders.OrderItem `json:"items"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.requireOperator)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
	})
}

func (h *AdminHandler) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Operator.Allow(r.Header.Get("Authorization")) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) limit(r *http.Request) int {
	limit := h.DefaultLimit
	if limit <= 0 {
		limit = 200
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	return min(limit, maxAdminListLimit)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Orders.ListOrders(ctx, h.limit(r))
	if err != nil {
		h.Log.Error().Err(err).Msg("list orders")
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Int64("order_id", id).Msg("get order")
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}
	items, err := h.Orders.ListItems(ctx, id)
	if err != nil {
		h.Log.Error().Err(err).Int64("order_id", id).Msg("list order items")
		writeError(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, OrderDetailResp{Order: *o, Items: items})
}

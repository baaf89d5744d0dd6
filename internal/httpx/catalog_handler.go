package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type CatalogHandler struct {
	Catalog catalog.Source
	Log     zerolog.Logger
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/api/products", h.listProducts)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		h.Log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("list products")
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

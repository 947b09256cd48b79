package httpx

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/safar/topup-store/internal/models"
	"github.com/safar/topup-store/internal/store"
)

type StorefrontHandler struct {
	DB *sql.DB
}

func (h *StorefrontHandler) Register(r *chi.Mux) {
	r.Get("/api/storefront", h.storefront)
}

type storefrontResponse struct {
	Banners   []models.Banner  `json:"banners"`
	FlashSale []models.Product `json:"flash_sale"`
}

// storefront feeds the landing page carousel: active banners plus the
// flash-sale products whose countdown is still running.
func (h *StorefrontHandler) storefront(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	banners, err := store.ListBanners(ctx, h.DB)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error processing transaction")
		return
	}

	flashSale, err := store.ListFlashSaleProducts(ctx, h.DB)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error processing transaction")
		return
	}

	writeJSON(w, http.StatusOK, storefrontResponse{
		Banners:   banners,
		FlashSale: flashSale,
	})
}

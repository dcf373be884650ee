package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nljewellers/ledger/internal/infra/gateway/goldapi"
	"github.com/nljewellers/ledger/internal/module/pricing"
)

// PricingServiceInterface defines the gold calculator operations
type PricingServiceInterface interface {
	CurrentRates(ctx context.Context) (*goldapi.Rates, error)
	Estimate(ctx context.Context, weight decimal.Decimal, purity string, makingPct decimal.Decimal) (*pricing.Estimate, error)
}

// PriceHandler handles gold price requests
type PriceHandler struct {
	service PricingServiceInterface
}

// NewPriceHandler creates a new price handler. service may be nil when no
// price API key is configured.
func NewPriceHandler(service PricingServiceInterface) *PriceHandler {
	return &PriceHandler{service: service}
}

// EstimateRequest is the calculator input.
type EstimateRequest struct {
	WeightGrams decimal.Decimal `json:"weightGrams"`
	Purity      string          `json:"purity"`
	MakingPct   decimal.Decimal `json:"makingPct"`
}

// GetRates handles GET /price
func (h *PriceHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondWithError(w, http.StatusServiceUnavailable, "price service not configured")
		return
	}

	rates, err := h.service.CurrentRates(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to fetch gold rates")
		return
	}

	respondWithJSON(w, http.StatusOK, rates)
}

// Estimate handles POST /price/estimate
func (h *PriceHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondWithError(w, http.StatusServiceUnavailable, "price service not configured")
		return
	}

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	est, err := h.service.Estimate(r.Context(), req.WeightGrams, req.Purity, req.MakingPct)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, est)
}

package handler

import (
	"net/http"

	"github.com/nljewellers/ledger/internal/module/stats"
)

// StatsServiceInterface defines the dashboard aggregate operations
type StatsServiceInterface interface {
	Summarize() *stats.Summary
}

// StatsHandler handles dashboard requests
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: service}
}

// GetStats handles GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Summarize())
}

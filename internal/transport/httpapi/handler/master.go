package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nljewellers/ledger/internal/ledger"
)

// MasterDataService defines the customer/item operations used by the
// master-data handlers.
type MasterDataService interface {
	Snapshot() *ledger.Snapshot
	SaveCustomer(ctx context.Context, c *ledger.Customer) error
	SaveItem(ctx context.Context, it *ledger.Item) error
}

// MasterHandler handles customer and item master-data requests
type MasterHandler struct {
	service MasterDataService
}

// NewMasterHandler creates a new master-data handler
func NewMasterHandler(service MasterDataService) *MasterHandler {
	return &MasterHandler{service: service}
}

// CustomersResponse lists customer records.
type CustomersResponse struct {
	Customers []*ledger.Customer `json:"customers"`
}

// ItemsResponse lists item records.
type ItemsResponse struct {
	Items []*ledger.Item `json:"items"`
}

// GetCustomers handles GET /customers
func (h *MasterHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	respondWithJSON(w, http.StatusOK, CustomersResponse{Customers: snap.Customers})
}

// SaveCustomer handles POST /customers
func (h *MasterHandler) SaveCustomer(w http.ResponseWriter, r *http.Request) {
	var c ledger.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SaveCustomer(r.Context(), &c); err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetItems handles GET /items
func (h *MasterHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	respondWithJSON(w, http.StatusOK, ItemsResponse{Items: snap.Items})
}

// SaveItem handles POST /items
func (h *MasterHandler) SaveItem(w http.ResponseWriter, r *http.Request) {
	var it ledger.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SaveItem(r.Context(), &it); err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

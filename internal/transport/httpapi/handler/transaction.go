package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nljewellers/ledger/internal/ledger"
	apperrors "github.com/nljewellers/ledger/internal/shared/errors"
)

// LedgerServiceInterface defines the reconciliation operations used by the
// transaction handler.
type LedgerServiceInterface interface {
	List(filters ledger.Filters) ledger.View
	SaveTransaction(ctx context.Context, tx *ledger.Transaction, mode ledger.EditMode) (*ledger.Transaction, error)
	BulkSetStatus(ctx context.Context, ids []string, status ledger.Status) error
}

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	service LedgerServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service LedgerServiceInterface) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// TransactionListResponse is the filtered view payload.
type TransactionListResponse struct {
	Transactions []*ledger.Transaction `json:"transactions"`
	TotalSale    string                `json:"totalSale"`
}

// SaveTransactionRequest carries the full record plus which side of the
// weight/sale relationship the user last edited.
type SaveTransactionRequest struct {
	Transaction ledger.Transaction `json:"transaction"`
	EditMode    ledger.EditMode    `json:"editMode"`
}

// SaveTransactionResponse echoes the saved (or attempted) record.
type SaveTransactionResponse struct {
	Transaction *ledger.Transaction `json:"transaction"`
}

// SaveFailedResponse is returned when the sheet write failed: the error
// classification plus the attempted record, so the client can re-open the
// form pre-filled and nothing the user typed is lost.
type SaveFailedResponse struct {
	Error       string              `json:"error"`
	Code        string              `json:"code"`
	Transaction *ledger.Transaction `json:"transaction"`
}

// BulkStatusRequest selects rows for a batched status change.
type BulkStatusRequest struct {
	IDs []string `json:"ids"`
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	view := h.service.List(filtersFromQuery(r))

	respondWithJSON(w, http.StatusOK, TransactionListResponse{
		Transactions: view.Rows,
		TotalSale:    view.TotalSale.StringFixed(3),
	})
}

// SaveTransaction handles POST /transactions
func (h *TransactionHandler) SaveTransaction(w http.ResponseWriter, r *http.Request) {
	var req SaveTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := req.EditMode
	if mode == "" {
		mode = ledger.EditModeWeights
	}
	if !mode.IsValid() {
		respondWithError(w, http.StatusBadRequest, "invalid edit mode")
		return
	}

	saved, err := h.service.SaveTransaction(r.Context(), &req.Transaction, mode)
	if err != nil {
		if ve, ok := ledger.AsValidationErrors(err); ok {
			respondValidationError(w, ve)
			return
		}
		if appErr := apperrors.GetAppError(err); appErr != nil {
			respondWithJSON(w, storeErrorStatus(appErr.Code), SaveFailedResponse{
				Error:       appErr.Message,
				Code:        appErr.Code,
				Transaction: saved,
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	respondWithJSON(w, http.StatusOK, SaveTransactionResponse{Transaction: saved})
}

// BulkDelete handles POST /transactions/bulk-delete (soft delete)
func (h *TransactionHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	h.bulkStatus(w, r, ledger.StatusDeleted)
}

// BulkMarkPaid handles POST /transactions/bulk-paid
func (h *TransactionHandler) BulkMarkPaid(w http.ResponseWriter, r *http.Request) {
	h.bulkStatus(w, r, ledger.StatusPaid)
}

func (h *TransactionHandler) bulkStatus(w http.ResponseWriter, r *http.Request, status ledger.Status) {
	var req BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.BulkSetStatus(r.Context(), req.IDs, status); err != nil {
		if errors.Is(err, ledger.ErrEmptySelection) {
			respondWithError(w, http.StatusBadRequest, "no transactions selected")
			return
		}
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filtersFromQuery reads the filter query parameters.
func filtersFromQuery(r *http.Request) ledger.Filters {
	q := r.URL.Query()
	return ledger.Filters{
		Text:     q.Get("q"),
		Purity:   q.Get("purity"),
		Status:   ledger.Status(q.Get("status")),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
	}
}

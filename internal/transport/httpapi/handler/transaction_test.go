package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nljewellers/ledger/internal/ledger"
	apperrors "github.com/nljewellers/ledger/internal/shared/errors"
	"github.com/nljewellers/ledger/internal/transport/httpapi/handler"
)

// mockLedgerService implements handler.LedgerServiceInterface for testing
type mockLedgerService struct {
	view        ledger.View
	gotFilters  ledger.Filters
	savedTx     *ledger.Transaction
	savedMode   ledger.EditMode
	saveResult  *ledger.Transaction
	saveErr     error
	bulkIDs     []string
	bulkStatus  ledger.Status
	bulkErr     error
}

func (m *mockLedgerService) List(filters ledger.Filters) ledger.View {
	m.gotFilters = filters
	return m.view
}

func (m *mockLedgerService) SaveTransaction(ctx context.Context, tx *ledger.Transaction, mode ledger.EditMode) (*ledger.Transaction, error) {
	m.savedTx = tx
	m.savedMode = mode
	if m.saveResult != nil {
		return m.saveResult, m.saveErr
	}
	return tx, m.saveErr
}

func (m *mockLedgerService) BulkSetStatus(ctx context.Context, ids []string, status ledger.Status) error {
	m.bulkIDs = ids
	m.bulkStatus = status
	return m.bulkErr
}

func TestGetTransactions(t *testing.T) {
	svc := &mockLedgerService{
		view: ledger.View{
			Rows:      []*ledger.Transaction{{ID: "1", Name: "Asha"}},
			TotalSale: decimal.RequireFromString("6.5"),
		},
	}
	h := handler.NewTransactionHandler(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/transactions?q=asha&purity=916&status=Returned&from=2026-03-01&to=2026-03-14", nil)
	rec := httptest.NewRecorder()
	h.GetTransactions(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.Filters{
		Text:     "asha",
		Purity:   "916",
		Status:   ledger.StatusReturned,
		DateFrom: "2026-03-01",
		DateTo:   "2026-03-14",
	}, svc.gotFilters)

	var resp handler.TransactionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "6.500", resp.TotalSale)
}

func TestSaveTransaction(t *testing.T) {
	post := func(t *testing.T, h *handler.TransactionHandler, body any) *httptest.ResponseRecorder {
		t.Helper()
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(data))
		rec := httptest.NewRecorder()
		h.SaveTransaction(rec, req)
		return rec
	}

	t.Run("Success", func(t *testing.T) {
		svc := &mockLedgerService{}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h, handler.SaveTransactionRequest{
			Transaction: ledger.Transaction{Name: "Asha", Item: "Chain", Quality: "916"},
			EditMode:    ledger.EditModeSale,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ledger.EditModeSale, svc.savedMode)
	})

	t.Run("Edit_Mode_Defaults_To_Weights", func(t *testing.T) {
		svc := &mockLedgerService{}
		h := handler.NewTransactionHandler(svc)

		post(t, h, handler.SaveTransactionRequest{
			Transaction: ledger.Transaction{Name: "Asha"},
		})

		assert.Equal(t, ledger.EditModeWeights, svc.savedMode)
	})

	t.Run("Unknown_Edit_Mode_Rejected", func(t *testing.T) {
		svc := &mockLedgerService{}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h, map[string]any{"transaction": map[string]any{}, "editMode": "both"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, svc.savedTx)
	})

	t.Run("Validation_Failure_Maps_To_422_With_Fields", func(t *testing.T) {
		svc := &mockLedgerService{
			saveErr: ledger.ValidationErrors{{Field: "name", Message: "customer name is required"}},
		}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h, handler.SaveTransactionRequest{})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp handler.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Fields, 1)
		assert.Equal(t, "name", resp.Fields[0].Field)
	})

	t.Run("Store_Failure_Echoes_Attempted_Record", func(t *testing.T) {
		attempted := &ledger.Transaction{ID: "123", Name: "Asha"}
		svc := &mockLedgerService{
			saveResult: attempted,
			saveErr:    apperrors.StoreUnreachable(context.DeadlineExceeded),
		}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h, handler.SaveTransactionRequest{})

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		var resp handler.SaveFailedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodeStoreUnreachable, resp.Code)
		require.NotNil(t, resp.Transaction)
		assert.Equal(t, "123", resp.Transaction.ID, "attempted record comes back for re-presentation")
	})

	t.Run("Store_Not_Configured_Is_503", func(t *testing.T) {
		svc := &mockLedgerService{saveErr: apperrors.StoreNotConfigured()}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h, handler.SaveTransactionRequest{})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestBulkEndpoints(t *testing.T) {
	post := func(t *testing.T, fn http.HandlerFunc, body any) *httptest.ResponseRecorder {
		t.Helper()
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/bulk", bytes.NewReader(data))
		rec := httptest.NewRecorder()
		fn(rec, req)
		return rec
	}

	t.Run("Bulk_Delete_Uses_Soft_Delete_Status", func(t *testing.T) {
		svc := &mockLedgerService{}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h.BulkDelete, handler.BulkStatusRequest{IDs: []string{"1", "2"}})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ledger.StatusDeleted, svc.bulkStatus)
		assert.Equal(t, []string{"1", "2"}, svc.bulkIDs)
	})

	t.Run("Bulk_Paid", func(t *testing.T) {
		svc := &mockLedgerService{}
		h := handler.NewTransactionHandler(svc)

		post(t, h.BulkMarkPaid, handler.BulkStatusRequest{IDs: []string{"1"}})
		assert.Equal(t, ledger.StatusPaid, svc.bulkStatus)
	})

	t.Run("Empty_Selection_Is_400", func(t *testing.T) {
		svc := &mockLedgerService{bulkErr: ledger.ErrEmptySelection}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h.BulkDelete, handler.BulkStatusRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown_ID_Is_404", func(t *testing.T) {
		svc := &mockLedgerService{bulkErr: ledger.ErrTransactionNotFound}
		h := handler.NewTransactionHandler(svc)

		rec := post(t, h.BulkMarkPaid, handler.BulkStatusRequest{IDs: []string{"nope"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

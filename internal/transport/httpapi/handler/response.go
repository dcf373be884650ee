package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nljewellers/ledger/internal/ledger"
	apperrors "github.com/nljewellers/ledger/internal/shared/errors"
)

// ErrorResponse is the error payload shape. Code carries the failure
// classification so clients can pick the right remediation hint; Fields is
// present for validation failures.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Fields []ledger.FieldError `json:"fields,omitempty"`
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError sends a plain error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondValidationError annotates the offending fields
func respondValidationError(w http.ResponseWriter, ve ledger.ValidationErrors) {
	respondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:  ve.Error(),
		Code:   apperrors.ErrCodeValidation,
		Fields: ve,
	})
}

// storeErrorStatus maps the store failure classification to an HTTP status.
func storeErrorStatus(code string) int {
	switch code {
	case apperrors.ErrCodeStoreNotConfigured:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeStoreUnreachable,
		apperrors.ErrCodeStoreForbidden,
		apperrors.ErrCodeStoreNotFound,
		apperrors.ErrCodeStoreBadResponse,
		apperrors.ErrCodeStoreRejected:
		return http.StatusBadGateway
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondAppError renders a classified error.
func respondAppError(w http.ResponseWriter, err error) {
	if ve, ok := ledger.AsValidationErrors(err); ok {
		respondValidationError(w, ve)
		return
	}
	if appErr := apperrors.GetAppError(err); appErr != nil {
		respondWithJSON(w, storeErrorStatus(appErr.Code), ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}

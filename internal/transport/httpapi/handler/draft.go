package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nljewellers/ledger/internal/ledger"
)

// DraftHandler persists and restores in-progress transaction forms.
type DraftHandler struct {
	store ledger.DraftStore
}

// NewDraftHandler creates a new draft handler. store may be nil when Redis
// is not configured; draft endpoints then answer 503.
func NewDraftHandler(store ledger.DraftStore) *DraftHandler {
	return &DraftHandler{store: store}
}

func (h *DraftHandler) unavailable(w http.ResponseWriter) bool {
	if h.store == nil {
		respondWithError(w, http.StatusServiceUnavailable, "draft storage not available")
		return true
	}
	return false
}

// GetDraft handles GET /drafts/{id}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	id := chi.URLParam(r, "id")
	draft, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load draft")
		return
	}
	if draft == nil {
		respondWithError(w, http.StatusNotFound, "no draft for this transaction")
		return
	}

	respondWithJSON(w, http.StatusOK, draft)
}

// PutDraft handles PUT /drafts/{id}
func (h *DraftHandler) PutDraft(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	var draft ledger.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft.ID = chi.URLParam(r, "id")

	if err := h.store.Put(r.Context(), &draft); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// DeleteDraft handles DELETE /drafts/{id}
func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to delete draft")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nljewellers/ledger/internal/ledger"
	"github.com/nljewellers/ledger/internal/module/export"
)

// ViewSource derives the filtered view to be exported.
type ViewSource interface {
	List(filters ledger.Filters) ledger.View
}

// ExportHandler streams the filtered ledger as a download.
type ExportHandler struct {
	source ViewSource
}

// NewExportHandler creates a new export handler
func NewExportHandler(source ViewSource) *ExportHandler {
	return &ExportHandler{source: source}
}

// Export handles GET /export?format=csv|xlsx plus the usual filter params.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	view := h.source.List(filtersFromQuery(r))
	now := time.Now()

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(now, "csv")))
		if err := export.WriteCSV(w, view.Rows); err != nil {
			// Headers are gone; all we can do is log via the outer
			// middleware and cut the stream.
			return
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(now, "xlsx")))
		if err := export.WriteXLSX(w, view.Rows, view.TotalSale); err != nil {
			return
		}
	default:
		respondWithError(w, http.StatusBadRequest, "unsupported export format")
	}
}

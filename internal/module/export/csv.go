// Package export renders the filtered ledger view as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nljewellers/ledger/internal/ledger"
)

// Columns is the export header, fixed by the sheet layout the shop has
// always used.
var Columns = []string{
	"ID",
	"Given Time",
	"Return Time",
	"Name",
	"Item",
	"Purity",
	"Weight Given (gm)",
	"Weight Return (gm)",
	"Sale (gm)",
	"Status",
}

// Filename returns the download filename for the given day, e.g.
// nl-jewellers-export-2026-09-01.csv.
func Filename(day time.Time, ext string) string {
	return fmt.Sprintf("nl-jewellers-export-%s.%s", day.Format(ledger.DateLayout), ext)
}

// WriteCSV writes the rows as RFC 4180 CSV. encoding/csv handles the
// quoting rules (embedded commas, quotes and newlines).
func WriteCSV(w io.Writer, rows []*ledger.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, tx := range rows {
		if err := cw.Write(record(tx)); err != nil {
			return fmt.Errorf("failed to write row %s: %w", tx.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// record flattens a transaction into export cells. Unset weights export as
// empty cells, not zeros.
func record(tx *ledger.Transaction) []string {
	return []string{
		tx.ID,
		tx.Date.String(),
		tx.ReturnTime.String(),
		tx.Name,
		tx.Item,
		tx.Quality,
		weightCell(tx.WeightGiven),
		weightCell(tx.WeightReturn),
		weightCell(tx.Sale),
		string(tx.Status),
	}
}

func weightCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(3)
}

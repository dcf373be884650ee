package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nljewellers/ledger/internal/ledger"
)

const sheetName = "Ledger"

// WriteXLSX writes the rows as a spreadsheet with a totals row, for owners
// who want to work on the export in Excel rather than re-import it.
func WriteXLSX(w io.Writer, rows []*ledger.Transaction, totalSale decimal.Decimal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, name := range Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, tx := range rows {
		for col, val := range record(tx) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return fmt.Errorf("failed to write row %s: %w", tx.ID, err)
			}
		}
	}

	// Totals row: label under Name, sum under Sale.
	totalRow := len(rows) + 2
	labelCell, err := excelize.CoordinatesToCellName(4, totalRow)
	if err != nil {
		return fmt.Errorf("failed to compute totals cell: %w", err)
	}
	if err := f.SetCellValue(sheetName, labelCell, "Total"); err != nil {
		return fmt.Errorf("failed to write totals label: %w", err)
	}
	saleCell, err := excelize.CoordinatesToCellName(9, totalRow)
	if err != nil {
		return fmt.Errorf("failed to compute totals cell: %w", err)
	}
	if err := f.SetCellValue(sheetName, saleCell, totalSale.StringFixed(3)); err != nil {
		return fmt.Errorf("failed to write total sale: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

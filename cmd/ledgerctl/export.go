package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nljewellers/ledger/internal/infra/gateway/sheets"
	"github.com/nljewellers/ledger/internal/infra/sqlite"
	"github.com/nljewellers/ledger/internal/ledger"
	"github.com/nljewellers/ledger/internal/module/export"
	"github.com/nljewellers/ledger/pkg/config"
)

var (
	exportFormat string
	exportOut    string
	exportAll    bool
	exportFrom   string
	exportTo     string
	exportText   string
	exportPurity string
	exportStatus string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to a CSV or XLSX file",
	Long: `Export fetches the current ledger from the sheet (or the local mirror
when the sheet is unreachable) and writes it to a file. Without filter
flags only today's transactions are exported; pass --all for the full
ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default nl-jewellers-export-<date>.<ext>)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export the full ledger instead of today's entries")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVarP(&exportText, "query", "q", "", "Match name or item (case-insensitive substring)")
	exportCmd.Flags().StringVar(&exportPurity, "purity", "", "Filter by purity code (916, 750, ...)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Filter by status")
}

func runExport() error {
	if exportFormat != "csv" && exportFormat != "xlsx" {
		return fmt.Errorf("unsupported format %q", exportFormat)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := fetchSnapshot(ctx, cfg)
	if err != nil {
		return err
	}
	snap = snap.DropDeleted()

	filters := ledger.Filters{
		Text:     exportText,
		Purity:   exportPurity,
		Status:   ledger.Status(exportStatus),
		DateFrom: exportFrom,
		DateTo:   exportTo,
	}
	if exportAll && filters.DateFrom == "" {
		// An open lower bound keeps the filter active so the view does
		// not collapse to today's entries.
		filters.DateFrom = "1970-01-01"
	}

	now := time.Now()
	view := ledger.DeriveView(snap, filters, now)

	out := exportOut
	if out == "" {
		out = export.Filename(now, exportFormat)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	switch exportFormat {
	case "csv":
		err = export.WriteCSV(f, view.Rows)
	case "xlsx":
		err = export.WriteXLSX(f, view.Rows, view.TotalSale)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("Wrote %d transaction(s) to %s (total sale %s)\n",
		len(view.Rows), out, view.TotalSale.StringFixed(3))
	return nil
}

// fetchSnapshot prefers the sheet and falls back to the local mirror.
func fetchSnapshot(ctx context.Context, cfg *config.Config) (*ledger.Snapshot, error) {
	if cfg.SheetURL != "" {
		client := sheets.NewClientWithTimeout(cfg.SheetURL, cfg.SheetTimeout)
		snap, err := client.FetchAll(ctx)
		if err == nil {
			return snap, nil
		}
		fmt.Fprintf(os.Stderr, "sheet fetch failed (%v), trying mirror\n", err)
	}

	if cfg.MirrorPath == "" {
		return nil, fmt.Errorf("sheet unreachable and no mirror configured")
	}

	m, err := sqlite.Open(cfg.MirrorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}
	defer m.Close()

	return m.Load(ctx)
}

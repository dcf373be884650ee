package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Filters narrows the transaction list. Zero-valued fields are inactive.
type Filters struct {
	// Text matches case-insensitively as a substring of name or item.
	Text string
	// Purity matches the quality code exactly.
	Purity string
	// Status matches exactly; empty means all statuses.
	Status Status
	// DateFrom/DateTo bound the date part (YYYY-MM-DD) inclusively.
	DateFrom string
	DateTo   string
}

// Active reports whether any filter is set. With no filter active the view
// is restricted to the current calendar day.
func (f Filters) Active() bool {
	return f.Text != "" || f.Purity != "" || f.Status != "" || f.DateFrom != "" || f.DateTo != ""
}

// View is a derived, ordered read model over the cache.
type View struct {
	Rows []*Transaction
	// TotalSale sums sale over the rows, nil sales counting as zero.
	TotalSale decimal.Decimal
}

// DeriveView filters, sorts and aggregates a snapshot. It is a pure
// function: identical inputs produce identical output ordering. today
// determines the default current-day restriction.
func DeriveView(snap *Snapshot, f Filters, today time.Time) View {
	todayStr := today.Format(DateLayout)
	active := f.Active()

	rows := make([]*Transaction, 0, len(snap.Transactions))
	total := decimal.Zero

	for _, tx := range snap.Transactions {
		// Soft-deleted rows are invisible regardless of filters.
		if tx.Status == StatusDeleted {
			continue
		}
		if !active {
			if tx.Date.DatePart() != todayStr {
				continue
			}
		} else if !matches(tx, f) {
			continue
		}

		rows = append(rows, tx)
		if tx.Sale != nil {
			total = total.Add(*tx.Sale)
		}
	}

	// Most recent first, always as the final step. The sort is stable so
	// equal timestamps keep their cache order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date.Time)
	})

	return View{Rows: rows, TotalSale: total}
}

func matches(tx *Transaction, f Filters) bool {
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(tx.Name), needle) &&
			!strings.Contains(strings.ToLower(tx.Item), needle) {
			return false
		}
	}
	if f.Purity != "" && tx.Quality != f.Purity {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.DateFrom != "" || f.DateTo != "" {
		day := tx.Date.DatePart()
		if day == "" {
			return false
		}
		if f.DateFrom != "" && day < f.DateFrom {
			return false
		}
		if f.DateTo != "" && day > f.DateTo {
			return false
		}
	}
	return true
}

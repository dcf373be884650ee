// Package stats computes the dashboard aggregates shown on the ledger's
// statistics view.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nljewellers/ledger/internal/ledger"
)

// SnapshotSource provides the current ledger state.
type SnapshotSource interface {
	Snapshot() *ledger.Snapshot
}

// Service derives dashboard figures from the cache.
type Service struct {
	source SnapshotSource
	now    func() time.Time
}

// NewService creates a stats service.
func NewService(source SnapshotSource) *Service {
	return &Service{source: source, now: time.Now}
}

// CustomerOutstanding is unreturned weight attributed to one customer.
type CustomerOutstanding struct {
	Name        string          `json:"name"`
	Outstanding decimal.Decimal `json:"outstandingGrams"`
	OpenCount   int             `json:"openCount"`
}

// TopCustomer ranks customers by total sale weight.
type TopCustomer struct {
	Name      string          `json:"name"`
	TotalSale decimal.Decimal `json:"totalSaleGrams"`
}

// Summary is the dashboard payload.
type Summary struct {
	TodayGiven    decimal.Decimal       `json:"todayGivenGrams"`
	TodayReturned decimal.Decimal       `json:"todayReturnedGrams"`
	TodaySale     decimal.Decimal       `json:"todaySaleGrams"`
	StatusCounts  map[string]int        `json:"statusCounts"`
	Outstanding   []CustomerOutstanding `json:"outstanding"`
	TopCustomers  []TopCustomer         `json:"topCustomers"`
}

// Summarize computes all dashboard aggregates in one pass over the cache.
// Soft-deleted rows are already absent from the snapshot.
func (s *Service) Summarize() *Summary {
	snap := s.source.Snapshot()
	today := s.now().Format(ledger.DateLayout)

	summary := &Summary{
		StatusCounts: map[string]int{
			string(ledger.StatusNotReturned): 0,
			string(ledger.StatusReturned):    0,
			string(ledger.StatusPaid):        0,
		},
	}

	outstanding := make(map[string]*CustomerOutstanding)
	sales := make(map[string]decimal.Decimal)

	for _, tx := range snap.Transactions {
		if tx.Status == ledger.StatusDeleted {
			continue
		}

		summary.StatusCounts[string(tx.Status)]++

		if tx.Date.DatePart() == today {
			if tx.WeightGiven != nil {
				summary.TodayGiven = summary.TodayGiven.Add(*tx.WeightGiven)
			}
			if tx.WeightReturn != nil {
				summary.TodayReturned = summary.TodayReturned.Add(*tx.WeightReturn)
			}
			if tx.Sale != nil {
				summary.TodaySale = summary.TodaySale.Add(*tx.Sale)
			}
		}

		if tx.Status == ledger.StatusNotReturned && tx.WeightGiven != nil {
			o, ok := outstanding[tx.Name]
			if !ok {
				o = &CustomerOutstanding{Name: tx.Name}
				outstanding[tx.Name] = o
			}
			open := *tx.WeightGiven
			if tx.WeightReturn != nil {
				open = open.Sub(*tx.WeightReturn)
			}
			o.Outstanding = o.Outstanding.Add(open)
			o.OpenCount++
		}

		if tx.Sale != nil && !tx.Sale.IsZero() {
			sales[tx.Name] = sales[tx.Name].Add(*tx.Sale)
		}
	}

	summary.Outstanding = make([]CustomerOutstanding, 0, len(outstanding))
	for _, o := range outstanding {
		summary.Outstanding = append(summary.Outstanding, *o)
	}
	sort.Slice(summary.Outstanding, func(i, j int) bool {
		if summary.Outstanding[i].Outstanding.Equal(summary.Outstanding[j].Outstanding) {
			return summary.Outstanding[i].Name < summary.Outstanding[j].Name
		}
		return summary.Outstanding[i].Outstanding.GreaterThan(summary.Outstanding[j].Outstanding)
	})

	summary.TopCustomers = make([]TopCustomer, 0, len(sales))
	for name, total := range sales {
		summary.TopCustomers = append(summary.TopCustomers, TopCustomer{Name: name, TotalSale: total})
	}
	sort.Slice(summary.TopCustomers, func(i, j int) bool {
		if summary.TopCustomers[i].TotalSale.Equal(summary.TopCustomers[j].TotalSale) {
			return summary.TopCustomers[i].Name < summary.TopCustomers[j].Name
		}
		return summary.TopCustomers[i].TotalSale.GreaterThan(summary.TopCustomers[j].TotalSale)
	})
	if len(summary.TopCustomers) > 5 {
		summary.TopCustomers = summary.TopCustomers[:5]
	}

	return summary
}

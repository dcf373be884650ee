package stats_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nljewellers/ledger/internal/ledger"
	"github.com/nljewellers/ledger/internal/module/stats"
)

type fixedSource struct {
	snap *ledger.Snapshot
}

func (f *fixedSource) Snapshot() *ledger.Snapshot { return f.snap }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestSummarize(t *testing.T) {
	today := ledger.NewTime(time.Now())
	yesterday := ledger.NewTime(time.Now().Add(-24 * time.Hour))

	snap := &ledger.Snapshot{
		Transactions: []*ledger.Transaction{
			{
				ID: "1", Date: today, Name: "Asha",
				WeightGiven: dec("10"), WeightReturn: dec("4"), Sale: dec("6"),
				Status: ledger.StatusReturned,
			},
			{
				ID: "2", Date: today, Name: "Ravi",
				WeightGiven: dec("20"),
				Status:      ledger.StatusNotReturned,
			},
			{
				ID: "3", Date: yesterday, Name: "Ravi",
				WeightGiven: dec("5"), Sale: dec("2"),
				Status: ledger.StatusNotReturned,
			},
			{
				ID: "4", Date: yesterday, Name: "Meena",
				WeightGiven: dec("8"), WeightReturn: dec("8"), Sale: dec("0"),
				Status: ledger.StatusPaid,
			},
			{
				ID: "5", Date: today, Name: "Ghost",
				WeightGiven: dec("99"), Sale: dec("99"),
				Status: ledger.StatusDeleted,
			},
		},
	}

	summary := stats.NewService(&fixedSource{snap: snap}).Summarize()

	t.Run("Today_Totals", func(t *testing.T) {
		assert.True(t, summary.TodayGiven.Equal(decimal.RequireFromString("30")))
		assert.True(t, summary.TodayReturned.Equal(decimal.RequireFromString("4")))
		assert.True(t, summary.TodaySale.Equal(decimal.RequireFromString("6")), "deleted row excluded")
	})

	t.Run("Status_Counts", func(t *testing.T) {
		assert.Equal(t, 2, summary.StatusCounts[string(ledger.StatusNotReturned)])
		assert.Equal(t, 1, summary.StatusCounts[string(ledger.StatusReturned)])
		assert.Equal(t, 1, summary.StatusCounts[string(ledger.StatusPaid)])
		_, hasDeleted := summary.StatusCounts[string(ledger.StatusDeleted)]
		assert.False(t, hasDeleted)
	})

	t.Run("Outstanding_Per_Customer", func(t *testing.T) {
		require.Len(t, summary.Outstanding, 1)
		o := summary.Outstanding[0]
		assert.Equal(t, "Ravi", o.Name)
		assert.True(t, o.Outstanding.Equal(decimal.RequireFromString("25")), "both open rows summed")
		assert.Equal(t, 2, o.OpenCount)
	})

	t.Run("Top_Customers_By_Sale", func(t *testing.T) {
		require.Len(t, summary.TopCustomers, 2, "zero and deleted sales are not ranked")
		assert.Equal(t, "Asha", summary.TopCustomers[0].Name)
		assert.Equal(t, "Ravi", summary.TopCustomers[1].Name)
	})
}

func TestSummarize_EmptyLedger(t *testing.T) {
	summary := stats.NewService(&fixedSource{snap: ledger.NewSnapshot()}).Summarize()

	assert.True(t, summary.TodayGiven.IsZero())
	assert.Empty(t, summary.Outstanding)
	assert.Empty(t, summary.TopCustomers)
	assert.Equal(t, 0, summary.StatusCounts[string(ledger.StatusReturned)])
}

func TestSummarize_TopFiveLimit(t *testing.T) {
	today := ledger.NewTime(time.Now())
	snap := ledger.NewSnapshot()
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, name := range names {
		sale := decimal.NewFromInt(int64(i + 1))
		snap.Transactions = append(snap.Transactions, &ledger.Transaction{
			ID: name, Date: today, Name: name,
			WeightGiven: dec("10"), Sale: &sale,
			Status: ledger.StatusReturned,
		})
	}

	summary := stats.NewService(&fixedSource{snap: snap}).Summarize()

	require.Len(t, summary.TopCustomers, 5)
	assert.Equal(t, "G", summary.TopCustomers[0].Name, "highest sale first")
	assert.Equal(t, "C", summary.TopCustomers[4].Name)
}

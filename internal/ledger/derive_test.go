package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nljewellers/ledger/internal/ledger"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDerive_WeightsMode(t *testing.T) {
	now := time.Date(2026, 3, 14, 11, 30, 0, 0, time.Local)

	t.Run("Sale_From_Weights", func(t *testing.T) {
		tx := &ledger.Transaction{
			Date:         ledger.NewTime(now.Add(-2 * time.Hour)),
			WeightGiven:  dec("10"),
			WeightReturn: dec("4"),
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		require.NotNil(t, tx.Sale)
		assert.True(t, tx.Sale.Equal(decimal.RequireFromString("6")), "sale = given - returned")
		assert.Equal(t, ledger.StatusReturned, tx.Status)
		assert.Equal(t, "2026-03-14T11:30", tx.ReturnTime.String(), "return time stamped on first derivation")
	})

	t.Run("Scale_Jitter_Clamps_To_Zero", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven:  dec("10.000"),
			WeightReturn: dec("9.990"),
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		require.NotNil(t, tx.Sale)
		assert.True(t, tx.Sale.IsZero(), "a 0.010g difference is scale noise, not a sale")
		assert.Equal(t, ledger.StatusReturned, tx.Status)
	})

	t.Run("Just_Above_Epsilon_Is_Kept", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven:  dec("10.000"),
			WeightReturn: dec("9.984"),
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		require.NotNil(t, tx.Sale)
		assert.Equal(t, "0.016", tx.Sale.StringFixed(3))
	})

	t.Run("Missing_Return_Clears_Sale_And_ReturnTime", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven: dec("10"),
			Sale:        dec("3"),
			ReturnTime:  ledger.NewTime(now),
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		assert.Nil(t, tx.Sale)
		assert.True(t, tx.ReturnTime.IsZero())
		assert.Equal(t, ledger.StatusNotReturned, tx.Status)
	})

	t.Run("Existing_ReturnTime_Is_Preserved", func(t *testing.T) {
		earlier := ledger.NewTime(now.Add(-24 * time.Hour))
		tx := &ledger.Transaction{
			WeightGiven:  dec("5"),
			WeightReturn: dec("5"),
			ReturnTime:   earlier,
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		assert.Equal(t, earlier.String(), tx.ReturnTime.String())
	})
}

func TestDerive_SaleMode(t *testing.T) {
	now := time.Date(2026, 3, 14, 11, 30, 0, 0, time.Local)

	t.Run("Return_From_Sale", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven: dec("10"),
			Sale:        dec("4"),
		}

		ledger.Derive(tx, ledger.EditModeSale, now)

		require.NotNil(t, tx.WeightReturn)
		assert.True(t, tx.WeightReturn.Equal(decimal.RequireFromString("6")))
		assert.Equal(t, ledger.StatusReturned, tx.Status)
		assert.False(t, tx.ReturnTime.IsZero())
	})

	t.Run("Sale_Exceeding_Given_Clears_Return", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven:  dec("10"),
			Sale:         dec("12"),
			WeightReturn: dec("1"),
			ReturnTime:   ledger.NewTime(now),
		}

		ledger.Derive(tx, ledger.EditModeSale, now)

		assert.Nil(t, tx.WeightReturn, "no negative return weights")
		assert.True(t, tx.ReturnTime.IsZero())
		assert.Equal(t, ledger.StatusNotReturned, tx.Status)
	})

	t.Run("Sale_Equal_To_Given_Clears_Return", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven: dec("10"),
			Sale:        dec("10"),
		}

		ledger.Derive(tx, ledger.EditModeSale, now)

		assert.Nil(t, tx.WeightReturn)
		assert.Equal(t, ledger.StatusNotReturned, tx.Status)
	})

	t.Run("Missing_Sale_Clears_Return_Fields", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven:  dec("10"),
			WeightReturn: dec("4"),
			ReturnTime:   ledger.NewTime(now),
		}

		ledger.Derive(tx, ledger.EditModeSale, now)

		assert.Nil(t, tx.WeightReturn)
		assert.True(t, tx.ReturnTime.IsZero())
	})
}

func TestDerive_StatusRule(t *testing.T) {
	now := time.Now()

	t.Run("Paid_Is_Sticky", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven:  dec("10"),
			WeightReturn: dec("4"),
			Status:       ledger.StatusPaid,
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		assert.Equal(t, ledger.StatusPaid, tx.Status, "manual Paid survives re-derivation")
	})

	t.Run("Deleted_Is_Terminal", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven:  dec("10"),
			WeightReturn: dec("4"),
			Status:       ledger.StatusDeleted,
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		assert.Equal(t, ledger.StatusDeleted, tx.Status)
	})

	t.Run("Given_Without_Return_Is_NotReturned", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven: dec("10"),
			Status:      ledger.StatusReturned,
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		assert.Equal(t, ledger.StatusNotReturned, tx.Status)
	})

	t.Run("Zero_Return_Weight_Is_NotReturned", func(t *testing.T) {
		tx := &ledger.Transaction{
			WeightGiven:  dec("10"),
			WeightReturn: dec("0"),
		}

		ledger.Derive(tx, ledger.EditModeWeights, now)

		assert.Equal(t, ledger.StatusNotReturned, tx.Status)
	})
}

func TestDerive_Idempotent(t *testing.T) {
	now := time.Now()
	tx := &ledger.Transaction{
		WeightGiven:  dec("12.500"),
		WeightReturn: dec("7.250"),
	}

	ledger.Derive(tx, ledger.EditModeWeights, now)
	first := tx.Clone()
	ledger.Derive(tx, ledger.EditModeWeights, now.Add(time.Hour))

	assert.True(t, first.Sale.Equal(*tx.Sale))
	assert.Equal(t, first.ReturnTime.String(), tx.ReturnTime.String())
	assert.Equal(t, first.Status, tx.Status)
}

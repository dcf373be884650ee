package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nljewellers/ledger/pkg/grams"
)

// EditMode records which side of the weight/sale relationship the user last
// edited. The two modes are mutually exclusive: weights drive sale, or sale
// drives the return weight, never both in one edit.
type EditMode string

const (
	// EditModeWeights derives sale from the given and returned weights.
	EditModeWeights EditMode = "weights"
	// EditModeSale derives the return weight from a directly entered sale.
	EditModeSale EditMode = "sale"
)

// IsValid checks if the edit mode is a known value.
func (m EditMode) IsValid() bool {
	return m == EditModeWeights || m == EditModeSale
}

// Derive recomputes the dependent fields of tx in place according to the
// edit mode, then applies the status rule. now supplies the return
// timestamp when one needs to be set.
func Derive(tx *Transaction, mode EditMode, now time.Time) {
	switch mode {
	case EditModeSale:
		deriveFromSale(tx, now)
	default:
		deriveFromWeights(tx, now)
	}
	deriveStatus(tx)
}

// deriveFromWeights computes sale = round3(given - returned), clamped to
// zero at or below the scale epsilon. Sale is cleared unless both weights
// are present.
func deriveFromWeights(tx *Transaction, now time.Time) {
	if tx.WeightGiven == nil || tx.WeightReturn == nil {
		tx.Sale = nil
		if tx.WeightReturn == nil {
			tx.ReturnTime = Time{}
		}
		return
	}

	sale := grams.ClampSale(tx.WeightGiven.Sub(*tx.WeightReturn))
	tx.Sale = &sale

	if tx.ReturnTime.IsZero() {
		tx.ReturnTime = NewTime(now)
	}
}

// deriveFromSale computes weightReturn = round3(given - sale). A sale
// larger than the given weight clears the return fields rather than
// producing a negative weight.
func deriveFromSale(tx *Transaction, now time.Time) {
	if tx.WeightGiven == nil || tx.Sale == nil {
		tx.WeightReturn = nil
		tx.ReturnTime = Time{}
		return
	}

	ret := grams.Round3(tx.WeightGiven.Sub(*tx.Sale))
	if ret.IsPositive() {
		tx.WeightReturn = &ret
		if tx.ReturnTime.IsZero() {
			tx.ReturnTime = NewTime(now)
		}
		return
	}

	tx.WeightReturn = nil
	tx.ReturnTime = Time{}
}

// deriveStatus applies the automatic status rule. A manually set Paid is
// sticky: the rule never downgrades it. Deleted is terminal.
func deriveStatus(tx *Transaction) {
	if tx.Status == StatusPaid || tx.Status == StatusDeleted {
		return
	}

	given := tx.WeightGiven != nil && tx.WeightGiven.IsPositive()
	returned := tx.WeightReturn != nil && tx.WeightReturn.IsPositive()

	if given && returned {
		tx.Status = StatusReturned
	} else {
		tx.Status = StatusNotReturned
	}
}

// nonNegative reports whether a nullable weight is either unset or >= 0.
func nonNegative(d *decimal.Decimal) bool {
	return d == nil || !d.IsNegative()
}

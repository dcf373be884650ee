package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransactionNotFound is returned when a referenced row is absent
	// from the cache.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrEmptySelection is returned for bulk operations with no IDs.
	ErrEmptySelection = errors.New("no transactions selected")
)

// FieldError describes a single invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates per-field failures so the caller can annotate
// the offending inputs. It never touches the cache.
type ValidationErrors []FieldError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AsValidationErrors extracts ValidationErrors from an error chain.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// PurityTable is the set of accepted purity codes, injected from config.
type PurityTable interface {
	IsValidCode(code string) bool
}

// ValidateTransaction checks a transaction before submission. Failures
// block the save and are reported per field.
func ValidateTransaction(tx *Transaction, purities PurityTable) error {
	var errs ValidationErrors

	if strings.TrimSpace(tx.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "customer name is required"})
	}
	if strings.TrimSpace(tx.Item) == "" {
		errs = append(errs, FieldError{Field: "item", Message: "item is required"})
	}
	if tx.Quality == "" {
		errs = append(errs, FieldError{Field: "quality", Message: "purity is required"})
	} else if purities != nil && !purities.IsValidCode(tx.Quality) {
		errs = append(errs, FieldError{Field: "quality", Message: "unknown purity code"})
	}
	if tx.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Message: "given date is required"})
	}
	if !nonNegative(tx.WeightGiven) {
		errs = append(errs, FieldError{Field: "weightGiven", Message: "weight cannot be negative"})
	}
	if !nonNegative(tx.WeightReturn) {
		errs = append(errs, FieldError{Field: "weightReturn", Message: "weight cannot be negative"})
	}
	if !nonNegative(tx.Sale) {
		errs = append(errs, FieldError{Field: "sale", Message: "sale cannot be negative"})
	}
	if !tx.ReturnTime.IsZero() && !tx.Date.IsZero() && tx.ReturnTime.Before(tx.Date.Time) {
		errs = append(errs, FieldError{Field: "returnTime", Message: "return time cannot precede the given date"})
	}
	if tx.Status != "" && !tx.Status.IsValid() {
		errs = append(errs, FieldError{Field: "status", Message: "unknown status"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateCustomer checks a customer record before submission.
func ValidateCustomer(c *Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return ValidationErrors{{Field: "name", Message: "customer name is required"}}
	}
	return nil
}

// ValidateItem checks an item record before submission.
func ValidateItem(i *Item) error {
	if strings.TrimSpace(i.Name) == "" {
		return ValidationErrors{{Field: "name", Message: "item name is required"}}
	}
	return nil
}

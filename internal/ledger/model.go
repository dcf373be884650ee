package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimeLayout is the minute-precision local timestamp format used on ledger
// rows. The sheet stores timestamps in this form verbatim.
const TimeLayout = "2006-01-02T15:04"

// DateLayout is the date part used for day filtering.
const DateLayout = "2006-01-02"

// Time is a minute-precision local timestamp. The zero value marshals as an
// empty string, which is how the sheet represents "not yet returned".
type Time struct {
	time.Time
}

// NewTime truncates t to minute precision.
func NewTime(t time.Time) Time {
	return Time{t.Truncate(time.Minute)}
}

// ParseTime parses a minute-precision timestamp. Empty input yields the
// zero Time.
func ParseTime(s string) (Time, error) {
	if s == "" {
		return Time{}, nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return Time{}, err
	}
	return Time{t}, nil
}

// String renders the timestamp, or "" for the zero value.
func (t Time) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// DatePart returns the YYYY-MM-DD portion, or "" for the zero value.
func (t Time) DatePart() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusNotReturned Status = "Not Returned"
	StatusReturned    Status = "Returned"
	StatusPaid        Status = "Paid"

	// StatusDeleted is a soft-delete marker. Deleted rows stay in the sheet
	// but never appear in any derived view.
	StatusDeleted Status = "Deleted"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotReturned, StatusReturned, StatusPaid, StatusDeleted:
		return true
	}
	return false
}

// Transaction is a single give/return ledger entry.
//
// Weight fields are nil when unset; a nil sale is distinct from a zero
// sale (fully returned). Records are always written whole, never patched.
type Transaction struct {
	ID           string           `json:"id"`
	Date         Time             `json:"date"`
	ReturnTime   Time             `json:"returnTime"`
	Name         string           `json:"name"`
	Item         string           `json:"item"`
	Quality      string           `json:"quality"`
	WeightGiven  *decimal.Decimal `json:"weightGiven"`
	WeightReturn *decimal.Decimal `json:"weightReturn"`
	Sale         *decimal.Decimal `json:"sale"`
	Status       Status           `json:"status"`
}

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	c.WeightGiven = cloneDecimal(t.WeightGiven)
	c.WeightReturn = cloneDecimal(t.WeightReturn)
	c.Sale = cloneDecimal(t.Sale)
	return &c
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// Customer is a master-data record keyed case-insensitively by name.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Item is a master-data record keyed case-insensitively by name.
type Item struct {
	Name string `json:"name"`
}

// NewID generates a transaction identifier derived from the given instant.
// IDs double as the sheet row key, so they only need to be unique within
// one shop's ledger.
func NewID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// UniqueID generates an ID that does not collide with exists. Collisions
// happen when two saves land within the same millisecond; the uuid suffix
// disambiguates them.
func UniqueID(now time.Time, exists func(string) bool) string {
	id := NewID(now)
	if !exists(id) {
		return id
	}
	return id + "-" + strings.Split(uuid.NewString(), "-")[0]
}

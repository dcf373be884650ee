package ledger

import (
	"context"
	"time"
)

// Mutation action tags understood by the sheet Web App. The script applies
// each idempotently, keyed by the record's id (transactions) or name
// (customers, items).
const (
	ActionSaveTransaction      = "SAVE_TRANSACTION"
	ActionBulkSaveTransactions = "BULK_SAVE_TRANSACTIONS"
	ActionSaveCustomer         = "SAVE_CUSTOMER"
	ActionSaveItem             = "SAVE_ITEM"
)

// RemoteStore is the durable owner of record: the spreadsheet Web App.
type RemoteStore interface {
	// FetchAll reads the complete sheet state. Safe to call cold.
	FetchAll(ctx context.Context) (*Snapshot, error)

	// Mutate applies one write. Anything but an explicit success response
	// is an error; the caller decides whether to retry.
	Mutate(ctx context.Context, action string, payload any) error
}

// Mirror persists the last known sheet state locally so the service can
// come up read-only when the sheet is unreachable.
type Mirror interface {
	// ReplaceAll overwrites the mirror with the snapshot atomically.
	ReplaceAll(ctx context.Context, snap *Snapshot) error

	// Load reads the mirrored snapshot.
	Load(ctx context.Context) (*Snapshot, error)

	// Ping checks mirror availability.
	Ping(ctx context.Context) error
}

// Draft is an in-progress transaction form, persisted so a half-filled
// form survives the client going away.
type Draft struct {
	ID          string      `json:"id"` // transaction ID, or "new"
	Transaction Transaction `json:"transaction"`
	Mode        EditMode    `json:"mode"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// DraftStore persists form drafts keyed by transaction ID.
type DraftStore interface {
	// Put saves a draft. Implementations may debounce the physical write;
	// the latest value always supersedes any pending one.
	Put(ctx context.Context, draft *Draft) error

	// Get returns the draft for the key, or nil when none exists.
	Get(ctx context.Context, id string) (*Draft, error)

	// Delete discards the draft, called on save or cancel.
	Delete(ctx context.Context, id string) error
}

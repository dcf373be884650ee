// Package sqlite keeps a local copy of the last known sheet state so the
// service can come up and serve reads when the sheet is unreachable.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/nljewellers/ledger/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id            TEXT PRIMARY KEY,
	date          TEXT NOT NULL,
	return_time   TEXT NOT NULL DEFAULT '',
	name          TEXT NOT NULL,
	item          TEXT NOT NULL,
	quality       TEXT NOT NULL DEFAULT '',
	weight_given  TEXT,
	weight_return TEXT,
	sale          TEXT,
	status        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS customers (
	name  TEXT PRIMARY KEY COLLATE NOCASE,
	phone TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS items (
	name TEXT PRIMARY KEY COLLATE NOCASE
);
`

// Mirror is a sqlite-backed copy of the sheet.
type Mirror struct {
	db *sql.DB
}

// Open opens (and if necessary initializes) the mirror database at path.
func Open(path string) (*Mirror, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	// The mirror is written by one goroutine at a time; a single
	// connection avoids sqlite's multi-writer locking errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize mirror schema: %w", err)
	}

	return &Mirror{db: db}, nil
}

// Close closes the underlying database.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// Ping checks mirror availability.
func (m *Mirror) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// ReplaceAll overwrites the mirror with the snapshot in one transaction.
func (m *Mirror) ReplaceAll(ctx context.Context, snap *ledger.Snapshot) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin mirror transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "customers", "items"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, t := range snap.Transactions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, date, return_time, name, item, quality, weight_given, weight_return, sale, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Date.String(), t.ReturnTime.String(), t.Name, t.Item, t.Quality,
			decimalToNull(t.WeightGiven), decimalToNull(t.WeightReturn), decimalToNull(t.Sale),
			string(t.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}

	for _, c := range snap.Customers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO customers (name, phone) VALUES (?, ?)", c.Name, c.Phone); err != nil {
			return fmt.Errorf("failed to insert customer %s: %w", c.Name, err)
		}
	}

	for _, it := range snap.Items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items (name) VALUES (?)", it.Name); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", it.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mirror transaction: %w", err)
	}
	return nil
}

// Load reads the mirrored snapshot.
func (m *Mirror) Load(ctx context.Context) (*ledger.Snapshot, error) {
	snap := ledger.NewSnapshot()

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, date, return_time, name, item, quality, weight_given, weight_return, sale, status
		 FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t                ledger.Transaction
			date, returnTime string
			given, ret, sale sql.NullString
			status           string
		)
		if err := rows.Scan(&t.ID, &date, &returnTime, &t.Name, &t.Item, &t.Quality,
			&given, &ret, &sale, &status); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if t.Date, err = ledger.ParseTime(date); err != nil {
			return nil, fmt.Errorf("corrupt date on row %s: %w", t.ID, err)
		}
		if t.ReturnTime, err = ledger.ParseTime(returnTime); err != nil {
			return nil, fmt.Errorf("corrupt return time on row %s: %w", t.ID, err)
		}
		if t.WeightGiven, err = nullToDecimal(given); err != nil {
			return nil, fmt.Errorf("corrupt weight on row %s: %w", t.ID, err)
		}
		if t.WeightReturn, err = nullToDecimal(ret); err != nil {
			return nil, fmt.Errorf("corrupt weight on row %s: %w", t.ID, err)
		}
		if t.Sale, err = nullToDecimal(sale); err != nil {
			return nil, fmt.Errorf("corrupt sale on row %s: %w", t.ID, err)
		}
		t.Status = ledger.Status(status)

		snap.Transactions = append(snap.Transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	custRows, err := m.db.QueryContext(ctx, "SELECT name, phone FROM customers")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer custRows.Close()
	for custRows.Next() {
		var c ledger.Customer
		if err := custRows.Scan(&c.Name, &c.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		snap.Customers = append(snap.Customers, &c)
	}
	if err := custRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}

	itemRows, err := m.db.QueryContext(ctx, "SELECT name FROM items")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it ledger.Item
		if err := itemRows.Scan(&it.Name); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		snap.Items = append(snap.Items, &it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return snap, nil
}

func decimalToNull(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullToDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Ensure Mirror implements ledger.Mirror
var _ ledger.Mirror = (*Mirror)(nil)

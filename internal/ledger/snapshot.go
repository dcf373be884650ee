package ledger

import (
	"strings"
	"sync"
)

// Snapshot is one immutable copy of the full ledger state. The
// reconciliation protocol only ever swaps whole snapshots, which is what
// makes "rollback restores the exact prior state" mechanically true.
type Snapshot struct {
	Transactions []*Transaction `json:"transactions"`
	Customers    []*Customer    `json:"customers"`
	Items        []*Item        `json:"items"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Transactions: make([]*Transaction, len(s.Transactions)),
		Customers:    make([]*Customer, len(s.Customers)),
		Items:        make([]*Item, len(s.Items)),
	}
	for i, tx := range s.Transactions {
		c.Transactions[i] = tx.Clone()
	}
	for i, cu := range s.Customers {
		v := *cu
		c.Customers[i] = &v
	}
	for i, it := range s.Items {
		v := *it
		c.Items[i] = &v
	}
	return c
}

// Transaction finds a transaction by ID, or nil.
func (s *Snapshot) Transaction(id string) *Transaction {
	for _, tx := range s.Transactions {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

// HasTransaction reports whether a transaction with the ID exists.
func (s *Snapshot) HasTransaction(id string) bool {
	return s.Transaction(id) != nil
}

// UpsertTransaction replaces the row with the same ID, or appends.
func (s *Snapshot) UpsertTransaction(tx *Transaction) {
	for i, existing := range s.Transactions {
		if existing.ID == tx.ID {
			s.Transactions[i] = tx
			return
		}
	}
	s.Transactions = append(s.Transactions, tx)
}

// UpsertCustomer replaces the customer with the same name
// (case-insensitive), or appends.
func (s *Snapshot) UpsertCustomer(c *Customer) {
	for i, existing := range s.Customers {
		if strings.EqualFold(existing.Name, c.Name) {
			s.Customers[i] = c
			return
		}
	}
	s.Customers = append(s.Customers, c)
}

// UpsertItem replaces the item with the same name (case-insensitive), or
// appends.
func (s *Snapshot) UpsertItem(it *Item) {
	for i, existing := range s.Items {
		if strings.EqualFold(existing.Name, it.Name) {
			s.Items[i] = it
			return
		}
	}
	s.Items = append(s.Items, it)
}

// DropDeleted returns a snapshot without soft-deleted transactions. Applied
// when ingesting server state so deleted rows never reach a view.
func (s *Snapshot) DropDeleted() *Snapshot {
	c := s.Clone()
	kept := c.Transactions[:0]
	for _, tx := range c.Transactions {
		if tx.Status != StatusDeleted {
			kept = append(kept, tx)
		}
	}
	c.Transactions = kept
	return c
}

// Cache owns the in-memory ledger state. It is created once at startup and
// injected wherever the current snapshot is needed; there is no package
// level instance.
type Cache struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{snap: NewSnapshot()}
}

// Snapshot returns a deep copy of the current state. Callers may mutate the
// copy freely.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}

// Replace swaps the current state for the given snapshot. Used for both the
// optimistic commit and the rollback. Concurrent replacers are not ordered
// against each other; the last call wins.
func (c *Cache) Replace(s *Snapshot) {
	clone := s.Clone()
	c.mu.Lock()
	c.snap = clone
	c.mu.Unlock()
}

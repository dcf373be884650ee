package ledger

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/nljewellers/ledger/internal/shared/errors"
	"github.com/nljewellers/ledger/pkg/logger"
)

// Service is the reconciliation engine. It keeps the in-memory cache
// responsive by committing every mutation locally before the sheet write,
// and guarantees the cache never diverges permanently: a failed write
// restores the exact pre-mutation snapshot.
type Service struct {
	cache    *Cache
	remote   RemoteStore // nil when no sheet URL is configured
	mirror   Mirror      // optional
	purities PurityTable
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates the reconciliation engine. remote may be nil, in which
// case every mutation fails with STORE_NOT_CONFIGURED and reads are served
// from whatever the mirror provided at startup.
func NewService(cache *Cache, remote RemoteStore, mirror Mirror, purities PurityTable, log *logger.Logger) *Service {
	return &Service{
		cache:    cache,
		remote:   remote,
		mirror:   mirror,
		purities: purities,
		log:      log.WithField("component", "ledger"),
		now:      time.Now,
	}
}

// Snapshot exposes the current cache state for views, stats and export.
func (s *Service) Snapshot() *Snapshot {
	return s.cache.Snapshot()
}

// List derives the filtered, ordered view.
func (s *Service) List(filters Filters) View {
	return DeriveView(s.cache.Snapshot(), filters, s.now())
}

// Load populates the cache at startup: from the sheet when reachable, else
// from the mirror. It fails only when neither source yields a snapshot.
func (s *Service) Load(ctx context.Context) error {
	if s.remote != nil {
		snap, err := s.remote.FetchAll(ctx)
		if err == nil {
			s.ingest(ctx, snap)
			s.log.Info("ledger loaded from sheet",
				"transactions", len(snap.Transactions),
				"customers", len(snap.Customers),
				"items", len(snap.Items))
			return nil
		}
		s.log.WithError(err).Warn("sheet fetch failed, falling back to mirror")
	}

	if s.mirror == nil {
		if s.remote == nil {
			// No sources at all: start empty rather than refuse to boot.
			return nil
		}
		return fmt.Errorf("sheet unreachable and no mirror configured")
	}

	snap, err := s.mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load mirror: %w", err)
	}
	s.cache.Replace(snap.DropDeleted())
	s.log.Info("ledger loaded from mirror (read-only until the sheet is reachable)",
		"transactions", len(snap.Transactions))
	return nil
}

// SaveTransaction runs the full optimistic save for a single transaction:
// derive dependent fields, validate, commit to the cache, write to the
// sheet, roll back on failure. The (possibly ID-assigned, derived)
// transaction is returned even on failure so the caller can re-present the
// attempted data.
func (s *Service) SaveTransaction(ctx context.Context, tx *Transaction, mode EditMode) (*Transaction, error) {
	tx = tx.Clone()
	Derive(tx, mode, s.now())
	if err := ValidateTransaction(tx, s.purities); err != nil {
		return tx, err
	}

	if s.remote == nil {
		return tx, apperrors.StoreNotConfigured()
	}

	prev := s.cache.Snapshot()
	if tx.ID == "" {
		tx.ID = UniqueID(s.now(), prev.HasTransaction)
	}

	next := prev.Clone()
	next.UpsertTransaction(tx.Clone())
	s.cache.Replace(next)

	if err := s.remote.Mutate(ctx, ActionSaveTransaction, tx); err != nil {
		s.rollback(prev, ActionSaveTransaction, err)
		return tx, err
	}

	s.quietRefresh(ctx)
	return tx, nil
}

// BulkSetStatus applies one status to a set of transactions as a single
// batched sheet write. All rows flip together or roll back together; there
// is no partial application. Soft delete is this with StatusDeleted.
func (s *Service) BulkSetStatus(ctx context.Context, ids []string, status Status) error {
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	if !status.IsValid() {
		return ValidationErrors{{Field: "status", Message: "unknown status"}}
	}

	if s.remote == nil {
		return apperrors.StoreNotConfigured()
	}

	prev := s.cache.Snapshot()

	next := prev.Clone()
	batch := make([]*Transaction, 0, len(ids))
	for _, id := range ids {
		tx := next.Transaction(id)
		if tx == nil {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
		}
		tx.Status = status
		batch = append(batch, tx)
	}
	s.cache.Replace(next)

	if err := s.remote.Mutate(ctx, ActionBulkSaveTransactions, batch); err != nil {
		s.rollback(prev, ActionBulkSaveTransactions, err)
		return err
	}

	s.quietRefresh(ctx)
	return nil
}

// SaveCustomer upserts a customer record.
func (s *Service) SaveCustomer(ctx context.Context, c *Customer) error {
	if err := ValidateCustomer(c); err != nil {
		return err
	}
	if s.remote == nil {
		return apperrors.StoreNotConfigured()
	}

	prev := s.cache.Snapshot()
	next := prev.Clone()
	cc := *c
	next.UpsertCustomer(&cc)
	s.cache.Replace(next)

	if err := s.remote.Mutate(ctx, ActionSaveCustomer, c); err != nil {
		s.rollback(prev, ActionSaveCustomer, err)
		return err
	}

	s.quietRefresh(ctx)
	return nil
}

// SaveItem upserts an item record.
func (s *Service) SaveItem(ctx context.Context, it *Item) error {
	if err := ValidateItem(it); err != nil {
		return err
	}
	if s.remote == nil {
		return apperrors.StoreNotConfigured()
	}

	prev := s.cache.Snapshot()
	next := prev.Clone()
	ii := *it
	next.UpsertItem(&ii)
	s.cache.Replace(next)

	if err := s.remote.Mutate(ctx, ActionSaveItem, it); err != nil {
		s.rollback(prev, ActionSaveItem, err)
		return err
	}

	s.quietRefresh(ctx)
	return nil
}

// rollback restores the pre-mutation snapshot wholesale. Never a partial
// merge: if another mutation committed between our optimistic apply and
// this rollback, the later writer's state is overwritten (known gap, no
// version check exists on the cache).
func (s *Service) rollback(prev *Snapshot, action string, cause error) {
	s.cache.Replace(prev)
	s.log.WithError(cause).Warn("sheet write failed, cache rolled back", "action", action)
}

// quietRefresh re-reads the sheet after a successful write to absorb edits
// made by other devices, replacing the cache wholesale. Failures are only
// logged; the optimistic state is already durable on the sheet.
func (s *Service) quietRefresh(ctx context.Context) {
	snap, err := s.remote.FetchAll(ctx)
	if err != nil {
		s.log.WithError(err).Warn("quiet refresh failed, keeping optimistic state")
		return
	}
	s.ingest(ctx, snap)
}

// ingest installs server state: soft-deleted rows are dropped before the
// cache sees them, and the mirror is updated with the full snapshot.
func (s *Service) ingest(ctx context.Context, snap *Snapshot) {
	s.cache.Replace(snap.DropDeleted())
	if s.mirror != nil {
		if err := s.mirror.ReplaceAll(ctx, snap); err != nil {
			s.log.WithError(err).Warn("failed to update mirror")
		}
	}
}

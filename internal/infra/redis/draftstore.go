package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nljewellers/ledger/internal/ledger"
	"github.com/nljewellers/ledger/pkg/logger"
)

const (
	// DraftTTL bounds how long an abandoned half-filled form survives.
	DraftTTL = 24 * time.Hour

	// flushDebounce batches rapid keystroke-driven Put calls into one
	// write. The latest draft always supersedes a pending one.
	flushDebounce = 3 * time.Second

	draftKeyPrefix = "draft:"
)

// DraftStore persists in-progress transaction forms in Redis, debouncing
// writes per draft key.
type DraftStore struct {
	client *redis.Client
	logger *logger.Logger

	mu      sync.Mutex
	pending map[string]*pendingDraft
}

type pendingDraft struct {
	timer *time.Timer
	draft *ledger.Draft
}

// NewDraftStore creates a new draft store.
func NewDraftStore(client *redis.Client, log *logger.Logger) *DraftStore {
	return &DraftStore{
		client:  client,
		logger:  log.WithField("component", "draftstore"),
		pending: make(map[string]*pendingDraft),
	}
}

// Put schedules the draft for persistence. Repeated calls within the
// debounce window replace the queued value and reset the timer.
func (s *DraftStore) Put(ctx context.Context, draft *ledger.Draft) error {
	if draft == nil || draft.ID == "" {
		return fmt.Errorf("draft requires an id")
	}
	draft.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[draft.ID]; ok {
		p.draft = draft
		p.timer.Reset(flushDebounce)
		return nil
	}

	p := &pendingDraft{draft: draft}
	p.timer = time.AfterFunc(flushDebounce, func() {
		s.flush(draft.ID)
	})
	s.pending[draft.ID] = p
	return nil
}

// flush writes the queued draft. The flush context is detached from any
// request; the original caller already returned.
func (s *DraftStore) flush(id string) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(p.draft)
	if err != nil {
		s.logger.Error("failed to marshal draft", "draft_id", id, "error", err)
		return
	}

	if err := s.client.Set(ctx, draftKeyPrefix+id, data, DraftTTL).Err(); err != nil {
		s.logger.Error("failed to persist draft", "draft_id", id, "error", err)
	}
}

// Get returns the stored draft, preferring an unflushed pending value.
func (s *DraftStore) Get(ctx context.Context, id string) (*ledger.Draft, error) {
	s.mu.Lock()
	if p, ok := s.pending[id]; ok {
		draft := p.draft
		s.mu.Unlock()
		return draft, nil
	}
	s.mu.Unlock()

	val, err := s.client.Get(ctx, draftKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft ledger.Draft
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Delete discards the draft, cancelling any pending flush first.
func (s *DraftStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if err := s.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Close flushes any pending drafts immediately.
func (s *DraftStore) Close() error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.flush(id)
	}
	return nil
}

// Ensure DraftStore implements ledger.DraftStore
var _ ledger.DraftStore = (*DraftStore)(nil)

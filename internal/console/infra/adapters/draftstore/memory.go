package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
)

// MemoryStore is the single-instance fallback used when no Redis address
// is configured. Expired drafts are dropped lazily on access.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

var _ ports.DraftStore = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, drafts: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*entity.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.drafts[id]
	if !ok {
		return nil, ports.ErrDraftNotFound
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.drafts, id)
		return nil, ports.ErrDraftNotFound
	}

	// Stored encoded so callers never share slices with the store.
	var d entity.Draft
	if err := json.Unmarshal(e.payload, &d); err != nil {
		return nil, fmt.Errorf("draftstore: decode %q: %w", id, err)
	}
	return &d, nil
}

func (s *MemoryStore) Save(ctx context.Context, d *entity.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("draftstore: encode %q: %w", d.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = memoryEntry{payload: b, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

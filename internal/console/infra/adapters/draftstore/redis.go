// Package draftstore keeps order drafts between page loads.
package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
	"github.com/jcmexdev/order-console/internal/pkg/cache"
)

const draftOperation = "draft"

// RedisStore serialises drafts as JSON under "<service>:draft:<id>". Every
// save refreshes the TTL, so a draft expires after ttl of inactivity.
type RedisStore struct {
	cache cache.Cache
	ttl   time.Duration
}

var _ ports.DraftStore = (*RedisStore)(nil)

func NewRedisStore(c cache.Cache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*entity.Draft, error) {
	raw, err := s.cache.Get(ctx, s.cache.GenerateKey(draftOperation, id))
	if err != nil {
		return nil, fmt.Errorf("draftstore: get %q: %w", id, err)
	}
	if raw == "" {
		return nil, ports.ErrDraftNotFound
	}

	var d entity.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("draftstore: decode %q: %w", id, err)
	}
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, d *entity.Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("draftstore: encode %q: %w", d.ID, err)
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey(draftOperation, d.ID), b, s.ttl); err != nil {
		return fmt.Errorf("draftstore: save %q: %w", d.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, s.cache.GenerateKey(draftOperation, id)); err != nil {
		return fmt.Errorf("draftstore: delete %q: %w", id, err)
	}
	return nil
}

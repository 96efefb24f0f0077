package store

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-snapshot/layering"
	"github.com/google/uuid"
)

// MemoryStore is a minimal in-memory Store intended for tests and examples.
// It keys records by Ref.Identifier(), deep-copies payloads in both
// directions and issues a fresh ETag on every save.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	now     func() time.Time
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}, now: time.Now}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return layering.Clone(record.snapshot), cloneMeta(record.meta), true, nil
}

// Save stores snapshot. A non-empty meta.ETag must match the stored one.
func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.records[key]
	if exists && meta.ETag != "" && meta.ETag != current.meta.ETag {
		return Meta{}, ErrETagMismatch
	}

	saved := cloneMeta(meta)
	if saved.SnapshotID == "" {
		saved.SnapshotID = current.meta.SnapshotID
	}
	if saved.SnapshotID == "" {
		saved.SnapshotID = uuid.NewString()
	}
	saved.ETag = uuid.NewString()
	saved.UpdatedAt = s.now().UTC()
	s.records[key] = memoryRecord[T]{snapshot: layering.Clone(snapshot), meta: saved}
	return cloneMeta(saved), nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

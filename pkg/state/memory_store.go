package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-bindings/layering"
	"github.com/google/uuid"
)

type memoryRecord struct {
	snapshot map[string]any
	meta     Meta
}

// MemoryStore is an in-process Store used in tests and single-node setups.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}}
}

// Load returns a deep copy of the stored snapshot, if any.
func (s *MemoryStore) Load(_ context.Context, ref Ref) (map[string]any, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return nil, Meta{}, false, nil
	}
	return layering.CloneProperties(record.snapshot), cloneMeta(record.meta), true, nil
}

// Save stores a deep copy of snapshot and assigns fresh snapshot and etag
// identifiers. The assigned metadata is returned.
func (s *MemoryStore) Save(_ context.Context, ref Ref, snapshot map[string]any, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	if snapshot == nil {
		return Meta{}, fmt.Errorf("state: snapshot is required")
	}

	saved := cloneMeta(meta)
	saved.SnapshotID = uuid.NewString()
	saved.ETag = uuid.NewString()
	saved.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = memoryRecord{
		snapshot: layering.CloneProperties(snapshot),
		meta:     cloneMeta(saved),
	}
	return saved, nil
}

// Delete removes a stored snapshot. Deleting a missing ref is a no-op.
func (s *MemoryStore) Delete(_ context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Len reports how many snapshots the store holds.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra != nil {
		extra := make(map[string]string, len(meta.Extra))
		for k, v := range meta.Extra {
			extra[k] = v
		}
		out.Extra = extra
	}
	return out
}

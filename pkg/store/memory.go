package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory store for tests and one-shot CLI runs.
type MemoryStore struct {
	mu       sync.RWMutex
	families map[string]FamilyRecord
	layouts  map[string]LayoutRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		families: make(map[string]FamilyRecord),
		layouts:  make(map[string]LayoutRecord),
	}
}

// PutFamily registers or replaces a family record.
func (s *MemoryStore) PutFamily(ctx context.Context, f FamilyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.families[f.Hash] = f
	return nil
}

// GetFamily returns the family with the given hash, or ErrNotFound.
func (s *MemoryStore) GetFamily(ctx context.Context, hash string) (FamilyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.families[hash]
	if !ok {
		return FamilyRecord{}, ErrNotFound
	}
	return f, nil
}

// ListFamilies returns all registered families.
func (s *MemoryStore) ListFamilies(ctx context.Context) ([]FamilyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FamilyRecord, 0, len(s.families))
	for _, f := range s.families {
		out = append(out, f)
	}
	return out, nil
}

// DeleteFamily removes a family and its layout.
func (s *MemoryStore) DeleteFamily(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.families, hash)
	delete(s.layouts, hash)
	return nil
}

// PutLayout stores or replaces the layout for a family.
func (s *MemoryStore) PutLayout(ctx context.Context, l LayoutRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.FamilyHash] = l
	return nil
}

// CompleteLayout persists an optimization result, keeping the stale flag
// and epoch of any mark that advanced the stored record past l.
func (s *MemoryStore) CompleteLayout(ctx context.Context, l LayoutRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.layouts[l.FamilyHash]; ok && cur.StaleEpoch > l.StaleEpoch {
		l.Stale = true
		l.StaleEpoch = cur.StaleEpoch
	}
	s.layouts[l.FamilyHash] = l
	return nil
}

// GetLayout returns the layout for the given family hash, or ErrNotFound.
func (s *MemoryStore) GetLayout(ctx context.Context, hash string) (LayoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[hash]
	if !ok {
		return LayoutRecord{}, ErrNotFound
	}
	return l, nil
}

// MarkStale flags the family's layout as stale, if one exists.
func (s *MemoryStore) MarkStale(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layouts[hash]
	if !ok {
		return nil
	}
	l.Stale = true
	l.StaleEpoch++
	s.layouts[hash] = l
	return nil
}

// Ping always succeeds for the memory store.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

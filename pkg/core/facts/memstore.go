package facts

import (
	"fmt"
	"sort"
	"sync"
)

// =============================================================================
// IN-MEMORY STORE
// Production persistence lives in pkg/core/store (Postgres); this store backs
// tests, the CLI pipeline, and engine snapshots.
// =============================================================================

// MemoryStore implements Store with mutex-guarded in-memory storage
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Fact
	order []string // insertion order of IDs, keeps listings deterministic
}

// NewMemoryStore creates an empty in-memory fact store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*Fact),
	}
}

// Put inserts a fact. A fact sharing key+category with an existing one
// replaces it in place: the store holds at most one fact per key+category,
// so lookups never depend on an undocumented "first match" ordering.
func (s *MemoryStore) Put(f *Fact) error {
	if f == nil {
		return fmt.Errorf("fact cannot be nil")
	}
	if f.Key == "" {
		return fmt.Errorf("fact key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		existing := s.byID[id]
		if existing.Key == f.Key && existing.Category == f.Category {
			f.ID = existing.ID
			f.CreatedAt = existing.CreatedAt
			s.byID[id] = f
			return nil
		}
	}

	s.byID[f.ID] = f
	s.order = append(s.order, f.ID)
	return nil
}

// Facts returns facts filtered by category and/or key ("" matches any)
func (s *MemoryStore) Facts(category, key string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Fact
	for _, id := range s.order {
		f := s.byID[id]
		if category != "" && f.Category != category {
			continue
		}
		if key != "" && f.Key != key {
			continue
		}
		results = append(results, *f)
	}
	return results
}

// Value returns the numeric value for a key, or def when the key is absent
// or its value is not coercible to a number
func (s *MemoryStore) Value(key string, def float64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		f := s.byID[id]
		if f.Key == key {
			if n, ok := f.Value.AsNumber(); ok {
				return n
			}
			return def
		}
	}
	return def
}

// AllKeys returns every distinct fact key, sorted for determinism
func (s *MemoryStore) AllKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var keys []string
	for _, id := range s.order {
		k := s.byID[id].Key
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns an independent copy of the store. Engine calls read the
// snapshot, so a concurrent writer cannot skew a half-finished estimation.
func (s *MemoryStore) Snapshot() *MemoryStore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := NewMemoryStore()
	for _, id := range s.order {
		f := *s.byID[id]
		clone.byID[f.ID] = &f
		clone.order = append(clone.order, f.ID)
	}
	return clone
}

// Len returns the number of stored facts
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.ParamStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]map[string]any
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store seeded with the given raw sets.
func NewStore(sets map[string]map[string]any) *Store {
	s := &Store{data: make(map[string]map[string]any, len(sets))}
	for name, raw := range sets {
		s.data[name] = copyMap(raw)
	}
	return s
}

// NewFromJSON creates a store from raw JSON documents keyed by set name.
// This improves DX for tests that keep fixtures as strings.
func NewFromJSON(docs map[string]string) (*Store, error) {
	s := &Store{data: make(map[string]map[string]any, len(docs))}
	for name, doc := range docs {
		dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode parameter set %s: %w", name, err)
		}
		s.data[name] = raw
	}
	return s, nil
}

// Put stores (or replaces) a raw set.
func (s *Store) Put(name string, raw map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copyMap(raw)
}

// Load returns a copy of the set so callers can't mutate store state directly.
func (s *Store) Load(ctx context.Context, name string) (map[string]any, error) {
	if err := domain.CheckSetName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.data[name]
	if !ok {
		return nil, domain.ErrParamSetNotFound
	}
	return copyMap(raw), nil
}

// List returns all set names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case domain.Tree:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

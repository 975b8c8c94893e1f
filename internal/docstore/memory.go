package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and local development.
// Documents are stored as encoded JSON so reads never alias writes.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection, field string, value any, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := fmt.Sprintf("%v", value)

	ids := make([]string, 0, len(s.data[collection]))
	for id := range s.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var docs []json.RawMessage
	for _, id := range ids {
		doc := s.data[collection][id]
		var fields map[string]any
		if err := json.Unmarshal(doc, &fields); err != nil {
			continue
		}
		if got, ok := fields[field]; ok && fmt.Sprintf("%v", got) == want {
			docs = append(docs, json.RawMessage(doc))
		}
	}
	return decodeSlice(docs, out)
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string][]byte)
	}
	s.data[collection][id] = data
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage // key: collection -> id -> document
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]json.RawMessage),
	}
}

// GetAll returns a copy of every record in a collection
func (s *MemoryStore) GetAll(_ context.Context, collection string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	out := make(map[string]json.RawMessage, len(docs))
	for id, doc := range docs {
		out[id] = clone(doc)
	}
	return out, nil
}

// Get returns a single record or nil
func (s *MemoryStore) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clone(s.collections[collection][id]), nil
}

// TransactionalUpdate holds the write lock while fn runs, so fn sees the
// latest value and no other writer can interleave.
func (s *MemoryStore) TransactionalUpdate(_ context.Context, collection, id string, fn UpdateFunc) (bool, json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := clone(s.collections[collection][id])
	next, commit := fn(current)
	if !commit {
		return false, current, nil
	}

	if next == nil {
		delete(s.collections[collection], id)
		return true, nil, nil
	}
	s.put(collection, id, clone(next))
	return true, clone(next), nil
}

// Set replaces a record
func (s *MemoryStore) Set(_ context.Context, collection, id string, record any) error {
	doc, err := encode(record)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, doc)
	return nil
}

// MultiUpdate applies all field updates or none of them
func (s *MemoryStore) MultiUpdate(_ context.Context, updates map[string]any) error {
	grouped, order, err := groupUpdates(updates)
	if err != nil {
		return fmt.Errorf("multi update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[docKey]json.RawMessage, len(order))
	for _, key := range order {
		doc, err := applyAll(s.collections[key.collection][key.id], grouped[key])
		if err != nil {
			return fmt.Errorf("multi update %s/%s: %w", key.collection, key.id, err)
		}
		staged[key] = doc
	}
	for key, doc := range staged {
		s.put(key.collection, key.id, doc)
	}
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) put(collection, id string, doc json.RawMessage) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]json.RawMessage)
		s.collections[collection] = docs
	}
	docs[id] = doc
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store for tests. Records round-trip through JSON
// so decoding behaves exactly like the file-backed store.
type MemStore struct {
	mu   sync.Mutex
	data map[Collection][]byte
}

// NewMemStore returns a MemStore with an empty document per collection.
func NewMemStore(collections ...Collection) *MemStore {
	data := make(map[Collection][]byte, len(collections))
	for _, c := range collections {
		data[c] = []byte("[]")
	}
	return &MemStore{data: data}
}

// Seed replaces a collection's raw document, e.g. with deliberately corrupt
// content for repair tests.
func (s *MemStore) Seed(c Collection, doc []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[c] = append([]byte(nil), doc...)
}

// Raw returns the collection's current raw document.
func (s *MemStore) Raw(c Collection) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data[c]...)
}

// Load decodes the collection into out.
func (s *MemStore) Load(ctx context.Context, c Collection, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(c, out)
}

// Update runs fn with exclusive access to the whole store.
func (s *MemStore) Update(ctx context.Context, c Collection, fn func(tx Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[c]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	return fn(&memTxn{store: s, collection: c})
}

func (s *MemStore) read(c Collection, out any) error {
	doc, ok := s.data[c]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return json.Unmarshal([]byte("[]"), out)
	}
	return nil
}

type memTxn struct {
	store      *MemStore
	collection Collection
}

func (t *memTxn) Load(out any) error {
	return t.store.read(t.collection, out)
}

func (t *memTxn) Save(records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", t.collection, err)
	}
	t.store.data[t.collection] = data
	return nil
}

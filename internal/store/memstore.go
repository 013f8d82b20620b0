package store

import (
	"slices"
	"strings"
	"sync"
)

// MemStore is an in-memory implementation of Storer.
type MemStore struct {
	mu       sync.RWMutex
	schemas  map[string]*SchemaRecord
	settings map[string]string
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		schemas:  make(map[string]*SchemaRecord),
		settings: make(map[string]string),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

func cloneSchema(rec *SchemaRecord) *SchemaRecord {
	c := *rec
	c.Roots = slices.Clone(rec.Roots)
	return &c
}

// =============================================================================
// Schema CRUD
// =============================================================================

func (s *MemStore) UpsertSchema(rec *SchemaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas[rec.ID] = cloneSchema(rec)
	return nil
}

func (s *MemStore) GetSchema(id string) (*SchemaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.schemas[id]; ok {
		return cloneSchema(rec), nil
	}
	return nil, nil
}

func (s *MemStore) GetSchemaByName(name string) (*SchemaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.sorted() {
		if strings.EqualFold(rec.Name, name) {
			return cloneSchema(rec), nil
		}
	}
	return nil, nil
}

func (s *MemStore) DeleteSchema(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.schemas, id)
	return nil
}

func (s *MemStore) ListSchemas() ([]*SchemaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SchemaRecord
	for _, rec := range s.sorted() {
		out = append(out, cloneSchema(rec))
	}
	return out, nil
}

func (s *MemStore) CountSchemas() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schemas), nil
}

// sorted matches SQLiteStore's ORDER BY name, id. Caller holds the lock.
func (s *MemStore) sorted() []*SchemaRecord {
	recs := make([]*SchemaRecord, 0, len(s.schemas))
	for _, rec := range s.schemas {
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b *SchemaRecord) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return recs
}

// =============================================================================
// Settings
// =============================================================================

func (s *MemStore) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == "" {
		delete(s.settings, key)
		return nil
	}
	s.settings[key] = value
	return nil
}

func (s *MemStore) GetSetting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[key], nil
}

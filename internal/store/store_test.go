package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Store Factory for Testing Both Implementations
// =============================================================================

// storeFactory creates a store for testing.
// We test both MemStore and SQLiteStore with the same test suite.
type storeFactory func() (Storer, error)

func memStoreFactory() (Storer, error) {
	return NewMemStore(), nil
}

func sqliteStoreFactory() (Storer, error) {
	return NewSQLiteStore()
}

// runTestsForAllStores runs a test function against both store implementations.
func runTestsForAllStores(t *testing.T, testName string, testFn func(t *testing.T, store Storer)) {
	factories := map[string]storeFactory{
		"MemStore":    memStoreFactory,
		"SQLiteStore": sqliteStoreFactory,
	}

	for name, factory := range factories {
		t.Run(name+"/"+testName, func(t *testing.T) {
			store, err := factory()
			require.NoError(t, err, "Failed to create store")
			defer store.Close()
			testFn(t, store)
		})
	}
}

func teiRecord(id, name string) *SchemaRecord {
	now := time.Now().UnixMilli()
	return &SchemaRecord{
		ID:          id,
		Name:        name,
		GrammarJSON: `{"elements":[{"type":"element","name":"grammar"}]}`,
		Roots:       []string{"TEI", "teiCorpus"},
		CSS:         "https://example.org/tei.css",
		Source:      "schemas/tei_all.json",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// =============================================================================
// Schema CRUD Tests
// =============================================================================

func TestSchemaUpsertAndGet(t *testing.T) {
	runTestsForAllStores(t, "UpsertAndGet", func(t *testing.T, store Storer) {
		rec := teiRecord("tei-all", "TEI All")
		require.NoError(t, store.UpsertSchema(rec))

		got, err := store.GetSchema("tei-all")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec, got)

		// Update
		rec.Name = "TEI All (P5)"
		rec.Roots = []string{"TEI"}
		rec.UpdatedAt++
		require.NoError(t, store.UpsertSchema(rec))

		got, err = store.GetSchema("tei-all")
		require.NoError(t, err)
		assert.Equal(t, "TEI All (P5)", got.Name)
		assert.Equal(t, []string{"TEI"}, got.Roots)
	})
}

func TestSchemaGetNotFound(t *testing.T) {
	runTestsForAllStores(t, "GetNotFound", func(t *testing.T, store Storer) {
		rec, err := store.GetSchema("nonexistent")
		require.NoError(t, err, "GetSchema for nonexistent should not error")
		assert.Nil(t, rec)

		rec, err = store.GetSchemaByName("nonexistent")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestSchemaGetByName(t *testing.T) {
	runTestsForAllStores(t, "GetByName", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertSchema(teiRecord("orlando", "Orlando")))

		rec, err := store.GetSchemaByName("orlando")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "orlando", rec.ID)
	})
}

func TestSchemaDelete(t *testing.T) {
	runTestsForAllStores(t, "Delete", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertSchema(teiRecord("to-delete", "Delete Me")))

		require.NoError(t, store.DeleteSchema("to-delete"))

		rec, err := store.GetSchema("to-delete")
		require.NoError(t, err)
		assert.Nil(t, rec)

		// Deleting twice is fine
		assert.NoError(t, store.DeleteSchema("to-delete"))
	})
}

func TestSchemaListAndCount(t *testing.T) {
	runTestsForAllStores(t, "ListAndCount", func(t *testing.T, store Storer) {
		count, err := store.CountSchemas()
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		require.NoError(t, store.UpsertSchema(teiRecord("tei-lite", "TEI Lite")))
		require.NoError(t, store.UpsertSchema(teiRecord("cwrc", "CWRC Entry")))
		require.NoError(t, store.UpsertSchema(teiRecord("orlando", "Orlando")))

		recs, err := store.ListSchemas()
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "cwrc", recs[0].ID)
		assert.Equal(t, "orlando", recs[1].ID)
		assert.Equal(t, "tei-lite", recs[2].ID)

		count, err = store.CountSchemas()
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestSchemaEmptyRoots(t *testing.T) {
	runTestsForAllStores(t, "EmptyRoots", func(t *testing.T, store Storer) {
		rec := teiRecord("bare", "Bare")
		rec.Roots = nil
		rec.CSS = ""
		require.NoError(t, store.UpsertSchema(rec))

		got, err := store.GetSchema("bare")
		require.NoError(t, err)
		assert.Empty(t, got.Roots)
		assert.Empty(t, got.CSS)
	})
}

func TestStoredRecordIsolated(t *testing.T) {
	runTestsForAllStores(t, "Isolated", func(t *testing.T, store Storer) {
		rec := teiRecord("tei-all", "TEI All")
		require.NoError(t, store.UpsertSchema(rec))
		rec.Roots[0] = "mutated"

		got, err := store.GetSchema("tei-all")
		require.NoError(t, err)
		assert.Equal(t, "TEI", got.Roots[0])
	})
}

// =============================================================================
// Settings Tests
// =============================================================================

func TestSettings(t *testing.T) {
	runTestsForAllStores(t, "Settings", func(t *testing.T, store Storer) {
		v, err := store.GetSetting(SettingActiveSchema)
		require.NoError(t, err)
		assert.Empty(t, v)

		require.NoError(t, store.SetSetting(SettingActiveSchema, "tei-all"))
		require.NoError(t, store.SetSetting(SettingActiveSchema, "orlando"))
		v, err = store.GetSetting(SettingActiveSchema)
		require.NoError(t, err)
		assert.Equal(t, "orlando", v)

		require.NoError(t, store.SetSetting(SettingActiveSchema, ""))
		v, err = store.GetSetting(SettingActiveSchema)
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

// =============================================================================
// File-backed SQLite
// =============================================================================

func TestSQLiteStorePersists(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "registry.db")

	s, err := NewSQLiteStoreWithDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, s.UpsertSchema(teiRecord("tei-all", "TEI All")))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStoreWithDSN(dsn)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.GetSchema("tei-all")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"TEI", "teiCorpus"}, rec.Roots)
}

func TestStorerInterface(t *testing.T) {
	var _ Storer = (*MemStore)(nil)
	var _ Storer = (*SQLiteStore)(nil)
}

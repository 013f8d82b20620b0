// Package store persists the schema registry: the grammars an editor can
// switch between, plus a few editor settings such as the active schema.
package store

// SchemaRecord is one registered schema.
type SchemaRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	GrammarJSON string   `json:"grammarJson"`
	Roots       []string `json:"roots"`
	CSS         string   `json:"css,omitempty"`
	Source      string   `json:"source,omitempty"` // file the grammar was imported from
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// Setting keys.
const (
	SettingActiveSchema = "active_schema"
)

// Storer defines the interface for registry persistence.
// MemStore backs tests and the CLI's throwaway runs, SQLiteStore everything
// else.
type Storer interface {
	// Schemas
	UpsertSchema(rec *SchemaRecord) error
	GetSchema(id string) (*SchemaRecord, error)
	GetSchemaByName(name string) (*SchemaRecord, error)
	DeleteSchema(id string) error
	ListSchemas() ([]*SchemaRecord, error)
	CountSchemas() (int, error)

	// Settings
	SetSetting(key, value string) error
	GetSetting(key string) (string, error)

	// Lifecycle
	Close() error
}

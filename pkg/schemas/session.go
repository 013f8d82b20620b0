package schemas

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kittclouds/tagkitt/internal/store"
	"github.com/kittclouds/tagkitt/pkg/grammar"
	"github.com/kittclouds/tagkitt/pkg/tags"
)

// ErrUnknownSchema is returned when an id is not in the registry.
var ErrUnknownSchema = errors.New("unknown schema")

// Active is one loaded schema: its registry record and the engine built from
// it. It is never modified after construction.
type Active struct {
	Record *store.SchemaRecord
	Engine *tags.Engine
}

// Roots lists the elements offered for a new document. A record with roots
// narrows the grammar's start elements to those names.
func (a *Active) Roots() ([]tags.Candidate, error) {
	cands, err := a.Engine.Roots()
	if err != nil || len(a.Record.Roots) == 0 {
		return cands, err
	}
	var out []tags.Candidate
	for _, c := range cands {
		if slices.Contains(a.Record.Roots, c.Name) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Session holds the active schema. Switching schema builds a complete new
// engine and swaps it in; readers holding the previous one keep a consistent
// view until they drop it.
type Session struct {
	registry store.Storer
	logger   *slog.Logger
	language string
	current  atomic.Pointer[Active]
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSearchLanguage sets the stopword language for engines the session
// builds.
func WithSearchLanguage(lang string) SessionOption {
	return func(s *Session) { s.language = lang }
}

// NewSession creates a session over a schema registry.
func NewSession(registry store.Storer, opts ...SessionOption) *Session {
	s := &Session{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the schema registry.
func (s *Session) Registry() store.Storer { return s.registry }

// Current returns the active schema, or nil before the first activation.
func (s *Session) Current() *Active { return s.current.Load() }

// Engine returns the active engine, or nil.
func (s *Session) Engine() *tags.Engine {
	if a := s.current.Load(); a != nil {
		return a.Engine
	}
	return nil
}

// Build loads a record's grammar into a new engine without activating it.
func (s *Session) Build(rec *store.SchemaRecord) (*Active, error) {
	start := time.Now()
	gs, err := grammar.Load(strings.NewReader(rec.GrammarJSON), grammar.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", rec.ID, err)
	}
	opts := []tags.Option{tags.WithLogger(s.logger)}
	if s.language != "" {
		opts = append(opts, tags.WithSearchLanguage(s.language))
	}
	a := &Active{Record: rec, Engine: tags.NewEngine(gs, opts...)}

	s.logger.Debug("Built schema engine",
		slog.String("id", rec.ID),
		slog.Int("elements", len(gs.ElementNames())),
		slog.Int("warnings", len(gs.Warnings())),
		slog.Duration("took", time.Since(start)))
	return a, nil
}

// Activate builds the registered schema id, makes it current and remembers
// it as the active schema.
func (s *Session) Activate(id string) (*Active, error) {
	rec, err := s.registry.GetSchema(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, id)
	}
	a, err := s.ActivateRecord(rec)
	if err != nil {
		return nil, err
	}
	if err := s.registry.SetSetting(store.SettingActiveSchema, id); err != nil {
		return nil, err
	}
	return a, nil
}

// ActivateRecord builds rec and makes it current without touching the
// registry. The previous schema stays current when the build fails.
func (s *Session) ActivateRecord(rec *store.SchemaRecord) (*Active, error) {
	a, err := s.Build(rec)
	if err != nil {
		return nil, err
	}
	s.current.Store(a)
	s.logger.Info("Activated schema", slog.String("id", rec.ID))
	return a, nil
}

// Restore activates the schema remembered in the registry. It returns nil
// when none is remembered.
func (s *Session) Restore() (*Active, error) {
	id, err := s.registry.GetSetting(store.SettingActiveSchema)
	if err != nil || id == "" {
		return nil, err
	}
	return s.Activate(id)
}

// UpdateGrammar replaces the grammar of a registered schema. The new grammar
// must load; when the schema is current, the session switches to it.
func (s *Session) UpdateGrammar(id string, data []byte) error {
	rec, err := s.registry.GetSchema(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: %q", ErrUnknownSchema, id)
	}

	next := *rec
	next.GrammarJSON = string(data)
	next.UpdatedAt = time.Now().Unix()

	a, err := s.Build(&next)
	if err != nil {
		return err
	}
	if err := s.registry.UpsertSchema(&next); err != nil {
		return err
	}
	if cur := s.current.Load(); cur != nil && cur.Record.ID == id && s.current.CompareAndSwap(cur, a) {
		s.logger.Info("Reloaded schema", slog.String("id", id))
	}
	return nil
}

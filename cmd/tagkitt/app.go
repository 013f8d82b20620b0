package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	hackpados "github.com/hack-pad/hackpadfs/os"

	"github.com/kittclouds/tagkitt/internal/config"
	"github.com/kittclouds/tagkitt/internal/store"
	"github.com/kittclouds/tagkitt/pkg/schemas"
)

type globalFlags struct {
	configPath  string
	logLevel    string
	grammarPath string
	schemaID    string
	jsonOut     bool
}

// app is everything one command invocation needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	fs       *hackpados.FS
	loader   *schemas.Loader
	registry store.Storer
	session  *schemas.Session
	out      io.Writer
	jsonOut  bool
}

func newLogger(level string) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// openApp loads config, opens the registry and registers the configured
// schemas. It does not pick a schema; see engine.
func openApp(g *globalFlags, out io.Writer) (*app, error) {
	logger, err := newLogger(g.logLevel)
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewLoader(logger).Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel == "" {
		if logger, err = newLogger(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	slog.SetDefault(logger)

	var registry store.Storer
	if cfg.Store.DSN == "" {
		registry = store.NewMemStore()
	} else {
		sq, err := store.NewSQLiteStoreWithDSN(cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("open registry: %w", err)
		}
		registry = sq
	}

	osfs := hackpados.NewFS()
	a := &app{
		cfg:      cfg,
		logger:   logger,
		fs:       osfs,
		loader:   schemas.NewLoader(osfs, logger),
		registry: registry,
		session: schemas.NewSession(registry,
			schemas.WithLogger(logger),
			schemas.WithSearchLanguage(cfg.Search.Language)),
		out:     out,
		jsonOut: g.jsonOut,
	}

	if err := a.registerConfigured(); err != nil {
		registry.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error { return a.registry.Close() }

// fsPath converts an OS path to a path on the loader's file system.
func (a *app) fsPath(osPath string) (string, error) {
	abs, err := filepath.Abs(osPath)
	if err != nil {
		return "", err
	}
	return a.fs.FromOSPath(abs)
}

func (a *app) readGrammar(osPath string) ([]byte, error) {
	p, err := a.fsPath(osPath)
	if err != nil {
		return nil, err
	}
	return a.loader.Read(p)
}

// registerConfigured upserts the schemas named in the config, keeping
// registry entries whose grammar is unchanged.
func (a *app) registerConfigured() error {
	now := time.Now().Unix()
	for _, sc := range a.cfg.Schemas {
		data, err := a.readGrammar(sc.Grammar)
		if err != nil {
			a.logger.Warn("Skipping configured schema", slog.String("schema", sc.ID), slog.String("error", err.Error()))
			continue
		}
		existing, err := a.registry.GetSchema(sc.ID)
		if err != nil {
			return err
		}
		rec := &store.SchemaRecord{
			ID:          sc.ID,
			Name:        sc.Name,
			GrammarJSON: string(data),
			Roots:       sc.Roots,
			CSS:         sc.CSS,
			Source:      sc.Grammar,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if rec.Name == "" {
			rec.Name = sc.ID
		}
		if existing != nil {
			if existing.GrammarJSON == rec.GrammarJSON && existing.Name == rec.Name && existing.CSS == rec.CSS {
				continue
			}
			rec.CreatedAt = existing.CreatedAt
		}
		if err := a.registry.UpsertSchema(rec); err != nil {
			return err
		}
		a.logger.Debug("Registered configured schema", slog.String("schema", sc.ID))
	}
	return nil
}

var errNoSchema = errors.New("no schema selected: use --grammar, --schema, or set active in tagkitt.yaml")

// engine picks the schema to query: --grammar, then --schema, then the
// configured active schema, then the one remembered by the registry.
func (a *app) engine(g *globalFlags) (*schemas.Active, error) {
	switch {
	case g.grammarPath != "":
		data, err := a.readGrammar(g.grammarPath)
		if err != nil {
			return nil, err
		}
		return a.session.ActivateRecord(&store.SchemaRecord{
			ID:          schemas.SchemaID(g.grammarPath),
			Name:        filepath.Base(g.grammarPath),
			GrammarJSON: string(data),
			Source:      g.grammarPath,
		})
	case g.schemaID != "":
		return a.session.Activate(g.schemaID)
	case a.cfg.Active != "":
		return a.session.Activate(a.cfg.Active)
	}

	act, err := a.session.Restore()
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, errNoSchema
	}
	return act, nil
}

// withEngine runs fn against the selected schema's engine.
func withEngine(g *globalFlags, out io.Writer, fn func(a *app, act *schemas.Active) error) error {
	a, err := openApp(g, out)
	if err != nil {
		return err
	}
	defer a.Close()

	act, err := a.engine(g)
	if err != nil {
		return err
	}
	return fn(a, act)
}

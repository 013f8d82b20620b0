// Package schemas manages the schema grammars an editor can switch between:
// reading grammar files, importing them into the registry, keeping the
// active tag engine, and reloading it when a grammar file changes.
package schemas

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hack-pad/hackpadfs"
	"golang.org/x/sync/errgroup"

	"github.com/kittclouds/tagkitt/internal/store"
	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// Loader reads grammar JSON files through a hackpadfs file system: the OS in
// the CLI, IndexedDB in the browser, memory in tests. Paths are slash
// separated and relative to the file system root.
type Loader struct {
	fs     hackpadfs.FS
	logger *slog.Logger
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys hackpadfs.FS, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fs: fsys, logger: logger}
}

// Read returns the raw grammar file.
func (l *Loader) Read(name string) ([]byte, error) {
	data, err := hackpadfs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("read grammar %s: %w", name, err)
	}
	return data, nil
}

// Write stores a grammar file, creating parent directories.
func (l *Loader) Write(name string, data []byte) error {
	if dir := path.Dir(name); dir != "." {
		if err := hackpadfs.MkdirAll(l.fs, dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := hackpadfs.WriteFullFile(l.fs, name, data, 0644); err != nil {
		return fmt.Errorf("write grammar %s: %w", name, err)
	}
	return nil
}

// Parse reads and loads a grammar file into an indexed store.
func (l *Loader) Parse(name string) (*grammar.Store, error) {
	data, err := l.Read(name)
	if err != nil {
		return nil, err
	}
	s, err := grammar.Load(bytes.NewReader(data), grammar.WithLogger(l.logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// Discover lists the files matching a doublestar pattern such as
// "schemas/**/*.json", sorted.
func (l *Loader) Discover(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	base, _ := doublestar.SplitPattern(pattern)

	var matches []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := hackpadfs.ReadDir(l.fs, dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			p := e.Name()
			if dir != "." {
				p = dir + "/" + p
			}
			if e.IsDir() {
				if err := walk(p); err != nil {
					return err
				}
				continue
			}
			if ok, _ := doublestar.Match(pattern, p); ok {
				matches = append(matches, p)
			}
		}
		return nil
	}

	if err := walk(base); err != nil {
		return nil, fmt.Errorf("discover %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// SchemaID derives a registry id from a grammar file name:
// "schemas/tei_lite.json" becomes "tei_lite".
func SchemaID(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Import reads and validates grammar files concurrently, then upserts one
// record per file into the registry. Nothing is written when any file fails
// to load.
func (l *Loader) Import(ctx context.Context, registry store.Storer, names []string) ([]*store.SchemaRecord, error) {
	records := make([]*store.SchemaRecord, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := l.Read(name)
			if err != nil {
				return err
			}
			if _, err := grammar.Load(bytes.NewReader(data), grammar.WithLogger(l.logger)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			id := SchemaID(name)
			records[i] = &store.SchemaRecord{
				ID:          id,
				Name:        id,
				GrammarJSON: string(data),
				Source:      name,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	for _, rec := range records {
		if existing, err := registry.GetSchema(rec.ID); err != nil {
			return nil, err
		} else if existing != nil {
			rec.Name = existing.Name
			rec.Roots = existing.Roots
			rec.CSS = existing.CSS
			rec.CreatedAt = existing.CreatedAt
		} else {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if err := registry.UpsertSchema(rec); err != nil {
			return nil, fmt.Errorf("register %s: %w", rec.ID, err)
		}
		l.logger.Info("Imported schema", slog.String("id", rec.ID), slog.String("source", rec.Source))
	}
	return records, nil
}

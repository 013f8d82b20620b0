package schemas

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called once per debounced change of a watched grammar file.
type ReloadFunc func(ctx context.Context, schemaID, path string) error

// WatcherConfig configures the grammar file watcher
type WatcherConfig struct {
	// Files maps grammar file paths (OS paths) to schema ids
	Files map[string]string

	// DebounceDelay is how long to wait for more changes before reloading
	DebounceDelay time.Duration

	// Reload handles a changed file
	Reload ReloadFunc

	Logger *slog.Logger
}

// Watcher reloads schemas when their grammar files change. Directories are
// watched rather than files so editors that save by rename keep working.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	reload   ReloadFunc
	debounce time.Duration

	files map[string]string // clean absolute path -> schema id

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	started bool
	done    chan struct{}
}

// NewWatcher creates a new grammar file watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debounce := config.DebounceDelay
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	files := make(map[string]string, len(config.Files))
	for p, id := range config.Files {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		files[filepath.Clean(abs)] = id
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger,
		reload:   config.Reload,
		debounce: debounce,
		files:    files,
		pending:  make(map[string]fsnotify.Op),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directories of every configured file.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for p := range w.files {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.logger.Debug("Watching directory", "path", dir)
	}

	w.started = true
	go w.processEvents(ctx)

	w.logger.Info("Grammar watcher started",
		"files", len(w.files),
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	if w.started {
		<-w.done
	}
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if _, ok := w.files[path]; !ok {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Grammar change detected", "path", path, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		if ctx.Err() != nil {
			return
		}
		id := w.files[path]

		// A save by rename shows up as Remove/Rename followed by Create.
		if !op.Has(fsnotify.Write) && !op.Has(fsnotify.Create) {
			w.logger.Warn("Grammar file removed, keeping loaded schema", "path", path, "schema", id)
			continue
		}

		if w.reload == nil {
			continue
		}
		if err := w.reload(ctx, id, path); err != nil {
			w.logger.Error("Schema reload failed", "schema", id, "path", path, "error", err)
			continue
		}
		w.logger.Debug("Schema reloaded", "schema", id, "path", path)
	}
}

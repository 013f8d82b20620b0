// Package tags answers which element names may legally appear at a position
// in a document, given an annotated schema grammar.
//
// An Engine wraps one immutable grammar.Store. Queries are synchronous and
// side-effect free apart from warnings on unresolved references, so a single
// Engine may be shared freely. Switching schema means building a new Engine.
package tags

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/kittclouds/tagkitt/pkg/grammar"
	"github.com/kittclouds/tagkitt/pkg/search"
)

// Engine runs tag queries against one schema.
type Engine struct {
	store  *grammar.Store
	logger *slog.Logger
	index  *search.Index
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	logger   *slog.Logger
	language string
}

// WithLogger sets the engine logger. It defaults to the store's.
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// WithSearchLanguage sets the stopword language of the tag search index.
func WithSearchLanguage(lang string) Option {
	return func(c *engineConfig) { c.language = lang }
}

// NewEngine builds an engine over an indexed store.
func NewEngine(store *grammar.Store, opts ...Option) *Engine {
	cfg := engineConfig{language: search.DefaultLanguage}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = store.Logger()
	}

	isStop, err := search.Stopwords(cfg.language)
	if err != nil {
		cfg.logger.Warn("Search stopwords unavailable", slog.String("language", cfg.language), slog.Any("error", err))
	}

	e := &Engine{store: store, logger: cfg.logger}
	e.index = search.NewIndex(e.entries(), isStop)
	return e
}

// Store returns the grammar store the engine reads.
func (e *Engine) Store() *grammar.Store { return e.store }

// ============================================================================
// Paths
// ============================================================================

var positionIndex = regexp.MustCompile(`\[\d+\]`)

// SplitPath strips [n] positional indices and splits on "/".
func SplitPath(path string) []string {
	path = positionIndex.ReplaceAllString(path, "")
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// ParentPath drops the last segment of a cleaned path. It returns "" for a
// root path.
func ParentPath(path string) string {
	segs := SplitPath(path)
	if len(segs) <= 1 {
		return ""
	}
	return strings.Join(segs[:len(segs)-1], "/")
}

// LastSegment returns the element name a path ends with.
func LastSegment(path string) string {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// ============================================================================
// Lookups
// ============================================================================

// Documentation returns the documentation of the first element declared
// with name.
func (e *Engine) Documentation(name string) string {
	if els := e.store.Elements(name); len(els) > 0 {
		return els[0].Documentation
	}
	return ""
}

// FullName returns the full name of the first element declared with name.
func (e *Engine) FullName(name string) string {
	if els := e.store.Elements(name); len(els) > 0 {
		return els[0].FullName
	}
	return ""
}

// Roots lists the elements a document may start with.
func (e *Engine) Roots() ([]Candidate, error) {
	starts := e.store.Starts()
	if len(starts) == 0 {
		return nil, grammar.ErrNoStart
	}
	var out []Candidate
	for _, s := range starts {
		out = append(out, e.ChildrenOf(s)...)
	}
	return out, nil
}

// ============================================================================
// Search
// ============================================================================

func (e *Engine) entries() []search.Entry {
	names := e.store.ElementNames()
	out := make([]search.Entry, 0, len(names))
	for _, name := range names {
		out = append(out, search.Entry{
			Name:          name,
			FullName:      e.FullName(name),
			Documentation: e.Documentation(name),
		})
	}
	return out
}

// Search ranks every element declared in the schema against a free-text
// query.
func (e *Engine) Search(query string, limit int) []search.Hit {
	return e.index.Search(query, limit)
}

// FilterCandidates keeps the candidates matching a free-text query, in their
// original order. An empty query keeps everything.
func (e *Engine) FilterCandidates(cands []Candidate, query string) []Candidate {
	q := e.index.Compile(query)
	if q == nil {
		return cands
	}
	var out []Candidate
	for _, c := range cands {
		s := q.Score(search.Entry{Name: c.Name, FullName: c.FullName, Documentation: c.Documentation})
		if s.Matched() {
			out = append(out, c)
		}
	}
	return out
}

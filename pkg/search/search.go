// Package search finds tags by free text over their names and documentation.
// A query compiles into a single Aho-Corasick automaton that scans every entry
// once.
package search

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// DefaultLanguage is used when no stopword language is configured.
const DefaultLanguage = "en"

// ============================================================================
// Normalisation
// ============================================================================

// Normalize lowercases text and reduces punctuation to single spaces.
func Normalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		c := unicode.ToLower(ch)
		switch {
		case c == '’':
			out.WriteRune('\'')
		case unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'':
			out.WriteRune(c)
		default:
			out.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(out.String()), " ")
}

// StopwordFunc reports whether a normalised word carries no meaning.
type StopwordFunc func(word string) bool

// Stopwords loads the stopword list for a language code such as "en".
func Stopwords(lang string) (fn StopwordFunc, err error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stopwords for %q: %v", lang, r)
		}
	}()
	sw := stopwords.MustGet(lang)
	return func(word string) bool { return sw.Contains(word) }, nil
}

// Tokenize normalises text and drops stopwords. Duplicate terms are kept once.
func Tokenize(text string, isStop StopwordFunc) []string {
	words := strings.Fields(Normalize(text))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if isStop != nil && isStop(w) {
			continue
		}
		if !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

// ============================================================================
// Query
// ============================================================================

// Entry is one searchable tag.
type Entry struct {
	Name          string `json:"name"`
	FullName      string `json:"fullName,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

func (e Entry) text() string {
	return Normalize(e.Name + " " + e.FullName + " " + e.Documentation)
}

// Score is how well an entry matches a query.
type Score struct {
	Terms    int `json:"terms"`    // distinct query terms found anywhere
	NameHits int `json:"nameHits"` // distinct query terms found in the name
}

// Matched reports whether any term was found.
func (s Score) Matched() bool { return s.Terms > 0 }

// Query is a compiled search query.
type Query struct {
	terms []string
	ac    ahocorasick.AhoCorasick
}

// Compile turns free text into a query. It returns nil when nothing is left
// after stopword removal.
func Compile(text string, isStop StopwordFunc) *Query {
	terms := Tokenize(text, isStop)
	if len(terms) == 0 {
		return nil
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	return &Query{terms: terms, ac: builder.Build(terms)}
}

// Terms returns the query terms in input order.
func (q *Query) Terms() []string { return q.terms }

// Score scans one entry.
func (q *Query) Score(e Entry) Score {
	return Score{
		Terms:    q.distinct(e.text()),
		NameHits: q.distinct(Normalize(e.Name)),
	}
}

func (q *Query) distinct(text string) int {
	if text == "" {
		return 0
	}
	seen := make(map[int]bool, len(q.terms))
	for _, m := range q.ac.FindAll(text) {
		seen[m.Pattern()] = true
	}
	return len(seen)
}

// ============================================================================
// Index
// ============================================================================

// Hit is a ranked search result.
type Hit struct {
	Entry Entry `json:"entry"`
	Score Score `json:"score"`
}

// Index holds the entries of one schema.
type Index struct {
	entries []Entry
	isStop  StopwordFunc
}

// NewIndex builds an index. A nil isStop keeps every word.
func NewIndex(entries []Entry, isStop StopwordFunc) *Index {
	return &Index{entries: slices.Clone(entries), isStop: isStop}
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Compile compiles a query with the index's stopwords.
func (ix *Index) Compile(text string) *Query {
	return Compile(text, ix.isStop)
}

// Search ranks entries by distinct terms matched, then by name hits, then by
// entry order. limit <= 0 returns every match.
func (ix *Index) Search(text string, limit int) []Hit {
	q := ix.Compile(text)
	if q == nil {
		return nil
	}

	var hits []Hit
	for _, e := range ix.entries {
		if s := q.Score(e); s.Matched() {
			hits = append(hits, Hit{Entry: e, Score: s})
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		if a.Score.Terms != b.Score.Terms {
			return b.Score.Terms - a.Score.Terms
		}
		return b.Score.NameHits - a.Score.NameHits
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

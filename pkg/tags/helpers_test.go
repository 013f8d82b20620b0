package tags

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kittclouds/tagkitt/pkg/grammar"
	gt "github.com/kittclouds/tagkitt/pkg/grammar/grammartest"
)

func engineFor(t testing.TB, doc gt.N) *Engine {
	t.Helper()
	return NewEngine(gt.MustStore(t, doc))
}

// elementA is the grammar `start { element A { content } }`.
func elementA(content ...gt.N) gt.N {
	return gt.Grammar(gt.Start(gt.Element("A", content...)))
}

func leaf(name string) gt.N { return gt.Element(name, gt.Empty()) }

func names(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func present(names ...string) []Tag {
	out := make([]Tag, len(names))
	for i, n := range names {
		out[i] = Tag{Name: n}
	}
	return out
}

func tag(name string) *Tag { return &Tag{Name: name} }

func declared(t testing.TB, e *Engine, name string) *grammar.Node {
	t.Helper()
	els := e.Store().Elements(name)
	require.NotEmpty(t, els, "element %s not declared", name)
	return els[0]
}

package grammar_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/tagkitt/pkg/grammar"
	. "github.com/kittclouds/tagkitt/pkg/grammar/grammartest"
)

func TestStoreIndexes(t *testing.T) {
	s := MustStore(t, TEIMini(true))

	assert.Equal(t, []string{"TEI", "text", "body", "p", "persName", "placeName", "date"}, s.ElementNames())
	require.Len(t, s.Starts(), 1)
	assert.Empty(t, s.Warnings())

	p := s.Define("p")
	require.NotNil(t, p)
	assert.Equal(t, grammar.KindDefine, p.Kind)
	assert.Same(t, first(t, s, "p"), s.DefinedElement(p))

	refs := s.RefsTo("persName")
	require.Len(t, refs, 1)
	assert.Same(t, first(t, s, "persName"), s.RefElement(refs[0]))
	assert.Len(t, s.Resolve(refs[0]), 1)
}

func TestStoreDuplicateDefine(t *testing.T) {
	doc := Grammar(
		Start(Ref("a")),
		Define("a", Element("a", Empty())),
		Define("a", Element("b", Empty())),
	)
	_, err := grammar.Load(bytes.NewReader(JSON(t, doc)))
	require.Error(t, err)
	assert.ErrorIs(t, err, grammar.ErrDuplicateDefine)
}

func TestStoreCombineDefine(t *testing.T) {
	s := MustStore(t, Grammar(
		Start(Element("root", Ref("inline"))),
		Define("inline", Element("a", Empty())),
		Combine("inline", "choice", Element("b", Empty())),
	))
	assert.Len(t, s.Definitions("inline"), 2)
	assert.Nil(t, s.RefElement(s.RefsTo("inline")[0]), "combined define does not name a single element")
}

func TestStoreUnresolvedRef(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s := MustStore(t, Grammar(
		Start(Element("root", Ref("missing"), Ref("missing"))),
	), grammar.WithLogger(logger))

	require.Len(t, s.Warnings(), 1)
	assert.ErrorIs(t, s.Warnings()[0], grammar.ErrUnresolvedRef)
	assert.Contains(t, buf.String(), "missing")

	assert.Empty(t, s.Resolve(s.RefsTo("missing")[0]))
	assert.Nil(t, s.RefElement(s.RefsTo("missing")[0]))
}

func TestStorePatternDefine(t *testing.T) {
	s := MustStore(t, Grammar(
		Start(Element("root", Ref("model.inline"))),
		Define("model.inline", Choice(Element("a", Empty()), Element("b", Empty()))),
	))
	assert.Nil(t, s.DefinedElement(s.Define("model.inline")))
	assert.Nil(t, s.DefinedElement(nil))
}

func TestStoreMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{"elements": [`},
		{"nameless child", `{"elements": [{"type": "element"}]}`},
		{"unnamed define", `{"elements": [{"type": "element", "name": "define"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := grammar.Load(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, grammar.ErrMalformedGrammar)
		})
	}
}

package grammar_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/tagkitt/pkg/grammar"
	. "github.com/kittclouds/tagkitt/pkg/grammar/grammartest"
)

func elementA(content ...N) N {
	return Grammar(Start(Element("A", content...)))
}

func leaf(name string) N { return Element(name, Text()) }

func first(t *testing.T, s *grammar.Store, name string) *grammar.Node {
	t.Helper()
	els := s.Elements(name)
	require.NotEmpty(t, els, "element %s not declared", name)
	return els[0]
}

func TestAnnotateIdempotent(t *testing.T) {
	raw := JSON(t, TEIMini(true))

	a, err := grammar.DecodeBytes(raw)
	require.NoError(t, err)
	b, err := grammar.DecodeBytes(raw)
	require.NoError(t, err)

	grammar.Annotate(a)
	grammar.Annotate(b)
	grammar.Annotate(b) // second pass must not accumulate

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestAnnotateDocumentation(t *testing.T) {
	s := MustStore(t, Grammar(Start(
		Element("A",
			Doc("  (Alpha   element)\n   holds\tthings  "),
			Element("B", Doc("no prefix here"), Text()),
			Element("C", Text()),
		),
	)))

	a := first(t, s, "A")
	assert.Equal(t, "(Alpha element) holds things", a.Documentation)
	assert.Equal(t, "Alpha element", a.FullName)

	b := first(t, s, "B")
	assert.Equal(t, "no prefix here", b.Documentation)
	assert.Empty(t, b.FullName, "documentation without (Full Name) yields no full name")

	c := first(t, s, "C")
	assert.Empty(t, c.Documentation)
	assert.Empty(t, c.FullName)
}

func TestAnnotateIsEmptyTag(t *testing.T) {
	s := MustStore(t, Grammar(Start(
		Element("A",
			Element("B", Text()),
			Element("C", Empty()),
			Element("D", Optional(Attribute("when"))),
			Element("E", ZeroOrMore(Ref("x"))),
		),
	), Define("x", Element("X", Empty()))))

	assert.False(t, first(t, s, "A").IsEmptyTag)
	assert.True(t, first(t, s, "B").IsEmptyTag)
	assert.True(t, first(t, s, "C").IsEmptyTag)
	assert.False(t, first(t, s, "D").IsEmptyTag, "attributes count as structure")
	assert.False(t, first(t, s, "E").IsEmptyTag, "refs count as structure")
}

func TestAnnotatePatternPath(t *testing.T) {
	t.Run("no pattern", func(t *testing.T) {
		s := MustStore(t, elementA(leaf("B")))
		assert.Empty(t, first(t, s, "B").PatternPath)
	})

	t.Run("optional", func(t *testing.T) {
		s := MustStore(t, elementA(Optional(leaf("B"))))
		path := first(t, s, "B").PatternPath
		require.Len(t, path, 1)
		assert.Equal(t, grammar.KindOptional, path[0].Kind)
		assert.Equal(t, 0, path[0].Index)
		assert.Empty(t, path[0].Choices)
	})

	t.Run("choice marks the pattern outside it", func(t *testing.T) {
		s := MustStore(t, elementA(OneOrMore(Choice(leaf("B"), leaf("C")))))
		b := first(t, s, "B").PatternPath
		c := first(t, s, "C").PatternPath
		require.Len(t, b, 1)
		require.Len(t, c, 1)

		assert.Equal(t, grammar.KindOneOrMore, b[0].Kind)
		assert.Equal(t, b[0].ID, c[0].ID, "same oneOrMore instance")
		require.Len(t, b[0].Choices, 1)
		require.Len(t, c[0].Choices, 1)
		assert.Equal(t, b[0].Choices[0].ID, c[0].Choices[0].ID)
		assert.Equal(t, 0, b[0].Choices[0].Branch)
		assert.Equal(t, 1, c[0].Choices[0].Branch)
	})

	t.Run("bare choice becomes terminal entry", func(t *testing.T) {
		s := MustStore(t, elementA(Choice(leaf("B"), leaf("C"))))
		b := first(t, s, "B").PatternPath
		c := first(t, s, "C").PatternPath
		require.Len(t, b, 1)
		assert.Equal(t, grammar.KindChoice, b[0].Kind)
		assert.Equal(t, 0, b[0].Index)
		assert.Equal(t, 1, c[0].Index)
		assert.Equal(t, b[0].ID, c[0].ID)
	})

	t.Run("innermost first", func(t *testing.T) {
		s := MustStore(t, elementA(ZeroOrMore(Group(leaf("B"), Optional(leaf("C"))))))
		path := first(t, s, "C").PatternPath
		require.Len(t, path, 3)
		assert.Equal(t, grammar.KindOptional, path[0].Kind)
		assert.Equal(t, 0, path[0].Index)
		assert.Equal(t, grammar.KindGroup, path[1].Kind)
		assert.Equal(t, 1, path[1].Index)
		assert.Equal(t, grammar.KindZeroOrMore, path[2].Kind)
		assert.Equal(t, 0, path[2].Index)
	})

	t.Run("stops at enclosing element", func(t *testing.T) {
		s := MustStore(t, elementA(OneOrMore(Element("B", Optional(leaf("C"))))))
		path := first(t, s, "C").PatternPath
		require.Len(t, path, 1)
		assert.Equal(t, grammar.KindOptional, path[0].Kind)
	})
}

func TestAnnotateStableIDs(t *testing.T) {
	raw := JSON(t, TEIMini(false))
	s1, err := grammar.Load(bytes.NewReader(raw))
	require.NoError(t, err)
	s2, err := grammar.Load(bytes.NewReader(raw))
	require.NoError(t, err)

	p1 := first(t, s1, "p")
	p2 := first(t, s2, "p")
	assert.Equal(t, p1.ID, p2.ID)
	assert.NotEqual(t, p1.ID, first(t, s1, "body").ID)
}

func TestFullPathRoundTrip(t *testing.T) {
	s := MustStore(t, TEIMini(true))
	for _, name := range s.ElementNames() {
		for _, el := range s.Elements(name) {
			parsed, err := grammar.ParseFullPath(el.FullPath.String())
			require.NoError(t, err)
			assert.Same(t, el, s.Node(parsed), "element %s at %s", name, el.FullPath)
		}
	}

	_, err := grammar.ParseFullPath("0/x/1")
	assert.Error(t, err)
	assert.Nil(t, s.Node(grammar.FullPath{0, 99}))
}

package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeShape(t *testing.T) {
	input := `{
		"declaration": {"attributes": {"version": "1.0"}},
		"elements": [
			{"type": "comment", "comment": "generated"},
			{"type": "element", "name": "grammar", "attributes": {"ns": "http://www.tei-c.org/ns/1.0"}, "elements": [
				{"type": "element", "name": "start", "elements": [{"type": "element", "name": "ref", "attributes": {"name": "p"}}]},
				{"type": "element", "name": "define", "attributes": {"name": "p"}, "elements": [
					{"type": "element", "name": "element", "elements": [
						{"type": "element", "name": "name", "elements": [{"type": "text", "text": " p "}]},
						{"type": "element", "name": "a:documentation", "elements": [{"type": "text", "text": "(paragraph)"}]},
						{"type": "element", "name": "attribute", "attributes": {"name": "rend"}, "elements": [
							{"type": "element", "name": "choice", "elements": [
								{"type": "element", "name": "value", "elements": [{"type": "text", "text": "bold"}]},
								{"type": "element", "name": "value", "elements": [{"type": "text", "text": 7}]}
							]}
						]},
						{"type": "element", "name": "sch:pattern"}
					]}
				]}
			]}
		]
	}`
	root, err := Decode(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, KindDocument, root.Kind)
	require.Len(t, root.Children, 1, "comments are dropped")
	g := root.Children[0]
	assert.Equal(t, KindGrammar, g.Kind)
	assert.Same(t, root, g.Parent)

	el := g.Children[1].FirstChild()
	assert.Equal(t, KindElement, el.Kind)
	assert.Equal(t, "p", el.Name, "name child is trimmed")
	assert.Equal(t, KindDocumentation, el.Children[1].Kind)

	values := el.Children[2].FirstChild().Children
	assert.Equal(t, "bold", values[0].Text)
	assert.Equal(t, "7", values[1].Text)

	unknown := el.Children[3]
	assert.Equal(t, KindUnknown, unknown.Kind)
	assert.Equal(t, "sch:pattern", unknown.Attr("#name"))
}

func TestKindText(t *testing.T) {
	for k, name := range kindNames {
		b, err := k.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(b))

		var back Kind
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, k, back)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("bogus")))
	assert.Equal(t, KindDocumentation, ParseKind("a:documentation"))
	assert.True(t, KindZeroOrMore.IsRepeat())
	assert.False(t, KindChoice.IsPattern())
}

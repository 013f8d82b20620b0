// Package grammartest builds grammar JSON fixtures for tests.
//
// Usage:
//
//	doc := grammartest.Grammar(
//	    grammartest.Start(grammartest.Ref("TEI")),
//	    grammartest.Define("TEI", grammartest.Element("TEI", grammartest.Ref("text"))),
//	)
//	store := grammartest.MustStore(t, doc)
package grammartest

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// N is a node in the converter's JSON shape.
type N map[string]any

func node(kind string, attrs map[string]string, children ...N) N {
	n := N{"type": "element", "name": kind}
	if len(attrs) > 0 {
		n["attributes"] = attrs
	}
	if len(children) > 0 {
		elems := make([]N, 0, len(children))
		for _, c := range children {
			if c != nil {
				elems = append(elems, c)
			}
		}
		n["elements"] = elems
	}
	return n
}

func named(kind, name string, children ...N) N {
	return node(kind, map[string]string{"name": name}, children...)
}

// Grammar wraps content in a grammar node under a document root.
func Grammar(children ...N) N {
	return N{"elements": []N{node("grammar", nil, children...)}}
}

func Start(children ...N) N { return node("start", nil, children...) }
func Define(name string, children ...N) N { return named("define", name, children...) }
func Element(name string, children ...N) N { return named("element", name, children...) }
func Attribute(name string, children ...N) N { return named("attribute", name, children...) }
func Ref(name string) N { return named("ref", name) }
func Choice(children ...N) N { return node("choice", nil, children...) }
func Group(children ...N) N { return node("group", nil, children...) }
func Interleave(children ...N) N { return node("interleave", nil, children...) }
func OneOrMore(children ...N) N { return node("oneOrMore", nil, children...) }
func ZeroOrMore(children ...N) N { return node("zeroOrMore", nil, children...) }
func Optional(children ...N) N { return node("optional", nil, children...) }
func Text() N { return node("text", nil) }
func Empty() N { return node("empty", nil) }
func Value(v string) N { return node("value", nil, Chars(v)) }
func Chars(s string) N { return N{"type": "text", "text": s} }
func Doc(text string) N { return node("a:documentation", nil, Chars(text)) }
func Combine(name, how string, c ...N) N {
	return node("define", map[string]string{"name": name, "combine": how}, c...)
}

// JSON marshals a fixture.
func JSON(t testing.TB, n N) []byte {
	t.Helper()
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return data
}

// MustStore decodes, annotates and indexes a fixture.
func MustStore(t testing.TB, n N, opts ...grammar.Option) *grammar.Store {
	t.Helper()
	s, err := grammar.Load(bytes.NewReader(JSON(t, n)), opts...)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return s
}

// TEIMini is a small TEI-like grammar: TEI/text/body/p where p holds
// persName, placeName and date. When repeated is true the inline content is
// wrapped in zeroOrMore(choice(text, ...)), otherwise the three refs form a
// plain sequence.
func TEIMini(repeated bool) N {
	inline := []N{Ref("persName"), Ref("placeName"), Ref("date")}
	if repeated {
		inline = []N{ZeroOrMore(Choice(append([]N{Text()}, inline...)...))}
	}
	pContent := append([]N{Doc("(paragraph) marks paragraphs in prose.")}, inline...)
	return Grammar(
		Start(Ref("TEI")),
		Define("TEI", Element("TEI",
			Doc("(TEI document) contains a single TEI-conformant document."),
			Ref("text"))),
		Define("text", Element("text",
			Doc("(text) contains a single text of any kind."),
			Ref("body"))),
		Define("body", Element("body",
			Doc("(text body) contains the whole body of a single unitary text."),
			OneOrMore(Ref("p")))),
		Define("p", Element("p", pContent...)),
		Define("persName", Element("persName",
			Doc("(personal name) contains a proper noun referring to a person."),
			ZeroOrMore(Text()))),
		Define("placeName", Element("placeName",
			Doc("(place name) contains an absolute or relative place name."),
			ZeroOrMore(Text()))),
		Define("date", Element("date",
			Doc("(date) contains a date in any format."),
			Optional(Attribute("when")),
			ZeroOrMore(Text()))),
	)
}

package tags

import (
	"slices"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// Attribute describes one attribute an element may carry.
type Attribute struct {
	Name          string   `json:"name"`
	Required      bool     `json:"required"`
	Documentation string   `json:"documentation,omitempty"`
	Values        []string `json:"values,omitempty"`
}

// AttributesForPath resolves path and lists its attributes.
func (e *Engine) AttributesForPath(path string) []Attribute {
	return e.AttributesOf(e.Resolve(path))
}

// AttributesOf lists the attributes declared for element n, following refs
// but not nested elements. An attribute is required when no optional,
// zeroOrMore or choice lies between it and the element. Values holds the
// enumerated value alternatives, if any.
func (e *Engine) AttributesOf(n *grammar.Node) []Attribute {
	if n == nil {
		return nil
	}
	var out []Attribute
	index := make(map[string]int)

	e.walkContent(n, func(c *grammar.Node, optional bool) {
		if c.Kind != grammar.KindAttribute || c.Name == "" {
			return
		}
		if i, ok := index[c.Name]; ok {
			out[i].Required = out[i].Required && !optional
			return
		}
		index[c.Name] = len(out)
		out = append(out, Attribute{
			Name:          c.Name,
			Required:      !optional,
			Documentation: grammar.ExtractDocumentation(c),
			Values:        valuesOf(c),
		})
	})
	return out
}

func valuesOf(attr *grammar.Node) []string {
	var values []string
	attr.Walk(func(n *grammar.Node) bool {
		if n.Kind == grammar.KindValue && !slices.Contains(values, n.Text) {
			values = append(values, n.Text)
		}
		return true
	})
	return values
}

// allowsText reports whether character data may appear directly in n.
func (e *Engine) allowsText(n *grammar.Node) bool {
	found := false
	e.walkContent(n, func(c *grammar.Node, _ bool) {
		switch c.Kind {
		case grammar.KindText, grammar.KindMixed, grammar.KindData, grammar.KindValue, grammar.KindList:
			found = true
		}
	})
	return found
}

// walkContent calls fn for every node making up n's own content: nested
// elements are reported but not entered, attributes are reported but not
// entered, refs are followed once each. optional is true below an optional,
// zeroOrMore or choice.
func (e *Engine) walkContent(n *grammar.Node, fn func(c *grammar.Node, optional bool)) {
	visited := make(map[string]bool)
	var visit func(c *grammar.Node, optional bool)
	visit = func(c *grammar.Node, optional bool) {
		fn(c, optional)
		switch c.Kind {
		case grammar.KindElement, grammar.KindAttribute:
			return
		case grammar.KindRef:
			if visited[c.Name] {
				return
			}
			visited[c.Name] = true
			for _, part := range e.store.Resolve(c) {
				for _, cc := range part.Children {
					visit(cc, optional)
				}
			}
			return
		case grammar.KindOptional, grammar.KindZeroOrMore, grammar.KindChoice:
			optional = true
		}
		for _, cc := range c.Children {
			visit(cc, optional)
		}
	}
	for _, root := range e.scanRoots(n) {
		for _, c := range root.Children {
			visit(c, false)
		}
	}
}

package grammar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// rawNode is the canonical converter shape: a name discriminator, an
// attributes map and an ordered elements array. Character content arrives
// as {"type": "text", "text": "..."}.
type rawNode struct {
	Type       string            `json:"type,omitempty"`
	Name       string            `json:"name,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Elements   []*rawNode        `json:"elements,omitempty"`
	Text       json.RawMessage   `json:"text,omitempty"`
	CData      string            `json:"cdata,omitempty"`
}

// Decode reads a grammar JSON tree. Parent pointers are wired; the tree is
// not annotated.
func Decode(r io.Reader) (*Node, error) {
	var raw rawNode
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGrammar, err)
	}
	root, err := convert(&raw, nil)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedGrammar)
	}
	return root, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Node, error) {
	return Decode(bytes.NewReader(data))
}

func convert(raw *rawNode, parent *Node) (*Node, error) {
	switch raw.Type {
	case "comment", "instruction", "doctype":
		return nil, nil
	case "text", "cdata":
		return &Node{Kind: KindCharData, Text: rawText(raw), Parent: parent}, nil
	}

	n := &Node{Parent: parent}
	switch {
	case raw.Name != "":
		n.Kind = ParseKind(raw.Name)
		if n.Kind == KindUnknown {
			// Keep the original tag so unknown constructs remain inspectable.
			n.Attributes = map[string]string{"#name": raw.Name}
		}
	case parent == nil:
		n.Kind = KindDocument
	default:
		return nil, fmt.Errorf("%w: node without name under %s", ErrMalformedGrammar, parent.Kind)
	}

	if len(raw.Attributes) > 0 {
		if n.Attributes == nil {
			n.Attributes = make(map[string]string, len(raw.Attributes))
		}
		for k, v := range raw.Attributes {
			n.Attributes[k] = v
		}
	}

	for _, rc := range raw.Elements {
		if rc == nil {
			continue
		}
		child, err := convert(rc, n)
		if err != nil {
			return nil, err
		}
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}

	if n.Kind.IsNamed() {
		n.Name = strings.TrimSpace(n.Attr("name"))
		if n.Name == "" && (n.Kind == KindElement || n.Kind == KindAttribute) {
			n.Name = nameChild(n)
		}
	}
	if n.Kind == KindValue {
		n.Text = collectText(n)
	}
	return n, nil
}

// rawText accepts text given either as a JSON string or a bare scalar.
func rawText(raw *rawNode) string {
	if raw.CData != "" {
		return raw.CData
	}
	if len(raw.Text) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw.Text, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw.Text), `"`)
}

// nameChild handles the <element><name>p</name>...</element> form.
func nameChild(n *Node) string {
	for _, c := range n.Children {
		if c.Kind == KindName {
			return strings.TrimSpace(collectText(c))
		}
	}
	return ""
}

func collectText(n *Node) string {
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Kind == KindCharData {
			sb.WriteString(c.Text)
		}
		return true
	})
	return sb.String()
}

package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// FullPath locates a node as the child indices taken from the grammar root.
type FullPath []int

// String renders the path as slash-separated indices, e.g. "0/3/1".
// The root itself renders as "".
func (p FullPath) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, "/")
}

// ParseFullPath is the inverse of FullPath.String.
func ParseFullPath(s string) (FullPath, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return FullPath{}, nil
	}
	parts := strings.Split(s, "/")
	out := make(FullPath, len(parts))
	for i, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid full path segment %q", part)
		}
		out[i] = idx
	}
	return out, nil
}

// ChoiceMark records a choice crossed between a node and a pattern entry.
type ChoiceMark struct {
	ID     string `json:"id"`
	Branch int    `json:"branch"`
}

// PatternStep is one occurrence construct enclosing a node, as seen from
// that node: Index is the position of the walked child inside the pattern.
// Choices lists the choices crossed below this pattern, outermost first.
type PatternStep struct {
	Kind    Kind         `json:"kind"`
	Index   int          `json:"index"`
	ID      string       `json:"id"`
	Choices []ChoiceMark `json:"choices,omitempty"`
}

// Node is one node of the schema tree.
type Node struct {
	Kind       Kind              `json:"kind"`
	Name       string            `json:"name,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Text       string            `json:"text,omitempty"`
	Children   []*Node           `json:"children,omitempty"`
	Parent     *Node             `json:"-"`

	// Set by Annotate.
	ID            string        `json:"id,omitempty"`
	FullPath      FullPath      `json:"fullPath,omitempty"`
	Documentation string        `json:"documentation,omitempty"`
	FullName      string        `json:"fullName,omitempty"`
	PatternPath   []PatternStep `json:"patternPath,omitempty"`
	IsEmptyTag    bool          `json:"isEmptyTag,omitempty"`
}

// Attr returns a raw attribute value.
func (n *Node) Attr(key string) string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[key]
}

// FirstChild returns the first child or nil
func (n *Node) FirstChild() *Node {
	if len(n.Children) > 0 {
		return n.Children[0]
	}
	return nil
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Ancestor returns the first ancestor of the given kind
func (n *Node) Ancestor(kind Kind) *Node {
	curr := n.Parent
	for curr != nil {
		if curr.Kind == kind {
			return curr
		}
		curr = curr.Parent
	}
	return nil
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// String provides a pretty-printed tree view for debugging.
func (n *Node) String() string {
	var sb strings.Builder
	n.printRecursive(&sb, 0)
	return sb.String()
}

func (n *Node) printRecursive(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Kind.String())
	if n.Name != "" {
		fmt.Fprintf(sb, " %q", n.Name)
	}
	if n.Kind == KindCharData || n.Kind == KindValue {
		txt := n.Text
		if len(txt) > 30 {
			txt = txt[:27] + "..."
		}
		fmt.Fprintf(sb, " %q", txt)
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		child.printRecursive(sb, depth+1)
	}
}

package grammar

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// idNamespace seeds node ids. Ids are derived from full paths, so the same
// grammar always annotates to the same ids.
var idNamespace = uuid.MustParse("6f1c2f5e-8a0b-5c7e-9d1a-3b4c5d6e7f80")

var fullNamePattern = regexp.MustCompile(`^\(([^)]+)\)`)

// Annotate decorates the tree rooted at root in a single pre-order pass and
// returns root. Every node gets FullPath and ID; element, ref and attribute
// nodes get PatternPath; element nodes additionally get Documentation,
// FullName and IsEmptyTag. Previously annotated fields are overwritten, so
// annotating twice is a no-op.
func Annotate(root *Node) *Node {
	if root == nil {
		return nil
	}
	annotateNode(root, FullPath{})
	return root
}

func annotateNode(n *Node, path FullPath) {
	n.FullPath = path
	n.ID = uuid.NewSHA1(idNamespace, []byte(path.String())).String()
	n.PatternPath = nil
	n.Documentation = ""
	n.FullName = ""
	n.IsEmptyTag = false

	switch n.Kind {
	case KindElement:
		n.PatternPath = patternPathOf(n)
		n.Documentation = ExtractDocumentation(n)
		n.FullName = ParseFullName(n.Documentation)
		n.IsEmptyTag = !hasStructuralChildren(n)
	case KindRef, KindAttribute:
		n.PatternPath = patternPathOf(n)
	}

	for i, c := range n.Children {
		childPath := make(FullPath, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = i
		annotateNode(c, childPath)
	}
}

// patternPathOf walks from n towards the root, stopping at the nearest
// enclosing element. Steps are innermost first. Crossed choices attach to
// the next pattern entry outward; choices left over at the boundary become
// a terminal choice entry.
func patternPathOf(n *Node) []PatternStep {
	var steps []PatternStep
	var pending []ChoiceMark // innermost first

	child := n
	for anc := n.Parent; anc != nil; child, anc = anc, anc.Parent {
		if anc.Kind == KindElement {
			break
		}
		idx := anc.IndexOf(child)
		switch {
		case anc.Kind == KindChoice:
			pending = append(pending, ChoiceMark{ID: anc.ID, Branch: idx})
		case anc.Kind.IsPattern():
			steps = append(steps, PatternStep{
				Kind:    anc.Kind,
				Index:   idx,
				ID:      anc.ID,
				Choices: outermostFirst(pending),
			})
			pending = nil
		}
	}

	if len(pending) > 0 {
		marks := outermostFirst(pending)
		steps = append(steps, PatternStep{
			Kind:    KindChoice,
			Index:   marks[0].Branch,
			ID:      marks[0].ID,
			Choices: marks[1:],
		})
	}
	return steps
}

func outermostFirst(marks []ChoiceMark) []ChoiceMark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]ChoiceMark, len(marks))
	for i, m := range marks {
		out[len(marks)-1-i] = m
	}
	return out
}

// ExtractDocumentation returns the whitespace-normalised text of n's
// leading documentation node, or "" when n has none.
func ExtractDocumentation(n *Node) string {
	for _, c := range n.Children {
		if c.Kind == KindName {
			continue
		}
		if c.Kind != KindDocumentation {
			return ""
		}
		return strings.Join(strings.Fields(collectText(c)), " ")
	}
	return ""
}

// ParseFullName extracts "Full Name" from documentation shaped like
// "(Full Name) rest of text". Anything else yields "".
func ParseFullName(doc string) string {
	m := fullNamePattern.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// hasStructuralChildren reports whether an element, ref or attribute is
// reachable below n without crossing another element.
func hasStructuralChildren(n *Node) bool {
	found := false
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			if found {
				return false
			}
			switch d.Kind {
			case KindElement, KindRef, KindAttribute:
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

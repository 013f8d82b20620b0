package tags

import (
	"slices"
	"strings"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// ChildrenForPath resolves path and returns its first-generation children.
// An unresolvable path yields nil.
func (e *Engine) ChildrenForPath(path string) []Candidate {
	n := e.Resolve(path)
	if n == nil {
		return nil
	}
	cands := e.ChildrenOf(n)
	for i := range cands {
		cands[i].Parent.Path = strings.Join(SplitPath(path), "/")
	}
	return cands
}

// ChildrenOf collects the elements that may appear directly inside n. The
// walk stops at every nested element; refs to single-element defines become
// one candidate carrying the ref's own pattern path, refs to pattern defines
// are expanded in place.
func (e *Engine) ChildrenOf(n *grammar.Node) []Candidate {
	if n == nil {
		return nil
	}
	w := &childWalker{
		engine:  e,
		parent:  Context{Name: n.Name, FullPath: n.FullPath.String()},
		onStack: make(map[string]bool),
	}
	if n.Kind == grammar.KindDefine {
		w.onStack[n.Name] = true
	}
	for pi, root := range e.scanRoots(n) {
		for ci, c := range root.Children {
			w.visit(c, "", nil, []int{pi, ci})
		}
	}
	return w.out
}

type childWalker struct {
	engine  *Engine
	parent  Context
	onStack map[string]bool // define names being expanded
	out     []Candidate
}

// visit walks n. q qualifies pattern ids by the refs expanded so far and
// prefix holds the already qualified outer pattern refs of those refs.
func (w *childWalker) visit(n *grammar.Node, q string, prefix []PatternRef, order []int) {
	switch n.Kind {
	case grammar.KindElement:
		w.emit(n, n, q, prefix, order)
		return

	case grammar.KindRef:
		parts := w.engine.store.Resolve(n)
		if len(parts) == 0 {
			return
		}
		if el := w.engine.store.RefElement(n); el != nil {
			w.emit(el, n, q, prefix, order)
			return
		}
		if w.onStack[n.Name] {
			return
		}
		w.onStack[n.Name] = true
		inner := concat(prefix, qualify(n.PatternPath, q))
		innerQ := q + n.ID + "/"
		for pi, part := range parts {
			for ci, c := range part.Children {
				w.visit(c, innerQ, inner, concatInts(order, pi, ci))
			}
		}
		w.onStack[n.Name] = false
		return

	case grammar.KindAttribute, grammar.KindDocumentation, grammar.KindCharData,
		grammar.KindText, grammar.KindValue, grammar.KindData, grammar.KindEmpty,
		grammar.KindNotAllowed, grammar.KindName, grammar.KindAnyName, grammar.KindNsName:
		return
	}

	for i, c := range n.Children {
		w.visit(c, q, prefix, concatInts(order, i))
	}
}

// emit adds a candidate for element el found at occurrence occ, which is el
// itself or the ref naming it.
func (w *childWalker) emit(el, occ *grammar.Node, q string, prefix []PatternRef, order []int) {
	c := newCandidate(el)
	c.setPath(concat(prefix, qualify(occ.PatternPath, q)))
	c.Parent = w.parent
	c.occ = occ
	c.key = q + occ.ID
	c.order = order
	w.out = append(w.out, c)
}

func concat(a, b []PatternRef) []PatternRef {
	out := make([]PatternRef, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func concatInts(a []int, b ...int) []int {
	return append(slices.Clone(a), b...)
}

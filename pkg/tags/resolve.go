package tags

import (
	"log/slog"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// Resolve maps a slash-delimited element path such as "TEI/text/body/p[2]"
// to its grammar node. Positional indices are ignored. The result is an
// element, or a define when a segment names a ref to a pattern define.
// Any unmatched segment yields nil.
func (e *Engine) Resolve(path string) *grammar.Node {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return nil
	}

	ctx := e.store.Root()
	for _, seg := range segs {
		next := e.find(ctx, seg)
		if next == nil {
			e.logger.Debug("Path segment not found", slog.String("path", path), slog.String("segment", seg))
			return nil
		}
		ctx = next
	}
	return ctx
}

// ResolveFullPath returns the node at an annotation full path.
func (e *Engine) ResolveFullPath(p grammar.FullPath) *grammar.Node {
	return e.store.Node(p)
}

// scanRoots are the nodes whose subtrees make up ctx's content. A define may
// be split over several combine= parts.
func (e *Engine) scanRoots(ctx *grammar.Node) []*grammar.Node {
	if ctx.Kind == grammar.KindDefine {
		if parts := e.store.Definitions(ctx.Name); len(parts) > 0 {
			return parts
		}
	}
	return []*grammar.Node{ctx}
}

type segmentMatch struct {
	local    *grammar.Node // element declared directly in the context
	ref      *grammar.Node // ref named like the segment
	expanded *grammar.Node // element reached through a pattern define
}

// find looks for seg below ctx without crossing element boundaries. A local
// element beats a ref, which beats an element reached through a ref.
func (e *Engine) find(ctx *grammar.Node, seg string) *grammar.Node {
	var m segmentMatch
	visited := make(map[string]bool)

	var visit func(n *grammar.Node, expanded bool)
	visit = func(n *grammar.Node, expanded bool) {
		switch n.Kind {
		case grammar.KindElement:
			if n.Name != seg {
				return
			}
			if !expanded && m.local == nil {
				m.local = n
			} else if expanded && m.expanded == nil {
				m.expanded = n
			}
			return
		case grammar.KindRef:
			if n.Name == seg && m.ref == nil && len(e.store.Definitions(n.Name)) > 0 {
				m.ref = n
			}
			if visited[n.Name] {
				return
			}
			visited[n.Name] = true
			for _, part := range e.store.Resolve(n) {
				for _, c := range part.Children {
					visit(c, true)
				}
			}
			return
		case grammar.KindAttribute, grammar.KindDocumentation, grammar.KindCharData:
			return
		}
		for _, c := range n.Children {
			visit(c, expanded)
		}
	}

	for _, root := range e.scanRoots(ctx) {
		for _, c := range root.Children {
			visit(c, false)
		}
	}

	switch {
	case m.local != nil:
		return m.local
	case m.ref != nil:
		if el := e.store.RefElement(m.ref); el != nil {
			return el
		}
		return e.store.Define(m.ref.Name)
	default:
		return m.expanded
	}
}

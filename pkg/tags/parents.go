package tags

import (
	"strings"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// ParentsForPath resolves path and returns the elements that may contain it.
func (e *Engine) ParentsForPath(path string) []Candidate {
	n := e.Resolve(path)
	if n == nil {
		return nil
	}
	cands := e.ParentsOf(n)
	for i := range cands {
		if cands[i].Child != nil {
			cands[i].Child.Path = strings.Join(SplitPath(path), "/")
		}
	}
	return cands
}

// ParentsOf searches the whole grammar for elements that may contain n. Every
// declaration of n's name is climbed to its nearest element; a define on the
// way is followed through each ref naming it. Results are unique by name and
// carry n as Child context.
func (e *Engine) ParentsOf(n *grammar.Node) []Candidate {
	if n == nil {
		return nil
	}
	p := &parentWalker{
		engine:  e,
		child:   Context{Name: n.Name, FullPath: n.FullPath.String()},
		seen:    make(map[string]bool),
		visited: make(map[string]bool),
	}

	switch n.Kind {
	case grammar.KindDefine:
		p.visited[n.Name] = true
		for _, ref := range e.store.RefsTo(n.Name) {
			p.climb(ref)
		}
	case grammar.KindElement:
		for _, occ := range e.store.Elements(n.Name) {
			p.climb(occ)
		}
	}
	return p.out
}

type parentWalker struct {
	engine  *Engine
	child   Context
	seen    map[string]bool // emitted parent names
	visited map[string]bool // define names already climbed
	out     []Candidate
}

// climb walks from occurrence occ to its nearest element. Reaching the root
// means the occurrence has no parent.
func (p *parentWalker) climb(occ *grammar.Node) {
	for anc := occ.Parent; anc != nil; anc = anc.Parent {
		switch anc.Kind {
		case grammar.KindElement:
			p.emit(anc, occ)
			return
		case grammar.KindDefine:
			if p.visited[anc.Name] {
				return
			}
			p.visited[anc.Name] = true
			for _, ref := range p.engine.store.RefsTo(anc.Name) {
				p.climb(ref)
			}
			return
		}
	}
}

func (p *parentWalker) emit(parent, occ *grammar.Node) {
	if parent.Name == "" || p.seen[parent.Name] {
		return
	}
	p.seen[parent.Name] = true

	c := newCandidate(parent)
	c.setPath(qualify(occ.PatternPath, ""))
	child := p.child
	c.Child = &child
	c.occ = parent
	c.key = parent.ID
	c.order = []int(parent.FullPath)
	p.out = append(p.out, c)
}

package tags

import (
	"slices"
)

// OperationKind names a tagging action offered to the editor.
type OperationKind string

const (
	OpAdd       OperationKind = "add"
	OpAddBefore OperationKind = "addBefore"
	OpAddAfter  OperationKind = "addAfter"
	OpAddAround OperationKind = "addAround"
	OpAddInside OperationKind = "addInside"
	OpChange    OperationKind = "change"
)

// OperationKinds lists every operation in menu order.
var OperationKinds = []OperationKind{OpAdd, OpAddBefore, OpAddAfter, OpAddAround, OpAddInside, OpChange}

// Operation is one menu entry. Available reports whether the action applies
// to the selection at all; an available operation may still have no
// candidates.
type Operation struct {
	Kind       OperationKind `json:"kind"`
	Available  bool          `json:"available"`
	Candidates []Candidate   `json:"candidates"`
}

// Selection is the editor state a menu is built for.
//
// Without a targeted tag, Path is the element holding the cursor and Siblings
// describes that element's present children around the cursor. With a
// targeted tag, Path ends at the target and Siblings describes the target's
// parent's children, Previous and Next being the target's neighbours.
// Children lists the target's own present children.
type Selection struct {
	Path          string          `json:"path"`
	TagTargeted   bool            `json:"tagTargeted"`
	Collapsed     bool            `json:"collapsed"`
	SpansElements bool            `json:"spansElements"`
	Siblings      DocumentContext `json:"siblings"`
	Children      []Tag           `json:"children,omitempty"`
}

// Operations decides which tagging operations the selection allows and
// with which tags. Candidate lists are unique by name and sorted.
func (e *Engine) Operations(sel Selection) []Operation {
	ops := make([]Operation, 0, len(OperationKinds))
	add := func(kind OperationKind, available bool, cands func() []Candidate) {
		op := Operation{Kind: kind, Available: available, Candidates: []Candidate{}}
		if available {
			op.Candidates = Unique(cands())
		}
		ops = append(ops, op)
	}

	if !sel.TagTargeted {
		add(OpAdd, !sel.SpansElements, func() []Candidate { return e.addCandidates(sel) })
		for _, kind := range OperationKinds[1:] {
			add(kind, false, nil)
		}
		return ops
	}

	target := Tag{Name: LastSegment(sel.Path)}
	parentPath := ParentPath(sel.Path)
	hasParent := parentPath != "" && target.Name != ""

	add(OpAdd, false, nil)
	add(OpAddBefore, hasParent, func() []Candidate { return e.siblingCandidates(parentPath, target, Before, sel.Siblings) })
	add(OpAddAfter, hasParent, func() []Candidate { return e.siblingCandidates(parentPath, target, After, sel.Siblings) })
	add(OpAddAround, hasParent, func() []Candidate { return e.aroundCandidates(sel.Path, parentPath, target, sel.Siblings) })
	add(OpAddInside, target.Name != "", func() []Candidate { return e.insideCandidates(sel.Path, sel.Children) })
	add(OpChange, hasParent, func() []Candidate { return e.changeCandidates(parentPath, target, sel.Siblings, sel.Children) })
	return ops
}

// A collapsed cursor inserts an empty tag. A range wraps the selected text,
// so the new tag must allow text.
func (e *Engine) addCandidates(sel Selection) []Candidate {
	cands := FilterByPresentTags(e.ChildrenForPath(sel.Path), sel.Siblings.PresentTags)
	cands = LimitByPosition(cands, Both, nil, sel.Siblings)
	if sel.Collapsed {
		return cands
	}
	return slices.DeleteFunc(cands, func(c Candidate) bool {
		return !e.allowsText(c.node)
	})
}

func (e *Engine) siblingCandidates(parentPath string, target Tag, dir Direction, sib DocumentContext) []Candidate {
	cands := FilterByPresentTags(e.ChildrenForPath(parentPath), sib.PresentTags)
	return LimitByPosition(cands, dir, &target, sib)
}

// The wrapper takes the target's place and must accept the target.
func (e *Engine) aroundCandidates(path, parentPath string, target Tag, sib DocumentContext) []Candidate {
	containers := Names(e.ParentsForPath(path))
	cands := FilterByPresentTags(e.ChildrenForPath(parentPath), without(sib.PresentTags, target))
	cands = LimitByPosition(cands, Both, nil, sib)
	return slices.DeleteFunc(cands, func(c Candidate) bool {
		return !slices.Contains(containers, c.Name)
	})
}

// The new tag becomes the target's only child and takes over its content.
func (e *Engine) insideCandidates(path string, children []Tag) []Candidate {
	cands := e.ChildrenForPath(path)
	return slices.DeleteFunc(cands, func(c Candidate) bool {
		return !e.accepts(&c, children)
	})
}

// The replacement takes the target's place and keeps its content.
func (e *Engine) changeCandidates(parentPath string, target Tag, sib DocumentContext, children []Tag) []Candidate {
	cands := FilterByPresentTags(e.ChildrenForPath(parentPath), without(sib.PresentTags, target))
	cands = LimitByPosition(cands, Both, nil, sib)
	return slices.DeleteFunc(cands, func(c Candidate) bool {
		return c.Name == target.Name || !e.accepts(&c, children)
	})
}

// accepts reports whether every child tag may appear inside c.
func (e *Engine) accepts(c *Candidate, children []Tag) bool {
	if len(children) == 0 {
		return true
	}
	allowed := Names(e.ChildrenOf(c.node))
	for _, ch := range children {
		if !slices.Contains(allowed, ch.Name) {
			return false
		}
	}
	return true
}

// without drops the first occurrence of tag, matched by id when it has one.
func without(present []Tag, tag Tag) []Tag {
	out := slices.Clone(present)
	for i, p := range out {
		if p.Name == tag.Name && (tag.ID == "" || p.ID == tag.ID) {
			return slices.Delete(out, i, i+1)
		}
	}
	return out
}

package tags

import (
	"slices"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// LimitByPosition keeps the candidates that fit between the neighbours of an
// insertion point. anchor is the present tag the insertion is relative to;
// ctx carries its previous and next siblings.
//
//	before: previous <= candidate <= anchor
//	after:  anchor <= candidate <= next
//	both:   previous <= candidate <= next
//
// Positions compare in content-model order. Everything under a shared
// oneOrMore or zeroOrMore compares equal, so repeating in place is always
// allowed. A bound whose tag is not among cands does not constrain.
func LimitByPosition(cands []Candidate, dir Direction, anchor *Tag, ctx DocumentContext) []Candidate {
	at := locate(cands, anchor)
	prev := locate(cands, ctx.Previous)
	next := locate(cands, ctx.Next)

	var lower, upper *Candidate
	switch dir {
	case Before:
		lower, upper = prev, at
	case After:
		lower, upper = at, next
	default:
		lower, upper = prev, next
	}
	if lower == nil && upper == nil {
		return cands
	}

	out := make([]Candidate, 0, len(cands))
	for i := range cands {
		c := &cands[i]
		switch {
		case at != nil && sameRepeat(c, at):
		case lower != nil && comparePosition(c, lower) < 0:
			continue
		case upper != nil && comparePosition(c, upper) > 0:
			continue
		}
		out = append(out, *c)
	}
	return out
}

func locate(cands []Candidate, tag *Tag) *Candidate {
	if tag == nil {
		return nil
	}
	if m := byName(cands, tag.Name); len(m) > 0 {
		return m[0]
	}
	return nil
}

// sameRepeat reports whether a and b sit under one shared repeat instance.
func sameRepeat(a, b *Candidate) bool {
	n := min(len(a.PatternPath), len(b.PatternPath))
	for i := 0; i < n; i++ {
		as, bs := a.PatternPath[i], b.PatternPath[i]
		if as.ID != bs.ID {
			return false
		}
		if as.Kind.IsRepeat() {
			return true
		}
		if as.Index != bs.Index {
			return false
		}
	}
	return false
}

// comparePosition orders two candidates of one container. Alternatives of a
// choice and members of one repeat compare equal.
func comparePosition(a, b *Candidate) int {
	n := min(len(a.PatternPath), len(b.PatternPath))
	for i := 0; i < n; i++ {
		as, bs := a.PatternPath[i], b.PatternPath[i]
		if as.ID != bs.ID {
			break
		}
		if as.Kind.IsRepeat() {
			return 0
		}
		if as.Index != bs.Index {
			if as.Kind == grammar.KindChoice {
				return 0
			}
			break
		}
		if alt, ok := choiceDivergence(as.Choices, bs.Choices); ok {
			if alt {
				return 0
			}
			break
		}
	}
	return slices.Compare(a.order, b.order)
}

package tags

import (
	"slices"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// Tag is a tag present in the live document.
type Tag struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Direction selects which neighbours bound an insertion.
type Direction string

const (
	Before Direction = "before"
	After  Direction = "after"
	Both   Direction = "both"
)

// DocumentContext describes the live insertion point.
type DocumentContext struct {
	PresentTags []Tag     `json:"presentTags"`
	Previous    *Tag      `json:"previous,omitempty"`
	Next        *Tag      `json:"next,omitempty"`
	Direction   Direction `json:"direction,omitempty"`
}

// FilterByPresentTags removes candidates whose grammar slot is already used up
// by the sibling tags present in the document.
//
// Present tags are matched by name against the candidates themselves, so
// cands should be the full child list of the container. Each present tag
// touches the outermost pattern of every position it could occupy, and only
// candidates under a touched pattern are examined. A candidate is removed
// when some present tag conflicts with it in every position that tag could
// occupy. Candidates with no pattern path are never removed. When nothing
// present matches a pattern the input is returned as is.
func FilterByPresentTags(cands []Candidate, present []Tag) []Candidate {
	var interps [][]*Candidate
	touched := make(map[string]bool)
	for _, tag := range present {
		matches := byName(cands, tag.Name)
		if len(matches) == 0 {
			continue
		}
		interps = append(interps, matches)
		for _, m := range matches {
			if len(m.PatternPath) > 0 {
				touched[m.PatternPath[0].ID] = true
			}
		}
	}
	if len(touched) == 0 {
		return cands
	}

	out := make([]Candidate, 0, len(cands))
	for i := range cands {
		c := &cands[i]
		if len(c.PatternPath) == 0 || !touched[c.PatternPath[0].ID] || !excluded(c, interps) {
			out = append(out, *c)
		}
	}
	return out
}

func excluded(c *Candidate, interps [][]*Candidate) bool {
	for _, positions := range interps {
		all := true
		for _, p := range positions {
			if !conflicts(c, p) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// conflicts reports whether filling the grammar position of p rules out c.
//
// Both paths are walked from the outside in while they share pattern
// instances. Once a oneOrMore or zeroOrMore is shared, everything below it may
// be entered again. Diverging into another branch of a shared choice, or
// landing on the very same position, conflicts unless a shared repeat allows
// re-entry. Diverging anywhere else means separate slots.
func conflicts(c, p *Candidate) bool {
	repeated := false
	n := min(len(c.PatternPath), len(p.PatternPath))
	for i := 0; i < n; i++ {
		cs, ps := c.PatternPath[i], p.PatternPath[i]
		if cs.ID != ps.ID {
			return false
		}
		if cs.Kind.IsRepeat() {
			repeated = true
		}
		if cs.Index != ps.Index {
			if cs.Kind == grammar.KindChoice {
				return !repeated
			}
			return false
		}
		if d, ok := choiceDivergence(cs.Choices, ps.Choices); ok {
			return d && !repeated
		}
	}
	if c.key == p.key {
		return !repeated
	}
	return false
}

// choiceDivergence compares the choices crossed below a shared pattern entry.
// ok is false when they agree. Otherwise alternative tells whether the
// first difference is two branches of one choice.
func choiceDivergence(a, b []grammar.ChoiceMark) (alternative, ok bool) {
	if slices.Equal(a, b) {
		return false, false
	}
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i].ID != b[i].ID {
			return false, true
		}
		if a[i].Branch != b[i].Branch {
			return true, true
		}
	}
	// One crosses more choices than the other below the same branch.
	return false, false
}

package tags

import (
	"slices"
	"strings"

	"github.com/kittclouds/tagkitt/pkg/grammar"
)

// PatternRef is one enclosing occurrence construct of a candidate, outermost
// first. IDs are qualified by the chain of refs expanded to reach the
// candidate, so one define reached through two refs yields distinct slots.
type PatternRef struct {
	Index    int                  `json:"index"`
	Kind     grammar.Kind         `json:"kind"`
	ID       string               `json:"id"`
	IsChoice bool                 `json:"isChoice,omitempty"`
	Choices  []grammar.ChoiceMark `json:"choices,omitempty"`
}

// Context names the element a candidate was computed against.
type Context struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	FullPath string `json:"fullPath,omitempty"`
}

// Candidate is an element name proposed for a document position.
type Candidate struct {
	Name          string       `json:"name"`
	FullName      string       `json:"fullName,omitempty"`
	Documentation string       `json:"documentation,omitempty"`
	PatternPath   []PatternRef `json:"patternPath"`
	Parent        Context      `json:"parent"`
	Child         *Context     `json:"child,omitempty"`
	IsChoice      bool         `json:"isChoice,omitempty"`
	IsEmptyTag    bool         `json:"isEmptyTag,omitempty"`

	node  *grammar.Node // element declaration
	occ   *grammar.Node // element or ref the candidate was found at
	key   string        // grammar position: ref chain + occurrence id
	order []int         // document order inside the container
}

// Node returns the element declaration behind the candidate.
func (c *Candidate) Node() *grammar.Node { return c.node }

func newCandidate(el *grammar.Node) Candidate {
	return Candidate{
		Name:          el.Name,
		FullName:      el.FullName,
		Documentation: el.Documentation,
		IsEmptyTag:    el.IsEmptyTag,
		PatternPath:   []PatternRef{},
		node:          el,
	}
}

func (c *Candidate) setPath(path []PatternRef) {
	c.PatternPath = path
	c.IsChoice = false
	for _, p := range path {
		if p.IsChoice {
			c.IsChoice = true
			break
		}
	}
}

// qualify reverses an innermost-first pattern path into outer-to-inner
// refs and prefixes every id with the ref chain q.
func qualify(steps []grammar.PatternStep, q string) []PatternRef {
	out := make([]PatternRef, len(steps))
	for i, s := range steps {
		ref := PatternRef{
			Index:    s.Index,
			Kind:     s.Kind,
			ID:       q + s.ID,
			IsChoice: s.Kind == grammar.KindChoice || len(s.Choices) > 0,
		}
		if len(s.Choices) > 0 {
			ref.Choices = make([]grammar.ChoiceMark, len(s.Choices))
			for j, m := range s.Choices {
				ref.Choices[j] = grammar.ChoiceMark{ID: q + m.ID, Branch: m.Branch}
			}
		}
		out[len(steps)-1-i] = ref
	}
	return out
}

// Names returns candidate names in order, without duplicates.
func Names(cands []Candidate) []string {
	var out []string
	for _, c := range cands {
		if !slices.Contains(out, c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

// Unique keeps the first candidate of each name and sorts by name.
func Unique(cands []Candidate) []Candidate {
	seen := make(map[string]bool, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		if n := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); n != 0 {
			return n
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func byName(cands []Candidate, name string) []*Candidate {
	var out []*Candidate
	for i := range cands {
		if cands[i].Name == name {
			out = append(out, &cands[i])
		}
	}
	return out
}

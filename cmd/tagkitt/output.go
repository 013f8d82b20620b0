package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kittclouds/tagkitt/internal/store"
	"github.com/kittclouds/tagkitt/pkg/grammar"
	"github.com/kittclouds/tagkitt/pkg/search"
	"github.com/kittclouds/tagkitt/pkg/tags"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) printCandidates(cands []tags.Candidate) error {
	if a.jsonOut {
		if cands == nil {
			cands = []tags.Candidate{}
		}
		return a.printJSON(cands)
	}
	if len(cands) == 0 {
		fmt.Fprintln(a.out, "No tags available")
		return nil
	}
	w := a.table()
	for _, c := range tags.Unique(cands) {
		fmt.Fprintf(w, "%s\t%s\n", c.Name, c.FullName)
	}
	return w.Flush()
}

func (a *app) printDeclaration(n *grammar.Node) error {
	decl := struct {
		Kind          grammar.Kind          `json:"kind"`
		Name          string                `json:"name"`
		ID            string                `json:"id"`
		FullPath      string                `json:"fullPath"`
		FullName      string                `json:"fullName,omitempty"`
		Documentation string                `json:"documentation,omitempty"`
		IsEmptyTag    bool                  `json:"isEmptyTag,omitempty"`
		PatternPath   []grammar.PatternStep `json:"patternPath,omitempty"`
	}{n.Kind, n.Name, n.ID, n.FullPath.String(), n.FullName, n.Documentation, n.IsEmptyTag, n.PatternPath}
	if a.jsonOut {
		return a.printJSON(decl)
	}

	w := a.table()
	fmt.Fprintf(w, "kind\t%s\n", decl.Kind)
	fmt.Fprintf(w, "name\t%s\n", decl.Name)
	fmt.Fprintf(w, "full path\t%s\n", decl.FullPath)
	if decl.FullName != "" {
		fmt.Fprintf(w, "full name\t%s\n", decl.FullName)
	}
	if decl.Documentation != "" {
		fmt.Fprintf(w, "documentation\t%s\n", decl.Documentation)
	}
	for i, st := range decl.PatternPath {
		fmt.Fprintf(w, "pattern[%d]\t%s #%d\n", i, st.Kind, st.Index)
	}
	return w.Flush()
}

func (a *app) printAttributes(attrs []tags.Attribute) error {
	if a.jsonOut {
		if attrs == nil {
			attrs = []tags.Attribute{}
		}
		return a.printJSON(attrs)
	}
	w := a.table()
	for _, at := range attrs {
		req := ""
		if at.Required {
			req = "required"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", at.Name, req, strings.Join(at.Values, "|"))
	}
	return w.Flush()
}

func (a *app) printHits(hits []search.Hit) error {
	if a.jsonOut {
		if hits == nil {
			hits = []search.Hit{}
		}
		return a.printJSON(hits)
	}
	w := a.table()
	for _, h := range hits {
		fmt.Fprintf(w, "%s\t%d\t%s\n", h.Entry.Name, h.Score.Terms, h.Entry.FullName)
	}
	return w.Flush()
}

func (a *app) printOperations(ops []tags.Operation) error {
	if a.jsonOut {
		return a.printJSON(ops)
	}
	w := a.table()
	for _, op := range ops {
		switch {
		case !op.Available:
			fmt.Fprintf(w, "%s\t-\n", op.Kind)
		case len(op.Candidates) == 0:
			fmt.Fprintf(w, "%s\tNo tags available\n", op.Kind)
		default:
			fmt.Fprintf(w, "%s\t%s\n", op.Kind, strings.Join(tags.Names(op.Candidates), " "))
		}
	}
	return w.Flush()
}

func (a *app) printSchemas(recs []*store.SchemaRecord, active string) error {
	if a.jsonOut {
		if recs == nil {
			recs = []*store.SchemaRecord{}
		}
		// Grammar bodies are large; list metadata only.
		type entry struct {
			ID     string   `json:"id"`
			Name   string   `json:"name"`
			Roots  []string `json:"roots,omitempty"`
			Source string   `json:"source,omitempty"`
			Active bool     `json:"active,omitempty"`
		}
		out := make([]entry, 0, len(recs))
		for _, r := range recs {
			out = append(out, entry{r.ID, r.Name, r.Roots, r.Source, r.ID == active})
		}
		return a.printJSON(out)
	}
	w := a.table()
	for _, r := range recs {
		mark := " "
		if r.ID == active {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", mark, r.ID, r.Name, r.Source)
	}
	return w.Flush()
}

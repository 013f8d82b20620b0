package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kittclouds/tagkitt/pkg/schemas"
	"github.com/kittclouds/tagkitt/pkg/tags"
)

// contextFlags describe the live document around a position.
type contextFlags struct {
	present   []string
	prev      string
	next      string
	anchor    string
	direction string
	query     string
}

func (f *contextFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.present, "present", nil, "Tags already present in the container (comma separated)")
	fl.StringVar(&f.prev, "prev", "", "Tag before the insertion point")
	fl.StringVar(&f.next, "next", "", "Tag after the insertion point")
	fl.StringVar(&f.anchor, "anchor", "", "Tag the insertion is relative to")
	fl.StringVar(&f.direction, "direction", "", "Insertion direction (before, after, both)")
	fl.StringVarP(&f.query, "query", "q", "", "Keep candidates matching a free-text query")
}

func tagOf(name string) *tags.Tag {
	if name == "" {
		return nil
	}
	return &tags.Tag{Name: name}
}

func (f *contextFlags) documentContext() (tags.DocumentContext, error) {
	ctx := tags.DocumentContext{
		Previous:  tagOf(f.prev),
		Next:      tagOf(f.next),
		Direction: tags.Direction(f.direction),
	}
	switch ctx.Direction {
	case "", tags.Before, tags.After, tags.Both:
	default:
		return ctx, fmt.Errorf("unknown direction %q", f.direction)
	}
	for _, p := range f.present {
		if p = strings.TrimSpace(p); p != "" {
			ctx.PresentTags = append(ctx.PresentTags, tags.Tag{Name: p})
		}
	}
	return ctx, nil
}

// narrow applies the occurrence filter, the position limiter and the text
// query, each only when its flags are set.
func (f *contextFlags) narrow(e *tags.Engine, cands []tags.Candidate) ([]tags.Candidate, error) {
	ctx, err := f.documentContext()
	if err != nil {
		return nil, err
	}
	if len(ctx.PresentTags) > 0 {
		cands = tags.FilterByPresentTags(cands, ctx.PresentTags)
	}
	if ctx.Direction != "" || ctx.Previous != nil || ctx.Next != nil || f.anchor != "" {
		dir := ctx.Direction
		if dir == "" {
			dir = tags.Both
		}
		cands = tags.LimitByPosition(cands, dir, tagOf(f.anchor), ctx)
	}
	return e.FilterCandidates(cands, f.query), nil
}

func childrenCmd(g *globalFlags) *cobra.Command {
	var f contextFlags
	cmd := &cobra.Command{
		Use:   "children <path>",
		Short: "List the tags allowed inside the element at path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(g, cmd.OutOrStdout(), func(a *app, act *schemas.Active) error {
				cands, err := f.narrow(act.Engine, act.Engine.ChildrenForPath(args[0]))
				if err != nil {
					return err
				}
				return a.printCandidates(cands)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func parentsCmd(g *globalFlags) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "parents <path>",
		Short: "List the tags that may contain the element at path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(g, cmd.OutOrStdout(), func(a *app, act *schemas.Active) error {
				cands := act.Engine.ParentsForPath(args[0])
				return a.printCandidates(act.Engine.FilterCandidates(cands, query))
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Keep candidates matching a free-text query")
	return cmd
}

func resolveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show the grammar declaration an element path resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(g, cmd.OutOrStdout(), func(a *app, act *schemas.Active) error {
				n := act.Engine.Resolve(args[0])
				if n == nil {
					return fmt.Errorf("path %q does not resolve", args[0])
				}
				return a.printDeclaration(n)
			})
		},
	}
}

func attributesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "attributes <path>",
		Short: "List the attributes of the element at path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(g, cmd.OutOrStdout(), func(a *app, act *schemas.Active) error {
				return a.printAttributes(act.Engine.AttributesForPath(args[0]))
			})
		},
	}
}

func searchCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank the schema's tags against a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(g, cmd.OutOrStdout(), func(a *app, act *schemas.Active) error {
				if !cmd.Flags().Changed("limit") {
					limit = a.cfg.Search.Limit
				}
				return a.printHits(act.Engine.Search(strings.Join(args, " "), limit))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (0 = unlimited)")
	return cmd
}

func rootsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List the tags a new document may start with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(g, cmd.OutOrStdout(), func(a *app, act *schemas.Active) error {
				cands, err := act.Roots()
				if err != nil {
					return err
				}
				return a.printCandidates(cands)
			})
		},
	}
}

func operationsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "operations <selection-json>",
		Short: "Decide the tagging operations offered for an editor selection",
		Long: `Reads a selection such as
  {"path": "TEI/text/body/p", "tagTargeted": true, "siblings": {"presentTags": [{"name": "p"}]}}
and prints every operation with its candidate tags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sel tags.Selection
			if err := json.Unmarshal([]byte(args[0]), &sel); err != nil {
				return fmt.Errorf("selection json: %w", err)
			}
			return withEngine(g, cmd.OutOrStdout(), func(a *app, act *schemas.Active) error {
				return a.printOperations(act.Engine.Operations(sel))
			})
		},
	}
}

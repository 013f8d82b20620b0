package tags_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/cucumber/godog"

	"github.com/kittclouds/tagkitt/pkg/grammar"
	gt "github.com/kittclouds/tagkitt/pkg/grammar/grammartest"
	"github.com/kittclouds/tagkitt/pkg/tags"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			initializeScenario(ctx, t)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}

// scenarioState holds per-scenario state for step definitions.
type scenarioState struct {
	engine     *tags.Engine
	candidates []tags.Candidate
}

func initializeScenario(ctx *godog.ScenarioContext, t *testing.T) {
	s := &scenarioState{}

	ctx.Step(`^the TEI grammar with (plain|repeated) paragraph content$`, func(kind string) error {
		store, err := grammar.Load(strings.NewReader(string(gt.JSON(t, gt.TEIMini(kind == "repeated")))))
		if err != nil {
			return err
		}
		s.engine = tags.NewEngine(store)
		return nil
	})

	ctx.Step(`^element "([^"]*)" with content "([^"]*)"$`, func(name, content string) error {
		nodes, err := parseContent(content)
		if err != nil {
			return err
		}
		doc := gt.Grammar(gt.Start(gt.Element(name, nodes...)))
		store, err := grammar.Load(strings.NewReader(string(gt.JSON(t, doc))))
		if err != nil {
			return err
		}
		s.engine = tags.NewEngine(store)
		return nil
	})

	ctx.Step(`^I ask for the children of "([^"]*)"$`, func(path string) error {
		s.candidates = s.engine.ChildrenForPath(path)
		return nil
	})

	ctx.Step(`^I ask for the parents of "([^"]*)"$`, func(path string) error {
		s.candidates = s.engine.ParentsForPath(path)
		return nil
	})

	ctx.Step(`^I filter the children of "([^"]*)" by present tags "([^"]*)"$`, func(path, present string) error {
		var tagList []tags.Tag
		for _, name := range splitList(present) {
			tagList = append(tagList, tags.Tag{Name: name})
		}
		s.candidates = tags.FilterByPresentTags(s.engine.ChildrenForPath(path), tagList)
		return nil
	})

	ctx.Step(`^the candidates are "([^"]*)"$`, func(want string) error {
		got := strings.Join(candidateNames(s.candidates), ", ")
		if exp := strings.Join(splitList(want), ", "); got != exp {
			return fmt.Errorf("expected candidates %q, got %q", exp, got)
		}
		return nil
	})

	ctx.Step(`^there are no candidates$`, func() error {
		if len(s.candidates) != 0 {
			return fmt.Errorf("expected no candidates, got %v", candidateNames(s.candidates))
		}
		return nil
	})

	ctx.Step(`^every candidate has an empty pattern path$`, func() error {
		for _, c := range s.candidates {
			if len(c.PatternPath) != 0 {
				return fmt.Errorf("%s has pattern path %+v", c.Name, c.PatternPath)
			}
		}
		return nil
	})

	ctx.Step(`^every candidate is inside a "([^"]*)" pattern$`, func(kind string) error {
		for _, c := range s.candidates {
			if len(c.PatternPath) == 0 || c.PatternPath[0].Kind.String() != kind {
				return fmt.Errorf("%s is not inside %s: %+v", c.Name, kind, c.PatternPath)
			}
		}
		return nil
	})
}

func candidateNames(cands []tags.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ----------------------------------------------------------------
// Content expressions
// ----------------------------------------------------------------

// parseContent reads a compact content model such as
// "B(C), oneOrMore(choice(D, text))". Pattern names build patterns, "text"
// and "empty" build leaves, any other name is an element.
func parseContent(src string) ([]gt.N, error) {
	p := &contentParser{src: src}
	nodes, err := p.list()
	if err != nil {
		return nil, err
	}
	if p.skipSpace(); p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at %d in %q", p.src[p.pos:], p.pos, src)
	}
	return nodes, nil
}

type contentParser struct {
	src string
	pos int
}

func (p *contentParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *contentParser) list() ([]gt.N, error) {
	var out []gt.N
	for {
		n, err := p.item()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ',' {
			return out, nil
		}
		p.pos++
	}
}

func (p *contentParser) item() (gt.N, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != ':' {
			break
		}
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return nil, fmt.Errorf("expected a name at %d in %q", start, p.src)
	}

	var children []gt.N
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		var err error
		if children, err = p.list(); err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, fmt.Errorf("missing ) in %q", p.src)
		}
		p.pos++
	}

	switch name {
	case "oneOrMore":
		return gt.OneOrMore(children...), nil
	case "zeroOrMore":
		return gt.ZeroOrMore(children...), nil
	case "optional":
		return gt.Optional(children...), nil
	case "choice":
		return gt.Choice(children...), nil
	case "group":
		return gt.Group(children...), nil
	case "interleave":
		return gt.Interleave(children...), nil
	case "text":
		return gt.Text(), nil
	case "empty":
		return gt.Empty(), nil
	}
	if len(children) == 0 {
		children = []gt.N{gt.Empty()}
	}
	return gt.Element(name, children...), nil
}

package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gt "github.com/kittclouds/tagkitt/pkg/grammar/grammartest"
)

// root { head, zeroOrMore(p) }, p and hi hold mixed inline content.
func operationsEngine(t *testing.T) *Engine {
	inline := gt.ZeroOrMore(gt.Choice(gt.Text(), gt.Ref("hi"), gt.Ref("persName"), gt.Ref("lb")))
	return engineFor(t, gt.Grammar(
		gt.Start(gt.Element("root", gt.Ref("head"), gt.ZeroOrMore(gt.Ref("p")))),
		gt.Define("head", gt.Element("head", gt.Text())),
		gt.Define("p", gt.Element("p", inline)),
		gt.Define("hi", gt.Element("hi", inline)),
		gt.Define("persName", gt.Element("persName", gt.Text())),
		gt.Define("lb", gt.Element("lb", gt.Empty())),
	))
}

func op(t *testing.T, ops []Operation, kind OperationKind) Operation {
	t.Helper()
	for _, o := range ops {
		if o.Kind == kind {
			return o
		}
	}
	require.Failf(t, "missing operation", "%s", kind)
	return Operation{}
}

func TestOperationsTextContext(t *testing.T) {
	e := operationsEngine(t)

	ops := e.Operations(Selection{Path: "root/p", Collapsed: true})
	require.Len(t, ops, len(OperationKinds))
	add := op(t, ops, OpAdd)
	assert.True(t, add.Available)
	assert.Equal(t, []string{"hi", "lb", "persName"}, names(add.Candidates))
	assert.False(t, op(t, ops, OpAddBefore).Available)
	assert.Empty(t, op(t, ops, OpChange).Candidates)

	wrap := op(t, e.Operations(Selection{Path: "root/p"}), OpAdd)
	assert.Equal(t, []string{"hi", "persName"}, names(wrap.Candidates), "a range needs a tag that holds text")

	spanning := op(t, e.Operations(Selection{Path: "root/p", SpansElements: true}), OpAdd)
	assert.False(t, spanning.Available)
	assert.Empty(t, spanning.Candidates)
}

func TestOperationsTargetedTag(t *testing.T) {
	e := operationsEngine(t)
	sel := Selection{
		Path:        "root/p[1]/hi",
		TagTargeted: true,
		Siblings:    DocumentContext{PresentTags: present("hi")},
	}
	ops := e.Operations(sel)

	assert.False(t, op(t, ops, OpAdd).Available)
	assert.Equal(t, []string{"hi", "lb", "persName"}, names(op(t, ops, OpAddBefore).Candidates))
	assert.Equal(t, []string{"hi", "lb", "persName"}, names(op(t, ops, OpAddAfter).Candidates))
	assert.Equal(t, []string{"hi"}, names(op(t, ops, OpAddAround).Candidates), "only hi may hold hi")
	assert.Equal(t, []string{"hi", "lb", "persName"}, names(op(t, ops, OpAddInside).Candidates))
	assert.Equal(t, []string{"lb", "persName"}, names(op(t, ops, OpChange).Candidates))

	sel.Children = present("lb")
	ops = e.Operations(sel)
	assert.Empty(t, op(t, ops, OpChange).Candidates, "persName and lb cannot keep an lb child")
	assert.Equal(t, []string{"hi"}, names(op(t, ops, OpAddInside).Candidates))
}

func TestOperationsRootTarget(t *testing.T) {
	e := operationsEngine(t)
	ops := e.Operations(Selection{Path: "root", TagTargeted: true})

	for _, kind := range []OperationKind{OpAddBefore, OpAddAfter, OpAddAround, OpChange} {
		assert.False(t, op(t, ops, kind).Available, kind)
	}
	inside := op(t, ops, OpAddInside)
	assert.True(t, inside.Available)
	assert.Equal(t, []string{"head", "p"}, names(inside.Candidates))
}

func TestOperationsSiblingBounds(t *testing.T) {
	e := operationsEngine(t)
	sel := Selection{
		Path:        "root/head",
		TagTargeted: true,
		Siblings:    DocumentContext{PresentTags: present("head", "p"), Next: tag("p")},
	}
	ops := e.Operations(sel)

	assert.Equal(t, []string{"p"}, names(op(t, ops, OpChange).Candidates))
	assert.Equal(t, []string{"head"}, names(op(t, ops, OpAddBefore).Candidates))
	assert.Equal(t, []string{"head", "p"}, names(op(t, ops, OpAddAfter).Candidates))
}

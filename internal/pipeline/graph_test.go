package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, State) (Update, error) { return nil, nil }

func node(name string, deps ...string) Node {
	return Node{Name: name, DependsOn: deps, Run: noop}
}

func diamond(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph(
		node("classify"),
		node("faq", "classify"),
		node("checkout", "classify"),
		node("respond", "faq", "checkout"),
	)
	require.NoError(t, err)
	return g
}

func TestNewGraph_Diamond(t *testing.T) {
	g := diamond(t)

	assert.Equal(t, "classify", g.Start())
	assert.Equal(t, "respond", g.Terminal())
	assert.Equal(t, [][]string{{"classify"}, {"faq", "checkout"}, {"respond"}}, g.Levels())
	assert.Equal(t, []string{"classify", "faq", "checkout", "respond"}, g.Order())
	assert.Equal(t, []Edge{
		{From: "classify", To: "faq"},
		{From: "classify", To: "checkout"},
		{From: "faq", To: "respond"},
		{From: "checkout", To: "respond"},
	}, g.Edges())
}

func TestNewGraph_DeclarationOrderIndependent(t *testing.T) {
	g, err := NewGraph(
		node("respond", "faq", "checkout"),
		node("checkout", "classify"),
		node("faq", "classify"),
		node("classify"),
	)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"classify"}, {"checkout", "faq"}, {"respond"}}, g.Levels())
}

func TestNewGraph_SingleStep(t *testing.T) {
	g, err := NewGraph(node("only"))
	require.NoError(t, err)

	assert.Equal(t, "only", g.Start())
	assert.Equal(t, "only", g.Terminal())
	assert.Empty(t, g.Edges())
}

func TestNewGraph_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		msg   string
	}{
		{"empty", nil, "no steps"},
		{"unnamed", []Node{node("")}, "has no name"},
		{"no func", []Node{{Name: "a"}}, "has no function"},
		{"duplicate", []Node{node("a"), node("a")}, "duplicate step"},
		{"unknown dep", []Node{node("a"), node("b", "x")}, "unknown step"},
		{"self dep", []Node{node("a"), node("b", "b")}, "depends on itself"},
		{"repeated dep", []Node{node("a"), node("b", "a", "a")}, "twice"},
		{"two starts", []Node{node("a"), node("b"), node("c", "a", "b")}, "exactly one start"},
		{"two terminals", []Node{node("a"), node("b", "a"), node("c", "a")}, "exactly one terminal"},
		{"cycle", []Node{node("a"), node("b", "a", "c"), node("c", "b"), node("d", "c")}, "cycle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.nodes...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGraph)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestGraph_AccessorsReturnCopies(t *testing.T) {
	g := diamond(t)

	levels := g.Levels()
	levels[1][0] = "mutated"
	nodes := g.Nodes()
	nodes[3].DependsOn[0] = "mutated"

	assert.Equal(t, "faq", g.Levels()[1][0])
	n, ok := g.Node("respond")
	require.True(t, ok)
	assert.Equal(t, []string{"faq", "checkout"}, n.DependsOn)

	_, ok = g.Node("missing")
	assert.False(t, ok)
}

func TestGraph_Mermaid(t *testing.T) {
	g, err := NewGraph(
		node("classify"),
		Node{Name: "faq", DependsOn: []string{"classify"}, When: `state.faq_answer == ""`, Run: noop},
		node("respond", "faq"),
	)
	require.NoError(t, err)

	out := g.Mermaid()
	assert.Contains(t, out, "graph TD\n")
	assert.Contains(t, out, "__start__ --> classify\n")
	assert.Contains(t, out, "classify --> faq\n")
	assert.Contains(t, out, "faq --> respond\n")
	assert.Contains(t, out, "respond --> __end__\n")
	assert.Contains(t, out, `faq{{"faq <br/> when state.faq_answer == ''"}}`)
}

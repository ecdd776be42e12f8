package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gipsyh/aig-go/core"
)

// TestMigrate_SubstitutesLeaf checks that a substitution applies directly
// to a leaf edge with no intervening AND gates.
func TestMigrate_SubstitutesLeaf(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	a := c.NewInput()
	b := core.Edge{Node: c.NewInput()}

	out := c.Migrate(map[core.NodeId]core.Edge{a: b}, core.Edge{Node: a})
	assert.Equal(t, b, out)

	// Polarity on the substituted edge must still be honored.
	out2 := c.Migrate(map[core.NodeId]core.Edge{a: b}, core.Edge{Node: a, Compl: true})
	assert.Equal(t, b.Not(), out2)
}

// TestMigrate_RebuildsAndGates checks that Migrate walks through AND gates,
// substituting only the mapped leaves and rebuilding the rest. FRAIG is
// active so the expected gate, built independently, resolves to the same
// edge.
func TestMigrate_RebuildsAndGates(t *testing.T) {
	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	a := c.NewInput()
	b := core.Edge{Node: c.NewInput()}
	d := core.Edge{Node: c.NewInput()}

	conj := c.NewAnd(core.Edge{Node: a}, b)

	out := c.Migrate(map[core.NodeId]core.Edge{a: d}, conj)
	want := c.NewAnd(d, b)
	assert.Equal(t, want, out)
}

// TestMigrate_IdentityOnEmptySubstitution checks that an empty substitution
// map leaves every edge unchanged.
func TestMigrate_IdentityOnEmptySubstitution(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	a := core.Edge{Node: c.NewInput()}
	b := core.Edge{Node: c.NewInput()}
	conj := c.NewAnd(a, b)

	out := c.Migrate(map[core.NodeId]core.Edge{}, conj)
	assert.Equal(t, conj, out)
}

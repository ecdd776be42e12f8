package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gipsyh/aig-go/core"
)

// TestEliminateInput_TautologyAfterQuantification checks the textbook
// identity ∃a. a == true (cofactor at 0 is false, at 1 is true, ORed is
// true).
func TestEliminateInput_TautologyAfterQuantification(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	a := c.NewInput()
	out, err := c.EliminateInput(a, []core.Edge{{Node: a}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, core.ConstTrue, out[0])
}

// TestEliminateInput_PreservesUnrelatedObservable checks that quantifying
// an input out of an observable set that does not depend on it returns the
// edge unchanged.
func TestEliminateInput_PreservesUnrelatedObservable(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	a := c.NewInput()
	b := core.Edge{Node: c.NewInput()}
	out, err := c.EliminateInput(a, []core.Edge{b})
	require.NoError(t, err)
	assert.Equal(t, b, out[0])
}

// TestEliminateInput_ConjunctionCollapsesToOtherLiteral checks
// ∃a. (a ∧ b) == b.
func TestEliminateInput_ConjunctionCollapsesToOtherLiteral(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	a := c.NewInput()
	b := core.Edge{Node: c.NewInput()}
	conj := c.NewAnd(core.Edge{Node: a}, b)
	out, err := c.EliminateInput(a, []core.Edge{conj})
	require.NoError(t, err)
	assert.Equal(t, b, out[0])
}

// TestEliminateInput_RejectsConstantAndNonInput checks the two error paths.
func TestEliminateInput_RejectsConstantAndNonInput(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	a := core.Edge{Node: c.NewInput()}
	b := core.Edge{Node: c.NewInput()}
	and := c.NewAnd(a, b)

	_, err := c.EliminateInput(0, []core.Edge{a})
	assert.ErrorIs(t, err, core.ErrConstantInput)

	_, err = c.EliminateInput(and.Node, []core.Edge{a})
	assert.ErrorIs(t, err, core.ErrNotAnInput)
}

// TestChooseEliminationOrder_PicksCheapestInput checks that an input not
// referenced by the observable set at all has zero cost and is preferred
// over one that is referenced.
func TestChooseEliminationOrder_PicksCheapestInput(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	cheap := c.NewInput()
	expensive := c.NewInput()
	b := core.Edge{Node: c.NewInput()}
	observable := c.NewAnd(core.Edge{Node: expensive}, b)

	chosen := c.ChooseEliminationOrder([]core.NodeId{cheap, expensive}, []core.Edge{observable})
	assert.Equal(t, cheap, chosen)
}

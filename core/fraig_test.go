package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gipsyh/aig-go/core"
)

// TestFraig_IncrementalMerge builds the same Boolean function (a XOR b) two
// structurally different ways and checks that the second construction
// collapses onto the first via FRAIG's incremental equivalence check,
// rather than only the cheap structural folding rules NewAnd always
// applies.
func TestFraig_IncrementalMerge(t *testing.T) {
	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	a := core.Edge{Node: c.NewInput()}
	b := core.Edge{Node: c.NewInput()}

	// xor1 := ¬(a ≡ b)
	xor1 := c.NewXnor(a, b).Not()

	// xor2 := (a ∧ ¬b) ∨ (¬a ∧ b), a structurally distinct gate graph
	// computing the same function.
	xor2 := c.NewOr(c.NewAnd(a, b.Not()), c.NewAnd(a.Not(), b))

	assert.Equal(t, xor1, xor2, "FRAIG should fold the second XOR construction onto the first")
}

// TestFraig_DistinctFunctionsStayDistinct is the negative control: two
// genuinely different functions over the same inputs must never merge.
func TestFraig_DistinctFunctionsStayDistinct(t *testing.T) {
	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	a := core.Edge{Node: c.NewInput()}
	b := core.Edge{Node: c.NewInput()}

	and := c.NewAnd(a, b)
	or := c.NewOr(a, b)
	assert.NotEqual(t, and, or)
}

// TestRunFraig_BatchSweepMergesImportedDuplicates covers the batch flow:
// a circuit built without FRAIG accumulates structural duplicates, then
// EnableFraig seeds simulation for the whole graph and RunFraig sweeps and
// merges, rewriting the output edges onto one surviving node.
func TestRunFraig_BatchSweepMergesImportedDuplicates(t *testing.T) {
	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	a := core.Edge{Node: c.NewInput()}
	b := core.Edge{Node: c.NewInput()}

	xor1 := c.NewXnor(a, b).Not()
	xor2 := c.NewOr(c.NewAnd(a, b.Not()), c.NewAnd(a.Not(), b))
	c.AddOutput(xor1)
	c.AddOutput(xor2)

	// Without FRAIG there is no dedup path, so the two constructions are
	// distinct nodes.
	require.NotEqual(t, xor1.Node, xor2.Node)

	require.NoError(t, c.EnableFraig())
	require.NoError(t, c.RunFraig())

	outs := c.Outputs()
	assert.Equal(t, outs[0], outs[1], "merge should rewrite both outputs onto the surviving node")
	_, sat := core.EquivalenceCheck(c.Solver(), outs[0], outs[1])
	assert.False(t, sat)
	assert.Greater(t, c.Instrumentation().FraigMerges, uint64(0))
}

// TestEnableFraig_RejectsDoubleActivation checks the error path.
func TestEnableFraig_RejectsDoubleActivation(t *testing.T) {
	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	assert.ErrorIs(t, c.EnableFraig(), core.ErrFraigActive)
}

package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gipsyh/aig-go/core"
)

// newReachCircuit builds a circuit wired for reachability: FRAIG active and
// a concrete SAT backend attached, matching how the CLI constructs one.
func newReachCircuit() *core.Circuit {
	return core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
}

// buildThreeBitCounter wires a free-running 3-bit ripple-carry up counter
// (no primary inputs at all) with every latch reset to false, and returns
// its three latch-input edges l0 (LSB) .. l2 (MSB).
func buildThreeBitCounter(c *core.Circuit) (l0, l1, l2 core.Edge) {
	i0 := c.NewLatch(core.ConstFalse, false)
	i1 := c.NewLatch(core.ConstFalse, false)
	i2 := c.NewLatch(core.ConstFalse, false)

	latches := c.Latches()
	e0 := core.Edge{Node: latches[i0].Input}
	e1 := core.Edge{Node: latches[i1].Input}
	e2 := core.Edge{Node: latches[i2].Input}

	next0 := e0.Not()
	c.SetLatchNext(i0, next0)

	next1 := c.NewXnor(e1, e0).Not()
	c.SetLatchNext(i1, next1)

	carry := c.NewAnd(e1, e0)
	next2 := c.NewXnor(e2, carry).Not()
	c.SetLatchNext(i2, next2)

	return e0, e1, e2
}

// TestForward_ThreeBitCounterReachesAllOnes checks that the free-running
// counter's all-ones state is flagged Unsafe by forward reachability, since
// a counter starting at 0 visits every one of its 8 states.
func TestForward_ThreeBitCounterReachesAllOnes(t *testing.T) {
	c := newReachCircuit()
	l0, l1, l2 := buildThreeBitCounter(c)
	c.AddBad(c.AndOfMany([]core.Edge{l0, l1, l2}))

	res, err := c.Forward(context.Background(), core.WithMaxIterations(16))
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
}

// TestBackward_ThreeBitCounterReachesAllOnes cross-checks the same property
// via the dual backward fixed-point.
func TestBackward_ThreeBitCounterReachesAllOnes(t *testing.T) {
	c := newReachCircuit()
	l0, l1, l2 := buildThreeBitCounter(c)
	c.AddBad(c.AndOfMany([]core.Edge{l0, l1, l2}))

	res, err := c.Backward(context.Background(), core.WithMaxIterations(16))
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
}

// TestForward_StuckLatchIsSafe builds a single latch whose next-state
// equation is wired straight back to its own current value, so it never
// leaves false. A bad state requiring it to be true must therefore be
// unreachable.
func TestForward_StuckLatchIsSafe(t *testing.T) {
	c := newReachCircuit()
	idx := c.NewLatch(core.ConstFalse, false)
	self := core.Edge{Node: c.Latches()[idx].Input}
	c.SetLatchNext(idx, self)

	c.AddBad(self)

	res, err := c.Forward(context.Background(), core.WithMaxIterations(16))
	require.NoError(t, err)
	assert.Equal(t, core.Safe, res.Verdict)
}

// TestForward_BadOnInitialStateIsUnsafeImmediately checks that a bad
// condition already true in the initial state is caught at the very first
// iteration.
func TestForward_BadOnInitialStateIsUnsafeImmediately(t *testing.T) {
	c := newReachCircuit()
	idx := c.NewLatch(core.ConstFalse, false)
	self := core.Edge{Node: c.Latches()[idx].Input}
	c.SetLatchNext(idx, self)

	// The latch resets to false, so its negation holds in the initial
	// state.
	c.AddBad(self.Not())

	res, err := c.Forward(context.Background(), core.WithMaxIterations(16))
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
	assert.Equal(t, 1, res.Iterations)
}

// TestSATBased_FindsShallowBadState checks that bounded model checking
// catches a bad state reachable within its depth budget (the all-ones
// state at depth 7, budget 8).
func TestSATBased_FindsShallowBadState(t *testing.T) {
	c := newReachCircuit()
	l0, l1, l2 := buildThreeBitCounter(c)
	c.AddBad(c.AndOfMany([]core.Edge{l0, l1, l2}))

	res, err := c.SATBased(context.Background(), core.WithBMCDepth(8))
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
}

// TestSATBased_UnknownWithinShallowDepth checks that BMC reports Unknown
// (never Safe) when the bad state lies beyond its depth budget.
func TestSATBased_UnknownWithinShallowDepth(t *testing.T) {
	c := newReachCircuit()
	l0, l1, l2 := buildThreeBitCounter(c)
	c.AddBad(c.AndOfMany([]core.Edge{l0, l1, l2}))

	res, err := c.SATBased(context.Background(), core.WithBMCDepth(1))
	require.NoError(t, err)
	assert.Equal(t, core.Unknown, res.Verdict)
}

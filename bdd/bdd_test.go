package bdd_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gipsyh/aig-go/bdd"
	"github.com/gipsyh/aig-go/core"
)

// newTwoLatchCircuit wires two self-looping latches, enough state for the
// DNF conversions to have something to range over.
func newTwoLatchCircuit(t *testing.T) (*core.Circuit, core.Edge, core.Edge) {
	t.Helper()
	c := core.NewCircuit()
	i0 := c.NewLatch(core.ConstFalse, false)
	i1 := c.NewLatch(core.ConstFalse, false)
	l0 := core.Edge{Node: c.Latches()[i0].Input}
	l1 := core.Edge{Node: c.Latches()[i1].Input}
	c.SetLatchNext(i0, l0)
	c.SetLatchNext(i1, l1)
	return c, l0, l1
}

// statesOf expands a cube list into the set of latch valuations it covers
// (a literal omitted from a cube doubles its states).
func statesOf(c *core.Circuit, cubes [][]core.Edge) map[uint32]bool {
	latches := c.Latches()
	idx := map[core.NodeId]int{}
	for i, l := range latches {
		idx[l.Input] = i
	}
	out := map[uint32]bool{}
	for _, cube := range cubes {
		fixed := uint32(0)
		ones := uint32(0)
		for _, lit := range cube {
			bit := uint32(1) << uint(idx[lit.Node])
			fixed |= bit
			if !lit.Compl {
				ones |= bit
			}
		}
		for mask := uint32(0); mask < uint32(1)<<uint(len(latches)); mask++ {
			if mask&fixed == ones {
				out[mask] = true
			}
		}
	}
	return out
}

// TestDNFRoundTrip builds the XOR state set {01, 10} as a BDD and recovers
// exactly those two states back out of it.
func TestDNFRoundTrip(t *testing.T) {
	c, l0, l1 := newTwoLatchCircuit(t)
	m, err := bdd.NewManager(c)
	require.NoError(t, err)

	cubes := [][]core.Edge{
		{l0, l1.Not()},
		{l0.Not(), l1},
	}
	n, err := m.FromDNF(cubes)
	require.NoError(t, err)

	back := m.ToDNF(n)
	assert.Equal(t, map[uint32]bool{1: true, 2: true}, statesOf(c, back))
}

// TestFromDNF_RejectsNonLatchLiteral checks that a cube literal on a node
// with no BDD variable is reported, not silently dropped.
func TestFromDNF_RejectsNonLatchLiteral(t *testing.T) {
	c, _, _ := newTwoLatchCircuit(t)
	stray := core.Edge{Node: c.NewInput()}
	m, err := bdd.NewManager(c)
	require.NoError(t, err)

	_, err = m.FromDNF([][]core.Edge{{stray}})
	assert.Error(t, err)
}

// TestToCNF_SingleVariable Tseitin-encodes the BDD for a single latch
// literal: one internal node, four clauses, and a fresh top variable above
// every pre-existing node id.
func TestToCNF_SingleVariable(t *testing.T) {
	c, l0, _ := newTwoLatchCircuit(t)
	m, err := bdd.NewManager(c)
	require.NoError(t, err)

	n, err := m.FromDNF([][]core.Edge{{l0}})
	require.NoError(t, err)

	before := c.NumNodes()
	clauses, top := m.ToCNF(c, n)
	assert.Len(t, clauses, 4)
	assert.GreaterOrEqual(t, int(top.Node), before)
}

func buildThreeBitCounter(c *core.Circuit) (l0, l1, l2 core.Edge) {
	i0 := c.NewLatch(core.ConstFalse, false)
	i1 := c.NewLatch(core.ConstFalse, false)
	i2 := c.NewLatch(core.ConstFalse, false)

	latches := c.Latches()
	e0 := core.Edge{Node: latches[i0].Input}
	e1 := core.Edge{Node: latches[i1].Input}
	e2 := core.Edge{Node: latches[i2].Input}

	c.SetLatchNext(i0, e0.Not())
	c.SetLatchNext(i1, c.NewXnor(e1, e0).Not())
	carry := c.NewAnd(e1, e0)
	c.SetLatchNext(i2, c.NewXnor(e2, carry).Not())

	return e0, e1, e2
}

// TestHybridForward_CounterUnsafe cross-checks the BDD-carried fixed point
// against the pure-AIG driver on the counter that visits every state.
func TestHybridForward_CounterUnsafe(t *testing.T) {
	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	l0, l1, l2 := buildThreeBitCounter(c)
	c.AddBad(c.AndOfMany([]core.Edge{l0, l1, l2}))

	res, err := bdd.HybridForward(context.Background(), c, 100, 32)
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
}

// TestHybridForward_CounterWithFalseBadIsSafe pins the Safe path: the BDD
// fixed point must close once all 8 counter states are in the reached set.
func TestHybridForward_CounterWithFalseBadIsSafe(t *testing.T) {
	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	buildThreeBitCounter(c)
	c.AddBad(core.ConstFalse)

	res, err := bdd.HybridForward(context.Background(), c, 100, 32)
	require.NoError(t, err)
	assert.Equal(t, core.Safe, res.Verdict)
	assert.LessOrEqual(t, res.Iterations, 10)
}

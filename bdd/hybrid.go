package bdd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gipsyh/aig-go/core"
)

// ErrTooManyLatches bounds the exhaustive cube enumeration HybridForward
// uses to lift an AIG-level state function into a BDD: it walks all
// 2^|latches| valuations directly, same cost class as package bruteforce.
var ErrTooManyLatches = errors.New("bdd: hybrid mode needs <= 20 latches")

// HybridForward runs the same forward fixed-point loop as
// core.Circuit.Forward, but the reached-state set is additionally carried
// as a BDD, and the fixed-point test is BDD equality (canonical under
// rudd's reduction) rather than AIG edge equality. gcThreshold and
// maxIterations default to core.Forward's defaults when <= 0.
func HybridForward(ctx context.Context, c *core.Circuit, gcThreshold, maxIterations int) (core.ReachResult, error) {
	if gcThreshold <= 0 {
		gcThreshold = 100
	}
	if maxIterations <= 0 {
		maxIterations = 1 << 20
	}
	if len(c.Latches()) > 20 {
		return core.ReachResult{}, fmt.Errorf("%w: has %d", ErrTooManyLatches, len(c.Latches()))
	}

	m, err := NewManager(c)
	if err != nil {
		return core.ReachResult{}, err
	}

	reach := c.InitEquation()
	frontier := reach
	ts := c.LowerLatchesToInputs()
	bad := c.BadEquation()
	initCubes, err := enumerateCubes(c, reach)
	if err != nil {
		return core.ReachResult{}, err
	}
	reachBDD, err := m.FromDNF(initCubes)
	if err != nil {
		return core.ReachResult{}, err
	}

	pins := make([]*core.NodeId, len(ts.Primes))
	for i := range ts.Primes {
		pins[i] = &ts.Primes[i]
	}

	for k := 1; k <= maxIterations; k++ {
		select {
		case <-ctx.Done():
			return core.ReachResult{Iterations: k}, core.ErrTimeout
		default:
		}

		if _, sat, err := c.CheckSAT(bad, frontier); err != nil {
			return core.ReachResult{}, err
		} else if sat {
			return core.ReachResult{Verdict: core.Unsafe, Iterations: k}, nil
		}

		eqn := c.NewAnd(frontier, ts.Relation)
		toEliminate := append([]core.NodeId(nil), c.Inputs()...)
		for _, l := range c.Latches() {
			toEliminate = append(toEliminate, l.Input)
		}
		eqn, err := c.EliminateAll(toEliminate, eqn, gcThreshold,
			[]*core.Edge{&reach, &frontier, &ts.Relation, &bad}, pins)
		if err != nil {
			return core.ReachResult{}, err
		}

		frontierPrime := c.Migrate(ts.LatchMap(c), eqn)

		cubes, err := enumerateCubes(c, frontierPrime)
		if err != nil {
			return core.ReachResult{}, err
		}
		frontierNode, err := m.FromDNF(cubes)
		if err != nil {
			return core.ReachResult{}, err
		}
		newReachBDD := m.sys.Or(reachBDD, frontierNode)

		reachPrime := c.NewOr(reach, frontierPrime)
		newFrontier := c.NewAnd(frontierPrime, reach.Not())

		if m.sys.Equal(newReachBDD, reachBDD) {
			return core.ReachResult{Verdict: core.Safe, Iterations: k}, nil
		}
		reach, frontier, reachBDD = reachPrime, newFrontier, newReachBDD
	}
	return core.ReachResult{Verdict: core.Unknown, Iterations: maxIterations}, nil
}

// enumerateCubes walks every latch valuation and evaluates e directly
// (e's fan-in cone, after quantifying away every primary input and
// current-state variable, reaches only latch-input nodes and the constant),
// returning one cube per valuation where e holds.
func enumerateCubes(c *core.Circuit, e core.Edge) ([][]core.Edge, error) {
	latches := c.Latches()
	if len(latches) > 20 {
		return nil, fmt.Errorf("%w: has %d", ErrTooManyLatches, len(latches))
	}
	n := c.NumNodes()
	var cubes [][]core.Edge
	for mask := uint64(0); mask < uint64(1)<<uint(len(latches)); mask++ {
		assign := make([]bool, n)
		cube := make([]core.Edge, len(latches))
		for i, l := range latches {
			b := mask&(1<<uint(i)) != 0
			assign[l.Input] = b
			cube[i] = core.Edge{Node: l.Input, Compl: !b}
		}
		val := c.EvaluateAssignment(assign)
		if val[e.Node] != e.Compl {
			cubes = append(cubes, cube)
		}
	}
	return cubes, nil
}

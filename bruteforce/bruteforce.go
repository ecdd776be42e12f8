// Package bruteforce is a test-only explicit-state reachability oracle: it
// enumerates reachable latch valuations by direct AIG simulation rather
// than symbolic quantifier elimination, for cross-checking core.Forward/
// core.Backward against ground truth on small circuits (<=20 latches).
// States are packed into a bitmask per latch valuation for a compact
// visited set.
package bruteforce

import (
	"errors"
	"fmt"

	"github.com/gipsyh/aig-go/core"
)

// MaxLatches and MaxInputs bound the state space this package is willing to
// enumerate exhaustively: 2^(latches+inputs) simulation steps per BFS
// layer.
const (
	MaxLatches = 20
	MaxInputs  = 20
)

var (
	ErrTooManyLatches = errors.New("bruteforce: more than 20 latches")
	ErrTooManyInputs  = errors.New("bruteforce: more than 20 primary inputs")
)

// Result is the outcome of an exhaustive exploration.
type Result struct {
	Verdict core.Verdict
	Reach   map[uint32]bool // bitmask of latch values -> reachable
	Depth   int             // BFS layers explored (depth at which Unsafe was hit, or total layers if Safe)
}

func packBits(bits []bool) uint32 {
	var k uint32
	for i, b := range bits {
		if b {
			k |= 1 << uint(i)
		}
	}
	return k
}

func unpackBits(k uint32, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = k&(1<<uint(i)) != 0
	}
	return out
}

func badHit(c *core.Circuit, val []bool) bool {
	for _, b := range c.Bads() {
		if val[b.Node] != b.Compl {
			return true
		}
	}
	return false
}

// Explore runs exhaustive forward BFS over latch valuations, checking every
// reached state against every bad edge for every primary-input combination,
// and returns Unsafe as soon as one fires or Safe once the frontier runs dry
// (at most 2^|latches| distinct states exist, so the BFS always
// terminates).
func Explore(c *core.Circuit) (Result, error) {
	latches := c.Latches()
	inputs := c.Inputs()
	if len(latches) > MaxLatches {
		return Result{}, fmt.Errorf("%w: has %d", ErrTooManyLatches, len(latches))
	}
	if len(inputs) > MaxInputs {
		return Result{}, fmt.Errorf("%w: has %d", ErrTooManyInputs, len(inputs))
	}

	initBits := make([]bool, len(latches))
	for i, l := range latches {
		initBits[i] = l.Init
	}
	initKey := packBits(initBits)

	reach := map[uint32]bool{initKey: true}
	frontier := []uint32{initKey}
	n := c.NumNodes()
	numInputCombos := uint32(1) << uint(len(inputs))

	depth := 0
	for ; len(frontier) > 0; depth++ {
		var next []uint32
		for _, key := range frontier {
			latchBits := unpackBits(key, len(latches))
			for mask := uint32(0); mask < numInputCombos; mask++ {
				assign := make([]bool, n)
				for i, l := range latches {
					assign[l.Input] = latchBits[i]
				}
				for i, in := range inputs {
					assign[in] = mask&(1<<uint(i)) != 0
				}
				val := c.EvaluateAssignment(assign)
				if badHit(c, val) {
					return Result{Verdict: core.Unsafe, Reach: reach, Depth: depth}, nil
				}
				nextBits := make([]bool, len(latches))
				for i, l := range latches {
					nextBits[i] = val[l.Next.Node] != l.Next.Compl
				}
				nk := packBits(nextBits)
				if !reach[nk] {
					reach[nk] = true
					next = append(next, nk)
				}
			}
		}
		frontier = next
	}
	return Result{Verdict: core.Safe, Reach: reach, Depth: depth}, nil
}

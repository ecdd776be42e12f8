package bruteforce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gipsyh/aig-go/bruteforce"
	"github.com/gipsyh/aig-go/core"
)

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

// TestExplore_ThreeBitCounterVisitsAllEightStates checks that the free
// running counter's explicit-state BFS reaches all 8 latch valuations and
// correctly flags the all-ones state (the last one reached) as unsafe.
func TestExplore_ThreeBitCounterVisitsAllEightStates(t *testing.T) {
	c := core.NewCircuit()
	l0, l1, l2 := buildThreeBitCounter(c)
	c.AddBad(c.AndOfMany([]core.Edge{l0, l1, l2}))

	res, err := bruteforce.Explore(c)
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
	assert.Len(t, res.Reach, 8)
}

// TestExplore_StuckLatchNeverReachesBad checks the Safe path: a latch wired
// to itself never leaves its reset value false, so a bad condition requiring
// it to be true is unreachable.
func TestExplore_StuckLatchNeverReachesBad(t *testing.T) {
	c := core.NewCircuit()
	idx := c.NewLatch(core.ConstFalse, false)
	self := core.Edge{Node: c.Latches()[idx].Input}
	c.SetLatchNext(idx, self)
	c.AddBad(self)

	res, err := bruteforce.Explore(c)
	require.NoError(t, err)
	assert.Equal(t, core.Safe, res.Verdict)
	assert.Len(t, res.Reach, 1)
}

// TestExplore_RejectsTooManyLatches checks the exhaustive-search guard.
func TestExplore_RejectsTooManyLatches(t *testing.T) {
	c := core.NewCircuit()
	for i := 0; i < bruteforce.MaxLatches+1; i++ {
		idx := c.NewLatch(core.ConstFalse, false)
		self := core.Edge{Node: c.Latches()[idx].Input}
		c.SetLatchNext(idx, self)
	}
	_, err := bruteforce.Explore(c)
	assert.ErrorIs(t, err, bruteforce.ErrTooManyLatches)
}

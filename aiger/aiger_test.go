package aiger_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gipsyh/aig-go/aiger"
	"github.com/gipsyh/aig-go/core"
)

// singleLatchAAG is a minimal ASCII AIGER: one latch that always resets to
// false and whose next-state is its own current value (a stuck bit), with
// a single bad-state literal on its complement (bad while it is false).
const singleLatchAAG = `aag 1 0 1 0 0 1
2 2
3
`

func TestParseAndLoad_SingleLatch(t *testing.T) {
	f, err := aiger.Parse(strings.NewReader(singleLatchAAG))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Header.I)
	assert.Equal(t, 1, f.Header.L)
	assert.Equal(t, 0, f.Header.A)
	require.Len(t, f.Latches, 1)
	assert.Equal(t, 2, f.Latches[0].NextLit)
	require.Len(t, f.Bads, 1)
	assert.Equal(t, 3, f.Bads[0])

	c := core.NewCircuit(core.WithSolver(core.NewGiniSolver()))
	require.NoError(t, aiger.Load(c, f))

	require.Len(t, c.Latches(), 1)
	latch := c.Latches()[0]
	assert.False(t, latch.Init)
	assert.Equal(t, latch.Input, latch.Next.Node)
	assert.False(t, latch.Next.Compl)

	require.Len(t, c.Bads(), 1)
	assert.Equal(t, latch.Input, c.Bads()[0].Node)
	assert.True(t, c.Bads()[0].Compl)
}

// toggleLatchAAG is a single latch resetting to false whose next state is
// its own complement, with the latch itself as the bad signal: the bad
// state is reached after exactly one step.
const toggleLatchAAG = `aag 1 0 1 0 0 1
2 3
2
`

func TestLoadAndForward_ToggleLatch(t *testing.T) {
	f, err := aiger.Parse(strings.NewReader(toggleLatchAAG))
	require.NoError(t, err)

	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	require.NoError(t, aiger.Load(c, f))

	res, err := c.Forward(context.Background(), core.WithMaxIterations(8))
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
	assert.Equal(t, 2, res.Iterations)
}

// TestLoadAndForward_CounterFixture runs the full pipeline on the golden
// 3-bit counter fixture: the counter visits every state, so the all-ones
// bad signal fires after 8 forward iterations.
func TestLoadAndForward_CounterFixture(t *testing.T) {
	fh, err := os.Open("testdata/counter3.aag")
	require.NoError(t, err)
	defer fh.Close()

	f, err := aiger.Parse(fh)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Header.L)
	assert.Equal(t, 8, f.Header.A)

	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	require.NoError(t, aiger.Load(c, f))

	res, err := c.Forward(context.Background(), core.WithMaxIterations(16))
	require.NoError(t, err)
	assert.Equal(t, core.Unsafe, res.Verdict)
	assert.Equal(t, 8, res.Iterations)
}

func TestParseAndLoad_RejectsMismatchedHeader(t *testing.T) {
	bad := "aag 2 0 1 0 0\n2 2\n"
	_, err := aiger.Parse(strings.NewReader(bad))
	require.Error(t, err)
}

func TestParseAndLoad_RejectsJusticeFairness(t *testing.T) {
	bad := "aag 1 0 1 0 0 0 0 1 0\n2 2\n"
	_, err := aiger.Parse(strings.NewReader(bad))
	require.Error(t, err)
}

package core

import "container/heap"

// NewInput appends a PrimaryInput node and returns its id. When FRAIG is
// active it is given a fresh random simulation vector; when a solver is
// attached it registers a fresh SAT variable.
func (c *Circuit) NewInput() NodeId {
	id := c.allocInput()
	c.inputs = append(c.inputs, id)
	return id
}

// NewLatch allocates a fresh LatchInput node, wires it to next with the
// given reset value, and returns the latch's index (Latches()[idx]).
// Next must already exist as a built edge when NewLatch is called — the
// incremental build model never allows forward references, so callers
// either build the transition function first and wire latches last, or
// create the latch input up front and fix Next up afterward via
// SetLatchNext.
func (c *Circuit) NewLatch(next Edge, init bool) int {
	id := c.allocInput()
	idx := c.addLatchRecord(Latch{Input: id, Next: next, Init: init})
	c.nodes[id].LatchIdx = idx
	return idx
}

// SetLatchNext rewires an existing latch's Next edge (used once the
// transition function that depends on the latch's own input is built).
func (c *Circuit) SetLatchNext(idx int, next Edge) { c.latches[idx].Next = next }

func (c *Circuit) allocInput() NodeId {
	id := NodeId(len(c.nodes))
	c.nodes = append(c.nodes, Node{Kind: KindInput, LatchIdx: -1})
	if c.fraig != nil {
		c.fraig.NewInput(id)
	}
	if c.solver != nil {
		c.solver.AddInputNode(id)
	}
	return id
}

// NewAnd is the single choke point for creating AND gates. It applies the
// folding rules in order and is the only place that appends an And node to
// the table.
func (c *Circuit) NewAnd(f0, f1 Edge) Edge {
	c.instr.NewAndCalls++

	// Rule 1: canonicalize fan-in order.
	if f0.Node > f1.Node {
		f0, f1 = f1, f0
	}
	// Rule 2: either fan-in constant false.
	if f0.IsConstFalse() || f1.IsConstFalse() {
		return ConstFalse
	}
	// Rule 3: constant-true fan-in is the identity.
	if f0.IsConstTrue() {
		return f1
	}
	if f1.IsConstTrue() {
		return f0
	}
	// Rule 4: idempotence.
	if f0 == f1 {
		return f0
	}
	// Rule 5: complementation.
	if f0 == f1.Not() {
		return ConstFalse
	}

	// Rule 6: FRAIG consultation.
	var simAnd Vector
	if c.fraig != nil {
		existing, ok, s := c.fraig.CheckNewAnd(c.solver, c.nodes, f0, f1)
		if ok {
			return existing
		}
		simAnd = s
	}

	// Rule 7: allocate.
	id := NodeId(len(c.nodes))
	level := c.nodes[f0.Node].Level
	if c.nodes[f1.Node].Level > level {
		level = c.nodes[f1.Node].Level
	}
	c.nodes = append(c.nodes, Node{
		Kind:     KindAnd,
		Fanin0:   f0,
		Fanin1:   f1,
		Level:    level + 1,
		LatchIdx: -1,
	})
	c.nodes[f0.Node].Fanouts = append(c.nodes[f0.Node].Fanouts, Edge{Node: id, Compl: f0.Compl})
	c.nodes[f1.Node].Fanouts = append(c.nodes[f1.Node].Fanouts, Edge{Node: id, Compl: f1.Compl})
	c.instr.AndsAllocated++
	if c.solver != nil {
		c.solver.AddAndNode(id, f0, f1)
	}
	if c.fraig != nil {
		c.fraig.Commit(id, simAnd)
	}
	return Edge{Node: id, Compl: false}
}

// NewOr returns f0 ∨ f1, defined as ¬NewAnd(¬f0, ¬f1).
func (c *Circuit) NewOr(f0, f1 Edge) Edge {
	return c.NewAnd(f0.Not(), f1.Not()).Not()
}

// NewXnor returns the "equal node" of f0 and f1: NewAnd(¬NewAnd(f0,¬f1), ¬NewAnd(¬f0,f1)).
func (c *Circuit) NewXnor(f0, f1 Edge) Edge {
	a := c.NewAnd(f0, f1.Not())
	b := c.NewAnd(f0.Not(), f1)
	return c.NewAnd(a.Not(), b.Not())
}

// levelEdge pairs an edge with its node's level so AndOfMany's heap does not
// re-read the table on every comparison.
type levelEdge struct {
	level uint32
	e     Edge
}

// levelHeap is a min-heap keyed by (level, edge), used by AndOfMany to build
// a balanced AND tree.
type levelHeap []levelEdge

func (h levelHeap) Len() int { return len(h) }
func (h levelHeap) Less(i, j int) bool {
	if h[i].level != h[j].level {
		return h[i].level < h[j].level
	}
	if h[i].e.Node != h[j].e.Node {
		return h[i].e.Node < h[j].e.Node
	}
	return !h[i].e.Compl && h[j].e.Compl
}
func (h levelHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *levelHeap) Push(x any)   { *h = append(*h, x.(levelEdge)) }
func (h *levelHeap) Pop() any {
	old := *h
	n := len(old)
	le := old[n-1]
	*h = old[:n-1]
	return le
}

// AndOfMany builds a balanced AND tree over edges using a min-heap keyed by
// (level(node), edge): repeatedly pop the two lowest-level edges and push
// their conjunction. This keeps depth logarithmic and maximizes structural
// sharing. Returns ConstTrue for an empty input (the identity of AND).
func (c *Circuit) AndOfMany(edges []Edge) Edge {
	if len(edges) == 0 {
		return ConstTrue
	}
	h := make(levelHeap, 0, len(edges))
	for _, e := range edges {
		h = append(h, levelEdge{level: c.nodes[e.Node].Level, e: e})
	}
	heap.Init(&h)
	for h.Len() > 1 {
		a := heap.Pop(&h).(levelEdge)
		b := heap.Pop(&h).(levelEdge)
		r := c.NewAnd(a.e, b.e)
		heap.Push(&h, levelEdge{level: c.nodes[r.Node].Level, e: r})
	}
	return h[0].e
}

// OrOfMany is AndOfMany's De Morgan dual.
func (c *Circuit) OrOfMany(edges []Edge) Edge {
	if len(edges) == 0 {
		return ConstFalse
	}
	neg := make([]Edge, len(edges))
	for i, e := range edges {
		neg[i] = e.Not()
	}
	return c.AndOfMany(neg).Not()
}

// MergeEquivalent unifies two provably-equivalent nodes: replace.Node must
// be strictly greater than keep.Node. Every fanout of replace.Node is
// rewired to point at keep (composing polarity), every latch next, output,
// and bad edge that referenced replace.Node is rewritten, and
// replace.Node is left orphaned for the next GC to reclaim.
func (c *Circuit) MergeEquivalent(replace, keep Edge) error {
	if replace.Node <= keep.Node {
		return ErrMergeOrder
	}
	// relPolarity: value-preserving polarity to compose when rewriting an
	// edge that pointed at replace.Node with given compl, into keep.Node.
	compose := func(origCompl bool) Edge {
		out := keep
		if origCompl != replace.Compl {
			out = out.Not()
		}
		return out
	}

	rn := &c.nodes[replace.Node]
	fanouts := rn.Fanouts
	rn.Fanouts = nil

	// Drop replace from keep's fanout list: replace may itself use keep as
	// a fan-in, and it acquires no new users from here on.
	kn := &c.nodes[keep.Node]
	kept := kn.Fanouts[:0]
	for _, fe := range kn.Fanouts {
		if fe.Node != replace.Node {
			kept = append(kept, fe)
		}
	}
	kn.Fanouts = kept

	for _, user := range fanouts {
		un := &c.nodes[user.Node]
		if !un.IsAnd() {
			continue
		}
		newEdge := compose(user.Compl)
		changed := false
		if un.Fanin0.Node == replace.Node {
			un.Fanin0 = newEdge
			changed = true
		}
		if un.Fanin1.Node == replace.Node {
			un.Fanin1 = newEdge
			changed = true
		}
		if !changed {
			continue
		}
		// Re-canonicalize fan-in order.
		if un.Fanin0.Node > un.Fanin1.Node {
			un.Fanin0, un.Fanin1 = un.Fanin1, un.Fanin0
		}
		// Recompute level.
		l0 := c.nodes[un.Fanin0.Node].Level
		l1 := c.nodes[un.Fanin1.Node].Level
		lvl := l0
		if l1 > lvl {
			lvl = l1
		}
		un.Level = lvl + 1
		c.nodes[keep.Node].Fanouts = append(c.nodes[keep.Node].Fanouts,
			Edge{Node: user.Node, Compl: newEdge.Compl})
	}

	for i := range c.latches {
		if c.latches[i].Next.Node == replace.Node {
			c.latches[i].Next = compose(c.latches[i].Next.Compl)
		}
	}
	for i := range c.outputs {
		if c.outputs[i].Node == replace.Node {
			c.outputs[i] = compose(c.outputs[i].Compl)
		}
	}
	for i := range c.bads {
		if c.bads[i].Node == replace.Node {
			c.bads[i] = compose(c.bads[i].Compl)
		}
	}
	return nil
}

package core

// pruned marks a node id that GC dropped: it has no surviving position in
// the compacted table.
const pruned = NodeId(^uint32(0))

// Remap maps old NodeIds to new NodeIds after garbage collection. A pruned
// entry is pruned (^NodeId(0)); any attempt to resolve it is a program
// fault (InvariantBreach), since it means a live edge referenced a node the
// preservation set did not cover.
type Remap []NodeId

// Resolve rewrites an edge through the remap, honoring polarity. It returns
// an InvariantBreach if e.Node was pruned.
func (r Remap) Resolve(e Edge) (Edge, error) {
	nn := r[e.Node]
	if nn == pruned {
		return Edge{}, breach("gc.Resolve", "edge referenced pruned node %d", e.Node)
	}
	return Edge{Node: nn, Compl: e.Compl}, nil
}

// Collect runs garbage collection / renumbering: it computes the union
// fan-in cone over every must-preserve edge (every current latch
// input/next, every primary input, every output, every bad, the constant,
// plus any extra edges the caller passes to keep alive), then rebuilds the
// node table in a fresh, compacted id space. Every edge in extra is
// rewritten in place through the returned Remap.
//
// Collect reports an InvariantBreach if any preserved edge's cone somehow
// escapes the walk, which should be structurally impossible since FaninCone
// is exhaustive.
func (c *Circuit) Collect(extra []*Edge) (Remap, error) {
	c.instr.GcRuns++
	before := len(c.nodes)

	roots := c.preserveRoots()
	for _, e := range extra {
		roots = append(roots, *e)
	}
	live := c.FaninCone(roots)
	live[constNode] = true

	remap := make(Remap, len(c.nodes))
	for i := range remap {
		remap[i] = pruned
	}

	newNodes := make([]Node, 0, CountTrue(live))
	for old := 0; old < len(c.nodes); old++ {
		if !live[old] {
			continue
		}
		nid := NodeId(len(newNodes))
		remap[old] = nid
		n := c.nodes[old]
		n.Fanouts = nil
		if n.IsAnd() {
			f0, err := remap.Resolve(n.Fanin0)
			if err != nil {
				return nil, err
			}
			f1, err := remap.Resolve(n.Fanin1)
			if err != nil {
				return nil, err
			}
			n.Fanin0, n.Fanin1 = f0, f1
		}
		newNodes = append(newNodes, n)
	}

	// Recompute fanouts from scratch over the compacted table.
	for id := range newNodes {
		n := &newNodes[id]
		if !n.IsAnd() {
			continue
		}
		newNodes[n.Fanin0.Node].Fanouts = append(newNodes[n.Fanin0.Node].Fanouts,
			Edge{Node: NodeId(id), Compl: n.Fanin0.Compl})
		newNodes[n.Fanin1.Node].Fanouts = append(newNodes[n.Fanin1.Node].Fanouts,
			Edge{Node: NodeId(id), Compl: n.Fanin1.Compl})
	}

	rewriteList := func(list []NodeId) error {
		for i, id := range list {
			nn := remap[id]
			if nn == pruned {
				return breach("gc.Collect", "primary input %d pruned", id)
			}
			list[i] = nn
		}
		return nil
	}
	if err := rewriteList(c.inputs); err != nil {
		return nil, err
	}
	for i := range c.latches {
		in, err := remap.Resolve(Edge{Node: c.latches[i].Input})
		if err != nil {
			return nil, err
		}
		next, err := remap.Resolve(c.latches[i].Next)
		if err != nil {
			return nil, err
		}
		c.latches[i].Input = in.Node
		c.latches[i].Next = next
	}
	for i := range c.outputs {
		e, err := remap.Resolve(c.outputs[i])
		if err != nil {
			return nil, err
		}
		c.outputs[i] = e
	}
	for i := range c.bads {
		e, err := remap.Resolve(c.bads[i])
		if err != nil {
			return nil, err
		}
		c.bads[i] = e
	}
	for _, e := range extra {
		ne, err := remap.Resolve(*e)
		if err != nil {
			return nil, err
		}
		*e = ne
	}
	for id := range newNodes {
		if newNodes[id].Kind == KindInput && newNodes[id].LatchIdx >= 0 {
			newNodes[id].LatchIdx = findLatchByInput(c.latches, NodeId(id))
		}
	}

	c.nodes = newNodes
	if c.fraig != nil {
		c.fraig.sim.Permute(remap, len(newNodes))
		c.fraig.rebuildSimMap(c.nodes)
		newLazy := make([]uint64, len(newNodes))
		for old, nn := range remap {
			if nn != pruned {
				newLazy[nn] = c.fraig.lazyCex[old]
			}
		}
		c.fraig.lazyCex = newLazy
	}
	if c.solver != nil {
		rebuildSolver(c)
	}

	c.instr.GcNodesFreed += uint64(before - len(newNodes))
	return remap, nil
}

func findLatchByInput(latches []Latch, id NodeId) int {
	for i, l := range latches {
		if l.Input == id {
			return i
		}
	}
	return -1
}

// rebuildSolver re-registers every node with a fresh round of the solver's
// incremental variable namespace: the variable namespace is driven by
// NodeIds and must be reinitialized atomically when ids are renumbered.
// The concrete GiniSolver allocates variables lazily from NodeId alone, so
// a fresh *GiniSolver with clauses re-added is the reinitialization; other
// backends may have cheaper incremental remapping.
func rebuildSolver(c *Circuit) {
	if gs, ok := c.solver.(*GiniSolver); ok {
		*gs = *NewGiniSolver()
	}
	for id := range c.nodes {
		n := &c.nodes[id]
		switch n.Kind {
		case KindInput:
			c.solver.AddInputNode(NodeId(id))
		case KindAnd:
			c.solver.AddAndNode(NodeId(id), n.Fanin0, n.Fanin1)
		}
	}
}

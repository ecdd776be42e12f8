package core

// EliminateInput existentially quantifies a PrimaryInput out of a set of
// observable edges: for each observable edge O it returns the Shannon
// cofactor expansion O[e←0] ∨ O[e←1]. Eliminating the constant node is
// forbidden.
func (c *Circuit) EliminateInput(input NodeId, observable []Edge) ([]Edge, error) {
	if input == constNode {
		return nil, ErrConstantInput
	}
	if c.nodes[input].Kind != KindInput {
		return nil, ErrNotAnInput
	}
	c.instr.EliminateCalls++

	cone := c.FaninCone(observable)
	// The cofactor walk itself creates nodes, so every per-node table below
	// is bounded to the ids that existed on entry; fanout edges pointing at
	// nodes created mid-walk are skipped (they are outside the cone by
	// construction).
	limit := len(c.nodes)

	results := [2][]Edge{make([]Edge, len(observable)), make([]Edge, len(observable))}
	for polIdx, forcedValue := range [2]bool{false, true} {
		value := make([]*Edge, limit)
		forced := Edge{Node: constNode, Compl: forcedValue}
		value[input] = &forced

		reach := make([]bool, limit)
		reach[input] = true
		for _, fe := range c.nodes[input].Fanouts {
			if int(fe.Node) < limit && cone[fe.Node] {
				reach[fe.Node] = true
			}
		}

		// Ascending id order is topological: an And node's fan-ins always
		// have smaller ids than the node itself (NewAnd only ever refers to
		// already-existing nodes).
		for id := 1; id < limit; id++ {
			if !reach[NodeId(id)] {
				continue
			}
			n := c.nodes[id]
			if !n.IsAnd() {
				continue
			}
			v0, has0 := cofactorFanin(value, n.Fanin0)
			v1, has1 := cofactorFanin(value, n.Fanin1)
			if !has0 && !has1 {
				continue
			}
			newEdge := c.NewAnd(v0, v1)
			value[id] = &newEdge
			for _, fe := range n.Fanouts {
				if int(fe.Node) < limit && cone[fe.Node] {
					reach[fe.Node] = true
				}
			}
		}

		for i, o := range observable {
			if !cone[o.Node] {
				results[polIdx][i] = o
				continue
			}
			if value[o.Node] != nil {
				results[polIdx][i] = value[o.Node].Xor(o.Compl)
			} else {
				results[polIdx][i] = o
			}
		}
	}

	out := make([]Edge, len(observable))
	for i := range observable {
		out[i] = c.NewOr(results[0][i], results[1][i])
	}
	return out, nil
}

// cofactorFanin returns the substituted value for fanin, and whether a
// substitution was found at all (false means "unchanged", i.e. use fanin
// itself as-is).
func cofactorFanin(value []*Edge, fanin Edge) (Edge, bool) {
	if v := value[fanin.Node]; v != nil {
		return v.Xor(fanin.Compl), true
	}
	return fanin, false
}

// EliminationCost estimates the heuristic cost of eliminating input next,
// given the current observable set: |fanout_cone(input) ∩ fanin_cone(observable)|.
func (c *Circuit) EliminationCost(input NodeId, observable []Edge) int {
	fanin := c.FaninCone(observable)
	fanout := c.FanoutCone(input)
	n := 0
	for id := range c.nodes {
		if fanin[id] && fanout[id] {
			n++
		}
	}
	return n
}

// ChooseEliminationOrder picks, among remaining, the input with minimum
// EliminationCost against observable. Callers must re-evaluate this after
// every elimination, since the observable set changes each round.
func (c *Circuit) ChooseEliminationOrder(remaining []NodeId, observable []Edge) NodeId {
	best := remaining[0]
	bestCost := c.EliminationCost(best, observable)
	for _, id := range remaining[1:] {
		cost := c.EliminationCost(id, observable)
		if cost < bestCost {
			best, bestCost = id, cost
		}
	}
	return best
}

package core

// FaninCone returns a boolean membership set (indexed by NodeId) for every
// node reachable by walking fan-ins backward from roots, roots included.
func (c *Circuit) FaninCone(roots []Edge) []bool {
	in := make([]bool, len(c.nodes))
	var walk func(id NodeId)
	walk = func(id NodeId) {
		if in[id] {
			return
		}
		in[id] = true
		n := &c.nodes[id]
		if n.IsAnd() {
			walk(n.Fanin0.Node)
			walk(n.Fanin1.Node)
		}
	}
	for _, e := range roots {
		walk(e.Node)
	}
	return in
}

// FanoutCone returns a boolean membership set for every node reachable by
// walking fanouts forward from root, root included.
func (c *Circuit) FanoutCone(root NodeId) []bool {
	out := make([]bool, len(c.nodes))
	var walk func(id NodeId)
	walk = func(id NodeId) {
		if out[id] {
			return
		}
		out[id] = true
		for _, e := range c.nodes[id].Fanouts {
			walk(e.Node)
		}
	}
	walk(root)
	return out
}

// CountTrue returns the number of set entries in a membership set returned
// by FaninCone/FanoutCone.
func CountTrue(set []bool) int {
	n := 0
	for _, b := range set {
		if b {
			n++
		}
	}
	return n
}

// preserveRoots collects every edge the circuit itself must keep alive:
// every latch's Next and Input, every primary input, every output, every
// bad. Used by both GC (as the preservation set) and by callers building
// their own fan-in cones over "everything currently observable".
func (c *Circuit) preserveRoots() []Edge {
	roots := make([]Edge, 0, len(c.inputs)+3*len(c.latches)+len(c.outputs)+len(c.bads))
	for _, id := range c.inputs {
		roots = append(roots, Edge{Node: id})
	}
	for _, l := range c.latches {
		roots = append(roots, Edge{Node: l.Input}, l.Next)
	}
	roots = append(roots, c.outputs...)
	roots = append(roots, c.bads...)
	return roots
}

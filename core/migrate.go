package core

// Migrate re-expresses edge e in terms of a substitution map: every node
// n ∈ dom(subst) is replaced by subst[n]. It walks the fan-in cone of e in
// ascending id order, rebuilding each And with its
// substituted fan-ins via NewAnd and caching the result per source node;
// non-substituted non-And nodes map to themselves. Used to migrate
// latch-output nodes to latch-input nodes between reachability iterations.
func (c *Circuit) Migrate(subst map[NodeId]Edge, e Edge) Edge {
	cone := c.FaninCone([]Edge{e})
	// NewAnd appends to the table mid-walk; the cone and cache only ever
	// cover the ids that existed on entry.
	limit := len(c.nodes)
	cache := make([]*Edge, limit)

	for id := 0; id < limit; id++ {
		nid := NodeId(id)
		if !cone[nid] {
			continue
		}
		if sub, ok := subst[nid]; ok {
			v := sub
			cache[id] = &v
			c.instr.MigrateCacheHit++
			continue
		}
		n := c.nodes[id]
		if !n.IsAnd() {
			v := Edge{Node: nid}
			cache[id] = &v
			continue
		}
		f0 := cache[n.Fanin0.Node].Xor(n.Fanin0.Compl)
		f1 := cache[n.Fanin1.Node].Xor(n.Fanin1.Compl)
		if f0 == n.Fanin0 && f1 == n.Fanin1 {
			// Untouched cone: the node stands for itself, no rebuild.
			v := Edge{Node: nid}
			cache[id] = &v
			continue
		}
		v := c.NewAnd(f0, f1)
		cache[id] = &v
	}
	return cache[e.Node].Xor(e.Compl)
}

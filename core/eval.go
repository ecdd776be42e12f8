package core

// EvaluateAssignment computes the Boolean value of every node under a full
// assignment: assign must already hold the desired value for every
// KindConst/KindInput node (assign[0] should be false), and every KindAnd
// node's value is then derived bottom-up, relying on the invariant that an
// And node's id always exceeds both its fan-ins' ids. Used by explicit-
// state oracles (package bruteforce) and the bdd-hybrid driver to read a
// quantified state function's truth value directly, outside the
// bit-parallel FRAIG simulation machinery.
func (c *Circuit) EvaluateAssignment(assign []bool) []bool {
	val := make([]bool, len(c.nodes))
	copy(val, assign)
	for id := 1; id < len(c.nodes); id++ {
		n := &c.nodes[id]
		if n.Kind != KindAnd {
			continue
		}
		f0 := val[n.Fanin0.Node] != n.Fanin0.Compl
		f1 := val[n.Fanin1.Node] != n.Fanin1.Compl
		val[id] = f0 && f1
	}
	return val
}

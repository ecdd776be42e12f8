package core

// Assignment is a distinguishing model returned by a failed equivalence
// check: a[n] is the Boolean value node n took under the assignment a.
// Only nodes the solver actually has variables for are populated; callers
// index it by NodeId.
type Assignment map[NodeId]bool

// Eval reads e's value under a, honoring polarity.
func (a Assignment) Eval(e Edge) bool {
	if e.IsConst() {
		return e.Compl
	}
	return a[e.Node] != e.Compl
}

// SatSolver is the incremental CNF/circuit-level SAT solver capability the
// core package depends on. Any solver supporting incremental assumptions
// qualifies; swapping implementations is an implementation concern, never a
// core-package concern.
type SatSolver interface {
	// AddInputNode introduces a fresh Boolean variable for id.
	AddInputNode(id NodeId)

	// AddAndNode introduces a variable for id and the three binary clauses
	// encoding id ⇔ (f0 ∧ f1).
	AddAndNode(id NodeId, f0, f1 Edge)

	// NewRound starts a fresh incremental solving round (clears any
	// round-scoped assumption/cone state a backend may keep).
	NewRound()

	// MarkCone hints that only the fan-in cone of edges matters for the
	// upcoming Solve calls; backends may use this to prune clause activity.
	MarkCone(edges []Edge)

	// Solve attempts to satisfy all added clauses under assumptions (each
	// assumption edge forced true). Returns a satisfying assignment and
	// true on SAT, or (nil, false) on UNSAT.
	Solve(assumptions []Edge) (Assignment, bool)
}

// EquivalenceCheck decides whether x and y compute the same function: two
// solve calls, {x, ¬y} then {¬x, y}, returning the first distinguishing
// assignment found, or (nil, false) if both are UNSAT (x and y are
// equivalent).
func EquivalenceCheck(s SatSolver, x, y Edge) (Assignment, bool) {
	s.NewRound()
	s.MarkCone([]Edge{x, y})
	if a, sat := s.Solve([]Edge{x, y.Not()}); sat {
		return a, true
	}
	if a, sat := s.Solve([]Edge{x.Not(), y}); sat {
		return a, true
	}
	return nil, false
}

// EquivalenceCheckXYZ verifies (x ∧ y) ⇔ z via the three queries
// {x, y, ¬z}, {¬x, z}, {¬y, z}.
func EquivalenceCheckXYZ(s SatSolver, x, y, z Edge) (Assignment, bool) {
	s.NewRound()
	s.MarkCone([]Edge{x, y, z})
	if a, sat := s.Solve([]Edge{x, y, z.Not()}); sat {
		return a, true
	}
	if a, sat := s.Solve([]Edge{x.Not(), z}); sat {
		return a, true
	}
	if a, sat := s.Solve([]Edge{y.Not(), z}); sat {
		return a, true
	}
	return nil, false
}

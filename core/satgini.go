package core

import (
	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"
)

// GiniSolver adapts github.com/irifrance/gini, a real incremental CDCL SAT
// solver, to the SatSolver capability set. NodeId n is represented by
// variable z.Var(n+1) (variable 0 is reserved by gini itself); AddAndNode
// Tseitinizes id ⇔ (f0 ∧ f1) into the same three binary clauses that
// github.com/irifrance/gini/logic.C.ToCnf emits for its AND nodes:
//
//	(¬g ∨ a) ∧ (¬g ∨ b) ∧ (g ∨ ¬a ∨ ¬b)
//
// This is the one concrete SAT backend shipped with the module; the core
// package only ever depends on the SatSolver interface in sat.go.
type GiniSolver struct {
	g *gini.Gini
}

// NewGiniSolver allocates a fresh gini-backed solver, with the variable
// standing for NodeId(0) fixed to false by a unit clause (node 0 is always
// the constant-false node; Edge{0,true} is its negation, logical 1).
func NewGiniSolver() *GiniSolver {
	s := &GiniSolver{g: gini.New()}
	s.g.Add(giniVar(constNode).Neg())
	s.g.Add(0)
	return s
}

func giniVar(id NodeId) z.Var { return z.Var(uint32(id) + 1) }

func giniLit(e Edge) z.Lit {
	l := giniVar(e.Node).Pos()
	if e.Compl {
		l = l.Not()
	}
	return l
}

func (s *GiniSolver) AddInputNode(id NodeId) {
	// No clauses: an input is an unconstrained variable. Gini allocates
	// variables lazily on first use in Add/Assume, so nothing to do beyond
	// reserving the mapping, which giniVar computes deterministically.
	_ = giniVar(id)
}

// addAnd emits the three Tseitin clauses for g <=> (a & b), mirroring
// gini/logic.C's addAnd helper.
func (s *GiniSolver) addAnd(g, a, b z.Lit) {
	s.g.Add(g.Not())
	s.g.Add(a)
	s.g.Add(0)
	s.g.Add(g.Not())
	s.g.Add(b)
	s.g.Add(0)
	s.g.Add(g)
	s.g.Add(a.Not())
	s.g.Add(b.Not())
	s.g.Add(0)
}

func (s *GiniSolver) AddAndNode(id NodeId, f0, f1 Edge) {
	s.addAnd(giniVar(id).Pos(), giniLit(f0), giniLit(f1))
}

func (s *GiniSolver) NewRound() {
	// Gini's incremental interface carries learned clauses across Solve
	// calls by design; nothing needs resetting between rounds.
}

func (s *GiniSolver) MarkCone(edges []Edge) {
	// Gini does not expose cone-restricted solving; this is a no-op hint.
	// A backend that does support it (e.g. a circuit-level SAT engine)
	// would prune here instead.
	_ = edges
}

func (s *GiniSolver) Solve(assumptions []Edge) (Assignment, bool) {
	lits := make([]z.Lit, len(assumptions))
	for i, e := range assumptions {
		lits[i] = giniLit(e)
	}
	s.g.Assume(lits...)
	if s.g.Solve() != 1 {
		return nil, false
	}
	// Read back the full model, not just the assumption literals: FRAIG
	// re-propagates a counterexample from the input values, so every
	// variable's polarity matters.
	max := s.g.MaxVar()
	a := make(Assignment, int(max))
	for v := z.Var(1); v <= max; v++ {
		a[NodeId(v-1)] = s.g.Value(v.Pos())
	}
	return a, true
}

// Package bdd offers an alternative representation for the reached-state
// function: a lossless DNF<->BDD conversion (one BDD variable per latch)
// and a BDD->CNF+top-literal Tseitin encoding that folds straight back into
// a core.Circuit's own node space. It wraps github.com/dalzilio/rudd, a
// BuDDy-style reduced binary decision diagram package.
package bdd

import (
	"fmt"

	"github.com/dalzilio/rudd"

	"github.com/gipsyh/aig-go/core"
)

// Manager binds a rudd BDD system to a fixed set of latch-input variables,
// one rudd variable per latch in Circuit.Latches() order.
type Manager struct {
	sys     *rudd.BDD
	latches []core.NodeId // rudd var index -> latch input NodeId
	varOf   map[core.NodeId]int
}

// NewManager allocates a BDD variable per latch of c.
func NewManager(c *core.Circuit) (*Manager, error) {
	latches := c.Latches()
	n := len(latches)
	if n == 0 {
		n = 1 // rudd requires a positive variable count even for the trivial case
	}
	sys, err := rudd.New(n)
	if err != nil {
		return nil, fmt.Errorf("bdd: %w", err)
	}
	m := &Manager{sys: sys, varOf: make(map[core.NodeId]int, n)}
	for i, l := range latches {
		m.latches = append(m.latches, l.Input)
		m.varOf[l.Input] = i
	}
	return m, nil
}

func (m *Manager) litVar(e core.Edge) (int, bool) {
	v, ok := m.varOf[e.Node]
	return v, ok
}

// FromDNF builds the BDD node for a sum of cubes, each cube a conjunction
// of latch-input literals.
func (m *Manager) FromDNF(cubes [][]core.Edge) (rudd.Node, error) {
	acc := m.sys.False()
	for _, cube := range cubes {
		term := m.sys.True()
		for _, lit := range cube {
			v, ok := m.litVar(lit)
			if !ok {
				return nil, fmt.Errorf("bdd: literal on node %d is not a known latch input", lit.Node)
			}
			var litNode rudd.Node
			if lit.Compl {
				litNode = m.sys.NIthvar(v)
			} else {
				litNode = m.sys.Ithvar(v)
			}
			term = m.sys.And(term, litNode)
		}
		acc = m.sys.Or(acc, term)
	}
	return acc, nil
}

// ToDNF recovers a sum-of-cubes representation of n by walking every path
// to the true terminal; don't-care variables along a path are omitted from
// that path's cube (each omitted variable doubles the states the cube
// covers, matching BDD semantics exactly).
func (m *Manager) ToDNF(n rudd.Node) [][]core.Edge {
	var out [][]core.Edge
	var walk func(node rudd.Node, path []core.Edge)
	walk = func(node rudd.Node, path []core.Edge) {
		switch {
		case m.sys.Equal(node, m.sys.False()):
			return
		case m.sys.Equal(node, m.sys.True()):
			cube := append([]core.Edge(nil), path...)
			out = append(out, cube)
			return
		}
		latch := m.latches[m.sys.Label(node)]
		walk(m.sys.Low(node), append(path, core.Edge{Node: latch, Compl: true}))
		walk(m.sys.High(node), append(path, core.Edge{Node: latch, Compl: false}))
	}
	walk(n, nil)
	return out
}

// Clause is a disjunction of core.Edge literals, the unit this package's
// Tseitin encoding of a BDD emits.
type Clause []core.Edge

// ToCNF Tseitin-encodes n into c: one fresh core.NodeId (via c.NewInput, so
// it lands in the same id space and SAT-solver registration as every other
// node) per internal BDD node, four clauses per node relating it to its
// low/high children and its selector variable, and returns the full clause
// set plus the top-level literal standing for n itself. Sharing inside the
// BDD is preserved: a rudd.Node dereferences to its index in the node
// table, which keys the memo.
func (m *Manager) ToCNF(c *core.Circuit, n rudd.Node) ([]Clause, core.Edge) {
	cache := map[int]core.Edge{}
	var clauses []Clause

	var walk func(node rudd.Node) core.Edge
	walk = func(node rudd.Node) core.Edge {
		if e, ok := cache[*node]; ok {
			return e
		}
		if m.sys.Equal(node, m.sys.False()) {
			cache[*node] = core.ConstFalse
			return core.ConstFalse
		}
		if m.sys.Equal(node, m.sys.True()) {
			cache[*node] = core.ConstTrue
			return core.ConstTrue
		}
		lowE := walk(m.sys.Low(node))
		highE := walk(m.sys.High(node))
		sel := core.Edge{Node: m.latches[m.sys.Label(node)]}

		g := core.Edge{Node: c.NewInput()}
		// g <-> ITE(sel, high, low): (¬g ∨ ¬sel ∨ high) ∧ (¬g ∨ sel ∨ low) ∧
		// (g ∨ ¬sel ∨ ¬high) ∧ (g ∨ sel ∨ ¬low)
		clauses = append(clauses,
			Clause{g.Not(), sel.Not(), highE},
			Clause{g.Not(), sel, lowE},
			Clause{g, sel.Not(), highE.Not()},
			Clause{g, sel, lowE.Not()},
		)
		cache[*node] = g
		return g
	}
	top := walk(n)
	return clauses, top
}

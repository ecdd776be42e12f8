package core

// FraigEngine keeps the AIG functionally reduced as it grows: it discovers
// candidate equivalence classes from simulation hashes, proves or refutes
// them with SAT, and feeds counterexamples back into the simulation so the
// candidate pool shrinks monotonically.
type FraigEngine struct {
	sim     *Simulation
	simMap  map[uint64][]Edge
	lazyCex []uint64 // one pending word per NodeId
	nCex    int      // valid bit count in lazyCex (0..WordBits)
	instr   *Instrumentation
}

func newFraigEngine() *FraigEngine {
	return &FraigEngine{
		sim:     NewSimulation(),
		simMap:  make(map[uint64][]Edge),
		lazyCex: []uint64{0},
	}
}

func (f *FraigEngine) newConstNode() {
	f.simMap[AbsHash(f.sim.vectors[0])] = []Edge{ConstFalse}
}

func (f *FraigEngine) growTo(id NodeId) {
	for len(f.lazyCex) <= int(id) {
		f.lazyCex = append(f.lazyCex, 0)
	}
}

// NewInput allocates a fresh random simulation vector for a new PrimaryInput
// or LatchInput node, retrying until its hash is not already a key of
// simMap.
func (f *FraigEngine) NewInput(id NodeId) {
	v := f.sim.AppendRandom(func(h uint64) bool {
		_, ok := f.simMap[h]
		return ok
	})
	f.simMap[AbsHash(v)] = []Edge{{Node: id}}
	f.growTo(id)
}

func (f *FraigEngine) lazyBits(e Edge) uint64 {
	v := f.lazyCex[e.Node]
	if e.Compl {
		return ^v
	}
	return v
}

// lazyDistinguishes is the fast-reject path: if the pending (not-yet-
// flushed) counterexample bits already show cand disagreeing with f0 ∧ f1,
// skip the expensive SAT call.
func (f *FraigEngine) lazyDistinguishes(cand, f0, f1 Edge) bool {
	if f.nCex == 0 {
		return false
	}
	mask := uint64(1)<<uint(f.nCex) - 1
	and := f.lazyBits(f0) & f.lazyBits(f1) & mask
	c := f.lazyBits(cand) & mask
	return and != c
}

// addCounterexample re-propagates a SAT counterexample assignment over the
// whole AIG (ascending id order, which is topological because ids are
// assigned in build order) to fill bit nCex of every node's lazyCex word,
// then advances nCex, flushing into the real simulation once a full word
// (WordBits patterns) has accumulated.
func (f *FraigEngine) addCounterexample(nodes []Node, cex Assignment) {
	bit := uint64(1) << uint(f.nCex)
	vals := make([]bool, len(nodes))
	for id := 1; id < len(nodes); id++ {
		n := &nodes[id]
		if v, ok := cex[NodeId(id)]; ok {
			vals[id] = v
		} else if n.Kind == KindAnd {
			a := vals[n.Fanin0.Node] != n.Fanin0.Compl
			b := vals[n.Fanin1.Node] != n.Fanin1.Compl
			vals[id] = a && b
		} else {
			vals[id] = f.sim.rng.Intn(2) == 1
		}
		if vals[id] {
			f.lazyCex[id] |= bit
		}
	}
	f.nCex++
	if f.nCex == WordBits {
		f.flush(nodes)
	}
}

// flush merges the buffered counterexample patterns into the permanent
// simulation as one new word per node and rebuilds simMap from scratch over
// the now-longer vectors. Lanes beyond nCex are first filled with fresh
// consistent patterns (random inputs, ANDs derived), so a partial flush
// never injects lanes that disagree with the nodes' real functions.
func (f *FraigEngine) flush(nodes []Node) {
	f.padAndPropagate(nodes)
	f.sim.AppendPatternWord(f.lazyCex[:len(nodes)])
	for i := range f.lazyCex {
		f.lazyCex[i] = 0
	}
	f.nCex = 0
	f.rebuildSimMap(nodes)
}

// padAndPropagate randomizes the unfilled high lanes of every input's
// pending word, then recomputes every And node's word from its fan-ins
// (idempotent on the lanes addCounterexample already propagated).
func (f *FraigEngine) padAndPropagate(nodes []Node) {
	if f.nCex < WordBits {
		mask := ^uint64(0) << uint(f.nCex)
		for id := 1; id < len(nodes); id++ {
			if nodes[id].Kind == KindInput {
				f.lazyCex[id] = f.lazyCex[id]&^mask | f.sim.rng.Uint64()&mask
			}
		}
	}
	for id := 1; id < len(nodes); id++ {
		n := &nodes[id]
		if n.Kind != KindAnd {
			continue
		}
		a := f.lazyCex[n.Fanin0.Node]
		if n.Fanin0.Compl {
			a = ^a
		}
		b := f.lazyCex[n.Fanin1.Node]
		if n.Fanin1.Compl {
			b = ^b
		}
		f.lazyCex[id] = a & b
	}
}

func (f *FraigEngine) rebuildSimMap(nodes []Node) {
	m := make(map[uint64][]Edge, len(f.simMap))
	for id := range nodes {
		v := f.sim.vectors[id]
		h := AbsHash(v)
		e := Edge{Node: NodeId(id), Compl: false}
		m[h] = append(m[h], e)
	}
	f.simMap = m
}

// CheckNewAnd is the incremental equivalence check invoked from
// Circuit.NewAnd's folding step 6. It returns an existing equivalent edge
// when one is proved, or (false) plus the computed simulation vector the
// caller must Commit once it has allocated the new node's id.
func (f *FraigEngine) CheckNewAnd(solver SatSolver, nodes []Node, f0, f1 Edge) (Edge, bool, Vector) {
	simAnd := And(f.sim.Of(f0), f.sim.Of(f1))
	targetCompl := Compl(simAnd)
	bucket := f.simMap[AbsHash(simAnd)]
	for _, raw := range bucket {
		cand := raw
		if Compl(f.sim.Of(cand)) != targetCompl {
			cand = cand.Not()
		}
		if f.lazyDistinguishes(cand, f0, f1) {
			if f.instr != nil {
				f.instr.LazyCexRejects++
			}
			continue
		}
		if solver == nil {
			continue
		}
		if f.instr != nil {
			f.instr.SatCalls++
		}
		cex, sat := EquivalenceCheckXYZ(solver, f0, f1, cand)
		if !sat {
			if f.instr != nil {
				f.instr.FraigMerges++
			}
			return cand, true, nil
		}
		f.addCounterexample(nodes, cex)
	}
	// A refutation above may have flushed the lazy buffer, widening every
	// vector by a word; the committed vector must match the new width.
	if len(simAnd) != f.sim.words {
		simAnd = And(f.sim.Of(f0), f.sim.Of(f1))
	}
	return Edge{}, false, simAnd
}

// Commit registers the sim vector for a newly-allocated And node id, once
// CheckNewAnd found no equivalent candidate.
func (f *FraigEngine) Commit(id NodeId, simAnd Vector) {
	f.sim.Append(simAnd)
	f.simMap[AbsHash(simAnd)] = append(f.simMap[AbsHash(simAnd)], Edge{Node: id})
	f.growTo(id)
}

// EnableFraig attaches a FRAIG engine to a circuit that was built without
// one, seeding a fresh simulation for every existing node in id order
// (inputs random, ANDs derived from their fan-ins). A following RunFraig
// then sweeps the whole graph for equivalences in one batch, which is the
// usual flow after importing a circuit from AIGER.
func (c *Circuit) EnableFraig() error {
	if c.fraig != nil {
		return ErrFraigActive
	}
	f := newFraigEngine()
	f.instr = &c.instr
	f.newConstNode()
	for id := 1; id < len(c.nodes); id++ {
		n := &c.nodes[id]
		switch n.Kind {
		case KindInput:
			f.NewInput(NodeId(id))
		case KindAnd:
			f.Commit(NodeId(id), And(f.sim.Of(n.Fanin0), f.sim.Of(n.Fanin1)))
		}
	}
	c.fraig = f
	return nil
}

// RunFraig performs a global candidate sweep: bucket every node by its
// simulation hash, SAT-prove each bucket's pairs against its first member,
// feed counterexamples back as new simulation patterns, and repeat until no
// pair remains unproven; then physically merge every confirmed bucket.
// Pairs the pending counterexample buffer already distinguishes skip the
// SAT call; their patterns are flushed into the simulation between rounds
// so the rebucketing separates them.
func (c *Circuit) RunFraig() error {
	if c.fraig == nil {
		return nil
	}
	if c.solver == nil {
		return breach("RunFraig", "fraig active without a solver attached")
	}
	f := c.fraig
	for {
		buckets := make(map[uint64][]Edge)
		for id := range c.nodes {
			v := f.sim.vectors[id]
			h := AbsHash(v)
			buckets[h] = append(buckets[h], Edge{Node: NodeId(id)})
		}
		update := false
		for _, bucket := range buckets {
			if len(bucket) < 2 {
				continue
			}
			pivot := bucket[0]
			pivotCompl := Compl(f.sim.Of(pivot))
			for _, raw := range bucket[1:] {
				cand := raw
				if Compl(f.sim.Of(cand)) != pivotCompl {
					cand = cand.Not()
				}
				if f.lazyDistinguishes(cand, pivot, ConstTrue) {
					c.instr.LazyCexRejects++
					update = true
					continue
				}
				c.instr.SatCalls++
				if cex, sat := EquivalenceCheck(c.solver, pivot, cand); sat {
					f.addCounterexample(c.nodes, cex)
					update = true
				}
			}
		}
		if !update {
			for _, bucket := range buckets {
				if len(bucket) < 2 {
					continue
				}
				pivot := bucket[0]
				pivotCompl := Compl(f.sim.Of(pivot))
				for _, raw := range bucket[1:] {
					dup := raw
					if Compl(f.sim.Of(dup)) != pivotCompl {
						dup = dup.Not()
					}
					if err := c.MergeEquivalent(dup, pivot); err != nil {
						return err
					}
					c.instr.FraigMerges++
				}
			}
			f.rebuildSimMap(c.nodes)
			return nil
		}
		if f.nCex > 0 {
			f.flush(c.nodes)
		}
	}
}

package core

import (
	"context"
	"errors"
	"log/slog"
)

// Verdict is the outcome of a reachability run.
type Verdict int

const (
	// Unknown is returned when a run stops without a verdict: SATBased
	// reaching its depth budget, or a fixed-point loop reaching its
	// iteration cap, without finding a bad state — it is not a proof of
	// safety.
	Unknown Verdict = iota
	Safe
	Unsafe
)

func (v Verdict) String() string {
	switch v {
	case Safe:
		return "SAFE"
	case Unsafe:
		return "UNSAFE"
	default:
		return "UNKNOWN"
	}
}

// ErrTimeout is returned when the run's context is cancelled or its
// deadline expires, checked between iterations. It is
// recoverable: the caller may retry with a larger budget.
var ErrTimeout = errors.New("reach: timed out")

// ReachResult reports the outcome plus the console-facing statistics a
// reachability run should surface.
type ReachResult struct {
	Verdict    Verdict
	Iterations int
}

// ReachOption configures a reachability run.
type ReachOption func(*reachConfig)

type reachConfig struct {
	maxIterations int
	gcThreshold   int
	log           *slog.Logger
	bmcDepth      int
}

func defaultReachConfig() *reachConfig {
	return &reachConfig{maxIterations: 1 << 20, gcThreshold: 100, log: slog.Default(), bmcDepth: 64}
}

// WithMaxIterations caps the fixed-point loop (a safety backstop beyond the
// 2^|latches| termination guarantee the forward/backward loops rely on).
func WithMaxIterations(n int) ReachOption { return func(c *reachConfig) { c.maxIterations = n } }

// WithGCThreshold sets the estimated-elimination-cost threshold above which
// a garbage collection is triggered before eliminating an input (default
// 100).
func WithGCThreshold(n int) ReachOption { return func(c *reachConfig) { c.gcThreshold = n } }

// WithLogger attaches a structured logger for the reachability run's console
// report.
func WithLogger(l *slog.Logger) ReachOption { return func(c *reachConfig) { c.log = l } }

// WithBMCDepth bounds the SATBased mode's unrolling depth.
func WithBMCDepth(n int) ReachOption { return func(c *reachConfig) { c.bmcDepth = n } }

// TransitionSystem bundles what LowerLatchesToInputs produces: a fresh
// "prime" PrimaryInput per latch (Primes[i] pairs with Latches()[i]) and the
// transition-relation edge, the AND over latches of (latch.Next ≡ prime).
//
// The latch-side node ids live in Circuit.Latches (which garbage collection
// rewrites in place), so the substitution maps are built on demand from the
// circuit's current state rather than stored.
type TransitionSystem struct {
	Primes   []NodeId
	Relation Edge
}

// LatchMap returns the substitution prime -> latch-input edge, used to
// migrate a next-state function back onto the current-state representation.
func (ts *TransitionSystem) LatchMap(c *Circuit) map[NodeId]Edge {
	m := make(map[NodeId]Edge, len(ts.Primes))
	for i, p := range ts.Primes {
		m[p] = Edge{Node: c.latches[i].Input}
	}
	return m
}

// InvMap returns the inverse substitution, latch-input -> prime edge.
func (ts *TransitionSystem) InvMap(c *Circuit) map[NodeId]Edge {
	m := make(map[NodeId]Edge, len(ts.Primes))
	for i, p := range ts.Primes {
		m[c.latches[i].Input] = Edge{Node: p}
	}
	return m
}

// primePins returns one stable pointer per prime id so eliminateAll can keep
// the slice remapped across a mid-loop garbage collection.
func (ts *TransitionSystem) primePins() []*NodeId {
	pins := make([]*NodeId, len(ts.Primes))
	for i := range ts.Primes {
		pins[i] = &ts.Primes[i]
	}
	return pins
}

// LowerLatchesToInputs treats every latch's current-state node as an
// ordinary primary input and allocates a fresh prime input per latch, so the
// next-state function becomes a combinational equation over (current state,
// inputs, primes) that the driver can conjoin, quantify, and migrate.
func (c *Circuit) LowerLatchesToInputs() TransitionSystem {
	ts := TransitionSystem{}
	xnors := make([]Edge, 0, len(c.latches))
	for _, l := range c.latches {
		prime := c.allocInput()
		ts.Primes = append(ts.Primes, prime)
		xnors = append(xnors, c.NewXnor(l.Next, Edge{Node: prime}))
	}
	ts.Relation = c.AndOfMany(xnors)
	return ts
}

func constEdgeFor(b bool) Edge {
	if b {
		return ConstTrue
	}
	return ConstFalse
}

// InitEquation builds the AND over latches of (latch_input ≡ init).
func (c *Circuit) InitEquation() Edge {
	eqs := make([]Edge, 0, len(c.latches))
	for _, l := range c.latches {
		eqs = append(eqs, c.NewXnor(Edge{Node: l.Input}, constEdgeFor(l.Init)))
	}
	return c.AndOfMany(eqs)
}

// BadEquation ORs together every bad edge.
func (c *Circuit) BadEquation() Edge { return c.OrOfMany(c.bads) }

// CheckSAT asks the attached solver whether every edge in assumptions can be
// simultaneously forced true against the AIG's Tseitin encoding (every And
// node registers its defining clauses with AddAndNode as it is created, so
// the solver's clause database already represents the whole circuit).
func (c *Circuit) CheckSAT(assumptions ...Edge) (Assignment, bool, error) {
	if c.solver == nil {
		return nil, false, breach("CheckSAT", "no solver attached")
	}
	c.instr.SatCalls++
	c.solver.NewRound()
	c.solver.MarkCone(assumptions)
	a, sat := c.solver.Solve(assumptions)
	return a, sat, nil
}

func cooperativeCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrTimeout
	default:
		return nil
	}
}

// eliminateAll quantifies every input in remaining out of eqn, choosing the
// cheapest input at each step, triggering a GC before any elimination whose
// estimated cost exceeds cfg.gcThreshold. extra holds every edge that must
// survive a mid-loop GC besides eqn itself; pins holds node ids (the primes,
// typically) that must be kept remapped even though they are not edges of
// the equation any more.
func (c *Circuit) eliminateAll(remaining []NodeId, eqn Edge, cfg *reachConfig, extra []*Edge, pins []*NodeId) (Edge, error) {
	rem := append([]NodeId(nil), remaining...)
	eqnPtr := &eqn
	preserve := append([]*Edge{eqnPtr}, extra...)
	for len(rem) > 0 {
		observable := []Edge{eqn}
		chosen := c.ChooseEliminationOrder(rem, observable)
		if c.EliminationCost(chosen, observable) > cfg.gcThreshold {
			remEdges := make([]Edge, len(rem))
			pinEdges := make([]Edge, len(pins))
			all := append([]*Edge(nil), preserve...)
			for i, id := range rem {
				remEdges[i] = Edge{Node: id}
				all = append(all, &remEdges[i])
			}
			for i, p := range pins {
				pinEdges[i] = Edge{Node: *p}
				all = append(all, &pinEdges[i])
			}
			if _, err := c.Collect(all); err != nil {
				return Edge{}, err
			}
			for i := range rem {
				rem[i] = remEdges[i].Node
			}
			for i, p := range pins {
				*p = pinEdges[i].Node
			}
			eqn = *eqnPtr
			observable = []Edge{eqn}
			chosen = c.ChooseEliminationOrder(rem, observable)
		}
		out, err := c.EliminateInput(chosen, observable)
		if err != nil {
			return Edge{}, err
		}
		eqn = out[0]
		*eqnPtr = eqn
		rem = removeNodeId(rem, chosen)
	}
	return eqn, nil
}

// EliminateAll exports eliminateAll with a plain gcThreshold instead of a
// full reachConfig, for drivers outside this package (e.g. package bdd's
// hybrid mode).
func (c *Circuit) EliminateAll(remaining []NodeId, eqn Edge, gcThreshold int, extra []*Edge, pins []*NodeId) (Edge, error) {
	cfg := &reachConfig{gcThreshold: gcThreshold}
	return c.eliminateAll(remaining, eqn, cfg, extra, pins)
}

// stateVariables lists every node the forward image must quantify away:
// the primary inputs plus the lowered current-state latch inputs.
func (c *Circuit) stateVariables() []NodeId {
	out := append([]NodeId(nil), c.inputs...)
	for _, l := range c.latches {
		out = append(out, l.Input)
	}
	return out
}

func removeNodeId(s []NodeId, v NodeId) []NodeId {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Forward runs the forward fixed-point reachability loop: starting from the
// initial states, it repeatedly images the current frontier one step
// through the transition relation (conjoin, quantify away the inputs and
// the current-state variables, migrate primes back onto latch inputs),
// unions the image into the reached-state set, and checks whether any bad
// state is now reachable. It terminates when the reached-state set stops
// growing (Safe) or a bad state is hit (Unsafe). The syntactic fixed-point
// test relies on FRAIG folding equivalent state functions onto one edge.
func (c *Circuit) Forward(ctx context.Context, opts ...ReachOption) (ReachResult, error) {
	cfg := defaultReachConfig()
	for _, o := range opts {
		o(cfg)
	}
	reach := c.InitEquation()
	frontier := reach
	ts := c.LowerLatchesToInputs()
	bad := c.BadEquation()
	pins := ts.primePins()

	for k := 1; k <= cfg.maxIterations; k++ {
		if err := cooperativeCheck(ctx); err != nil {
			return ReachResult{Iterations: k}, err
		}
		if _, sat, err := c.CheckSAT(bad, frontier); err != nil {
			return ReachResult{}, err
		} else if sat {
			cfg.log.Info("reach: bad state reached", "iteration", k)
			return ReachResult{Verdict: Unsafe, Iterations: k}, nil
		}

		eqn := c.NewAnd(frontier, ts.Relation)
		eqn, err := c.eliminateAll(c.stateVariables(), eqn, cfg,
			[]*Edge{&reach, &frontier, &ts.Relation, &bad}, pins)
		if err != nil {
			return ReachResult{}, err
		}

		frontierPrime := c.Migrate(ts.LatchMap(c), eqn)
		reachPrime := c.NewOr(reach, frontierPrime)
		newFrontier := c.NewAnd(frontierPrime, reach.Not())

		cfg.log.Debug("reach: iteration", "k", k, "nodes", c.NumNodes())
		if reachPrime == reach {
			return ReachResult{Verdict: Safe, Iterations: k}, nil
		}
		reach = reachPrime
		frontier = newFrontier
	}
	return ReachResult{Verdict: Unknown, Iterations: cfg.maxIterations}, nil
}

// Backward runs the dual fixed-point: start from bad, substitute
// latch-inputs by their primes, conjoin with the transition relation, and
// quantify away the inputs and the primes to obtain the pre-image; stop
// when the growing bad-reaching set intersects init (Unsafe) or stabilizes
// (Safe).
func (c *Circuit) Backward(ctx context.Context, opts ...ReachOption) (ReachResult, error) {
	cfg := defaultReachConfig()
	for _, o := range opts {
		o(cfg)
	}
	ts := c.LowerLatchesToInputs()
	init := c.InitEquation()
	pins := ts.primePins()

	// A bad edge may depend on primary inputs; quantify them away up front
	// so the growing bad-reaching set is a pure state function and the
	// pre-image never conflates the bad-step input with the transition-step
	// input.
	frontier, err := c.eliminateAll(append([]NodeId(nil), c.inputs...), c.BadEquation(), cfg,
		[]*Edge{&ts.Relation, &init}, pins)
	if err != nil {
		return ReachResult{}, err
	}
	reach := frontier

	for k := 1; k <= cfg.maxIterations; k++ {
		if err := cooperativeCheck(ctx); err != nil {
			return ReachResult{Iterations: k}, err
		}
		if _, sat, err := c.CheckSAT(init, frontier); err != nil {
			return ReachResult{}, err
		} else if sat {
			cfg.log.Info("reach: initial state reaches bad", "iteration", k)
			return ReachResult{Verdict: Unsafe, Iterations: k}, nil
		}

		primed := c.Migrate(ts.InvMap(c), frontier)
		eqn := c.NewAnd(primed, ts.Relation)

		toEliminate := append(append([]NodeId(nil), c.inputs...), ts.Primes...)
		eqn, err := c.eliminateAll(toEliminate, eqn, cfg,
			[]*Edge{&reach, &frontier, &ts.Relation, &init}, pins)
		if err != nil {
			return ReachResult{}, err
		}

		newReach := c.NewOr(reach, eqn)
		newFrontier := c.NewAnd(eqn, reach.Not())

		cfg.log.Debug("reach: iteration", "k", k, "nodes", c.NumNodes())
		if newReach == reach {
			return ReachResult{Verdict: Safe, Iterations: k}, nil
		}
		reach = newReach
		frontier = newFrontier
	}
	return ReachResult{Verdict: Unknown, Iterations: cfg.maxIterations}, nil
}

// SATBased is the bounded-model-checking mode: it skips AIG-level
// quantifier elimination entirely and asks the SAT solver directly whether
// bad is reachable at exactly depth k, for increasing k, by unrolling a
// fresh copy of the transition relation (with fresh input and next-state
// variables) per frame. It never proves SAFE on its own — reaching
// cfg.bmcDepth without a hit returns Unknown.
func (c *Circuit) SATBased(ctx context.Context, opts ...ReachOption) (ReachResult, error) {
	cfg := defaultReachConfig()
	for _, o := range opts {
		o(cfg)
	}
	ts := c.LowerLatchesToInputs()
	bad := c.BadEquation()
	init := c.InitEquation()
	lm := ts.LatchMap(c)

	// curLatch maps each latch-input node to the variable standing for that
	// latch in the current unrolling frame.
	curLatch := map[NodeId]Edge{}
	for _, l := range c.latches {
		curLatch[l.Input] = Edge{Node: l.Input}
	}

	accum := init
	for depth := 0; depth <= cfg.bmcDepth; depth++ {
		if err := cooperativeCheck(ctx); err != nil {
			return ReachResult{Iterations: depth}, err
		}
		badNow := c.Migrate(curLatch, bad)
		if _, sat, err := c.CheckSAT(accum, badNow); err != nil {
			return ReachResult{}, err
		} else if sat {
			cfg.log.Info("reach: bounded check hit a bad state", "depth", depth)
			return ReachResult{Verdict: Unsafe, Iterations: depth}, nil
		}
		if depth == cfg.bmcDepth {
			break
		}

		subst := map[NodeId]Edge{}
		for k, v := range curLatch {
			subst[k] = v
		}
		for _, in := range c.inputs {
			subst[in] = Edge{Node: c.allocInput()}
		}
		nextLatch := map[NodeId]Edge{}
		for _, prime := range ts.Primes {
			fresh := c.allocInput()
			subst[prime] = Edge{Node: fresh}
			nextLatch[lm[prime].Node] = Edge{Node: fresh}
		}
		frameTransition := c.Migrate(subst, ts.Relation)
		accum = c.NewAnd(accum, frameTransition)
		curLatch = nextLatch
	}
	return ReachResult{Verdict: Unknown, Iterations: cfg.bmcDepth}, nil
}

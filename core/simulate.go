package core

import (
	"hash/maphash"
	"math/rand"
)

// WordBits is the width of one simulation machine word. The canonical hash
// always operates on this scalar word sequence regardless of what width a
// vectorized evaluator used to produce it.
const WordBits = 64

// DefaultWords is the default simulation vector length in machine words
// (256 simulated input patterns), a convenient word count for seeding a
// batch equivalence sweep.
const DefaultWords = 4

// Vector is one node's bit-parallel simulation value: W machine words, one
// bit-lane per sampled input pattern.
type Vector []uint64

// NewVector allocates a zeroed vector of the given word count.
func NewVector(words int) Vector { return make(Vector, words) }

// RandomVector returns a freshly randomized vector, used to seed a new
// PrimaryInput's simulation.
func RandomVector(words int, rng *rand.Rand) Vector {
	v := make(Vector, words)
	for i := range v {
		v[i] = rng.Uint64()
	}
	return v
}

// And returns the bit-parallel AND of a and b, honoring polarity: callers
// pass already-negated vectors when the corresponding edge is complemented.
func And(a, b Vector) Vector {
	out := make(Vector, len(a))
	for i := range out {
		out[i] = a[i] & b[i]
	}
	return out
}

// Negate returns the bitwise complement of v.
func Negate(v Vector) Vector {
	out := make(Vector, len(v))
	for i := range out {
		out[i] = ^v[i]
	}
	return out
}

// WithPolarity returns v or its negation depending on compl.
func WithPolarity(v Vector, compl bool) Vector {
	if compl {
		return Negate(v)
	}
	return v
}

// Compl reports the "defining polarity" bit of v: bit 0 of word 0.
func Compl(v Vector) bool {
	if len(v) == 0 {
		return false
	}
	return v[0]&1 != 0
}

var hashSeed = maphash.MakeSeed()

// AbsHash computes the absolute hash of v: the hash of its negation-
// canonical form, so a node and its negation always hash identically. This
// is what lets sim_map bucket a node and its complement together.
func AbsHash(v Vector) uint64 {
	canon := v
	if Compl(v) {
		canon = Negate(v)
	}
	var h maphash.Hash
	h.SetSeed(hashSeed)
	buf := make([]byte, 8)
	for _, w := range canon {
		for i := 0; i < 8; i++ {
			buf[i] = byte(w >> (8 * i))
		}
		h.Write(buf)
	}
	return h.Sum64()
}

// Simulation holds one Vector per NodeId, indexed by NodeId, plus the
// global pattern count (word-width) currently in force.
type Simulation struct {
	vectors []Vector
	words   int
	rng     *rand.Rand
}

// NewSimulation allocates a Simulation with DefaultWords patterns. node 0's
// vector is all-zero (constant false simulates to 0 on every pattern).
func NewSimulation() *Simulation {
	s := &Simulation{words: DefaultWords, rng: rand.New(rand.NewSource(1))}
	s.vectors = append(s.vectors, NewVector(s.words))
	return s
}

// Words reports the current vector length.
func (s *Simulation) Words() int { return s.words }

// Of returns the simulation vector for a node, honoring an edge's polarity.
func (s *Simulation) Of(e Edge) Vector {
	return WithPolarity(s.vectors[e.Node], e.Compl)
}

// AppendRandom appends a fresh random vector whose absolute hash taken does
// not already claim (used when registering a new input node, to guarantee
// it lands in a distinct simulation bucket), and returns it.
func (s *Simulation) AppendRandom(taken func(hash uint64) bool) Vector {
	for {
		v := RandomVector(s.words, s.rng)
		h := AbsHash(v)
		if taken == nil || !taken(h) {
			s.vectors = append(s.vectors, v)
			return v
		}
	}
}

// Append appends an explicit vector (used when a new And node's sim value
// has already been computed as fanin0 & fanin1).
func (s *Simulation) Append(v Vector) { s.vectors = append(s.vectors, v) }

// AppendPatternWord widens every vector by one machine word: words[id] holds
// node id's value on each of the WordBits new patterns, one per bit-lane.
// This is the step that flushes a full buffer of counterexample patterns
// into the live simulation.
func (s *Simulation) AppendPatternWord(words []uint64) {
	s.words++
	for id := range s.vectors {
		s.vectors[id] = append(s.vectors[id], words[id])
	}
}

// Permute applies a GC id remap to the simulation table in place: vectors
// for surviving ids are compacted to their new positions.
func (s *Simulation) Permute(remap []NodeId, newCount int) {
	next := make([]Vector, newCount)
	for old, nv := range remap {
		if nv == pruned {
			continue
		}
		next[nv] = s.vectors[old]
	}
	s.vectors = next
}

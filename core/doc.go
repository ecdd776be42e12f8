// Package core provides the And-Inverter Graph (AIG) store: the single
// structurally-hashed, level-annotated, fanout-indexed graph that every
// other package in this module builds on.
//
// A Circuit C owns a dense table of Nodes addressed by NodeId (0 is the
// constant-false node). An Edge is a non-owning (NodeId, polarity) pair;
// complementing an edge flips the polarity bit without touching the node
// table. Nodes come in three kinds:
//
//   - Const  — only node 0; has no fan-ins.
//   - Input  — a PrimaryInput or a LatchInput (a LatchInput is a PrimaryInput
//     with a latch attached via Circuit.Latches).
//   - And    — a two-input AND gate; invariants below.
//
// Invariants on an And node n with fan-ins (a, b):
//
//	a.Node < b.Node                          (canonical fan-in order)
//	a.Node != 0 && b.Node != 0                (constants are folded away)
//	a != b && a != b.Not()                    (idempotence/complementation folded away)
//	n.Level == 1 + max(a.Node.Level, b.Node.Level)
//
// The only way to create an And node is Circuit.NewAnd — every folding rule
// and every FRAIG consultation happens there (see and.go). There is no other
// path that appends to the node table.
//
// Fanout lists are derived state: every And node's creation appends one
// fanout edge to each of its fan-in nodes. Callers must never hold a view
// into a Node's Fanouts slice across a call that can create or merge
// nodes — MergeEquivalent and the garbage collector rebuild fanout lists in
// place.
//
// Concurrency: a Circuit is not safe for concurrent use. It is a single
// logically atomic mutable store (AIG node table + FRAIG state + SAT solver
// state); every exported method assumes exclusive access. This is a
// deliberate departure from the thread-safe, mutex-guarded graphs this
// package's ancestor favored — the reachability driver that owns a Circuit
// runs single-threaded by specification.
package core

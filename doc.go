// Package transactron is a compile-time transaction manager and scheduler
// synthesizer for latency-insensitive hardware methods and atomic
// transactions. It elaborates a designer's method and transaction
// declarations into a conflict graph, a greedy priority-ordered scheduler,
// and a netlist fragment the host HDL emitter lowers into gates.
//
// The elaboration context (Context) is process-wide state with a strict
// lifecycle: construct it, define methods and transactions against it,
// then call Diagnose or Lower — either one freezes the context, so no
// further definitions are accepted afterward. Concurrent elaborations use
// separate Contexts; mixing a Method or Transaction handle from one
// Context into another Context's calls fails with a ContextMismatch error
// rather than silently aliasing identities.
package transactron

// Package scheduler implements the scheduler synthesizer of spec.md §4.5:
// the greedy priority arbiter that turns a transaction's request, effective
// ready, and conflict set into a single grant signal,
//
//	grant_t = request_t ∧ effective_ready_t ∧ AND over earlier t' conflicting with t of ¬grant_t'
//
// "Earlier" is a static priority order: a topological sort of the declared
// schedule_before digraph (conflict.Graph's priority edges), ties broken by
// either definition order or a rotating round-robin pointer (spec.md §4.5,
// §9 open question 1). Priority cycles are rejected earlier, by
// conflict.Graph.AddPriority, so the topological sort here is expected to
// always succeed.
//
// Grounded on the teacher's scheduler.go: its StaticSchedule/New pair sorts
// callees by conflict count and greedily grows a parallel set from the
// front of that order, moving each scheduled item out of the remaining
// pool. The sort-then-greedy-grow shape carries over; the conflict-count
// heuristic does not, since spec.md §4.5 pins the order to declared
// priority instead of profiling-driven conflict counts.
package scheduler

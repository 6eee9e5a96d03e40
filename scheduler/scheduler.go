package scheduler

import (
	"github.com/transactron/transactron/conflict"
	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/lowering"
)

// TieBreak selects how the synthesizer orders transactions the priority
// digraph leaves incomparable (spec.md §4.5, §9 open question 1).
type TieBreak uint8

const (
	// TieBreakDefinitionOrder prefers the transaction defined earlier.
	TieBreakDefinitionOrder TieBreak = iota
	// TieBreakRoundRobin rotates which incomparable transaction goes first,
	// starting the circular scan at Config.Rotation, to avoid starving a
	// transaction that always loses a fixed tiebreak. Synthesize does not
	// advance Config.Rotation itself; the caller does.
	TieBreakRoundRobin
)

// Config controls one Synthesize call.
type Config struct {
	TieBreak TieBreak
	// Rotation is the round-robin pointer's current position (ignored
	// under TieBreakDefinitionOrder). The caller advances it cycle to
	// cycle — e.g. Rotation = cycleNumber % len(transactions) — so
	// repeated Synthesize calls rotate through the definition order.
	Rotation int
}

// Signals is one transaction's runtime inputs to the arbiter.
type Signals struct {
	Request *lowering.Node
	Ready   *lowering.Node // effective_ready, from callgraph.Builder.EffectiveReady
}

// Synthesize computes grant_t for every transaction in defs (in
// designer-declared definition order), as the greedy priority cascade of
// spec.md §4.5. conflicts supplies both the conflict set (ConflictsWith)
// and the priority digraph (PreferredOver) that determines arbitration
// order.
func Synthesize(defs []ids.TransactionID, signals map[ids.TransactionID]Signals, conflicts *conflict.Graph, cfg Config) map[ids.TransactionID]*lowering.Node {
	order := priorityOrder(defs, conflicts, cfg)

	grants := make(map[ids.TransactionID]*lowering.Node, len(order))
	for i, t := range order {
		sig := signals[t]
		request := sig.Request
		ready := sig.Ready
		if request == nil {
			request = lowering.Const(false)
		}
		if ready == nil {
			ready = lowering.Const(true)
		}
		term := lowering.And(request, ready)
		for _, earlier := range order[:i] {
			if conflicts.ConflictsWith(t, earlier) {
				term = lowering.And(term, lowering.Not(grants[earlier]))
			}
		}
		grants[t] = term
	}
	return grants
}

// Order returns defs in the static priority order Synthesize arbitrates
// by — exported for diagnostics (diag.Report's PriorityOrder field), which
// needs the same order without recomputing the grant cascade.
func Order(defs []ids.TransactionID, conflicts *conflict.Graph, cfg Config) []ids.TransactionID {
	return priorityOrder(defs, conflicts, cfg)
}

// priorityOrder returns defs sorted so that, whenever a ≺ b is declared, a
// precedes b — a topological sort of conflicts' priority digraph, via
// Kahn's algorithm, with the tiebreak cfg.TieBreak picks among the
// transactions ready to be scheduled at each step.
func priorityOrder(defs []ids.TransactionID, conflicts *conflict.Graph, cfg Config) []ids.TransactionID {
	n := len(defs)
	definitionIndex := make(map[ids.TransactionID]int, n)
	for i, t := range defs {
		definitionIndex[t] = i
	}

	indegree := make(map[ids.TransactionID]int, n)
	successors := make(map[ids.TransactionID][]ids.TransactionID, n)
	for _, t := range defs {
		indegree[t] = 0
	}
	for _, t := range defs {
		for _, succ := range conflicts.PreferredOver(t) {
			if _, tracked := definitionIndex[succ]; !tracked {
				continue // priority edge to a transaction outside this schedule's universe
			}
			successors[t] = append(successors[t], succ)
			indegree[succ]++
		}
	}

	scheduled := make(map[ids.TransactionID]bool, n)
	out := make([]ids.TransactionID, 0, n)
	pointer := cfg.Rotation

	for len(out) < n {
		available := make([]ids.TransactionID, 0)
		for _, t := range defs {
			if !scheduled[t] && indegree[t] == 0 {
				available = append(available, t)
			}
		}
		if len(available) == 0 {
			// Would only happen if conflicts contains a priority cycle that
			// slipped past AddPriority's rejection; fall back to whatever
			// definition order remains rather than loop forever.
			for _, t := range defs {
				if !scheduled[t] {
					out = append(out, t)
					scheduled[t] = true
				}
			}
			break
		}

		var chosen ids.TransactionID
		switch cfg.TieBreak {
		case TieBreakRoundRobin:
			chosen = pickRotated(available, definitionIndex, pointer, n)
			pointer = definitionIndex[chosen] + 1
		default:
			chosen = available[0]
			for _, t := range available[1:] {
				if definitionIndex[t] < definitionIndex[chosen] {
					chosen = t
				}
			}
		}

		out = append(out, chosen)
		scheduled[chosen] = true
		for _, succ := range successors[chosen] {
			indegree[succ]--
		}
	}
	return out
}

// pickRotated returns the element of available whose definition index is
// the smallest that is >= pointer (mod n), wrapping around to the smallest
// definition index overall if none qualifies — a circular scan starting at
// the round-robin pointer.
func pickRotated(available []ids.TransactionID, definitionIndex map[ids.TransactionID]int, pointer, n int) ids.TransactionID {
	pointer = ((pointer % n) + n) % n
	best := available[0]
	bestDist := n + 1
	for _, t := range available {
		idx := definitionIndex[t]
		dist := idx - pointer
		if dist < 0 {
			dist += n
		}
		if dist < bestDist {
			bestDist = dist
			best = t
		}
	}
	return best
}

package conflict

import "github.com/transactron/transactron/ids"

// Reach is a transaction's transitive call closure, as returned by
// callgraph.Builder.TransitiveClosure(ids.Transaction(t)).
type Reach map[ids.TransactionID]map[ids.MethodID]bool

// DeriveImplicit runs pass 1 of spec.md §4.3: for every exclusive method,
// every pair of distinct transactions whose transitive call closure both
// include it get a CauseShared edge, unless a witness already proves their
// guarding enables mutually exclusive (DeclareWitness). Nonexclusive
// methods never induce a conflict (spec.md §4.3: "Nonexclusive methods do
// not induce conflicts among their callers").
//
// txs and exclusive are supplied by the caller (the elaboration context)
// so this package stays decoupled from both sig and callgraph.
func DeriveImplicit(g *Graph, reach Reach, txs []ids.TransactionID, exclusive func(ids.MethodID) bool) {
	for i := 0; i < len(txs); i++ {
		for j := i + 1; j < len(txs); j++ {
			t1, t2 := txs[i], txs[j]
			via, ok := firstSharedExclusive(reach[t1], reach[t2], exclusive)
			if ok {
				g.AddImplicit(t1, t2, via)
			}
		}
	}
}

// firstSharedExclusive returns the lowest-numbered exclusive method present
// in both closures, for deterministic diagnostics (spec.md §8 property 6).
func firstSharedExclusive(a, b map[ids.MethodID]bool, exclusive func(ids.MethodID) bool) (ids.MethodID, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	candidates := make([]ids.MethodID, 0, len(small))
	for m := range small {
		if large[m] && exclusive(m) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	best := candidates[0]
	for _, m := range candidates[1:] {
		if m < best {
			best = m
		}
	}
	return best, true
}

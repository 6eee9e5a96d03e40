package conflict

import (
	"github.com/google/btree"

	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/txerr"
)

// AddPriority records a ≺ b ("when both are runnable and conflict, prefer
// a"). It fails with txerr.PriorityCycle if adding the edge would create a
// cycle in the priority digraph (spec.md §4.3).
func (g *Graph) AddPriority(a, b ids.TransactionID, where txerr.Location) *txerr.Error {
	if a == b {
		return txerr.New(txerr.PriorityCycle, where, "", "a transaction cannot have priority over itself")
	}

	g.priorityBeforeSet(a).ReplaceOrInsert(b)
	g.priorityAfterSet(b).ReplaceOrInsert(a)

	if cycle := g.detectPriorityCycle(); cycle != nil {
		// Roll back: the edge just added is rejected outright.
		g.priorityBeforeSet(a).Delete(b)
		g.priorityAfterSet(b).Delete(a)
		return txerr.New(txerr.PriorityCycle, where, "",
			"schedule_before(%s, %s) would create a priority cycle: %s", a, b, formatTxCycle(cycle))
	}
	return nil
}

func (g *Graph) priorityBeforeSet(t ids.TransactionID) *btree.BTreeG[ids.TransactionID] {
	s, ok := g.priorityBefore[t]
	if !ok {
		s = btree.NewG(32, lessTx)
		g.priorityBefore[t] = s
	}
	return s
}

func (g *Graph) priorityAfterSet(t ids.TransactionID) *btree.BTreeG[ids.TransactionID] {
	s, ok := g.priorityAfter[t]
	if !ok {
		s = btree.NewG(32, lessTx)
		g.priorityAfter[t] = s
	}
	return s
}

// Precedes reports whether a ≺ b has been declared.
func (g *Graph) Precedes(a, b ids.TransactionID) bool {
	s, ok := g.priorityBefore[a]
	return ok && s.Has(b)
}

// PreferredOver returns, in ascending ID order, every transaction t has
// declared priority over (t ≺ other).
func (g *Graph) PreferredOver(t ids.TransactionID) []ids.TransactionID {
	set, ok := g.priorityBefore[t]
	if !ok {
		return nil
	}
	out := make([]ids.TransactionID, 0, set.Len())
	set.Ascend(func(other ids.TransactionID) bool {
		out = append(out, other)
		return true
	})
	return out
}

// detectPriorityCycle runs the same three-color DFS idiom as
// callgraph.detectMethodCycle (katalvlaran-lvlath/dfs/cycle.go), over the
// priority digraph instead of the method-call graph.
func (g *Graph) detectPriorityCycle() []ids.TransactionID {
	const (
		white = iota
		gray
		black
	)
	state := make(map[ids.TransactionID]int)
	var path []ids.TransactionID
	var cycle []ids.TransactionID

	var visit func(t ids.TransactionID) bool
	visit = func(t ids.TransactionID) bool {
		state[t] = gray
		path = append(path, t)
		if set, ok := g.priorityBefore[t]; ok {
			stop := false
			set.Ascend(func(next ids.TransactionID) bool {
				switch state[next] {
				case white:
					if visit(next) {
						stop = true
						return false
					}
				case gray:
					for i, n := range path {
						if n == next {
							cycle = append([]ids.TransactionID{}, path[i:]...)
							cycle = append(cycle, next)
							break
						}
					}
					stop = true
					return false
				}
				return true
			})
			if stop {
				return true
			}
		}
		path = path[:len(path)-1]
		state[t] = black
		return false
	}

	keys := make([]ids.TransactionID, 0, len(g.priorityBefore))
	for t := range g.priorityBefore {
		keys = append(keys, t)
	}
	sortTxIDs(keys)

	for _, t := range keys {
		if state[t] == white {
			if visit(t) {
				return cycle
			}
		}
	}
	return nil
}

func sortTxIDs(list []ids.TransactionID) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j-1] > list[j]; j-- {
			list[j-1], list[j] = list[j], list[j-1]
		}
	}
}

func formatTxCycle(cycle []ids.TransactionID) string {
	s := ""
	for i, t := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += t.String()
	}
	return s
}

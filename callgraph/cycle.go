package callgraph

import (
	"github.com/transactron/transactron/ids"
)

// color is the three-state DFS marker used to detect back-edges, the same
// White/Gray/Black scheme katalvlaran-lvlath/dfs/cycle.go uses for general
// graph cycle detection — applied here to the method-calls-method graph
// specifically, since spec.md §3 requires that graph (methods calling
// methods, ignoring transactions, which are never callees) to be acyclic.
type color uint8

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // fully explored, no cycle through it
)

// detectMethodCycle runs a standard colored DFS over edges (caller method ->
// callee method) and returns the first cycle found, as a slice of MethodIDs
// from the repeated node back to itself, or nil if the graph is acyclic.
func detectMethodCycle(edges map[ids.MethodID][]ids.MethodID) []ids.MethodID {
	state := make(map[ids.MethodID]color, len(edges))
	var path []ids.MethodID
	var cycle []ids.MethodID

	var visit func(m ids.MethodID) bool
	visit = func(m ids.MethodID) bool {
		state[m] = gray
		path = append(path, m)
		for _, callee := range edges[m] {
			switch state[callee] {
			case white:
				if visit(callee) {
					return true
				}
			case gray:
				// Found a back-edge: extract the cycle from path.
				for i, n := range path {
					if n == callee {
						cycle = append([]ids.MethodID{}, path[i:]...)
						cycle = append(cycle, callee)
						return true
					}
				}
			case black:
				// Already fully explored, no cycle through it.
			}
		}
		path = path[:len(path)-1]
		state[m] = black
		return false
	}

	// Deterministic iteration order for reproducible diagnostics
	// (spec.md §8 property 6: two elaborations of the same source must
	// produce identical results).
	keys := make([]ids.MethodID, 0, len(edges))
	for m := range edges {
		keys = append(keys, m)
	}
	sortMethodIDs(keys)

	for _, m := range keys {
		if state[m] == white {
			if visit(m) {
				return cycle
			}
		}
	}
	return nil
}

func sortMethodIDs(list []ids.MethodID) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j-1] > list[j]; j-- {
			list[j-1], list[j] = list[j], list[j-1]
		}
	}
}

func formatCycle(cycle []ids.MethodID) string {
	s := ""
	for i, m := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += m.String()
	}
	return s
}

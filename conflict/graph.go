package conflict

import (
	"github.com/google/btree"

	"github.com/transactron/transactron/ids"
)

// Cause tags why a conflict edge exists.
type Cause uint8

const (
	CauseShared   Cause = iota // both transactions transitively call the same exclusive method
	CauseExplicit              // declared directly via DeclareConflict
)

func (c Cause) String() string {
	if c == CauseExplicit {
		return "explicit"
	}
	return "shared"
}

// Edge is one conflict edge. Via is only meaningful when Cause is
// CauseShared, naming the exclusive method both transactions reach.
type Edge struct {
	A, B ids.TransactionID
	Cause Cause
	Via   ids.MethodID
}

func lessTx(a, b ids.TransactionID) bool { return a < b }

// Graph is the conflict graph plus the separate priority digraph of
// spec.md §4.3/§4.5. The zero value is not usable; use NewGraph.
type Graph struct {
	adjacency map[ids.TransactionID]*btree.BTreeG[ids.TransactionID]
	edges     map[edgeKey]Edge

	priorityBefore map[ids.TransactionID]*btree.BTreeG[ids.TransactionID] // a -> {b : a ≺ b}
	priorityAfter  map[ids.TransactionID]*btree.BTreeG[ids.TransactionID] // b -> {a : a ≺ b}

	witnesses map[edgeKey]bool
}

type edgeKey struct{ lo, hi ids.TransactionID }

func key(a, b ids.TransactionID) edgeKey {
	if a <= b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

func NewGraph() *Graph {
	return &Graph{
		adjacency:      make(map[ids.TransactionID]*btree.BTreeG[ids.TransactionID]),
		edges:          make(map[edgeKey]Edge),
		priorityBefore: make(map[ids.TransactionID]*btree.BTreeG[ids.TransactionID]),
		priorityAfter:  make(map[ids.TransactionID]*btree.BTreeG[ids.TransactionID]),
		witnesses:      make(map[edgeKey]bool),
	}
}

func (g *Graph) adjacencySet(t ids.TransactionID) *btree.BTreeG[ids.TransactionID] {
	s, ok := g.adjacency[t]
	if !ok {
		s = btree.NewG(32, lessTx)
		g.adjacency[t] = s
	}
	return s
}

func (g *Graph) addEdge(e Edge) {
	k := key(e.A, e.B)
	if _, exists := g.edges[k]; exists {
		return // spec.md §8 property 6: determinism — never record the same pair twice under different causes non-deterministically
	}
	g.edges[k] = e
	g.adjacencySet(e.A).ReplaceOrInsert(e.B)
	g.adjacencySet(e.B).ReplaceOrInsert(e.A)
}

// AddImplicit records a shared-method conflict between t1 and t2, unless a
// matching witness has already proven the two call paths mutually
// exclusive (spec.md §4.3/§4.9).
func (g *Graph) AddImplicit(t1, t2 ids.TransactionID, via ids.MethodID) {
	if t1 == t2 {
		return
	}
	if g.witnesses[key(t1, t2)] {
		return
	}
	g.addEdge(Edge{A: t1, B: t2, Cause: CauseShared, Via: via})
}

// AddExplicit records a designer-declared conflict between a and b
// (DeclareConflict), independent of any shared method.
func (g *Graph) AddExplicit(a, b ids.TransactionID) {
	if a == b {
		return
	}
	g.addEdge(Edge{A: a, B: b, Cause: CauseExplicit})
}

// DeclareWitness records that the enables guarding t1 and t2's calls to
// their shared method have been proven mutually exclusive by the designer
// (e.g. enable_a = ¬enable_b via a declared mux), so a future AddImplicit
// for this pair should be suppressed. Witnesses must be declared before
// the implicit-conflict pass runs.
func (g *Graph) DeclareWitness(t1, t2 ids.TransactionID) {
	g.witnesses[key(t1, t2)] = true
}

// Conflicts returns every transaction directly conflicting with t, in
// ascending ID order (deterministic — spec.md §8 property 6).
func (g *Graph) Conflicts(t ids.TransactionID) []ids.TransactionID {
	set, ok := g.adjacency[t]
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

// ConflictsWith reports whether a and b conflict (directly).
func (g *Graph) ConflictsWith(a, b ids.TransactionID) bool {
	_, ok := g.edges[key(a, b)]
	return ok
}

// Edge returns the recorded edge between a and b, if any.
func (g *Graph) Edge(a, b ids.TransactionID) (Edge, bool) {
	e, ok := g.edges[key(a, b)]
	return e, ok
}

// Edges returns every conflict edge, in a deterministic order (sorted by
// the edge key).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	keys := make([]edgeKey, 0, len(g.edges))
	for k := range g.edges {
		keys = append(keys, k)
	}
	sortEdgeKeys(keys)
	for _, k := range keys {
		out = append(out, g.edges[k])
	}
	return out
}

func sortEdgeKeys(keys []edgeKey) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

func less(a, b edgeKey) bool {
	if a.lo != b.lo {
		return a.lo < b.lo
	}
	return a.hi < b.hi
}

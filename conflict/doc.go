// Package conflict implements the conflict graph of spec.md §4.3: an
// undirected graph on transactions with edges labeled by cause (a shared
// exclusive method, or an explicit designer declaration), plus a separate
// directed priority graph with cycle rejection.
//
// The edge/cause vocabulary (Conflict, the pairwise record, a cause tag)
// is grounded on the teacher's arbitrator package (Conflict, Conflicts —
// there tagging a conflict with the storage key that caused it; here
// tagging it with the shared method or the explicit declaration that
// caused it). Deterministic adjacency iteration is backed by
// github.com/google/btree, the same library the teacher reaches for
// directly in arbitrator/arbitrator_test.go.
package conflict

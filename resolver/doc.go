// Package resolver implements the method resolver of spec.md §4.4: for each
// method it classifies callers as exclusive (one caller live per cycle, so
// the result is a caller-select mux indexed by grant signals) or
// nonexclusive (many callers live at once, so the result is a combining
// reducer over every concurrently-enabled call site's argument).
//
// The caller-select mux is built the same way the conflict graph's edges
// are built — bottom-up, folding left over a deterministically ordered call
// site list — and reuses lowering.Mux directly rather than inventing a
// multi-way select node, since spec.md §4.3's conflict analysis already
// guarantees at most one exclusive call site is enabled at a time.
package resolver

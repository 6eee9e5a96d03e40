// Package lowering implements the lowering emitter of spec.md §4.6 and the
// abstract netlist fragment of spec.md §6: a small algebraic IR with nodes
// {Const, Var, And, Or, Not, Mux, Eq}, used both as the representation for
// call-site enable/ready predicates threaded through callgraph and conflict,
// and as the final output the core hands to a host HDL emitter.
//
// There is no teacher analogue for this package — the teacher emits
// Go-level schedules over concrete transaction batches, not gate-level
// netlists. Its shape (a flat struct with an explicit Kind enum rather than
// a deep interface hierarchy per node type) is grounded on the general
// expression-tree idiom used by other_examples' opentofu exec-graph
// compiler and picatz-taint call-graph packages: a single node type that
// can be walked, printed and compared for equality without reflection.
package lowering

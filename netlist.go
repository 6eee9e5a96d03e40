package transactron

import "github.com/transactron/transactron/lowering"

// Netlist is the downward interface of spec.md §6: a set of combinational
// equations the host HDL emitter lowers into gates. Every map is keyed by
// the designer-given name, not the internal ID, since the host emitter has
// no use for transactron's own interning scheme.
type Netlist struct {
	// Grant is the arbitrated grant signal for each transaction.
	Grant map[string]*lowering.Node
	// MethodInput is the resolved input each method actually sees this
	// cycle: a caller-select mux for exclusive methods, a reduced value for
	// nonexclusive ones.
	MethodInput map[string]*lowering.Node
	// MethodCalled is the OR of every gated call-site enable targeting a
	// method — "was I called this cycle?".
	MethodCalled map[string]*lowering.Node
	// MethodReady is each method's effective_ready.
	MethodReady map[string]*lowering.Node
}

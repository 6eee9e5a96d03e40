package callgraph

import (
	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/lowering"
)

// CallSite is one recorded invocation: caller calls callee under enable,
// passing arg. enable is meaningful on its own (it already folds in every
// ambient guard in force at the point of the call); arg is only meaningful
// when enable holds (spec.md §3).
type CallSite struct {
	Caller ids.Caller
	Callee ids.MethodID
	Enable *lowering.Node
	Arg    *lowering.Node
}

// Body is the open elaboration context for one caller's body, returned by
// Builder.OpenBody. It is not safe for concurrent use — elaboration is
// single-threaded and cooperative (spec.md §5) — and must be closed with
// Builder.Close before its effective-ready value is available.
type Body struct {
	caller ids.Caller
	guards []*lowering.Node
	ready  *lowering.Node // local ready; methods only, defaults to Const(true)
	calls  []CallSite
	closed bool
}

// Caller returns the owner this body was opened for.
func (b *Body) Caller() ids.Caller { return b.caller }

// PushGuard enters a nested conditional region: every call recorded before
// the matching PopGuard has cond ANDed into its enable, in addition to any
// enclosing guards (spec.md §4.2: "nested conditional regions combine by
// AND").
func (b *Body) PushGuard(cond *lowering.Node) {
	b.guards = append(b.guards, cond)
}

// PopGuard leaves the innermost still-open conditional region.
func (b *Body) PopGuard() {
	if len(b.guards) > 0 {
		b.guards = b.guards[:len(b.guards)-1]
	}
}

// guardConjunction is the AND of every guard currently in force.
func (b *Body) guardConjunction() *lowering.Node {
	return lowering.And(b.guards...)
}

// SetReady records a method body's local ready expression — the predicate
// that, independent of any callee, must hold for the method to be usable
// this cycle. Only meaningful for method bodies; calling it on a
// transaction body is harmless but pointless, since transactions have no
// local readiness of their own (spec.md §3: they are request-driven roots).
func (b *Body) SetReady(ready *lowering.Node) {
	b.ready = ready
}

func (b *Body) localReady() *lowering.Node {
	if b.ready == nil {
		return lowering.Const(true)
	}
	return b.ready
}

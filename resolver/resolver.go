package resolver

import (
	"sort"

	"github.com/transactron/transactron/callgraph"
	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/lowering"
	"github.com/transactron/transactron/sig"
	"github.com/transactron/transactron/txerr"
)

// Reducer combines the arguments of every concurrently-enabled call site
// into a single nonexclusive-method input, in call-site order. Resolve
// invokes it once per nonexclusive method with one enable-gated argument per
// call site, however many call sites there are; callers supply it via
// DeclareReducer for signatures the default OR reduction cannot merge.
type Reducer func(args []*lowering.Node) *lowering.Node

// Plan is what the resolver decides for one method: how its callers' call
// sites compose into a single input value.
type Plan struct {
	Method    ids.MethodID
	Exclusive bool
	CallSites []callgraph.CallSite

	// Select is populated only when Exclusive is true: given grant[i], the
	// grant signal gating CallSites[i]'s caller, it returns the muxed
	// argument. grants must be the same length as CallSites.
	Select func(grants []*lowering.Node) *lowering.Node

	// Combined is populated only when Exclusive is false: the single
	// reduced argument value, valid once every call site's gated
	// contribution has been folded in.
	Combined *lowering.Node
}

// Resolve classifies method's callers and builds its Plan. sites must be
// every call site recorded against method. Resolve orders them by caller
// (transactions before methods, then ascending ID), keeping the recorded
// order among call sites of the same caller, so the result is reproducible
// (spec.md §8 property 6). declared is the designer's declare_reducer
// function for this method, or nil to use the default.
func Resolve(registry *sig.Registry, method ids.MethodID, sites []callgraph.CallSite, declared Reducer, where txerr.Location) (*Plan, *txerr.Error) {
	signature, ok := registry.Lookup(sig.ID(method))
	if !ok {
		return nil, txerr.New(txerr.MissingCallee, where, "", "resolve of unregistered method #%d", method)
	}

	ordered := make([]callgraph.CallSite, len(sites))
	copy(ordered, sites)
	sort.SliceStable(ordered, func(i, j int) bool { return callerLess(ordered[i].Caller, ordered[j].Caller) })

	if !signature.Nonexclusive {
		return &Plan{
			Method:    method,
			Exclusive: true,
			CallSites: ordered,
			Select: func(grants []*lowering.Node) *lowering.Node {
				return selectMux(ordered, grants)
			},
		}, nil
	}

	reducer := declared
	if reducer == nil {
		if signature.Inputs.Bits() > 1 {
			return nil, txerr.New(txerr.UnmergedNonexclusive, where, registry.Name(sig.ID(method)),
				"method %q is nonexclusive with a %d-bit argument and no declared reducer: the default OR reduction only applies to single-bit (or explicitly tagged) arguments",
				registry.Name(sig.ID(method)), signature.Inputs.Bits())
		}
		reducer = orReduce
	}

	args := make([]*lowering.Node, len(ordered))
	for i, cs := range ordered {
		args[i] = lowering.And(cs.Enable, cs.Arg)
	}
	combined := reducer(args)

	return &Plan{
		Method:    method,
		Exclusive: false,
		CallSites: ordered,
		Combined:  combined,
	}, nil
}

// orReduce is the default nonexclusive combiner: a boolean OR across every
// gated contribution, valid only for single-bit arguments (spec.md §4.4).
func orReduce(args []*lowering.Node) *lowering.Node {
	return lowering.Or(args...)
}

// selectMux builds the caller-select mux for an exclusive method: a
// left-folded cascade of Mux nodes, one per call site after the first,
// keyed by that site's grant signal. Because spec.md §4.3's conflict
// analysis guarantees at most one of grants is true at a time, the fold
// order does not affect the result's semantics, only how it is expressed as
// a gate tree — folding from the first call site outward keeps the first
// call site's argument as the innermost default and puts the last call
// site's mux outermost, mirroring a priority-encoder written by hand.
func selectMux(sites []callgraph.CallSite, grants []*lowering.Node) *lowering.Node {
	if len(sites) == 0 {
		return lowering.Const(false)
	}
	result := sites[0].Arg
	for i := 1; i < len(sites); i++ {
		result = lowering.Mux(grants[i], sites[i].Arg, result)
	}
	return result
}

func callerLess(a, b ids.Caller) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Kind == ids.CallerTransaction {
		return a.Tx < b.Tx
	}
	return a.Method < b.Method
}

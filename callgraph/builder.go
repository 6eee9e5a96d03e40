package callgraph

import (
	"strconv"

	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/lowering"
	"github.com/transactron/transactron/sig"
	"github.com/transactron/transactron/txerr"
)

// Builder is the call-graph builder of spec.md §4.2. It is owned by exactly
// one elaboration context; OpenBody/RecordCall/Close are only valid between
// that context's construction and the point lowering begins.
type Builder struct {
	registry *sig.Registry

	open map[ids.Caller]*Body

	localReady     map[ids.MethodID]*lowering.Node
	calledUnder    map[ids.Caller]map[ids.MethodID]*lowering.Node
	methodEdges    map[ids.MethodID][]ids.MethodID // method -> methods it calls
	closedOrder    []ids.Caller
	effectiveReady map[ids.Caller]*lowering.Node
	allCallSites   []CallSite
}

// NewBuilder returns a Builder that validates callees against registry.
func NewBuilder(registry *sig.Registry) *Builder {
	return &Builder{
		registry:       registry,
		open:           make(map[ids.Caller]*Body),
		localReady:     make(map[ids.MethodID]*lowering.Node),
		calledUnder:    make(map[ids.Caller]map[ids.MethodID]*lowering.Node),
		methodEdges:    make(map[ids.MethodID][]ids.MethodID),
		effectiveReady: make(map[ids.Caller]*lowering.Node),
	}
}

// OpenBody begins elaborating owner's body. Opening an owner whose body is
// already open does not fail: the new Body replaces the earlier one, and
// any later RecordCall on the earlier Body fails with OrphanCall.
func (b *Builder) OpenBody(owner ids.Caller) *Body {
	body := &Body{caller: owner}
	b.open[owner] = body
	return body
}

// RecordCall is record_call(ctx, callee, enable, args) from spec.md §4.2. It
// fails with OrphanCall if body is not currently open on this Builder, and
// with MissingCallee if callee was never interned in the signature
// registry. The returned Node is an opaque result wire standing for
// callee's output, valid to use as an argument expression elsewhere in the
// same body.
func (b *Builder) RecordCall(body *Body, callee ids.MethodID, enable *lowering.Node, arg *lowering.Node, where txerr.Location) (*lowering.Node, *txerr.Error) {
	if body == nil || body.closed || b.open[body.caller] != body {
		return nil, txerr.New(txerr.OrphanCall, where, body.callerString(),
			"call recorded outside an open body")
	}
	if _, ok := b.registry.Lookup(sig.ID(callee)); !ok {
		return nil, txerr.New(txerr.MissingCallee, where, body.callerString(),
			"call to unregistered method #%d", callee)
	}

	effectiveEnable := lowering.And(body.guardConjunction(), enable)
	body.calls = append(body.calls, CallSite{
		Caller: body.caller,
		Callee: callee,
		Enable: effectiveEnable,
		Arg:    arg,
	})

	if body.caller.IsMethod() {
		b.methodEdges[body.caller.Method] = append(b.methodEdges[body.caller.Method], callee)
	}

	return lowering.Var(resultWireName(body.caller, callee, len(body.calls))), nil
}

// Close finalizes body: it computes called_under (the OR of enables across
// every call site to each distinct callee) and records the body's local
// ready for later effective-ready composition in Finalize. Close must be
// called exactly once per Body, after which RecordCall on it fails with
// OrphanCall.
func (b *Builder) Close(body *Body) {
	if body.closed {
		return
	}
	body.closed = true
	delete(b.open, body.caller)

	under := make(map[ids.MethodID]*lowering.Node)
	for _, cs := range body.calls {
		if existing, ok := under[cs.Callee]; ok {
			under[cs.Callee] = lowering.Or(existing, cs.Enable)
		} else {
			under[cs.Callee] = cs.Enable
		}
	}
	b.calledUnder[body.caller] = under
	if body.caller.IsMethod() {
		b.localReady[body.caller.Method] = body.localReady()
	}
	b.closedOrder = append(b.closedOrder, body.caller)
	b.allCallSites = append(b.allCallSites, body.calls...)
}

// CallSites returns every call site recorded across every closed body, in
// close order.
func (b *Builder) CallSites() []CallSite { return b.allCallSites }

// CallSitesFor returns every call site whose Callee is callee, in the same
// relative order CallSites() would yield them — the grouping the Method
// Resolver needs to build one method's caller-select mux or reducer.
func (b *Builder) CallSitesFor(callee ids.MethodID) []CallSite {
	var out []CallSite
	for _, cs := range b.allCallSites {
		if cs.Callee == callee {
			out = append(out, cs)
		}
	}
	return out
}

// MethodEdges returns the method-calls-method graph accumulated so far.
// Callers must not mutate the returned map.
func (b *Builder) MethodEdges() map[ids.MethodID][]ids.MethodID { return b.methodEdges }

// CalledUnder returns, for a closed caller, the OR-of-enables for each
// distinct callee it calls.
func (b *Builder) CalledUnder(caller ids.Caller) map[ids.MethodID]*lowering.Node {
	return b.calledUnder[caller]
}

// Finalize checks the method-call-graph is acyclic (spec.md §3) and then
// computes, for every closed caller, the effective-ready composition of
// spec.md §4.2:
//
//	effective_ready(caller) = local_ready ∧ FOR_EACH callee:
//	    (¬called_under[callee] ∨ effective_ready[callee])
//
// computed bottom-up over the (now known acyclic) call graph so a callee's
// effective_ready is always available before its callers need it.
func (b *Builder) Finalize(where txerr.Location) *txerr.Error {
	if cycle := detectMethodCycle(b.methodEdges); cycle != nil {
		return txerr.New(txerr.CallGraphCycle, where, "",
			"method call graph contains a cycle: %s", formatCycle(cycle))
	}

	memo := make(map[ids.Caller]*lowering.Node, len(b.closedOrder))
	var resolve func(caller ids.Caller) *lowering.Node
	resolve = func(caller ids.Caller) *lowering.Node {
		if r, ok := memo[caller]; ok {
			return r
		}
		local := lowering.Const(true)
		if caller.IsMethod() {
			if r, ok := b.localReady[caller.Method]; ok {
				local = r
			}
		}
		terms := []*lowering.Node{local}
		under := b.calledUnder[caller]
		// Deterministic order over callees for reproducible output.
		callees := make([]ids.MethodID, 0, len(under))
		for callee := range under {
			callees = append(callees, callee)
		}
		sortMethodIDs(callees)
		for _, callee := range callees {
			enable := under[callee]
			calleeReady := resolve(ids.Method(callee))
			terms = append(terms, lowering.Or(lowering.Not(enable), calleeReady))
		}
		r := lowering.And(terms...)
		memo[caller] = r
		return r
	}

	for _, caller := range b.closedOrder {
		b.effectiveReady[caller] = resolve(caller)
	}
	return nil
}

// EffectiveReady returns caller's effective ready, valid only after
// Finalize has succeeded.
func (b *Builder) EffectiveReady(caller ids.Caller) *lowering.Node {
	if r, ok := b.effectiveReady[caller]; ok {
		return r
	}
	return lowering.Const(false)
}

// TransitiveClosure returns every method reachable from root by following
// zero or more call edges, root included if root is itself a method. This
// backs the implicit-conflict pass of spec.md §4.3, which needs only
// structural membership in a transaction's call closure — not the enable
// conditions computed by Finalize, which is why this can run before or
// after Finalize and ignores enables entirely (spec.md §4.3's satisfiability
// is conservative: any structural overlap conflicts unless witnessed).
func (b *Builder) TransitiveClosure(root ids.Caller) map[ids.MethodID]bool {
	seen := make(map[ids.MethodID]bool)
	var visit func(ids.MethodID)
	visit = func(m ids.MethodID) {
		if seen[m] {
			return
		}
		seen[m] = true
		for _, callee := range b.methodEdges[m] {
			visit(callee)
		}
	}

	under := b.calledUnder[root]
	callees := make([]ids.MethodID, 0, len(under))
	for callee := range under {
		callees = append(callees, callee)
	}
	sortMethodIDs(callees)
	for _, callee := range callees {
		visit(callee)
	}
	if root.IsMethod() {
		seen[root.Method] = true
	}
	return seen
}

// Fires computes, for every caller known to this Builder, the condition
// under which it actually executes this cycle: a transaction's is exactly
// its grant signal; a method's is the OR, over every call site that
// targets it, of (that call site's caller firing AND that call site's
// enable) — the top-down dual of the bottom-up effective-ready composition
// Finalize performs. This is what spec.md §4.6 calls "grant_{caller} ∧
// enable across all call sites", generalized from a direct
// transaction-caller to an arbitrarily nested one by propagating grants
// down through the (acyclic) call graph instead of assuming every call
// site's caller is a transaction.
func (b *Builder) Fires(grants map[ids.TransactionID]*lowering.Node) map[ids.Caller]*lowering.Node {
	reverse := make(map[ids.MethodID][]contribution)
	for _, caller := range b.closedOrder {
		for callee, enable := range b.calledUnder[caller] {
			reverse[callee] = append(reverse[callee], contribution{caller, enable})
		}
	}
	for callee := range reverse {
		list := reverse[callee]
		sortContributions(list)
		reverse[callee] = list
	}

	memo := make(map[ids.Caller]*lowering.Node)
	var resolve func(c ids.Caller) *lowering.Node
	resolve = func(c ids.Caller) *lowering.Node {
		if r, ok := memo[c]; ok {
			return r
		}
		var result *lowering.Node
		if c.IsTransaction() {
			if g, ok := grants[c.Tx]; ok {
				result = g
			} else {
				result = lowering.Const(false)
			}
		} else {
			contributions := reverse[c.Method]
			terms := make([]*lowering.Node, 0, len(contributions))
			for _, ct := range contributions {
				terms = append(terms, lowering.And(resolve(ct.caller), ct.enable))
			}
			result = lowering.Or(terms...)
		}
		memo[c] = result
		return result
	}

	for _, caller := range b.closedOrder {
		resolve(caller)
	}
	for callee := range reverse {
		resolve(ids.Method(callee))
	}
	return memo
}

type contribution struct {
	caller ids.Caller
	enable *lowering.Node
}

func sortContributions(list []contribution) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && callerLess(list[j].caller, list[j-1].caller); j-- {
			list[j-1], list[j] = list[j], list[j-1]
		}
	}
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

func resultWireName(caller ids.Caller, callee ids.MethodID, callIndex int) string {
	return caller.String() + "/call" + strconv.Itoa(callIndex) + "->method#" + strconv.Itoa(int(callee)) + ".result"
}

func (b *Body) callerString() string {
	if b == nil {
		return ""
	}
	return b.caller.String()
}

package transactron

import (
	"github.com/transactron/transactron/callgraph"
	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/lowering"
	"github.com/transactron/transactron/sig"
	"github.com/transactron/transactron/txerr"
)

// Method is an opaque handle to a method defined against a particular
// Context. It is only valid for calls made against that same Context —
// using it with a different Context fails with ContextMismatch, the check
// spec.md §5 requires ("the core must detect and reject cross-context
// mixing").
type Method struct {
	ctx *Context
	id  ids.MethodID
}

// Transaction is the transaction analogue of Method.
type Transaction struct {
	ctx *Context
	id  ids.TransactionID
}

func methodIDFromSig(id sig.ID) ids.MethodID { return ids.MethodID(id) }

func (m Method) Name() string {
	if m.ctx == nil {
		return ""
	}
	return m.ctx.registry.Name(sig.ID(m.id))
}

func (t Transaction) Name() string {
	if t.ctx == nil || int(t.id) >= len(t.ctx.txNames) {
		return ""
	}
	return t.ctx.txNames[t.id]
}

// Body is the open elaboration scope passed to a method or transaction's
// body_fn. Call, PushGuard, PopGuard and SetReady are the only operations
// valid inside one — the same restricted surface callgraph.Body exposes,
// wrapped here so the designer-facing API works in terms of Method/
// Transaction handles instead of bare ids.MethodID/ids.Caller.
type Body struct {
	ctx *Context
	raw *callgraph.Body
}

// Call records a call site: b's owner calls callee, gated by enable, with
// argument arg. It returns a wire standing for callee's result.
func (b *Body) Call(callee Method, enable, arg *lowering.Node) (*lowering.Node, *txerr.Error) {
	if callee.ctx != b.ctx {
		return nil, txerr.New(txerr.ContextMismatch, txerr.Here(1), callee.Name(),
			"call site's callee belongs to a different elaboration context")
	}
	return b.ctx.builder.RecordCall(b.raw, callee.id, enable, arg, txerr.Here(1))
}

// PushGuard enters a nested conditional region; see callgraph.Body.PushGuard.
func (b *Body) PushGuard(cond *lowering.Node) { b.raw.PushGuard(cond) }

// PopGuard leaves the innermost open conditional region.
func (b *Body) PopGuard() { b.raw.PopGuard() }

// SetReady records a method body's local ready expression. Meaningless
// (but harmless) on a transaction body.
func (b *Body) SetReady(ready *lowering.Node) { b.raw.SetReady(ready) }

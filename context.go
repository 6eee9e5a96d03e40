package transactron

import (
	"github.com/transactron/transactron/callgraph"
	"github.com/transactron/transactron/conflict"
	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/lowering"
	"github.com/transactron/transactron/resolver"
	"github.com/transactron/transactron/scheduler"
	"github.com/transactron/transactron/sig"
	"github.com/transactron/transactron/txerr"
	"github.com/transactron/transactron/txlog"
)

// Context is the scoped elaboration context of spec.md §5: initialized when
// the designer's top-level wrapper is constructed, populated by
// DefineMethod/DefineTransaction/DeclareConflict/ScheduleBefore calls,
// frozen at the first Diagnose or Lower call, and then read-only. It is not
// ambient/global state (spec §9) and is not internally synchronized —
// elaboration is single-threaded and cooperative by contract (spec §5), so
// confinement to one goroutine is a documented precondition, not a
// defensively locked invariant.
type Context struct {
	registry  *sig.Registry
	builder   *callgraph.Builder
	conflicts *conflict.Graph
	cfg       scheduler.Config
	log       *txlog.Logger

	txNames   []string
	txOrder   []ids.TransactionID
	txRequest map[ids.TransactionID]*lowering.Node

	reducers map[ids.MethodID]resolver.Reducer

	errs   txerr.List
	frozen bool
}

// NewContext returns a fresh, empty elaboration context.
func NewContext(cfg scheduler.Config) *Context {
	registry := sig.NewRegistry()
	return &Context{
		registry:  registry,
		builder:   callgraph.NewBuilder(registry),
		conflicts: conflict.NewGraph(),
		cfg:       cfg,
		log:       txlog.Default().Module("transactron"),
		txRequest: make(map[ids.TransactionID]*lowering.Node),
		reducers:  make(map[ids.MethodID]resolver.Reducer),
	}
}

// DefineMethod registers a method: its signature, whether it is
// nonexclusive, an optional local ready expression, and an optional body_fn
// that records the method's own calls into its callees.
func (c *Context) DefineMethod(name string, in, out sig.Layout, nonexclusive bool, ready *lowering.Node, body func(*Body)) (Method, *txerr.Error) {
	if c.frozen {
		return Method{}, c.frozenErr(name)
	}
	id, err := c.registry.Intern(name, in, out, nonexclusive, txerr.Here(1))
	if err != nil {
		c.errs.Add(err)
		return Method{}, err
	}
	mID := ids.MethodID(id)
	raw := c.builder.OpenBody(ids.Method(mID))
	b := &Body{ctx: c, raw: raw}
	if body != nil {
		body(b)
	}
	if ready != nil {
		b.SetReady(ready)
	}
	c.builder.Close(raw)
	return Method{ctx: c, id: mID}, nil
}

// DefineTransaction registers a transaction: its request expression and an
// optional body_fn that records its calls.
func (c *Context) DefineTransaction(name string, request *lowering.Node, body func(*Body)) (Transaction, *txerr.Error) {
	if c.frozen {
		return Transaction{}, c.frozenErr(name)
	}
	for _, existing := range c.txNames {
		if existing == name {
			err := txerr.New(txerr.LayoutMismatch, txerr.Here(1), name,
				"transaction %q already defined", name)
			c.errs.Add(err)
			return Transaction{}, err
		}
	}
	txID := ids.TransactionID(len(c.txOrder))
	c.txNames = append(c.txNames, name)
	c.txOrder = append(c.txOrder, txID)
	if request == nil {
		request = lowering.Const(false)
	}
	c.txRequest[txID] = request

	raw := c.builder.OpenBody(ids.Transaction(txID))
	b := &Body{ctx: c, raw: raw}
	if body != nil {
		body(b)
	}
	c.builder.Close(raw)
	return Transaction{ctx: c, id: txID}, nil
}

// DeclareConflict records an explicit conflict between a and b, independent
// of any shared method.
func (c *Context) DeclareConflict(a, b Transaction) *txerr.Error {
	if err := c.checkSameContext(a.ctx, b.ctx); err != nil {
		return err
	}
	if c.frozen {
		return c.frozenErr("declare_conflict")
	}
	c.conflicts.AddExplicit(a.id, b.id)
	return nil
}

// ScheduleBefore declares a ≺ b ("prefer a when both are runnable and
// conflict"). It fails with PriorityCycle if the edge would create a cycle
// in the priority digraph.
func (c *Context) ScheduleBefore(a, b Transaction) *txerr.Error {
	if err := c.checkSameContext(a.ctx, b.ctx); err != nil {
		return err
	}
	if c.frozen {
		return c.frozenErr("schedule_before")
	}
	if err := c.conflicts.AddPriority(a.id, b.id, txerr.Here(1)); err != nil {
		c.errs.Add(err)
		return err
	}
	return nil
}

// DeclareWitness records that the enables guarding t1 and t2's calls into a
// shared exclusive method have already been proven mutually exclusive,
// suppressing the implicit conflict the two would otherwise get (spec.md
// §4.9). Must be declared before Diagnose/Lower freezes the context.
func (c *Context) DeclareWitness(t1, t2 Transaction) *txerr.Error {
	if err := c.checkSameContext(t1.ctx, t2.ctx); err != nil {
		return err
	}
	if c.frozen {
		return c.frozenErr("declare_witness")
	}
	c.conflicts.DeclareWitness(t1.id, t2.id)
	return nil
}

// DeclareReducer registers a custom combiner for a nonexclusive method's
// concurrently-enabled call-site arguments, overriding the default OR
// reduction.
func (c *Context) DeclareReducer(m Method, fn resolver.Reducer) *txerr.Error {
	if m.ctx != c {
		return txerr.New(txerr.ContextMismatch, txerr.Here(1), m.Name(),
			"declare_reducer target belongs to a different elaboration context")
	}
	if c.frozen {
		return c.frozenErr("declare_reducer")
	}
	c.reducers[m.id] = fn
	return nil
}

func (c *Context) checkSameContext(a, b *Context) *txerr.Error {
	if a != c || b != c {
		return txerr.New(txerr.ContextMismatch, txerr.Here(2), "",
			"operation mixes transactions from different elaboration contexts")
	}
	return nil
}

func (c *Context) frozenErr(subject string) *txerr.Error {
	err := txerr.New(txerr.FrozenContext, txerr.Here(2), subject,
		"elaboration context is frozen: no further definitions accepted after Diagnose/Lower")
	c.errs.Add(err)
	return err
}

// freeze finalizes the call graph and derives implicit conflicts. It is
// idempotent: the first Diagnose or Lower call performs it, subsequent
// calls are no-ops.
func (c *Context) freeze() {
	if c.frozen {
		return
	}
	c.frozen = true

	if err := c.builder.Finalize(txerr.Here(2)); err != nil {
		c.errs.Add(err)
		return
	}

	reach := make(conflict.Reach, len(c.txOrder))
	for _, t := range c.txOrder {
		reach[t] = c.builder.TransitiveClosure(ids.Transaction(t))
	}
	exclusive := func(m ids.MethodID) bool {
		s, ok := c.registry.Lookup(sig.ID(m))
		return ok && !s.Nonexclusive
	}
	conflict.DeriveImplicit(c.conflicts, reach, c.txOrder, exclusive)
}

func (c *Context) txName(t ids.TransactionID) string {
	if int(t) >= len(c.txNames) {
		return ""
	}
	return c.txNames[t]
}

func (c *Context) methodName(m ids.MethodID) string {
	return c.registry.Name(sig.ID(m))
}

package transactron

import (
	"github.com/transactron/transactron/ids"
	"github.com/transactron/transactron/lowering"
	"github.com/transactron/transactron/resolver"
	"github.com/transactron/transactron/scheduler"
	"github.com/transactron/transactron/sig"
	"github.com/transactron/transactron/txerr"
)

// Lower freezes the context, runs the scheduler synthesizer and the method
// resolver, and assembles the resulting netlist fragment (spec.md §4.5,
// §4.6). It fails, without emitting a partial netlist (spec.md §7), if any
// structural error was collected during elaboration or if any nonexclusive
// method has no usable reducer.
func (c *Context) Lower() (*Netlist, error) {
	c.freeze()
	if err := c.errs.AsError(); err != nil {
		return nil, err
	}

	signals := make(map[ids.TransactionID]scheduler.Signals, len(c.txOrder))
	for _, t := range c.txOrder {
		signals[t] = scheduler.Signals{
			Request: c.txRequest[t],
			Ready:   c.builder.EffectiveReady(ids.Transaction(t)),
		}
	}
	grants := scheduler.Synthesize(c.txOrder, signals, c.conflicts, c.cfg)
	fires := c.builder.Fires(grants)

	nl := &Netlist{
		Grant:        make(map[string]*lowering.Node, len(grants)),
		MethodInput:  make(map[string]*lowering.Node, c.registry.Len()),
		MethodCalled: make(map[string]*lowering.Node, c.registry.Len()),
		MethodReady:  make(map[string]*lowering.Node, c.registry.Len()),
	}
	for _, t := range c.txOrder {
		nl.Grant[c.txName(t)] = grants[t]
	}

	var lowerErrs txerr.List
	for i := 0; i < c.registry.Len(); i++ {
		m := methodIDFromSig(sig.ID(i))
		name := c.methodName(m)
		sites := c.builder.CallSitesFor(m)

		plan, perr := resolver.Resolve(c.registry, m, sites, c.reducers[m], txerr.Here(1))
		if perr != nil {
			lowerErrs.Add(perr)
			continue
		}

		activation := make([]*lowering.Node, len(plan.CallSites))
		called := []*lowering.Node{lowering.Const(false)}
		for idx, cs := range plan.CallSites {
			activation[idx] = lowering.And(callerFires(fires, cs.Caller), cs.Enable)
			called = append(called, activation[idx])
		}
		nl.MethodCalled[name] = lowering.Or(called...)
		nl.MethodReady[name] = c.builder.EffectiveReady(ids.Method(m))

		if plan.Exclusive {
			nl.MethodInput[name] = plan.Select(activation)
		} else {
			nl.MethodInput[name] = plan.Combined
		}
	}

	if err := lowerErrs.AsError(); err != nil {
		return nil, err
	}
	return nl, nil
}

func callerFires(fires map[ids.Caller]*lowering.Node, caller ids.Caller) *lowering.Node {
	if n, ok := fires[caller]; ok {
		return n
	}
	return lowering.Const(false)
}

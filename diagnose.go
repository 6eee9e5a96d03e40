package transactron

import (
	"github.com/transactron/transactron/diag"
	"github.com/transactron/transactron/scheduler"
	"github.com/transactron/transactron/sig"
)

// Diagnose freezes the context (if not already) and returns the structural
// report of spec.md §6: every transaction and method, the conflict edges
// with cause, the resolved priority order, and recoverable ambiguity
// warnings. It does not fail on recoverable warnings — only a fatal
// structural error surfaces as an error here: one already collected during
// DefineMethod/DefineTransaction/ScheduleBefore, or a method call-graph
// cycle found when the context freezes.
func (c *Context) Diagnose() (*diag.Report, error) {
	c.freeze()
	if err := c.errs.AsError(); err != nil {
		return nil, err
	}

	methodNames := make([]string, c.registry.Len())
	for i := range methodNames {
		methodNames[i] = c.registry.Name(sig.ID(i))
	}

	order := scheduler.Order(c.txOrder, c.conflicts, c.cfg)
	warnings := c.collectWarnings()

	return diag.Build(c.txNames, methodNames, c.conflicts, c.txName, c.methodName, order, warnings), nil
}

func (c *Context) collectWarnings() []diag.Warning {
	var warnings []diag.Warning

	for _, edge := range c.conflicts.Edges() {
		if !c.conflicts.Precedes(edge.A, edge.B) && !c.conflicts.Precedes(edge.B, edge.A) {
			w := diag.Warning{
				Kind:    diag.WarnNoDeclaredPriority,
				Subject: c.txName(edge.A) + " / " + c.txName(edge.B),
				Detail:  "conflicting transactions have no declared priority; scheduler falls back to its deterministic tiebreak",
			}
			c.logWarning(w)
			warnings = append(warnings, w)
		}
	}

	for i := 0; i < c.registry.Len(); i++ {
		id := sig.ID(i)
		signature, ok := c.registry.Lookup(id)
		if !ok || !signature.Nonexclusive {
			continue
		}
		m := methodIDFromSig(id)
		if _, declared := c.reducers[m]; declared {
			continue
		}
		if signature.Inputs.Bits() > 1 {
			continue // will surface as UnmergedNonexclusive at Lower time, not a mere warning
		}
		w := diag.Warning{
			Kind:    diag.WarnDefaultReducer,
			Subject: c.registry.Name(id),
			Detail:  "nonexclusive method has no declared reducer; using the default boolean-OR reduction",
		}
		c.logWarning(w)
		warnings = append(warnings, w)
	}

	return warnings
}

// logWarning emits w at Warn level before it is appended to the diag.Report
// (SPEC_FULL.md §4.0: recoverable warnings "are logged at Warn and also
// appended to the diag.Report").
func (c *Context) logWarning(w diag.Warning) {
	c.log.With("subject", w.Subject).Warn(string(w.Kind) + ": " + w.Detail)
}

package transactron_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transactron/transactron"
	"github.com/transactron/transactron/diag"
	"github.com/transactron/transactron/lowering"
	"github.com/transactron/transactron/scheduler"
	"github.com/transactron/transactron/sig"
	"github.com/transactron/transactron/txerr"
)

func bit(name string) sig.Layout { return sig.Layout{{Name: name, Width: 1}} }

// TestContext_SharedExclusiveMethodProducesImplicitConflict covers the core
// end-to-end shape: two transactions with no declared relationship to each
// other become conflicting purely because they both call the same
// exclusive method (spec.md §4.3 pass 1, run through the public API).
func TestContext_SharedExclusiveMethodProducesImplicitConflict(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	reg, err := ctx.DefineMethod("reg", bit("data"), nil, false, nil, nil)
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("writerA", lowering.Var("reqA"), func(b *transactron.Body) {
		_, callErr := b.Call(reg, lowering.Const(true), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("writerB", lowering.Var("reqB"), func(b *transactron.Body) {
		_, callErr := b.Call(reg, lowering.Const(true), lowering.Const(false))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	report, derr := ctx.Diagnose()
	require.NoError(t, derr)

	require.Len(t, report.ConflictEdges, 1)
	edge := report.ConflictEdges[0]
	assert.Equal(t, "writerA", edge.A)
	assert.Equal(t, "writerB", edge.B)
	assert.Equal(t, "shared", edge.Cause)
	assert.Equal(t, "reg", edge.Via)

	var noPriority bool
	for _, w := range report.Warnings {
		if w.Kind == diag.WarnNoDeclaredPriority {
			noPriority = true
		}
	}
	assert.True(t, noPriority, "conflicting pair with no schedule_before must surface a warning")
}

// TestContext_LowerArbitratesConflictingCallersWithAMux covers spec.md §4.4
// and §4.5 together: the two writers above must be mutually exclusive in
// their grants, and the method's resolved input must mux between them.
func TestContext_LowerArbitratesConflictingCallersWithAMux(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	reg, err := ctx.DefineMethod("reg", bit("data"), nil, false, nil, nil)
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("writerA", lowering.Var("reqA"), func(b *transactron.Body) {
		_, callErr := b.Call(reg, lowering.Const(true), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("writerB", lowering.Var("reqB"), func(b *transactron.Body) {
		_, callErr := b.Call(reg, lowering.Const(true), lowering.Const(false))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	nl, lerr := ctx.Lower()
	require.NoError(t, lerr)

	grantA := nl.Grant["writerA"]
	grantB := nl.Grant["writerB"]
	require.NotNil(t, grantA)
	require.NotNil(t, grantB)
	// writerA is scheduled first (definition order tiebreak), so writerB's
	// grant must be gated by writerA's negated grant.
	assert.True(t, grantB.Equal(lowering.And(lowering.Var("reqB"), lowering.Not(grantA))))

	input := nl.MethodInput["reg"]
	require.NotNil(t, input)
	assert.Equal(t, lowering.KindMux, input.Kind())
}

// TestContext_NonexclusiveMethodDefaultsToOrReduction covers spec.md §4.4's
// default combiner for a single-bit nonexclusive method with no declared
// reducer.
func TestContext_NonexclusiveMethodDefaultsToOrReduction(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	notify, err := ctx.DefineMethod("notify", bit("flag"), nil, true, nil, nil)
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("a", lowering.Const(true), func(b *transactron.Body) {
		_, callErr := b.Call(notify, lowering.Var("enA"), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)
	_, err = ctx.DefineTransaction("b", lowering.Const(true), func(b *transactron.Body) {
		_, callErr := b.Call(notify, lowering.Var("enB"), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	report, derr := ctx.Diagnose()
	require.NoError(t, derr)
	assert.Empty(t, report.ConflictEdges, "nonexclusive methods never induce conflicts")

	var usedDefault bool
	for _, w := range report.Warnings {
		if w.Kind == diag.WarnDefaultReducer && w.Subject == "notify" {
			usedDefault = true
		}
	}
	assert.True(t, usedDefault)

	nl, lerr := ctx.Lower()
	require.NoError(t, lerr)
	assert.True(t, nl.MethodInput["notify"].Equal(lowering.Or(lowering.Var("enA"), lowering.Var("enB"))))
}

// TestContext_WideNonexclusiveMethodWithoutReducerFailsLowering covers the
// fatal (not merely a warning) version of the same ambiguity once the
// argument is wider than one bit.
func TestContext_WideNonexclusiveMethodWithoutReducerFailsLowering(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	wide, err := ctx.DefineMethod("wide", sig.Layout{{Name: "bits", Width: 4}}, nil, true, nil, nil)
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("a", lowering.Const(true), func(b *transactron.Body) {
		_, callErr := b.Call(wide, lowering.Const(true), lowering.Var("bits"))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	_, lerr := ctx.Lower()
	require.Error(t, lerr)
}

// TestContext_DeclaredReducerAvoidsWideFailure confirms that registering a
// reducer via DeclareReducer fixes the above.
func TestContext_DeclaredReducerAvoidsWideFailure(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	wide, err := ctx.DefineMethod("wide", sig.Layout{{Name: "bits", Width: 4}}, nil, true, nil, nil)
	require.Nil(t, err)
	require.Nil(t, ctx.DeclareReducer(wide, func(args []*lowering.Node) *lowering.Node {
		return lowering.Or(args...)
	}))

	_, err = ctx.DefineTransaction("a", lowering.Const(true), func(b *transactron.Body) {
		_, callErr := b.Call(wide, lowering.Const(true), lowering.Var("bits"))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	nl, lerr := ctx.Lower()
	require.NoError(t, lerr)
	assert.NotNil(t, nl.MethodInput["wide"])
}

// TestContext_CrossContextCallIsRejected covers spec.md §5's cross-context
// mismatch requirement for Body.Call.
func TestContext_CrossContextCallIsRejected(t *testing.T) {
	ctx1 := transactron.NewContext(scheduler.Config{})
	ctx2 := transactron.NewContext(scheduler.Config{})

	foreign, err := ctx1.DefineMethod("foreign", bit("x"), nil, false, nil, nil)
	require.Nil(t, err)

	var callErr *txerr.Error
	_, err = ctx2.DefineTransaction("local", lowering.Const(true), func(b *transactron.Body) {
		_, callErr = b.Call(foreign, lowering.Const(true), lowering.Const(true))
	})
	require.Nil(t, err)
	require.NotNil(t, callErr)
	assert.Equal(t, txerr.ContextMismatch, callErr.Kind)
}

// TestContext_CrossContextDeclareConflictIsRejected covers the same check
// for the designer-facing relationship declarations.
func TestContext_CrossContextDeclareConflictIsRejected(t *testing.T) {
	ctx1 := transactron.NewContext(scheduler.Config{})
	ctx2 := transactron.NewContext(scheduler.Config{})

	tx1, err := ctx1.DefineTransaction("a", lowering.Const(true), nil)
	require.Nil(t, err)
	tx2, err := ctx2.DefineTransaction("b", lowering.Const(true), nil)
	require.Nil(t, err)

	derr := ctx1.DeclareConflict(tx1, tx2)
	require.NotNil(t, derr)
	assert.Equal(t, txerr.ContextMismatch, derr.Kind)
}

// TestContext_ScheduleBeforeRejectsCycle covers the priority-cycle rejection
// path reached through the public API.
func TestContext_ScheduleBeforeRejectsCycle(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	a, err := ctx.DefineTransaction("a", lowering.Const(true), nil)
	require.Nil(t, err)
	b, err := ctx.DefineTransaction("b", lowering.Const(true), nil)
	require.Nil(t, err)
	c, err := ctx.DefineTransaction("c", lowering.Const(true), nil)
	require.Nil(t, err)

	require.Nil(t, ctx.ScheduleBefore(a, b))
	require.Nil(t, ctx.ScheduleBefore(b, c))

	cerr := ctx.ScheduleBefore(c, a)
	require.NotNil(t, cerr)
	assert.Equal(t, txerr.PriorityCycle, cerr.Kind)
}

// TestContext_FreezesAfterDiagnose covers spec.md §5: no further definitions
// are accepted once elaboration has frozen.
func TestContext_FreezesAfterDiagnose(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})
	_, err := ctx.DefineTransaction("a", lowering.Const(true), nil)
	require.Nil(t, err)

	_, derr := ctx.Diagnose()
	require.NoError(t, derr)

	_, err = ctx.DefineTransaction("b", lowering.Const(true), nil)
	require.NotNil(t, err)
	assert.Equal(t, txerr.FrozenContext, err.Kind)
}

// TestContext_DeclareWitnessSuppressesImplicitConflict covers spec.md §4.9:
// a designer-proven mutual exclusion between two callers of the same
// exclusive method must suppress the conflict the shared-method pass would
// otherwise record.
func TestContext_DeclareWitnessSuppressesImplicitConflict(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	reg, err := ctx.DefineMethod("reg", bit("data"), nil, false, nil, nil)
	require.Nil(t, err)

	txA, err := ctx.DefineTransaction("a", lowering.Var("reqA"), func(b *transactron.Body) {
		_, callErr := b.Call(reg, lowering.Var("selA"), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)
	txB, err := ctx.DefineTransaction("b", lowering.Var("reqB"), func(b *transactron.Body) {
		_, callErr := b.Call(reg, lowering.Not(lowering.Var("selA")), lowering.Const(false))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	require.Nil(t, ctx.DeclareWitness(txA, txB))

	report, derr := ctx.Diagnose()
	require.NoError(t, derr)
	assert.Empty(t, report.ConflictEdges)
}

// TestContext_NestedMethodCallPropagatesGrantThroughFires covers the
// multi-level case callgraph.Builder.Fires generalizes to: a transaction
// calls a method which itself calls another method, and the innermost
// method's MethodCalled signal must fold in every enable along the chain.
func TestContext_NestedMethodCallPropagatesGrantThroughFires(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	leaf, err := ctx.DefineMethod("leaf", bit("x"), nil, false, nil, nil)
	require.Nil(t, err)

	mid, err := ctx.DefineMethod("mid", bit("x"), nil, false, nil, func(body *transactron.Body) {
		_, callErr := body.Call(leaf, lowering.Var("innerEnable"), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("caller", lowering.Var("req"), func(b *transactron.Body) {
		_, callErr := b.Call(mid, lowering.Var("outerEnable"), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	nl, lerr := ctx.Lower()
	require.NoError(t, lerr)

	grant := nl.Grant["caller"]
	require.NotNil(t, grant)
	expectedMidCalled := lowering.And(grant, lowering.Var("outerEnable"))
	assert.True(t, nl.MethodCalled["mid"].Equal(expectedMidCalled))
	expectedLeafCalled := lowering.And(expectedMidCalled, lowering.Var("innerEnable"))
	assert.True(t, nl.MethodCalled["leaf"].Equal(expectedLeafCalled))
}

// TestContext_FIFOWriteReadDoNotConflict covers spec.md §8 scenario S2: a
// tiny in-test-only FIFO fixture built directly on DefineMethod/Call, with
// write (ready iff not full) and read (ready iff not empty) as two
// separate exclusive methods, each called by its own transaction. Because
// the core is purely combinational (no simulation loop — that is an
// explicit Non-goal), "4 cycles of request=1" is exercised here as the
// structural shape of the resolved grant/ready netlist rather than a
// literal multi-cycle trace: write and read never share a method, so
// producer and consumer never conflict, and each one's grant is gated only
// by its own request and its own side of the FIFO's fullness/emptiness.
func TestContext_FIFOWriteReadDoNotConflict(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	full := lowering.Var("full")
	empty := lowering.Var("empty")

	write, err := ctx.DefineMethod("write", bit("data"), nil, false, lowering.Not(full), nil)
	require.Nil(t, err)
	read, err := ctx.DefineMethod("read", bit("data"), nil, false, lowering.Not(empty), nil)
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("producer", lowering.Var("reqP"), func(b *transactron.Body) {
		_, callErr := b.Call(write, lowering.Const(true), lowering.Var("writeData"))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("consumer", lowering.Var("reqC"), func(b *transactron.Body) {
		_, callErr := b.Call(read, lowering.Const(true), lowering.Const(false))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	report, derr := ctx.Diagnose()
	require.NoError(t, derr)
	assert.Empty(t, report.ConflictEdges, "write and read are different methods; producer and consumer never conflict")

	nl, lerr := ctx.Lower()
	require.NoError(t, lerr)

	assert.True(t, nl.MethodReady["write"].Equal(lowering.Not(full)))
	assert.True(t, nl.MethodReady["read"].Equal(lowering.Not(empty)))

	// full cannot block the consumer and empty cannot block the producer —
	// each grant depends only on its own request and its own FIFO side.
	wantGrantP := lowering.And(lowering.Var("reqP"), lowering.Not(full))
	wantGrantC := lowering.And(lowering.Var("reqC"), lowering.Not(empty))
	assert.True(t, nl.Grant["producer"].Equal(wantGrantP))
	assert.True(t, nl.Grant["consumer"].Equal(wantGrantC))

	// write is exclusive with a single caller, so its resolved input passes
	// the producer's argument straight through (spec.md §4.4).
	assert.True(t, nl.MethodInput["write"].Equal(lowering.Var("writeData")))
}

// TestContext_PeekNonexclusiveGrantsCanCoincide covers spec.md §8 scenario
// S3: a nonexclusive method ("peek") called concurrently by two
// transactions induces no conflict, and both grants can be asserted
// together — unlike TestContext_LowerArbitratesConflictingCallersWithAMux's
// exclusive method, neither grant formula is gated by the other's negation.
func TestContext_PeekNonexclusiveGrantsCanCoincide(t *testing.T) {
	ctx := transactron.NewContext(scheduler.Config{})

	peek, err := ctx.DefineMethod("peek", bit("value"), nil, true, nil, nil)
	require.Nil(t, err)

	_, err = ctx.DefineTransaction("a", lowering.Var("reqA"), func(b *transactron.Body) {
		_, callErr := b.Call(peek, lowering.Const(true), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)
	_, err = ctx.DefineTransaction("b", lowering.Var("reqB"), func(b *transactron.Body) {
		_, callErr := b.Call(peek, lowering.Const(true), lowering.Const(true))
		require.Nil(t, callErr)
	})
	require.Nil(t, err)

	report, derr := ctx.Diagnose()
	require.NoError(t, derr)
	assert.Empty(t, report.ConflictEdges, "nonexclusive methods never induce conflicts")

	nl, lerr := ctx.Lower()
	require.NoError(t, lerr)

	wantGrantA := lowering.And(lowering.Var("reqA"), lowering.Const(true))
	wantGrantB := lowering.And(lowering.Var("reqB"), lowering.Const(true))
	assert.True(t, nl.Grant["a"].Equal(wantGrantA))
	assert.True(t, nl.Grant["b"].Equal(wantGrantB))
	// Both grants can hold at once: neither formula mentions the other.
	assert.True(t, nl.Grant["a"].Equal(lowering.Var("reqA")))
	assert.True(t, nl.Grant["b"].Equal(lowering.Var("reqB")))

	// Both call sites are always enabled, so peek's combined input folds
	// both contributions via the default OR reduction (spec.md §4.4).
	assert.True(t, nl.MethodInput["peek"].Equal(lowering.Const(true)))
}

// TestContext_DeterministicAcrossTwoElaborations covers spec.md §8 property
// 6: elaborating the same source twice must produce identical reports.
func TestContext_DeterministicAcrossTwoElaborations(t *testing.T) {
	build := func() *diag.Report {
		ctx := transactron.NewContext(scheduler.Config{})
		reg, err := ctx.DefineMethod("reg", bit("data"), nil, false, nil, nil)
		require.Nil(t, err)
		_, err = ctx.DefineTransaction("writerA", lowering.Var("reqA"), func(b *transactron.Body) {
			_, callErr := b.Call(reg, lowering.Const(true), lowering.Const(true))
			require.Nil(t, callErr)
		})
		require.Nil(t, err)
		_, err = ctx.DefineTransaction("writerB", lowering.Var("reqB"), func(b *transactron.Body) {
			_, callErr := b.Call(reg, lowering.Const(true), lowering.Const(false))
			require.Nil(t, callErr)
		})
		require.Nil(t, err)
		report, derr := ctx.Diagnose()
		require.NoError(t, derr)
		return report
	}

	require.Equal(t, build(), build())
}

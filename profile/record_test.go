package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transactron/transactron/profile"
)

func TestCycleRecord_RecordTransactionDerivesLockedFromCaller(t *testing.T) {
	r := profile.NewCycleRecord(42)
	r.RecordTransaction("enqueue", true, false, true)
	r.RecordTransaction("dequeue", true, true, false)

	assert.Equal(t, uint64(42), r.Cycle)
	assert.Equal(t, profile.TransactionState{Request: true, Grant: false, Locked: true}, r.Transactions["enqueue"])
	assert.Equal(t, profile.TransactionState{Request: true, Grant: true, Locked: false}, r.Transactions["dequeue"])
}

func TestCycleRecord_RecordMethodCopiesCallerSlice(t *testing.T) {
	r := profile.NewCycleRecord(1)
	callers := []string{"enqueue", "dequeue"}
	r.RecordMethod("push", callers, true)

	// Mutating the caller's slice afterward must not affect the stored record.
	callers[0] = "mutated"
	assert.Equal(t, []string{"enqueue", "dequeue"}, r.Methods["push"].CalledBy)
	assert.True(t, r.Methods["push"].Ready)
}

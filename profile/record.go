package profile

// TransactionState is one transaction's per-cycle profile entry.
type TransactionState struct {
	Request bool `json:"request"`
	Grant   bool `json:"grant"`
	Locked  bool `json:"locked"` // request && !grant
}

// MethodState is one method's per-cycle profile entry.
type MethodState struct {
	CalledBy []string `json:"called_by"`
	Ready    bool     `json:"ready"`
}

// CycleRecord is the literal schema spec.md §6 pins down:
//
//	{cycle: u64,
//	 transactions: {name: {request, grant, locked}},
//	 methods: {name: {called_by: [name], ready}}}
type CycleRecord struct {
	Cycle        uint64                      `json:"cycle"`
	Transactions map[string]TransactionState `json:"transactions"`
	Methods      map[string]MethodState      `json:"methods"`
}

// NewCycleRecord returns an empty record for the given cycle number, ready
// to have transactions and methods recorded into it.
func NewCycleRecord(cycle uint64) *CycleRecord {
	return &CycleRecord{
		Cycle:        cycle,
		Transactions: make(map[string]TransactionState),
		Methods:      make(map[string]MethodState),
	}
}

// RecordTransaction sets transaction name's per-cycle state. locked is
// derived by the caller as request && !grant (spec.md §6), not recomputed
// here, since the core is the source of truth for both request and grant.
func (r *CycleRecord) RecordTransaction(name string, request, grant, locked bool) {
	r.Transactions[name] = TransactionState{Request: request, Grant: grant, Locked: locked}
}

// RecordMethod sets method name's per-cycle state.
func (r *CycleRecord) RecordMethod(name string, calledBy []string, ready bool) {
	r.Methods[name] = MethodState{CalledBy: append([]string{}, calledBy...), Ready: ready}
}

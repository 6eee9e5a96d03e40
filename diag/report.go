package diag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/transactron/transactron/conflict"
	"github.com/transactron/transactron/ids"
)

// WarningKind tags a recoverable ambiguity: one that the elaborator
// resolved by a documented default rather than by failing (spec.md §7:
// "Recoverable warnings ... are surfaced in the diagnostic report but do
// not halt lowering").
type WarningKind string

const (
	// WarnNoDeclaredPriority marks a conflicting pair with no
	// schedule_before between them — the scheduler fell back to its
	// deterministic tiebreak.
	WarnNoDeclaredPriority WarningKind = "NoDeclaredPriority"
	// WarnDefaultReducer marks a nonexclusive method that used the default
	// OR reducer rather than a designer-declared one.
	WarnDefaultReducer WarningKind = "DefaultReducer"
)

// Warning is one recoverable ambiguity found during elaboration.
type Warning struct {
	Kind    WarningKind
	Subject string
	Detail  string
}

// ConflictEdge is one conflict-graph edge as reported to the designer.
type ConflictEdge struct {
	A, B  string
	Cause string
	Via   string // method name, only set when Cause == "shared"
}

// Report is the structural report of spec.md §6.
type Report struct {
	Transactions  []string
	Methods       []string
	ConflictEdges []ConflictEdge
	PriorityOrder []string
	Warnings      []Warning
}

// Build assembles a Report. txName and methodName resolve a transaction or
// method ID to its designer-given name; priorityOrder is the order the scheduler
// synthesizer computed (scheduler.priorityOrder's output, named).
func Build(
	txNames []string,
	methodNames []string,
	g *conflict.Graph,
	txName func(ids.TransactionID) string,
	methodName func(ids.MethodID) string,
	priorityOrder []ids.TransactionID,
	warnings []Warning,
) *Report {
	r := &Report{
		Transactions: append([]string{}, txNames...),
		Methods:      append([]string{}, methodNames...),
		Warnings:     append([]Warning{}, warnings...),
	}
	for _, e := range g.Edges() {
		ce := ConflictEdge{A: txName(e.A), B: txName(e.B), Cause: e.Cause.String()}
		if e.Cause == conflict.CauseShared {
			ce.Via = methodName(e.Via)
		}
		r.ConflictEdges = append(r.ConflictEdges, ce)
	}
	for _, t := range priorityOrder {
		r.PriorityOrder = append(r.PriorityOrder, txName(t))
	}
	return r
}

// String renders a human-readable summary, in the order the fields are
// declared on Report.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transactions: %s\n", strings.Join(r.Transactions, ", "))
	fmt.Fprintf(&b, "methods: %s\n", strings.Join(r.Methods, ", "))
	b.WriteString("conflicts:\n")
	for _, e := range r.ConflictEdges {
		if e.Via != "" {
			fmt.Fprintf(&b, "  %s <-> %s (shared: %s)\n", e.A, e.B, e.Via)
		} else {
			fmt.Fprintf(&b, "  %s <-> %s (%s)\n", e.A, e.B, e.Cause)
		}
	}
	fmt.Fprintf(&b, "priority order: %s\n", strings.Join(r.PriorityOrder, " > "))
	if len(r.Warnings) > 0 {
		b.WriteString("warnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", w.Kind, w.Subject, w.Detail)
		}
	}
	return b.String()
}

// MarshalJSON renders the report as JSON, for tooling that consumes the
// diagnostic report programmatically rather than printing it.
func (r *Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal((*alias)(r))
}

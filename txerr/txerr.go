// Package txerr defines the structural error kinds shared by every stage of
// elaboration (spec.md §7). Errors are fatal to elaboration: the caller is
// expected to collect them and abort before lowering rather than emit a
// partial netlist.
//
// Each error carries a source location captured with runtime.Caller. For
// errors raised while registering (DefineMethod/DefineTransaction/Call/
// ScheduleBefore/etc.) it is the file:line of that call. CallGraphCycle and
// UnmergedNonexclusive are detected only when Diagnose or Lower runs, and
// carry the file:line of that Diagnose or Lower call, not of the offending
// definition. Wrapping and stack traces are
// provided by github.com/cockroachdb/errors, already pulled in transitively
// by the teacher's own go.mod.
package txerr

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
)

// Kind enumerates the structural validation failures of spec.md §7.
type Kind string

const (
	LayoutMismatch       Kind = "LayoutMismatch"
	OrphanCall           Kind = "OrphanCall"
	CallGraphCycle       Kind = "CallGraphCycle"
	PriorityCycle        Kind = "PriorityCycle"
	UnmergedNonexclusive Kind = "UnmergedNonexclusive"
	ContextMismatch      Kind = "ContextMismatch"
	MissingCallee        Kind = "MissingCallee"
	FrozenContext        Kind = "FrozenContext"
)

// Location is the file:line of a definition, captured once at registration
// time so later structural errors about that definition can point back to
// where the designer wrote it.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Here captures the call site skip frames above the caller of Here. Callers
// that want the definition site, not their own helper's site, pass the
// right skip count — by convention 1 more than the number of internal
// helper frames between the public entry point and this call.
func Here(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	return Location{File: file, Line: line}
}

// Error is a single structural elaboration failure.
type Error struct {
	Kind     Kind
	Where    Location
	Subject  string // the transaction/method/callee name involved, if any
	cause    error
}

func New(kind Kind, where Location, subject string, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Where:   where,
		Subject: subject,
		cause:   errors.WithStack(errors.Newf(format, args...)),
	}
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Where, e.cause)
	}
	return fmt.Sprintf("%s %q at %s: %s", e.Kind, e.Subject, e.Where, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, txerr.IsKind(txerr.LayoutMismatch)) work by
// matching on Kind — Kind itself is not an error, so IsKind below wraps it
// in a tiny sentinel adapter.
func (e *Error) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && e.Kind == Kind(k)
}

// kindSentinel lets callers write errors.Is(err, txerr.IsKind(txerr.OrphanCall)).
type kindSentinel string

func (kindSentinel) Error() string { return "" }

// IsKind returns a sentinel usable with errors.Is to test an *Error's Kind.
func IsKind(k Kind) error { return kindSentinel(k) }

// List accumulates errors across an elaboration pass. Elaboration never
// returns on the first error — spec.md §7 expects all structural problems
// for one elaboration to surface together — but lowering never proceeds
// while the list is non-empty.
type List struct {
	errs []*Error
}

func (l *List) Add(e *Error) {
	if e != nil {
		l.errs = append(l.errs, e)
	}
}

func (l *List) Empty() bool { return len(l.errs) == 0 }

func (l *List) Errors() []*Error { return l.errs }

func (l *List) Error() string {
	if len(l.errs) == 0 {
		return ""
	}
	s := fmt.Sprintf("%d elaboration error(s):", len(l.errs))
	for _, e := range l.errs {
		s += "\n  - " + e.Error()
	}
	return s
}

// AsError returns the list as an error, or nil if empty — the idiomatic
// shape for `if err := errs.AsError(); err != nil { return err }`.
func (l *List) AsError() error {
	if l.Empty() {
		return nil
	}
	return l
}

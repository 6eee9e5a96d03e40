// Package callgraph implements the call-graph builder of spec.md §4.2: it
// records, per transaction and per method body, the set of method
// invocations made from that body, each call site's enable provenance (the
// AND of nested conditional-region guards in force at the call, composed
// with a per-call enable expression), and — once a body closes — the
// per-callee OR-of-enables (called_under) and the effective-ready
// composition.
//
// The bookkeeping shape (index-stable callee identities, a dictionary
// keyed by caller, append-only call-site lists) is grounded on the
// teacher's callee.go, generalized from "an EOA-initiated call records
// against a (contract address, function signature) Callee" to "a
// transaction or method body records a call site against a registered
// Method".
package callgraph

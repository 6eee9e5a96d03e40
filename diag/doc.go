// Package diag builds the structural diagnostic report of spec.md §6: an
// enumeration of every transaction and method, the conflict edges (with
// cause), the static priority order, and detected ambiguities — recoverable
// warnings such as "no priority given between conflicting transactions" —
// that do not halt lowering but are surfaced for the designer to review.
package diag

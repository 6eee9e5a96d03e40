// Package profile implements the optional per-cycle profile artifact of
// spec.md §6: a JSON record per simulation cycle giving, for every
// transaction, its request/grant/locked state, and for every method, who
// called it and whether it was ready. The core only guarantees the
// completeness of this record; collecting and persisting it across a
// simulation run is the external collaborator's job, not this package's.
package profile

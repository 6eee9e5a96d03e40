// Package sig implements the signature registry described in spec.md §4.1:
// it registers method signatures (input and output bit layouts plus a
// nonexclusive flag) under the method's name, and rejects a redefinition
// under the same name whose layouts or flag do not match by structural
// equality. Signatures are not shared across names: two names with equal
// layouts get two distinct IDs.
//
// The registry is keyed by name, the way the teacher's addr.go/constant.go
// keyed a dictionary by a (contract address, function signature) pair
// (Compact/CallToKey). A layout's field names, widths and order are compared
// with Layout.Equal; the string form built from them appears only in
// LayoutMismatch messages.
package sig

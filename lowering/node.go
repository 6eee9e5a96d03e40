package lowering

import "fmt"

// Kind tags the operator a Node represents.
type Kind uint8

const (
	KindConst Kind = iota
	KindVar
	KindAnd
	KindOr
	KindNot
	KindMux
	KindEq
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "Const"
	case KindVar:
		return "Var"
	case KindAnd:
		return "And"
	case KindOr:
		return "Or"
	case KindNot:
		return "Not"
	case KindMux:
		return "Mux"
	case KindEq:
		return "Eq"
	default:
		return "?"
	}
}

// Node is one node of a netlist fragment: a boolean/typed expression tree
// over wires. It is an immutable value — building a new Node never mutates
// an operand — so the same sub-expression can be shared (e.g. the same
// ready signal feeding two different gates) without copying.
type Node struct {
	kind  Kind
	bit   bool     // for KindConst
	name  string   // for KindVar
	kids  []*Node  // operands, in operator-specific order
}

// Const returns a constant boolean node.
func Const(b bool) *Node { return &Node{kind: KindConst, bit: b} }

// Var returns a named free variable (a request, ready, or grant signal).
func Var(name string) *Node { return &Node{kind: KindVar, name: name} }

// And returns the conjunction of zero or more operands. And() with no
// operands is the identity element, True.
func And(operands ...*Node) *Node {
	return simplifyAndOr(KindAnd, operands)
}

// Or returns the disjunction of zero or more operands. Or() with no
// operands is the identity element, False.
func Or(operands ...*Node) *Node {
	return simplifyAndOr(KindOr, operands)
}

// Not returns the negation of n.
func Not(n *Node) *Node {
	if n.kind == KindConst {
		return Const(!n.bit)
	}
	if n.kind == KindNot {
		return n.kids[0]
	}
	return &Node{kind: KindNot, kids: []*Node{n}}
}

// Mux returns sel ? whenTrue : whenFalse.
func Mux(sel, whenTrue, whenFalse *Node) *Node {
	if sel.kind == KindConst {
		if sel.bit {
			return whenTrue
		}
		return whenFalse
	}
	return &Node{kind: KindMux, kids: []*Node{sel, whenTrue, whenFalse}}
}

// Eq returns a == b.
func Eq(a, b *Node) *Node {
	return &Node{kind: KindEq, kids: []*Node{a, b}}
}

func (n *Node) Kind() Kind    { return n.kind }
func (n *Node) Bool() bool    { return n.bit }
func (n *Node) Name() string  { return n.name }
func (n *Node) Operands() []*Node {
	return n.kids
}

// IsConst reports whether n folds to a known constant, returning its value.
func (n *Node) IsConst() (value, ok bool) {
	if n.kind == KindConst {
		return n.bit, true
	}
	return false, false
}

// Equal reports structural equality (not semantic equivalence — two nodes
// that always evaluate the same but are built differently are not Equal).
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind || n.bit != o.bit || n.name != o.name || len(n.kids) != len(o.kids) {
		return false
	}
	for i := range n.kids {
		if !n.kids[i].Equal(o.kids[i]) {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	switch n.kind {
	case KindConst:
		return fmt.Sprintf("%v", n.bit)
	case KindVar:
		return n.name
	case KindNot:
		return "!" + n.kids[0].String()
	case KindAnd:
		return joinOp("&&", n.kids)
	case KindOr:
		return joinOp("||", n.kids)
	case KindMux:
		return fmt.Sprintf("mux(%s, %s, %s)", n.kids[0], n.kids[1], n.kids[2])
	case KindEq:
		return fmt.Sprintf("(%s == %s)", n.kids[0], n.kids[1])
	default:
		return "?"
	}
}

func joinOp(op string, kids []*Node) string {
	if len(kids) == 0 {
		return "true"
	}
	s := kids[0].String()
	for _, k := range kids[1:] {
		s += " " + op + " " + k.String()
	}
	if len(kids) > 1 {
		return "(" + s + ")"
	}
	return s
}

// simplifyAndOr builds an And/Or node with constant-folding: absorbing
// annihilators (And short-circuits on a false operand, Or on a true one),
// dropping identity operands, and flattening nested same-kind operands —
// this is the "Simplify pass" SPEC_FULL.md §4.7 calls for, applied eagerly
// at construction time rather than as a separate tree rewrite, since every
// call site in callgraph/conflict/scheduler builds these bottom-up anyway.
func simplifyAndOr(kind Kind, operands []*Node) *Node {
	annihilator := kind == KindOr // And annihilates on false, Or annihilates on true
	identity := !annihilator

	flat := make([]*Node, 0, len(operands))
	var flatten func(*Node)
	flatten = func(n *Node) {
		if n.kind == KindConst {
			if n.bit == annihilator {
				return
			}
			if n.bit == identity {
				return
			}
		}
		if n.kind == kind {
			for _, k := range n.kids {
				flatten(k)
			}
			return
		}
		flat = append(flat, n)
	}
	for _, op := range operands {
		if op.kind == KindConst && op.bit == annihilator {
			return Const(annihilator)
		}
		flatten(op)
	}

	switch len(flat) {
	case 0:
		return Const(identity)
	case 1:
		return flat[0]
	default:
		return &Node{kind: kind, kids: flat}
	}
}

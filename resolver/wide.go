package resolver

import (
	"github.com/holiman/uint256"

	"github.com/transactron/transactron/lowering"
)

// WideOrReducer is a declare_reducer function for nonexclusive methods whose
// argument is wider than one bit. It folds constant call-site contributions
// into a uint256.Int accumulator (the same library the teacher's
// arbitrator.go reaches for to compare value ranges wider than a machine
// word). Constant contributions are boolean lowering.Const nodes, so each
// true one sets only bit 0 of the accumulator: the folded result is a single
// boolean (true if any constant contribution is true), not a per-bit OR of
// wide values. Any non-constant contribution falls back to a symbolic
// lowering.Or term, since its bits are not known until simulation.
func WideOrReducer(args []*lowering.Node) *lowering.Node {
	acc := new(uint256.Int)
	haveConst := false
	var symbolic []*lowering.Node

	for _, a := range args {
		if bit, ok := a.IsConst(); ok {
			if bit {
				acc.Or(acc, uint256.NewInt(1))
			}
			haveConst = true
			continue
		}
		symbolic = append(symbolic, a)
	}

	if len(symbolic) == 0 {
		return lowering.Const(haveConst && !acc.IsZero())
	}
	if !haveConst || acc.IsZero() {
		return lowering.Or(symbolic...)
	}
	return lowering.Or(append(symbolic, lowering.Const(true))...)
}

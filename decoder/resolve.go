package decoder

import "github.com/tracepath/rvtrace/isa"

// outcomeKind tags the result of resolving one step of the path follower
// as a single ordered match over a closed set of outcomes. Rules that
// need no further input (inferrable jump, sequential jump, implicit
// return, uninferrable discontinuity) are resolved here; the remaining
// two rules (taken branch, fall-through) need the live branch map, which
// is follow.go's job to mutate, so resolve reports outcomeNone and lets
// the caller finish the match.
type outcomeKind int

const (
	outcomeInferrableJump outcomeKind = iota
	outcomeSequentialJump
	outcomeImplicitReturn
	outcomeUninferrable
	outcomeNone
)

type outcome struct {
	kind   outcomeKind
	target uint64 // valid only for outcomeInferrableJump/outcomeSequentialJump
}

// resolve chooses a rule, in priority order, to compute the outcome of
// stepping past the instruction at the current PC. It does not mutate
// state.
func resolve(in, prev isa.Instruction, implicitReturn bool, callDepth int) outcome {
	switch {
	case isInferrableJump(in):
		return outcome{kind: outcomeInferrableJump, target: uint64(int64(in.PC) + in.Imm)}

	case isSequentialJump(in, prev):
		return outcome{kind: outcomeSequentialJump, target: sequentialJumpTarget(in, prev)}

	case isImplicitReturn(in, implicitReturn, callDepth):
		return outcome{kind: outcomeImplicitReturn}

	case isUninferrableDiscontinuity(in):
		return outcome{kind: outcomeUninferrable}

	default:
		return outcome{kind: outcomeNone}
	}
}

// sequentialJumpTarget computes the target of a lui/auipc + jalr (or
// c.lui + c.jalr/c.jr) idiom: base comes from the preceding
// upper-immediate instruction, plus the jump's own immediate when it is
// a jalr.
func sequentialJumpTarget(in, prev isa.Instruction) uint64 {
	var base int64
	if prev.Op == isa.OpAuipc {
		base = int64(prev.PC)
	}
	base += prev.Imm

	if in.Op == isa.OpJalr {
		base += in.Imm
	}
	return uint64(base)
}

package decoder

import "github.com/tracepath/rvtrace/isa"

// Pure classifier predicates over decoded instructions. None of these
// touch decoder state; they exist so nextPC's priority chain
// (resolve.go) reads as a single ordered match instead of an ad-hoc
// if/else chain.

func isBranch(in isa.Instruction) bool {
	switch in.Op {
	case isa.OpBeq, isa.OpBne, isa.OpBlt, isa.OpBge, isa.OpBltu, isa.OpBgeu,
		isa.OpCBeqz, isa.OpCBnez:
		return true
	}
	return false
}

func isInferrableJump(in isa.Instruction) bool {
	switch in.Op {
	case isa.OpJal, isa.OpCJal, isa.OpCJ:
		return true
	case isa.OpJalr:
		return in.Rs1 == 0
	}
	return false
}

func isUninferrableJump(in isa.Instruction) bool {
	switch in.Op {
	case isa.OpCJalr, isa.OpCJr:
		return true
	case isa.OpJalr:
		return in.Rs1 != 0
	}
	return false
}

// Exceptions (ecall/ebreak/c.ebreak) are deliberately excluded: their
// control transfer is conveyed by packets, not inferred here.
func isUninferrableDiscontinuity(in isa.Instruction) bool {
	if isUninferrableJump(in) {
		return true
	}
	switch in.Op {
	case isa.OpUret, isa.OpSret, isa.OpMret, isa.OpDret:
		return true
	}
	return false
}

// isCall reports whether in pushes a link address onto the return stack.
// Tail calls (rd==0 on jal/jalr) are excluded.
func isCall(in isa.Instruction) bool {
	switch in.Op {
	case isa.OpCJalr, isa.OpCJal:
		return true
	case isa.OpJalr, isa.OpJal:
		return in.Rd == 1
	}
	return false
}

// isSequentialJump reports whether in is an uninferrable jump whose target
// can be inferred from the immediately preceding lui/auipc/c.lui that fed
// its base register, without needing a reported address.
func isSequentialJump(in, prev isa.Instruction) bool {
	if !isUninferrableJump(in) {
		return false
	}
	switch prev.Op {
	case isa.OpAuipc, isa.OpLui, isa.OpCLui:
		return in.Rs1 == prev.Rd
	}
	return false
}

// isImplicitReturn reports whether in is a bare `ret`-shaped jalr/c.jr that
// can be resolved from the return-stack shadow rather than the packet
// stream, when implicit-return inference is enabled and the stack is
// non-empty.
func isImplicitReturn(in isa.Instruction, implicitReturn bool, callDepth int) bool {
	if !implicitReturn || callDepth <= 0 {
		return false
	}
	switch in.Op {
	case isa.OpJalr:
		return in.Rs1 == 1 && in.Rd == 0
	case isa.OpCJr:
		return in.Rs1 == 1
	}
	return false
}

package decoder

import (
	"testing"

	"github.com/tracepath/rvtrace/isa"
)

func TestIsBranch(t *testing.T) {
	tests := []struct {
		op   isa.Opcode
		want bool
	}{
		{isa.OpBeq, true},
		{isa.OpBne, true},
		{isa.OpBlt, true},
		{isa.OpBge, true},
		{isa.OpBltu, true},
		{isa.OpBgeu, true},
		{isa.OpCBeqz, true},
		{isa.OpCBnez, true},
		{isa.OpJal, false},
		{isa.OpOther, false},
	}
	for _, tt := range tests {
		if got := isBranch(isa.Instruction{Op: tt.op}); got != tt.want {
			t.Errorf("isBranch(%s) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestIsInferrableJump(t *testing.T) {
	if !isInferrableJump(isa.Instruction{Op: isa.OpJal}) {
		t.Error("jal should be inferrable")
	}
	if !isInferrableJump(isa.Instruction{Op: isa.OpJalr, Rs1: 0}) {
		t.Error("jalr with rs1==0 should be inferrable")
	}
	if isInferrableJump(isa.Instruction{Op: isa.OpJalr, Rs1: 1}) {
		t.Error("jalr with rs1!=0 should not be inferrable")
	}
	if !isInferrableJump(isa.Instruction{Op: isa.OpCJ}) {
		t.Error("c.j should be inferrable")
	}
}

func TestIsUninferrableJump(t *testing.T) {
	if !isUninferrableJump(isa.Instruction{Op: isa.OpJalr, Rs1: 1}) {
		t.Error("jalr with rs1!=0 should be uninferrable")
	}
	if isUninferrableJump(isa.Instruction{Op: isa.OpJalr, Rs1: 0}) {
		t.Error("jalr with rs1==0 should not be uninferrable")
	}
	if !isUninferrableJump(isa.Instruction{Op: isa.OpCJr}) {
		t.Error("c.jr should be uninferrable")
	}
}

func TestIsUninferrableDiscontinuity(t *testing.T) {
	for _, op := range []isa.Opcode{isa.OpUret, isa.OpSret, isa.OpMret, isa.OpDret, isa.OpCJr} {
		if !isUninferrableDiscontinuity(isa.Instruction{Op: op, Rs1: 1}) {
			t.Errorf("%s should be an uninferrable discontinuity", op)
		}
	}
	// ecall/ebreak are explicitly excluded - exceptions come via packets.
	for _, op := range []isa.Opcode{isa.OpEcall, isa.OpEbreak, isa.OpCEbreak} {
		if isUninferrableDiscontinuity(isa.Instruction{Op: op}) {
			t.Errorf("%s must not be classified as a discontinuity", op)
		}
	}
}

func TestIsCallExcludesTailCalls(t *testing.T) {
	if !isCall(isa.Instruction{Op: isa.OpJal, Rd: 1}) {
		t.Error("jal with rd==1 should be a call")
	}
	if isCall(isa.Instruction{Op: isa.OpJal, Rd: 0}) {
		t.Error("jal with rd==0 is a tail call, must not push the return stack")
	}
	if !isCall(isa.Instruction{Op: isa.OpJalr, Rd: 1}) {
		t.Error("jalr with rd==1 should be a call")
	}
	if isCall(isa.Instruction{Op: isa.OpJalr, Rd: 0}) {
		t.Error("jalr with rd==0 is a tail call")
	}
	if !isCall(isa.Instruction{Op: isa.OpCJal}) {
		t.Error("c.jal is always a call")
	}
	if !isCall(isa.Instruction{Op: isa.OpCJalr}) {
		t.Error("c.jalr is always a call")
	}
}

func TestIsSequentialJump(t *testing.T) {
	jalr := isa.Instruction{Op: isa.OpJalr, Rs1: 5}
	auipc := isa.Instruction{Op: isa.OpAuipc, Rd: 5}
	lui := isa.Instruction{Op: isa.OpLui, Rd: 5}
	other := isa.Instruction{Op: isa.OpOther, Rd: 5}

	if !isSequentialJump(jalr, auipc) {
		t.Error("jalr fed by auipc into the same register should be sequential")
	}
	if !isSequentialJump(jalr, lui) {
		t.Error("jalr fed by lui into the same register should be sequential")
	}
	if isSequentialJump(jalr, other) {
		t.Error("jalr fed by a non-upper-immediate instruction should not be sequential")
	}
	mismatched := isa.Instruction{Op: isa.OpAuipc, Rd: 6}
	if isSequentialJump(jalr, mismatched) {
		t.Error("mismatched registers should not be sequential")
	}
	inferrable := isa.Instruction{Op: isa.OpJal}
	if isSequentialJump(inferrable, auipc) {
		t.Error("an inferrable jump is never classified as sequential")
	}
}

func TestIsImplicitReturn(t *testing.T) {
	ret := isa.Instruction{Op: isa.OpJalr, Rs1: 1, Rd: 0}
	if isImplicitReturn(ret, false, 1) {
		t.Error("implicit return must be disabled when ImplicitReturn is false")
	}
	if isImplicitReturn(ret, true, 0) {
		t.Error("implicit return requires a non-empty return stack")
	}
	if !isImplicitReturn(ret, true, 1) {
		t.Error("jalr ra, rd=0 with a non-empty stack should be an implicit return")
	}
	call := isa.Instruction{Op: isa.OpJalr, Rs1: 1, Rd: 1}
	if isImplicitReturn(call, true, 1) {
		t.Error("jalr with rd!=0 is a call-through-ra, not a return")
	}
	cjr := isa.Instruction{Op: isa.OpCJr, Rs1: 1}
	if !isImplicitReturn(cjr, true, 1) {
		t.Error("c.jr ra should be an implicit return")
	}
}

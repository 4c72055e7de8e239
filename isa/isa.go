// Package isa defines the collaborator boundary between the trace decoder
// and a RISC-V instruction set model. The decoder never decodes raw bytes
// itself; it calls an ISA implementation supplied by the host.
package isa

import "fmt"

// Opcode identifies the instruction forms the classifier and resolver need
// to recognize. It is not a complete RV32GC opcode table - only the forms
// that affect control-flow reconstruction are named.
type Opcode int

const (
	OpUnknown Opcode = iota

	// Branches
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu
	OpCBeqz
	OpCBnez

	// Jumps
	OpJal
	OpJalr
	OpCJal
	OpCJ
	OpCJalr
	OpCJr

	// Upper-immediate idiom instructions
	OpAuipc
	OpLui
	OpCLui

	// System-level discontinuities
	OpUret
	OpSret
	OpMret
	OpDret
	OpEcall
	OpEbreak
	OpCEbreak

	// Everything else (arithmetic, memory, etc.) retires straight through.
	OpOther
)

func (o Opcode) String() string {
	switch o {
	case OpBeq:
		return "beq"
	case OpBne:
		return "bne"
	case OpBlt:
		return "blt"
	case OpBge:
		return "bge"
	case OpBltu:
		return "bltu"
	case OpBgeu:
		return "bgeu"
	case OpCBeqz:
		return "c.beqz"
	case OpCBnez:
		return "c.bnez"
	case OpJal:
		return "jal"
	case OpJalr:
		return "jalr"
	case OpCJal:
		return "c.jal"
	case OpCJ:
		return "c.j"
	case OpCJalr:
		return "c.jalr"
	case OpCJr:
		return "c.jr"
	case OpAuipc:
		return "auipc"
	case OpLui:
		return "lui"
	case OpCLui:
		return "c.lui"
	case OpUret:
		return "uret"
	case OpSret:
		return "sret"
	case OpMret:
		return "mret"
	case OpDret:
		return "dret"
	case OpEcall:
		return "ecall"
	case OpEbreak:
		return "ebreak"
	case OpCEbreak:
		return "c.ebreak"
	case OpOther:
		return "other"
	default:
		return "unknown"
	}
}

// Instruction is the decoded record produced by an ISA implementation.
// It is immutable once produced: the same address must always decode to
// the same Instruction within a session.
type Instruction struct {
	PC     uint64
	Op     Opcode
	Rd     uint32
	Rs1    uint32
	Imm    int64
	Length uint8 // 2 or 4
	Line   string
}

// String renders "<pc>: <disassembly>" for diagnostics.
func (in Instruction) String() string {
	if in.Line == "" {
		return fmt.Sprintf("%#x: %s", in.PC, in.Op)
	}
	return fmt.Sprintf("%#x: %s", in.PC, in.Line)
}

// ISA decodes one instruction at a given address, given its raw bytes.
// Implementations must not lift pseudo-instructions (e.g. decode must
// report "jalr x0,0(x1)", not "ret") since the classifier depends on
// seeing the raw form.
type ISA interface {
	Decode(pc uint64, raw []byte, length uint8) (Instruction, error)
}

package riscv

import (
	"fmt"

	"github.com/tracepath/rvtrace/isa"
)

// 32-bit opcode field values (bits [6:0]).
const (
	opBranch = 0b1100011
	opJalr   = 0b1100111
	opJal    = 0b1101111
	opLui    = 0b0110111
	opAuipc  = 0b0010111
	opSystem = 0b1110011
)

// SYSTEM funct12 values (rd=0, rs1=0, funct3=0).
const (
	funct12Ecall  = 0x000
	funct12Ebreak = 0x001
	funct12Uret   = 0x002
	funct12Sret   = 0x102
	funct12Mret   = 0x302
	funct12Dret   = 0x7b2
)

func decode32(pc uint64, raw uint32) (isa.Instruction, error) {
	opcode := raw & 0x7f
	rd := (raw >> 7) & 0x1f
	funct3 := (raw >> 12) & 0x7
	rs1 := (raw >> 15) & 0x1f

	in := isa.Instruction{PC: pc, Length: 4, Rd: rd, Rs1: rs1}

	switch opcode {
	case opBranch:
		in.Imm = bImmediate(raw)
		switch funct3 {
		case 0b000:
			in.Op = isa.OpBeq
		case 0b001:
			in.Op = isa.OpBne
		case 0b100:
			in.Op = isa.OpBlt
		case 0b101:
			in.Op = isa.OpBge
		case 0b110:
			in.Op = isa.OpBltu
		case 0b111:
			in.Op = isa.OpBgeu
		default:
			return isa.Instruction{}, fmt.Errorf("riscv: unknown branch funct3 %#o at %#x", funct3, pc)
		}
	case opJalr:
		in.Op = isa.OpJalr
		in.Imm = iImmediate(raw)
	case opJal:
		in.Op = isa.OpJal
		in.Imm = jImmediate(raw)
	case opLui:
		in.Op = isa.OpLui
		in.Imm = int64(int32(raw & 0xfffff000))
	case opAuipc:
		in.Op = isa.OpAuipc
		in.Imm = int64(int32(raw & 0xfffff000))
	case opSystem:
		imm12 := raw >> 20
		if funct3 == 0 && rs1 == 0 && rd == 0 {
			switch imm12 {
			case funct12Ecall:
				in.Op = isa.OpEcall
			case funct12Ebreak:
				in.Op = isa.OpEbreak
			case funct12Uret:
				in.Op = isa.OpUret
			case funct12Sret:
				in.Op = isa.OpSret
			case funct12Mret:
				in.Op = isa.OpMret
			case funct12Dret:
				in.Op = isa.OpDret
			default:
				in.Op = isa.OpOther
			}
		} else {
			in.Op = isa.OpOther
		}
	default:
		in.Op = isa.OpOther
	}

	return in, nil
}

// bImmediate decodes the B-type (branch) immediate: imm[12|10:5|4:1|11], *2.
func bImmediate(raw uint32) int64 {
	imm12 := (raw >> 31) & 0x1
	imm11 := (raw >> 7) & 0x1
	imm10_5 := (raw >> 25) & 0x3f
	imm4_1 := (raw >> 8) & 0xf
	v := (imm12 << 12) | (imm11 << 11) | (imm10_5 << 5) | (imm4_1 << 1)
	return signExtend(v, 12)
}

// jImmediate decodes the J-type (JAL) immediate: imm[20|10:1|11|19:12], *2.
func jImmediate(raw uint32) int64 {
	imm20 := (raw >> 31) & 0x1
	imm19_12 := (raw >> 12) & 0xff
	imm11 := (raw >> 20) & 0x1
	imm10_1 := (raw >> 21) & 0x3ff
	v := (imm20 << 20) | (imm19_12 << 12) | (imm11 << 11) | (imm10_1 << 1)
	return signExtend(v, 20)
}

// iImmediate decodes the I-type immediate: imm[11:0].
func iImmediate(raw uint32) int64 {
	return signExtend(raw>>20, 11)
}

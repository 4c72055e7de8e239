package riscv

import (
	"github.com/tracepath/rvtrace/isa"
)

// Quadrants (bits [1:0]).
const (
	quadrant0 = 0b00
	quadrant1 = 0b01
	quadrant2 = 0b10
)

func decode16(pc uint64, raw uint16) (isa.Instruction, error) {
	quadrant := raw & 0x3
	funct3 := (raw >> 13) & 0x7

	in := isa.Instruction{PC: pc, Length: 2, Op: isa.OpOther}

	switch quadrant {
	case quadrant1:
		switch funct3 {
		case 0b001: // C.JAL (RV32 only) - implicit link to x1
			in.Op = isa.OpCJal
			in.Rd = 1
			in.Imm = cjImmediate(raw)
		case 0b101: // C.J
			in.Op = isa.OpCJ
			in.Rd = 0
			in.Imm = cjImmediate(raw)
		case 0b011: // C.LUI / C.ADDI16SP
			rd := (raw >> 7) & 0x1f
			if rd != 0 && rd != 2 {
				in.Op = isa.OpCLui
				in.Rd = uint32(rd)
				in.Imm = cluiImmediate(raw)
			}
		case 0b110: // C.BEQZ
			in.Op = isa.OpCBeqz
			in.Rs1 = compressedReg(raw, 7)
			in.Imm = cbImmediate(raw)
		case 0b111: // C.BNEZ
			in.Op = isa.OpCBnez
			in.Rs1 = compressedReg(raw, 7)
			in.Imm = cbImmediate(raw)
		}
	case quadrant2:
		if funct3 == 0b100 {
			bit12 := (raw >> 12) & 0x1
			rs1 := (raw >> 7) & 0x1f
			rs2 := (raw >> 2) & 0x1f
			switch {
			case bit12 == 0 && rs2 == 0 && rs1 != 0:
				// C.JR
				in.Op = isa.OpCJr
				in.Rs1 = uint32(rs1)
			case bit12 == 1 && rs2 == 0 && rs1 == 0:
				in.Op = isa.OpCEbreak
			case bit12 == 1 && rs2 == 0 && rs1 != 0:
				// C.JALR - implicit link to x1
				in.Op = isa.OpCJalr
				in.Rs1 = uint32(rs1)
				in.Rd = 1
			}
		}
	}

	return in, nil
}

// compressedReg maps a compact 3-bit register field (occupying x8-x15) at
// the given bit offset to its full register number.
func compressedReg(raw uint16, offset uint) uint32 {
	return uint32((raw>>offset)&0x7) + 8
}

// cjImmediate decodes the CJ-type immediate used by C.J and C.JAL:
// imm[11|4|9:8|10|6|7|3:1|5], *2.
func cjImmediate(raw uint16) int64 {
	b := func(bit uint) uint32 {
		return uint32((raw >> bit) & 0x1)
	}
	v := (b(12) << 11) |
		(b(11) << 4) |
		(uint32((raw>>9)&0x3) << 8) |
		(b(8) << 10) |
		(b(7) << 6) |
		(b(6) << 7) |
		(uint32((raw>>3)&0x7) << 1) |
		(b(2) << 5)
	return signExtend(v, 11)
}

// cbImmediate decodes the CB-type branch immediate used by C.BEQZ/C.BNEZ:
// imm[8|4:3|7:6|2:1|5], *2.
func cbImmediate(raw uint16) int64 {
	b := func(bit uint) uint32 {
		return uint32((raw >> bit) & 0x1)
	}
	v := (b(12) << 8) |
		(uint32((raw>>10)&0x3) << 3) |
		(uint32((raw>>5)&0x3) << 6) |
		(uint32((raw>>3)&0x3) << 1) |
		(b(2) << 5)
	return signExtend(v, 8)
}

// cluiImmediate decodes C.LUI's 6-bit immediate into bits [17:12],
// sign-extended from bit 17.
func cluiImmediate(raw uint16) int64 {
	imm17 := uint32((raw >> 12) & 0x1)
	imm16_12 := uint32((raw >> 2) & 0x1f)
	v := (imm17 << 17) | (imm16_12 << 12)
	return signExtend(v, 17)
}

// Package riscv is a small RV32IC instruction decoder. It exists as a
// concrete implementation of isa.ISA for tests and the rvtrace-dump
// command; the trace decoder core never imports it directly, only the
// isa.ISA interface it satisfies.
package riscv

import (
	"encoding/binary"
	"fmt"

	"github.com/tracepath/rvtrace/isa"
)

// ISA decodes RV32IC instructions. It holds no state; it is safe for
// concurrent use across harts since each hart owns its own decode cache
// in the decoder package's oracle.
type ISA struct{}

// New returns a ready-to-use RV32IC decoder.
func New() *ISA {
	return &ISA{}
}

// Decode implements isa.ISA. raw must hold at least `length` bytes.
func (ISA) Decode(pc uint64, raw []byte, length uint8) (isa.Instruction, error) {
	switch length {
	case 4:
		if len(raw) < 4 {
			return isa.Instruction{}, fmt.Errorf("riscv: short buffer for 4-byte instruction at %#x", pc)
		}
		return decode32(pc, binary.LittleEndian.Uint32(raw))
	case 2:
		if len(raw) < 2 {
			return isa.Instruction{}, fmt.Errorf("riscv: short buffer for 2-byte instruction at %#x", pc)
		}
		return decode16(pc, binary.LittleEndian.Uint16(raw))
	default:
		return isa.Instruction{}, fmt.Errorf("riscv: unsupported instruction length %d at %#x", length, pc)
	}
}

// IsCompressed reports whether the low two bits of the first halfword
// indicate a 16-bit instruction (quadrant != 3).
func IsCompressed(firstHalfword uint16) bool {
	return firstHalfword&0x3 != 0x3
}

func signExtend(v uint32, bit int) int64 {
	shift := 31 - bit
	return int64(int32(v<<uint(shift)) >> uint(shift))
}

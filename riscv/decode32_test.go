package riscv

import "testing"

func TestDecode32Jal(t *testing.T) {
	// jal x1, +6
	in, err := decode32(0x1000, 0x6000EF)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if in.Rd != 1 || in.Imm != 6 || in.Length != 4 {
		t.Errorf("got Rd=%d Imm=%d Length=%d, want Rd=1 Imm=6 Length=4", in.Rd, in.Imm, in.Length)
	}
}

func TestDecode32Beq(t *testing.T) {
	// beq x0, x0, +16
	in, err := decode32(0x2000, 0x863)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if in.Imm != 16 {
		t.Errorf("Imm = %d, want 16", in.Imm)
	}
}

func TestDecode32Jalr(t *testing.T) {
	// jalr x0, 0(x1) - the canonical `ret` shape
	in, err := decode32(0x3000, 0x8067)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if in.Rd != 0 || in.Rs1 != 1 || in.Imm != 0 {
		t.Errorf("got Rd=%d Rs1=%d Imm=%d, want Rd=0 Rs1=1 Imm=0", in.Rd, in.Rs1, in.Imm)
	}
}

func TestDecode32Lui(t *testing.T) {
	// lui x5, 0x12345
	in, err := decode32(0x4000, 0x123452B7)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if in.Rd != 5 || in.Imm != 0x12345000 {
		t.Errorf("got Rd=%d Imm=%#x, want Rd=5 Imm=%#x", in.Rd, in.Imm, 0x12345000)
	}
}

func TestDecode32Auipc(t *testing.T) {
	// auipc x6, 0x1
	in, err := decode32(0x5000, 0x1317)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if in.Rd != 6 || in.Imm != 0x1000 {
		t.Errorf("got Rd=%d Imm=%#x, want Rd=6 Imm=%#x", in.Rd, in.Imm, 0x1000)
	}
}

func TestDecode32SystemDiscontinuities(t *testing.T) {
	tests := []struct {
		name string
		raw  uint32
		want string
	}{
		{"ecall", 0x73, "ecall"},
		{"ebreak", 0x100073, "ebreak"},
		{"mret", 0x30200073, "mret"},
	}
	for _, tt := range tests {
		in, err := decode32(0x6000, tt.raw)
		if err != nil {
			t.Fatalf("%s: decode32: %v", tt.name, err)
		}
		if in.Op.String() != tt.want {
			t.Errorf("%s: got op %s, want %s", tt.name, in.Op, tt.want)
		}
	}
}

func TestDecode32UnrelatedOpcodeIsOther(t *testing.T) {
	// add x1, x2, x3 - opcode 0110011, not one of the recognized forms.
	in, err := decode32(0x7000, 0x003100B3)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if in.Op.String() != "other" {
		t.Errorf("got op %s, want other", in.Op)
	}
}

package decoder

import (
	"fmt"

	"github.com/tracepath/rvtrace/isa"
)

// fakeProgram is a tiny in-memory program image used across decoder tests.
// It doubles as both isa.ISA and Fetcher: FetchInstruction hands back a
// dummy byte slice of the right length, and Decode ignores those bytes and
// returns the pre-built Instruction registered for that address. This lets
// tests describe fixtures directly in terms of isa.Instruction fields
// instead of hand-encoding RISC-V bit patterns.
type fakeProgram struct {
	instrs map[uint64]isa.Instruction
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{instrs: make(map[uint64]isa.Instruction)}
}

func (p *fakeProgram) add(in isa.Instruction) {
	p.instrs[in.PC] = in
}

func (p *fakeProgram) FetchInstruction(address uint64) ([]byte, uint8, error) {
	in, ok := p.instrs[address]
	if !ok {
		return nil, 0, fmt.Errorf("fakeProgram: no instruction at %#x", address)
	}
	return make([]byte, in.Length), in.Length, nil
}

func (p *fakeProgram) Decode(pc uint64, raw []byte, length uint8) (isa.Instruction, error) {
	in, ok := p.instrs[pc]
	if !ok {
		return isa.Instruction{}, fmt.Errorf("fakeProgram: no instruction at %#x", pc)
	}
	return in, nil
}

// fakeRetirer records every AdvancePC call for assertion.
type fakeRetirer struct {
	events []retireEvent
}

type retireEvent struct {
	OldPC, NewPC uint64
}

func (r *fakeRetirer) AdvancePC(oldPC, newPC uint64, instr isa.Instruction) {
	r.events = append(r.events, retireEvent{OldPC: oldPC, NewPC: newPC})
}

func newTestState(cfg Config, prog *fakeProgram) (*State, *fakeRetirer) {
	rx := &fakeRetirer{}
	s := Open(cfg, prog, prog, rx)
	return s, rx
}

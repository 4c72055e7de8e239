package decoder

import (
	"fmt"

	"github.com/tracepath/rvtrace/isa"
)

// oracle wraps the host fetch callback with a direct-mapped decode cache.
// The cache slot function is explicit: (address >> iaddressLSB) & (N-1)
// for a power-of-two N. Collisions are last-writer-wins; there is no
// chaining.
type oracle struct {
	model isa.ISA
	fx    Fetcher

	slots       []isa.Instruction
	have        []bool
	mask        uint64
	iaddressLSB uint

	last     isa.Instruction
	haveLast bool

	stats CacheStats
}

func newOracle(model isa.ISA, fx Fetcher, slotCount int, iaddressLSB uint) *oracle {
	n := nextPowerOfTwo(slotCount)
	return &oracle{
		model:       model,
		fx:          fx,
		slots:       make([]isa.Instruction, n),
		have:        make([]bool, n),
		mask:        uint64(n - 1),
		iaddressLSB: iaddressLSB,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (o *oracle) slot(address uint64) uint64 {
	return (address >> o.iaddressLSB) & o.mask
}

// fetch returns the decoded instruction at address, decoding and caching
// it on a miss. It must never be called with the sentinel address.
func (o *oracle) fetch(address uint64) (isa.Instruction, error) {
	if address == sentinelPC {
		return isa.Instruction{}, &DecodeError{Kind: ErrSentinelPC, Message: "attempted to fetch the sentinel address"}
	}

	o.stats.Fetches++

	if o.haveLast && o.last.PC == address {
		o.stats.SameHits++
		return o.last, nil
	}

	idx := o.slot(address)
	if o.have[idx] && o.slots[idx].PC == address {
		o.stats.Hits++
		o.last, o.haveLast = o.slots[idx], true
		return o.slots[idx], nil
	}

	raw, length, err := o.fx.FetchInstruction(address)
	if err != nil {
		return isa.Instruction{}, fmt.Errorf("decoder: fetch instruction at %#x: %w", address, err)
	}
	if length != 2 && length != 4 {
		return isa.Instruction{}, fmt.Errorf("decoder: instruction at %#x has invalid length %d", address, length)
	}

	instr, err := o.model.Decode(address, raw, length)
	if err != nil {
		return isa.Instruction{}, fmt.Errorf("decoder: decode instruction at %#x: %w", address, err)
	}

	o.slots[idx], o.have[idx] = instr, true
	o.last, o.haveLast = instr, true
	return instr, nil
}

func sprintCacheStats(st CacheStats, same, hits float64) string {
	return fmt.Sprintf(
		"decoded-cache: same = %d (%.2f%%), hits = %d (%.2f%%), total = %d, combined hit-rate = %.2f%%",
		st.SameHits, same, st.Hits, hits, st.Fetches, same+hits,
	)
}

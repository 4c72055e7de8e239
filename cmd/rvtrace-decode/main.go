// Command rvtrace-decode replays a recorded stream of te_inst/te_support
// packets against a flat program image and, with -v, prints the
// reconstructed PC trajectory, the way Urethramancer-m68k/cmd/run68 loads a binary and
// reports the CPU's state after driving its execution loop.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/grimdork/climate"

	"github.com/tracepath/rvtrace/decoder"
	"github.com/tracepath/rvtrace/isa"
	"github.com/tracepath/rvtrace/riscv"
)

type options struct {
	PacketFile       string `short:"p" long:"packets" description:"JSON file of recorded te_inst/te_support packets" required:"true"`
	ImageFile        string `short:"i" long:"image" description:"flat binary program image" required:"true"`
	ImageBase        uint64 `short:"b" long:"base" description:"load address of the program image" default:"0"`
	CallCounterWidth uint   `long:"call-counter-width" description:"return-stack width parameter" default:"7"`
	IaddressLSB      uint   `long:"iaddress-lsb" description:"address left-shift applied to reported addresses" default:"1"`
	FullAddress      bool   `long:"full-address" description:"packets report absolute (not differential) addresses"`
	ImplicitReturn   bool   `long:"implicit-return" description:"enable return-stack inference for implicit returns"`
	Verbose          bool   `short:"v" long:"verbose" description:"log every PC transition"`
}

func main() {
	log.SetFlags(0)

	var opt options
	if _, err := climate.Parse(&opt); err != nil {
		log.Fatalf("argument error: %v", err)
	}

	image, err := os.ReadFile(opt.ImageFile)
	if err != nil {
		log.Fatalf("reading image %s: %v", opt.ImageFile, err)
	}

	trace, err := loadTrace(opt.PacketFile)
	if err != nil {
		log.Fatalf("reading packet stream %s: %v", opt.PacketFile, err)
	}

	fetcher := &flatImage{base: opt.ImageBase, bytes: image}
	retirer := &consoleRetirer{verbose: opt.Verbose}

	cfg := decoder.Config{
		CallCounterWidth: opt.CallCounterWidth,
		IaddressLSB:      opt.IaddressLSB,
		FullAddress:      opt.FullAddress,
		ImplicitReturn:   opt.ImplicitReturn,
	}
	state := decoder.Open(cfg, riscv.New(), fetcher, retirer)

	for i, rec := range trace.Records {
		var procErr error
		switch {
		case rec.Inst != nil:
			procErr = state.ProcessTraceInstruction(*rec.Inst)
		case rec.Support != nil:
			procErr = state.ProcessTraceSupport(*rec.Support)
		default:
			log.Fatalf("record %d: neither te_inst nor te_support present", i)
		}
		if procErr != nil {
			log.Printf("decode stopped at record %d after %d retirements", i, retirer.count)
			log.Fatal(procErr)
		}
	}

	state.PrintCacheStatistics()
}

// flatImage implements decoder.Fetcher over a loaded program image.
type flatImage struct {
	base  uint64
	bytes []byte
}

func (f *flatImage) FetchInstruction(address uint64) ([]byte, uint8, error) {
	if address < f.base || address-f.base >= uint64(len(f.bytes)) {
		return nil, 0, fmt.Errorf("address %#x outside image [%#x, %#x)", address, f.base, f.base+uint64(len(f.bytes)))
	}
	off := address - f.base
	if off+2 > uint64(len(f.bytes)) {
		return nil, 0, fmt.Errorf("address %#x: image truncated", address)
	}
	length := uint8(4)
	if riscv.IsCompressed(uint16(f.bytes[off]) | uint16(f.bytes[off+1])<<8) {
		length = 2
	}
	if off+uint64(length) > uint64(len(f.bytes)) {
		return nil, 0, fmt.Errorf("address %#x: instruction runs past end of image", address)
	}
	return f.bytes[off : off+uint64(length)], length, nil
}

// consoleRetirer implements decoder.Retirer, counting every PC transition
// and printing each one when verbose is set.
type consoleRetirer struct {
	verbose bool
	count   int
}

func (c *consoleRetirer) AdvancePC(oldPC, newPC uint64, instr isa.Instruction) {
	c.count++
	if c.verbose {
		fmt.Printf("%8d  %#010x -> %#010x  %s\n", c.count, oldPC, newPC, instr)
	}
}

type traceRecord struct {
	Inst    *decoder.TraceInstruction `json:"te_inst,omitempty"`
	Support *decoder.TraceSupport     `json:"te_support,omitempty"`
}

type traceFile struct {
	Records []traceRecord `json:"records"`
}

func loadTrace(path string) (*traceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t traceFile
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &t, nil
}

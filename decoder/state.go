package decoder

import "github.com/tracepath/rvtrace/isa"

// sentinelPC marks "no valid PC yet". Any attempt to fetch, compare, or
// disseminate this value once start_of_trace has cleared is a bug.
const sentinelPC uint64 = 0x00badadd

// Logger is the optional host-supplied debug sink. A nil Logger is
// treated as a no-op.
type Logger interface {
	Logf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Logf(string, ...any) {}

// Config holds the discovery parameters, supplied per instance so
// multiple harts can decode with different parameters in the same
// process.
type Config struct {
	// CallCounterWidth sizes the return stack: capacity = 1 << (width+2).
	CallCounterWidth uint
	// IaddressLSB is the left-shift applied to every reported address.
	// Use 1 when compressed instructions are supported.
	IaddressLSB uint
	// FullAddress: reported addresses are absolute when true, differential
	// (accumulated) when false.
	FullAddress bool
	// ImplicitReturn enables return-stack inference for bare `ret`-shaped
	// jalr/c.jr instructions.
	ImplicitReturn bool
	// MaxSupportWalkSteps bounds the ENDED_NTR forward walk. Zero means
	// use the default of 1<<20.
	MaxSupportWalkSteps int
	// CacheSlots is the size of the direct-mapped decode cache, rounded up
	// to the next power of two. Zero means use the default of 1024.
	CacheSlots int
	// Logger receives optional diagnostic messages. Nil means discard.
	Logger Logger
}

func (c Config) callCounterMax() int {
	return 1 << (c.CallCounterWidth + 2)
}

func (c Config) maxSupportWalkSteps() int {
	if c.MaxSupportWalkSteps <= 0 {
		return 1 << 20
	}
	return c.MaxSupportWalkSteps
}

func (c Config) cacheSlots() int {
	if c.CacheSlots <= 0 {
		return 1024
	}
	return c.CacheSlots
}

// Fetcher reads the traced program image: a host-supplied downcall that
// resolves an address to its raw instruction bytes and length.
type Fetcher interface {
	FetchInstruction(address uint64) (raw []byte, length uint8, err error)
}

// Retirer receives one call per retired instruction, in program order.
type Retirer interface {
	AdvancePC(oldPC, newPC uint64, instr isa.Instruction)
}

// State is the mutable register set of a single-hart trace decoder,
// plus its owned decode cache and return stack.
type State struct {
	cfg Config
	isa isa.ISA
	fx  Fetcher
	rx  Retirer
	log Logger

	oracle *oracle
	stack  *returnStack

	pc               uint64
	lastPC           uint64
	address          uint64
	branches         uint
	branchMap        uint32
	stopAtLastBranch bool
	inferredAddress  bool
	startOfTrace     bool
	instructionCount uint64
}

// Open constructs a new State with its PC sentinels set and the trace
// marked as not yet started. One State tracks exactly one hart.
func Open(cfg Config, model isa.ISA, fetcher Fetcher, retirer Retirer) *State {
	lg := cfg.Logger
	if lg == nil {
		lg = noopLogger{}
	}
	s := &State{
		cfg:          cfg,
		isa:          model,
		fx:           fetcher,
		rx:           retirer,
		log:          lg,
		oracle:       newOracle(model, fetcher, cfg.cacheSlots(), cfg.IaddressLSB),
		stack:        newReturnStack(cfg.callCounterMax()),
		pc:           sentinelPC,
		lastPC:       sentinelPC,
		address:      sentinelPC,
		startOfTrace: true,
	}
	return s
}

// CacheStats exposes the Oracle's fetch statistics for diagnostics.
type CacheStats struct {
	Fetches  uint64
	SameHits uint64
	Hits     uint64
}

// Stats returns a snapshot of the decode cache statistics.
func (s *State) Stats() CacheStats {
	return s.oracle.stats
}

// FormatCacheStatistics renders Stats() as a human-readable summary,
// guarding the zero-fetch case.
func (s *State) FormatCacheStatistics() string {
	st := s.Stats()
	if st.Fetches == 0 {
		return "decoded-cache: no fetches yet"
	}
	same := float64(st.SameHits) * 100.0 / float64(st.Fetches)
	hits := float64(st.Hits) * 100.0 / float64(st.Fetches)
	return sprintCacheStats(st, same, hits)
}

// PrintCacheStatistics logs the decode cache statistics through the
// configured Logger.
func (s *State) PrintCacheStatistics() {
	s.log.Logf("%s", s.FormatCacheStatistics())
}

// PC returns the current reconstructed program counter.
func (s *State) PC() uint64 { return s.pc }

// CallDepth returns the current depth of the return stack.
func (s *State) CallDepth() int { return s.stack.depth() }

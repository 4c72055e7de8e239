package decoder

import (
	"fmt"

	"github.com/tracepath/rvtrace/isa"
)

// Kind enumerates the unrecoverable-error taxonomy. Every condition in
// this taxonomy indicates a bug, a corrupted packet stream, or a
// protocol mismatch with the encoder - there is no recovery short of
// discarding this State and opening a new one from a format-3 packet.
type Kind int

const (
	_ Kind = iota
	// ErrBranchMapDepleted: a branch needed a bit but branches==0.
	ErrBranchMapDepleted
	// ErrUnexpectedDiscontinuity: rule 4 fired while stop_at_last_branch was
	// set, or the walk used up every pending branch with it still set.
	ErrUnexpectedDiscontinuity
	// ErrUnprocessedBranches: walk stopped at a reported address with
	// too many pending branch bits still outstanding.
	ErrUnprocessedBranches
	// ErrBeforeFirstSync: a format 0/1/2 packet arrived before the first
	// format-3 resync packet.
	ErrBeforeFirstSync
	// ErrSentinelPC: the sentinel "no PC yet" value was used as a real address.
	ErrSentinelPC
	// ErrReturnStackUnderflow: pop was attempted with call_counter==0.
	ErrReturnStackUnderflow
	// ErrSupportWalkBudget: the ENDED_NTR forward walk exceeded its step
	// budget without revisiting the pre-walk address.
	ErrSupportWalkBudget
)

func (k Kind) String() string {
	switch k {
	case ErrBranchMapDepleted:
		return "branch-map depleted"
	case ErrUnexpectedDiscontinuity:
		return "unexpected uninferrable discontinuity"
	case ErrUnprocessedBranches:
		return "unprocessed branches at stop"
	case ErrBeforeFirstSync:
		return "non-resync packet before first format-3"
	case ErrSentinelPC:
		return "sentinel PC misuse"
	case ErrReturnStackUnderflow:
		return "return stack underflow"
	case ErrSupportWalkBudget:
		return "support-walk step budget exceeded"
	default:
		return "unknown decoder error"
	}
}

// DecodeError reports an unrecoverable condition in the path follower or
// session dispatch: the condition and the offending instruction, then
// stop. The instruction field is the zero value when the error is not
// instruction-specific (e.g. ErrBeforeFirstSync).
type DecodeError struct {
	Kind    Kind
	Instr   isa.Instruction
	Message string
}

func (e *DecodeError) Error() string {
	if e.Instr.Op == isa.OpUnknown && e.Instr.PC == 0 {
		return fmt.Sprintf("decoder: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("decoder: %s: %s (at %s)", e.Kind, e.Message, e.Instr)
}

func newError(kind Kind, instr isa.Instruction, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Instr: instr, Message: fmt.Sprintf(format, args...)}
}

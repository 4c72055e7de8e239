package decoder

// TraceInstruction is the logical layout of a trace instruction packet.
// Bit-level transport framing is out of scope for the core; a transport
// implementation decodes its wire format into this struct before calling
// State.ProcessTraceInstruction.
type TraceInstruction struct {
	// Format is the 2-bit packet kind: 0/1/2 are incremental updates, 3 is
	// a resync (absolute PC with Subformat).
	Format uint8
	// Subformat is only meaningful when Format == 3.
	Subformat uint8
	// Branches is the 6-bit pending-branch count. Zero is the special
	// "31 pending, or depleted" sentinel in format-1 packets.
	Branches uint8
	// Branch is a single bit used in format-3 packets when the target
	// instruction is itself a branch.
	Branch uint8
	// BranchMap holds up to 31 pending taken/not-taken bits, LSB earliest.
	BranchMap uint32
	// Address is the packet's raw address field, before the
	// Config.IaddressLSB shift and before differential accumulation.
	Address uint64
	// Updiscon is the encoder's hint bit used to disambiguate whether a
	// reported address is a first or second occurrence on the walked path.
	Updiscon bool
}

// QualStatus enumerates trace support qualification states.
type QualStatus int

const (
	QualNoChange QualStatus = iota
	QualEndedRep
	QualEndedNTR
)

// TraceSupport is the logical layout of a te_support packet.
type TraceSupport struct {
	SupportType int
	QualStatus  QualStatus
}

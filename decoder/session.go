package decoder

import "github.com/tracepath/rvtrace/isa"

// ProcessTraceInstruction interprets one trace instruction packet and
// drives the path follower forward. Format 3 packets resynchronize the
// decoder from an absolute address; formats 0/1/2 are incremental and
// must never precede the first format-3 packet.
func (s *State) ProcessTraceInstruction(pkt TraceInstruction) error {
	if pkt.Format == 3 {
		return s.processResync(pkt)
	}
	return s.processIncremental(pkt)
}

func (s *State) processResync(pkt TraceInstruction) error {
	s.inferredAddress = false
	s.address = pkt.Address << s.cfg.IaddressLSB

	if pkt.Subformat == 1 || s.startOfTrace {
		s.branches = 0
		s.branchMap = 0
	}

	target, err := s.oracle.fetch(s.address)
	if err != nil {
		return err
	}
	if isBranch(target) {
		s.branchMap |= uint32(pkt.Branch) << s.branches
		s.branches++
	}

	if pkt.Subformat == 0 && !s.startOfTrace {
		if err := s.followExecutionPath(s.address, pkt.Address, 3, pkt.Updiscon); err != nil {
			return err
		}
	} else {
		// First-ever PC, or resync-after-resume: disseminate directly,
		// then re-pin last_pc to the fresh PC so the sequential-jump
		// predicate cannot spuriously fire on stale state next step.
		s.lastPC = s.pc
		s.pc = s.address
		if err := s.disseminatePC(); err != nil {
			return err
		}
		s.lastPC = s.pc
	}

	s.startOfTrace = false
	s.stack.reset()
	return nil
}

func (s *State) processIncremental(pkt TraceInstruction) error {
	if s.startOfTrace {
		return newError(ErrBeforeFirstSync, isa.Instruction{}, "expecting trace to start with a format-3 message")
	}

	if pkt.Format == 2 || pkt.Branches != 0 {
		s.stopAtLastBranch = false
		if s.cfg.FullAddress {
			s.address = pkt.Address << s.cfg.IaddressLSB
		} else {
			s.address += pkt.Address << s.cfg.IaddressLSB
		}
	}

	if pkt.Format == 1 {
		s.stopAtLastBranch = pkt.Branches == 0
		s.branchMap |= pkt.BranchMap << s.branches
		if pkt.Branches == 0 {
			s.branches += 31
		} else {
			s.branches += uint(pkt.Branches)
		}
	}

	return s.followExecutionPath(s.address, pkt.Address, pkt.Format, pkt.Updiscon)
}

// ProcessTraceSupport applies a qualification-status update. On
// ENDED_NTR/ENDED_REP the decoder expects a fresh format-3 packet to
// restart the trace. An ENDED_NTR that interrupts a pending
// ambiguous-address walk has no further packet to resolve it against, so
// the decoder walks forward on its own until the PC revisits the
// pre-walk address, bounded by Config.MaxSupportWalkSteps.
func (s *State) ProcessTraceSupport(pkt TraceSupport) error {
	if pkt.QualStatus == QualEndedNTR || pkt.QualStatus == QualEndedRep {
		s.startOfTrace = true
	}

	if pkt.QualStatus == QualEndedNTR && s.inferredAddress {
		previousAddress := s.pc
		s.inferredAddress = false
		budget := s.cfg.maxSupportWalkSteps()
		for step := 0; ; step++ {
			if step >= budget {
				return newError(ErrSupportWalkBudget, isa.Instruction{},
					"ENDED_NTR forward walk exceeded %d steps without revisiting %#x", budget, previousAddress)
			}
			if err := s.nextPC(previousAddress); err != nil {
				return err
			}
			if s.pc == previousAddress {
				return nil
			}
		}
	}
	return nil
}


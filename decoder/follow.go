package decoder

import "github.com/tracepath/rvtrace/isa"

// consumeBranch resolves the taken/not-taken outcome of a branch
// instruction against the pending branch map: bit 0 is the not-taken
// indicator, so taken = !(branchMap & 1); the map shifts right by one bit
// and the pending count decrements. Resolving a branch with no pending
// bits is branch-map depletion - an unrecoverable error.
func (s *State) consumeBranch(in isa.Instruction) (taken bool, err error) {
	if s.branches == 0 {
		return false, newError(ErrBranchMapDepleted, in, "cannot resolve branch, branch map is empty")
	}
	taken = s.branchMap&1 == 0
	s.branchMap >>= 1
	s.branches--
	return taken, nil
}

// nextPC fetches the instruction at the current PC, computes the new PC
// by priority among the resolver's outcome kinds, updates the return
// stack and lastPC, and disseminates the retirement. address is the
// packet's currently reported address, used only when an uninferrable
// discontinuity must jump to it.
func (s *State) nextPC(address uint64) error {
	thisPC := s.pc

	in, err := s.oracle.fetch(s.pc)
	if err != nil {
		return err
	}

	prev := isa.Instruction{}
	if s.lastPC != sentinelPC {
		prev, err = s.oracle.fetch(s.lastPC)
		if err != nil {
			return err
		}
	}

	out := resolve(in, prev, s.cfg.ImplicitReturn, s.stack.depth())

	switch out.kind {
	case outcomeInferrableJump, outcomeSequentialJump:
		s.pc = out.target

	case outcomeImplicitReturn:
		target, err := s.stack.pop()
		if err != nil {
			return err
		}
		s.pc = target

	case outcomeUninferrable:
		if s.stopAtLastBranch {
			return newError(ErrUnexpectedDiscontinuity, in, "unexpected uninferrable discontinuity")
		}
		s.pc = address

	case outcomeNone:
		if isBranch(in) {
			taken, err := s.consumeBranch(in)
			if err != nil {
				return err
			}
			if taken {
				s.pc = uint64(int64(in.PC) + in.Imm)
			} else {
				s.pc = in.PC + uint64(in.Length)
			}
		} else {
			s.pc = in.PC + uint64(in.Length)
		}
	}

	if isCall(in) {
		link := thisPC + uint64(in.Length)
		s.stack.push(link)
	}

	s.lastPC = thisPC
	return s.disseminatePC()
}

// disseminatePC is the single chokepoint through which every PC
// transition flows: it decodes the instruction at the new PC and
// notifies the host via AdvancePC, then advances the retirement counter.
func (s *State) disseminatePC() error {
	if s.pc == sentinelPC {
		return &DecodeError{Kind: ErrSentinelPC, Message: "attempted to disseminate the sentinel PC"}
	}

	instr, err := s.oracle.fetch(s.pc)
	if err != nil {
		return err
	}

	s.log.Logf("set_pc %#x -> %#x\t%d", s.lastPC, s.pc, s.instructionCount)
	s.rx.AdvancePC(s.lastPC, s.pc, instr)
	s.instructionCount++
	return nil
}

// branchPendingCount returns 1 if the instruction at the given address is
// itself a branch, else 0 - the "is_branch(...) ? 1 : 0" idiom used
// throughout followExecutionPath's stopping conditions.
func (s *State) branchPendingCount(address uint64) (int, error) {
	in, err := s.oracle.fetch(address)
	if err != nil {
		return 0, err
	}
	if isBranch(in) {
		return 1, nil
	}
	return 0, nil
}

// followExecutionPath drives nextPC forward until one of its stopping
// conditions fires. It is called once per trace instruction packet
// (after the packet's own bookkeeping) with the packet's reported
// address (already shifted and accumulated into s.address), the packet's
// raw, unshifted address field (the updiscon/MSB comparison is made
// against this wire-width field, not the resolved address), the packet
// format, and its updiscon bit.
func (s *State) followExecutionPath(address, rawAddress uint64, format uint8, updiscon bool) error {
	previousAddress := s.pc

	for {
		in, err := s.oracle.fetch(s.pc)
		if err != nil {
			return err
		}

		if s.stopAtLastBranch && s.branches == 0 {
			return newError(ErrUnexpectedDiscontinuity, in, "walked past the last branch with stop_at_last_branch set")
		}

		if s.inferredAddress {
			if err := s.nextPC(previousAddress); err != nil {
				return err
			}
			if s.pc == previousAddress {
				s.inferredAddress = false
			}
			continue
		}

		if err := s.nextPC(address); err != nil {
			return err
		}

		cur, err := s.oracle.fetch(s.pc)
		if err != nil {
			return err
		}

		if s.branches == 1 && isBranch(cur) && s.stopAtLastBranch {
			// Reached the final pending branch; its outcome may be
			// encoded by the next packet, so do not retire it yet.
			s.stopAtLastBranch = false
			return nil
		}

		// last_pc now names the instruction we just stepped from (nextPC
		// sets it to thisPC); if that instruction was an uninferrable
		// discontinuity and we landed exactly on the reported address,
		// the packet was emitted because of it.
		lastInstr, err := s.oracle.fetch(s.lastPC)
		hadUninferrableDiscontinuityAtLastPC := err == nil && isUninferrableDiscontinuity(lastInstr)

		if s.pc == address && hadUninferrableDiscontinuityAtLastPC {
			pending, err := s.branchPendingCount(s.pc)
			if err != nil {
				return err
			}
			if int(s.branches) > pending {
				return newError(ErrUnprocessedBranches, cur, "unprocessed branches at uninferrable-discontinuity stop")
			}
			return nil
		}

		pending, err := s.branchPendingCount(s.pc)
		if err != nil {
			return err
		}

		if format != 3 && s.pc == address && updiscon == msb64(rawAddress) && int(s.branches) == pending {
			// The reported address may legitimately be visited twice
			// on this walked path; wait for the next packet to confirm
			// which occurrence was meant.
			s.inferredAddress = true
			return nil
		}

		if format == 3 && s.pc == address && int(s.branches) == pending {
			return nil
		}
	}
}

// msb64 reports whether v's sign bit is set, used to disambiguate which
// occurrence of a repeated address a packet refers to.
func msb64(v uint64) bool {
	return v>>63 == 1
}

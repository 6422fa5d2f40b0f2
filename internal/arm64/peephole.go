package arm64

// PeepholeStats counts what the peephole pass found, so callers (and
// tests) can assert it actually did something rather than silently
// no-op on input it should have improved.
type PeepholeStats struct {
	PairsCombined         int
	RedundantMovesRemoved int
}

// runPeephole returns a rewritten copy of insts after two local passes:
// combine an adjacent same-base load (or store) pair into LDP/STP, and
// drop a MOV/FMOV whose source and destination are the same register. A
// small fixed set of single-pass, no-lookahead-beyond-one-neighbor
// rewrites over the final VCode list.
func runPeephole(insts []*instruction) ([]*instruction, PeepholeStats) {
	var stats PeepholeStats
	insts, stats.RedundantMovesRemoved = elideRedundantMoves(insts)
	insts, stats.PairsCombined = combineLoadStorePairs(insts)
	return insts, stats
}

// elideRedundantMoves drops any MOV/FMOV whose destination equals its
// source; such a move defines nothing new and costs an instruction slot
// for free once emitted by straight-line lowering (e.g. a block-argument
// copy to the same register the value already lives in).
func elideRedundantMoves(insts []*instruction) ([]*instruction, int) {
	out := insts[:0:0]
	removed := 0
	for _, i := range insts {
		if isIdentityMove(i) {
			removed++
			continue
		}
		out = append(out, i)
	}
	return out, removed
}

func isIdentityMove(i *instruction) bool {
	switch i.kind {
	case kindMovReg:
		return i.rd == i.rn
	case kindFpuMov:
		return i.imm == 0 && i.rd == i.rn
	default:
		return false
	}
}

// combineLoadStorePairs merges two adjacent loads (or two adjacent
// stores) of the same width to/from the same base register at
// consecutive scaled offsets into one LDP/STP, halving the instruction
// count for the common struct-field or spill-slot access pattern.
func combineLoadStorePairs(insts []*instruction) ([]*instruction, int) {
	var out []*instruction
	combined := 0
	for idx := 0; idx < len(insts); idx++ {
		cur := insts[idx]
		if idx+1 < len(insts) {
			next := insts[idx+1]
			if merged, ok := tryCombine(cur, next); ok {
				out = append(out, merged)
				combined++
				idx++ // consumed next too
				continue
			}
		}
		out = append(out, cur)
	}
	return out, combined
}

func tryCombine(a, b *instruction) (*instruction, bool) {
	if a.kind != b.kind {
		return nil, false
	}
	if a.kind != kindLoad && a.kind != kindStore {
		return nil, false
	}
	if a.amode.kind != addressModeRegUnsignedImm12 || b.amode.kind != addressModeRegUnsignedImm12 {
		return nil, false
	}
	if a.amode.rn != b.amode.rn || a.size != b.size || a.imm2 != b.imm2 {
		return nil, false
	}
	width := a.imm2
	if b.amode.imm != a.amode.imm+width/8 {
		return nil, false
	}
	// LDP/STP hold a 7-bit signed offset scaled by the access size, so
	// offsets past 63 elements cannot be paired.
	if a.amode.imm%(width/8) != 0 || a.amode.imm/(width/8) > 63 {
		return nil, false
	}
	if a.kind == kindLoad {
		// A write to a.rd must not feed the address register or be read
		// again by b before it is superseded; safe here because the
		// addresses are both relative to amode.rn, never a.rd/b.rd.
		if a.rd == a.amode.rn || b.rd == b.amode.rn {
			return nil, false
		}
		merged := newInst(kindLoadPair)
		merged.size, merged.rd, merged.rn, merged.amode = a.size, a.rd, b.rd, a.amode
		return merged, true
	}
	merged := newInst(kindStorePair)
	merged.size, merged.rd, merged.rn, merged.amode = a.size, a.rd, b.rd, a.amode
	return merged, true
}

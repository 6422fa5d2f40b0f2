package arm64

import "github.com/archlift/aarch64be/internal/regalloc"

// emitPrologue synthesizes the function-entry instruction sequence for
// layout. When layout.UsesFramePointer is false (a leaf function with a
// small enough frame, invariant 3), SP is adjusted directly and
// callee-saves are addressed off SP; otherwise FP/LR are saved first and
// everything below is addressed off the newly established FP.
func emitPrologue(layout FrameLayout) []*instruction {
	frameSize := layout.FrameSize()

	if !layout.UsesFramePointer() {
		var insts []*instruction
		if frameSize > 0 {
			insts = append(insts, emitSpAdjust(frameSize, true)...)
		}
		insts = append(insts, saveCalleeSaved(layout, spVReg, 0)...)
		return insts
	}

	var insts []*instruction

	// STP FP,LR,[SP,#-frameSize]! : allocate the whole frame and save the
	// FP/LR pair in the same instruction, establishing invariant 2.
	insts = append(insts, AsStorePair(size64, fpVReg, lrVReg, addressMode{
		kind: addressModePreIndex, rn: spVReg, imm: -frameSize,
	}))

	// MOV FP,SP : the new frame pointer addresses the just-saved pair (invariant 4).
	insts = append(insts, AsMovSp(size64, Writable(fpVReg), spVReg))

	offset := int64(16) // past the FP/LR slot
	insts = append(insts, saveCalleeSaved(layout, fpVReg, offset)...)

	if layout.HasDynamicAlloca {
		insts = append(insts, AsMovSp(size64, Writable(x19VReg), spVReg))
	}

	return insts
}

// emitEpilogue synthesizes the matching function-exit sequence: restore
// callee-saved registers, tear down the frame (restoring FP/LR first if
// they were saved), and return. Always mirrors emitPrologue's save order
// in reverse so every LDP pairs with the STP that produced it.
func emitEpilogue(layout FrameLayout) []*instruction {
	frameSize := layout.FrameSize()

	if !layout.UsesFramePointer() {
		insts := restoreCalleeSaved(layout, spVReg, 0)
		if frameSize > 0 {
			insts = append(insts, emitSpAdjust(frameSize, false)...)
		}
		insts = append(insts, AsRet(lrVReg))
		return insts
	}

	offset := int64(16)
	insts := restoreCalleeSaved(layout, fpVReg, offset)

	insts = append(insts, AsLoadPair(size64, Writable(fpVReg), Writable(lrVReg), addressMode{
		kind: addressModePostIndex, rn: spVReg, imm: frameSize,
	}))
	insts = append(insts, AsRet(lrVReg))
	return insts
}

// emitSpAdjust materializes a constant SP adjustment (subtracting in the
// prologue, adding back in the epilogue) via the immediate ADD/SUB form.
// FP-elided frames stay within the 4096-byte bound UsesFramePointer
// enforces, which always fits in imm12 or imm12<<12; larger frames go
// through the always-FP path's STP/LDP pre/post-index instead.
func emitSpAdjust(delta int64, sub bool) []*instruction {
	imm12, shift12 := uint16(delta), false
	if delta > 0xfff {
		imm12, shift12 = uint16(delta>>12), true
	}
	if sub {
		return []*instruction{AsSubImm(size64, Writable(spVReg), spVReg, imm12, shift12)}
	}
	return []*instruction{AsAddImm(size64, Writable(spVReg), spVReg, imm12, shift12)}
}

// saveCalleeSaved emits STP/STR for every register layout reserves,
// relative to base (FP when the frame pointer is established, SP
// otherwise), pairing two at a time and falling back to a single STR
// (with the partner slot left unused) when the count is odd (invariant 3).
func saveCalleeSaved(layout FrameLayout, base regalloc.VReg, offset int64) []*instruction {
	var insts []*instruction
	offset = emitPairedStores(&insts, layout.CalleeSavedInt, intVReg, base, size64, offset)
	emitPairedStores(&insts, layout.CalleeSavedFloat, floatVReg, base, size64, offset)
	return insts
}

func restoreCalleeSaved(layout FrameLayout, base regalloc.VReg, offset int64) []*instruction {
	var insts []*instruction
	offset = emitPairedLoads(&insts, layout.CalleeSavedInt, intVReg, base, size64, offset)
	emitPairedLoads(&insts, layout.CalleeSavedFloat, floatVReg, base, size64, offset)
	return insts
}

func emitPairedStores(insts *[]*instruction, regs []regalloc.RealReg, toVReg func(regalloc.RealReg) regalloc.VReg, base regalloc.VReg, size OperandSize, offset int64) int64 {
	i := 0
	for ; i+1 < len(regs); i += 2 {
		*insts = append(*insts, AsStorePair(size, toVReg(regs[i]), toVReg(regs[i+1]), addressMode{
			kind: addressModeRegUnsignedImm12, rn: base, imm: offset,
		}))
		offset += 16
	}
	if i < len(regs) {
		*insts = append(*insts, AsStore(size, toVReg(regs[i]), addressMode{
			kind: addressModeRegUnsignedImm12, rn: base, imm: offset,
		}, widthBits(size)))
		offset += 16
	}
	return offset
}

func emitPairedLoads(insts *[]*instruction, regs []regalloc.RealReg, toVReg func(regalloc.RealReg) regalloc.VReg, base regalloc.VReg, size OperandSize, offset int64) int64 {
	i := 0
	for ; i+1 < len(regs); i += 2 {
		*insts = append(*insts, AsLoadPair(size, Writable(toVReg(regs[i])), Writable(toVReg(regs[i+1])), addressMode{
			kind: addressModeRegUnsignedImm12, rn: base, imm: offset,
		}))
		offset += 16
	}
	if i < len(regs) {
		*insts = append(*insts, AsLoad(size, Writable(toVReg(regs[i])), addressMode{
			kind: addressModeRegUnsignedImm12, rn: base, imm: offset,
		}, widthBits(size), false))
		offset += 16
	}
	return offset
}

package arm64

import "github.com/archlift/aarch64be/internal/regalloc"

// legalizeAddr chooses and, if necessary, legalizes the addressing mode
// for a load/store of the given access width at base+offset: the scaled
// unsigned-12-bit immediate form covers the common case; an offset that
// doesn't fit it (too large, negative, or not a multiple of the access
// size) but lies in -256..255 uses the unscaled signed 9-bit form with no
// extra instructions; any other offset is materialized into the reserved
// scratch register (X16) via
// ADD/SUB or MOVZ+MOVK, and the access becomes a zero-offset
// unsigned-imm12 access off that scratch register.
//
// The IR only ever presents a base value plus a constant offset (see
// ir.Function.Load/Store), so this always resolves to one of the two
// immediate-offset forms; it never needs the register-offset
// (addressModeRegReg and friends) encodings encodeLoadStore also
// supports for a base+index addressing mode no current IR op produces.
func legalizeAddr(base regalloc.VReg, offset int64, accessBits byte) (addressMode, []*instruction) {
	scale := int64(accessBits / 8)
	if offset >= 0 && offset%scale == 0 && (offset/scale) <= 0xfff {
		return addressMode{kind: addressModeRegUnsignedImm12, rn: base, imm: offset}, nil
	}

	var insts []*instruction
	tmp := Writable(tmpRegVReg)
	if offset >= -256 && offset <= 255 {
		// Still fits the unscaled signed 9-bit form; no materialization needed.
		return addressMode{kind: addressModeRegUnscaledImm9, rn: base, imm: offset}, nil
	}
	if offset >= 0 && offset <= 0xfff {
		insts = append(insts, AsAddImm(size64, tmp, base, uint16(offset), false))
	} else if offset < 0 && -offset <= 0xfff {
		insts = append(insts, AsSubImm(size64, tmp, base, uint16(-offset), false))
	} else {
		insts = append(insts, materializeConst(size64, tmp, uint64(offset))...)
		insts = append(insts, AsAdd(size64, tmp, tmpRegVReg, base))
	}
	return addressMode{kind: addressModeRegUnsignedImm12, rn: tmpRegVReg, imm: 0}, insts
}

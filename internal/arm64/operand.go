package arm64

import "github.com/archlift/aarch64be/internal/ir"

// OperandSize is the two-valued width selector: size32 controls the W
// (32-bit) view of a register and most data-processing forms' bitfield
// widths, size64 the X (64-bit) view and the sf bit.
type OperandSize bool

const (
	size32 OperandSize = false
	size64 OperandSize = true
)

// is64 reports the sf bit value for this size.
func (s OperandSize) is64() bool { return bool(s) }

// widthBits returns the register width in bits this size selects: 32 or 64.
func widthBits(s OperandSize) byte {
	if s.is64() {
		return 64
	}
	return 32
}

// sizeOf derives the OperandSize of an ir.Type for data-processing lowering.
func sizeOf(t ir.Type) OperandSize {
	switch t {
	case ir.TypeI32, ir.TypeF32:
		return size32
	case ir.TypeI64, ir.TypeF64:
		return size64
	default:
		panic("arm64: type has no OperandSize: " + t.String())
	}
}

// shiftOp is the register-shift operator, values matching the AArch64
// encoding directly: LSL=00, LSR=01, ASR=10, ROR=11.
type shiftOp byte

const (
	shiftOpLSL shiftOp = 0b00
	shiftOpLSR shiftOp = 0b01
	shiftOpASR shiftOp = 0b10
	shiftOpROR shiftOp = 0b11
)

func (s shiftOp) String() string {
	switch s {
	case shiftOpLSL:
		return "lsl"
	case shiftOpLSR:
		return "lsr"
	case shiftOpASR:
		return "asr"
	case shiftOpROR:
		return "ror"
	default:
		panic("arm64: invalid shiftOp")
	}
}

// extendOp is the register-extend operator for extended-register
// data-processing and load/store-register-offset forms. Values match the
// AArch64 encoding: UXTB=000 ... SXTX=111.
type extendOp byte

const (
	extendOpUXTB extendOp = iota
	extendOpUXTH
	extendOpUXTW
	extendOpUXTX
	extendOpSXTB
	extendOpSXTH
	extendOpSXTW
	extendOpSXTX
	extendOpNone = extendOpUXTX // alias used where "no extend" (plain LSL) is selected.
)

func (e extendOp) String() string {
	switch e {
	case extendOpUXTB:
		return "uxtb"
	case extendOpUXTH:
		return "uxth"
	case extendOpUXTW:
		return "uxtw"
	case extendOpUXTX:
		return "uxtx"
	case extendOpSXTB:
		return "sxtb"
	case extendOpSXTH:
		return "sxth"
	case extendOpSXTW:
		return "sxtw"
	case extendOpSXTX:
		return "sxtx"
	default:
		panic("arm64: invalid extendOp")
	}
}

// signedExtendFromSize returns the SXT{B,H,W} extend matching a sign
// extension from the given source width.
func signedExtendFromSize(fromBits byte) extendOp {
	switch fromBits {
	case 8:
		return extendOpSXTB
	case 16:
		return extendOpSXTH
	case 32:
		return extendOpSXTW
	default:
		panic("arm64: invalid sign extend source width")
	}
}

func unsignedExtendFromSize(fromBits byte) extendOp {
	switch fromBits {
	case 8:
		return extendOpUXTB
	case 16:
		return extendOpUXTH
	case 32:
		return extendOpUXTW
	default:
		panic("arm64: invalid zero extend source width")
	}
}

// barrierOp selects the CRm access-type field of DMB/DSB.
type barrierOp byte

const (
	barrierOpSY  barrierOp = 0b1111 // full system barrier
	barrierOpISH barrierOp = 0b1011 // inner shareable
	barrierOpISHLD barrierOp = 0b1001
	barrierOpISHST barrierOp = 0b1010
)

// logicalImm is the packed (N, immr, imms) descriptor for AArch64's
// logical-immediate encoding. Lowering precomputes it via
// logicalImmediateFromBitmask because the set of valid masks is sparse.
type logicalImm struct {
	n, immr, imms byte
}

// logicalImmediateFromBitmask returns the (N,immr,imms) encoding of imm
// for the given operand size, or ok=false if imm has no valid
// logical-immediate encoding (all-zero and all-one bit patterns are
// always invalid, as are patterns with no repeating element that divides
// the register width).
//
// Uses the classic "repeating element size by self-rotation" trick to
// detect and measure the run of set bits, generalized here to report
// failure instead of assuming its caller already validated the mask.
func logicalImmediateFromBitmask(imm uint64, is64bit bool) (desc logicalImm, ok bool) {
	if imm == 0 || imm == ^uint64(0) {
		return logicalImm{}, false
	}
	if !is64bit && (imm>>32) != 0 {
		return logicalImm{}, false
	}
	if !is64bit {
		imm |= imm << 32 // a 32-bit pattern is matched as its 64-bit replication
	}

	c := imm
	var size uint32
	switch {
	case c != c>>32|c<<32:
		if !is64bit {
			return logicalImm{}, false
		}
		size = 64
	case c != c>>16|c<<48:
		size = 32
		c = uint64(int32(c))
	case c != c>>8|c<<56:
		size = 16
		c = uint64(int16(c))
	case c != c>>4|c<<60:
		size = 8
		c = uint64(int8(c))
	case c != c>>2|c<<62:
		size = 4
		c = uint64(int64(c<<60) >> 60)
	default:
		size = 2
		c = uint64(int64(c<<62) >> 62)
	}

	neg := false
	if int64(c) < 0 {
		c = ^c
		neg = true
	}
	if c == 0 {
		// An all-ones rotation of this element size: not representable
		// (would have been caught by the imm==^0 check at full width, but
		// a sub-word all-ones element is a legal encoding in general —
		// however after negating we'd divide by zero below, so bail.)
		return logicalImm{}, false
	}

	onesSize, nonZeroPos := onesRunSize(c)
	if c != (uint64(1)<<onesSize-1)<<nonZeroPos {
		return logicalImm{}, false // the element's set bits are not one contiguous run
	}
	if neg {
		nonZeroPos = onesSize + nonZeroPos
		onesSize = size - onesSize
	}

	var n byte
	mode := uint32(32)
	if is64bit && size == 64 {
		n, mode = 1, 64
	}

	immr := byte((size - nonZeroPos) & (size - 1) & (mode - 1))
	imms := byte((onesSize - 1) | (63 &^ (size<<1 - 1)))
	return logicalImm{n: n, immr: immr, imms: imms}, true
}

// onesRunSize finds, for a value consisting of a single contiguous run of
// set bits within its element (after rotation), the run's length and the
// position of its lowest set bit.
func onesRunSize(x uint64) (size, nonZeroPos uint32) {
	y := x & (-x)               // lowest set bit isolated
	nonZeroPos = bitPos(y)      // its position
	size = bitPos(x+y) - nonZeroPos
	return
}

func bitPos(x uint64) (ret uint32) {
	for x != 1 {
		x >>= 1
		ret++
	}
	return
}

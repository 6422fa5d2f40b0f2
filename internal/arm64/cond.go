package arm64

import "github.com/archlift/aarch64be/internal/ir"

// condFlag is the 4-bit AArch64 condition code tested by B.cond and CSEL
// family instructions, values matching the hardware encoding directly.
type condFlag byte

const (
	condEQ condFlag = 0x0
	condNE condFlag = 0x1
	condHS condFlag = 0x2 // carry set / unsigned >=
	condLO condFlag = 0x3 // carry clear / unsigned <
	condMI condFlag = 0x4
	condPL condFlag = 0x5
	condVS condFlag = 0x6
	condVC condFlag = 0x7
	condHI condFlag = 0x8
	condLS condFlag = 0x9
	condGE condFlag = 0xa
	condLT condFlag = 0xb
	condGT condFlag = 0xc
	condLE condFlag = 0xd
	condAL condFlag = 0xe
	condNV condFlag = 0xf
)

// invert returns the condition that holds exactly when c does not,
// obtained by flipping the low bit per the AArch64 encoding's pairing.
func (c condFlag) invert() condFlag { return c ^ 1 }

func (c condFlag) String() string {
	switch c {
	case condEQ:
		return "eq"
	case condNE:
		return "ne"
	case condHS:
		return "hs"
	case condLO:
		return "lo"
	case condMI:
		return "mi"
	case condPL:
		return "pl"
	case condVS:
		return "vs"
	case condVC:
		return "vc"
	case condHI:
		return "hi"
	case condLS:
		return "ls"
	case condGE:
		return "ge"
	case condLT:
		return "lt"
	case condGT:
		return "gt"
	case condLE:
		return "le"
	case condAL:
		return "al"
	case condNV:
		return "nv"
	default:
		panic("arm64: invalid condFlag")
	}
}

// condFlagFromIntegerCmpCond maps an ir integer comparison predicate to the
// condition code that follows a CMP/SUBS of the same operands, in the same
// order — icmp/brif and icmp/select fusion depend on this mapping.
func condFlagFromIntegerCmpCond(c ir.IntegerCmpCond) condFlag {
	switch c {
	case ir.IntegerCmpCondEqual:
		return condEQ
	case ir.IntegerCmpCondNotEqual:
		return condNE
	case ir.IntegerCmpCondSignedLessThan:
		return condLT
	case ir.IntegerCmpCondSignedGreaterThanOrEqual:
		return condGE
	case ir.IntegerCmpCondSignedGreaterThan:
		return condGT
	case ir.IntegerCmpCondSignedLessThanOrEqual:
		return condLE
	case ir.IntegerCmpCondUnsignedLessThan:
		return condLO
	case ir.IntegerCmpCondUnsignedGreaterThanOrEqual:
		return condHS
	case ir.IntegerCmpCondUnsignedGreaterThan:
		return condHI
	case ir.IntegerCmpCondUnsignedLessThanOrEqual:
		return condLS
	default:
		panic("arm64: invalid IntegerCmpCond")
	}
}

// condFlagFromFloatCmpCond maps an ir float comparison predicate to the
// condition code following an FCMP of the same operands. AArch64's FCMP
// flags follow IEEE754 unordered-is-false semantics for these predicates,
// so no inversion or "or unordered" compound is needed for this subset.
func condFlagFromFloatCmpCond(c ir.FloatCmpCond) condFlag {
	switch c {
	case ir.FloatCmpCondEqual:
		return condEQ
	case ir.FloatCmpCondNotEqual:
		return condNE
	case ir.FloatCmpCondLessThan:
		return condMI
	case ir.FloatCmpCondLessThanOrEqual:
		return condLS
	case ir.FloatCmpCondGreaterThan:
		return condGT
	case ir.FloatCmpCondGreaterThanOrEqual:
		return condGE
	default:
		panic("arm64: invalid FloatCmpCond")
	}
}

// vecArrangement selects a NEON instruction's element shape: how many
// lanes of what width the 128- or 64-bit register is divided into.
type vecArrangement byte

const (
	vecArrangementNone vecArrangement = iota
	vecArrangement8B                  // 8x8-bit, 64-bit register
	vecArrangement16B                 // 16x8-bit, 128-bit register
	vecArrangement4H                  // 4x16-bit
	vecArrangement8H                  // 8x16-bit
	vecArrangement2S                  // 2x32-bit
	vecArrangement4S                  // 4x32-bit
	vecArrangement1D                  // 1x64-bit
	vecArrangement2D                  // 2x64-bit
)

func (a vecArrangement) String() string {
	switch a {
	case vecArrangement8B:
		return "8b"
	case vecArrangement16B:
		return "16b"
	case vecArrangement4H:
		return "4h"
	case vecArrangement8H:
		return "8h"
	case vecArrangement2S:
		return "2s"
	case vecArrangement4S:
		return "4s"
	case vecArrangement1D:
		return "1d"
	case vecArrangement2D:
		return "2d"
	default:
		panic("arm64: invalid vecArrangement")
	}
}

// lanes reports the element count of the arrangement.
func (a vecArrangement) lanes() int {
	switch a {
	case vecArrangement8B, vecArrangement4H, vecArrangement2S, vecArrangement1D:
		return [...]int{vecArrangement8B: 8, vecArrangement4H: 4, vecArrangement2S: 2, vecArrangement1D: 1}[a]
	case vecArrangement16B, vecArrangement8H, vecArrangement4S, vecArrangement2D:
		return [...]int{vecArrangement16B: 16, vecArrangement8H: 8, vecArrangement4S: 4, vecArrangement2D: 2}[a]
	default:
		panic("arm64: invalid vecArrangement")
	}
}

// elemSizeBits reports the per-lane width of the arrangement.
func (a vecArrangement) elemSizeBits() byte {
	switch a {
	case vecArrangement8B, vecArrangement16B:
		return 8
	case vecArrangement4H, vecArrangement8H:
		return 16
	case vecArrangement2S, vecArrangement4S:
		return 32
	case vecArrangement1D, vecArrangement2D:
		return 64
	default:
		panic("arm64: invalid vecArrangement")
	}
}

// full reports whether the arrangement occupies the full 128-bit register
// (the Q bit in NEON encodings) as opposed to the 64-bit half.
func (a vecArrangement) full() bool {
	switch a {
	case vecArrangement16B, vecArrangement8H, vecArrangement4S, vecArrangement2D:
		return true
	default:
		return false
	}
}

// vecIndex is a lane index for INS/DUP/UMOV/SMOV element-at-index forms.
// A negative value means "no index" (the instruction applies to all lanes).
type vecIndex int8

const vecIndexNone vecIndex = -1

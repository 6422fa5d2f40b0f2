// Package regalloc defines the register identity shared between the
// physical machine and the virtual registers produced by lowering.
//
// The register allocator that rewrites VReg to RealReg is an external
// collaborator (see the backend's top-level docs): this package only
// carries the identity scheme both sides agree on, plus a small VReg set
// type (VRegSet).
package regalloc

import "fmt"

// VReg represents a register referenced by an instruction operand. It may
// be a pure virtual register (allocated during lowering, unbounded index)
// or already carry a RealReg, in which case it refers to a physical
// register directly (used for ABI-fixed registers such as argument/return
// registers, the link register, and the stack pointer).
//
// The 64-bit value packs three fields so that VReg remains a cheap,
// comparable value type:
//
//	[ 63..40: RegType ][ 39..32: RealReg ][ 31..0: VRegID ]
type VReg uint64

// VRegID is the identifier of a VReg with its RealReg/RegType info masked off.
type VRegID uint32

const (
	vRegIDInvalid VRegID = 1<<32 - 1
	// VRegIDNonReservedBegin is the first VRegID the lowering engine may
	// hand out for a fresh virtual register; IDs below this are reserved
	// for naming physical registers directly as a VReg (see FromRealReg).
	VRegIDNonReservedBegin VRegID = 128
)

// VRegInvalid is the zero-value-safe invalid VReg.
var VRegInvalid = VReg(vRegIDInvalid)

// RealReg is a physical register index. 0 is reserved to mean "none".
type RealReg byte

// RealRegInvalid is the sentinel RealReg meaning "this VReg is virtual".
const RealRegInvalid RealReg = 0

// RegType classifies a register's hardware register file.
type RegType byte

const (
	RegTypeInvalid RegType = iota
	RegTypeInt
	RegTypeFloat
	NumRegType
)

// String implements fmt.Stringer.
func (r RegType) String() string {
	switch r {
	case RegTypeInt:
		return "int"
	case RegTypeFloat:
		return "float"
	default:
		return "invalid"
	}
}

// FromRealReg builds a VReg that directly names the given physical register.
func FromRealReg(r RealReg, t RegType) VReg {
	if VRegID(r) >= VRegIDNonReservedBegin {
		panic(fmt.Sprintf("regalloc: real register index %d out of range", r))
	}
	return VReg(r).SetRealReg(r).SetRegType(t)
}

// VRegOf constructs a fresh virtual register with the given id and type.
// The id must not collide with the reserved RealReg naming range; callers
// (the lowering engine) allocate IDs starting at VRegIDNonReservedBegin.
func VRegOf(id VRegID, t RegType) VReg {
	return VReg(id).SetRegType(t)
}

// ID returns the VRegID component.
func (v VReg) ID() VRegID { return VRegID(v & 0xffffffff) }

// RealReg returns the RealReg component (RealRegInvalid if this is a pure
// virtual register).
func (v VReg) RealReg() RealReg { return RealReg(v >> 32) }

// IsRealReg reports whether this VReg is backed by a physical register.
func (v VReg) IsRealReg() bool { return v.RealReg() != RealRegInvalid }

// RegType returns the register class.
func (v VReg) RegType() RegType { return RegType(v >> 40) }

// SetRealReg returns a copy of v with its RealReg field replaced.
func (v VReg) SetRealReg(r RealReg) VReg {
	return VReg(r)<<32 | (v & 0xff_00_ffffffff)
}

// SetRegType returns a copy of v with its RegType field replaced.
func (v VReg) SetRegType(t RegType) VReg {
	return VReg(t)<<40 | (v & 0x00_ff_ffffffff)
}

// Valid reports whether v names either a real or virtual register.
func (v VReg) Valid() bool {
	return v.ID() != vRegIDInvalid && v.RegType() != RegTypeInvalid
}

// String implements fmt.Stringer.
func (v VReg) String() string {
	if v.IsRealReg() {
		return fmt.Sprintf("r%d", v.RealReg())
	}
	return fmt.Sprintf("v%d", v.ID())
}

// String implements fmt.Stringer.
func (r RealReg) String() string {
	if r == RealRegInvalid {
		return "invalid"
	}
	return fmt.Sprintf("r%d", byte(r))
}

package arm64

import "github.com/archlift/aarch64be/internal/regalloc"

// Reg is a register reference as it appears in an instruction operand: a
// read (use). WritableReg wraps the same value to additionally assert
// "this operand is a definition (write) target" — the encoder never
// mixes the two, and most constructors on instruction only accept a
// WritableReg for the destination operand.
type Reg = regalloc.VReg

// WritableReg asserts that the wrapped Reg is a definition target. It
// coerces back to Reg (via Reg()) for the cases an encoder or lowering
// helper needs to read the value it just defined (e.g. a read-modify-write
// accumulator).
type WritableReg struct {
	r Reg
}

// Writable wraps r as a definition target.
func Writable(r Reg) WritableReg { return WritableReg{r} }

// Reg returns the underlying register for use as a read operand.
func (w WritableReg) Reg() Reg { return w.r }

// hw indices 0..30 general purpose, 31 shared by SP and the zero register
// depending on instruction context.
const (
	hwX0 byte = iota
	hwX1
	hwX2
	hwX3
	hwX4
	hwX5
	hwX6
	hwX7
	hwX8
	hwX9
	hwX10
	hwX11
	hwX12
	hwX13
	hwX14
	hwX15
	hwX16
	hwX17
	hwX18
	hwX19
	hwX20
	hwX21
	hwX22
	hwX23
	hwX24
	hwX25
	hwX26
	hwX27
	hwX28
	hwX29 // frame pointer (FP)
	hwX30 // link register (LR)
	hwX31 // SP or XZR/WZR, context-dependent
)

// RealReg values are offset by one from the hardware encoding (0 is
// reserved by regalloc.RealRegInvalid) so that RealReg(0) never aliases a
// real register; hwEnc undoes the offset to recover the 5-bit hardware
// index the encoder emits.
func realReg(hw byte) regalloc.RealReg { return regalloc.RealReg(hw + 1) }

func hwEnc(r regalloc.RealReg) byte {
	if r == regalloc.RealRegInvalid {
		panic("arm64: use of an unassigned virtual register reached the encoder")
	}
	return byte(r) - 1
}

var (
	x0, x1, x2, x3, x4, x5, x6, x7     = realReg(hwX0), realReg(hwX1), realReg(hwX2), realReg(hwX3), realReg(hwX4), realReg(hwX5), realReg(hwX6), realReg(hwX7)
	x8, x9, x10, x11, x12, x13, x14    = realReg(hwX8), realReg(hwX9), realReg(hwX10), realReg(hwX11), realReg(hwX12), realReg(hwX13), realReg(hwX14)
	x15, x16, x17, x18, x19, x20, x21  = realReg(hwX15), realReg(hwX16), realReg(hwX17), realReg(hwX18), realReg(hwX19), realReg(hwX20), realReg(hwX21)
	x22, x23, x24, x25, x26, x27, x28  = realReg(hwX22), realReg(hwX23), realReg(hwX24), realReg(hwX25), realReg(hwX26), realReg(hwX27), realReg(hwX28)
	x29                                = realReg(hwX29) // fp
	x30                                = realReg(hwX30) // lr
	sp                                 = realReg(hwX31)
	xzr                                = realReg(hwX31) // shares encoding 31 with sp; disambiguated by instruction context
)

// VReg constructors for a physical integer or vector/float register.
func intVReg(r regalloc.RealReg) regalloc.VReg   { return regalloc.FromRealReg(r, regalloc.RegTypeInt) }
func floatVReg(r regalloc.RealReg) regalloc.VReg { return regalloc.FromRealReg(r, regalloc.RegTypeFloat) }

var (
	x0VReg, x1VReg, x2VReg, x3VReg   = intVReg(x0), intVReg(x1), intVReg(x2), intVReg(x3)
	x4VReg, x5VReg, x6VReg, x7VReg   = intVReg(x4), intVReg(x5), intVReg(x6), intVReg(x7)
	x8VReg                           = intVReg(x8) // indirect-result register
	x16VReg, x17VReg                 = intVReg(x16), intVReg(x17) // IP0/IP1, intra-procedure-call scratch
	x19VReg                          = intVReg(x19) // dynamic-allocation frame pointer (§4.6 rule 5)
	fpVReg                           = intVReg(x29)
	lrVReg                           = intVReg(x30)
	spVReg                           = intVReg(sp)
	xzrVReg                          = intVReg(xzr)
	tmpRegVReg                       = x16VReg // scratch register for constant/address materialization during lowering

	v0VReg, v1VReg = floatVReg(realReg(0)), floatVReg(realReg(1))
)

// calleeSavedInt/Float list the callee-saved registers in the AAPCS64
// sense (X19-X28, V8-V15 are callee-saved; X29/X30 are saved separately
// as the frame-pointer/link-register pair, see §4.6).
var calleeSavedInt = []regalloc.RealReg{x19, x20, x21, x22, x23, x24, x25, x26, x27, x28}

var calleeSavedFloat = []regalloc.RealReg{
	realReg(8), realReg(9), realReg(10), realReg(11), realReg(12), realReg(13), realReg(14), realReg(15),
}

// intArgRegs/floatArgRegs are the AAPCS64 parameter/result registers
// (X0-X7, V0-V7), §4.6.
var intArgRegs = []regalloc.RealReg{x0, x1, x2, x3, x4, x5, x6, x7}

var floatArgRegs = []regalloc.RealReg{
	realReg(0), realReg(1), realReg(2), realReg(3), realReg(4), realReg(5), realReg(6), realReg(7),
}

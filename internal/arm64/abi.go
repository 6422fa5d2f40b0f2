package arm64

import (
	"github.com/archlift/aarch64be/internal/ir"
	"github.com/archlift/aarch64be/internal/regalloc"
)

// ArgLoc is where a single argument or result value lives after AAPCS64
// classification: either a register or a byte offset from SP at the call
// boundary.
type ArgLoc struct {
	Reg       regalloc.VReg
	onStack   bool
	StackOff  int64
	Type      ir.Type
}

// OnStack reports whether this location is a stack slot rather than a register.
func (a ArgLoc) OnStack() bool { return a.onStack }

// ABI classifies a Signature's arguments and results into AAPCS64
// locations, carrying the frame-layout knowledge prologue.go needs, via
// the standard two-counter (int-register-index, float-register-index)
// classification pass before falling back to the stack.
type ABI struct {
	Sig      ir.Signature
	Args     []ArgLoc
	Rets     []ArgLoc
	ArgStackSize  int64 // bytes of incoming stack-argument area, 16-byte aligned.
	RetStackSize  int64
	IndirectResult bool // true when there are more than two results; they are returned through memory addressed by X8.
}

// NewABI classifies sig's parameters and results per AAPCS64: the first
// eight integer-class values go in X0-X7, the first eight float/vector-
// class values in V0-V7, independently indexed; once either class's
// counter reaches 8, every subsequent value of that class spills to the
// stack regardless of the other class's remaining registers — results
// beyond two registers' worth are instead written through an
// indirect-result pointer the caller passes in X8.
func NewABI(sig ir.Signature) *ABI {
	a := &ABI{Sig: sig}
	a.Args, a.ArgStackSize = classify(sig.Params)
	if len(sig.Results) > 2 {
		a.IndirectResult = true
		a.Rets = nil
		a.RetStackSize = 0
	} else {
		a.Rets, a.RetStackSize = classify(sig.Results)
	}
	return a
}

// HasStackArgs reports whether any incoming argument spilled past the
// eight register slots of its class; bindEntryArgs addresses those
// relative to FP, so their presence forces FrameLayout.UsesFramePointer.
func (a *ABI) HasStackArgs() bool {
	for _, arg := range a.Args {
		if arg.OnStack() {
			return true
		}
	}
	return false
}

func classify(types []ir.Type) (locs []ArgLoc, stackSize int64) {
	var nextInt, nextFloat int
	var stackOff int64
	for _, t := range types {
		if t.IsFloat() {
			if nextFloat < len(floatArgRegs) {
				locs = append(locs, ArgLoc{Reg: floatVReg(floatArgRegs[nextFloat]), Type: t})
				nextFloat++
				continue
			}
		} else {
			if nextInt < len(intArgRegs) {
				locs = append(locs, ArgLoc{Reg: intVReg(intArgRegs[nextInt]), Type: t})
				nextInt++
				continue
			}
		}
		sz := int64(t.Size())
		stackOff = alignTo(stackOff, sz)
		locs = append(locs, ArgLoc{onStack: true, StackOff: stackOff, Type: t})
		stackOff += sz
	}
	return locs, alignTo(stackOff, 16)
}

func alignTo(v, align int64) int64 {
	return (v + align - 1) &^ (align - 1)
}

// FrameLayout is the concrete stack-frame shape prologue.go emits,
// satisfying AAPCS64's frame invariants:
//  1. the total frame size is a multiple of 16.
//  2. FP (X29) and LR (X30) are saved together, as an STP/LDP pair, iff
//     UsesFramePointer reports true.
//  3. every used callee-saved register is saved and restored, paired
//     where the count is even, singly (its partner slot left unused)
//     when odd.
//  4. the frame pointer, once established, points at the saved FP/LR pair.
//  5. dynamic stack allocation (if any) is tracked via X19, a
//     callee-saved register reserved for this purpose, so that
//     non-constant-sized allocas don't disturb the fixed-offset
//     spill/calleesave slots above them.
type FrameLayout struct {
	CalleeSavedInt   []regalloc.RealReg
	CalleeSavedFloat []regalloc.RealReg
	SpillSize        int64 // bytes reserved for register-allocator spill slots.
	OutgoingArgSize  int64 // bytes reserved for this function's own calls' stack arguments.
	HasDynamicAlloca bool
	IsLeaf           bool // the function body contains no BL/BLR.
	HasStackArgs     bool // at least one incoming argument is ABI-classified onto the stack.
}

// bodySize is the frame's size excluding the FP/LR pair: callee-save
// pairs, spill slots, and the outgoing-argument area. UsesFramePointer
// consults it without yet knowing whether the FP/LR pair itself will be
// part of the frame, since that decision depends on this value.
func (f FrameLayout) bodySize() int64 {
	// Integer and float registers are paired within their own class, so
	// each class rounds up to whole 16-byte pairs separately.
	n := (len(f.CalleeSavedInt)+1)/2 + (len(f.CalleeSavedFloat)+1)/2
	size := int64(n * 16)
	size += alignTo(f.SpillSize, 16)
	size += alignTo(f.OutgoingArgSize, 16)
	return size
}

// UsesFramePointer implements invariant 3: the FP/LR pair is saved, and
// FP established, unless the function is a leaf with no dynamic
// allocation, no incoming stack arguments (bindEntryArgs addresses those
// off FP), and a frame small enough that nothing else forces it.
func (f FrameLayout) UsesFramePointer() bool {
	if !f.IsLeaf || f.HasDynamicAlloca || f.HasStackArgs {
		return true
	}
	return f.bodySize() > 4096
}

// FrameSize returns the total size, in bytes, of the area the prologue
// subtracts from SP: FP/LR pair (only when UsesFramePointer) +
// callee-saves (rounded to pairs) + spill slots + outgoing-argument
// area, rounded up to a 16-byte multiple (invariant 1).
func (f FrameLayout) FrameSize() int64 {
	size := f.bodySize()
	if f.UsesFramePointer() {
		size += 16
	}
	return alignTo(size, 16)
}

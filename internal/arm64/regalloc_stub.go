package arm64

import "github.com/archlift/aarch64be/internal/regalloc"

// This backend's job stops at producing VCode with virtual registers; a
// real register allocator is deliberately out of scope here, supplied
// externally in a production pipeline. allocateLinear is not that
// allocator — it is a minimal stand-in, just enough to assign every
// virtual register a distinct physical one and drive the lowering and
// JIT tests end to end. A production pipeline replaces this file
// entirely; nothing downstream (encode.go, the prologue) depends on its
// internals, only on every instruction's registers being real by the
// time encode runs.
type linearAllocator struct {
	intPool, floatPool   []regalloc.RealReg
	nextInt, nextFloat   int
	assigned             map[regalloc.VRegID]regalloc.VReg
	usedInt, usedFloat   map[regalloc.RealReg]bool
}

// scratchIntPool avoids X0-X7 (argument/result registers, left for ABI
// code to reference directly), X8 (indirect-result pointer), X16/X17 (the
// lowering-reserved address scratch register), X18 (platform-reserved),
// X19 (dynamic-allocation frame pointer), and X29/X30/SP (frame registers).
var scratchIntPool = []regalloc.RealReg{
	x9, x10, x11, x12, x13, x14, x15, x20, x21, x22, x23, x24, x25, x26, x27, x28,
}

var scratchFloatPool = func() []regalloc.RealReg {
	pool := make([]regalloc.RealReg, 0, 24)
	for hw := byte(8); hw <= 31; hw++ {
		pool = append(pool, realReg(hw))
	}
	return pool
}()

func newLinearAllocator() *linearAllocator {
	return &linearAllocator{
		intPool: scratchIntPool, floatPool: scratchFloatPool,
		assigned: map[regalloc.VRegID]regalloc.VReg{},
		usedInt:  map[regalloc.RealReg]bool{}, usedFloat: map[regalloc.RealReg]bool{},
	}
}

func (a *linearAllocator) assign(v regalloc.VReg) regalloc.VReg {
	if v.IsRealReg() || !v.Valid() {
		return v
	}
	if r, ok := a.assigned[v.ID()]; ok {
		return r
	}
	var real regalloc.VReg
	switch v.RegType() {
	case regalloc.RegTypeInt:
		if a.nextInt == len(a.intPool) {
			panic("arm64: linear allocator ran out of integer registers")
		}
		rr := a.intPool[a.nextInt]
		a.nextInt++
		a.usedInt[rr] = true
		real = intVReg(rr)
	case regalloc.RegTypeFloat:
		if a.nextFloat == len(a.floatPool) {
			panic("arm64: linear allocator ran out of float registers")
		}
		rr := a.floatPool[a.nextFloat]
		a.nextFloat++
		a.usedFloat[rr] = true
		real = floatVReg(rr)
	default:
		panic("arm64: virtual register with no register class")
	}
	a.assigned[v.ID()] = real
	return real
}

// allocateLinear rewrites every virtual register operand of insts to a
// real register in place, and reports which callee-saved physical
// registers ended up live so the prologue/epilogue know what to save.
func allocateLinear(insts []*instruction) (usedCalleeSavedInt, usedCalleeSavedFloat []regalloc.RealReg) {
	a := newLinearAllocator()
	for _, i := range insts {
		i.rd = a.assign(i.rd)
		i.rn = a.assign(i.rn)
		i.rm = a.assign(i.rm)
		i.ra = a.assign(i.ra)
		i.regVal = a.assign(i.regVal)
		i.amode.rn = a.assign(i.amode.rn)
		i.amode.rm = a.assign(i.amode.rm)
		i.call.reg = a.assign(i.call.reg)
	}
	for _, r := range calleeSavedInt {
		if a.usedInt[r] {
			usedCalleeSavedInt = append(usedCalleeSavedInt, r)
		}
	}
	for _, r := range calleeSavedFloat {
		if a.usedFloat[r] {
			usedCalleeSavedFloat = append(usedCalleeSavedFloat, r)
		}
	}
	return
}

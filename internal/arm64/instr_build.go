package arm64

// This file is the instruction-construction surface lowering calls: one
// "As*" method per mnemonic, each returning a fresh *instruction whose
// generic fields are packed the way the matching encodeXxx in encode.go
// expects. Keeping construction and encoding as separate small steps
// (rather than one lower-to-bytes pass) keeps each step independently
// testable.

func link(prev, n *instruction) *instruction {
	if prev != nil {
		prev.next = n
		n.prev = prev
	}
	return n
}

func newInst(kind instructionKind) *instruction { return &instruction{kind: kind} }

// AsNop64 is the scaffolding nop lowering emits when a value is dead.
func AsNop64() *instruction { return newInst(kindNop) }

// AsLabelBind emits no bytes; it marks label as bound to whatever
// instruction follows it in program order.
func AsLabelBind(label machineLabel) *instruction {
	i := newInst(kindLabelBind)
	i.label = label
	return i
}

func asAluRRR(op aluRRROp, size OperandSize, rd WritableReg, rn, rm Reg) *instruction {
	i := newInst(kindAluRRR)
	i.size, i.rd, i.rn, i.rm, i.imm = size, rd.Reg(), rn, rm, int64(op)
	return i
}

func AsAdd(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluAdd, size, rd, rn, rm) }
func AsAdds(size OperandSize, rd WritableReg, rn, rm Reg) *instruction {
	return asAluRRR(aluAdds, size, rd, rn, rm)
}
func AsSub(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluSub, size, rd, rn, rm) }
func AsSubs(size OperandSize, rd WritableReg, rn, rm Reg) *instruction {
	return asAluRRR(aluSubs, size, rd, rn, rm)
}

// AsCmp is the SUBS Xzr,Rn,Rm alias.
func AsCmp(size OperandSize, rn, rm Reg) *instruction { return AsSubs(size, Writable(xzrVReg), rn, rm) }

// AsNeg is the SUB Rd,XZR,Rm alias.
func AsNeg(size OperandSize, rd WritableReg, rm Reg) *instruction {
	return AsSub(size, rd, zrFor(size), rm)
}

func zrFor(size OperandSize) Reg {
	if size.is64() {
		return xzrVReg
	}
	return xzrVReg // W-form zero register is the same VReg; the encoder narrows via size.
}

func AsAnd(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluAnd, size, rd, rn, rm) }
func AsAnds(size OperandSize, rd WritableReg, rn, rm Reg) *instruction {
	return asAluRRR(aluAnds, size, rd, rn, rm)
}
func AsOrr(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluOrr, size, rd, rn, rm) }
func AsOrn(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluOrn, size, rd, rn, rm) }
func AsEor(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluEor, size, rd, rn, rm) }
func AsBic(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluBic, size, rd, rn, rm) }

// AsMvn is the ORN Rd,XZR,Rm alias.
func AsMvn(size OperandSize, rd WritableReg, rm Reg) *instruction { return AsOrn(size, rd, zrFor(size), rm) }

func AsLslv(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluLslv, size, rd, rn, rm) }
func AsLsrv(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluLsrv, size, rd, rn, rm) }
func AsAsrv(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluAsrv, size, rd, rn, rm) }
func AsRorv(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluRorv, size, rd, rn, rm) }
func AsSdiv(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluSdiv, size, rd, rn, rm) }
func AsUdiv(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asAluRRR(aluUdiv, size, rd, rn, rm) }

// AsAddShifted additionally applies a shifted-register operand, the
// general form AsAdd specializes with shiftOpLSL/amount 0.
func AsAddShifted(size OperandSize, rd WritableReg, rn, rm Reg, sop shiftOp, amount byte) *instruction {
	i := asAluRRR(aluAdd, size, rd, rn, rm)
	i.shiftOp, i.imm2 = sop, int64(amount)
	return i
}

func AsMadd(size OperandSize, rd WritableReg, rn, rm, ra Reg) *instruction {
	i := newInst(kindAluRRRR)
	i.size, i.rd, i.rn, i.rm, i.ra, i.imm = size, rd.Reg(), rn, rm, ra, 0
	return i
}

func AsMsub(size OperandSize, rd WritableReg, rn, rm, ra Reg) *instruction {
	i := newInst(kindAluRRRR)
	i.size, i.rd, i.rn, i.rm, i.ra, i.imm = size, rd.Reg(), rn, rm, ra, 1
	return i
}

// AsMul is the MADD Rd,Rn,Rm,XZR alias.
func AsMul(size OperandSize, rd WritableReg, rn, rm Reg) *instruction {
	return AsMadd(size, rd, rn, rm, zrFor(size))
}

func AsSmulh(rd WritableReg, rn, rm Reg) *instruction {
	i := newInst(kindMulHi)
	i.size, i.rd, i.rn, i.rm, i.imm = size64, rd.Reg(), rn, rm, 0
	return i
}

func AsUmulh(rd WritableReg, rn, rm Reg) *instruction {
	i := newInst(kindMulHi)
	i.size, i.rd, i.rn, i.rm, i.imm = size64, rd.Reg(), rn, rm, 1
	return i
}

func asAluRRImm12(op aluRRROp, size OperandSize, rd WritableReg, rn Reg, imm12 uint16, shift12 bool) *instruction {
	i := newInst(kindAluRRImm12)
	i.size, i.rd, i.rn = size, rd.Reg(), rn
	packed := int64(op) << 32
	packed |= int64(imm12) & 0xfff
	if shift12 {
		packed |= 1 << 12
	}
	i.imm = packed
	return i
}

func AsAddImm(size OperandSize, rd WritableReg, rn Reg, imm12 uint16, shift12 bool) *instruction {
	return asAluRRImm12(aluAdd, size, rd, rn, imm12, shift12)
}
func AsAddsImm(size OperandSize, rd WritableReg, rn Reg, imm12 uint16, shift12 bool) *instruction {
	return asAluRRImm12(aluAdds, size, rd, rn, imm12, shift12)
}
func AsSubImm(size OperandSize, rd WritableReg, rn Reg, imm12 uint16, shift12 bool) *instruction {
	return asAluRRImm12(aluSub, size, rd, rn, imm12, shift12)
}
func AsSubsImm(size OperandSize, rd WritableReg, rn Reg, imm12 uint16, shift12 bool) *instruction {
	return asAluRRImm12(aluSubs, size, rd, rn, imm12, shift12)
}

// AsCmpImm is the SUBS XZR,Rn,#imm12 alias.
func AsCmpImm(size OperandSize, rn Reg, imm12 uint16, shift12 bool) *instruction {
	return AsSubsImm(size, Writable(zrFor(size)), rn, imm12, shift12)
}

func asAluRRBitmaskImm(op aluRRROp, size OperandSize, rd WritableReg, rn Reg, desc logicalImm) *instruction {
	i := newInst(kindAluRRBitmaskImm)
	i.size, i.rd, i.rn, i.imm, i.bitmask = size, rd.Reg(), rn, int64(op), desc
	return i
}

func AsAndImm(size OperandSize, rd WritableReg, rn Reg, desc logicalImm) *instruction {
	return asAluRRBitmaskImm(aluAnd, size, rd, rn, desc)
}
func AsOrrImm(size OperandSize, rd WritableReg, rn Reg, desc logicalImm) *instruction {
	return asAluRRBitmaskImm(aluOrr, size, rd, rn, desc)
}
func AsEorImm(size OperandSize, rd WritableReg, rn Reg, desc logicalImm) *instruction {
	return asAluRRBitmaskImm(aluEor, size, rd, rn, desc)
}

// AsMovReg is MOV Xd,Xn (ORR alias); AsMovSp selects the SP-aware ADD
// alias instead, required whenever either operand is the stack pointer
// (ORR cannot read or write SP).
func AsMovReg(size OperandSize, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindMovReg)
	i.size, i.rd, i.rn, i.imm2 = size, rd.Reg(), rn, 0
	return i
}

func AsMovSp(size OperandSize, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindMovReg)
	i.size, i.rd, i.rn, i.imm2 = size, rd.Reg(), rn, 1
	return i
}

func asMovWide(kind instructionKind, size OperandSize, rd WritableReg, imm16 uint16, hw byte) *instruction {
	i := newInst(kind)
	i.size, i.rd, i.imm, i.imm2 = size, rd.Reg(), int64(imm16), int64(hw)
	return i
}

func AsMovz(size OperandSize, rd WritableReg, imm16 uint16, hw byte) *instruction {
	return asMovWide(kindMovZ, size, rd, imm16, hw)
}
func AsMovk(size OperandSize, rd WritableReg, imm16 uint16, hw byte) *instruction {
	return asMovWide(kindMovK, size, rd, imm16, hw)
}
func AsMovn(size OperandSize, rd WritableReg, imm16 uint16, hw byte) *instruction {
	return asMovWide(kindMovN, size, rd, imm16, hw)
}

// asCSelFamily constructs the CSEL/CSINC/CSINV/CSNEG family: op selects which
// via the packed (op,op2) pair matching encodeCSel's expectations.
func asCSelFamily(op, op2 uint32, size OperandSize, rd WritableReg, rn, rm Reg, cond condFlag) *instruction {
	i := newInst(kindCSel)
	i.size, i.rd, i.rn, i.rm, i.cond = size, rd.Reg(), rn, rm, cond
	i.imm2 = int64(op<<1 | op2)
	return i
}

func AsCSel(size OperandSize, rd WritableReg, rn, rm Reg, cond condFlag) *instruction {
	return asCSelFamily(0, 0, size, rd, rn, rm, cond)
}
func AsCSinc(size OperandSize, rd WritableReg, rn, rm Reg, cond condFlag) *instruction {
	return asCSelFamily(0, 1, size, rd, rn, rm, cond)
}
func AsCSinv(size OperandSize, rd WritableReg, rn, rm Reg, cond condFlag) *instruction {
	return asCSelFamily(1, 0, size, rd, rn, rm, cond)
}
func AsCSneg(size OperandSize, rd WritableReg, rn, rm Reg, cond condFlag) *instruction {
	return asCSelFamily(1, 1, size, rd, rn, rm, cond)
}

// AsCSet is the CSINC Rd,XZR,XZR,invert(cond) alias ("set to 1 if cond, else 0").
func AsCSet(size OperandSize, rd WritableReg, cond condFlag) *instruction {
	return AsCSinc(size, rd, zrFor(size), zrFor(size), cond.invert())
}

// --- bitfield / shift-by-immediate ---

func asBitfield(selector int64, size OperandSize, rd WritableReg, rn Reg, immr, imms byte) *instruction {
	i := newInst(kindBitfield)
	i.size, i.rd, i.rn, i.imm = size, rd.Reg(), rn, selector
	i.imm2 = int64(immr)<<32 | int64(imms)
	return i
}

func AsSbfm(size OperandSize, rd WritableReg, rn Reg, immr, imms byte) *instruction {
	return asBitfield(0, size, rd, rn, immr, imms)
}
func AsBfm(size OperandSize, rd WritableReg, rn Reg, immr, imms byte) *instruction {
	return asBitfield(1, size, rd, rn, immr, imms)
}
func AsUbfm(size OperandSize, rd WritableReg, rn Reg, immr, imms byte) *instruction {
	return asBitfield(2, size, rd, rn, immr, imms)
}

func AsExtr(size OperandSize, rd WritableReg, rn, rm Reg, lsb byte) *instruction {
	i := newInst(kindBitfield)
	i.size, i.rd, i.rn, i.rm, i.imm = size, rd.Reg(), rn, rm, 3
	i.imm2 = int64(lsb)
	return i
}

func width(size OperandSize) byte {
	if size.is64() {
		return 64
	}
	return 32
}

// AsLsl/AsLsr/AsAsr/AsRor are the UBFM/SBFM/EXTR-alias immediate shifts.
func AsLsl(size OperandSize, rd WritableReg, rn Reg, amount byte) *instruction {
	w := width(size)
	return AsUbfm(size, rd, rn, (w-amount)%w, w-1-amount)
}
func AsLsr(size OperandSize, rd WritableReg, rn Reg, amount byte) *instruction {
	return AsUbfm(size, rd, rn, amount, width(size)-1)
}
func AsAsrImm(size OperandSize, rd WritableReg, rn Reg, amount byte) *instruction {
	return AsSbfm(size, rd, rn, amount, width(size)-1)
}
func AsRorImm(size OperandSize, rd WritableReg, rn Reg, amount byte) *instruction {
	return AsExtr(size, rd, rn, rn, amount)
}

// AsSxtb/AsSxth/AsSxtw/AsUxtb/AsUxth sign/zero extend an n-bit source.
func AsSxtb(size OperandSize, rd WritableReg, rn Reg) *instruction { return AsSbfm(size, rd, rn, 0, 7) }
func AsSxth(size OperandSize, rd WritableReg, rn Reg) *instruction { return AsSbfm(size, rd, rn, 0, 15) }
func AsSxtw(rd WritableReg, rn Reg) *instruction                   { return AsSbfm(size64, rd, rn, 0, 31) }
func AsUxtb(rd WritableReg, rn Reg) *instruction                   { return AsUbfm(size32, rd, rn, 0, 7) }
func AsUxth(rd WritableReg, rn Reg) *instruction                   { return AsUbfm(size32, rd, rn, 0, 15) }

// --- loads/stores ---

func AsLoad(size OperandSize, rd WritableReg, amode addressMode, accessBits byte, signed bool) *instruction {
	i := newInst(kindLoad)
	i.size, i.rd, i.amode, i.imm2 = size, rd.Reg(), amode, int64(accessBits)
	if signed {
		i.imm = 1
	}
	return i
}

func AsStore(size OperandSize, rt Reg, amode addressMode, accessBits byte) *instruction {
	i := newInst(kindStore)
	i.size, i.rd, i.amode, i.imm2 = size, rt, amode, int64(accessBits)
	return i
}

func AsLoadPair(size OperandSize, rt1, rt2 WritableReg, amode addressMode) *instruction {
	i := newInst(kindLoadPair)
	i.size, i.rd, i.rn, i.amode = size, rt1.Reg(), rt2.Reg(), amode
	return i
}

func AsStorePair(size OperandSize, rt1, rt2 Reg, amode addressMode) *instruction {
	i := newInst(kindStorePair)
	i.size, i.rd, i.rn, i.amode = size, rt1, rt2, amode
	return i
}

// --- atomics ---

func AsLdaxr(size OperandSize, rt WritableReg, rn Reg) *instruction {
	i := newInst(kindLoadExclusive)
	i.size, i.rd, i.amode = size, rt.Reg(), addressMode{rn: rn}
	return i
}

func AsStlxr(size OperandSize, rs WritableReg, rt Reg, rn Reg) *instruction {
	i := newInst(kindStoreExclusive)
	i.size, i.rd, i.rn, i.amode = size, rt, rs.Reg(), addressMode{rn: rn}
	return i
}

func AsLdar(size OperandSize, rt WritableReg, rn Reg) *instruction {
	i := newInst(kindLoadAcquire)
	i.size, i.rd, i.amode = size, rt.Reg(), addressMode{rn: rn}
	return i
}

func AsStlr(size OperandSize, rt Reg, rn Reg) *instruction {
	i := newInst(kindStoreRelease)
	i.size, i.rd, i.amode = size, rt, addressMode{rn: rn}
	return i
}

// atomicOp selects LDADD/LDCLR/LDEOR/LDSET; AsCas is the LSE compare-and-swap.
type atomicOp byte

const (
	atomicOpAdd atomicOp = iota
	atomicOpClr
	atomicOpEor
	atomicOpSet
)

// AsAtomicRMW constructs one of LDADD/LDCLR/LDEOR/LDSET, selecting among the
// four acquire/release orderings each carries: plain, ...A (acquire),
// ...L (release), ...AL (both). rs is the value register, rt receives the
// value loaded from memory before the op is applied.
func AsAtomicRMW(size OperandSize, rs Reg, rt WritableReg, rn Reg, op atomicOp, acquire, release bool) *instruction {
	i := newInst(kindAtomicRMW)
	i.size, i.rn, i.rd, i.imm, i.amode = size, rs, rt.Reg(), int64(op), addressMode{rn: rn}
	i.imm2 = packAcquireRelease(acquire, release)
	return i
}

// AsCas constructs CAS/CASA/CASL/CASAL. rs holds the comparison value on
// entry and receives the memory's prior value; the store only happens when
// that prior value matched rs.
func AsCas(size OperandSize, rs Reg, rt WritableReg, rn Reg, acquire, release bool) *instruction {
	i := newInst(kindCAS)
	i.size, i.rn, i.rd, i.amode = size, rs, rt.Reg(), addressMode{rn: rn}
	i.imm2 = packAcquireRelease(acquire, release)
	return i
}

// packAcquireRelease packs the acquire/release axis shared by AsAtomicRMW
// and AsCas into a single field: bit 0 is acquire, bit 1 is release.
func packAcquireRelease(acquire, release bool) int64 {
	var v int64
	if acquire {
		v |= 1
	}
	if release {
		v |= 2
	}
	return v
}

// --- barriers ---

func AsDmb(op barrierOp) *instruction { i := newInst(kindDMB); i.imm = int64(op); return i }
func AsDsb(op barrierOp) *instruction { i := newInst(kindDSB); i.imm = int64(op); return i }
func AsIsb() *instruction             { return newInst(kindISB) }

// --- control flow ---

func AsB(label machineLabel) *instruction  { i := newInst(kindB); i.label = label; return i }
func AsBCond(cond condFlag, label machineLabel) *instruction {
	i := newInst(kindBCond)
	i.cond, i.label = cond, label
	return i
}
func AsCbz(size OperandSize, rt Reg, label machineLabel) *instruction {
	i := newInst(kindCBZ)
	i.size, i.regVal, i.label = size, rt, label
	return i
}
func AsCbnz(size OperandSize, rt Reg, label machineLabel) *instruction {
	i := newInst(kindCBNZ)
	i.size, i.regVal, i.label = size, rt, label
	return i
}
func AsBlDirect(symbol string) *instruction {
	i := newInst(kindBL)
	i.call = callTarget{symbol: symbol}
	return i
}
func AsBlIndirect(target Reg) *instruction {
	i := newInst(kindBL)
	i.call = callTarget{indirect: true, reg: target}
	return i
}
func AsBr(target Reg) *instruction  { i := newInst(kindBR); i.regVal = target; return i }
func AsBlr(target Reg) *instruction { i := newInst(kindBLR); i.regVal = target; return i }
func AsRet(lr Reg) *instruction     { i := newInst(kindRet); i.regVal = lr; return i }
func AsAdr(rd WritableReg, label machineLabel) *instruction {
	i := newInst(kindAdr)
	i.rd, i.label = rd.Reg(), label
	return i
}
func AsAdrp(rd WritableReg, label machineLabel) *instruction {
	i := newInst(kindAdrp)
	i.rd, i.label = rd.Reg(), label
	return i
}

// --- scalar floating point ---

type fpuRRROp byte

const (
	fpuOpAdd fpuRRROp = iota
	fpuOpSub
	fpuOpMul
	fpuOpDiv
	fpuOpMax
	fpuOpMin
)

func asFpuRRR(op fpuRRROp, size OperandSize, rd WritableReg, rn, rm Reg) *instruction {
	i := newInst(kindFpuRRR)
	i.size, i.rd, i.rn, i.rm, i.imm = size, rd.Reg(), rn, rm, int64(op)
	return i
}

func AsFadd(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asFpuRRR(fpuOpAdd, size, rd, rn, rm) }
func AsFsub(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asFpuRRR(fpuOpSub, size, rd, rn, rm) }
func AsFmul(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asFpuRRR(fpuOpMul, size, rd, rn, rm) }
func AsFdiv(size OperandSize, rd WritableReg, rn, rm Reg) *instruction { return asFpuRRR(fpuOpDiv, size, rd, rn, rm) }

type fpuRROp byte

const (
	fpuUnaryMov fpuRROp = iota
	fpuUnaryAbs
	fpuUnaryNeg
	fpuUnarySqrt
)

func asFpuRR(op fpuRROp, size OperandSize, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindFpuRR)
	i.size, i.rd, i.rn, i.imm = size, rd.Reg(), rn, int64(op)
	return i
}

func AsFabs(size OperandSize, rd WritableReg, rn Reg) *instruction { return asFpuRR(fpuUnaryAbs, size, rd, rn) }
func AsFneg(size OperandSize, rd WritableReg, rn Reg) *instruction { return asFpuRR(fpuUnaryNeg, size, rd, rn) }
func AsFsqrt(size OperandSize, rd WritableReg, rn Reg) *instruction { return asFpuRR(fpuUnarySqrt, size, rd, rn) }

func AsFmadd(size OperandSize, rd WritableReg, rn, rm, ra Reg) *instruction {
	i := newInst(kindFpuRRRR)
	i.size, i.rd, i.rn, i.rm, i.ra, i.imm = size, rd.Reg(), rn, rm, ra, 0
	return i
}
func AsFmsub(size OperandSize, rd WritableReg, rn, rm, ra Reg) *instruction {
	i := newInst(kindFpuRRRR)
	i.size, i.rd, i.rn, i.rm, i.ra, i.imm = size, rd.Reg(), rn, rm, ra, 1
	return i
}

func AsFcmp(size OperandSize, rn, rm Reg) *instruction {
	i := newInst(kindFpuCmp)
	i.size, i.rn, i.rm = size, rn, rm
	return i
}

// AsFmovReg is FMOV Sd/Dd,Sn/Dn (float-to-float, same width, no conversion).
func AsFmovReg(size OperandSize, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindFpuMov)
	i.size, i.rd, i.rn, i.imm = size, rd.Reg(), rn, 0
	return i
}

// AsFmovFromGpr is FMOV Sd/Dd,Wn/Xn (raw bit move, integer to float register).
func AsFmovFromGpr(fsize, gsize OperandSize, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindFpuMov)
	i.size, i.rd, i.rn, i.imm, i.imm2 = fsize, rd.Reg(), rn, 2, boolToInt64(gsize.is64())
	return i
}

// AsFmovToGpr is FMOV Wd/Xd,Sn/Dn.
func AsFmovToGpr(gsize, fsize OperandSize, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindFpuMov)
	i.size, i.rd, i.rn, i.imm, i.imm2 = fsize, rd.Reg(), rn, 1, boolToInt64(gsize.is64())
	return i
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// AsFcvt converts between single and double precision; toDouble selects direction.
func AsFcvt(toDouble bool, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindFcvt)
	i.size, i.rd, i.rn = OperandSize(toDouble), rd.Reg(), rn
	return i
}

// AsFcvtToInt is FCVTZS/FCVTZU Rd,Sn/Dn; intSize/floatSize select the
// integer destination and float source widths respectively.
func AsFcvtToInt(intSize, floatSize OperandSize, rd WritableReg, rn Reg, signed bool) *instruction {
	i := newInst(kindFpuToInt)
	i.size, i.rd, i.rn, i.imm2 = intSize, rd.Reg(), rn, boolToInt64(floatSize.is64())
	if !signed {
		i.imm = 1
	}
	return i
}

// AsFcvtFromInt converts an integer register to float (SCVTF when signed,
// UCVTF otherwise); floatSize/intSize
// select the destination float and source integer widths respectively.
func AsFcvtFromInt(floatSize, intSize OperandSize, rd WritableReg, rn Reg, signed bool) *instruction {
	i := newInst(kindIntToFpu)
	i.size, i.rd, i.rn, i.imm2 = floatSize, rd.Reg(), rn, boolToInt64(intSize.is64())
	if !signed {
		i.imm = 1
	}
	return i
}

// --- NEON vector ---

type vecRRROp byte

const (
	vecOpAdd vecRRROp = iota
	vecOpSub
	vecOpMul
	vecOpAnd
	vecOpOrr
	vecOpEor
	vecOpCmeq
	vecOpCmgt
	vecOpCmge
	vecOpFadd
	vecOpFsub
	vecOpFmul
	vecOpFdiv
)

func AsVecRRR(op vecRRROp, arr vecArrangement, rd WritableReg, rn, rm Reg) *instruction {
	i := newInst(kindVecRRR)
	i.arr, i.rd, i.rn, i.rm, i.imm = arr, rd.Reg(), rn, rm, int64(op)
	return i
}

func AsVecNeg(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecMisc)
	i.arr, i.rd, i.rn, i.imm = arr, rd.Reg(), rn, 0
	return i
}

func AsVecAbs(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecMisc)
	i.arr, i.rd, i.rn, i.imm = arr, rd.Reg(), rn, 1
	return i
}

// vecLanesOp selects among the cross-lane reduction family sharing
// kindVecLanes: ADDV plus the signed/unsigned min/max reductions.
type vecLanesOp byte

const (
	vecLanesAddv vecLanesOp = iota
	vecLanesSminv
	vecLanesSmaxv
	vecLanesUminv
	vecLanesUmaxv
)

// vecLanesOpcode returns the 5-bit opcode and U bit the "AdvSIMD across
// lanes" encoding uses to select op among ADDV/S{MIN,MAX}V/U{MIN,MAX}V.
func vecLanesOpcode(op vecLanesOp) (opc byte, u bool) {
	switch op {
	case vecLanesAddv:
		return 0b11011, false
	case vecLanesSmaxv:
		return 0b01010, false
	case vecLanesUmaxv:
		return 0b01010, true
	case vecLanesSminv:
		return 0b11010, false
	case vecLanesUminv:
		return 0b11010, true
	default:
		panic("arm64: invalid vecLanesOp")
	}
}

func asVecLanes(op vecLanesOp, arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecLanes)
	opc, u := vecLanesOpcode(op)
	i.arr, i.rd, i.rn, i.imm = arr, rd.Reg(), rn, int64(opc)
	if u {
		i.imm2 = 1
	}
	return i
}

func AsVecAddv(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	return asVecLanes(vecLanesAddv, arr, rd, rn)
}

func AsVecSminv(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	return asVecLanes(vecLanesSminv, arr, rd, rn)
}

func AsVecSmaxv(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	return asVecLanes(vecLanesSmaxv, arr, rd, rn)
}

func AsVecUminv(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	return asVecLanes(vecLanesUminv, arr, rd, rn)
}

func AsVecUmaxv(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	return asVecLanes(vecLanesUmaxv, arr, rd, rn)
}

type vecPermuteOp byte

const (
	vecPermZip1 vecPermuteOp = iota
	vecPermZip2
	vecPermUzp1
	vecPermUzp2
	vecPermTrn1
	vecPermTrn2
)

func AsVecPermute(op vecPermuteOp, arr vecArrangement, rd WritableReg, rn, rm Reg) *instruction {
	i := newInst(kindVecPermute)
	i.arr, i.rd, i.rn, i.rm, i.imm = arr, rd.Reg(), rn, rm, int64(op)
	return i
}

func AsVecIns(arr vecArrangement, idx vecIndex, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecMovToLane)
	i.arr, i.index, i.rd, i.rn = arr, idx, rd.Reg(), rn
	return i
}

func AsVecUmov(arr vecArrangement, idx vecIndex, rd WritableReg, rn Reg, signed bool) *instruction {
	i := newInst(kindVecMovFromLane)
	i.arr, i.index, i.rd, i.rn = arr, idx, rd.Reg(), rn
	if !signed {
		i.imm = 1
	}
	return i
}

func AsVecDup(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecDup)
	i.arr, i.rd, i.rn = arr, rd.Reg(), rn
	return i
}

func AsVecDupElem(arr vecArrangement, idx vecIndex, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecDup)
	i.arr, i.index, i.rd, i.rn = arr, idx, rd.Reg(), rn
	return i
}

func AsVecExt(arr vecArrangement, rd WritableReg, rn, rm Reg, index byte) *instruction {
	i := newInst(kindVecExt)
	i.arr, i.rd, i.rn, i.rm, i.imm = arr, rd.Reg(), rn, rm, int64(index)
	return i
}

type vecWidenOp byte

const (
	vecWidenSxtl vecWidenOp = iota
	vecWidenUxtl
	vecWidenSaddl
	vecWidenUaddl
)

func AsVecWiden(op vecWidenOp, arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecWiden)
	i.arr, i.rd, i.rn, i.imm = arr, rd.Reg(), rn, int64(op)
	return i
}

// AsVecLd1 loads a full vector register from [rn] with no offset, no
// replication, and no write-back: LD1 {Vt.<arr>}, [Xn].
func AsVecLd1(arr vecArrangement, rd WritableReg, rn Reg) *instruction {
	i := newInst(kindVecLoadStore1)
	i.arr, i.rd, i.amode, i.imm = arr, rd.Reg(), addressMode{rn: rn}, 1
	return i
}

// AsVecSt1 stores a full vector register to [rn] with no offset and no
// write-back: ST1 {Vt.<arr>}, [Xn].
func AsVecSt1(arr vecArrangement, rt Reg, rn Reg) *instruction {
	i := newInst(kindVecLoadStore1)
	i.arr, i.rd, i.amode = arr, rt, addressMode{rn: rn}
	return i
}

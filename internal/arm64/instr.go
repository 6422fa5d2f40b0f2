package arm64

import "github.com/archlift/aarch64be/internal/regalloc"

// instructionKind discriminates the tagged union below. Each value of
// instructionKind fixes the meaning of instruction's generic operand
// fields; the constructors in instr_build.go show which fields each kind uses.
type instructionKind uint16

const (
	kindInvalid instructionKind = iota

	kindNop // no-op scaffolding; never reaches the encoder as 0 bytes, always NOP (0xD503201F).

	// Data-processing (register).
	kindAluRRR      // ADD/SUB/ADDS/SUBS/AND/ORR/EOR/LSLV/LSRV/ASRV/RORV/SDIV/UDIV Rd,Rn,Rm
	kindAluRRRR     // MADD/MSUB Rd,Rn,Rm,Ra
	kindAluRRImm12  // ADD/SUB/ADDS/SUBS Rd,Rn,#imm12{,LSL #12}
	kindAluRRBitmaskImm // AND/ORR/EOR Rd,Rn,#bitmask
	kindAluRRImmShift   // LSL/LSR/ASR/ROR Rd,Rn,#imm (UBFM/SBFM/EXTR aliases)
	kindBitfield    // SBFM/UBFM/EXTR Rd,Rn[,Rm],#immr,#imms (general form, used by SXT*/UXT* too)
	kindMulHi       // SMULH/UMULH Rd,Rn,Rm

	// Move-immediate trio and register moves.
	kindMovZ
	kindMovK
	kindMovN
	kindMovReg // MOV Xd,Xn (ORR Xd,XZR,Xn alias) / MOV Xd,SP (ADD alias)

	// Conditional select family.
	kindCSel // CSEL/CSINC/CSINV/CSNEG

	// Loads and stores.
	kindLoad
	kindStore
	kindLoadPair
	kindStorePair

	// Exclusive / acquire-release / LSE atomics.
	kindLoadExclusive
	kindStoreExclusive
	kindLoadAcquire
	kindStoreRelease
	kindAtomicRMW // LDADD/LDCLR/LDSET/LDEOR family
	kindCAS

	// Barriers.
	kindDMB
	kindDSB
	kindISB

	// Control flow.
	kindB
	kindBCond
	kindCBZ
	kindCBNZ
	kindBL
	kindBR
	kindBLR
	kindRet
	kindAdr
	kindAdrp

	// Scalar floating point.
	kindFpuRRR // FADD/FSUB/FMUL/FDIV Sd/Dd,Sn/Dn,Sm/Dm
	kindFpuRR  // FNEG/FABS/FSQRT/FRINT* Sd,Sn
	kindFpuRRRR // FMADD/FMSUB/FNMADD/FNMSUB
	kindFpuCmp
	kindFpuMov // FMOV Sd,Sn / FMOV Xd,Sn / FMOV Sd,Xn / FMOV (immediate)
	kindFcvt    // FCVT Dd,Sn and back
	kindFpuToInt
	kindIntToFpu

	// NEON vector.
	kindVecRRR      // ADD/SUB/MUL/CMEQ/CMGT/CMGE/AND/ORR/EOR/FADD/FSUB/FMUL/FDIV (vector)
	kindVecMisc     // NEG/ABS/CMEQ#0 etc, unary vector
	kindVecLanes    // ADDV/SMINV/SMAXV/UMINV/UMAXV
	kindVecPermute  // ZIP1/ZIP2/UZP1/UZP2/TRN1/TRN2
	kindVecLoadStore1 // LD1/ST1 (single structure, no replication)
	kindVecMovToLane
	kindVecMovFromLane
	kindVecDup
	kindVecExt
	kindVecWiden // SXTL/UXTL/SADDL/UADDL

	// kindLabelBind is a zero-byte pseudo-instruction marking "the next
	// real instruction is this label's target." It lets label binding
	// survive the peephole pass unambiguously, since combineLoadStorePairs
	// only merges two instructions of the identical real kind and a label
	// bind never matches either side.
	kindLabelBind

	numInstructionKinds
)

// addressModeKind selects the shape of a load/store's memory operand.
type addressModeKind byte

const (
	// addressModeRegUnsignedImm12 is the scaled, unsigned 12-bit immediate
	// offset form.
	addressModeRegUnsignedImm12 addressModeKind = iota
	// addressModeRegUnscaledImm9 is LDUR/STUR's unscaled signed 9-bit offset.
	addressModeRegUnscaledImm9
	// addressModePreIndex writes back rn -= /+= imm9 before the access.
	addressModePreIndex
	// addressModePostIndex writes back rn -= /+= imm9 after the access.
	addressModePostIndex
	// addressModeRegReg is register-offset with no scale/extend (plain add).
	addressModeRegReg
	// addressModeRegScaled is register-offset with LSL by log2(access size).
	addressModeRegScaled
	// addressModeRegExtended is register-offset with a sign/zero extend, no scale.
	addressModeRegExtended
	// addressModeRegScaledExtended combines extend and LSL scale.
	addressModeRegScaledExtended
)

// addressMode is a load/store's memory operand.
type addressMode struct {
	kind addressModeKind
	rn   regalloc.VReg // base register
	rm   regalloc.VReg // offset register, for the Reg* kinds
	imm  int64         // signed byte offset, for the Imm kinds
	ext  extendOp      // for RegExtended/RegScaledExtended
}

// callTarget is the callee of a BL, either a direct symbol (resolved by
// relocation once the code is mapped) or an indirect register (BLR).
type callTarget struct {
	indirect bool
	symbol   string
	reg      regalloc.VReg
}

// instruction is a single tagged-union node of the VCode instruction
// slices lowering produces. One struct with generic fields (rather than one
// Go type per mnemonic) is the idiomatic shape for a language without sum
// types.
type instruction struct {
	kind       instructionKind
	prev, next *instruction

	rd           regalloc.VReg // definition, when defKind(kind) requires one.
	rn, rm, ra   regalloc.VReg // use operands; meaning depends on kind.

	imm   int64  // generic signed immediate (shift amount, imm12, bitmask source, hw*16, branch target placeholder).
	imm2  int64  // second immediate slot (e.g. MOVK's hw, EXTR's Rm-shift).
	u     uint64 // raw bit pattern (float immediates, NEON constants).

	size    OperandSize
	cond    condFlag
	shiftOp shiftOp
	extOp   extendOp
	bitmask logicalImm

	arr   vecArrangement
	index vecIndex

	amode addressMode
	call  callTarget

	// label is the branch/PC-relative target for control-flow and
	// ADR/ADRP instructions; resolved by the machine buffer at Finalize.
	label machineLabel

	// regVal, when kind is kindCBZ/kindCBNZ, is the tested register (a
	// flagless compare-and-branch rather than a flag-consuming B.cond).
	regVal regalloc.VReg
}

// defKind classifies what register(s), if any, an instruction defines.
type defKind byte

const (
	defKindNone defKind = iota
	defKindRD
	defKindCall // all of the ABI's return registers
)

var instKindDefKind = [numInstructionKinds]defKind{
	kindAluRRR:          defKindRD,
	kindAluRRRR:         defKindRD,
	kindAluRRImm12:      defKindRD,
	kindAluRRBitmaskImm: defKindRD,
	kindAluRRImmShift:   defKindRD,
	kindBitfield:        defKindRD,
	kindMulHi:           defKindRD,
	kindMovZ:            defKindRD,
	kindMovK:            defKindRD,
	kindMovN:            defKindRD,
	kindMovReg:          defKindRD,
	kindCSel:            defKindRD,
	kindLoad:            defKindRD,
	kindLoadExclusive:   defKindRD,
	kindLoadAcquire:     defKindRD,
	kindAtomicRMW:       defKindRD,
	kindAdr:             defKindRD,
	kindAdrp:            defKindRD,
	kindFpuRRR:          defKindRD,
	kindFpuRR:           defKindRD,
	kindFpuRRRR:         defKindRD,
	kindFpuMov:          defKindRD,
	kindFcvt:            defKindRD,
	kindFpuToInt:        defKindRD,
	kindIntToFpu:        defKindRD,
	kindVecRRR:          defKindRD,
	kindVecMisc:         defKindRD,
	kindVecLanes:        defKindRD,
	kindVecPermute:      defKindRD,
	kindVecMovFromLane:  defKindRD,
	kindVecDup:          defKindRD,
	kindVecExt:          defKindRD,
	kindVecWiden:        defKindRD,
	kindBL:              defKindCall,
	kindBLR:             defKindCall,
}

// defs appends the registers this instruction defines to regs and returns it.
func (i *instruction) defs(regs []regalloc.VReg, callRets []regalloc.VReg) []regalloc.VReg {
	if i.kind == kindVecLoadStore1 {
		if i.imm != 0 { // LD1 defines rd; ST1 only reads it.
			regs = append(regs, i.rd)
		}
		return regs
	}
	if i.kind == kindCAS { // CAS writes the prior memory value into rs (i.rn); rt (i.rd) is only read.
		return append(regs, i.rn)
	}
	switch instKindDefKind[i.kind] {
	case defKindRD:
		regs = append(regs, i.rd)
	case defKindCall:
		regs = append(regs, callRets...)
	}
	return regs
}

// uses appends the registers this instruction reads to regs and returns it.
func (i *instruction) uses(regs []regalloc.VReg, callArgs []regalloc.VReg) []regalloc.VReg {
	add := func(r regalloc.VReg) {
		if r.Valid() {
			regs = append(regs, r)
		}
	}
	switch i.kind {
	case kindAluRRR, kindAluRRImm12, kindAluRRBitmaskImm, kindAluRRImmShift, kindMulHi:
		add(i.rn)
		if i.kind == kindAluRRR {
			add(i.rm)
		}
	case kindAluRRRR:
		add(i.rn)
		add(i.rm)
		add(i.ra)
	case kindBitfield:
		add(i.rn)
		add(i.rm)
	case kindMovReg, kindFpuMov, kindFcvt, kindVecDup:
		add(i.rn)
	case kindCSel:
		add(i.rn)
		add(i.rm)
	case kindLoad, kindLoadExclusive, kindLoadAcquire:
		add(i.amode.rn)
		add(i.amode.rm)
	case kindStore, kindStoreExclusive, kindStoreRelease:
		add(i.rd)
		add(i.amode.rn)
		add(i.amode.rm)
	case kindLoadPair:
		add(i.amode.rn)
	case kindStorePair:
		add(i.rn)
		add(i.rm)
		add(i.amode.rn)
	case kindAtomicRMW:
		add(i.rn)
		add(i.amode.rn)
	case kindCAS:
		add(i.rd) // rt, the value stored when the comparison succeeds.
		add(i.rn) // rs, the compare value, read and then overwritten.
		add(i.amode.rn)
	case kindBCond, kindCBZ, kindCBNZ:
		add(i.regVal)
	case kindBR, kindBLR:
		add(i.regVal)
	case kindFpuRRR, kindVecRRR:
		add(i.rn)
		add(i.rm)
	case kindFpuRR, kindVecMisc, kindFpuToInt, kindIntToFpu, kindVecLanes, kindVecWiden:
		add(i.rn)
	case kindFpuRRRR:
		add(i.rn)
		add(i.rm)
		add(i.ra)
	case kindFpuCmp:
		add(i.rn)
		add(i.rm)
	case kindVecPermute:
		add(i.rn)
		add(i.rm)
	case kindVecMovToLane:
		add(i.rn)
		add(i.rd)
	case kindVecMovFromLane:
		add(i.rn)
	case kindVecExt:
		add(i.rn)
		add(i.rm)
	case kindVecLoadStore1:
		add(i.amode.rn)
		if i.imm == 0 { // ST1 reads rd as the source register.
			add(i.rd)
		}
	case kindBL:
		add(i.call.reg)
		regs = append(regs, callArgs...)
	}
	return regs
}

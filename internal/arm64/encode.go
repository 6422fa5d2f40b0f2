package arm64

import "github.com/archlift/aarch64be/internal/regalloc"

// This file is the instruction encoder: pure functions from an
// instruction's already-assigned-to-real-registers operand fields to the
// 32-bit words AArch64 expects. Each encodeXxx function mirrors one
// instruction-class diagram from the Architecture Reference Manual.

func regEnc(r Reg) uint32 { return uint32(hwEnc(r.RealReg())) }

// encode appends i's instruction word(s) to m, resolving branch/ADR
// targets through m's label table.
func (i *instruction) encode(m *MachineBuffer) {
	switch i.kind {
	case kindLabelBind:
		m.BindLabel(i.label)
	case kindNop:
		m.Emit4Bytes(0xD503201F)
	case kindAluRRR:
		m.Emit4Bytes(encodeAluRRR(i))
	case kindAluRRRR:
		m.Emit4Bytes(encodeAluRRRR(i))
	case kindAluRRImm12:
		m.Emit4Bytes(encodeAluRRImm12(i))
	case kindAluRRBitmaskImm:
		m.Emit4Bytes(encodeAluRRBitmaskImm(i))
	case kindAluRRImmShift:
		m.Emit4Bytes(encodeBitfield(i))
	case kindBitfield:
		m.Emit4Bytes(encodeBitfield(i))
	case kindMulHi:
		m.Emit4Bytes(encodeMulHi(i))
	case kindMovZ:
		m.Emit4Bytes(encodeMovWide(i, 0b10))
	case kindMovK:
		m.Emit4Bytes(encodeMovWide(i, 0b11))
	case kindMovN:
		m.Emit4Bytes(encodeMovWide(i, 0b00))
	case kindMovReg:
		m.Emit4Bytes(encodeMovReg(i))
	case kindCSel:
		m.Emit4Bytes(encodeCSel(i))
	case kindLoad:
		m.Emit4Bytes(encodeLoadStore(i, true))
	case kindStore:
		m.Emit4Bytes(encodeLoadStore(i, false))
	case kindLoadPair:
		m.Emit4Bytes(encodeLoadStorePair(i, true))
	case kindStorePair:
		m.Emit4Bytes(encodeLoadStorePair(i, false))
	case kindLoadExclusive:
		m.Emit4Bytes(encodeLoadStoreExclusive(i, true, false))
	case kindStoreExclusive:
		m.Emit4Bytes(encodeLoadStoreExclusive(i, false, false))
	case kindLoadAcquire:
		m.Emit4Bytes(encodeLoadStoreExclusive(i, true, true))
	case kindStoreRelease:
		m.Emit4Bytes(encodeLoadStoreExclusive(i, false, true))
	case kindAtomicRMW:
		m.Emit4Bytes(encodeAtomicRMW(i))
	case kindCAS:
		m.Emit4Bytes(encodeCAS(i))
	case kindDMB:
		m.Emit4Bytes(0xD50330BF | uint32(i.imm)<<8)
	case kindDSB:
		m.Emit4Bytes(0xD503309F | uint32(i.imm)<<8)
	case kindISB:
		m.Emit4Bytes(0xD5033FDF)
	case kindB:
		m.UseLabelBranch26(0x14000000, i.label)
	case kindBL:
		if i.call.indirect {
			m.Emit4Bytes(0xD63F0000 | regEnc(i.call.reg)<<5)
		} else {
			m.RecordRelocation(i.call.symbol)
			m.Emit4Bytes(0x94000000)
		}
	case kindBR:
		m.Emit4Bytes(0xD61F0000 | regEnc(i.regVal)<<5)
	case kindBLR:
		m.Emit4Bytes(0xD63F0000 | regEnc(i.regVal)<<5)
	case kindRet:
		rn := i.regVal
		if !rn.Valid() {
			rn = lrVReg
		}
		m.Emit4Bytes(0xD65F0000 | regEnc(rn)<<5)
	case kindBCond:
		m.UseLabelBranch19(0x54000000|uint32(i.cond), i.label)
	case kindCBZ:
		m.UseLabelBranch19(encodeCbzBase(i, false), i.label)
	case kindCBNZ:
		m.UseLabelBranch19(encodeCbzBase(i, true), i.label)
	case kindAdr:
		m.UseLabelAdr(0x10000000|regEnc(i.rd), i.label)
	case kindAdrp:
		m.UseLabelAdrp(0x90000000|regEnc(i.rd), i.label)
	case kindFpuRRR:
		m.Emit4Bytes(encodeFpuRRR(i))
	case kindFpuRR:
		m.Emit4Bytes(encodeFpuRR(i))
	case kindFpuRRRR:
		m.Emit4Bytes(encodeFpuRRRR(i))
	case kindFpuCmp:
		m.Emit4Bytes(encodeFpuCmp(i))
	case kindFpuMov:
		m.Emit4Bytes(encodeFpuMov(i))
	case kindFcvt:
		m.Emit4Bytes(encodeFcvt(i))
	case kindFpuToInt:
		m.Emit4Bytes(encodeFpuToInt(i))
	case kindIntToFpu:
		m.Emit4Bytes(encodeIntToFpu(i))
	case kindVecRRR:
		m.Emit4Bytes(encodeVecRRR(i))
	case kindVecMisc:
		m.Emit4Bytes(encodeVecMisc(i))
	case kindVecLanes:
		m.Emit4Bytes(encodeVecLanes(i))
	case kindVecPermute:
		m.Emit4Bytes(encodeVecPermute(i))
	case kindVecMovToLane:
		m.Emit4Bytes(encodeVecMovToLane(i))
	case kindVecMovFromLane:
		m.Emit4Bytes(encodeVecMovFromLane(i))
	case kindVecDup:
		m.Emit4Bytes(encodeVecDup(i))
	case kindVecExt:
		m.Emit4Bytes(encodeVecExt(i))
	case kindVecWiden:
		m.Emit4Bytes(encodeVecWiden(i))
	case kindVecLoadStore1:
		m.Emit4Bytes(encodeVecLoadStore1(i))
	default:
		panic("arm64: unencodable instruction kind")
	}
}

func sfBit(s OperandSize) uint32 {
	if s.is64() {
		return 1
	}
	return 0
}

// --- data processing (register) ---

// aluRRROp is the 3-source-operand ALU op's kind, distinguishing the
// shifted-register arithmetic/logical family from the 2-source
// register-register family (division, variable shifts) which share no
// encoding but do share kindAluRRR in the tagged union.
type aluRRROp byte

const (
	aluAdd aluRRROp = iota
	aluAdds
	aluSub
	aluSubs
	aluAnd
	aluAnds
	aluOrr
	aluOrn
	aluEor
	aluEon
	aluBic
	aluLslv
	aluLsrv
	aluAsrv
	aluRorv
	aluSdiv
	aluUdiv
)

// the imm field of a kindAluRRR instruction carries the aluRRROp selector
// (set by the constructor in instr_build.go) together with, for the
// shifted-register forms, the shift amount in imm2 and shiftOp in shiftOp.
func encodeAluRRR(i *instruction) uint32 {
	op := aluRRROp(i.imm)
	sf := sfBit(i.size)
	rd, rn, rm := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm)
	switch op {
	case aluAdd, aluAdds, aluSub, aluSubs:
		var opBit, sBit uint32
		if op == aluSub || op == aluSubs {
			opBit = 1
		}
		if op == aluAdds || op == aluSubs {
			sBit = 1
		}
		shift := uint32(i.shiftOp)
		amount := uint32(i.imm2)
		return sf<<31 | opBit<<30 | sBit<<29 | 0b01011<<24 | shift<<22 | rm<<16 | amount<<10 | rn<<5 | rd
	case aluAnd, aluAnds, aluOrr, aluOrn, aluEor, aluEon, aluBic:
		var opc, nBit uint32
		switch op {
		case aluAnd, aluBic:
			opc = 0b00
		case aluOrr, aluOrn:
			opc = 0b01
		case aluEor, aluEon:
			opc = 0b10
		case aluAnds:
			opc = 0b11
		}
		if op == aluOrn || op == aluEon || op == aluBic {
			nBit = 1
		}
		shift := uint32(i.shiftOp)
		amount := uint32(i.imm2)
		return sf<<31 | opc<<29 | 0b01010<<24 | shift<<22 | nBit<<21 | rm<<16 | amount<<10 | rn<<5 | rd
	case aluLslv, aluLsrv, aluAsrv, aluRorv:
		var opcode uint32
		switch op {
		case aluLslv:
			opcode = 0b001000
		case aluLsrv:
			opcode = 0b001001
		case aluAsrv:
			opcode = 0b001010
		case aluRorv:
			opcode = 0b001011
		}
		return sf<<31 | 0<<29 | 0b11010110<<21 | rm<<16 | opcode<<10 | rn<<5 | rd
	case aluSdiv, aluUdiv:
		var opcode uint32 = 0b000011
		if op == aluUdiv {
			opcode = 0b000010
		}
		return sf<<31 | 0<<29 | 0b11010110<<21 | rm<<16 | opcode<<10 | rn<<5 | rd
	default:
		panic("arm64: invalid aluRRROp")
	}
}

func encodeAluRRRR(i *instruction) uint32 {
	sf := sfBit(i.size)
	rd, rn, rm, ra := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm), regEnc(i.ra)
	negate := i.imm != 0 // 0 = MADD, 1 = MSUB
	return sf<<31 | 0b0011011000<<21 | rm<<16 | uint32(boolBit(negate))<<15 | ra<<10 | rn<<5 | rd
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeMulHi(i *instruction) uint32 {
	rd, rn, rm := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm)
	var uBit uint32
	if i.imm != 0 {
		uBit = 1
	}
	return 1<<31 | 0b0011011<<24 | uBit<<23 | 0b10<<21 | rm<<16 | 0<<15 | 0b011111<<10 | rn<<5 | rd
}

func encodeAluRRImm12(i *instruction) uint32 {
	op := aluRRROp(i.imm >> 32)
	imm12 := uint32(i.imm) & 0xfff
	shift12 := (i.imm>>12)&1 != 0
	sf := sfBit(i.size)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	var opBit, sBit uint32
	if op == aluSub || op == aluSubs {
		opBit = 1
	}
	if op == aluAdds || op == aluSubs {
		sBit = 1
	}
	var shBit uint32
	if shift12 {
		shBit = 1
	}
	return sf<<31 | opBit<<30 | sBit<<29 | 0b10001<<24 | shBit<<22 | imm12<<10 | rn<<5 | rd
}

func encodeAluRRBitmaskImm(i *instruction) uint32 {
	op := aluRRROp(i.imm)
	sf := sfBit(i.size)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	var opc uint32
	switch op {
	case aluAnd:
		opc = 0b00
	case aluOrr:
		opc = 0b01
	case aluEor:
		opc = 0b10
	case aluAnds:
		opc = 0b11
	}
	return sf<<31 | opc<<29 | 0b100100<<23 | uint32(i.bitmask.n)<<22 | uint32(i.bitmask.immr)<<16 | uint32(i.bitmask.imms)<<10 | rn<<5 | rd
}

// encodeBitfield covers SBFM/BFM/UBFM (kindBitfield/kindAluRRImmShift use
// opc packed into i.imm: 0=SBFM,1=BFM,2=UBFM) and EXTR (i.imm==3, rm valid).
func encodeBitfield(i *instruction) uint32 {
	sf := sfBit(i.size)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	kindSel := i.imm
	if kindSel == 3 {
		rm := regEnc(i.rm)
		imms := uint32(i.imm2) & 0x3f
		nBit := sf
		return sf<<31 | 0b0<<30 | 0b0<<29 | 0b100111<<23 | nBit<<22 | 0<<21 | rm<<16 | imms<<10 | rn<<5 | rd
	}
	opc := uint32(kindSel)
	immr := uint32(i.imm2>>32) & 0x3f
	imms := uint32(i.imm2) & 0x3f
	nBit := sf
	return sf<<31 | opc<<29 | 0b100110<<23 | nBit<<22 | immr<<16 | imms<<10 | rn<<5 | rd
}

func encodeMovWide(i *instruction, opc uint32) uint32 {
	sf := sfBit(i.size)
	rd := regEnc(i.rd)
	hw := uint32(i.imm2) & 0b11
	imm16 := uint32(i.imm) & 0xffff
	return sf<<31 | opc<<29 | 0b100101<<23 | hw<<21 | imm16<<5 | rd
}

// encodeMovReg is MOV Xd,Xn, the ORR Xd,XZR,Xn alias (or, for an operand
// involving SP, the ADD Xd,Xn,#0 alias, selected via i.imm2).
func encodeMovReg(i *instruction) uint32 {
	sf := sfBit(i.size)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	if i.imm2 != 0 { // SP involved: ADD Xd,Xn,#0
		return sf<<31 | 0b10001<<24 | rn<<5 | rd
	}
	return sf<<31 | 0b01<<29 | 0b01010<<24 | rn<<16 | regEnc(xzrVReg)<<5 | rd
}

func encodeCSel(i *instruction) uint32 {
	sf := sfBit(i.size)
	rd, rn, rm := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm)
	op := uint32(i.imm2 >> 1) // 0=CSEL/CSINC, 1=CSINV/CSNEG: selector bit "op"
	o2 := uint32(i.imm2 & 1)  // second selector bit "op2"
	return sf<<31 | op<<30 | 0<<29 | 0b11010100<<21 | rm<<16 | uint32(i.cond)<<12 | o2<<10 | rn<<5 | rd
}

// --- loads and stores ---

func sizeFieldFor(bits byte) uint32 {
	switch bits {
	case 8:
		return 0b00
	case 16:
		return 0b01
	case 32:
		return 0b10
	case 64:
		return 0b11
	default:
		panic("arm64: invalid load/store access width")
	}
}

func encodeLoadStore(i *instruction, isLoad bool) uint32 {
	bits := byte(i.imm2) // access width in bits (8/16/32/64), may differ from the destination register's width.
	sizeField := sizeFieldFor(bits)
	var opcBase uint32
	if isLoad {
		opcBase = 0b01
	}
	signed := i.imm != 0
	rt := regEnc(i.rd)
	rn := regEnc(i.amode.rn)
	var vBit uint32 // set when the transfer register is a SIMD&FP register (LDR/STR St/Dt)
	if i.rd.RegType() == regalloc.RegTypeFloat {
		vBit = 1
	}
	switch i.amode.kind {
	case addressModeRegUnsignedImm12:
		scale := scaleFor(bits)
		imm12 := uint32(i.amode.imm>>scale) & 0xfff
		opc := opcBase
		if signed && isLoad {
			opc = 0b10
		}
		return sizeField<<30 | 0b111<<27 | vBit<<26 | 1<<24 | opc<<22 | imm12<<10 | rn<<5 | rt
	case addressModeRegUnscaledImm9:
		imm9 := uint32(i.amode.imm) & 0x1ff
		opc := opcBase
		if signed && isLoad {
			opc = 0b10
		}
		return sizeField<<30 | 0b111<<27 | vBit<<26 | 0<<24 | opc<<22 | imm9<<12 | 0b00<<10 | rn<<5 | rt
	case addressModePreIndex, addressModePostIndex:
		imm9 := uint32(i.amode.imm) & 0x1ff
		opc := opcBase
		if signed && isLoad {
			opc = 0b10
		}
		idx := uint32(0b01) // post-index
		if i.amode.kind == addressModePreIndex {
			idx = 0b11
		}
		return sizeField<<30 | 0b111<<27 | vBit<<26 | 0<<24 | opc<<22 | imm9<<12 | idx<<10 | rn<<5 | rt
	case addressModeRegReg, addressModeRegScaled, addressModeRegExtended, addressModeRegScaledExtended:
		rm := regEnc(i.amode.rm)
		opc := opcBase
		if signed && isLoad {
			opc = 0b10
		}
		extOp := uint32(extendOpUXTX)
		var sBit uint32
		switch i.amode.kind {
		case addressModeRegScaled:
			sBit = 1
		case addressModeRegExtended:
			extOp = uint32(i.amode.ext)
		case addressModeRegScaledExtended:
			extOp = uint32(i.amode.ext)
			sBit = 1
		}
		return sizeField<<30 | 0b111<<27 | vBit<<26 | 1<<24 | opc<<22 | 1<<21 | rm<<16 | extOp<<13 | sBit<<12 | 0b10<<10 | rn<<5 | rt
	default:
		panic("arm64: invalid addressModeKind")
	}
}

// scaleFor returns log2 of the access size in bytes, the UnsignedImm12
// form's implicit scale factor.
func scaleFor(bits byte) uint32 {
	switch bits {
	case 8:
		return 0
	case 16:
		return 1
	case 32:
		return 2
	case 64:
		return 3
	default:
		panic("arm64: invalid access width")
	}
}

func encodeLoadStorePair(i *instruction, isLoad bool) uint32 {
	is64 := i.size.is64()
	var opc uint32
	if is64 {
		opc = 0b10
	}
	var vBit uint32
	if i.rd.RegType() == regalloc.RegTypeFloat { // STP/LDP St/Dt: V set, opc 00 (S) or 01 (D)
		vBit, opc = 1, 0b00
		if is64 {
			opc = 0b01
		}
	}
	scale := uint32(2)
	if is64 {
		scale = 3
	}
	imm7 := (uint32(i.amode.imm) >> scale) & 0x7f
	lBit := uint32(0)
	if isLoad {
		lBit = 1
	}
	var idx uint32 = 0b10 // signed offset, no writeback
	switch i.amode.kind {
	case addressModePreIndex:
		idx = 0b11
	case addressModePostIndex:
		idx = 0b01
	}
	rt1 := regEnc(i.rd)
	rt2 := regEnc(i.rn) // second register of the pair reuses i.rn in this kind
	rn := regEnc(i.amode.rn)
	return opc<<30 | 0b101<<27 | vBit<<26 | idx<<23 | lBit<<22 | imm7<<15 | rt2<<10 | rn<<5 | rt1
}

func encodeLoadStoreExclusive(i *instruction, isLoad, acqRel bool) uint32 {
	sizeField := sizeFieldFor(widthBits(i.size))
	var oBit uint32
	if acqRel {
		oBit = 1
	}
	var lBit uint32
	if isLoad {
		lBit = 1
	}
	rt := regEnc(i.rd)
	rn := regEnc(i.amode.rn)
	rs := uint32(0b11111) // LDAXR, LDAR and STLR have no status register
	if !isLoad && !acqRel {
		rs = regEnc(i.rn) // STLXR writes its success flag to Rs
	}
	// o0 (bit 15) is set: every form here is the acquire or release variant.
	return sizeField<<30 | 0b001000<<24 | oBit<<23 | lBit<<22 | rs<<16 | 1<<15 | 0b11111<<10 | rn<<5 | rt
}

// encodeAtomicRMW covers LDADD/LDCLR/LDEOR/LDSET across all four
// acquire/release orderings: size(31:30) 111000(29:24) A(23) R(22)
// 1(21) Rs(20:16) o3(15) opc(14:12) 00(11:10) Rn(9:5) Rt(4:0).
func encodeAtomicRMW(i *instruction) uint32 {
	sizeField := sizeFieldFor(widthBits(i.size))
	rs := regEnc(i.rn)
	rn := regEnc(i.amode.rn)
	rt := regEnc(i.rd)
	opc := uint32(i.imm) & 0b111 // selector: 0=LDADD,1=LDCLR,2=LDEOR,3=LDSET
	aBit, rBit := acquireReleaseBits(i.imm2)
	return sizeField<<30 | 0b111000<<24 | aBit<<23 | rBit<<22 | 1<<21 | rs<<16 | 0<<15 | opc<<12 | 0<<10 | rn<<5 | rt
}

// encodeCAS covers CAS/CASA/CASL/CASAL: size(31:30) 0010001(29:23) L(22)
// 1(21) Rs(20:16) o0(15) 11111(14:10) Rn(9:5) Rt(4:0). L is the
// load-acquire bit, o0 the store-release bit.
func encodeCAS(i *instruction) uint32 {
	sizeField := sizeFieldFor(widthBits(i.size))
	rs := regEnc(i.rn)
	rn := regEnc(i.amode.rn)
	rt := regEnc(i.rd)
	lBit, o0Bit := acquireReleaseBits(i.imm2)
	return sizeField<<30 | 0b0010001<<23 | lBit<<22 | 1<<21 | rs<<16 | o0Bit<<15 | 0b11111<<10 | rn<<5 | rt
}

// acquireReleaseBits unpacks the axis packAcquireRelease built.
func acquireReleaseBits(packed int64) (acquire, release uint32) {
	if packed&1 != 0 {
		acquire = 1
	}
	if packed&2 != 0 {
		release = 1
	}
	return acquire, release
}

// --- branches ---

func encodeCbzBase(i *instruction, nonZero bool) uint32 {
	sf := sfBit(i.size)
	var opBit uint32
	if nonZero {
		opBit = 1
	}
	rt := regEnc(i.regVal)
	return sf<<31 | 0b011010<<25 | opBit<<24 | rt
}

// --- scalar floating point ---

func fpTypeField(s OperandSize) uint32 {
	if s.is64() {
		return 0b01
	}
	return 0b00
}

func encodeFpuRRR(i *instruction) uint32 {
	ptype := fpTypeField(i.size)
	rd, rn, rm := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm)
	// i.imm selects 0=FADD,1=FSUB,2=FMUL,3=FDIV,4=FMAX,5=FMIN; the
	// architecture's opcode field numbers these differently.
	opcode := [...]uint32{0b0010, 0b0011, 0b0000, 0b0001, 0b0100, 0b0101}[i.imm]
	return 0<<31 | 0<<30 | 0<<29 | 0b11110<<24 | ptype<<22 | 1<<21 | rm<<16 | opcode<<12 | 0b10<<10 | rn<<5 | rd
}

func encodeFpuRR(i *instruction) uint32 {
	ptype := fpTypeField(i.size)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	opcode := uint32(i.imm) & 0b111111 // 0=FMOV,1=FABS,2=FNEG,3=FSQRT,...
	return 0<<31 | 0<<30 | 0<<29 | 0b11110<<24 | ptype<<22 | 1<<21 | opcode<<15 | 0b10000<<10 | rn<<5 | rd
}

func encodeFpuRRRR(i *instruction) uint32 {
	ptype := fpTypeField(i.size)
	rd, rn, rm, ra := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm), regEnc(i.ra)
	var o0, o1 uint32
	switch i.imm {
	case 1: // FMSUB
		o0 = 1
	case 2: // FNMADD
		o1 = 1
	case 3: // FNMSUB
		o0, o1 = 1, 1
	}
	return 0<<31 | 0b11111<<24 | ptype<<22 | o1<<21 | rm<<16 | o0<<15 | ra<<10 | rn<<5 | rd
}

func encodeFpuCmp(i *instruction) uint32 {
	ptype := fpTypeField(i.size)
	rn, rm := regEnc(i.rn), regEnc(i.rm)
	opc := uint32(i.imm) & 0b11111 // 0=FCMP (register form); FCMPE is not encoded
	return 0<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | rm<<16 | 0b00<<14 | 1<<13 | opc<<10 | rn<<5
}

// encodeFpuMov selects between FMOV(scalar), FMOV(general), and
// FMOV(immediate) via i.imm: 0=scalar Sd,Sn, 1=Xd,Sn (float-to-int bit
// move, no conversion), 2=Sd,Xn, 3=immediate.
func encodeFpuMov(i *instruction) uint32 {
	switch i.imm {
	case 0:
		ptype := fpTypeField(i.size)
		return 0<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | 0b000000<<15 | 0b10000<<10 | regEnc(i.rn)<<5 | regEnc(i.rd)
	case 1:
		sf := sfBit(i.size)
		ptype := fpTypeField(i.size)
		return sf<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | 0b110<<16 | 0b000000<<10 | regEnc(i.rn)<<5 | regEnc(i.rd)
	case 2:
		sf := sfBit(i.size)
		ptype := fpTypeField(i.size)
		return sf<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | 0b111<<16 | 0b000000<<10 | regEnc(i.rn)<<5 | regEnc(i.rd)
	default:
		ptype := fpTypeField(i.size)
		imm8 := uint32(i.u) & 0xff
		return 0<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | imm8<<13 | 0b100<<10 | regEnc(i.rd)
	}
}

func encodeFcvt(i *instruction) uint32 {
	var opc uint32
	var ptype uint32
	if i.size.is64() { // target is double: source is single, FCVT Dd,Sn
		ptype, opc = 0b00, 0b01
	} else { // target is single: source is double, FCVT Sd,Dn
		ptype, opc = 0b01, 0b00
	}
	return 0<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | 0b0001<<17 | opc<<15 | 0b10000<<10 | regEnc(i.rn)<<5 | regEnc(i.rd)
}

func encodeFpuToInt(i *instruction) uint32 {
	sf := sfBit(i.size) // destination integer width
	ptype := fpTypeField(OperandSize(i.imm2 != 0))
	var rmode, opcode uint32 = 0b11, 0b000 // round-toward-zero (FCVTZS/FCVTZU)
	if i.imm == 0 {
		opcode = 0b000 // signed
	} else {
		opcode = 0b001 // unsigned
	}
	return sf<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | rmode<<19 | opcode<<16 | regEnc(i.rn)<<5 | regEnc(i.rd)
}

func encodeIntToFpu(i *instruction) uint32 {
	ptype := fpTypeField(i.size) // destination float width
	sf := sfBit(OperandSize(i.imm2 != 0))
	var opcode uint32
	if i.imm != 0 {
		opcode = 0b011 // unsigned (UCVTF)
	} else {
		opcode = 0b010 // signed (SCVTF)
	}
	return sf<<31 | 0b11110<<24 | ptype<<22 | 1<<21 | 0b00<<19 | opcode<<16 | regEnc(i.rn)<<5 | regEnc(i.rd)
}

// --- NEON vector ---

func vecQBit(a vecArrangement) uint32 {
	if a.full() {
		return 1
	}
	return 0
}

func encodeVecRRR(i *instruction) uint32 {
	q := vecQBit(i.arr)
	rd, rn, rm := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm)
	if op := vecRRROp(i.imm); op >= vecOpFadd && i.arr.elemSizeBits() < 32 {
		name := [...]string{"FADD", "FSUB", "FMUL", "FDIV"}[op-vecOpFadd]
		panic("arm64: " + name + ": arrangement " + i.arr.String() + " unsupported, want 2s/4s/2d")
	}
	opc := uint32(i.imm) & 0b11111
	size := uint32(vecSizeField(i.arr))
	var uBit uint32
	if i.imm2 != 0 {
		uBit = 1
	}
	return q<<30 | uBit<<29 | 0b01110<<24 | size<<22 | 1<<21 | rm<<16 | opc<<11 | 1<<10 | rn<<5 | rd
}

func vecSizeField(a vecArrangement) byte {
	switch a.elemSizeBits() {
	case 8:
		return 0b00
	case 16:
		return 0b01
	case 32:
		return 0b10
	case 64:
		return 0b11
	default:
		panic("arm64: invalid vector element size")
	}
}

func encodeVecMisc(i *instruction) uint32 {
	q := vecQBit(i.arr)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	size := uint32(vecSizeField(i.arr))
	opc := uint32(i.imm) & 0b11111
	var uBit uint32
	if i.imm2 != 0 {
		uBit = 1
	}
	return q<<30 | uBit<<29 | 0b01110<<24 | size<<22 | 0b10000<<17 | opc<<12 | 0b10<<10 | rn<<5 | rd
}

func encodeVecLanes(i *instruction) uint32 {
	q := vecQBit(i.arr)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	size := uint32(vecSizeField(i.arr))
	opc := uint32(i.imm) & 0b11111
	var uBit uint32
	if i.imm2 != 0 {
		uBit = 1
	}
	return q<<30 | uBit<<29 | 0b01110<<24 | size<<22 | 0b11000<<17 | opc<<12 | 0b10<<10 | rn<<5 | rd
}

func encodeVecPermute(i *instruction) uint32 {
	q := vecQBit(i.arr)
	rd, rn, rm := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm)
	size := uint32(vecSizeField(i.arr))
	opc := uint32(i.imm) & 0b111
	return q<<30 | 0b001110<<24 | size<<22 | rm<<16 | opc<<12 | 0b10<<10 | rn<<5 | rd
}

func encodeVecMovToLane(i *instruction) uint32 {
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	imm5 := vecInsImm5(i.arr, i.index)
	return 0b01001110000<<21 | imm5<<16 | 0b0<<15 | 0b0011<<11 | 1<<10 | rn<<5 | rd
}

func encodeVecMovFromLane(i *instruction) uint32 {
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	imm5 := vecInsImm5(i.arr, i.index)
	q := vecQBit(i.arr)
	var uBit uint32
	if i.imm != 0 { // unsigned (UMOV) vs signed (SMOV)
		uBit = 1
	}
	return q<<30 | uBit<<29 | 0b001110000<<20 | imm5<<16 | 0b0<<15 | 0b0111<<11 | 1<<10 | rn<<5 | rd
}

func vecInsImm5(a vecArrangement, idx vecIndex) uint32 {
	switch a.elemSizeBits() {
	case 8:
		return uint32(idx)<<1 | 0b1
	case 16:
		return uint32(idx)<<2 | 0b10
	case 32:
		return uint32(idx)<<3 | 0b100
	case 64:
		return uint32(idx)<<4 | 0b1000
	default:
		panic("arm64: invalid vector element size")
	}
}

func encodeVecDup(i *instruction) uint32 {
	q := vecQBit(i.arr)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	if i.rn.RegType() == regalloc.RegTypeFloat { // DUP (element), from a vector lane
		imm5 := vecInsImm5(i.arr, i.index)
		return q<<30 | 0b001110000<<20 | imm5<<16 | 0b0<<15 | 0b0001<<11 | 1<<10 | rn<<5 | rd
	}
	// DUP (general), broadcasting a GPR
	imm5 := vecInsImm5(i.arr, 0)
	return q<<30 | 0b001110000<<20 | imm5<<16 | 0b0<<15 | 0b0001<<11 | 1<<10 | rn<<5 | rd
}

func encodeVecExt(i *instruction) uint32 {
	q := vecQBit(i.arr)
	rd, rn, rm := regEnc(i.rd), regEnc(i.rn), regEnc(i.rm)
	imm4 := uint32(i.imm) & 0xf
	return q<<30 | 0b101110000<<21 | rm<<16 | imm4<<11 | 0<<10 | rn<<5 | rd
}

func encodeVecWiden(i *instruction) uint32 {
	q := vecQBit(i.arr)
	rd, rn := regEnc(i.rd), regEnc(i.rn)
	size := uint32(vecSizeField(i.arr))
	opc := uint32(i.imm) & 0b11111
	var uBit uint32
	if i.imm2 != 0 {
		uBit = 1
	}
	return q<<30 | uBit<<29 | 0b01110<<24 | size<<22 | 0b10000<<17 | opc<<12 | 0b10<<10 | rn<<5 | rd
}

// encodeVecLoadStore1 covers the no-offset, single-register form of
// LD1/ST1 (AdvSIMD load/store multiple structures, one register, 1
// element count): 0 Q 0011000 L 000000 0111 size Rn Rt.
func encodeVecLoadStore1(i *instruction) uint32 {
	q := vecQBit(i.arr)
	size := uint32(vecSizeField(i.arr))
	rn := regEnc(i.amode.rn)
	rt := regEnc(i.rd)
	var lBit uint32
	if i.imm != 0 {
		lBit = 1
	}
	return q<<30 | 0b0011000<<23 | lBit<<22 | 0b0111<<12 | size<<10 | rn<<5 | rt
}

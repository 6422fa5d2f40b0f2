package arm64

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeOne(t *testing.T, i *instruction) []byte {
	t.Helper()
	buf := NewMachineBuffer()
	i.encode(buf)
	code, relocs := buf.Finalize()
	require.Empty(t, relocs)
	return code
}

func wordOf(t *testing.T, code []byte) uint32 {
	t.Helper()
	require.Len(t, code, 4)
	return binary.LittleEndian.Uint32(code)
}

func TestEncodeNop(t *testing.T) {
	code := encodeOne(t, AsNop64())
	require.Equal(t, uint32(0xD503201F), wordOf(t, code))
}

func TestEncodeRet(t *testing.T) {
	code := encodeOne(t, AsRet(lrVReg))
	require.Equal(t, uint32(0xD65F03C0), wordOf(t, code))
}

func TestEncodeAddRegReg(t *testing.T) {
	code := encodeOne(t, AsAdd(size64, Writable(x0VReg), x0VReg, x1VReg))
	require.Equal(t, []byte{0x00, 0x00, 0x01, 0x8B}, code)
}

func TestEncodeMovRegIsOrrAlias(t *testing.T) {
	mov := encodeOne(t, AsMovReg(size64, Writable(x0VReg), x1VReg))
	orr := encodeOne(t, AsOrr(size64, Writable(x0VReg), xzrVReg, x1VReg))
	require.Equal(t, orr, mov)
}

func TestEncodeCmpIsSubsAlias(t *testing.T) {
	cmp := encodeOne(t, AsCmp(size64, x0VReg, x1VReg))
	subs := encodeOne(t, AsSubs(size64, Writable(xzrVReg), x0VReg, x1VReg))
	require.Equal(t, subs, cmp)
}

func TestEncodeSdivUdivDifferByOneOpcodeBit(t *testing.T) {
	sdiv := wordOf(t, encodeOne(t, AsSdiv(size64, Writable(x0VReg), x1VReg, x2VReg)))
	udiv := wordOf(t, encodeOne(t, AsUdiv(size64, Writable(x0VReg), x1VReg, x2VReg)))
	require.NotEqual(t, sdiv, udiv)
	require.Equal(t, sdiv&^uint32(1<<10), udiv&^uint32(1<<10), "SDIV/UDIV share every field except the low opcode bit")
}

func TestEncodeNegIsSubFromZr(t *testing.T) {
	neg := wordOf(t, encodeOne(t, AsNeg(size64, Writable(x0VReg), x1VReg)))
	sub := wordOf(t, encodeOne(t, AsSub(size64, Writable(x0VReg), xzrVReg, x1VReg)))
	require.Equal(t, sub, neg)
}

func TestEncodeMulIsMaddWithZrAccumulator(t *testing.T) {
	mul := wordOf(t, encodeOne(t, AsMul(size64, Writable(x0VReg), x1VReg, x2VReg)))
	madd := wordOf(t, encodeOne(t, AsMadd(size64, Writable(x0VReg), x1VReg, x2VReg, xzrVReg)))
	require.Equal(t, madd, mul)
}

func TestEncodeSfBitSelectsWidth(t *testing.T) {
	w := wordOf(t, encodeOne(t, AsAdd(size32, Writable(x0VReg), x0VReg, x1VReg)))
	x := wordOf(t, encodeOne(t, AsAdd(size64, Writable(x0VReg), x0VReg, x1VReg)))
	require.Equal(t, uint32(0), w>>31)
	require.Equal(t, uint32(1), x>>31)
	require.Equal(t, w|(1<<31), x)
}

func TestLogicalImmediateRoundTripsThroughOrr(t *testing.T) {
	desc, ok := logicalImmediateFromBitmask(0x00000000FFFFFFFF, true)
	require.True(t, ok)
	word := wordOf(t, encodeOne(t, AsOrrImm(size64, Writable(x0VReg), x1VReg, desc)))
	require.Equal(t, uint32(0b01), (word>>29)&0b11, "ORR's opc field")
	require.Equal(t, uint32(0b100100), (word>>23)&0b111111, "logical-immediate class bits")
	require.Equal(t, uint32(desc.n), (word>>22)&1)
	require.Equal(t, uint32(desc.immr), (word>>16)&0x3f)
	require.Equal(t, uint32(desc.imms), (word>>10)&0x3f)
}

func TestLogicalImmediateRejectsAllZeroAndAllOnes(t *testing.T) {
	_, ok := logicalImmediateFromBitmask(0, true)
	require.False(t, ok)
	_, ok = logicalImmediateFromBitmask(^uint64(0), true)
	require.False(t, ok)
}

func TestLogicalImmediateAcceptsRepeatingPattern(t *testing.T) {
	// 0x5555555555555555 is a 2-bit repeating element (01), always legal.
	_, ok := logicalImmediateFromBitmask(0x5555555555555555, true)
	require.True(t, ok)
}

func TestEncodeBCondAndLabelFixup(t *testing.T) {
	buf := NewMachineBuffer()
	l := buf.AllocLabel()
	bc := AsBCond(condEQ, l)
	bc.encode(buf)
	buf.Emit4Bytes(0xD503201F) // filler NOP so the branch isn't to the very next word
	buf.BindLabel(l)
	code, _ := buf.Finalize()
	word := binary.LittleEndian.Uint32(code[0:4])
	require.Equal(t, uint32(condEQ), word&0xf)
	imm19 := int32(word<<8) >> 13 // sign-extend bits [23:5]
	require.Equal(t, int32(2), imm19, "branch displacement is 2 instructions (8 bytes) forward")
}

func TestEncodeCbzCbnzOpcodeBit(t *testing.T) {
	buf := NewMachineBuffer()
	l := buf.AllocLabel()
	cbz := AsCbz(size64, x0VReg, l)
	cbz.encode(buf)
	buf.BindLabel(l)
	code, _ := buf.Finalize()
	w := binary.LittleEndian.Uint32(code)
	require.Equal(t, uint32(0), (w>>24)&1)

	buf2 := NewMachineBuffer()
	l2 := buf2.AllocLabel()
	cbnz := AsCbnz(size64, x0VReg, l2)
	cbnz.encode(buf2)
	buf2.BindLabel(l2)
	code2, _ := buf2.Finalize()
	w2 := binary.LittleEndian.Uint32(code2)
	require.Equal(t, uint32(1), (w2>>24)&1)
}

func TestEncodeBranchAndLinkRecordsRelocationForExternalSymbol(t *testing.T) {
	buf := NewMachineBuffer()
	bl := AsBlDirect("my_external_func")
	bl.encode(buf)
	_, relocs := buf.Finalize()
	require.Len(t, relocs, 1)
	require.Equal(t, "my_external_func", relocs[0].Symbol)
	require.Equal(t, int64(0), relocs[0].Offset)
}

func TestEncodeMovzMovkSequenceMaterializesArbitraryConstant(t *testing.T) {
	rd := Writable(x0VReg)
	insts := materializeConst(size64, rd, 0x1234_0000_5678_ABCD)
	require.Len(t, insts, 3) // halfwords 0xABCD, 0x5678, 0x1234 nonzero; 0x0000 skipped
	require.Equal(t, kindMovZ, insts[0].kind)
	require.Equal(t, kindMovK, insts[1].kind)
	require.Equal(t, kindMovK, insts[2].kind)
}

func TestEncodeLoadRegRegAddressingModes(t *testing.T) {
	plain := wordOf(t, encodeOne(t, AsLoad(size64, Writable(x0VReg),
		addressMode{kind: addressModeRegReg, rn: x1VReg, rm: x2VReg}, 64, false)))
	scaled := wordOf(t, encodeOne(t, AsLoad(size64, Writable(x0VReg),
		addressMode{kind: addressModeRegScaled, rn: x1VReg, rm: x2VReg}, 64, false)))
	extended := wordOf(t, encodeOne(t, AsLoad(size64, Writable(x0VReg),
		addressMode{kind: addressModeRegExtended, rn: x1VReg, rm: x2VReg, ext: extendOpSXTW}, 64, false)))
	scaledExtended := wordOf(t, encodeOne(t, AsLoad(size64, Writable(x0VReg),
		addressMode{kind: addressModeRegScaledExtended, rn: x1VReg, rm: x2VReg, ext: extendOpSXTW}, 64, false)))

	require.Equal(t, uint32(0), (plain>>12)&1, "no LSL scale in the plain register-offset form")
	require.Equal(t, uint32(1), (scaled>>12)&1, "S bit set when scaled by the access size")
	require.Equal(t, uint32(extendOpSXTW), (extended>>13)&0b111, "extend option threaded through for the extended form")
	require.Equal(t, uint32(1), (scaledExtended>>12)&1, "scaled+extended still sets S")
	require.Equal(t, uint32(extendOpSXTW), (scaledExtended>>13)&0b111)

	require.NotEqual(t, plain, scaled)
	require.NotEqual(t, plain, extended)
	require.NotEqual(t, scaled, scaledExtended)
}

func TestEncodeStoreRegRegAddressingMode(t *testing.T) {
	amode := addressMode{kind: addressModeRegReg, rn: x1VReg, rm: x2VReg}
	st := wordOf(t, encodeOne(t, AsStore(size64, x0VReg, amode, 64)))
	ld := wordOf(t, encodeOne(t, AsLoad(size64, Writable(x0VReg), amode, 64, false)))
	require.NotEqual(t, st, ld, "load and store must not share an encoding for the same address")
	require.Equal(t, uint32(0), (st>>22)&0b11, "store opc is 00")
	require.Equal(t, uint32(0b01), (ld>>22)&0b11, "unsigned load opc is 01")
}

func TestEncodeStorePairThenLoadPairRoundTripOffsets(t *testing.T) {
	amode := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 16}
	st := wordOf(t, encodeOne(t, AsStorePair(size64, x0VReg, x1VReg, amode)))
	ld := wordOf(t, encodeOne(t, AsLoadPair(size64, Writable(x0VReg), Writable(x1VReg), amode)))
	require.NotEqual(t, st, ld)
	require.Equal(t, uint32(1), (ld>>22)&1, "L bit set on the load form")
	require.Equal(t, uint32(0), (st>>22)&1, "L bit clear on the store form")
	require.Equal(t, uint32(2), (st>>15)&0x7f, "store imm7 is the 16-byte offset scaled by 8")
	require.Equal(t, uint32(2), (ld>>15)&0x7f, "load imm7 is the 16-byte offset scaled by 8")
}

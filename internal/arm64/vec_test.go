package arm64

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeVecAddRegReg(t *testing.T) {
	w := wordOf(t, encodeOne(t, AsVecRRR(vecOpAdd, vecArrangement4S, Writable(v0VReg), v1VReg, v0VReg)))
	require.Equal(t, uint32(1), (w>>30)&1, "Q bit set for the 4S (128-bit) arrangement")
	require.Equal(t, uint32(0b10), (w>>22)&0b11, "size field for 32-bit lanes")
}

func TestEncodeVecRRROpSelector(t *testing.T) {
	add := wordOf(t, encodeOne(t, AsVecRRR(vecOpAdd, vecArrangement8B, Writable(v0VReg), v1VReg, v0VReg)))
	sub := wordOf(t, encodeOne(t, AsVecRRR(vecOpSub, vecArrangement8B, Writable(v0VReg), v1VReg, v0VReg)))
	require.NotEqual(t, add, sub)
}

func TestEncodeVecNegAbsDiffByOpcodeOnly(t *testing.T) {
	neg := wordOf(t, encodeOne(t, AsVecNeg(vecArrangement4S, Writable(v0VReg), v1VReg)))
	abs := wordOf(t, encodeOne(t, AsVecAbs(vecArrangement4S, Writable(v0VReg), v1VReg)))
	require.NotEqual(t, neg, abs)
}

func TestEncodeVecLanesReductionFamily(t *testing.T) {
	addv := wordOf(t, encodeOne(t, AsVecAddv(vecArrangement4S, Writable(v0VReg), v1VReg)))
	sminv := wordOf(t, encodeOne(t, AsVecSminv(vecArrangement4S, Writable(v0VReg), v1VReg)))
	smaxv := wordOf(t, encodeOne(t, AsVecSmaxv(vecArrangement4S, Writable(v0VReg), v1VReg)))
	uminv := wordOf(t, encodeOne(t, AsVecUminv(vecArrangement4S, Writable(v0VReg), v1VReg)))
	umaxv := wordOf(t, encodeOne(t, AsVecUmaxv(vecArrangement4S, Writable(v0VReg), v1VReg)))

	all := []uint32{addv, sminv, smaxv, uminv, umaxv}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				require.NotEqual(t, a, b, "lane-reduction op %d and %d must not share an encoding", i, j)
			}
		}
	}

	// S/U pairs share every field except the U bit at 29.
	require.Equal(t, sminv&^uint32(1<<29), uminv&^uint32(1<<29), "SMINV/UMINV differ only in the U bit")
	require.NotEqual(t, sminv>>29&1, uminv>>29&1)
	require.Equal(t, smaxv&^uint32(1<<29), umaxv&^uint32(1<<29), "SMAXV/UMAXV differ only in the U bit")
	require.NotEqual(t, smaxv>>29&1, umaxv>>29&1)
}

func TestEncodeVecPermuteFamily(t *testing.T) {
	zip1 := wordOf(t, encodeOne(t, AsVecPermute(vecPermZip1, vecArrangement4S, Writable(v0VReg), v1VReg, v0VReg)))
	zip2 := wordOf(t, encodeOne(t, AsVecPermute(vecPermZip2, vecArrangement4S, Writable(v0VReg), v1VReg, v0VReg)))
	uzp1 := wordOf(t, encodeOne(t, AsVecPermute(vecPermUzp1, vecArrangement4S, Writable(v0VReg), v1VReg, v0VReg)))
	require.NotEqual(t, zip1, zip2)
	require.NotEqual(t, zip1, uzp1)
}

func TestEncodeVecInsUmovSmov(t *testing.T) {
	ins := wordOf(t, encodeOne(t, AsVecIns(vecArrangement4S, 1, Writable(v0VReg), v1VReg)))
	umov := wordOf(t, encodeOne(t, AsVecUmov(vecArrangement4S, 1, Writable(x0VReg), v0VReg, false)))
	smov := wordOf(t, encodeOne(t, AsVecUmov(vecArrangement4S, 1, Writable(x0VReg), v0VReg, true)))
	require.NotEqual(t, ins, umov)
	require.NotEqual(t, umov, smov)
	require.Equal(t, uint32(1), (umov>>29)&1, "UMOV sets the U bit")
	require.Equal(t, uint32(0), (smov>>29)&1, "SMOV clears the U bit")
}

func TestEncodeVecDupGeneralAndElement(t *testing.T) {
	dupGeneral := wordOf(t, encodeOne(t, AsVecDup(vecArrangement4S, Writable(v0VReg), x0VReg)))
	dupElem := wordOf(t, encodeOne(t, AsVecDupElem(vecArrangement4S, 2, Writable(v0VReg), v1VReg)))
	require.NotEqual(t, dupGeneral, dupElem)
}

func TestEncodeVecExtImmediate(t *testing.T) {
	ext3 := wordOf(t, encodeOne(t, AsVecExt(vecArrangement16B, Writable(v0VReg), v1VReg, v0VReg, 3)))
	ext5 := wordOf(t, encodeOne(t, AsVecExt(vecArrangement16B, Writable(v0VReg), v1VReg, v0VReg, 5)))
	require.NotEqual(t, ext3, ext5)
	require.Equal(t, uint32(3), (ext3>>11)&0xf)
	require.Equal(t, uint32(5), (ext5>>11)&0xf)
}

func TestEncodeVecWidenFamily(t *testing.T) {
	sxtl := wordOf(t, encodeOne(t, AsVecWiden(vecWidenSxtl, vecArrangement8H, Writable(v0VReg), v1VReg)))
	uxtl := wordOf(t, encodeOne(t, AsVecWiden(vecWidenUxtl, vecArrangement8H, Writable(v0VReg), v1VReg)))
	saddl := wordOf(t, encodeOne(t, AsVecWiden(vecWidenSaddl, vecArrangement8H, Writable(v0VReg), v1VReg)))
	require.NotEqual(t, sxtl, uxtl)
	require.NotEqual(t, sxtl, saddl)
}

func TestEncodeVecLd1St1NoOffset(t *testing.T) {
	ld1 := wordOf(t, encodeOne(t, AsVecLd1(vecArrangement16B, Writable(v0VReg), x0VReg)))
	st1 := wordOf(t, encodeOne(t, AsVecSt1(vecArrangement16B, v0VReg, x0VReg)))
	require.Equal(t, uint32(0x4C407000), ld1, "LD1 {V0.16B},[X0]")
	require.Equal(t, uint32(0x4C007000), st1, "ST1 {V0.16B},[X0]")
	require.NotEqual(t, ld1, st1)
	require.Equal(t, uint32(1), (ld1>>22)&1, "L bit set for LD1")
	require.Equal(t, uint32(0), (st1>>22)&1, "L bit clear for ST1")
}

func TestEncodeVecLd1SizeField(t *testing.T) {
	ld1b := wordOf(t, encodeOne(t, AsVecLd1(vecArrangement16B, Writable(v0VReg), x0VReg)))
	ld1s := wordOf(t, encodeOne(t, AsVecLd1(vecArrangement4S, Writable(v0VReg), x0VReg)))
	require.NotEqual(t, (ld1b>>10)&0b11, (ld1s>>10)&0b11)
}

func TestVecLoadStore1DefsUses(t *testing.T) {
	ld1 := AsVecLd1(vecArrangement16B, Writable(v0VReg), x0VReg)
	require.Contains(t, ld1.defs(nil, nil), v0VReg)
	require.Contains(t, ld1.uses(nil, nil), x0VReg)

	st1 := AsVecSt1(vecArrangement16B, v0VReg, x0VReg)
	require.Empty(t, st1.defs(nil, nil))
	require.Contains(t, st1.uses(nil, nil), v0VReg)
	require.Contains(t, st1.uses(nil, nil), x0VReg)
}

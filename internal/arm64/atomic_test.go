package arm64

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeLdaxrStlxr(t *testing.T) {
	ldaxr := wordOf(t, encodeOne(t, AsLdaxr(size64, Writable(x0VReg), x1VReg)))
	stlxr := wordOf(t, encodeOne(t, AsStlxr(size64, Writable(x2VReg), x0VReg, x1VReg)))
	require.NotEqual(t, ldaxr, stlxr, "load- and store-exclusive must not share an encoding")
	require.Equal(t, uint32(0b11), (ldaxr>>30)&0b11, "size field selects 64-bit")
}

func TestEncodeLdarStlr(t *testing.T) {
	ldar := wordOf(t, encodeOne(t, AsLdar(size32, Writable(x0VReg), x1VReg)))
	stlr := wordOf(t, encodeOne(t, AsStlr(size32, x0VReg, x1VReg)))
	require.NotEqual(t, ldar, stlr)
}

func TestEncodeAtomicRMWAcquireReleaseAxis(t *testing.T) {
	plain := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpAdd, false, false)))
	acq := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpAdd, true, false)))
	rel := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpAdd, false, true)))
	acqRel := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpAdd, true, true)))

	require.Equal(t, uint32(0), (plain>>23)&1, "LDADD: A bit clear")
	require.Equal(t, uint32(0), (plain>>22)&1, "LDADD: R bit clear")
	require.Equal(t, uint32(1), (acq>>23)&1, "LDADDA: A bit set")
	require.Equal(t, uint32(0), (acq>>22)&1, "LDADDA: R bit clear")
	require.Equal(t, uint32(0), (rel>>23)&1, "LDADDL: A bit clear")
	require.Equal(t, uint32(1), (rel>>22)&1, "LDADDL: R bit set")
	require.Equal(t, uint32(1), (acqRel>>23)&1, "LDADDAL: A bit set")
	require.Equal(t, uint32(1), (acqRel>>22)&1, "LDADDAL: R bit set")

	// every variant keeps the same op selector and register fields.
	const orderMask = 0b11 << 22
	require.Equal(t, plain&^uint32(orderMask), acq&^uint32(orderMask))
	require.Equal(t, plain&^uint32(orderMask), rel&^uint32(orderMask))
	require.Equal(t, plain&^uint32(orderMask), acqRel&^uint32(orderMask))
}

func TestEncodeAtomicRMWOpSelector(t *testing.T) {
	add := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpAdd, false, false)))
	clr := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpClr, false, false)))
	eor := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpEor, false, false)))
	set := wordOf(t, encodeOne(t, AsAtomicRMW(size64, x1VReg, Writable(x0VReg), x2VReg, atomicOpSet, false, false)))

	opOf := func(w uint32) uint32 { return (w >> 12) & 0b111 }
	require.Equal(t, uint32(0), opOf(add))
	require.Equal(t, uint32(1), opOf(clr))
	require.Equal(t, uint32(2), opOf(eor))
	require.Equal(t, uint32(3), opOf(set))
}

func TestEncodeCasAcquireReleaseAxis(t *testing.T) {
	plain := wordOf(t, encodeOne(t, AsCas(size64, x1VReg, Writable(x0VReg), x2VReg, false, false)))
	casa := wordOf(t, encodeOne(t, AsCas(size64, x1VReg, Writable(x0VReg), x2VReg, true, false)))
	casl := wordOf(t, encodeOne(t, AsCas(size64, x1VReg, Writable(x0VReg), x2VReg, false, true)))
	casal := wordOf(t, encodeOne(t, AsCas(size64, x1VReg, Writable(x0VReg), x2VReg, true, true)))

	require.Equal(t, uint32(0), (plain>>22)&1, "CAS: L bit clear")
	require.Equal(t, uint32(0), (plain>>15)&1, "CAS: o0 bit clear")
	require.Equal(t, uint32(1), (casa>>22)&1, "CASA: L bit set")
	require.Equal(t, uint32(0), (casa>>15)&1, "CASA: o0 bit clear")
	require.Equal(t, uint32(0), (casl>>22)&1, "CASL: L bit clear")
	require.Equal(t, uint32(1), (casl>>15)&1, "CASL: o0 bit set")
	require.Equal(t, uint32(1), (casal>>22)&1, "CASAL: L bit set")
	require.Equal(t, uint32(1), (casal>>15)&1, "CASAL: o0 bit set")

	require.Equal(t, uint32(1), (plain>>21)&1, "bit 21 is fixed in the CAS family")

	const orderMask = uint32(1<<22) | uint32(1<<15)
	require.Equal(t, plain&^orderMask, casa&^orderMask)
	require.Equal(t, plain&^orderMask, casl&^orderMask)
	require.Equal(t, plain&^orderMask, casal&^orderMask)
}

func TestEncodeDmbDsbIsb(t *testing.T) {
	dmb := wordOf(t, encodeOne(t, AsDmb(barrierOpSY)))
	dsb := wordOf(t, encodeOne(t, AsDsb(barrierOpSY)))
	isb := wordOf(t, encodeOne(t, AsIsb()))
	require.NotEqual(t, dmb, dsb, "DMB and DSB must not collide")
	require.Equal(t, uint32(0xD5033FDF), isb)
}

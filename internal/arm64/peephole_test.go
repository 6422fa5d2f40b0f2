package arm64

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElideRedundantMovesDropsIdentityMoveOnly(t *testing.T) {
	insts := []*instruction{
		AsMovReg(size64, Writable(x0VReg), x0VReg), // identity, dropped
		AsMovReg(size64, Writable(x1VReg), x2VReg),  // real move, kept
	}
	out, stats := runPeephole(insts)
	require.Equal(t, 1, stats.RedundantMovesRemoved)
	require.Len(t, out, 1)
	require.Equal(t, kindMovReg, out[0].kind)
	require.Equal(t, x1VReg, out[0].rd)
}

func TestCombineLoadStorePairsMergesAdjacentScaledLoads(t *testing.T) {
	amode0 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 0}
	amode1 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 8}

	ld0 := AsLoad(size64, Writable(x0VReg), amode0, 64, false)
	ld1 := AsLoad(size64, Writable(x1VReg), amode1, 64, false)

	out, stats := runPeephole([]*instruction{ld0, ld1})
	require.Equal(t, 1, stats.PairsCombined)
	require.Len(t, out, 1)
	require.Equal(t, kindLoadPair, out[0].kind)
	require.Equal(t, x0VReg, out[0].rd)
	require.Equal(t, x1VReg, out[0].rn)
	require.Equal(t, amode0, out[0].amode)
}

func TestCombineLoadStorePairsMergesAdjacentScaledStores(t *testing.T) {
	amode0 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 16}
	amode1 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 24}

	x9VReg := intVReg(x9)
	x10VReg := intVReg(x10)
	st0 := AsStore(size64, x9VReg, amode0, 64)
	st1 := AsStore(size64, x10VReg, amode1, 64)

	out, stats := runPeephole([]*instruction{st0, st1})
	require.Equal(t, 1, stats.PairsCombined)
	require.Len(t, out, 1)
	require.Equal(t, kindStorePair, out[0].kind)
	require.Equal(t, x9VReg, out[0].rd)
	require.Equal(t, x10VReg, out[0].rn)
}

func TestCombineLoadStorePairsSkipsNonConsecutiveOffsets(t *testing.T) {
	amode0 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 0}
	amode1 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 32} // not cur.imm+width/8

	ld0 := AsLoad(size64, Writable(x0VReg), amode0, 64, false)
	ld1 := AsLoad(size64, Writable(x1VReg), amode1, 64, false)

	out, stats := runPeephole([]*instruction{ld0, ld1})
	require.Equal(t, 0, stats.PairsCombined)
	require.Len(t, out, 2)
}

func TestCombineLoadStorePairsSkipsWhenLoadDestAliasesBase(t *testing.T) {
	// A load into the very base register the second load addresses off of
	// must not be fused: the pair form's second half would then read the
	// base after it was already overwritten by the first half.
	amode0 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 0}
	amode1 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 8}

	ld0 := AsLoad(size64, Writable(spVReg), amode0, 64, false)
	ld1 := AsLoad(size64, Writable(x1VReg), amode1, 64, false)

	out, stats := runPeephole([]*instruction{ld0, ld1})
	require.Equal(t, 0, stats.PairsCombined)
	require.Len(t, out, 2)
}

func TestCombineLoadStorePairsRequiresMatchingKind(t *testing.T) {
	amode0 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 0}
	amode1 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 8}

	ld := AsLoad(size64, Writable(x0VReg), amode0, 64, false)
	st := AsStore(size64, x1VReg, amode1, 64)

	out, stats := runPeephole([]*instruction{ld, st})
	require.Equal(t, 0, stats.PairsCombined)
	require.Len(t, out, 2)
}

func TestLabelBindSurvivesPeepholeUnmerged(t *testing.T) {
	amode0 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 0}
	amode1 := addressMode{kind: addressModeRegUnsignedImm12, rn: spVReg, imm: 8}

	insts := []*instruction{
		AsLoad(size64, Writable(x0VReg), amode0, 64, false),
		AsLabelBind(machineLabel(0)),
		AsLoad(size64, Writable(x1VReg), amode1, 64, false),
	}
	out, stats := runPeephole(insts)
	require.Equal(t, 0, stats.PairsCombined, "a label bind between two loads must block pair-combining")
	require.Len(t, out, 3)
	require.Equal(t, kindLabelBind, out[1].kind)
}

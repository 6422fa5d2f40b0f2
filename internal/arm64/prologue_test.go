package arm64

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archlift/aarch64be/internal/regalloc"
)

func TestEmitPrologueElidesFramePointerForSmallLeafFrame(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, SpillSize: 16}
	require.False(t, layout.UsesFramePointer())

	insts := emitPrologue(layout)
	for _, i := range insts {
		require.NotEqual(t, kindStorePair, i.kind, "a leaf function with a small frame must not save FP/LR")
		if i.kind == kindMovReg {
			require.NotEqual(t, fpVReg, i.rd, "FP must not be established when uses_frame_pointer is false")
		}
	}
}

func TestEmitEpilogueElidesFramePointerForSmallLeafFrame(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, SpillSize: 16}
	insts := emitEpilogue(layout)
	for _, i := range insts {
		require.NotEqual(t, kindLoadPair, i.kind, "a leaf function with a small frame must not restore FP/LR")
	}
	require.Equal(t, kindRet, insts[len(insts)-1].kind)
}

func TestEmitPrologueSavesFramePointerForNonLeaf(t *testing.T) {
	layout := FrameLayout{IsLeaf: false}
	insts := emitPrologue(layout)
	require.Equal(t, kindStorePair, insts[0].kind)
	require.Equal(t, fpVReg, insts[0].rd)
	require.Equal(t, lrVReg, insts[0].rn)
	require.Equal(t, kindMovReg, insts[1].kind)
	require.Equal(t, fpVReg, insts[1].rd)
}

func TestEmitEpilogueRestoresFramePointerForNonLeaf(t *testing.T) {
	layout := FrameLayout{IsLeaf: false}
	insts := emitEpilogue(layout)
	require.Equal(t, kindLoadPair, insts[len(insts)-2].kind)
	require.Equal(t, kindRet, insts[len(insts)-1].kind)
}

func TestEmitPrologueZeroFrameLeafOmitsSpAdjust(t *testing.T) {
	layout := FrameLayout{IsLeaf: true}
	require.Zero(t, layout.FrameSize())
	require.Empty(t, emitPrologue(layout))
	require.Len(t, emitEpilogue(layout), 1, "just the RET")
}

func TestEmitPrologueDynamicAllocaCapturesX19(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, HasDynamicAlloca: true}
	insts := emitPrologue(layout)
	last := insts[len(insts)-1]
	require.Equal(t, kindMovReg, last.kind)
	require.Equal(t, x19VReg, last.rd)
}

func TestSaveCalleeSavedAddressesSpWhenFramePointerElided(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, CalleeSavedInt: []regalloc.RealReg{x19}}
	insts := emitPrologue(layout)
	require.NotEmpty(t, insts)
	last := insts[len(insts)-1]
	require.Equal(t, spVReg, last.amode.rn, "callee-save slots address off SP, not FP, once FP is elided")
}

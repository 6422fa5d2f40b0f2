package arm64

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archlift/aarch64be/internal/ir"
)

func TestABIClassifiesFirstEightIntArgsToRegisters(t *testing.T) {
	params := make([]ir.Type, 9)
	for i := range params {
		params[i] = ir.TypeI64
	}
	abi := NewABI(ir.Signature{Params: params})
	for i := 0; i < 8; i++ {
		require.False(t, abi.Args[i].OnStack(), "argument %d should be in a register", i)
	}
	require.True(t, abi.Args[8].OnStack(), "the ninth integer argument must spill to the stack")
}

func TestABIIntAndFloatCountersAreIndependent(t *testing.T) {
	// Eight float args followed by one int arg: the int arg still lands
	// in X0, since the two register classes are counted independently
	// rather than sharing one "argument index".
	params := make([]ir.Type, 9)
	for i := 0; i < 8; i++ {
		params[i] = ir.TypeF64
	}
	params[8] = ir.TypeI64
	abi := NewABI(ir.Signature{Params: params})
	require.False(t, abi.Args[8].OnStack(), "the int arg must not spill just because the float class is full")
	require.Equal(t, x0VReg, abi.Args[8].Reg)
}

func TestABIIndirectResultBeyondTwoReturns(t *testing.T) {
	abi := NewABI(ir.Signature{Results: []ir.Type{ir.TypeI64, ir.TypeI64, ir.TypeI64}})
	require.True(t, abi.IndirectResult)
}

func TestABITwoReturnsFitInRegisters(t *testing.T) {
	abi := NewABI(ir.Signature{Results: []ir.Type{ir.TypeI64, ir.TypeI64}})
	require.False(t, abi.IndirectResult)
	require.Len(t, abi.Rets, 2)
	require.False(t, abi.Rets[0].OnStack())
	require.False(t, abi.Rets[1].OnStack())
}

func TestFrameSizeAlwaysSixteenByteAligned(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for sample := 0; sample < 100; sample++ {
		nInt := rng.Intn(len(calleeSavedInt) + 1)
		nFloat := rng.Intn(len(calleeSavedFloat) + 1)
		layout := FrameLayout{
			CalleeSavedInt:   calleeSavedInt[:nInt],
			CalleeSavedFloat: calleeSavedFloat[:nFloat],
			SpillSize:        int64(rng.Intn(200)),
			OutgoingArgSize:  int64(rng.Intn(200)),
		}
		require.Zero(t, layout.FrameSize()%16, "frame size must be a multiple of 16 (sample %d: int=%d float=%d)", sample, nInt, nFloat)
		require.GreaterOrEqual(t, layout.FrameSize(), int64(16), "the FP/LR pair alone always costs 16 bytes")
	}
}

// TestInvariant3FramePointerMandatoryCases checks, over 100 random
// (locals_size, leaf) samples, that our own FrameSize/UsesFramePointer
// satisfy invariant 3: a non-leaf always saves FP/LR, and a frame that
// ends up over 4096 bytes always reports uses_frame_pointer=true.
func TestInvariant3FramePointerMandatoryCases(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for sample := 0; sample < 100; sample++ {
		locals := int64(rng.Intn(8193))
		leaf := rng.Intn(2) == 0
		layout := FrameLayout{SpillSize: locals, IsLeaf: leaf}
		uses := layout.UsesFramePointer()
		size := layout.FrameSize()
		if !leaf {
			require.True(t, uses, "sample %d: a non-leaf function must always save FP/LR", sample)
		}
		if size > 4096 {
			require.True(t, uses, "sample %d: frame_size %d > 4096 must force uses_frame_pointer (leaf=%v locals=%d)", sample, size, leaf, locals)
		}
	}
}

func TestLeafFunctionWithSmallFrameElidesFramePointer(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, SpillSize: 10}
	require.False(t, layout.UsesFramePointer())
	require.Equal(t, int64(16), layout.FrameSize())
}

func TestDynamicAllocaForcesFramePointer(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, HasDynamicAlloca: true}
	require.True(t, layout.UsesFramePointer())
}

func TestStackArgsForceFramePointer(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, HasStackArgs: true}
	require.True(t, layout.UsesFramePointer())
}

func TestLargeFrameForcesFramePointerEvenOnALeaf(t *testing.T) {
	layout := FrameLayout{IsLeaf: true, SpillSize: 8192}
	require.True(t, layout.UsesFramePointer())
	require.Greater(t, layout.FrameSize(), int64(4096))
}

func TestCompileLeafFunctionHasNoRelocations(t *testing.T) {
	sig := ir.Signature{Params: []ir.Type{ir.TypeI64, ir.TypeI64}, Results: []ir.Type{ir.TypeI64}}
	f := ir.NewFunction("leaf_add", sig)
	b := f.Blocks()[0]
	sum := f.Iadd(b, b.Params()[0], b.Params()[1])
	f.Return(b, sum)

	compiled := Compile(f)
	require.Empty(t, compiled.Relocs)
	require.NotEmpty(t, compiled.Code)
}

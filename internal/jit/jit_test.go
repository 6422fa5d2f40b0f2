package jit_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archlift/aarch64be/internal/arm64"
	"github.com/archlift/aarch64be/internal/ir"
	"github.com/archlift/aarch64be/internal/jit"
)

func buildAddFunction() *ir.Function {
	sig := ir.Signature{
		CallingConv: ir.CallingConvAAPCS64,
		Params:      []ir.Type{ir.TypeI64, ir.TypeI64},
		Results:     []ir.Type{ir.TypeI64},
	}
	f := ir.NewFunction("add", sig)
	b := f.Blocks()[0]
	sum := f.Iadd(b, b.Params()[0], b.Params()[1])
	f.Return(b, sum)
	return f
}

func TestJITAddExecutesAndReturnsSum(t *testing.T) {
	if runtime.GOARCH != "arm64" {
		t.Skip("JIT-compiled AArch64 code only runs on an arm64 host")
	}

	compiled := arm64.Compile(buildAddFunction())
	require.Empty(t, compiled.Relocs, "add() makes no external calls")

	buf, err := jit.Load(compiled, nil)
	require.NoError(t, err)
	defer buf.Close()

	got := buf.CallInt64x2(100, 200)
	require.Equal(t, int64(300), got)
}

func TestLoadRejectsUnresolvedRelocations(t *testing.T) {
	sig := ir.Signature{Results: []ir.Type{ir.TypeI64}}
	f := ir.NewFunction("calls_out", sig)
	b := f.Blocks()[0]
	results := f.Call(b, 0, []ir.Type{ir.TypeI64})
	f.Return(b, results[0])

	compiled := arm64.Compile(f)
	require.NotEmpty(t, compiled.Relocs)

	_, err := jit.Load(compiled, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unresolved external symbol")
}

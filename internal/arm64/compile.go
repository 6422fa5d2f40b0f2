package arm64

import "github.com/archlift/aarch64be/internal/ir"

// CompiledFunction is the final output of the pipeline: position-independent
// machine code plus the external-call sites a caller-supplied symbol
// table must resolve before the code can run.
type CompiledFunction struct {
	Name    string
	Code    []byte
	Relocs  []RelocationInfo
	Stats   PeepholeStats
	ABI     *ABI
}

// Compile runs the full pipeline over f: lower to VCode, run the
// peephole pass (pre-regalloc), allocate registers with the minimal
// linear stand-in, synthesize the prologue/epilogue now that the set of
// used callee-saved registers is known, and encode to bytes.
func Compile(f *ir.Function) *CompiledFunction {
	lf := LowerFunction(f)

	var body []*instruction
	for bi, insts := range lf.Blocks {
		body = append(body, AsLabelBind(lf.BlockLabels[bi]))
		body = append(body, insts...)
	}

	body, stats := runPeephole(body)

	usedInt, usedFloat := allocateLinear(body)

	layout := FrameLayout{
		CalleeSavedInt:   usedInt,
		CalleeSavedFloat: usedFloat,
		IsLeaf:           isLeafBody(body),
		HasStackArgs:     lf.ABI.HasStackArgs(),
	}
	prologue := emitPrologue(layout)
	epilogue := append([]*instruction{AsLabelBind(lf.EpilogueLabel)}, emitEpilogue(layout)...)

	full := make([]*instruction, 0, len(prologue)+len(body)+len(epilogue))
	full = append(full, prologue...)
	full = append(full, body...)
	full = append(full, epilogue...)

	for _, i := range full {
		i.encode(lf.Buf)
	}
	code, relocs := lf.Buf.Finalize()

	return &CompiledFunction{Name: f.Name, Code: code, Relocs: relocs, Stats: stats, ABI: lf.ABI}
}

// isLeafBody reports whether insts makes no BL/BLR call; a call is one of
// the cases that makes FrameLayout.UsesFramePointer save FP/LR.
func isLeafBody(insts []*instruction) bool {
	for _, i := range insts {
		if i.kind == kindBL || i.kind == kindBLR {
			return false
		}
	}
	return true
}

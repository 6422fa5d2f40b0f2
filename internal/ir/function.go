package ir

// Block is a basic block: an ordered list of instructions ending in
// exactly one branch/jump/return/unreachable terminator, plus the block
// parameters its predecessors must supply values for (the entry block's
// parameters are the function's parameters).
type Block struct {
	id           BlockID
	params       []Value
	instructions []*Instruction
}

// ID returns the block's identity, stable for the lifetime of the Function.
func (b *Block) ID() BlockID { return b.id }

// Params returns the block's parameter values, in declaration order.
func (b *Block) Params() []Value { return b.params }

// Instructions returns the block's instructions in program order,
// terminator last.
func (b *Block) Instructions() []*Instruction { return b.instructions }

// Terminator returns the block's last instruction (its branch, jump,
// return, or call that doesn't fall through). Panics on an empty block,
// which is never a legal input to lowering.
func (b *Block) Terminator() *Instruction {
	return b.instructions[len(b.instructions)-1]
}

// Function is the unit lowering consumes: a signature plus a block
// layout in program (emission) order. The entry block's parameters are
// the function's incoming arguments.
type Function struct {
	Name      string
	Signature Signature
	blocks    []*Block
	nextValue ValueID
}

// NewFunction allocates an empty function with the given signature. The
// entry block (with one parameter per Signature.Params) is created and
// returned as Blocks()[0].
func NewFunction(name string, sig Signature) *Function {
	f := &Function{Name: name, Signature: sig}
	entry := f.AddBlock()
	for _, t := range sig.Params {
		entry.params = append(entry.params, f.newValue(t))
	}
	return f
}

// Blocks returns the function's blocks in layout order; Blocks()[0] is the entry block.
func (f *Function) Blocks() []*Block { return f.blocks }

// AddBlock appends and returns a fresh, empty block.
func (f *Function) AddBlock() *Block {
	b := &Block{id: BlockID(len(f.blocks))}
	f.blocks = append(f.blocks, b)
	return b
}

// AddParam appends a new block parameter of type t and returns its Value.
// Only meaningful for non-entry blocks; the entry block's parameters are
// fixed at NewFunction time to match the signature.
func (b *Block) AddParam(f *Function, t Type) Value {
	v := f.newValue(t)
	b.params = append(b.params, v)
	return v
}

func (f *Function) newValue(t Type) Value {
	id := f.nextValue
	f.nextValue++
	return valueOf(id, t)
}

func (b *Block) emit(i *Instruction) { b.instructions = append(b.instructions, i) }

// Iconst appends an integer-constant instruction and returns its result.
func (f *Function) Iconst(b *Block, t Type, imm uint64) Value {
	v := f.newValue(t)
	b.emit(&Instruction{opcode: OpcodeIconst, typ: t, imm: int64(imm), result: v})
	return v
}

// Fconst appends a float-constant instruction and returns its result.
func (f *Function) Fconst(b *Block, t Type, bits uint64) Value {
	v := f.newValue(t)
	b.emit(&Instruction{opcode: OpcodeFconst, typ: t, immF: bits, result: v})
	return v
}

func (f *Function) binary(b *Block, op Opcode, t Type, x, y Value) Value {
	v := f.newValue(t)
	b.emit(&Instruction{opcode: op, typ: t, arg0: x, arg1: y, result: v})
	return v
}

// Iadd, Isub, Imul, Sdiv, Udiv, Band, Bor, Bxor, Ishl, Ushr, Sshr, Rotr
// append the corresponding binary integer opcode.
func (f *Function) Iadd(b *Block, x, y Value) Value { return f.binary(b, OpcodeIadd, x.Type(), x, y) }
func (f *Function) Isub(b *Block, x, y Value) Value { return f.binary(b, OpcodeIsub, x.Type(), x, y) }
func (f *Function) Imul(b *Block, x, y Value) Value { return f.binary(b, OpcodeImul, x.Type(), x, y) }
func (f *Function) Sdiv(b *Block, x, y Value) Value { return f.binary(b, OpcodeSdiv, x.Type(), x, y) }
func (f *Function) Udiv(b *Block, x, y Value) Value { return f.binary(b, OpcodeUdiv, x.Type(), x, y) }
func (f *Function) Band(b *Block, x, y Value) Value { return f.binary(b, OpcodeBand, x.Type(), x, y) }
func (f *Function) Bor(b *Block, x, y Value) Value  { return f.binary(b, OpcodeBor, x.Type(), x, y) }
func (f *Function) Bxor(b *Block, x, y Value) Value { return f.binary(b, OpcodeBxor, x.Type(), x, y) }
func (f *Function) Ishl(b *Block, x, y Value) Value { return f.binary(b, OpcodeIshl, x.Type(), x, y) }
func (f *Function) Ushr(b *Block, x, y Value) Value { return f.binary(b, OpcodeUshr, x.Type(), x, y) }
func (f *Function) Sshr(b *Block, x, y Value) Value { return f.binary(b, OpcodeSshr, x.Type(), x, y) }
func (f *Function) Rotr(b *Block, x, y Value) Value { return f.binary(b, OpcodeRotr, x.Type(), x, y) }

// Fadd, Fsub, Fmul, Fdiv append the corresponding binary float opcode.
func (f *Function) Fadd(b *Block, x, y Value) Value { return f.binary(b, OpcodeFadd, x.Type(), x, y) }
func (f *Function) Fsub(b *Block, x, y Value) Value { return f.binary(b, OpcodeFsub, x.Type(), x, y) }
func (f *Function) Fmul(b *Block, x, y Value) Value { return f.binary(b, OpcodeFmul, x.Type(), x, y) }
func (f *Function) Fdiv(b *Block, x, y Value) Value { return f.binary(b, OpcodeFdiv, x.Type(), x, y) }

// Fneg, Fabs append the corresponding unary float opcode.
func (f *Function) unary(b *Block, op Opcode, t Type, x Value) Value {
	v := f.newValue(t)
	b.emit(&Instruction{opcode: op, typ: t, arg0: x, result: v})
	return v
}

func (f *Function) Fneg(b *Block, x Value) Value { return f.unary(b, OpcodeFneg, x.Type(), x) }
func (f *Function) Fabs(b *Block, x Value) Value { return f.unary(b, OpcodeFabs, x.Type(), x) }

// Bitcast reinterprets x's bits as type t (same width).
func (f *Function) Bitcast(b *Block, t Type, x Value) Value {
	return f.unary(b, OpcodeBitcast, t, x)
}

// FcvtToInt truncates x to an integer of type t.
func (f *Function) FcvtToInt(b *Block, t Type, x Value, signed bool) Value {
	v := f.newValue(t)
	b.emit(&Instruction{opcode: OpcodeFcvtToInt, typ: t, arg0: x, signed: signed, result: v})
	return v
}

// FcvtFromInt converts integer x to a float of type t.
func (f *Function) FcvtFromInt(b *Block, t Type, x Value, signed bool) Value {
	v := f.newValue(t)
	b.emit(&Instruction{opcode: OpcodeFcvtFromInt, typ: t, arg0: x, signed: signed, result: v})
	return v
}

// Icmp appends an integer comparison, producing an i32 boolean (0 or 1).
func (f *Function) Icmp(b *Block, cond IntegerCmpCond, x, y Value) Value {
	v := f.newValue(TypeI32)
	b.emit(&Instruction{opcode: OpcodeIcmp, typ: TypeI32, arg0: x, arg1: y, icmpCond: cond, result: v})
	return v
}

// Fcmp appends a float comparison, producing an i32 boolean (0 or 1).
func (f *Function) Fcmp(b *Block, cond FloatCmpCond, x, y Value) Value {
	v := f.newValue(TypeI32)
	b.emit(&Instruction{opcode: OpcodeFcmp, typ: TypeI32, arg0: x, arg1: y, fcmpCond: cond, result: v})
	return v
}

// Select chooses y if cond is nonzero, else z.
func (f *Function) Select(b *Block, cond, y, z Value) Value {
	v := f.newValue(y.Type())
	b.emit(&Instruction{opcode: OpcodeSelect, typ: y.Type(), arg0: cond, arg1: y, arg2: z, result: v})
	return v
}

// Load appends a load of Type t from addr+offset.
func (f *Function) Load(b *Block, t Type, addr Value, offset int32) Value {
	v := f.newValue(t)
	b.emit(&Instruction{opcode: OpcodeLoad, typ: t, arg0: addr, offset: offset, result: v})
	return v
}

// Store appends a store of val to addr+offset.
func (f *Function) Store(b *Block, addr, val Value, offset int32) {
	b.emit(&Instruction{opcode: OpcodeStore, arg0: addr, arg1: val, offset: offset})
}

// Jump appends an unconditional branch to target, passing args as its block parameters.
func (f *Function) Jump(b *Block, target BlockID, args ...Value) {
	b.emit(&Instruction{opcode: OpcodeJump, targets: []BlockID{target}, args: args})
}

// Brif appends a conditional branch: to thenBlk if cond != 0, else elseBlk.
func (f *Function) Brif(b *Block, cond Value, thenBlk, elseBlk BlockID) {
	b.emit(&Instruction{opcode: OpcodeBrif, arg0: cond, targets: []BlockID{thenBlk, elseBlk}})
}

// Return appends a return of the given values.
func (f *Function) Return(b *Block, vs ...Value) {
	b.emit(&Instruction{opcode: OpcodeReturn, args: vs})
}

// Call appends a direct call, returning its result values (zero, one, or two).
func (f *Function) Call(b *Block, ref FuncRef, results []Type, args ...Value) []Value {
	rs := make([]Value, len(results))
	for i, t := range results {
		rs[i] = f.newValue(t)
	}
	b.emit(&Instruction{opcode: OpcodeCall, funcRef: ref, args: args, result: firstOrInvalid(rs), results: rs})
	return rs
}

func firstOrInvalid(vs []Value) Value {
	if len(vs) == 0 {
		return ValueInvalid
	}
	return vs[0]
}

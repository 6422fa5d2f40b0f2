package ir

// FuncRef identifies a callee by index into the module's function table,
// resolved to a symbol or address by the caller of this package.
type FuncRef uint32

// Instruction is a flattened tagged union: one struct covers every
// opcode, with each field's meaning depending on Opcode — a closed
// tagged union covering nullary, unary, unary_imm, binary, branch,
// jump, call, and return shapes.
type Instruction struct {
	opcode Opcode
	typ    Type

	arg0, arg1, arg2 Value
	args             []Value // Call/CallIndirect extra args, Jump block arguments, or Return values.

	imm    int64  // Iconst.
	immF   uint64 // Fconst, raw IEEE754 bits.
	offset int32  // Load/Store byte offset added to arg0.

	icmpCond IntegerCmpCond
	fcmpCond FloatCmpCond
	signed   bool // Fcvt{To,From}Int: whether the integer side is signed.

	funcRef FuncRef

	targets []BlockID // Jump: [dest]. Brif: [then, else].

	result  Value   // the value this instruction defines, if any.
	results []Value // Call's full result list (result == results[0] when non-empty).
}

// Opcode returns the instruction's opcode.
func (i *Instruction) Opcode() Opcode { return i.opcode }

// Type returns the instruction's result type (the zero Type if it defines none).
func (i *Instruction) Type() Type { return i.typ }

// Result returns the Value this instruction defines.
func (i *Instruction) Result() Value { return i.result }

// Args0 returns the first argument.
func (i *Instruction) Args0() Value { return i.arg0 }

// Args2 returns the first two arguments (the common binary-op shape).
func (i *Instruction) Args2() (Value, Value) { return i.arg0, i.arg1 }

// Args3 returns the first three arguments (Select's condition/true/false).
func (i *Instruction) Args3() (Value, Value, Value) { return i.arg0, i.arg1, i.arg2 }

// CallArgs returns the full argument list of a Call/CallIndirect.
func (i *Instruction) CallArgs() []Value { return i.args }

// ReturnArgs returns the values of a Return.
func (i *Instruction) ReturnArgs() []Value { return i.args }

// IconstData returns the Iconst immediate.
func (i *Instruction) IconstData() uint64 { return uint64(i.imm) }

// FconstData returns the Fconst raw bits.
func (i *Instruction) FconstData() uint64 { return i.immF }

// LoadStoreOffset returns the byte offset of a Load/Store.
func (i *Instruction) LoadStoreOffset() int32 { return i.offset }

// IcmpData returns the operands and predicate of an Icmp.
func (i *Instruction) IcmpData() (Value, Value, IntegerCmpCond) { return i.arg0, i.arg1, i.icmpCond }

// FcmpData returns the operands and predicate of an Fcmp.
func (i *Instruction) FcmpData() (Value, Value, FloatCmpCond) { return i.arg0, i.arg1, i.fcmpCond }

// FcvtSigned returns whether a Fcvt{To,From}Int operates on a signed integer.
func (i *Instruction) FcvtSigned() bool { return i.signed }

// CallFuncRef returns the callee of a Call.
func (i *Instruction) CallFuncRef() FuncRef { return i.funcRef }

// CallResults returns the full result list of a Call (possibly empty).
func (i *Instruction) CallResults() []Value { return i.results }

// BrifTargets returns the (then, else) blocks of a Brif.
func (i *Instruction) BrifTargets() (BlockID, BlockID) { return i.targets[0], i.targets[1] }

// JumpTarget returns the destination block of a Jump.
func (i *Instruction) JumpTarget() BlockID { return i.targets[0] }

package arm64

import "encoding/binary"

// machineLabel is an opaque handle into a MachineBuffer's label table.
// labelInvalid (-1) never names a real label; the zero value is the first
// label AllocLabel hands out.
type machineLabel int32

const labelInvalid machineLabel = -1

// fixupKind selects which bit-packing a pending branch/ADR fixup needs
// once its target label is bound to a concrete offset.
type fixupKind byte

const (
	fixupKindBranch26 fixupKind = iota // B/BL: 26-bit word-aligned displacement
	fixupKindBranch19                  // B.cond/CBZ/CBNZ: 19-bit word-aligned displacement
	fixupKindAdr                       // ADR: 21-bit byte displacement, split immlo/immhi
	fixupKindAdrp                      // ADRP: 21-bit page displacement, split immlo/immhi
)

// fixup is a deferred reference to a not-yet-bound label, recorded at the
// byte offset of the instruction whose immediate field it will patch.
type fixup struct {
	offset int64
	label  machineLabel
	kind   fixupKind
}

// RelocationInfo records an external (non-module) call site for the
// caller of Finalize to resolve against its own symbol table; BL to an
// unresolved symbol is not this package's job to link.
type RelocationInfo struct {
	// Offset is the byte offset, within the finalized code, of the BL
	// instruction's 26-bit immediate field.
	Offset int64
	Symbol string
}

// MachineBuffer accumulates encoded instruction bytes and resolves
// forward and backward branch targets by label, assembler-buffer style:
// emit bytes first, bind or reference labels as you go, and Finalize
// patches every fixup in one pass once all label positions are known.
type MachineBuffer struct {
	buf          []byte
	labelOffsets []int64 // indexed by machineLabel; -1 until bound.
	fixups       []fixup
	relocs       []RelocationInfo
}

// NewMachineBuffer returns an empty buffer.
func NewMachineBuffer() *MachineBuffer {
	return &MachineBuffer{}
}

// Len returns the number of bytes emitted so far.
func (m *MachineBuffer) Len() int64 { return int64(len(m.buf)) }

// Emit4Bytes appends a single little-endian 32-bit instruction word, the
// only granularity the A64 encoding ever produces.
func (m *MachineBuffer) Emit4Bytes(word uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], word)
	m.buf = append(m.buf, tmp[:]...)
}

// AllocLabel reserves a new, as yet unbound label.
func (m *MachineBuffer) AllocLabel() machineLabel {
	l := machineLabel(len(m.labelOffsets))
	m.labelOffsets = append(m.labelOffsets, -1)
	return l
}

// BindLabel associates l with the buffer's current end, i.e. "the next
// instruction emitted is this label's target." Panics if l is already bound.
func (m *MachineBuffer) BindLabel(l machineLabel) {
	if m.labelOffsets[l] != -1 {
		panic("arm64: label bound twice")
	}
	m.labelOffsets[l] = m.Len()
}

// UseLabelBranch26 emits a placeholder word and records a fixup patching
// its 26-bit displacement field once l is bound (B/BL).
func (m *MachineBuffer) UseLabelBranch26(opBits uint32, l machineLabel) {
	m.fixups = append(m.fixups, fixup{offset: m.Len(), label: l, kind: fixupKindBranch26})
	m.Emit4Bytes(opBits)
}

// UseLabelBranch19 emits a placeholder word and records a fixup patching
// its 19-bit displacement field once l is bound (B.cond/CBZ/CBNZ).
func (m *MachineBuffer) UseLabelBranch19(opBits uint32, l machineLabel) {
	m.fixups = append(m.fixups, fixup{offset: m.Len(), label: l, kind: fixupKindBranch19})
	m.Emit4Bytes(opBits)
}

// UseLabelAdr/UseLabelAdrp are the PC-relative address-materialization
// equivalents of UseLabelBranch26, for ADR/ADRP targets (jump tables,
// literal pools).
func (m *MachineBuffer) UseLabelAdr(opBits uint32, l machineLabel) {
	m.fixups = append(m.fixups, fixup{offset: m.Len(), label: l, kind: fixupKindAdr})
	m.Emit4Bytes(opBits)
}

func (m *MachineBuffer) UseLabelAdrp(opBits uint32, l machineLabel) {
	m.fixups = append(m.fixups, fixup{offset: m.Len(), label: l, kind: fixupKindAdrp})
	m.Emit4Bytes(opBits)
}

// RecordRelocation notes an external-call site (direct BL to a symbol
// outside this compilation unit) at the buffer's current end.
func (m *MachineBuffer) RecordRelocation(symbol string) {
	m.relocs = append(m.relocs, RelocationInfo{Offset: m.Len(), Symbol: symbol})
}

// Finalize patches every recorded fixup against its now-bound label and
// returns the completed code plus the external-call relocation list.
// Panics if any label was used but never bound, a lowering bug rather
// than a recoverable condition.
func (m *MachineBuffer) Finalize() ([]byte, []RelocationInfo) {
	for _, fx := range m.fixups {
		target := m.labelOffsets[fx.label]
		if target < 0 {
			panic("arm64: branch to unbound label")
		}
		disp := target - fx.offset
		word := binary.LittleEndian.Uint32(m.buf[fx.offset : fx.offset+4])
		switch fx.kind {
		case fixupKindBranch26:
			if disp%4 != 0 {
				panic("arm64: branch displacement not word-aligned")
			}
			imm26 := (disp / 4) & ((1 << 26) - 1)
			word = (word &^ ((1 << 26) - 1)) | uint32(imm26)
		case fixupKindBranch19:
			if disp%4 != 0 {
				panic("arm64: branch displacement not word-aligned")
			}
			imm19 := (disp / 4) & ((1 << 19) - 1)
			word = (word &^ (((1 << 19) - 1) << 5)) | (uint32(imm19) << 5)
		case fixupKindAdr:
			word = patchAdrImm(word, disp)
		case fixupKindAdrp:
			word = patchAdrImm(word, disp>>12)
		}
		binary.LittleEndian.PutUint32(m.buf[fx.offset:fx.offset+4], word)
	}
	return m.buf, m.relocs
}

// patchAdrImm writes a 21-bit signed displacement into ADR/ADRP's split
// immlo(2 bits, 30:29)/immhi(19 bits, 23:5) fields.
func patchAdrImm(word uint32, disp int64) uint32 {
	imm21 := uint32(disp) & ((1 << 21) - 1)
	immlo := imm21 & 0b11
	immhi := imm21 >> 2
	word = word &^ (0b11 << 29)
	word |= immlo << 29
	word = word &^ (((1 << 19) - 1) << 5)
	word |= immhi << 5
	return word
}

package jit

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/archlift/aarch64be/internal/arm64"
)

func uintptrOf(mem []byte) uintptr { return uintptr(unsafe.Pointer(&mem[0])) }

// resolveRelocations patches every BL relocation site in mem against the
// mapped address mem's own base now has, failing closed if symtab is
// missing an entry rather than leaving an unresolved branch to chase.
func resolveRelocations(fnName string, mem []byte, relocs []arm64.RelocationInfo, symtab map[string]uintptr) error {
	if len(relocs) == 0 {
		return nil
	}
	base := uintptr(0)
	if len(mem) > 0 {
		base = uintptrOf(mem)
	}
	for _, r := range relocs {
		target, ok := symtab[r.Symbol]
		if !ok {
			return fmt.Errorf("jit: %s calls unresolved external symbol %q; supply it in symtab", fnName, r.Symbol)
		}
		site := base + uintptr(r.Offset)
		disp := int64(target) - int64(site)
		if disp%4 != 0 {
			return fmt.Errorf("jit: %s: relocation to %q is not word-aligned (disp=%d)", fnName, r.Symbol, disp)
		}
		imm26 := (disp / 4) & ((1 << 26) - 1)
		word := binary.LittleEndian.Uint32(mem[r.Offset : r.Offset+4])
		word = (word &^ ((1 << 26) - 1)) | uint32(imm26)
		binary.LittleEndian.PutUint32(mem[r.Offset:r.Offset+4], word)
	}
	return nil
}

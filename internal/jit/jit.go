// Package jit maps compiled AArch64 machine code into executable memory
// and exposes it as callable functions, using golang.org/x/sys/unix for
// the raw mmap/mprotect/munmap calls the W^X loading discipline needs.
package jit

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/archlift/aarch64be/internal/arm64"
)

// Module holds a list of mmap'd code regions. It has no methods of its
// own; each CodeBuffer in it is released by that CodeBuffer's Close.
type Module struct {
	regions []*CodeBuffer
}

// CodeBuffer is a single RX memory mapping holding one compiled
// function's bytes, with every external-call relocation already
// patched against its symbol's mapped address by Load.
type CodeBuffer struct {
	mem  []byte
	size int
}

// Load maps fn's code into fresh memory and returns a CodeBuffer ready to
// call. It follows the W^X discipline required on modern Apple Silicon
// and hardened Linux alike: map RW, copy the code in, then mprotect to
// RX before anything can execute it, never holding W and X at once.
//
// If fn.Relocs is non-empty, symtab must supply the mapped address of
// every referenced symbol; this is the "caller-supplied symbol table"
// the external-call relocation design calls for, since there is no
// linker this package can delegate to. Each BL site is patched against
// its symbol's address only once the code's own final mapped address
// is known, which is why resolution happens here rather than in
// MachineBuffer.Finalize.
func Load(fn *arm64.CompiledFunction, symtab map[string]uintptr) (*CodeBuffer, error) {
	return loadBytes(fn.Name, fn.Code, fn.Relocs, symtab)
}

func loadBytes(name string, code []byte, relocs []arm64.RelocationInfo, symtab map[string]uintptr) (*CodeBuffer, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("jit: empty code buffer")
	}
	size := pageAlign(len(code))

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("jit: mmap: %w", err)
	}
	copy(mem, code)

	if err := resolveRelocations(name, mem, relocs, symtab); err != nil {
		_ = unix.Munmap(mem)
		return nil, err
	}

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("jit: mprotect RX: %w", err)
	}

	return &CodeBuffer{mem: mem, size: len(code)}, nil
}

func pageAlign(n int) int {
	const pageSize = 4096
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// Close unmaps the code region. The CodeBuffer, and any function value
// obtained from it, must not be used afterwards.
func (c *CodeBuffer) Close() error {
	if c.mem == nil {
		return nil
	}
	err := unix.Munmap(c.mem)
	c.mem = nil
	return err
}

package jit

import "unsafe"

// Entry returns the callable address of the code buffer's first byte.
func (c *CodeBuffer) Entry() uintptr {
	if len(c.mem) == 0 {
		panic("jit: Entry called on a closed or empty CodeBuffer")
	}
	return uintptr(unsafe.Pointer(&c.mem[0]))
}

// CallInt64x2 invokes a compiled function of AAPCS64 signature (int64,
// int64) -> int64, such as a two-argument integer arithmetic function
// lowered straight from IR. The cast-a-function-pointer-through-unsafe
// trick is the standard shape for calling freshly mmap'd machine code
// from Go without cgo: reinterpret the entry address as a Go func value
// of the exact signature the callee was compiled for, then call it
// directly. The caller is responsible for knowing the signature matches;
// a mismatch is undefined behavior, same as an incorrect cgo signature.
func (c *CodeBuffer) CallInt64x2(a, b int64) int64 {
	entry := c.Entry()
	fn := *(*func(int64, int64) int64)(unsafe.Pointer(&entry))
	return fn(a, b)
}

// CallInt64x1 invokes a compiled function of signature (int64) -> int64.
func (c *CodeBuffer) CallInt64x1(a int64) int64 {
	entry := c.Entry()
	fn := *(*func(int64) int64)(unsafe.Pointer(&entry))
	return fn(a)
}

// CallFloat64x2 invokes a compiled function of signature (float64,
// float64) -> float64.
func (c *CodeBuffer) CallFloat64x2(a, b float64) float64 {
	entry := c.Entry()
	fn := *(*func(float64, float64) float64)(unsafe.Pointer(&entry))
	return fn(a, b)
}

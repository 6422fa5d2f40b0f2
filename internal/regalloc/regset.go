package regalloc

// VRegSet is a small set of VReg values. No other package in this module
// uses it: the peephole pass compares registers directly and the stub
// allocator keeps its own map.
//
// A production allocator typically uses a sparse bitset keyed by
// per-type minimum-id offsetting to stay cheap across an entire module's
// compilation; this backend compiles one function at a time, so a plain
// map is clearer without giving up anything this package's callers need.
type VRegSet map[VReg]struct{}

// NewVRegSet returns an empty set.
func NewVRegSet() VRegSet { return make(VRegSet) }

// Contains reports whether v is a member of the set.
func (s VRegSet) Contains(v VReg) bool {
	_, ok := s[v]
	return ok
}

// Insert adds v to the set.
func (s VRegSet) Insert(v VReg) { s[v] = struct{}{} }

// Reset empties the set for reuse.
func (s VRegSet) Reset() {
	for k := range s {
		delete(s, k)
	}
}

// Package atomic provides the edit-token primitive used by the btree
// engine to distinguish persistent nodes from nodes owned by a live
// transient.
package atomic

import "sync/atomic"

// Bool is a lock-free boolean. Each transient carries exactly one *Bool,
// created live (true) and retired (set false) when the transient is
// sealed. A node tagged with a *Bool may be mutated in place only while
// that Bool is true.
type Bool struct {
	val int32
}

func boolToInt32(val bool) int32 {
	if val {
		return 1
	}
	return 0
}

// NewBool allocates a Bool with the given initial state.
func NewBool(val bool) *Bool {
	return &Bool{val: boolToInt32(val)}
}

// Reset stores a new value.
func (b *Bool) Reset(val bool) {
	atomic.StoreInt32(&b.val, boolToInt32(val))
}

// Deref reads the current value.
func (b *Bool) Deref() bool {
	return atomic.LoadInt32(&b.val) != 0
}

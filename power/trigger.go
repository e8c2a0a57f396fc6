package power

import (
	"sync/atomic"
	"unsafe"

	"powerwait/constants"
	"powerwait/utils"
)

// touch writes the aligned word containing addr back with its own value.
// The value never changes; the store is what trips a monitor on that line.
// Aligning down keeps an 8-byte access inside the watched line even when the
// condition operand is narrower.
//
//go:nocheckptr
func touch(addr unsafe.Pointer) {
	w := (*uint64)(utils.AlignDown(addr, constants.TriggerAlign))
	v := atomic.LoadUint64(w)
	atomic.CompareAndSwapUint64(w, v, v)
}

// sameLine reports whether a and b fall in the same cache line.
//
//go:nosplit
//go:inline
func sameLine(a, b unsafe.Pointer) bool {
	const mask = ^uintptr(constants.CacheLineSize - 1)
	return uintptr(a)&mask == uintptr(b)&mask
}

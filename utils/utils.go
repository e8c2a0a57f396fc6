package utils

import (
	"sync/atomic"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Operand Widths: Monitor Condition Sizes
///////////////////////////////////////////////////////////////////////////////

// ValidSize reports whether sz is one of the operand widths a monitor
// condition can compare: 1, 2, 4 or 8 bytes.
//
//go:nosplit
//go:inline
func ValidSize(sz uint8) bool {
	switch sz {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

///////////////////////////////////////////////////////////////////////////////
// Sized Loaders: Width-Dependent Reads of a Watched Address
///////////////////////////////////////////////////////////////////////////////

// LoadSized reads a 1/2/4/8-byte unsigned value at p, zero-extended to 64
// bits. 4 and 8 byte reads are atomic; narrower reads are single plain loads.
// ⚠️ sz must already be validated with ValidSize; other widths return 0.
//
//go:nosplit
//go:nocheckptr
//go:inline
func LoadSized(p unsafe.Pointer, sz uint8) uint64 {
	switch sz {
	case 1:
		return uint64(*(*uint8)(p))
	case 2:
		return uint64(*(*uint16)(p))
	case 4:
		return uint64(atomic.LoadUint32((*uint32)(p)))
	case 8:
		return atomic.LoadUint64((*uint64)(p))
	}
	return 0
}

// AlignDown rounds p down to a multiple of align (a power of two).
//
//go:nosplit
//go:nocheckptr
//go:inline
func AlignDown(p unsafe.Pointer, align uintptr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(p) &^ (align - 1))
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting: For Cold-Path Messages
///////////////////////////////////////////////////////////////////////////////

// Itoa converts a non-negative int to decimal without fmt.
func Itoa(n int) string {
	if n < 0 {
		return "-" + Utoa(uint64(-n))
	}
	return Utoa(uint64(n))
}

// Utoa converts a uint64 to decimal without fmt.
func Utoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

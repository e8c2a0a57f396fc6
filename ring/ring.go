// ============================================================================
// SPSC RING WITH MONITOR-ADDRESS EXPORT
// ============================================================================
//
// Single-producer/single-consumer ring of fixed 24-byte payloads. Besides
// Push/Pop it exports the location a sleeping consumer should monitor, so an
// idle consumer core can drop into C0.2 until the producer writes the next
// slot.
//
// Architecture overview:
//   - Separated head/tail cursors on isolated cache lines
//   - Sequence-based slot availability signalling
//   - The head slot's sequence word is the monitor target: the producer's
//     release store to it is the write that wakes the consumer
//
// Safety model:
//   - SPSC discipline required: one producer, one consumer
//   - Pop results valid until the next operation
//   - WaitCondition must be called by the consumer, like Pop

package ring

import (
	"math"
	"sync/atomic"
	"unsafe"

	"powerwait/power"
)

// ============================================================================
// CORE DATA STRUCTURES
// ============================================================================

// slot is one 32-byte entry, two per cache line.
//
// Sequence semantics:
//   - Producer: seq = position + 1 when data is ready
//   - Consumer: expects seq = position + 1 for available data
//   - Reset: consumer sets seq = position + ring size for reuse
type slot struct {
	val [24]byte
	seq uint64
}

// Ring is a cache-line isolated SPSC ring buffer.
type Ring struct {
	_    [64]byte
	head uint64 // consumer cursor

	_    [56]byte
	tail uint64 // producer cursor

	_ [56]byte

	mask uint64
	step uint64
	buf  []slot

	_ [3]uint64
}

// Waker cuts a sleeping consumer core's wait short. *power.Intrinsics
// implements it.
type Waker interface {
	Wakeup(core uint) error
}

// ============================================================================
// CONSTRUCTOR
// ============================================================================

// New creates a ring with capacity size, which must be a power of two and
// at least 2. With one slot the reset sequence of a consumed entry equals
// the producer's next expected value, so a full ring would accept a push.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be >=2 and power of two")
	}

	r := &Ring{
		mask: uint64(size - 1),
		step: uint64(size),
		buf:  make([]slot, size),
	}
	for i := range r.buf {
		r.buf[i].seq = uint64(i)
	}
	return r
}

// ============================================================================
// PRODUCER OPERATIONS
// ============================================================================

// Push copies *val into the next free slot. It returns false when the ring
// is full.
//
//go:norace
//go:nocheckptr
//go:nosplit
func (r *Ring) Push(val *[24]byte) bool {
	t := r.tail
	s := &r.buf[t&r.mask]

	if atomic.LoadUint64(&s.seq) != t {
		return false
	}

	s.val = *val
	atomic.StoreUint64(&s.seq, t+1) // trips a monitor armed on this slot
	r.tail = t + 1
	return true
}

// PushWake pushes *val and, if it was accepted, wakes the consumer on core.
// A consumer that is not asleep makes the wakeup a no-op. The wakeup error
// is dropped because a consumer that cannot sleep keeps polling and still
// sees the payload.
func (r *Ring) PushWake(val *[24]byte, w Waker, core uint) bool {
	if !r.Push(val) {
		return false
	}
	_ = w.Wakeup(core)
	return true
}

// ============================================================================
// CONSUMER OPERATIONS
// ============================================================================

// Pop returns the next payload, or nil when the ring is empty.
//
//go:norace
//go:nocheckptr
//go:nosplit
func (r *Ring) Pop() *[24]byte {
	h := r.head
	s := &r.buf[h&r.mask]

	if atomic.LoadUint64(&s.seq) != h+1 {
		return nil
	}

	val := &s.val
	atomic.StoreUint64(&s.seq, h+r.step)
	r.head = h + 1
	return val
}

// PopWait spins with the PAUSE hint until a payload is available.
func (r *Ring) PopWait() *[24]byte {
	for {
		if p := r.Pop(); p != nil {
			return p
		}
		cpuRelax()
	}
}

// WaitCondition fills c so that Monitor skips sleeping when the head slot is
// already readable and otherwise wakes on the producer's store to it.
//
//go:nosplit
func (r *Ring) WaitCondition(c *power.Condition) {
	h := r.head
	s := &r.buf[h&r.mask]
	c.Addr = unsafe.Pointer(&s.seq)
	c.Val = h + 1
	c.Mask = math.MaxUint64
	c.Size = 8
}

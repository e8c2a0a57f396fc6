package power

import (
	"math"
	"math/bits"
	"time"
	"unsafe"

	"powerwait/utils"
)

// Condition describes the word a core waits on. When Mask is non-zero and
// the Size-byte value at Addr, masked, already equals Val, Monitor returns
// without sleeping.
type Condition struct {
	Addr unsafe.Pointer
	Val  uint64
	Mask uint64
	Size uint8 // 1, 2, 4 or 8
}

// Intrinsics is the monitor/pause/wakeup entry point. Build one per process
// before any worker runs and share it by pointer.
type Intrinsics struct {
	gate  *Gate
	table *WaitTable
	plat  Platform
	ident CoreIdentity
}

// New probes caps once, sizes the wait table from ident and binds plat as
// the instruction layer.
func New(caps Capabilities, plat Platform, ident CoreIdentity) *Intrinsics {
	return &Intrinsics{
		gate:  NewGate(caps),
		table: NewWaitTable(ident.MaxCores()),
		plat:  plat,
		ident: ident,
	}
}

// Supported reports the capability gate.
func (in *Intrinsics) Supported() bool { return in.gate.Supported() }

// Table exposes the wait table for inspection.
func (in *Intrinsics) Table() *WaitTable { return in.table }

// Platform returns the instruction layer in use.
func (in *Intrinsics) Platform() Platform { return in.plat }

// Now reads the platform timestamp counter.
func (in *Intrinsics) Now() uint64 { return in.plat.Now() }

// Deadline converts a relative duration into an absolute timestamp for
// Monitor and Pause. Non-positive durations yield "now".
func (in *Intrinsics) Deadline(d time.Duration) uint64 {
	now := in.plat.Now()
	if d <= 0 {
		return now
	}
	hi, lo := bits.Mul64(uint64(d), in.plat.Hz())
	if hi >= uint64(time.Second) {
		return math.MaxUint64
	}
	ticks, _ := bits.Div64(hi, lo, uint64(time.Second))
	if sum, carry := bits.Add64(now, ticks, 0); carry == 0 {
		return sum
	}
	return math.MaxUint64
}

// Monitor arms the address monitor on c.Addr and sleeps in C0.2 until
// deadline or until c.Addr's cache line is written. With a non-zero mask the
// sleep is skipped when the condition already holds.
//
// The calling thread must be a registered worker (see CoreIdentity) and
// should be locked to its OS thread: the monitor is armed on the hardware
// thread that executes Arm.
func (in *Intrinsics) Monitor(c *Condition, deadline uint64) error {
	if !in.gate.Supported() {
		return ErrUnsupported
	}

	core, ok := in.ident.CoreID()
	if !ok || core >= in.table.Len() {
		return ErrInvalidArgument
	}
	if c == nil || c.Addr == nil || !utils.ValidSize(c.Size) {
		return ErrInvalidArgument
	}

	// Publish the address and arm under the lock. A Wakeup that sees the
	// address is then guaranteed to hit an armed monitor.
	in.table.Set(core, c.Addr, in.plat)

	if c.Mask == 0 || utils.LoadSized(c.Addr, c.Size)&c.Mask != c.Val {
		in.plat.Wait(core, deadline)
	}

	in.table.Clear(core)
	return nil
}

// Pause sleeps in C0.2 until deadline without watching any address.
func (in *Intrinsics) Pause(deadline uint64) error {
	if !in.gate.Supported() {
		return ErrUnsupported
	}
	in.plat.Pause(deadline)
	return nil
}

// Wakeup forces core out of Monitor early by writing to the location it is
// watching. It returns nil whether or not core was asleep; a wakeup that
// races ahead of the sleeper publishing its address is dropped and the
// sleeper runs to its deadline.
func (in *Intrinsics) Wakeup(core uint) error {
	if !in.gate.Supported() {
		return ErrUnsupported
	}
	if core >= in.table.Len() {
		return ErrInvalidArgument
	}
	in.table.Signal(core, in.plat)
	return nil
}

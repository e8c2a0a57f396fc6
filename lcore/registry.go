// ════════════════════════════════════════════════════════════════════════════════════════════════
// Worker Core Registry
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Core identity for the wait/wake machinery
//
// Description:
//   Maps OS threads to core slots. A worker goroutine binds itself to a slot, which locks it
//   to its OS thread, optionally pins that thread to a CPU, and records the kernel thread id.
//   Any later call on that thread resolves back to the slot; calls from unbound threads are
//   rejected as non-worker contexts.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package lcore

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"powerwait/debug"
	"powerwait/utils"
)

var (
	// ErrSlotRange is returned for a slot at or beyond MaxCores.
	ErrSlotRange = errors.New("lcore: slot out of range")

	// ErrSlotBusy is returned when another thread already holds the slot.
	ErrSlotBusy = errors.New("lcore: slot already bound")

	// ErrThreadBound is returned when the calling thread already holds a slot.
	ErrThreadBound = errors.New("lcore: thread already bound to a slot")

	// ErrNoThreadID is returned on platforms without kernel thread ids.
	ErrNoThreadID = errors.New("lcore: thread ids unavailable on this platform")
)

// Registry is a fixed-size table of worker slots. It satisfies
// power.CoreIdentity.
type Registry struct {
	max uint

	mu    sync.Mutex
	slots []int // bound thread id per slot, 0 when free

	byTID sync.Map // thread id → slot
}

// NewRegistry creates a registry with max slots.
func NewRegistry(max uint) *Registry {
	return &Registry{
		max:   max,
		slots: make([]int, max),
	}
}

// MaxCores is the number of slots.
func (r *Registry) MaxCores() uint {
	return r.max
}

// CoreID resolves the calling thread to its slot.
func (r *Registry) CoreID() (uint, bool) {
	tid, ok := gettid()
	if !ok {
		return 0, false
	}
	v, ok := r.byTID.Load(tid)
	if !ok {
		return 0, false
	}
	return v.(uint), true
}

// Bind claims slot for the calling goroutine. The goroutine is locked to
// its OS thread and, when cpu >= 0, the thread is pinned to that CPU.
//
// The returned release func must run on the same goroutine; it frees the
// slot, restores the thread's previous affinity and unlocks the thread.
func (r *Registry) Bind(slot uint, cpu int) (release func(), err error) {
	if slot >= r.max {
		return nil, errors.Wrapf(ErrSlotRange, "slot %d, max %d", slot, r.max)
	}

	runtime.LockOSThread()
	defer func() {
		if err != nil {
			runtime.UnlockOSThread()
		}
	}()

	tid, ok := gettid()
	if !ok {
		return nil, ErrNoThreadID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slots[slot] != 0 {
		return nil, errors.Wrapf(ErrSlotBusy, "slot %d", slot)
	}
	if _, bound := r.byTID.Load(tid); bound {
		return nil, ErrThreadBound
	}

	restore := func() {}
	if cpu >= 0 {
		if restore, err = pin(cpu); err != nil {
			return nil, errors.Wrapf(err, "pin slot %d to cpu %d", slot, cpu)
		}
		debug.DropMessage("lcore", "slot "+utils.Itoa(int(slot))+" pinned to cpu "+utils.Itoa(cpu))
	}

	r.slots[slot] = tid
	r.byTID.Store(tid, slot)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.slots[slot] = 0
			r.byTID.Delete(tid)
			r.mu.Unlock()

			restore()
			runtime.UnlockOSThread()
		})
	}, nil
}

// Bound reports whether slot is held by a thread.
func (r *Registry) Bound(slot uint) bool {
	if slot >= r.max {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[slot] != 0
}

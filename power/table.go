package power

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// waitRecord is one core's sleep state. Padding on both sides keeps the
// lock and address of neighbouring cores on different cache lines.
type waitRecord struct {
	_    cpu.CacheLinePad
	mu   sync.Mutex
	addr unsafe.Pointer // nil when the core is not sleeping
	_    cpu.CacheLinePad
}

// WaitTable holds one waitRecord per core slot. Its size is fixed at
// construction.
//
// Only the owning core sets or clears its address; other cores read it under
// the same lock and write to the address it names, never to the record.
type WaitTable struct {
	recs []waitRecord
}

// NewWaitTable allocates a table for n core slots.
func NewWaitTable(n uint) *WaitTable {
	return &WaitTable{recs: make([]waitRecord, n)}
}

// Len is the number of core slots.
func (t *WaitTable) Len() uint {
	return uint(len(t.recs))
}

// Set publishes addr as the location core is monitoring. When a is non-nil
// the monitor is armed before the lock is released, so anyone who observes
// the address can trip it.
func (t *WaitTable) Set(core uint, addr unsafe.Pointer, a Armer) {
	r := &t.recs[core]
	r.mu.Lock()
	r.addr = addr
	if a != nil {
		a.Arm(core, addr)
	}
	r.mu.Unlock()
}

// Clear marks core as no longer sleeping.
func (t *WaitTable) Clear(core uint) {
	r := &t.recs[core]
	r.mu.Lock()
	r.addr = nil
	r.mu.Unlock()
}

// Signal triggers a write on the address core is monitoring, if any, while
// holding that core's lock. The owner cannot clear the address, and so
// cannot free or reuse it, until the write is done. It reports whether an
// address was published.
func (t *WaitTable) Signal(core uint, tr Triggerer) bool {
	r := &t.recs[core]
	r.mu.Lock()
	addr := r.addr
	if addr != nil {
		tr.Trigger(addr)
	}
	r.mu.Unlock()
	return addr != nil
}

// Armed returns the address core is monitoring, or nil.
func (t *WaitTable) Armed(core uint) unsafe.Pointer {
	r := &t.recs[core]
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addr
}

package power

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"
)

// ============================================================================
// TEST COLLABORATORS
// ============================================================================

// fixedIdentity reports the same slot for every caller. Tests only ever
// have one Monitor caller at a time, so one slot is enough.
type fixedIdentity struct {
	slot uint
	max  uint
	ok   bool
}

func (f fixedIdentity) CoreID() (uint, bool) { return f.slot, f.ok }
func (f fixedIdentity) MaxCores() uint       { return f.max }

// worker is the identity of core 0 in a two-core system.
var worker = fixedIdentity{slot: 0, max: 2, ok: true}

// probeResult is a Capabilities with a canned answer.
type probeResult struct {
	s   Support
	err error
}

func (p probeResult) Probe() (Support, error) { return p.s, p.err }

var (
	fullSupport  = probeResult{s: Support{Monitor: true, Pause: true}}
	noPause      = probeResult{s: Support{Monitor: true}}
	noMonitor    = probeResult{s: Support{Pause: true}}
	probeFailure = probeResult{s: Support{Monitor: true, Pause: true}, err: errors.New("cpuid trapped")}
)

// spyPlatform counts every instruction-level call made through it.
type spyPlatform struct {
	*SoftPlatform
	arms, waits, pauses, triggers atomic.Int32
}

func newSpy(cores uint) *spyPlatform {
	return &spyPlatform{SoftPlatform: NewSoftPlatform(cores)}
}

func (s *spyPlatform) Arm(core uint, addr unsafe.Pointer) {
	s.arms.Add(1)
	s.SoftPlatform.Arm(core, addr)
}

func (s *spyPlatform) Wait(core uint, deadline uint64) {
	s.waits.Add(1)
	s.SoftPlatform.Wait(core, deadline)
}

func (s *spyPlatform) Pause(deadline uint64) {
	s.pauses.Add(1)
	s.SoftPlatform.Pause(deadline)
}

func (s *spyPlatform) Trigger(addr unsafe.Pointer) {
	s.triggers.Add(1)
	s.SoftPlatform.Trigger(addr)
}

func (s *spyPlatform) total() int32 {
	return s.arms.Load() + s.waits.Load() + s.pauses.Load() + s.triggers.Load()
}

// flag is a cache-line sized watched location.
type flag struct {
	v uint64
	_ [56]byte
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Microsecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

package power

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"powerwait/constants"
	"powerwait/utils"
)

// SoftPlatform emulates the WAITPKG contract in software. It lets the wait
// machinery run on hosts without the instructions and drives the tests.
//
// A monitor armed on a core trips when Trigger hits the same cache line or
// when the aligned word at the armed address changes value. Timestamps are
// nanoseconds since the platform was created.
type SoftPlatform struct {
	epoch time.Time

	mu    sync.Mutex
	cores []softMonitor
}

type softMonitor struct {
	addr    unsafe.Pointer
	snap    uint64
	tripped chan struct{} // nil when disarmed, closed when tripped
}

// NewSoftPlatform emulates cores hardware threads.
func NewSoftPlatform(cores uint) *SoftPlatform {
	return &SoftPlatform{
		epoch: time.Now(),
		cores: make([]softMonitor, cores),
	}
}

func (s *SoftPlatform) Name() string { return "soft" }

// Probe always reports full support.
func (s *SoftPlatform) Probe() (Support, error) {
	return Support{Monitor: true, Pause: true}, nil
}

//go:nocheckptr
func (s *SoftPlatform) Arm(core uint, addr unsafe.Pointer) {
	snap := atomic.LoadUint64((*uint64)(utils.AlignDown(addr, constants.TriggerAlign)))

	s.mu.Lock()
	if core < uint(len(s.cores)) {
		m := &s.cores[core]
		m.addr = addr
		m.snap = snap
		m.tripped = make(chan struct{})
	}
	s.mu.Unlock()
}

// Wait blocks until the monitor trips or deadline passes. The monitor is
// consumed either way, as UMWAIT does.
//
//go:nocheckptr
func (s *SoftPlatform) Wait(core uint, deadline uint64) {
	if core >= uint(len(s.cores)) {
		return
	}

	s.mu.Lock()
	m := &s.cores[core]
	ch, addr, snap := m.tripped, m.addr, m.snap
	s.mu.Unlock()

	if ch == nil {
		return
	}
	defer s.disarm(core)

	d, ok := s.until(deadline)
	if !ok {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	tick := time.NewTicker(constants.SoftPollInterval)
	defer tick.Stop()

	var word *uint64
	if addr != nil {
		word = (*uint64)(utils.AlignDown(addr, constants.TriggerAlign))
	}

	for {
		select {
		case <-ch:
			return
		case <-timer.C:
			return
		case <-tick.C:
			if word != nil && atomic.LoadUint64(word) != snap {
				return
			}
		}
	}
}

func (s *SoftPlatform) Pause(deadline uint64) {
	if d, ok := s.until(deadline); ok {
		time.Sleep(d)
	}
}

// Trigger writes addr's word back and trips every monitor on its line.
func (s *SoftPlatform) Trigger(addr unsafe.Pointer) {
	touch(addr)

	s.mu.Lock()
	for i := range s.cores {
		m := &s.cores[i]
		if m.tripped != nil && m.addr != nil && sameLine(m.addr, addr) {
			close(m.tripped)
			m.addr = nil
		}
	}
	s.mu.Unlock()
}

func (s *SoftPlatform) Now() uint64 {
	return uint64(time.Since(s.epoch))
}

func (s *SoftPlatform) Hz() uint64 { return constants.SoftHz }

// armed reports whether core has a live monitor; tests use it to wait for a
// sleeper to get past Arm.
func (s *SoftPlatform) armed(core uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cores[core].tripped != nil
}

func (s *SoftPlatform) disarm(core uint) {
	s.mu.Lock()
	m := &s.cores[core]
	m.addr = nil
	m.tripped = nil
	s.mu.Unlock()
}

// until converts an absolute deadline to a positive sleep, false if it has
// already passed.
func (s *SoftPlatform) until(deadline uint64) (time.Duration, bool) {
	now := s.Now()
	if deadline <= now {
		return 0, false
	}
	if diff := deadline - now; diff < math.MaxInt64 {
		return time.Duration(diff), true
	}
	return time.Duration(math.MaxInt64), true
}

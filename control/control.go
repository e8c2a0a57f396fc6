// control.go - Global activity and stop flags for pinned consumers
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides process-wide signaling between producers and the
// pinned consumer cores that poll rings and sleep through the monitor.
//
// Architecture overview:
//   • hot: set by producers on activity; consumers keep spinning while set
//     instead of dropping into a monitored C0.2 sleep
//   • stop: set once on shutdown; consumers exit their poll loop
//   • Automatic cooldown clears hot after a quiet period
//
// Threading model:
//   • Producers call SignalActivity() on every burst
//   • One goroutine (the producer loop) calls PollCooldown()
//   • Consumers read the flags through the pointers returned by Flags()

package control

import (
	"sync/atomic"
	"time"

	"powerwait/constants"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	hot  uint32 // 1 = producer active, consumers should spin
	stop uint32 // 1 = consumers must exit

	lastHot    int64                               // UnixNano of the last activity signal
	cooldownNs = int64(constants.DefaultCooldown) // quiet period before hot is cleared
)

// ============================================================================
// ACTIVITY SIGNALING
// ============================================================================

// SignalActivity marks producers as active and records the time for the
// cooldown.
//
//go:nosplit
//go:inline
func SignalActivity() {
	atomic.StoreInt64(&lastHot, time.Now().UnixNano())
	atomic.StoreUint32(&hot, 1)
}

// ============================================================================
// COOLDOWN MANAGEMENT
// ============================================================================

// PollCooldown clears the hot flag once no activity has been signalled for
// the cooldown period. Call it from a loop that already runs regularly.
//
//go:nosplit
//go:inline
func PollCooldown() {
	if atomic.LoadUint32(&hot) == 1 &&
		time.Now().UnixNano()-atomic.LoadInt64(&lastHot) > atomic.LoadInt64(&cooldownNs) {
		atomic.StoreUint32(&hot, 0)
	}
}

// SetCooldown changes the quiet period used by PollCooldown.
func SetCooldown(d time.Duration) {
	atomic.StoreInt64(&cooldownNs, int64(d))
}

// ============================================================================
// SYSTEM SHUTDOWN
// ============================================================================

// Shutdown asks every consumer to leave its poll loop. A consumer asleep in
// Monitor notices on its next deadline or wakeup.
//
//go:nosplit
//go:inline
func Shutdown() {
	atomic.StoreUint32(&stop, 1)
}

// Reset clears both flags and restores the default cooldown.
func Reset() {
	atomic.StoreUint32(&hot, 0)
	atomic.StoreUint32(&stop, 0)
	atomic.StoreInt64(&lastHot, 0)
	atomic.StoreInt64(&cooldownNs, int64(constants.DefaultCooldown))
}

// ============================================================================
// FLAG ACCESS
// ============================================================================

// Flags returns the stop and hot flags for PinnedConsumer. The pointers are
// valid for the life of the process and must be read atomically.
//
//go:nosplit
//go:inline
func Flags() (*uint32, *uint32) {
	return &stop, &hot
}

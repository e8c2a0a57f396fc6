// host_stub.go - HostPlatform for builds without amd64 cgo asm
//
// Probes as unsupported so every Intrinsics built on it returns
// ErrUnsupported. The instruction methods are no-ops and the clock is the
// monotonic clock in nanoseconds.

//go:build !amd64 || !cgo || noasm

package power

import (
	"errors"
	"time"
	"unsafe"

	"powerwait/constants"
)

var errNoHostIntrinsics = errors.New("WAITPKG intrinsics unavailable in this build")

var hostEpoch = time.Now()

// HostPlatform stands in for the WAITPKG instruction layer on builds that
// cannot issue it.
type HostPlatform struct{}

// Host returns the hardware platform. It doubles as the capability source.
func Host() *HostPlatform { return &HostPlatform{} }

func (h *HostPlatform) Name() string { return "host-stub" }

// Probe always fails, which keeps the capability gate closed.
func (h *HostPlatform) Probe() (Support, error) {
	return Support{}, errNoHostIntrinsics
}

// Arm is a no-op; there is no monitor to arm.
func (h *HostPlatform) Arm(uint, unsafe.Pointer) {}

// Wait returns at once, as UMWAIT does with no monitor armed.
func (h *HostPlatform) Wait(uint, uint64) {}

// Pause returns at once.
func (h *HostPlatform) Pause(uint64) {}

// Trigger writes the watched word back with its own value.
func (h *HostPlatform) Trigger(addr unsafe.Pointer) { touch(addr) }

// Now reads the monotonic clock in nanoseconds since package init.
func (h *HostPlatform) Now() uint64 { return uint64(time.Since(hostEpoch)) }

// Hz is the nanosecond rate of Now.
func (h *HostPlatform) Hz() uint64 { return constants.SoftHz }

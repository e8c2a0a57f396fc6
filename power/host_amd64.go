// ════════════════════════════════════════════════════════════════════════════════════════════════
// C0.2 Wait Instructions - AMD64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: WAITPKG instruction layer
//
// Description:
//   UMONITOR arms an address monitor on the executing hardware thread, UMWAIT sleeps until
//   the monitored line is written or the TSC passes a deadline, TPAUSE sleeps until the
//   deadline alone. All three are emitted as raw byte codes so older assemblers accept them.
//
// Hardware Notes:
//   - Control operand 0 selects C0.2 (deeper than C0.1, still sub-microsecond wake)
//   - The OS may cap the sleep through IA32_UMWAIT_CONTROL; early returns are normal
//   - An interrupt or context switch between UMONITOR and UMWAIT disarms the monitor,
//     making UMWAIT return immediately
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build amd64 && cgo && !noasm

package power

/*
#include <stdint.h>
#include <cpuid.h>

static inline void pw_umonitor(uintptr_t addr) {
    __asm__ __volatile__(".byte 0xf3, 0x0f, 0xae, 0xf7;" : : "D"(addr));
}

static inline void pw_umwait(uint32_t state, uint32_t tsc_l, uint32_t tsc_h) {
    __asm__ __volatile__(".byte 0xf2, 0x0f, 0xae, 0xf7;"
        : : "D"(state), "a"(tsc_l), "d"(tsc_h) : "cc", "memory");
}

static inline void pw_tpause(uint32_t state, uint32_t tsc_l, uint32_t tsc_h) {
    __asm__ __volatile__(".byte 0x66, 0x0f, 0xae, 0xf7;"
        : : "D"(state), "a"(tsc_l), "d"(tsc_h) : "cc", "memory");
}

static inline uint64_t pw_rdtsc(void) {
    uint32_t lo, hi;
    __asm__ __volatile__("rdtsc" : "=a"(lo), "=d"(hi));
    return ((uint64_t)hi << 32) | lo;
}

// CPUID.(EAX=07H,ECX=0):ECX[bit 5] is WAITPKG.
static inline int pw_waitpkg(void) {
    unsigned int a, b, c, d;
    if (__get_cpuid_max(0, 0) < 7) {
        return 0;
    }
    __cpuid_count(7, 0, a, b, c, d);
    return (c >> 5) & 1;
}
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"

	"powerwait/constants"
)

// HostPlatform issues the real WAITPKG instructions.
type HostPlatform struct {
	once sync.Once
	hz   uint64
}

// Host returns the hardware platform. It doubles as the capability source.
func Host() *HostPlatform {
	return &HostPlatform{}
}

func (h *HostPlatform) Name() string { return "host" }

// Probe reads the WAITPKG CPUID bit, which covers UMONITOR, UMWAIT and
// TPAUSE together.
func (h *HostPlatform) Probe() (Support, error) {
	w := C.pw_waitpkg() != 0
	return Support{Monitor: w, Pause: w}, nil
}

//go:nocheckptr
func (h *HostPlatform) Arm(_ uint, addr unsafe.Pointer) {
	C.pw_umonitor(C.uintptr_t(uintptr(addr)))
}

func (h *HostPlatform) Wait(_ uint, deadline uint64) {
	C.pw_umwait(constants.StateC02, C.uint32_t(deadline), C.uint32_t(deadline>>32))
}

func (h *HostPlatform) Pause(deadline uint64) {
	C.pw_tpause(constants.StateC02, C.uint32_t(deadline), C.uint32_t(deadline>>32))
}

func (h *HostPlatform) Trigger(addr unsafe.Pointer) {
	touch(addr)
}

func (h *HostPlatform) Now() uint64 {
	return uint64(C.pw_rdtsc())
}

// Hz estimates the TSC rate once by sampling it against the monotonic clock.
func (h *HostPlatform) Hz() uint64 {
	h.once.Do(func() {
		t0, c0 := time.Now(), h.Now()
		time.Sleep(constants.CalibrationWindow)
		c1, elapsed := h.Now(), time.Since(t0)
		h.hz = (c1 - c0) * uint64(time.Second) / uint64(elapsed)
	})
	return h.hz
}

// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - ARM64
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Spin hint for consumers that cannot monitor
//
// Description:
//   ARM64 has no user-mode monitored wait, so Monitor always reports unsupported here and the
//   consumer spins. YIELD keeps that spin cheap for the sibling hardware thread.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build arm64 && cgo && !noasm

package ring

/*
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
*/
import "C"

//go:nosplit
func cpuRelax() {
	C.cpu_yield()
}

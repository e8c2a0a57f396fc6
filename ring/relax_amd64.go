// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - AMD64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Spin-wait fallback for consumers without WAITPKG
//
// Description:
//   When Monitor reports the platform unsupported, the consumer still backs off with PAUSE
//   between empty polls. PAUSE does not leave C0 but frees pipeline resources for the
//   sibling hyperthread.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build amd64 && cgo && !noasm

package ring

/*
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
*/
import "C"

// cpuRelax emits one PAUSE.
//
//go:norace
//go:nocheckptr
func cpuRelax() {
	C.cpu_pause()
}

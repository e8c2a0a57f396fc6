// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go - Global tunables for C0.2 monitor/wait/wake
//
// Purpose:
//   - Fixes the size of the per-core wait table and the cache geometry it
//     is padded against.
//   - Holds the instruction-level constants shared by the platform layer.
//   - Supplies compile-time defaults for the pinned consumer and the CLI.
//
// Notes:
//   - Runtime overrides live in settings; everything here is a fallback.
//
// ⚠️ No runtime logic here, all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import "time"

// ───────────────────────────── Core Geometry ──────────────────────────────

const (
	// MaxCores bounds the per-core wait table. Core slots at or above this
	// value are rejected as invalid arguments.
	MaxCores = 128

	// CacheLineSize is the coherency granule the monitor hardware watches.
	// Wait records are padded to this size so two cores never share a line.
	CacheLineSize = 64

	// TriggerAlign is the alignment of the word written to trip a monitor.
	// Rounding the watched address down to it keeps the write inside the
	// same cache line and inside the same page.
	TriggerAlign = 8
)

// ───────────────────────── Instruction Parameters ─────────────────────────

const (
	// StateC02 is the UMWAIT/TPAUSE control operand selecting C0.2
	// (bit 0 clear). C0.1 would be 1.
	StateC02 = 0

	// CalibrationWindow is how long the host platform samples the TSC
	// against the monotonic clock to estimate its frequency.
	CalibrationWindow = 20 * time.Millisecond

	// SoftHz is the tick rate of the emulated platform (nanoseconds).
	SoftHz = uint64(time.Second)

	// SoftPollInterval is how often the emulated wait re-reads the watched
	// word to notice plain writes that did not go through Trigger.
	SoftPollInterval = 50 * time.Microsecond
)

// ───────────────────────── Consumer Defaults ──────────────────────────────

const (
	// DefaultSpinBudget is the number of empty polls before a consumer
	// falls back to a monitored sleep.
	DefaultSpinBudget = 224

	// DefaultSleep is how far ahead of "now" a consumer sets its deadline.
	DefaultSleep = 500 * time.Microsecond

	// DefaultHotWindow keeps a consumer spinning after its last message.
	DefaultHotWindow = 5 * time.Millisecond

	// DefaultCooldown clears the global hot flag after this much producer
	// silence.
	DefaultCooldown = time.Second
)

// ───────────────────────── Bench Defaults ─────────────────────────────────

const (
	DefaultBenchCount    = 10_000
	DefaultBenchInterval = 200 * time.Microsecond
	DefaultRingSize      = 1024
)

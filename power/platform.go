package power

import "unsafe"

// Support is the answer of a capability probe.
type Support struct {
	Monitor bool // UMONITOR/UMWAIT
	Pause   bool // TPAUSE
}

// Capabilities reports which wait instructions the platform can execute.
// An error is treated as "nothing supported".
type Capabilities interface {
	Probe() (Support, error)
}

// CoreIdentity resolves the calling thread to its core slot.
type CoreIdentity interface {
	// CoreID returns the slot of the calling thread, or false when the
	// caller is not a registered worker.
	CoreID() (uint, bool)

	// MaxCores is the number of slots; it sizes the wait table.
	MaxCores() uint
}

// Armer arms the address monitor of the calling core.
type Armer interface {
	Arm(core uint, addr unsafe.Pointer)
}

// Triggerer forces a write on a watched location so that any core
// monitoring it wakes up.
type Triggerer interface {
	Trigger(addr unsafe.Pointer)
}

// Platform is the instruction-level seam. Everything else in this package is
// written against it.
type Platform interface {
	Armer
	Triggerer

	// Wait sleeps until deadline, until the armed location is written, or
	// returns at once if nothing is armed.
	Wait(core uint, deadline uint64)

	// Pause sleeps until deadline with no address armed.
	Pause(deadline uint64)

	// Now reads the timestamp counter deadlines are expressed in.
	Now() uint64

	// Hz is the rate of Now in ticks per second.
	Hz() uint64

	Name() string
}

package power

import "powerwait/debug"

// Gate is the process-wide capability flag. It is computed once from a
// probe and never changes afterwards.
type Gate struct {
	supported bool
}

// NewGate probes caps once. The gate opens only when both monitor and pause
// are reported; a failing probe leaves it closed.
func NewGate(caps Capabilities) *Gate {
	s, err := caps.Probe()
	if err != nil {
		debug.DropError("power: capability probe", err)
		return &Gate{}
	}
	if !s.Monitor || !s.Pause {
		debug.DropMessage("power", "WAITPKG incomplete, monitor/pause disabled")
	}
	return &Gate{supported: s.Monitor && s.Pause}
}

// Supported reports whether Monitor, Pause and Wakeup may run.
//
//go:nosplit
//go:inline
func (g *Gate) Supported() bool {
	return g != nil && g.supported
}

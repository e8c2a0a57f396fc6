package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate(t *testing.T) {
	cases := []struct {
		name string
		caps Capabilities
		want bool
	}{
		{"both supported", fullSupport, true},
		{"pause missing", noPause, false},
		{"monitor missing", noMonitor, false},
		{"nothing", probeResult{}, false},
		{"probe error wins over answer", probeFailure, false},
		{"soft platform", NewSoftPlatform(1), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NewGate(c.caps).Supported())
		})
	}
}

func TestGateNil(t *testing.T) {
	var g *Gate
	assert.False(t, g.Supported())
}

// countingCaps records how often it was probed.
type countingCaps struct{ n int }

func (c *countingCaps) Probe() (Support, error) {
	c.n++
	return Support{Monitor: true, Pause: true}, nil
}

func TestGateProbesOnce(t *testing.T) {
	caps := &countingCaps{}
	in := New(caps, NewSoftPlatform(2), worker)

	for i := 0; i < 10; i++ {
		assert.True(t, in.Supported())
		assert.NoError(t, in.Wakeup(1))
	}
	assert.Equal(t, 1, caps.n)
}

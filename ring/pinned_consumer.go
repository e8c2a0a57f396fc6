// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CORE-PINNED CONSUMER WITH MONITORED IDLE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Dedicated core ring consumption
//
// Description:
//   A consumer goroutine bound to a worker core slot. It polls its ring, keeps spinning while
//   producers are hot, and once a spin budget of empty polls is spent it arms the monitor on
//   the ring's head slot and sleeps in C0.2 until the producer writes it, someone calls
//   Wakeup on its slot, or a short deadline passes.
//
// Adaptive Behavior:
//   - Hot mode: continuous polling while the hot flag is set or within HotWindow of a message
//   - Cool mode: monitored sleep after SpinBudget empty polls
//   - Fallback: PAUSE hint when the platform cannot monitor or the slot is not bound
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package ring

import (
	"sync/atomic"
	"time"

	"powerwait/constants"
	"powerwait/debug"
	"powerwait/lcore"
	"powerwait/power"
)

// ConsumerConfig wires a PinnedConsumer.
type ConsumerConfig struct {
	Slot     uint // core slot registered in Registry, and the Wakeup target
	CPU      int  // CPU to pin to, -1 to leave affinity alone
	Ring     *Ring
	Power    *power.Intrinsics
	Registry *lcore.Registry

	Stop    *uint32 // non-zero ends the loop
	Hot     *uint32 // 1 keeps the consumer spinning
	Handler func(*[24]byte)
	Done    chan<- struct{} // closed when the consumer exits

	Sleep      time.Duration // monitored sleep length, DefaultSleep if zero
	SpinBudget int           // empty polls before sleeping, DefaultSpinBudget if zero
	HotWindow  time.Duration // spin this long after a message, DefaultHotWindow if zero

	Stats *ConsumerStats // optional
}

// ConsumerStats counts what a consumer did while idle.
type ConsumerStats struct {
	Messages atomic.Uint64 // payloads handled
	Sleeps   atomic.Uint64 // Monitor calls that returned nil
	Relaxes  atomic.Uint64 // PAUSE fallbacks after a Monitor error
}

// PinnedConsumer launches the consumer goroutine and returns immediately.
// Binding failures are logged and the consumer runs unbound, which turns
// every sleep into the PAUSE fallback.
func PinnedConsumer(cfg ConsumerConfig) {
	if cfg.Sleep <= 0 {
		cfg.Sleep = constants.DefaultSleep
	}
	if cfg.SpinBudget <= 0 {
		cfg.SpinBudget = constants.DefaultSpinBudget
	}
	if cfg.HotWindow <= 0 {
		cfg.HotWindow = constants.DefaultHotWindow
	}
	if cfg.Stats == nil {
		cfg.Stats = &ConsumerStats{}
	}

	go func() {
		defer close(cfg.Done)

		release, err := cfg.Registry.Bind(cfg.Slot, cfg.CPU)
		if err != nil {
			debug.DropError("ring: bind consumer", err)
		} else {
			defer release()
		}

		consume(&cfg)
	}()
}

// consume is the poll loop; it returns when the stop flag is set.
func consume(cfg *ConsumerConfig) {
	var (
		cond    power.Condition
		miss    int
		lastHit = time.Now()
		r       = cfg.Ring
		in      = cfg.Power
	)

	for {
		if atomic.LoadUint32(cfg.Stop) != 0 {
			return
		}

		if p := r.Pop(); p != nil {
			cfg.Handler(p)
			cfg.Stats.Messages.Add(1)
			miss = 0
			lastHit = time.Now()
			continue
		}

		if atomic.LoadUint32(cfg.Hot) == 1 || time.Since(lastHit) <= cfg.HotWindow {
			continue
		}

		if miss++; miss < cfg.SpinBudget {
			continue
		}
		miss = 0

		r.WaitCondition(&cond)
		if err := in.Monitor(&cond, in.Deadline(cfg.Sleep)); err != nil {
			cfg.Stats.Relaxes.Add(1)
			cpuRelax()
			continue
		}
		cfg.Stats.Sleeps.Add(1)
	}
}

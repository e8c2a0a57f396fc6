// ════════════════════════════════════════════════════════════════════════════════════════════════
// Wake Latency Benchmark
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Producer/consumer harness for the wait machinery
//
// Description:
//   One pinned consumer polls a ring and sleeps through Monitor when idle. The producer pushes
//   timestamped payloads a fixed interval apart with PushWake, so every message lands on a
//   consumer that has most likely gone back to sleep. The consumer records how long each
//   payload took from push to handler.
//
// Payload layout:
//   [0:8]   producer timestamp, UnixNano
//   [8:16]  sequence number
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"encoding/binary"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"powerwait/constants"
	"powerwait/control"
	"powerwait/debug"
	"powerwait/results"
	"powerwait/ring"
	"powerwait/utils"
)

// ErrDrainTimeout is returned when the consumer does not catch up with the
// producer after the last push.
var ErrDrainTimeout = errors.New("bench: consumer did not drain the ring")

// benchParams are the knobs of one run, resolved from config and flags.
type benchParams struct {
	count    int
	interval time.Duration
	ringSize int
	slot     uint
	cpu      int
	sleep    time.Duration
	spin     int
}

// benchReport is what `powerwait bench` prints.
type benchReport struct {
	results.Run
	Sent    uint64 `json:"sent"`
	Relaxes uint64 `json:"relaxes"`
}

func newBenchCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure how fast a sleeping consumer core reacts to its producer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := benchParams{
				count:    a.cfg.Bench.Count,
				interval: a.cfg.Bench.Interval,
				ringSize: a.cfg.Bench.RingSize,
				slot:     a.cfg.Power.ConsumerSlot,
				cpu:      a.cfg.Power.ConsumerCPU,
				sleep:    a.cfg.Power.Sleep,
				spin:     a.cfg.Power.SpinBudget,
			}
			if p.count <= 0 || p.interval < 0 {
				return errors.Errorf("bench: count %d must be positive and interval %v not negative", p.count, p.interval)
			}

			rep, err := runBench(ctx, a, p)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
				return err
			}

			if dbPath == "" {
				dbPath = a.cfg.Bench.DBPath
			}
			if dbPath == "" {
				return nil
			}
			store, err := results.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Record(context.WithoutCancel(ctx), rep.Run)
		},
	}

	flags := cmd.Flags()
	flags.Int("count", constants.DefaultBenchCount, "messages to send")
	flags.Duration("interval", constants.DefaultBenchInterval, "gap between messages")
	flags.StringVar(&dbPath, "db", "", "record the run in this sqlite database (default bench.db_path)")
	bindFlags(a.v, flags, map[string]string{
		"count":    "bench.count",
		"interval": "bench.interval",
	})
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RUN
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func runBench(ctx context.Context, a *app, p benchParams) (benchReport, error) {
	if !a.in.Supported() {
		debug.DropMessage("bench", "wait intrinsics unsupported on "+a.plat.Name()+", consumer falls back to PAUSE (try --emulate)")
	}

	control.Reset()
	control.SetCooldown(p.interval / 4)
	stopFlag, hotFlag := control.Flags()

	var (
		r         = ring.New(p.ringSize)
		done      = make(chan struct{})
		stats     ring.ConsumerStats
		latencies = make([]time.Duration, 0, p.count)
		started   = time.Now()
	)

	ring.PinnedConsumer(ring.ConsumerConfig{
		Slot:     p.slot,
		CPU:      p.cpu,
		Ring:     r,
		Power:    a.in,
		Registry: a.reg,
		Stop:     stopFlag,
		Hot:      hotFlag,
		Handler: func(v *[24]byte) {
			sent := int64(binary.LittleEndian.Uint64(v[0:8]))
			latencies = append(latencies, time.Duration(time.Now().UnixNano()-sent))
		},
		Done:       done,
		Sleep:      p.sleep,
		SpinBudget: p.spin,
		HotWindow:  p.interval / 4,
		Stats:      &stats,
	})

	var sent uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() {
			control.Shutdown()
			_ = a.in.Wakeup(p.slot)
		}()
		sent = produce(gctx, r, a.in, p)
		return drain(gctx, &stats, sent, p.sleep)
	})
	g.Go(func() error {
		<-done
		return nil
	})
	if err := g.Wait(); err != nil {
		return benchReport{}, err
	}

	debug.DropMessage("bench", "sent "+utils.Utoa(sent)+" messages, consumer slept "+utils.Utoa(stats.Sleeps.Load())+" times")

	rep := benchReport{
		Run: results.Run{
			Started:  started,
			Platform: a.plat.Name(),
			Slot:     p.slot,
			Messages: stats.Messages.Load(),
			Woken:    stats.Sleeps.Load(),
		},
		Sent:    sent,
		Relaxes: stats.Relaxes.Load(),
	}
	rep.P50, rep.P99, rep.Max = summarize(latencies)
	return rep, nil
}

// produce pushes up to p.count stamped payloads and returns how many went
// out. Cancellation ends the run early without an error.
func produce(ctx context.Context, r *ring.Ring, w ring.Waker, p benchParams) uint64 {
	var (
		msg  [24]byte
		sent uint64
	)

	for i := 0; i < p.count; i++ {
		if ctx.Err() != nil {
			break
		}

		binary.LittleEndian.PutUint64(msg[8:16], uint64(i))
		binary.LittleEndian.PutUint64(msg[0:8], uint64(time.Now().UnixNano()))
		for !r.PushWake(&msg, w, p.slot) {
			if ctx.Err() != nil {
				return sent
			}
			runtime.Gosched()
		}
		sent++
		control.SignalActivity()

		time.Sleep(p.interval)
		control.PollCooldown()
	}
	return sent
}

// drain waits for the consumer to handle every sent message.
func drain(ctx context.Context, stats *ring.ConsumerStats, sent uint64, sleep time.Duration) error {
	limit := time.Now().Add(time.Second + 2*sleep)
	for stats.Messages.Load() < sent {
		if ctx.Err() != nil {
			return nil
		}
		if time.Now().After(limit) {
			return errors.Wrapf(ErrDrainTimeout, "%d of %d handled", stats.Messages.Load(), sent)
		}
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}

// summarize returns the median, 99th percentile and maximum of lat. It
// sorts lat in place.
func summarize(lat []time.Duration) (p50, p99, worst time.Duration) {
	if len(lat) == 0 {
		return 0, 0, 0
	}
	slices.Sort(lat)
	return percentile(lat, 50), percentile(lat, 99), lat[len(lat)-1]
}

// percentile picks the nearest-rank value from sorted.
func percentile(sorted []time.Duration, pct int) time.Duration {
	rank := (pct*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

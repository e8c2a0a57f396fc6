package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"powerwait/constants"
)

// pauseReport compares a requested TPAUSE length with what was observed.
type pauseReport struct {
	Platform  string        `json:"platform"`
	Requested time.Duration `json:"requested_ns"`
	Observed  time.Duration `json:"observed_ns"`
	Ticks     uint64        `json:"ticks"`
}

func newPauseCmd(a *app) *cobra.Command {
	var d time.Duration

	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Sleep once in C0.2 with TPAUSE and report how long it took",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if d < 0 {
				return errors.Errorf("pause: --for %v must not be negative", d)
			}
			r, err := timedPause(a, d)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().DurationVar(&d, "for", constants.DefaultSleep, "how long to pause")
	return cmd
}

func timedPause(a *app, d time.Duration) (pauseReport, error) {
	start := time.Now()
	t0 := a.in.Now()
	deadline := a.in.Deadline(d)
	if err := a.in.Pause(deadline); err != nil {
		return pauseReport{}, errors.Wrap(err, "pause")
	}
	return pauseReport{
		Platform:  a.plat.Name(),
		Requested: d,
		Observed:  time.Since(start),
		Ticks:     a.in.Now() - t0,
	}, nil
}

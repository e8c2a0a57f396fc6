package main

import (
	"github.com/spf13/cobra"
)

// probeReport is the capability report printed by `powerwait probe`.
type probeReport struct {
	Platform  string `json:"platform"`
	Monitor   bool   `json:"monitor"`
	Pause     bool   `json:"pause"`
	Supported bool   `json:"supported"`
	TSCHz     uint64 `json:"tsc_hz"`
	MaxCores  uint   `json:"max_cores"`
	Error     string `json:"error,omitempty"`
}

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report whether the monitor and pause instructions are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), probe(a))
		},
	}
}

func probe(a *app) probeReport {
	r := probeReport{
		Platform:  a.plat.Name(),
		Supported: a.in.Supported(),
		TSCHz:     a.plat.Hz(),
		MaxCores:  a.reg.MaxCores(),
	}
	s, err := a.plat.Probe()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Monitor, r.Pause = s.Monitor, s.Pause
	return r
}

// ════════════════════════════════════════════════════════════════════════════════════════════════
// powerwait - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Per-core C0.2 wait/wake toolkit
// Component: Command line front end
//
// Description:
//   Loads configuration, configures the cold-path logger and selects the instruction layer
//   (real WAITPKG or the software emulation) before dispatching to a subcommand.
//
// Commands:
//   - probe:   capability report
//   - pause:   one timed TPAUSE
//   - bench:   pinned consumer sleeping through Monitor, woken by a producer
//   - history: runs recorded by bench --db
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"powerwait/debug"
	"powerwait/lcore"
	"powerwait/power"
	"powerwait/settings"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// APPLICATION STATE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// platform is what the wait machinery needs from an instruction layer.
type platform interface {
	power.Platform
	power.Capabilities
}

// app carries state shared by every subcommand. It is filled in by the root
// command's pre-run hook.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg  *settings.Config
	plat platform
	reg  *lcore.Registry
	in   *power.Intrinsics
}

// setup loads configuration and builds the wait machinery.
func (a *app) setup() error {
	cfg, err := settings.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	debug.Configure(cfg.Logger)

	if cfg.Power.Emulate {
		a.plat = power.NewSoftPlatform(cfg.Power.MaxCores)
	} else {
		a.plat = power.Host()
	}
	a.reg = lcore.NewRegistry(cfg.Power.MaxCores)
	a.in = power.New(a.plat, a.plat, a.reg)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// COMMAND TREE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "powerwait",
		Short: "Per-core C0.2 monitor/wait/wake toolkit",
		Long: `powerwait drives the UMONITOR/UMWAIT/TPAUSE wait machinery: it reports
whether the CPU supports it, times single pauses, and benchmarks a pinned
consumer core that sleeps in C0.2 until its producer wakes it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./powerwait.yaml or $HOME/.config/powerwait/powerwait.yaml)")
	flags.Bool("emulate", false, "use the software emulation instead of WAITPKG")
	flags.String("log-level", "info", "debug, info, warn or error")
	bindFlags(a.v, flags, map[string]string{
		"emulate":   "power.emulate",
		"log-level": "logger.log_level",
	})

	root.AddCommand(
		newProbeCmd(a),
		newPauseCmd(a),
		newBenchCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// bindFlags lets each named flag override its config key when it is set on
// the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := fs.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		debug.DropError("powerwait", err)
		_ = debug.Logger().Sync()
		os.Exit(1)
	}
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package sc2replay

import (
	"os"
	"strings"

	"github.com/danjacques/gosc2replay/protocol/version"
	"github.com/danjacques/gosc2replay/replay"
	"github.com/danjacques/gosc2replay/replay/archive"
	"github.com/danjacques/gosc2replay/replay/balance"
	"github.com/danjacques/gosc2replay/replay/batch"
	"github.com/danjacques/gosc2replay/replay/state"
	"github.com/danjacques/gosc2replay/replay/stream"
	"github.com/danjacques/gosc2replay/support/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the flags and resources shared by every command.
type app struct {
	logBackend string
	logLevel   string
	logJSON    bool

	balancePath string
	metricsPath string
	merge       replay.MergeConfig

	logger   logging.L
	registry *prometheus.Registry
	balance  *balance.Table
}

func newRootCommand() *cobra.Command {
	a := app{
		merge: replay.DefaultMergeConfig(),
	}

	root := &cobra.Command{
		Use:   "sc2replay",
		Short: "Decode StarCraft II replay event streams",
		Long: `sc2replay decodes the tracker and game event streams of extracted
StarCraft II replays, merges them into one time-ordered stream, and tracks
units, selections and control groups as the replay plays out.

Replays are read from bundles, which "pack" builds from extracted files.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.writeMetrics()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.logBackend, "log-backend", "logrus", "Logging backend (logrus, zerolog).")
	pf.StringVar(&a.logLevel, "log-level", envOr("LOG_LEVEL", "warning"), "Log level (debug, info, warning, error).")
	pf.BoolVar(&a.logJSON, "log-json", false, "Emit logs as JSON.")
	pf.StringVar(&a.balancePath, "balance", "", "Path of a YAML balance table. If empty, the built-in table is used.")
	pf.StringVar(&a.metricsPath, "metrics-out", "", "If set, write Prometheus metrics to this file on exit.")
	pf.Var((*replay.RatioFlag)(&a.merge), "tracker-ratio", "Game loops per tracker loop, used to merge the streams.")

	root.AddCommand(
		a.eventsCommand(),
		a.statsCommand(),
		a.packCommand(),
		a.headerCommand(),
		a.verifyCommand(),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (a *app) setup() error {
	switch a.logBackend {
	case "logrus":
		a.logger = logging.Logrus(os.Stderr, a.logLevel, a.logJSON)

	case "zerolog":
		level := strings.ToLower(a.logLevel)
		if level == "warning" {
			level = "warn"
		}
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return errors.Wrap(err, "invalid log level")
		}
		if lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}

		var zl zerolog.Logger
		if a.logJSON {
			zl = zerolog.New(os.Stderr)
		} else {
			zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		}
		a.logger = logging.Zerolog(zl.Level(lvl).With().Timestamp().Logger())

	default:
		return errors.Errorf("unknown log backend %q", a.logBackend)
	}

	a.registry = prometheus.NewRegistry()
	version.RegisterMonitoring(a.registry)
	stream.RegisterMonitoring(a.registry)
	state.RegisterMonitoring(a.registry)
	replay.RegisterMonitoring(a.registry)
	archive.RegisterMonitoring(a.registry)
	batch.RegisterMonitoring(a.registry)

	if a.balancePath != "" {
		t, err := balance.LoadFile(a.balancePath)
		if err != nil {
			return errors.Wrap(err, "loading balance table")
		}
		a.balance = t
	} else {
		a.balance = balance.Default()
	}
	return nil
}

func (a *app) writeMetrics() error {
	if a.metricsPath == "" {
		return nil
	}
	return errors.Wrap(prometheus.WriteToTextfile(a.metricsPath, a.registry), "writing metrics")
}

// iteratorOptions returns the replay.Options implied by the shared flags.
func (a *app) iteratorOptions(f replay.Filter) replay.Options {
	table := version.DefaultTable()
	table.Logger = a.logger

	return replay.Options{
		Table:   table,
		Merge:   a.merge,
		Filter:  f,
		Balance: a.balance,
		Logger:  a.logger,
	}
}

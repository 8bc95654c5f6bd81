// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package sc2replay

import (
	"fmt"
	"runtime"

	"github.com/danjacques/gosc2replay/replay"
	"github.com/danjacques/gosc2replay/replay/batch"
	"github.com/danjacques/gosc2replay/support/fmtutil"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) statsCommand() *cobra.Command {
	var parallelism int

	cmd := &cobra.Command{
		Use:   "stats BUNDLE...",
		Short: "Summarize the events of many bundles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := batch.Config{
				Parallelism: parallelism,
				Options:     a.iteratorOptions(replay.Filter{}),
				Logger:      a.logger,
			}
			results := cfg.Run(cmd.Context(), args)

			out := cmd.OutOrStdout()
			for _, r := range results {
				switch {
				case r.Failed():
					fmt.Fprintf(out, "%s: FAILED: %s\n", r.Path, r.Err)
					continue
				case r.Partial():
					fmt.Fprintf(out, "%s: PARTIAL (%d stream error(s))\n", r.Path, len(r.StreamErrors))
				default:
					fmt.Fprintf(out, "%s: OK\n", r.Path)
				}

				fmt.Fprintf(out, "  name: %s  build: %d  game time: %s\n",
					r.Name, r.Build, fmtutil.Loop(int64(r.Stats.LastLoop)))
				fmt.Fprintf(out, "  events: %s tracker, %s game  skipped: %s  units alive: %s  (%s)\n",
					humanize.Comma(int64(r.Stats.TrackerEvents)), humanize.Comma(int64(r.Stats.GameEvents)),
					humanize.Comma(int64(r.Stats.TrackerSkipped+r.Stats.GameSkipped)),
					humanize.Comma(int64(r.Units)), durafmt.Parse(r.Elapsed).LimitFirstN(1))
			}

			s := batch.Summarize(results)
			fmt.Fprintf(out, "%s replay(s), %d failed, %d partial: %s events over %s of game time\n",
				humanize.Comma(int64(s.Replays)), s.Failed, s.Partial,
				humanize.Comma(int64(s.Events)), fmtutil.Loop(s.GameLoops))

			if s.Failed > 0 {
				return errors.Errorf("%d replay(s) failed", s.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&parallelism, "parallel", "j", runtime.NumCPU(), "Number of replays to process at once.")
	return cmd
}

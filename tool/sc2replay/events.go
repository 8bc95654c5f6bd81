// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package sc2replay

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/danjacques/gosc2replay/replay"
	"github.com/danjacques/gosc2replay/replay/archive"
	"github.com/danjacques/gosc2replay/replay/state"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// eventLine is one line of "events" output.
type eventLine struct {
	Kind           string      `json:"kind"`
	Loop           int64       `json:"loop"`
	NormalizedLoop float64     `json:"normalized_loop"`
	UserID         *int64      `json:"user_id,omitempty"`
	Type           string      `json:"type"`
	Event          interface{} `json:"event"`
	HintType       string      `json:"hint_type"`
	Hint           state.Hint  `json:"hint,omitempty"`
}

func makeEventLine(item *replay.Item) *eventLine {
	l := eventLine{
		Kind:           item.Kind.String(),
		Loop:           item.Loop,
		NormalizedLoop: item.NormalizedLoop,
		Type:           item.EventType(),
		Event:          item.Event,
		HintType:       item.Hint.HintType(),
	}
	if item.Kind == replay.GameEvent {
		userID := item.UserID
		l.UserID = &userID
	}
	if _, none := item.Hint.(state.HintNone); !none {
		l.Hint = item.Hint
	}
	return &l
}

func (a *app) eventsCommand() *cobra.Command {
	var (
		f           replay.Filter
		userID      int64
		maxLoop     int64
		skipTracker bool
		skipGame    bool
	)

	cmd := &cobra.Command{
		Use:   "events BUNDLE",
		Short: "Print a bundle's merged events as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("user") {
				f.UserID = &userID
			}
			if cmd.Flags().Changed("max-loop") {
				f.MaxLoop = &maxLoop
			}

			b, err := archive.OpenBundle(args[0])
			if err != nil {
				return err
			}

			opts := a.iteratorOptions(f)
			opts.SkipTracker, opts.SkipGame = skipTracker, skipGame
			it, err := replay.NewIterator(b, opts)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			enc := json.NewEncoder(w)
			for {
				item, err := it.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				if err := enc.Encode(makeEventLine(item)); err != nil {
					return errors.Wrap(err, "encoding event")
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			for _, err := range it.StreamErrors() {
				a.logger.Warnf("Replay %q: %s", b.Name(), err)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.Int64Var(&f.MinLoop, "min-loop", 0, "Skip events before this tracker loop.")
	fs.Int64Var(&maxLoop, "max-loop", 0, "Skip events after this tracker loop. If unset, there is no bound.")
	fs.Int64Var(&userID, "user", 0, "Only print game events of this user.")
	fs.StringSliceVar(&f.EventTypes, "type", nil, "Only print events of these types.")
	fs.IntVar(&f.MaxEvents, "max-events", 0, "Stop after printing this many events. Zero is unbounded.")
	fs.BoolVar(&skipTracker, "skip-tracker", false, "Ignore the tracker stream.")
	fs.BoolVar(&skipGame, "skip-game", false, "Ignore the game stream.")
	return cmd
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stream decodes the two replay event sectors into time-stamped
// records.
//
// Each decoder accumulates record deltas into an absolute loop in its own
// time base. Records that the protocol family does not translate are skipped,
// but their deltas still advance the loop.
//
// A structural error ends a stream: the decoder returns the error from every
// subsequent Next call.
package stream

import (
	"io"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/version"
	"github.com/danjacques/gosc2replay/support/cursor"
	"github.com/danjacques/gosc2replay/support/fmtutil"
	"github.com/danjacques/gosc2replay/support/logging"

	"github.com/pkg/errors"
)

// hexContext is the number of bytes around a failing record to include in
// debug dumps.
const hexContext = 32

// TrackerRecord is a decoded tracker event.
type TrackerRecord struct {
	// Loop is the absolute tracker loop of the event.
	Loop int64
	// Delta is the number of loops since the previous record.
	Delta uint32
	// Event is the decoded event.
	Event event.Tracker
}

// GameRecord is a decoded game event.
type GameRecord struct {
	// Loop is the absolute game loop of the event.
	Loop int64
	// Delta is the number of loops since the previous record.
	Delta uint32
	// UserID is the acting user.
	UserID int64
	// Event is the decoded event.
	Event event.Game
}

// Tracker decodes a tracker-events sector.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	// Logger, if not nil, receives skip and error diagnostics.
	Logger logging.L

	family  version.Family
	c       cursor.Bytes
	loop    int64
	skipped int
	err     error
}

// NewTracker returns a Tracker that decodes data using family.
func NewTracker(data []byte, family version.Family) *Tracker {
	return &Tracker{
		family: family,
		c:      cursor.NewBytes(data),
	}
}

// Loop returns the loop of the most recently decoded record, including
// skipped ones.
func (t *Tracker) Loop() int64 { return t.loop }

// Skipped returns the number of records skipped so far.
func (t *Tracker) Skipped() int { return t.skipped }

// Next returns the next translated record.
//
// Next returns io.EOF once the stream is cleanly exhausted.
func (t *Tracker) Next() (*TrackerRecord, error) {
	for t.err == nil {
		if t.c.Done() {
			t.err = io.EOF
			break
		}

		nc, rec, err := t.family.DecodeTrackerEvent(t.c)
		if err != nil {
			t.fail(err)
			break
		}
		t.c = nc
		t.loop += int64(rec.Delta)

		if rec.Event == nil {
			t.skipped++
			skippedEvents.WithLabelValues(trackerStreamName).Inc()
			logging.Must(t.Logger).Debugf("Skipping unsupported tracker event %d at loop %d.", rec.ID, t.loop)
			continue
		}

		return &TrackerRecord{
			Loop:  t.loop,
			Delta: rec.Delta,
			Event: rec.Event,
		}, nil
	}
	return nil, t.err
}

func (t *Tracker) fail(err error) {
	offset := t.c.Offset()
	streamErrors.WithLabelValues(trackerStreamName).Inc()
	logging.Must(t.Logger).Debugf("Tracker stream failed at offset %d (loop %d):\n%s",
		offset, t.loop, fmtutil.Hex{Offset: offset, Data: t.c.Peek(hexContext)})
	t.err = errors.Wrapf(err, "tracker stream at offset %d", offset)
}

// Game decodes a game-events sector.
//
// Game is not safe for concurrent use.
type Game struct {
	// Logger, if not nil, receives skip and error diagnostics.
	Logger logging.L

	family  version.Family
	c       cursor.Bits
	loop    int64
	skipped int
	err     error
}

// NewGame returns a Game that decodes data using family.
func NewGame(data []byte, family version.Family) *Game {
	return &Game{
		family: family,
		c:      cursor.NewBits(data),
	}
}

// Loop returns the loop of the most recently decoded record, including
// skipped ones.
func (g *Game) Loop() int64 { return g.loop }

// Skipped returns the number of records skipped so far.
func (g *Game) Skipped() int { return g.skipped }

// Next returns the next translated record.
//
// Next returns io.EOF once the stream is cleanly exhausted.
func (g *Game) Next() (*GameRecord, error) {
	for g.err == nil {
		if g.c.Done() {
			g.err = io.EOF
			break
		}

		nc, rec, err := g.family.DecodeGameEvent(g.c)
		if err != nil {
			g.fail(err)
			break
		}
		g.c = nc
		g.loop += int64(rec.Delta)

		if rec.Event == nil {
			g.skipped++
			skippedEvents.WithLabelValues(gameStreamName).Inc()
			logging.Must(g.Logger).Debugf("Skipping untranslated game event %d at loop %d.", rec.ID, g.loop)
			continue
		}

		return &GameRecord{
			Loop:   g.loop,
			Delta:  rec.Delta,
			UserID: rec.UserID,
			Event:  rec.Event,
		}, nil
	}
	return nil, g.err
}

func (g *Game) fail(err error) {
	offset, bit := g.c.Offset()
	streamErrors.WithLabelValues(gameStreamName).Inc()
	logging.Must(g.Logger).Debugf("Game stream failed at offset %d bit %d (loop %d).", offset, bit, g.loop)
	g.err = errors.Wrapf(err, "game stream at offset %d", offset)
}

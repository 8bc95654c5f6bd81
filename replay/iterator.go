// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package replay merges a replay's tracker and game event streams into one
// time-ordered sequence, and folds it through the replay state.
package replay

import (
	"io"
	"math"

	"github.com/danjacques/gosc2replay/protocol/version"
	"github.com/danjacques/gosc2replay/replay/balance"
	"github.com/danjacques/gosc2replay/replay/state"
	"github.com/danjacques/gosc2replay/replay/stream"
	"github.com/danjacques/gosc2replay/support/logging"

	"github.com/pkg/errors"
)

// Kind identifies the stream that an Item came from.
type Kind int

const (
	// TrackerEvent is an event from the tracker stream.
	TrackerEvent Kind = iota
	// GameEvent is an event from the game stream.
	GameEvent
)

func (k Kind) String() string {
	switch k {
	case TrackerEvent:
		return "tracker"
	case GameEvent:
		return "game"
	default:
		return "unknown"
	}
}

// Event is a tracker or game event.
type Event interface {
	EventType() string
}

// Item is one merged event.
type Item struct {
	Kind Kind `json:"kind"`

	// Loop is the event's loop in its own stream's time base.
	Loop int64 `json:"loop"`
	// NormalizedLoop is the event's loop in game loops.
	NormalizedLoop float64 `json:"normalized_loop"`
	// TrackerLoop is the event's loop in tracker loops.
	TrackerLoop float64 `json:"tracker_loop"`

	// UserID is the acting user of a game event.
	UserID int64 `json:"user_id,omitempty"`

	Event Event      `json:"event"`
	Hint  state.Hint `json:"hint"`
}

// EventType returns the type name of the item's event.
func (it *Item) EventType() string { return it.Event.EventType() }

// Stats counts an Iterator's progress.
type Stats struct {
	// TrackerEvents and GameEvents count events merged from each stream,
	// including filtered ones.
	TrackerEvents int
	GameEvents    int

	// TrackerSkipped and GameSkipped count untranslated records.
	TrackerSkipped int
	GameSkipped    int

	// Filtered counts events suppressed by the Filter.
	Filtered int
	// Emitted counts events returned by Next.
	Emitted int

	// LastLoop is the normalized loop of the latest merged event.
	LastLoop float64
}

// Iterator yields the merged events of a replay.
//
// Each event is applied to the replay state in emission order before it is
// returned. An Iterator is single-use and not safe for concurrent use.
type Iterator struct {
	// Filter restricts the events that Next returns.
	Filter Filter
	// Logger, if not nil, receives diagnostics.
	Logger logging.L

	cfg     MergeConfig
	state   *state.State
	tracker *stream.Tracker
	game    *stream.Game

	nextTracker *stream.TrackerRecord
	nextGame    *stream.GameRecord
	trackerDone bool
	gameDone    bool

	streamErrs []error
	stats      Stats
	done       bool
}

// MakeIterator returns an Iterator over the specified streams, either of which
// may be nil for an empty stream.
//
// If st is nil, a new State is used.
func MakeIterator(tracker *stream.Tracker, game *stream.Game, st *state.State, cfg MergeConfig) *Iterator {
	if st == nil {
		st = state.New()
	}
	return &Iterator{
		cfg:     cfg,
		state:   st,
		tracker: tracker,
		game:    game,
	}
}

// TrackerOnly returns an Iterator over just a tracker stream.
func TrackerOnly(tracker *stream.Tracker, st *state.State, cfg MergeConfig) *Iterator {
	return MakeIterator(tracker, nil, st, cfg)
}

// GameOnly returns an Iterator over just a game stream.
func GameOnly(game *stream.Game, st *state.State, cfg MergeConfig) *Iterator {
	return MakeIterator(nil, game, st, cfg)
}

// Options configure NewIterator.
type Options struct {
	// Table resolves the replay's build. If nil, version.DefaultTable is used.
	Table *version.Table
	// Merge is the merge configuration. If its TrackerRatio is zero,
	// DefaultMergeConfig is used.
	Merge MergeConfig
	// Filter restricts the events that Next returns.
	Filter Filter
	// Balance, if not nil, supplies unit metadata.
	Balance *balance.Table
	// Logger, if not nil, receives diagnostics.
	Logger logging.L

	// SkipTracker and SkipGame leave a stream out of the iteration.
	SkipTracker bool
	SkipGame    bool
}

// NewIterator opens src and returns an Iterator over its events.
//
// Errors that prevent iteration are returned as a *FatalError.
func NewIterator(src Source, opts Options) (*Iterator, error) {
	logger := logging.Must(opts.Logger)
	fatal := func(err error, reason string) error {
		return &FatalError{Name: src.Name(), Err: errors.Wrap(err, reason)}
	}

	cfg := opts.Merge
	if cfg.TrackerRatio == 0 {
		cfg = DefaultMergeConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fatal(err, "invalid merge configuration")
	}

	hdr, err := src.Header()
	if err != nil {
		return nil, fatal(err, "reading header")
	}

	table := opts.Table
	if table == nil {
		table = version.DefaultTable()
		table.Logger = opts.Logger
	}
	res := table.Resolve(hdr.BaseBuild())
	logger.Debugf("Replay %q: protocol build %s.", src.Name(), &res)

	loadSector := func(name string, skip bool) ([]byte, error) {
		if skip {
			return nil, nil
		}
		switch d, err := src.Sector(name); errors.Cause(err) {
		case nil:
			return d, nil
		case ErrSectorNotFound:
			logger.Infof("Replay %q has no %q sector; treating it as empty.", src.Name(), name)
			return nil, nil
		default:
			return nil, fatal(err, "reading sector "+name)
		}
	}
	// Skipped streams are still read when the content hash must be computed
	// here, since it covers them.
	ch, hasHash := src.(ContentHasher)
	trackerData, err := loadSector(TrackerEventsSector, opts.SkipTracker && hasHash)
	if err != nil {
		return nil, err
	}
	gameData, err := loadSector(GameEventsSector, opts.SkipGame && hasHash)
	if err != nil {
		return nil, err
	}

	st := state.New()
	st.Filename = src.Name()
	st.Build = res.Requested
	st.Balance = opts.Balance
	st.Logger = opts.Logger
	if hasHash {
		st.SHA256 = ch.SHA256()
	} else {
		hdrData, err := hdr.Encode()
		if err != nil {
			return nil, fatal(err, "encoding header")
		}
		st.SHA256 = ContentHash(hdrData, map[string][]byte{
			TrackerEventsSector: trackerData,
			GameEventsSector:    gameData,
		})
	}

	var (
		tracker *stream.Tracker
		game    *stream.Game
	)
	if !opts.SkipTracker {
		tracker = stream.NewTracker(trackerData, res.Family)
		tracker.Logger = opts.Logger
	}
	if !opts.SkipGame {
		game = stream.NewGame(gameData, res.Family)
		game.Logger = opts.Logger
	}

	it := MakeIterator(tracker, game, st, cfg)
	it.Filter = opts.Filter
	it.Logger = opts.Logger
	return it, nil
}

// State returns the live replay state. It reflects every event merged so
// far, including filtered ones.
func (it *Iterator) State() *state.State { return it.state }

// StreamErrors returns the errors that ended streams early.
func (it *Iterator) StreamErrors() []error { return it.streamErrs }

// Stats returns the iterator's progress counts.
func (it *Iterator) Stats() Stats {
	s := it.stats
	if it.tracker != nil {
		s.TrackerSkipped = it.tracker.Skipped()
	}
	if it.game != nil {
		s.GameSkipped = it.game.Skipped()
	}
	return s
}

// Next returns the next merged event that passes the Filter.
//
// Next returns io.EOF when both streams are exhausted or the Filter's budget
// is used up. A stream that fails is treated as exhausted; its error is
// available from StreamErrors.
func (it *Iterator) Next() (*Item, error) {
	for !it.done {
		if it.Filter.exhausted(it.stats.Emitted) {
			it.done = true
			break
		}

		it.fill()

		var item *Item
		switch {
		case it.nextTracker == nil && it.nextGame == nil:
			it.done = true
			continue

		case it.nextTracker != nil && (it.nextGame == nil || it.cfg.trackerFirst(it.nextTracker.Loop, it.nextGame.Loop)):
			item = it.applyTracker(it.nextTracker)
			it.nextTracker = nil

		default:
			item = it.applyGame(it.nextGame)
			it.nextGame = nil
		}
		it.stats.LastLoop = item.NormalizedLoop

		if !it.Filter.accepts(item) {
			it.stats.Filtered++
			filteredEvents.Inc()
			continue
		}
		it.stats.Emitted++
		return item, nil
	}
	return nil, io.EOF
}

// fill buffers the next record of each stream that has none buffered.
func (it *Iterator) fill() {
	if it.nextTracker == nil && it.tracker != nil && !it.trackerDone {
		rec, err := it.tracker.Next()
		if err != nil {
			it.endStream(TrackerEvent, err)
			it.trackerDone = true
		}
		it.nextTracker = rec
	}

	if it.nextGame == nil && it.game != nil && !it.gameDone {
		rec, err := it.game.Next()
		if err != nil {
			it.endStream(GameEvent, err)
			it.gameDone = true
		}
		it.nextGame = rec
	}
}

func (it *Iterator) endStream(k Kind, err error) {
	if err == io.EOF {
		return
	}
	streamsAborted.WithLabelValues(k.String()).Inc()
	logging.Must(it.Logger).Warnf("Replay %q: %s stream ended early: %s", it.state.Filename, k, err)
	it.streamErrs = append(it.streamErrs, errors.Wrapf(err, "%s stream", k))
}

func (it *Iterator) applyTracker(rec *stream.TrackerRecord) *Item {
	norm := it.cfg.normalizeTracker(rec.Loop)
	it.stats.TrackerEvents++
	mergedEvents.WithLabelValues(TrackerEvent.String()).Inc()

	return &Item{
		Kind:           TrackerEvent,
		Loop:           rec.Loop,
		NormalizedLoop: norm,
		TrackerLoop:    float64(rec.Loop),
		Event:          rec.Event,
		Hint:           it.state.ApplyTracker(int64(math.Round(norm)), rec.Event),
	}
}

func (it *Iterator) applyGame(rec *stream.GameRecord) *Item {
	it.stats.GameEvents++
	mergedEvents.WithLabelValues(GameEvent.String()).Inc()

	return &Item{
		Kind:           GameEvent,
		Loop:           rec.Loop,
		NormalizedLoop: float64(rec.Loop),
		TrackerLoop:    float64(rec.Loop) / it.cfg.TrackerRatio,
		UserID:         rec.UserID,
		Event:          rec.Event,
		Hint:           it.state.ApplyGame(rec.Loop, rec.UserID, rec.Event),
	}
}

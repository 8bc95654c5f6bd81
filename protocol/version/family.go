// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package version maps replay protocol builds to the decoders that read them.
//
// Protocol builds are grouped into families. Builds within a family share an
// event layout, so a single Family implementation serves all of them. The
// Table resolves a build number to its Family, falling back to the nearest
// known build when the exact build is unknown.
package version

import (
	"fmt"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/wire"
	"github.com/danjacques/gosc2replay/support/cursor"

	"github.com/pkg/errors"
)

// TrackerRecord is one decoded tracker-events record.
type TrackerRecord struct {
	// Delta is the number of tracker loops since the previous record.
	Delta uint32
	// ID is the wire event identifier.
	ID int64
	// Event is the decoded event, or nil if the family does not translate
	// events with this ID.
	Event event.Tracker
}

// GameRecord is one decoded game-events record.
type GameRecord struct {
	// Delta is the number of game loops since the previous record.
	Delta uint32
	// UserID is the acting user.
	UserID int64
	// ID is the wire event identifier.
	ID int64
	// Event is the decoded event, or nil if the family does not translate
	// events with this ID.
	Event event.Game
}

// Family decodes (and, for fixtures and tooling, encodes) the event records of
// one group of protocol builds.
type Family interface {
	// Name returns the family's name.
	Name() string

	// DecodeTrackerEvent decodes the tracker record at c.
	DecodeTrackerEvent(c cursor.Bytes) (cursor.Bytes, TrackerRecord, error)
	// DecodeGameEvent decodes the game record at c. The returned cursor is
	// byte-aligned.
	DecodeGameEvent(c cursor.Bits) (cursor.Bits, GameRecord, error)

	// EncodeTrackerEvent appends a tracker record for e.
	EncodeTrackerEvent(w *wire.VersionedWriter, delta uint32, e event.Tracker) error
	// EncodeGameEvent appends a game record for e, followed by byte alignment.
	EncodeGameEvent(w *cursor.BitWriter, delta uint32, userID int64, e event.Game) error
}

// UnknownEventError is returned when a bit-packed stream contains an event ID
// that its family does not define. Since the bit-packed encoding is not
// self-describing, the rest of the stream cannot be decoded.
type UnknownEventError struct {
	Family string
	ID     int64
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("family %s: unknown game event ID %d", e.Family, e.ID)
}

// ErrUnsupportedEvent is returned by Encode methods for events that a family
// cannot represent.
var ErrUnsupportedEvent = errors.New("event is not supported by this protocol family")

// Tracker event IDs.
const (
	trackerPlayerStats     = 0
	trackerUnitBorn        = 1
	trackerUnitDied        = 2
	trackerUnitOwnerChange = 3
	trackerUnitTypeChange  = 4
	trackerUpgrade         = 5
	trackerUnitInit        = 6
	trackerUnitDone        = 7
	trackerUnitPositions   = 8
	trackerPlayerSetup     = 9
)

// Game event IDs.
const (
	// GameUserFinishedLoading is an empty event that no family translates.
	GameUserFinishedLoading = 5
	// GameCameraSave is a camera hotkey save that no family translates.
	GameCameraSave = 14

	gameCmd                  = 27
	gameSelectionDelta       = 28
	gameControlGroupUpdate   = 29
	gameCameraUpdate         = 49
	gameCmdUpdateTargetPoint = 96
	gameCmdUpdateTargetUnit  = 97

	// GameUserLeave is emitted when a user leaves. No family translates it.
	GameUserLeave = 101
)

// Bit widths of the game record header.
const (
	gameUserIDBits  = 5
	gameEventIDBits = 7
)

// deltaWidths are the widths of the four size classes of a record delta.
var deltaWidths = [...]uint{6, 14, 22, 32}

// family is the Family implementation. Families differ only in which
// optional fields and events their builds carry.
type family struct {
	name string

	// cmdFlagBits is the width of Cmd.Flags.
	cmdFlagBits uint
	// hasUnitGroup is true if Cmd carries a unit group.
	hasUnitGroup bool
	// hasCreator is true if UnitBorn carries creator fields.
	hasCreator bool
	// hasKillerUnit is true if UnitDied carries killer unit fields.
	hasKillerUnit bool
	// hasPlayerSetup is true if the PlayerSetup tracker event exists.
	hasPlayerSetup bool
	// hasTargetUpdates is true if CmdUpdateTarget* game events exist.
	hasTargetUpdates bool
}

var (
	// Legacy is the family of early builds.
	Legacy Family = &family{
		name:        "legacy",
		cmdFlagBits: 23,
	}

	// Modern is the family of current builds.
	Modern Family = &family{
		name:             "modern",
		cmdFlagBits:      27,
		hasUnitGroup:     true,
		hasCreator:       true,
		hasKillerUnit:    true,
		hasPlayerSetup:   true,
		hasTargetUpdates: true,
	}
)

func (f *family) Name() string { return f.name }

func (f *family) String() string { return f.name }

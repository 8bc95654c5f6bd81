// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package protocoltest builds synthetic replay data for tests.
package protocoltest

import (
	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/header"
	"github.com/danjacques/gosc2replay/protocol/version"
	"github.com/danjacques/gosc2replay/protocol/wire"
	"github.com/danjacques/gosc2replay/support/cursor"
)

// TrackerStream builds a tracker-events sector.
//
// Builder methods panic on encoding errors, since those are always bugs in
// the test that calls them.
type TrackerStream struct {
	Family version.Family

	w wire.VersionedWriter
}

// Add appends e, delta loops after the previous record.
func (s *TrackerStream) Add(delta uint32, e event.Tracker) *TrackerStream {
	if err := s.Family.EncodeTrackerEvent(&s.w, delta, e); err != nil {
		panic(err)
	}
	return s
}

// AddUnsupported appends an empty record with an ID that no family
// translates.
func (s *TrackerStream) AddUnsupported(delta uint32, id int64) *TrackerStream {
	version.WriteTrackerHeader(&s.w, delta, id)
	s.w.Struct(1).Field(0).Blob([]byte("unsupported"))
	return s
}

// AddRaw appends d verbatim.
func (s *TrackerStream) AddRaw(d []byte) *TrackerStream {
	s.w.Raw(d)
	return s
}

// Bytes returns the sector data.
func (s *TrackerStream) Bytes() []byte { return s.w.Bytes() }

// GameStream builds a game-events sector.
type GameStream struct {
	Family version.Family

	w cursor.BitWriter
}

// Add appends e for userID, delta loops after the previous record.
func (s *GameStream) Add(delta uint32, userID int64, e event.Game) *GameStream {
	if err := s.Family.EncodeGameEvent(&s.w, delta, userID, e); err != nil {
		panic(err)
	}
	return s
}

// AddUserLeave appends a user-leave record, which is decoded but not
// translated into an event.
func (s *GameStream) AddUserLeave(delta uint32, userID int64) *GameStream {
	version.WriteGameHeader(&s.w, delta, userID, version.GameUserLeave)
	s.w.WriteBits(0, 5)
	s.w.ByteAlign()
	return s
}

// AddUnknown appends a record header with an event ID that no family
// defines. Decoding stops there.
func (s *GameStream) AddUnknown(delta uint32, userID, id int64) *GameStream {
	version.WriteGameHeader(&s.w, delta, userID, id)
	s.w.ByteAlign()
	return s
}

// Bytes returns the sector data.
func (s *GameStream) Bytes() []byte { return s.w.Bytes() }

// Header returns a valid Header for build.
func Header(build, elapsedGameLoops int64) *header.Header {
	return &header.Header{
		Signature: header.Signature,
		Version: header.Version{
			Major:     5,
			Build:     build,
			BaseBuild: build,
		},
		Type:             2,
		ElapsedGameLoops: elapsedGameLoops,
		UseScaledTime:    true,
	}
}

// HeaderBytes returns an encoded Header for build.
func HeaderBytes(build, elapsedGameLoops int64) []byte {
	d, err := Header(build, elapsedGameLoops).Encode()
	if err != nil {
		panic(err)
	}
	return d
}

// UnitBorn returns a UnitBorn event for a unit owned by player.
func UnitBorn(index uint32, name string, player, x, y int64) *event.UnitBorn {
	return &event.UnitBorn{
		UnitTagIndex:    index,
		UnitTagRecycle:  1,
		UnitTypeName:    name,
		ControlPlayerID: player,
		UpkeepPlayerID:  player,
		X:               x,
		Y:               y,
	}
}

// Select returns a SelectionDelta that makes indices the active selection.
func Select(indices ...uint32) *event.SelectionDelta {
	tags := make([]uint32, len(indices))
	for i, idx := range indices {
		tags[i] = event.UnitTag(idx, 1)
	}
	return &event.SelectionDelta{
		ControlGroupID: event.ActiveSelectionGroup,
		AddUnitTags:    tags,
	}
}

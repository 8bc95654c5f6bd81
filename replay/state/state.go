// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package state folds replay events into a simulated game state.
//
// A State holds a registry of live units keyed by tag index, and per-user
// control groups and cameras. Every applied event returns a Hint describing
// what it changed, so consumers do not need to diff snapshots.
//
// Units refer to each other (creator, command target) by tag index only, and
// those references are resolved through the registry when read. A reference
// may outlive the unit it names.
//
// State is not safe for concurrent use. Events must be applied in their
// merged order, since tracker and game transitions do not commute.
package state

import (
	"sort"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/replay/balance"
	"github.com/danjacques/gosc2replay/support/logging"
)

// Selection radius scaling.
const (
	selectScale   = 2.0
	deselectScale = 0.5
)

// Command is the most recent command issued to a unit.
type Command struct {
	// Ability is the invoked ability, if any.
	Ability *event.CmdAbility `json:"ability,omitempty"`
	// TargetPoint is the targeted point, if the command targets a point.
	TargetPoint *event.Point `json:"target_point,omitempty"`
	// TargetUnit is the tag index of the targeted unit, if the command targets
	// a unit.
	TargetUnit *uint32 `json:"target_unit,omitempty"`
	// Loop is the loop at which the command was issued or last retargeted.
	Loop int64 `json:"loop"`
}

// Unit is a simulated unit.
//
// Units are identified solely by TagIndex.
type Unit struct {
	TagIndex   uint32 `json:"tag_index"`
	TagRecycle uint32 `json:"tag_recycle"`

	// PlayerID is the controlling player.
	PlayerID int64 `json:"player_id"`
	// UserID is the controlling user, if the player has been bound to one.
	UserID *int64 `json:"user_id,omitempty"`

	// Name is the unit's type name.
	Name string `json:"name"`
	// DisplayName is the type's human-readable name.
	DisplayName string `json:"display_name"`

	Pos event.Point `json:"pos"`

	// InitLoop is the loop at which the unit was registered.
	InitLoop int64 `json:"init_loop"`
	// LastLoop is the loop at which the unit was last touched by an event.
	LastLoop int64 `json:"last_loop"`

	// CreatorIndex is the tag index of the unit that produced this one.
	CreatorIndex *uint32 `json:"creator_index,omitempty"`
	// CreatorAbility is the display name of the ability that produced it.
	CreatorAbility string `json:"creator_ability,omitempty"`

	// Radius is the visualization radius. It is doubled while the unit is
	// selected.
	Radius float32       `json:"radius"`
	Color  balance.Color `json:"color"`

	// IsSelected is true if the unit is in its owner's active selection.
	IsSelected bool `json:"is_selected"`
	// IsInit is true while the unit is under construction.
	IsInit bool `json:"is_init"`

	Cmd Command `json:"cmd"`
}

// Tag returns the unit's packed tag.
func (u *Unit) Tag() uint32 { return event.UnitTag(u.TagIndex, u.TagRecycle) }

// Camera is a user's camera.
type Camera struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Distance *int64  `json:"distance,omitempty"`
	Pitch    *int64  `json:"pitch,omitempty"`
	Yaw      *int64  `json:"yaw,omitempty"`
	Follow   bool    `json:"follow"`
}

// UserState is the per-user state.
type UserState struct {
	// ControlGroups are the user's control groups, each a sorted list of unique
	// tag indices. Groups 0 through 9 are hotkey groups.
	// event.ActiveSelectionGroup holds the current selection.
	ControlGroups [event.NumControlGroups][]uint32 `json:"control_groups"`

	Camera Camera `json:"camera"`
}

// Selection returns the user's active selection.
func (us *UserState) Selection() []uint32 { return us.ControlGroups[event.ActiveSelectionGroup] }

// State is the simulated replay state.
type State struct {
	// Filename is the name of the replay.
	Filename string
	// SHA256 is the hex content hash of the replay.
	SHA256 string
	// Build is the replay's protocol build, used for balance lookups.
	Build int64

	// Balance, if not nil, supplies unit and ability metadata.
	Balance *balance.Table
	// Logger, if not nil, receives data inconsistency diagnostics.
	Logger logging.L

	units   map[uint32]*Unit
	users   map[int64]*UserState
	players map[int64]int64
}

// New returns an empty State.
func New() *State {
	return &State{
		units:   make(map[uint32]*Unit),
		users:   make(map[int64]*UserState),
		players: make(map[int64]int64),
	}
}

func (s *State) logger() logging.L { return logging.Must(s.Logger) }

// user returns the state for userID, creating it on first reference.
func (s *State) user(userID int64) *UserState {
	us := s.users[userID]
	if us == nil {
		us = &UserState{}
		s.users[userID] = us
	}
	return us
}

// applyBalance sets the unit's metadata fields for its current type,
// preserving the selection radius scaling.
func (s *State) applyBalance(u *Unit) {
	md := s.Balance.Unit(s.Build, u.Name)
	u.DisplayName = md.DisplayName
	u.Color = *md.Color
	u.Radius = md.Radius
	if u.IsSelected {
		u.Radius *= selectScale
	}
}

// snapshot returns a copy of the unit at index, or nil if it is not
// registered.
func (s *State) snapshot(index uint32) *Unit {
	u := s.units[index]
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// sortedUnique sorts v and removes duplicates in place.
func sortedUnique(v []uint32) []uint32 {
	if len(v) == 0 {
		return nil
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	out := v[:1]
	for _, idx := range v[1:] {
		if idx != out[len(out)-1] {
			out = append(out, idx)
		}
	}
	return out
}

// difference returns the members of a that are not in b. Both must be sorted.
func difference(a, b []uint32) []uint32 {
	var out []uint32
	j := 0
	for _, v := range a {
		for j < len(b) && b[j] < v {
			j++
		}
		if j >= len(b) || b[j] != v {
			out = append(out, v)
		}
	}
	return out
}

// containsIndex returns true if idx is in v, which must be sorted.
func containsIndex(v []uint32, idx uint32) bool {
	i := sort.Search(len(v), func(i int) bool { return v[i] >= idx })
	return i < len(v) && v[i] == idx
}

// union returns the sorted union of a and b, which must be sorted.
func union(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return sortedUnique(out)
}

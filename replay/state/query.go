// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package state

import (
	"sort"

	"github.com/danjacques/gosc2replay/protocol/event"
)

// Unit returns a snapshot of the registered unit at index.
func (s *State) Unit(index uint32) (Unit, bool) {
	if u := s.units[index]; u != nil {
		return *u, true
	}
	return Unit{}, false
}

// UnitCount returns the number of registered units.
func (s *State) UnitCount() int { return len(s.units) }

// IsSelected returns true if the unit with the specified tag is registered
// and selected.
func (s *State) IsSelected(tag uint32) bool {
	u := s.units[event.UnitTagIndex(tag)]
	return u != nil && u.IsSelected
}

// UserState returns a copy of the state of userID.
func (s *State) UserState(userID int64) (UserState, bool) {
	us := s.users[userID]
	if us == nil {
		return UserState{}, false
	}

	cp := *us
	for i, g := range us.ControlGroups {
		cp.ControlGroups[i] = append([]uint32(nil), g...)
	}
	return cp, true
}

// Users returns the IDs of every user seen, in ascending order.
func (s *State) Users() []int64 {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectedUnits returns snapshots of the registered units in the active
// selection of userID, ordered by tag index.
func (s *State) SelectedUnits(userID int64) []Unit {
	us := s.users[userID]
	if us == nil {
		return nil
	}

	var out []Unit
	for _, idx := range us.Selection() {
		if u := s.units[idx]; u != nil {
			out = append(out, *u)
		}
	}
	return out
}

// StaleUnits returns snapshots of the registered units that have not been
// touched for more than age loops as of loop, ordered by tag index.
func (s *State) StaleUnits(loop, age int64) []Unit {
	var out []Unit
	for _, u := range s.units {
		if loop-u.LastLoop > age {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagIndex < out[j].TagIndex })
	return out
}

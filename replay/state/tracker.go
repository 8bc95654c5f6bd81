// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package state

import (
	"github.com/danjacques/gosc2replay/protocol/event"
)

// ApplyTracker applies a tracker event at loop and returns its Hint.
func (s *State) ApplyTracker(loop int64, e event.Tracker) Hint {
	switch e := e.(type) {
	case *event.UnitInit:
		return s.register(loop, &Unit{
			TagIndex:   e.UnitTagIndex,
			TagRecycle: e.UnitTagRecycle,
			PlayerID:   e.ControlPlayerID,
			Name:       e.UnitTypeName,
			Pos:        event.Point{X: float32(e.X), Y: float32(e.Y)},
			IsInit:     true,
		})

	case *event.UnitBorn:
		u := Unit{
			TagIndex:     e.UnitTagIndex,
			TagRecycle:   e.UnitTagRecycle,
			PlayerID:     e.ControlPlayerID,
			Name:         e.UnitTypeName,
			Pos:          event.Point{X: float32(e.X), Y: float32(e.Y)},
			CreatorIndex: e.CreatorUnitTagIndex,
		}
		if e.CreatorAbilityName != "" {
			u.CreatorAbility = s.Balance.AbilityName(s.Build, e.CreatorAbilityName)
		}
		return s.register(loop, &u)

	case *event.UnitDied:
		return s.unregister(e)

	case *event.UnitDone:
		u := s.units[e.UnitTagIndex]
		if u == nil {
			s.inconsistent(unknownUnitDone, "Unit %d completed, but is not registered.", e.UnitTagIndex)
			return HintNone{}
		}
		u.IsInit = false
		u.LastLoop = loop
		return &HintCompleted{Unit: *u}

	case *event.UnitTypeChange:
		u := s.units[e.UnitTagIndex]
		if u == nil {
			s.inconsistent(unknownUnitChanged, "Unit %d changed type to %q, but is not registered.",
				e.UnitTagIndex, e.UnitTypeName)
			return HintNone{}
		}
		old := u.Name
		u.Name = e.UnitTypeName
		u.LastLoop = loop
		s.applyBalance(u)
		return &HintUnitRenamed{Unit: *u, OldName: old}

	case *event.UnitOwnerChange:
		u := s.units[e.UnitTagIndex]
		if u == nil {
			s.inconsistent(unknownUnitChanged, "Unit %d changed owner, but is not registered.", e.UnitTagIndex)
			return HintNone{}
		}
		old := u.PlayerID
		u.PlayerID = e.ControlPlayerID
		u.UserID = s.userForPlayer(u.PlayerID)
		u.LastLoop = loop
		return &HintOwnerChanged{Unit: *u, OldPlayerID: old}

	case *event.UnitPositions:
		var h HintPositions
		for _, p := range e.Positions() {
			u := s.units[p.TagIndex]
			if u == nil {
				s.inconsistent(unknownUnitPosition, "Unit %d moved, but is not registered.", p.TagIndex)
				continue
			}
			u.Pos.X, u.Pos.Y = float32(p.X), float32(p.Y)
			u.LastLoop = loop
			h.Units = append(h.Units, *u)
		}
		return &h

	case *event.PlayerSetup:
		if e.UserID != nil {
			s.players[e.PlayerID] = *e.UserID
			s.user(*e.UserID)
		}
		return HintNone{}

	default:
		// Player statistics and upgrades do not affect units.
		return HintNone{}
	}
}

// register creates or overwrites the registry entry for u.
//
// An index that is already in an active selection stays selected, since no
// later selection delta will report it as added.
func (s *State) register(loop int64, u *Unit) Hint {
	u.InitLoop, u.LastLoop = loop, loop
	u.UserID = s.userForPlayer(u.PlayerID)
	u.IsSelected = s.inAnySelection(u.TagIndex)
	s.applyBalance(u)
	s.units[u.TagIndex] = u

	h := HintRegistered{Unit: *u}
	if u.CreatorIndex != nil {
		h.Creator = s.snapshot(*u.CreatorIndex)
	}
	return &h
}

func (s *State) inAnySelection(index uint32) bool {
	for _, us := range s.users {
		if containsIndex(us.Selection(), index) {
			return true
		}
	}
	return false
}

func (s *State) unregister(e *event.UnitDied) Hint {
	u := s.units[e.UnitTagIndex]
	if u == nil {
		s.inconsistent(unknownUnitDied, "Unit %d died, but is not registered.", e.UnitTagIndex)
		return HintNone{}
	}
	delete(s.units, e.UnitTagIndex)

	h := HintUnregistered{
		Killed:         *u,
		KillerPlayerID: e.KillerPlayerID,
	}
	if e.KillerUnitTagIndex != nil {
		h.Killer = s.snapshot(*e.KillerUnitTagIndex)
	}
	return &h
}

func (s *State) userForPlayer(playerID int64) *int64 {
	if userID, ok := s.players[playerID]; ok {
		return &userID
	}
	return nil
}

func (s *State) inconsistent(kind, format string, args ...interface{}) {
	inconsistencies.WithLabelValues(kind).Inc()
	s.logger().Debugf(format, args...)
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package state

import (
	"github.com/danjacques/gosc2replay/protocol/event"
)

// ApplyGame applies a game event by userID at loop and returns its Hint.
func (s *State) ApplyGame(loop, userID int64, e event.Game) Hint {
	us := s.user(userID)

	switch e := e.(type) {
	case *event.SelectionDelta:
		group := e.ControlGroupID
		if group < 0 || group >= event.NumControlGroups {
			s.inconsistent(invalidControlGroup, "User %d selection delta names invalid group %d.", userID, group)
			return HintNone{}
		}

		members := make([]uint32, len(e.AddUnitTags))
		for i, tag := range e.AddUnitTags {
			members[i] = event.UnitTagIndex(tag)
		}
		return s.setGroup(loop, userID, us, group, sortedUnique(members))

	case *event.ControlGroupUpdate:
		return s.updateControlGroup(loop, userID, us, e)

	case *event.Cmd:
		cmd := Command{Ability: e.Ability, TargetPoint: e.Target.Point, Loop: loop}
		if e.Target.Unit != nil {
			target := event.UnitTagIndex(e.Target.Unit.Tag)
			cmd.TargetUnit = &target
		}
		units := s.updateSelected(loop, us, func(u *Unit) { u.Cmd = cmd })
		return &HintAbility{UserID: userID, Units: units, Command: cmd}

	case *event.CmdUpdateTargetPoint:
		p := e.Target
		units := s.updateSelected(loop, us, func(u *Unit) {
			u.Cmd.TargetPoint, u.Cmd.TargetUnit = &p, nil
			u.Cmd.Loop = loop
		})
		return &HintTargetPoint{UserID: userID, Units: units, Point: p}

	case *event.CmdUpdateTargetUnit:
		target := event.UnitTagIndex(e.Target.Tag)
		units := s.updateSelected(loop, us, func(u *Unit) {
			t := target
			u.Cmd.TargetPoint, u.Cmd.TargetUnit = nil, &t
			u.Cmd.Loop = loop
		})
		return &HintTargetUnit{
			UserID:     userID,
			Units:      units,
			Target:     target,
			TargetUnit: s.snapshot(target),
		}

	case *event.CameraUpdate:
		if e.Target != nil {
			us.Camera.X, us.Camera.Y = e.Target.X, e.Target.Y
		}
		if e.Distance != nil {
			us.Camera.Distance = e.Distance
		}
		if e.Pitch != nil {
			us.Camera.Pitch = e.Pitch
		}
		if e.Yaw != nil {
			us.Camera.Yaw = e.Yaw
		}
		us.Camera.Follow = e.Follow
		return &HintCamera{UserID: userID, Camera: us.Camera}

	default:
		return HintNone{}
	}
}

// updateSelected calls fn on every registered unit in the user's active
// selection, and returns their tag indices.
func (s *State) updateSelected(loop int64, us *UserState, fn func(u *Unit)) []uint32 {
	var touched []uint32
	for _, idx := range us.Selection() {
		if u := s.units[idx]; u != nil {
			fn(u)
			u.LastLoop = loop
			touched = append(touched, idx)
		}
	}
	return touched
}

// setGroup replaces the membership of a control group. members must be sorted
// and unique.
//
// Replacing the active selection also updates the selection flags of the
// units that enter and leave it.
func (s *State) setGroup(loop, userID int64, us *UserState, group int64, members []uint32) *HintSelection {
	old := us.ControlGroups[group]
	us.ControlGroups[group] = members

	h := HintSelection{
		UserID:  userID,
		Group:   group,
		Members: members,
		Added:   difference(members, old),
		Removed: difference(old, members),
	}

	if group == event.ActiveSelectionGroup {
		for _, idx := range h.Removed {
			if u := s.units[idx]; u != nil && u.IsSelected {
				u.IsSelected = false
				u.Radius *= deselectScale
				u.LastLoop = loop
			}
		}
		for _, idx := range h.Added {
			if u := s.units[idx]; u != nil && !u.IsSelected {
				u.IsSelected = true
				u.Radius *= selectScale
				u.LastLoop = loop
			}
		}
	}
	return &h
}

func (s *State) updateControlGroup(loop, userID int64, us *UserState, e *event.ControlGroupUpdate) Hint {
	group := e.ControlGroupIndex
	if group < 0 || group >= event.ActiveSelectionGroup {
		s.inconsistent(invalidControlGroup, "User %d control group update names invalid group %d.", userID, group)
		return HintNone{}
	}

	selection := us.Selection()

	var stolen []uint32
	if e.Action.Steals() {
		for other := range us.ControlGroups[:event.ActiveSelectionGroup] {
			if int64(other) == group {
				continue
			}

			cur := us.ControlGroups[other]
			kept := difference(cur, selection)
			if len(kept) != len(cur) {
				stolen = union(stolen, difference(cur, kept))
				us.ControlGroups[other] = kept
			}
		}
	}

	var h *HintSelection
	switch e.Action {
	case event.ControlGroupSet, event.ControlGroupSetAndSteal:
		h = s.setGroup(loop, userID, us, group, append([]uint32(nil), selection...))

	case event.ControlGroupAppend, event.ControlGroupAppendAndSteal:
		h = s.setGroup(loop, userID, us, group, union(us.ControlGroups[group], selection))

	case event.ControlGroupRecall:
		members := append([]uint32(nil), us.ControlGroups[group]...)
		h = s.setGroup(loop, userID, us, event.ActiveSelectionGroup, members)

	case event.ControlGroupClear:
		h = s.setGroup(loop, userID, us, group, nil)

	default:
		s.inconsistent(invalidControlGroup, "User %d control group update has invalid action %d.", userID, e.Action)
		return HintNone{}
	}

	h.Stolen = stolen
	return h
}

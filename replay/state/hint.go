// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package state

import (
	"github.com/danjacques/gosc2replay/protocol/event"
)

// Hint describes the side effect of applying one event.
//
// Units carried by hints are snapshots taken when the event was applied.
type Hint interface {
	// HintType returns the hint's type name.
	HintType() string
}

// HintNone is returned for events that changed no unit, including events that
// referenced unknown units.
type HintNone struct{}

// HintRegistered is returned when a unit is registered.
type HintRegistered struct {
	Unit Unit `json:"unit"`
	// Creator is the producing unit, if it is known and registered.
	Creator *Unit `json:"creator,omitempty"`
}

// HintUnregistered is returned when a unit dies. Killed is its last known
// state.
type HintUnregistered struct {
	Killed Unit `json:"killed"`
	// Killer is the killing unit, if it is known and registered.
	Killer *Unit `json:"killer,omitempty"`
	// KillerPlayerID is the killing player, if known.
	KillerPlayerID *int64 `json:"killer_player_id,omitempty"`
}

// HintCompleted is returned when a unit finishes construction.
type HintCompleted struct {
	Unit Unit `json:"unit"`
}

// HintPositions is returned when units are moved.
type HintPositions struct {
	Units []Unit `json:"units"`
}

// HintTargetPoint is returned when the selected units' command is retargeted
// at a point.
type HintTargetPoint struct {
	UserID int64       `json:"user_id"`
	Units  []uint32    `json:"units"`
	Point  event.Point `json:"point"`
}

// HintTargetUnit is returned when the selected units' command is retargeted
// at a unit.
type HintTargetUnit struct {
	UserID int64    `json:"user_id"`
	Units  []uint32 `json:"units"`
	// Target is the targeted unit's tag index.
	Target uint32 `json:"target"`
	// TargetUnit is the targeted unit, if it is registered.
	TargetUnit *Unit `json:"target_unit,omitempty"`
}

// HintAbility is returned when a command is issued to the selected units.
type HintAbility struct {
	UserID  int64    `json:"user_id"`
	Units   []uint32 `json:"units"`
	Command Command  `json:"command"`
}

// HintSelection is returned when a control group changes.
type HintSelection struct {
	UserID int64 `json:"user_id"`
	Group  int64 `json:"group"`
	// Members is the group's new membership.
	Members []uint32 `json:"members"`
	Added   []uint32 `json:"added,omitempty"`
	Removed []uint32 `json:"removed,omitempty"`
	// Stolen are units removed from other groups.
	Stolen []uint32 `json:"stolen,omitempty"`
}

// HintUnitRenamed is returned when a unit changes type.
type HintUnitRenamed struct {
	Unit    Unit   `json:"unit"`
	OldName string `json:"old_name"`
}

// HintOwnerChanged is returned when a unit changes hands.
type HintOwnerChanged struct {
	Unit        Unit  `json:"unit"`
	OldPlayerID int64 `json:"old_player_id"`
}

// HintCamera is returned when a user's camera moves.
type HintCamera struct {
	UserID int64  `json:"user_id"`
	Camera Camera `json:"camera"`
}

func (HintNone) HintType() string          { return "None" }
func (*HintRegistered) HintType() string   { return "Registered" }
func (*HintUnregistered) HintType() string { return "Unregistered" }
func (*HintCompleted) HintType() string    { return "Completed" }
func (*HintPositions) HintType() string    { return "Positions" }
func (*HintTargetPoint) HintType() string  { return "TargetPoint" }
func (*HintTargetUnit) HintType() string   { return "TargetUnit" }
func (*HintAbility) HintType() string      { return "Ability" }
func (*HintSelection) HintType() string    { return "Selection" }
func (*HintUnitRenamed) HintType() string  { return "UnitRenamed" }
func (*HintOwnerChanged) HintType() string { return "OwnerChanged" }
func (*HintCamera) HintType() string       { return "Camera" }

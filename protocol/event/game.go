// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package event

// ActiveSelectionGroup is the control group index that holds a user's current
// selection. It is not a hotkey group, and cannot be assigned by the user.
const ActiveSelectionGroup = 10

// NumControlGroups is the number of control groups tracked per user: the ten
// hotkey groups plus ActiveSelectionGroup.
const NumControlGroups = 11

// ControlGroupAction is the operation performed by a ControlGroupUpdate.
type ControlGroupAction int

// Control group actions, in wire order.
const (
	ControlGroupSet ControlGroupAction = iota
	ControlGroupAppend
	ControlGroupRecall
	ControlGroupClear
	ControlGroupSetAndSteal
	ControlGroupAppendAndSteal
)

var controlGroupActionNames = [...]string{
	"Set", "Append", "Recall", "Clear", "SetAndSteal", "AppendAndSteal",
}

func (a ControlGroupAction) String() string {
	if a >= 0 && int(a) < len(controlGroupActionNames) {
		return controlGroupActionNames[a]
	}
	return "Unknown"
}

// Steals returns true if a moves units out of every other hotkey group.
func (a ControlGroupAction) Steals() bool {
	return a == ControlGroupSetAndSteal || a == ControlGroupAppendAndSteal
}

// MaskKind identifies the representation of a SelectionMask.
type MaskKind int

// Selection mask kinds, in wire order.
const (
	MaskNone MaskKind = iota
	MaskBits
	MaskOneIndices
	MaskZeroIndices
)

// SelectionMask identifies a subset of a selection, either as a bit mask or
// as a list of (included or excluded) indices.
type SelectionMask struct {
	Kind    MaskKind `json:"kind"`
	Bits    []bool   `json:"bits,omitempty"`
	Indices []int64  `json:"indices,omitempty"`
}

// TargetUnit describes a unit targeted by a command.
type TargetUnit struct {
	Flags            int64  `json:"flags"`
	Timer            int64  `json:"timer"`
	Tag              uint32 `json:"tag"`
	SnapshotUnitLink int64  `json:"snapshot_unit_link"`
	ControlPlayerID  *int64 `json:"control_player_id,omitempty"`
	UpkeepPlayerID   *int64 `json:"upkeep_player_id,omitempty"`
	SnapshotPoint    Point  `json:"snapshot_point"`
}

// CmdAbility identifies the ability invoked by a command.
type CmdAbility struct {
	Link     int64  `json:"link"`
	CmdIndex int64  `json:"cmd_index"`
	CmdData  *int64 `json:"cmd_data,omitempty"`
}

// CmdTarget is the target of a command. At most one field is populated.
type CmdTarget struct {
	Point *Point      `json:"point,omitempty"`
	Unit  *TargetUnit `json:"unit,omitempty"`
	Data  *uint32     `json:"data,omitempty"`
}

// Cmd is a command issued to the currently selected units.
type Cmd struct {
	Flags     int64       `json:"flags"`
	Ability   *CmdAbility `json:"ability,omitempty"`
	Target    CmdTarget   `json:"target"`
	Sequence  int64       `json:"sequence"`
	OtherUnit *uint32     `json:"other_unit,omitempty"`
	UnitGroup *uint32     `json:"unit_group,omitempty"`
}

// SelectionSubgroup describes a run of same-typed units added to a selection.
type SelectionSubgroup struct {
	UnitLink              int64 `json:"unit_link"`
	SubgroupPriority      int64 `json:"subgroup_priority"`
	IntraSubgroupPriority int64 `json:"intra_subgroup_priority"`
	Count                 int64 `json:"count"`
}

// SelectionDelta replaces the membership of one control group.
type SelectionDelta struct {
	ControlGroupID int64               `json:"control_group_id"`
	SubgroupIndex  int64               `json:"subgroup_index"`
	RemoveMask     SelectionMask       `json:"remove_mask"`
	AddSubgroups   []SelectionSubgroup `json:"add_subgroups,omitempty"`
	AddUnitTags    []uint32            `json:"add_unit_tags"`
}

// ControlGroupUpdate manipulates a hotkey control group.
type ControlGroupUpdate struct {
	ControlGroupIndex int64              `json:"control_group_index"`
	Action            ControlGroupAction `json:"action"`
	Mask              SelectionMask      `json:"mask"`
}

// CameraUpdate moves a user's camera.
type CameraUpdate struct {
	Target   *Point `json:"target,omitempty"`
	Distance *int64 `json:"distance,omitempty"`
	Pitch    *int64 `json:"pitch,omitempty"`
	Yaw      *int64 `json:"yaw,omitempty"`
	Reason   *int64 `json:"reason,omitempty"`
	Follow   bool   `json:"follow"`
}

// CmdUpdateTargetPoint retargets the previous command at a point.
type CmdUpdateTargetPoint struct {
	Target Point `json:"target"`
}

// CmdUpdateTargetUnit retargets the previous command at a unit.
type CmdUpdateTargetUnit struct {
	Target TargetUnit `json:"target"`
}

func (*Cmd) EventType() string                  { return "Cmd" }
func (*SelectionDelta) EventType() string       { return "SelectionDelta" }
func (*ControlGroupUpdate) EventType() string   { return "ControlGroupUpdate" }
func (*CameraUpdate) EventType() string         { return "CameraUpdate" }
func (*CmdUpdateTargetPoint) EventType() string { return "CmdUpdateTargetPoint" }
func (*CmdUpdateTargetUnit) EventType() string  { return "CmdUpdateTargetUnit" }

func (*Cmd) isGame()                  {}
func (*SelectionDelta) isGame()       {}
func (*ControlGroupUpdate) isGame()   {}
func (*CameraUpdate) isGame()         {}
func (*CmdUpdateTargetPoint) isGame() {}
func (*CmdUpdateTargetUnit) isGame()  {}

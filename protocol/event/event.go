// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package event defines protocol-agnostic replay events.
//
// Protocol families decode their wire records into these types, so that the
// replay state machine never deals with version-specific layouts. Only a
// curated subset of wire variants is modeled here; families skip the rest.
package event

// Tracker is an event from the tracker-events sector.
//
// Tracker events describe the simulation from the engine's point of view:
// units being created, destroyed and changed. They carry no acting user.
type Tracker interface {
	// EventType returns the event's type name, used for filtering and output.
	EventType() string

	isTracker()
}

// Game is an event from the game-events sector.
//
// Game events describe user input. Each is attributed to an acting user by
// the stream that carries it.
type Game interface {
	// EventType returns the event's type name, used for filtering and output.
	EventType() string

	isGame()
}

// Point is a map position. Tracker coordinates are whole map cells, while
// game coordinates are fixed-point values that the family scales to cells.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z,omitempty"`
}

// PlayerStats is a periodic snapshot of a player's economy.
type PlayerStats struct {
	PlayerID int64 `json:"player_id"`

	MineralsCurrent    int64 `json:"minerals_current"`
	VespeneCurrent     int64 `json:"vespene_current"`
	MineralsRate       int64 `json:"minerals_collection_rate"`
	VespeneRate        int64 `json:"vespene_collection_rate"`
	WorkersActive      int64 `json:"workers_active_count"`
	FoodUsed           int64 `json:"food_used"`
	FoodMade           int64 `json:"food_made"`
	MineralsLostArmy   int64 `json:"minerals_lost_army"`
	VespeneLostArmy    int64 `json:"vespene_lost_army"`
	MineralsKilledArmy int64 `json:"minerals_killed_army"`
}

// UnitBorn is emitted when a unit is created fully formed.
type UnitBorn struct {
	UnitTagIndex    uint32 `json:"unit_tag_index"`
	UnitTagRecycle  uint32 `json:"unit_tag_recycle"`
	UnitTypeName    string `json:"unit_type_name"`
	ControlPlayerID int64  `json:"control_player_id"`
	UpkeepPlayerID  int64  `json:"upkeep_player_id"`
	X               int64  `json:"x"`
	Y               int64  `json:"y"`

	// Creator fields are only present in newer protocols, and only when the
	// unit was produced by another unit.
	CreatorUnitTagIndex   *uint32 `json:"creator_unit_tag_index,omitempty"`
	CreatorUnitTagRecycle *uint32 `json:"creator_unit_tag_recycle,omitempty"`
	CreatorAbilityName    string  `json:"creator_ability_name,omitempty"`
}

// UnitDied is emitted when a unit is destroyed.
type UnitDied struct {
	UnitTagIndex   uint32 `json:"unit_tag_index"`
	UnitTagRecycle uint32 `json:"unit_tag_recycle"`
	KillerPlayerID *int64 `json:"killer_player_id,omitempty"`
	X              int64  `json:"x"`
	Y              int64  `json:"y"`

	KillerUnitTagIndex   *uint32 `json:"killer_unit_tag_index,omitempty"`
	KillerUnitTagRecycle *uint32 `json:"killer_unit_tag_recycle,omitempty"`
}

// UnitOwnerChange is emitted when a unit changes hands.
type UnitOwnerChange struct {
	UnitTagIndex    uint32 `json:"unit_tag_index"`
	UnitTagRecycle  uint32 `json:"unit_tag_recycle"`
	ControlPlayerID int64  `json:"control_player_id"`
	UpkeepPlayerID  int64  `json:"upkeep_player_id"`
}

// UnitTypeChange is emitted when a unit morphs into another type.
type UnitTypeChange struct {
	UnitTagIndex   uint32 `json:"unit_tag_index"`
	UnitTagRecycle uint32 `json:"unit_tag_recycle"`
	UnitTypeName   string `json:"unit_type_name"`
}

// Upgrade is emitted when a player completes an upgrade.
type Upgrade struct {
	PlayerID        int64  `json:"player_id"`
	UpgradeTypeName string `json:"upgrade_type_name"`
	Count           int64  `json:"count"`
}

// UnitInit is emitted when construction of a unit begins.
type UnitInit struct {
	UnitTagIndex    uint32 `json:"unit_tag_index"`
	UnitTagRecycle  uint32 `json:"unit_tag_recycle"`
	UnitTypeName    string `json:"unit_type_name"`
	ControlPlayerID int64  `json:"control_player_id"`
	UpkeepPlayerID  int64  `json:"upkeep_player_id"`
	X               int64  `json:"x"`
	Y               int64  `json:"y"`
}

// UnitDone is emitted when construction of a unit completes.
type UnitDone struct {
	UnitTagIndex   uint32 `json:"unit_tag_index"`
	UnitTagRecycle uint32 `json:"unit_tag_recycle"`
}

// UnitPositions reports the positions of a batch of units.
type UnitPositions struct {
	FirstUnitIndex uint32 `json:"first_unit_index"`
	// Items is a flat list of (index delta, x, y) triples, where each index is
	// relative to the previous one, starting from FirstUnitIndex.
	Items []int64 `json:"items"`
}

// UnitPosition is one decoded entry of a UnitPositions event.
type UnitPosition struct {
	TagIndex uint32
	X, Y     int64
}

// Positions expands the delta-encoded Items list.
//
// A trailing partial triple is ignored.
func (e *UnitPositions) Positions() []UnitPosition {
	out := make([]UnitPosition, 0, len(e.Items)/3)
	index := int64(e.FirstUnitIndex)
	for i := 0; i+2 < len(e.Items); i += 3 {
		index += e.Items[i]
		out = append(out, UnitPosition{
			TagIndex: uint32(index),
			X:        e.Items[i+1] * 4,
			Y:        e.Items[i+2] * 4,
		})
	}
	return out
}

// PlayerSetup binds a player slot to a user.
type PlayerSetup struct {
	PlayerID int64  `json:"player_id"`
	Type     int64  `json:"type"`
	UserID   *int64 `json:"user_id,omitempty"`
	SlotID   *int64 `json:"slot_id,omitempty"`
}

func (*PlayerStats) EventType() string     { return "PlayerStats" }
func (*UnitBorn) EventType() string        { return "UnitBorn" }
func (*UnitDied) EventType() string        { return "UnitDied" }
func (*UnitOwnerChange) EventType() string { return "UnitOwnerChange" }
func (*UnitTypeChange) EventType() string  { return "UnitTypeChange" }
func (*Upgrade) EventType() string         { return "Upgrade" }
func (*UnitInit) EventType() string        { return "UnitInit" }
func (*UnitDone) EventType() string        { return "UnitDone" }
func (*UnitPositions) EventType() string   { return "UnitPositions" }
func (*PlayerSetup) EventType() string     { return "PlayerSetup" }

func (*PlayerStats) isTracker()     {}
func (*UnitBorn) isTracker()        {}
func (*UnitDied) isTracker()        {}
func (*UnitOwnerChange) isTracker() {}
func (*UnitTypeChange) isTracker()  {}
func (*Upgrade) isTracker()         {}
func (*UnitInit) isTracker()        {}
func (*UnitDone) isTracker()        {}
func (*UnitPositions) isTracker()   {}
func (*PlayerSetup) isTracker()     {}

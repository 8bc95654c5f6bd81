// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package version

import (
	"math"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/wire"
	"github.com/danjacques/gosc2replay/support/cursor"

	"github.com/pkg/errors"
)

var (
	unitTagFields = []wire.Field{{Tag: 0, Name: "m_unitTagIndex"}, {Tag: 1, Name: "m_unitTagRecycle"}}

	unitBornRequired = append(unitTagFields[:2:2],
		wire.Field{Tag: 2, Name: "m_unitTypeName"},
		wire.Field{Tag: 5, Name: "m_x"},
		wire.Field{Tag: 6, Name: "m_y"})
	unitDiedRequired = append(unitTagFields[:2:2],
		wire.Field{Tag: 3, Name: "m_x"},
		wire.Field{Tag: 4, Name: "m_y"})
	unitTypeChangeRequired = append(unitTagFields[:2:2],
		wire.Field{Tag: 2, Name: "m_unitTypeName"})
	playerIDRequired = []wire.Field{{Tag: 0, Name: "m_playerId"}}
)

// sizeClass returns the delta size class that can hold v.
func sizeClass(v uint32) int {
	for i, w := range deltaWidths {
		if w == 32 || v < 1<<w {
			return i
		}
	}
	return len(deltaWidths) - 1
}

func uint32Value(c cursor.Bytes) (cursor.Bytes, uint32, error) {
	nc, v, err := wire.Int(c)
	switch {
	case err != nil:
		return c, 0, err
	case v < 0 || v > math.MaxUint32:
		return c, 0, errors.Errorf("value %d at offset %d is out of uint32 range", v, c.Offset())
	default:
		return nc, uint32(v), nil
	}
}

func optionalUint32Value(c cursor.Bytes) (cursor.Bytes, *uint32, error) {
	nc, present, err := wire.Optional(c)
	if err != nil || !present {
		return nc, nil, err
	}

	var v uint32
	if nc, v, err = uint32Value(nc); err != nil {
		return c, nil, err
	}
	return nc, &v, nil
}

func stringValue(c cursor.Bytes) (cursor.Bytes, string, error) {
	nc, v, err := wire.Blob(c)
	if err != nil {
		return c, "", err
	}
	return nc, string(v), nil
}

func optionalUint32(v *uint32) *int64 {
	if v == nil {
		return nil
	}
	iv := int64(*v)
	return &iv
}

// decodeTrackerHeader decodes a record's delta and event ID.
func decodeTrackerHeader(c cursor.Bytes) (cursor.Bytes, uint32, int64, error) {
	nc, class, err := wire.Choice(c)
	if err != nil {
		return c, 0, 0, errors.Wrap(err, "delta")
	}
	if class < 0 || class >= int64(len(deltaWidths)) {
		return c, 0, 0, errors.Errorf("invalid delta size class %d", class)
	}

	var delta uint32
	if nc, delta, err = uint32Value(nc); err != nil {
		return c, 0, 0, errors.Wrap(err, "delta")
	}

	var id int64
	if nc, id, err = wire.Int(nc); err != nil {
		return c, 0, 0, errors.Wrap(err, "event ID")
	}
	return nc, delta, id, nil
}

// WriteTrackerHeader appends a tracker record header. The caller appends the
// record's payload.
func WriteTrackerHeader(w *wire.VersionedWriter, delta uint32, id int64) {
	w.Choice(int64(sizeClass(delta))).Int(int64(delta)).Int(id)
}

func (f *family) DecodeTrackerEvent(c cursor.Bytes) (cursor.Bytes, TrackerRecord, error) {
	var rec TrackerRecord
	nc, delta, id, err := decodeTrackerHeader(c)
	if err != nil {
		return c, rec, err
	}
	rec.Delta, rec.ID = delta, id

	switch id {
	case trackerPlayerStats:
		nc, rec.Event, err = decodePlayerStats(nc)
	case trackerUnitBorn:
		nc, rec.Event, err = f.decodeUnitBorn(nc)
	case trackerUnitDied:
		nc, rec.Event, err = f.decodeUnitDied(nc)
	case trackerUnitOwnerChange:
		nc, rec.Event, err = decodeUnitOwnerChange(nc)
	case trackerUnitTypeChange:
		nc, rec.Event, err = decodeUnitTypeChange(nc)
	case trackerUpgrade:
		nc, rec.Event, err = decodeUpgrade(nc)
	case trackerUnitInit:
		nc, rec.Event, err = decodeUnitInit(nc)
	case trackerUnitDone:
		nc, rec.Event, err = decodeUnitDone(nc)
	case trackerUnitPositions:
		nc, rec.Event, err = decodeUnitPositions(nc)
	case trackerPlayerSetup:
		if f.hasPlayerSetup {
			nc, rec.Event, err = decodePlayerSetup(nc)
			break
		}
		nc, err = wire.SkipInstance(nc)
	default:
		// The versioned encoding is self-describing, so records that this family
		// does not translate can be stepped over.
		nc, err = wire.SkipInstance(nc)
	}
	if err != nil {
		return c, TrackerRecord{}, errors.Wrapf(err, "tracker event %d", id)
	}
	return nc, rec, nil
}

// decodeFields decodes a struct into the fields handled by fn and verifies
// that required fields are present.
func decodeFields(c cursor.Bytes, name string, required []wire.Field,
	fn func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error)) (cursor.Bytes, error) {

	var seen wire.FieldSet
	nc, err := wire.DecodeStruct(c, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		nc, handled, err := fn(c, tag)
		if handled && err == nil {
			seen.Add(tag)
		}
		return nc, handled, err
	})
	if err != nil {
		return c, errors.Wrap(err, name)
	}
	if err := seen.Require(name, required...); err != nil {
		return c, err
	}
	return nc, nil
}

func decodePlayerStats(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.PlayerStats
	nc, err := decodeFields(c, "PlayerStats", playerIDRequired, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.PlayerID, err = wire.Int(c)
		case 1:
			c, err = decodeFields(c, "PlayerStats.m_stats", nil, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
				dst := playerStatField(&e, tag)
				if dst == nil {
					return c, false, nil
				}
				var err error
				c, *dst, err = wire.Int(c)
				return c, true, err
			})
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

// playerStatField returns the PlayerStats field stored under the m_stats tag,
// or nil for tags this package does not track.
func playerStatField(e *event.PlayerStats, tag int64) *int64 {
	switch tag {
	case 0:
		return &e.MineralsCurrent
	case 1:
		return &e.VespeneCurrent
	case 2:
		return &e.MineralsRate
	case 3:
		return &e.VespeneRate
	case 4:
		return &e.WorkersActive
	case 5:
		return &e.FoodUsed
	case 6:
		return &e.FoodMade
	case 7:
		return &e.MineralsLostArmy
	case 8:
		return &e.VespeneLostArmy
	case 9:
		return &e.MineralsKilledArmy
	default:
		return nil
	}
}

func (f *family) decodeUnitBorn(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.UnitBorn
	nc, err := decodeFields(c, "UnitBorn", unitBornRequired, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch {
		case tag == 0:
			c, e.UnitTagIndex, err = uint32Value(c)
		case tag == 1:
			c, e.UnitTagRecycle, err = uint32Value(c)
		case tag == 2:
			c, e.UnitTypeName, err = stringValue(c)
		case tag == 3:
			c, e.ControlPlayerID, err = wire.Int(c)
		case tag == 4:
			c, e.UpkeepPlayerID, err = wire.Int(c)
		case tag == 5:
			c, e.X, err = wire.Int(c)
		case tag == 6:
			c, e.Y, err = wire.Int(c)
		case tag == 7 && f.hasCreator:
			c, e.CreatorUnitTagIndex, err = optionalUint32Value(c)
		case tag == 8 && f.hasCreator:
			c, e.CreatorUnitTagRecycle, err = optionalUint32Value(c)
		case tag == 9 && f.hasCreator:
			var v []byte
			c, v, err = wire.OptionalBlob(c)
			e.CreatorAbilityName = string(v)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func (f *family) decodeUnitDied(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.UnitDied
	nc, err := decodeFields(c, "UnitDied", unitDiedRequired, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch {
		case tag == 0:
			c, e.UnitTagIndex, err = uint32Value(c)
		case tag == 1:
			c, e.UnitTagRecycle, err = uint32Value(c)
		case tag == 2:
			c, e.KillerPlayerID, err = wire.OptionalInt(c)
		case tag == 3:
			c, e.X, err = wire.Int(c)
		case tag == 4:
			c, e.Y, err = wire.Int(c)
		case tag == 5 && f.hasKillerUnit:
			c, e.KillerUnitTagIndex, err = optionalUint32Value(c)
		case tag == 6 && f.hasKillerUnit:
			c, e.KillerUnitTagRecycle, err = optionalUint32Value(c)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func decodeUnitOwnerChange(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.UnitOwnerChange
	nc, err := decodeFields(c, "UnitOwnerChange", unitTagFields, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.UnitTagIndex, err = uint32Value(c)
		case 1:
			c, e.UnitTagRecycle, err = uint32Value(c)
		case 2:
			c, e.ControlPlayerID, err = wire.Int(c)
		case 3:
			c, e.UpkeepPlayerID, err = wire.Int(c)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func decodeUnitTypeChange(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.UnitTypeChange
	nc, err := decodeFields(c, "UnitTypeChange", unitTypeChangeRequired, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.UnitTagIndex, err = uint32Value(c)
		case 1:
			c, e.UnitTagRecycle, err = uint32Value(c)
		case 2:
			c, e.UnitTypeName, err = stringValue(c)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func decodeUpgrade(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.Upgrade
	nc, err := decodeFields(c, "Upgrade", playerIDRequired, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.PlayerID, err = wire.Int(c)
		case 1:
			c, e.UpgradeTypeName, err = stringValue(c)
		case 2:
			c, e.Count, err = wire.Int(c)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func decodeUnitInit(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.UnitInit
	nc, err := decodeFields(c, "UnitInit", unitBornRequired, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.UnitTagIndex, err = uint32Value(c)
		case 1:
			c, e.UnitTagRecycle, err = uint32Value(c)
		case 2:
			c, e.UnitTypeName, err = stringValue(c)
		case 3:
			c, e.ControlPlayerID, err = wire.Int(c)
		case 4:
			c, e.UpkeepPlayerID, err = wire.Int(c)
		case 5:
			c, e.X, err = wire.Int(c)
		case 6:
			c, e.Y, err = wire.Int(c)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func decodeUnitDone(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.UnitDone
	nc, err := decodeFields(c, "UnitDone", unitTagFields, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.UnitTagIndex, err = uint32Value(c)
		case 1:
			c, e.UnitTagRecycle, err = uint32Value(c)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func decodeUnitPositions(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.UnitPositions
	required := []wire.Field{{Tag: 0, Name: "m_firstUnitIndex"}, {Tag: 1, Name: "m_items"}}
	nc, err := decodeFields(c, "UnitPositions", required, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.FirstUnitIndex, err = uint32Value(c)
		case 1:
			var n int
			if c, n, err = wire.Array(c); err != nil {
				return c, true, err
			}
			e.Items = make([]int64, n)
			for i := range e.Items {
				if c, e.Items[i], err = wire.Int(c); err != nil {
					return c, true, err
				}
			}
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func decodePlayerSetup(c cursor.Bytes) (cursor.Bytes, event.Tracker, error) {
	var e event.PlayerSetup
	nc, err := decodeFields(c, "PlayerSetup", playerIDRequired, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			c, e.PlayerID, err = wire.Int(c)
		case 1:
			c, e.Type, err = wire.Int(c)
		case 2:
			c, e.UserID, err = wire.OptionalInt(c)
		case 3:
			c, e.SlotID, err = wire.OptionalInt(c)
		default:
			return c, false, nil
		}
		return c, true, err
	})
	return nc, &e, err
}

func (f *family) EncodeTrackerEvent(w *wire.VersionedWriter, delta uint32, e event.Tracker) error {
	switch e := e.(type) {
	case *event.PlayerStats:
		WriteTrackerHeader(w, delta, trackerPlayerStats)
		w.Struct(2).Field(0).Int(e.PlayerID).Field(1).Struct(10)
		for tag := int64(0); tag < 10; tag++ {
			w.Field(tag).Int(*playerStatField(e, tag))
		}

	case *event.UnitBorn:
		WriteTrackerHeader(w, delta, trackerUnitBorn)
		fields := 7
		if f.hasCreator {
			fields = 10
		}
		w.Struct(fields).
			Field(0).Int(int64(e.UnitTagIndex)).
			Field(1).Int(int64(e.UnitTagRecycle)).
			Field(2).Blob([]byte(e.UnitTypeName)).
			Field(3).Int(e.ControlPlayerID).
			Field(4).Int(e.UpkeepPlayerID).
			Field(5).Int(e.X).
			Field(6).Int(e.Y)
		if f.hasCreator {
			var ability []byte
			if e.CreatorAbilityName != "" {
				ability = []byte(e.CreatorAbilityName)
			}
			w.Field(7).OptionalInt(optionalUint32(e.CreatorUnitTagIndex)).
				Field(8).OptionalInt(optionalUint32(e.CreatorUnitTagRecycle)).
				Field(9).OptionalBlob(ability)
		}

	case *event.UnitDied:
		WriteTrackerHeader(w, delta, trackerUnitDied)
		fields := 5
		if f.hasKillerUnit {
			fields = 7
		}
		w.Struct(fields).
			Field(0).Int(int64(e.UnitTagIndex)).
			Field(1).Int(int64(e.UnitTagRecycle)).
			Field(2).OptionalInt(e.KillerPlayerID).
			Field(3).Int(e.X).
			Field(4).Int(e.Y)
		if f.hasKillerUnit {
			w.Field(5).OptionalInt(optionalUint32(e.KillerUnitTagIndex)).
				Field(6).OptionalInt(optionalUint32(e.KillerUnitTagRecycle))
		}

	case *event.UnitOwnerChange:
		WriteTrackerHeader(w, delta, trackerUnitOwnerChange)
		w.Struct(4).
			Field(0).Int(int64(e.UnitTagIndex)).
			Field(1).Int(int64(e.UnitTagRecycle)).
			Field(2).Int(e.ControlPlayerID).
			Field(3).Int(e.UpkeepPlayerID)

	case *event.UnitTypeChange:
		WriteTrackerHeader(w, delta, trackerUnitTypeChange)
		w.Struct(3).
			Field(0).Int(int64(e.UnitTagIndex)).
			Field(1).Int(int64(e.UnitTagRecycle)).
			Field(2).Blob([]byte(e.UnitTypeName))

	case *event.Upgrade:
		WriteTrackerHeader(w, delta, trackerUpgrade)
		w.Struct(3).
			Field(0).Int(e.PlayerID).
			Field(1).Blob([]byte(e.UpgradeTypeName)).
			Field(2).Int(e.Count)

	case *event.UnitInit:
		WriteTrackerHeader(w, delta, trackerUnitInit)
		w.Struct(7).
			Field(0).Int(int64(e.UnitTagIndex)).
			Field(1).Int(int64(e.UnitTagRecycle)).
			Field(2).Blob([]byte(e.UnitTypeName)).
			Field(3).Int(e.ControlPlayerID).
			Field(4).Int(e.UpkeepPlayerID).
			Field(5).Int(e.X).
			Field(6).Int(e.Y)

	case *event.UnitDone:
		WriteTrackerHeader(w, delta, trackerUnitDone)
		w.Struct(2).
			Field(0).Int(int64(e.UnitTagIndex)).
			Field(1).Int(int64(e.UnitTagRecycle))

	case *event.UnitPositions:
		WriteTrackerHeader(w, delta, trackerUnitPositions)
		w.Struct(2).Field(0).Int(int64(e.FirstUnitIndex)).Field(1).Array(len(e.Items))
		for _, v := range e.Items {
			w.Int(v)
		}

	case *event.PlayerSetup:
		if !f.hasPlayerSetup {
			return ErrUnsupportedEvent
		}
		WriteTrackerHeader(w, delta, trackerPlayerSetup)
		w.Struct(4).
			Field(0).Int(e.PlayerID).
			Field(1).Int(e.Type).
			Field(2).OptionalInt(e.UserID).
			Field(3).OptionalInt(e.SlotID)

	default:
		return ErrUnsupportedEvent
	}
	return nil
}

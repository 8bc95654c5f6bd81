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

// Fixed-point scales of game coordinates.
const (
	pointScale  = 4096
	cameraScale = 256
)

// bitReader wraps a Bits cursor with a sticky error, so that fixed layouts can
// be read field by field and checked once.
type bitReader struct {
	c   cursor.Bits
	err error
}

func (r *bitReader) int(n uint, min int64) int64 {
	if r.err != nil {
		return 0
	}
	var v int64
	r.c, v, r.err = r.c.ReadInt(n, min)
	return v
}

func (r *bitReader) uint32(n uint) uint32 { return uint32(r.int(n, 0)) }

func (r *bitReader) bool() bool {
	if r.err != nil {
		return false
	}
	var v bool
	r.c, v, r.err = wire.PackedBool(r.c)
	return v
}

func (r *bitReader) choice(variants int) int {
	if r.err != nil {
		return 0
	}
	var v int
	r.c, v, r.err = wire.PackedChoice(r.c, variants)
	if r.err == nil && v >= variants {
		r.err = errors.Errorf("choice tag %d out of range [0, %d)", v, variants)
	}
	return v
}

func (r *bitReader) array(lenBits uint) int {
	if r.err != nil {
		return 0
	}
	var n int
	r.c, n, r.err = wire.PackedArray(r.c, lenBits)
	return n
}

func (r *bitReader) optionalInt(n uint, min int64) *int64 {
	if !r.bool() {
		return nil
	}
	v := r.int(n, min)
	return &v
}

func (r *bitReader) optionalUint32(n uint) *uint32 {
	if !r.bool() {
		return nil
	}
	v := r.uint32(n)
	return &v
}

func (r *bitReader) point3() event.Point {
	x := r.int(20, 0)
	y := r.int(20, 0)
	z := r.int(32, math.MinInt32)
	return event.Point{
		X: float32(x) / pointScale,
		Y: float32(y) / pointScale,
		Z: float32(z) / pointScale,
	}
}

func (r *bitReader) targetUnit() event.TargetUnit {
	return event.TargetUnit{
		Flags:            r.int(16, 0),
		Timer:            r.int(8, 0),
		Tag:              r.uint32(32),
		SnapshotUnitLink: r.int(16, 0),
		ControlPlayerID:  r.optionalInt(4, 0),
		UpkeepPlayerID:   r.optionalInt(4, 0),
		SnapshotPoint:    r.point3(),
	}
}

func (r *bitReader) mask() event.SelectionMask {
	m := event.SelectionMask{Kind: event.MaskKind(r.choice(4))}
	switch m.Kind {
	case event.MaskBits:
		if r.err == nil {
			r.c, m.Bits, r.err = wire.PackedBitArray(r.c, 9)
		}
	case event.MaskOneIndices, event.MaskZeroIndices:
		if n := r.array(9); r.err == nil && n > 0 {
			m.Indices = make([]int64, n)
			for i := range m.Indices {
				m.Indices[i] = r.int(9, 0)
			}
		}
	}
	return m
}

func (f *family) DecodeGameEvent(c cursor.Bits) (cursor.Bits, GameRecord, error) {
	r := bitReader{c: c}
	var rec GameRecord
	width := deltaWidths[r.choice(len(deltaWidths))]
	rec.Delta = r.uint32(width)
	rec.UserID = r.int(gameUserIDBits, 0)
	rec.ID = r.int(gameEventIDBits, 0)
	if r.err != nil {
		return c, GameRecord{}, errors.Wrap(r.err, "game event header")
	}

	switch {
	case rec.ID == gameCmd:
		rec.Event = f.decodeCmd(&r)
	case rec.ID == gameSelectionDelta:
		rec.Event = decodeSelectionDelta(&r)
	case rec.ID == gameControlGroupUpdate:
		e := event.ControlGroupUpdate{
			ControlGroupIndex: r.int(4, 0),
			Action:            event.ControlGroupAction(r.int(3, 0)),
		}
		if r.err == nil && e.Action > event.ControlGroupAppendAndSteal {
			r.err = errors.Errorf("invalid control group action %d", e.Action)
		}
		e.Mask = r.mask()
		rec.Event = &e
	case rec.ID == gameCameraUpdate:
		rec.Event = decodeCameraUpdate(&r)
	case rec.ID == gameCmdUpdateTargetPoint && f.hasTargetUpdates:
		rec.Event = &event.CmdUpdateTargetPoint{Target: r.point3()}
	case rec.ID == gameCmdUpdateTargetUnit && f.hasTargetUpdates:
		rec.Event = &event.CmdUpdateTargetUnit{Target: r.targetUnit()}

	// Known events that are consumed but not translated.
	case rec.ID == GameUserFinishedLoading:
	case rec.ID == GameCameraSave:
		r.int(3, 0)
		r.int(16, 0)
		r.int(16, 0)
	case rec.ID == GameUserLeave:
		r.int(5, 0)

	default:
		return c, GameRecord{}, &UnknownEventError{Family: f.name, ID: rec.ID}
	}
	if r.err != nil {
		return c, GameRecord{}, errors.Wrapf(r.err, "game event %d", rec.ID)
	}
	return r.c.ByteAlign(), rec, nil
}

func (f *family) decodeCmd(r *bitReader) event.Game {
	var e event.Cmd
	e.Flags = r.int(f.cmdFlagBits, 0)
	if r.bool() {
		e.Ability = &event.CmdAbility{
			Link:     r.int(16, 0),
			CmdIndex: r.int(5, 0),
			CmdData:  r.optionalInt(8, 0),
		}
	}
	switch r.choice(4) {
	case 1:
		p := r.point3()
		e.Target.Point = &p
	case 2:
		tu := r.targetUnit()
		e.Target.Unit = &tu
	case 3:
		v := r.uint32(32)
		e.Target.Data = &v
	}
	e.Sequence = r.int(32, 1)
	e.OtherUnit = r.optionalUint32(32)
	if f.hasUnitGroup {
		e.UnitGroup = r.optionalUint32(32)
	}
	return &e
}

func decodeSelectionDelta(r *bitReader) event.Game {
	e := event.SelectionDelta{
		ControlGroupID: r.int(4, 0),
		SubgroupIndex:  r.int(9, 0),
		RemoveMask:     r.mask(),
	}
	if n := r.array(9); r.err == nil && n > 0 {
		e.AddSubgroups = make([]event.SelectionSubgroup, n)
		for i := range e.AddSubgroups {
			e.AddSubgroups[i] = event.SelectionSubgroup{
				UnitLink:              r.int(16, 0),
				SubgroupPriority:      r.int(8, 0),
				IntraSubgroupPriority: r.int(8, 0),
				Count:                 r.int(9, 0),
			}
		}
	}
	if n := r.array(9); r.err == nil && n > 0 {
		e.AddUnitTags = make([]uint32, n)
		for i := range e.AddUnitTags {
			e.AddUnitTags[i] = r.uint32(32)
		}
	}
	return &e
}

func decodeCameraUpdate(r *bitReader) event.Game {
	var e event.CameraUpdate
	if r.bool() {
		x := r.int(16, 0)
		y := r.int(16, 0)
		e.Target = &event.Point{X: float32(x) / cameraScale, Y: float32(y) / cameraScale}
	}
	e.Distance = r.optionalInt(16, 0)
	e.Pitch = r.optionalInt(16, 0)
	e.Yaw = r.optionalInt(16, 0)
	e.Reason = r.optionalInt(8, -128)
	e.Follow = r.bool()
	return &e
}

func scaled(v float32, scale float64) int64 { return int64(math.Round(float64(v) * scale)) }

func writePoint3(w *cursor.BitWriter, p event.Point) {
	w.WriteInt(scaled(p.X, pointScale), 20, 0)
	w.WriteInt(scaled(p.Y, pointScale), 20, 0)
	w.WriteInt(scaled(p.Z, pointScale), 32, math.MinInt32)
}

func writeOptionalInt(w *cursor.BitWriter, v *int64, n uint, min int64) {
	wire.WritePackedBool(w, v != nil)
	if v != nil {
		w.WriteInt(*v, n, min)
	}
}

func writeOptionalUint32(w *cursor.BitWriter, v *uint32) {
	wire.WritePackedBool(w, v != nil)
	if v != nil {
		w.WriteBits(uint64(*v), 32)
	}
}

func writeTargetUnit(w *cursor.BitWriter, t *event.TargetUnit) {
	w.WriteInt(t.Flags, 16, 0)
	w.WriteInt(t.Timer, 8, 0)
	w.WriteBits(uint64(t.Tag), 32)
	w.WriteInt(t.SnapshotUnitLink, 16, 0)
	writeOptionalInt(w, t.ControlPlayerID, 4, 0)
	writeOptionalInt(w, t.UpkeepPlayerID, 4, 0)
	writePoint3(w, t.SnapshotPoint)
}

func writeMask(w *cursor.BitWriter, m *event.SelectionMask) {
	wire.WritePackedChoice(w, int(m.Kind), 4)
	switch m.Kind {
	case event.MaskBits:
		wire.WritePackedBitArray(w, m.Bits, 9)
	case event.MaskOneIndices, event.MaskZeroIndices:
		w.WriteBits(uint64(len(m.Indices)), 9)
		for _, idx := range m.Indices {
			w.WriteInt(idx, 9, 0)
		}
	}
}

// WriteGameHeader appends a game record header. The caller appends the
// record's payload followed by byte alignment.
func WriteGameHeader(w *cursor.BitWriter, delta uint32, userID, id int64) {
	class := sizeClass(delta)
	wire.WritePackedChoice(w, class, len(deltaWidths))
	w.WriteBits(uint64(delta), deltaWidths[class])
	w.WriteInt(userID, gameUserIDBits, 0)
	w.WriteInt(id, gameEventIDBits, 0)
}

func (f *family) EncodeGameEvent(w *cursor.BitWriter, delta uint32, userID int64, e event.Game) error {
	switch e := e.(type) {
	case *event.Cmd:
		if e.UnitGroup != nil && !f.hasUnitGroup {
			return ErrUnsupportedEvent
		}
		WriteGameHeader(w, delta, userID, gameCmd)
		w.WriteInt(e.Flags, f.cmdFlagBits, 0)
		wire.WritePackedBool(w, e.Ability != nil)
		if e.Ability != nil {
			w.WriteInt(e.Ability.Link, 16, 0)
			w.WriteInt(e.Ability.CmdIndex, 5, 0)
			writeOptionalInt(w, e.Ability.CmdData, 8, 0)
		}
		switch {
		case e.Target.Point != nil:
			wire.WritePackedChoice(w, 1, 4)
			writePoint3(w, *e.Target.Point)
		case e.Target.Unit != nil:
			wire.WritePackedChoice(w, 2, 4)
			writeTargetUnit(w, e.Target.Unit)
		case e.Target.Data != nil:
			wire.WritePackedChoice(w, 3, 4)
			w.WriteBits(uint64(*e.Target.Data), 32)
		default:
			wire.WritePackedChoice(w, 0, 4)
		}
		w.WriteInt(e.Sequence, 32, 1)
		writeOptionalUint32(w, e.OtherUnit)
		if f.hasUnitGroup {
			writeOptionalUint32(w, e.UnitGroup)
		}

	case *event.SelectionDelta:
		WriteGameHeader(w, delta, userID, gameSelectionDelta)
		w.WriteInt(e.ControlGroupID, 4, 0)
		w.WriteInt(e.SubgroupIndex, 9, 0)
		writeMask(w, &e.RemoveMask)
		w.WriteBits(uint64(len(e.AddSubgroups)), 9)
		for _, sg := range e.AddSubgroups {
			w.WriteInt(sg.UnitLink, 16, 0)
			w.WriteInt(sg.SubgroupPriority, 8, 0)
			w.WriteInt(sg.IntraSubgroupPriority, 8, 0)
			w.WriteInt(sg.Count, 9, 0)
		}
		w.WriteBits(uint64(len(e.AddUnitTags)), 9)
		for _, tag := range e.AddUnitTags {
			w.WriteBits(uint64(tag), 32)
		}

	case *event.ControlGroupUpdate:
		WriteGameHeader(w, delta, userID, gameControlGroupUpdate)
		w.WriteInt(e.ControlGroupIndex, 4, 0)
		w.WriteInt(int64(e.Action), 3, 0)
		writeMask(w, &e.Mask)

	case *event.CameraUpdate:
		WriteGameHeader(w, delta, userID, gameCameraUpdate)
		wire.WritePackedBool(w, e.Target != nil)
		if e.Target != nil {
			w.WriteInt(scaled(e.Target.X, cameraScale), 16, 0)
			w.WriteInt(scaled(e.Target.Y, cameraScale), 16, 0)
		}
		writeOptionalInt(w, e.Distance, 16, 0)
		writeOptionalInt(w, e.Pitch, 16, 0)
		writeOptionalInt(w, e.Yaw, 16, 0)
		writeOptionalInt(w, e.Reason, 8, -128)
		wire.WritePackedBool(w, e.Follow)

	case *event.CmdUpdateTargetPoint:
		if !f.hasTargetUpdates {
			return ErrUnsupportedEvent
		}
		WriteGameHeader(w, delta, userID, gameCmdUpdateTargetPoint)
		writePoint3(w, e.Target)

	case *event.CmdUpdateTargetUnit:
		if !f.hasTargetUpdates {
			return ErrUnsupportedEvent
		}
		WriteGameHeader(w, delta, userID, gameCmdUpdateTargetUnit)
		writeTargetUnit(w, &e.Target)

	default:
		return ErrUnsupportedEvent
	}

	w.ByteAlign()
	return nil
}

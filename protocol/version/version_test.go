// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package version

import (
	"testing"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/wire"
	"github.com/danjacques/gosc2replay/support/cursor"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestVersion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Version")
}

func u32(v uint32) *uint32 { return &v }
func i64(v int64) *int64   { return &v }

func decodeTracker(f Family, data []byte) TrackerRecord {
	c, rec, err := f.DecodeTrackerEvent(cursor.NewBytes(data))
	Expect(err).ToNot(HaveOccurred())
	Expect(c.Done()).To(BeTrue())
	return rec
}

func encodeTracker(f Family, delta uint32, e event.Tracker) []byte {
	var w wire.VersionedWriter
	Expect(f.EncodeTrackerEvent(&w, delta, e)).To(Succeed())
	return w.Bytes()
}

func roundTripGame(f Family, delta uint32, userID int64, e event.Game) GameRecord {
	var w cursor.BitWriter
	Expect(f.EncodeGameEvent(&w, delta, userID, e)).To(Succeed())

	c, rec, err := f.DecodeGameEvent(cursor.NewBits(w.Bytes()))
	Expect(err).ToNot(HaveOccurred())
	Expect(c.Done()).To(BeTrue())
	return rec
}

var _ = Describe("Tracker events", func() {
	born := event.UnitBorn{
		UnitTagIndex:          42,
		UnitTagRecycle:        1,
		UnitTypeName:          "Marine",
		ControlPlayerID:       1,
		UpkeepPlayerID:        1,
		X:                     30,
		Y:                     40,
		CreatorUnitTagIndex:   u32(7),
		CreatorUnitTagRecycle: u32(1),
		CreatorAbilityName:    "BarracksTrain",
	}

	It("decodes creator fields in the modern family", func() {
		rec := decodeTracker(Modern, encodeTracker(Modern, 16, &born))
		Expect(rec.Delta).To(Equal(uint32(16)))
		Expect(rec.ID).To(Equal(int64(trackerUnitBorn)))
		Expect(rec.Event).To(Equal(&born))
	})

	It("omits creator fields in the legacy family", func() {
		rec := decodeTracker(Legacy, encodeTracker(Legacy, 0, &born))

		want := born
		want.CreatorUnitTagIndex, want.CreatorUnitTagRecycle, want.CreatorAbilityName = nil, nil, ""
		Expect(rec.Event).To(Equal(&want))
	})

	It("ignores modern-only fields when decoding as legacy", func() {
		rec := decodeTracker(Legacy, encodeTracker(Modern, 0, &born))
		Expect(rec.Event.(*event.UnitBorn).CreatorUnitTagIndex).To(BeNil())
		Expect(rec.Event.(*event.UnitBorn).UnitTypeName).To(Equal("Marine"))
	})

	DescribeTable("decodes nested player stats",
		func(f Family) {
			stats := event.PlayerStats{
				PlayerID:           2,
				MineralsCurrent:    50,
				VespeneCurrent:     25,
				MineralsRate:       700,
				VespeneRate:        224,
				WorkersActive:      12,
				FoodUsed:           14 * 4096,
				FoodMade:           15 * 4096,
				MineralsLostArmy:   100,
				VespeneLostArmy:    -1,
				MineralsKilledArmy: 300,
			}
			rec := decodeTracker(f, encodeTracker(f, 160, &stats))
			Expect(rec.Delta).To(Equal(uint32(160)))
			Expect(rec.Event).To(Equal(&stats))
		},
		Entry("modern", Modern),
		Entry("legacy", Legacy),
	)

	It("skips player stat fields it does not track", func() {
		var w wire.VersionedWriter
		WriteTrackerHeader(&w, 0, trackerPlayerStats)
		w.Struct(2).Field(0).Int(1).Field(1).Struct(3).
			Field(0).Int(75).
			Field(9).Int(400).
			Field(38).Int(99)

		rec := decodeTracker(Modern, w.Bytes())
		Expect(rec.Event).To(Equal(&event.PlayerStats{
			PlayerID:           1,
			MineralsCurrent:    75,
			MineralsKilledArmy: 400,
		}))
	})

	It("decodes unit positions", func() {
		pos := event.UnitPositions{FirstUnitIndex: 10, Items: []int64{0, 5, 6, 3, 7, 8}}
		rec := decodeTracker(Modern, encodeTracker(Modern, 15, &pos))
		Expect(rec.Event).To(Equal(&pos))
		Expect(rec.Event.(*event.UnitPositions).Positions()).To(Equal([]event.UnitPosition{
			{TagIndex: 10, X: 20, Y: 24},
			{TagIndex: 13, X: 28, Y: 32},
		}))
	})

	It("skips PlayerSetup in the legacy family", func() {
		setup := event.PlayerSetup{PlayerID: 1, Type: 1, UserID: i64(0), SlotID: i64(0)}
		Expect(Legacy.EncodeTrackerEvent(&wire.VersionedWriter{}, 0, &setup)).To(Equal(ErrUnsupportedEvent))

		rec := decodeTracker(Legacy, encodeTracker(Modern, 3, &setup))
		Expect(rec.Delta).To(Equal(uint32(3)))
		Expect(rec.ID).To(Equal(int64(trackerPlayerSetup)))
		Expect(rec.Event).To(BeNil())
	})

	It("skips unknown event IDs", func() {
		var w wire.VersionedWriter
		WriteTrackerHeader(&w, 9, 77)
		w.Struct(1).Field(0).Array(2).Int(1).Blob([]byte("x"))

		rec := decodeTracker(Modern, w.Bytes())
		Expect(rec.Delta).To(Equal(uint32(9)))
		Expect(rec.ID).To(Equal(int64(77)))
		Expect(rec.Event).To(BeNil())
	})

	It("requires unit tag fields", func() {
		var w wire.VersionedWriter
		WriteTrackerHeader(&w, 0, trackerUnitDone)
		w.Struct(1).Field(0).Int(5)

		_, _, err := Modern.DecodeTrackerEvent(cursor.NewBytes(w.Bytes()))
		Expect(wire.IsMissingField(err)).To(BeTrue())
	})

	It("rejects a unit tag index outside of uint32 range", func() {
		var w wire.VersionedWriter
		WriteTrackerHeader(&w, 0, trackerUnitDone)
		w.Struct(2).Field(0).Int(-1).Field(1).Int(0)

		_, _, err := Modern.DecodeTrackerEvent(cursor.NewBytes(w.Bytes()))
		Expect(err).To(MatchError(ContainSubstring("out of uint32 range")))
	})

	It("reports truncation without advancing", func() {
		data := encodeTracker(Modern, 0, &born)
		c := cursor.NewBytes(data[:len(data)-3])

		nc, _, err := Modern.DecodeTrackerEvent(c)
		Expect(cursor.IsTruncated(err)).To(BeTrue())
		Expect(nc.Offset()).To(Equal(0))
	})
})

var _ = Describe("Game events", func() {
	DescribeTable("delta size classes",
		func(delta uint32) {
			rec := roundTripGame(Modern, delta, 3, &event.CameraUpdate{Follow: true})
			Expect(rec.Delta).To(Equal(delta))
			Expect(rec.UserID).To(Equal(int64(3)))
		},
		Entry("6-bit", uint32(63)),
		Entry("14-bit", uint32(64)),
		Entry("22-bit", uint32(1<<20)),
		Entry("32-bit", uint32(1<<31)),
	)

	It("decodes a command targeting a point", func() {
		cmd := event.Cmd{
			Flags:    0x100,
			Ability:  &event.CmdAbility{Link: 180, CmdIndex: 0, CmdData: i64(3)},
			Target:   event.CmdTarget{Point: &event.Point{X: 12.5, Y: 30.25, Z: -1}},
			Sequence: 4,
		}
		for _, f := range []Family{Legacy, Modern} {
			rec := roundTripGame(f, 10, 1, &cmd)
			Expect(rec.ID).To(Equal(int64(gameCmd)))
			Expect(rec.Event).To(Equal(&cmd), "family %s", f.Name())
		}
	})

	It("decodes a command targeting a unit", func() {
		cmd := event.Cmd{
			Target: event.CmdTarget{Unit: &event.TargetUnit{
				Flags:           1,
				Timer:           2,
				Tag:             event.UnitTag(42, 1),
				ControlPlayerID: i64(2),
				SnapshotPoint:   event.Point{X: 1, Y: 2},
			}},
			Sequence:  1,
			OtherUnit: u32(9),
			UnitGroup: u32(1),
		}
		Expect(roundTripGame(Modern, 0, 0, &cmd).Event).To(Equal(&cmd))
		Expect(Legacy.EncodeGameEvent(&cursor.BitWriter{}, 0, 0, &cmd)).To(Equal(ErrUnsupportedEvent))
	})

	It("decodes a selection delta", func() {
		sd := event.SelectionDelta{
			ControlGroupID: event.ActiveSelectionGroup,
			RemoveMask:     event.SelectionMask{Kind: event.MaskBits, Bits: []bool{true, false, true}},
			AddSubgroups:   []event.SelectionSubgroup{{UnitLink: 48, Count: 2}},
			AddUnitTags:    []uint32{event.UnitTag(42, 1), event.UnitTag(43, 1)},
		}
		Expect(roundTripGame(Legacy, 5, 2, &sd).Event).To(Equal(&sd))
	})

	It("decodes a control group update with an index mask", func() {
		cgu := event.ControlGroupUpdate{
			ControlGroupIndex: 3,
			Action:            event.ControlGroupAppendAndSteal,
			Mask:              event.SelectionMask{Kind: event.MaskZeroIndices, Indices: []int64{1, 4}},
		}
		Expect(roundTripGame(Modern, 5, 2, &cgu).Event).To(Equal(&cgu))
	})

	It("rejects an out-of-range control group action", func() {
		var w cursor.BitWriter
		WriteGameHeader(&w, 0, 0, gameControlGroupUpdate)
		w.WriteBits(1, 4)
		w.WriteBits(7, 3)
		w.WriteBits(0, 2)

		_, _, err := Modern.DecodeGameEvent(cursor.NewBits(w.Bytes()))
		Expect(err).To(MatchError(ContainSubstring("invalid control group action")))
	})

	It("decodes a camera update", func() {
		cu := event.CameraUpdate{
			Target: &event.Point{X: 40.5, Y: 60.25},
			Pitch:  i64(10),
			Reason: i64(-3),
			Follow: true,
		}
		Expect(roundTripGame(Modern, 1, 0, &cu).Event).To(Equal(&cu))
	})

	It("decodes command retargets only in the modern family", func() {
		tp := event.CmdUpdateTargetPoint{Target: event.Point{X: 8, Y: 9}}
		Expect(roundTripGame(Modern, 1, 0, &tp).Event).To(Equal(&tp))

		var w cursor.BitWriter
		Expect(Modern.EncodeGameEvent(&w, 0, 0, &tp)).To(Succeed())
		_, _, err := Legacy.DecodeGameEvent(cursor.NewBits(w.Bytes()))
		Expect(err).To(BeAssignableToTypeOf(&UnknownEventError{}))
	})

	It("consumes known events that it does not translate", func() {
		var w cursor.BitWriter
		WriteGameHeader(&w, 4, 1, GameCameraSave)
		w.WriteBits(2, 3)
		w.WriteBits(100, 16)
		w.WriteBits(200, 16)
		w.ByteAlign()
		WriteGameHeader(&w, 2, 1, GameUserLeave)
		w.WriteBits(0, 5)

		c, rec, err := Legacy.DecodeGameEvent(cursor.NewBits(w.Bytes()))
		Expect(err).ToNot(HaveOccurred())
		Expect(rec.ID).To(Equal(int64(GameCameraSave)))
		Expect(rec.Event).To(BeNil())

		c, rec, err = Legacy.DecodeGameEvent(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(rec.Delta).To(Equal(uint32(2)))
		Expect(rec.Event).To(BeNil())
		Expect(c.Done()).To(BeTrue())
	})

	It("fails on unknown event IDs", func() {
		var w cursor.BitWriter
		WriteGameHeader(&w, 0, 0, 120)

		c := cursor.NewBits(w.Bytes())
		nc, _, err := Modern.DecodeGameEvent(c)
		Expect(err).To(Equal(&UnknownEventError{Family: "modern", ID: 120}))
		Expect(nc).To(Equal(c))
	})
})

var _ = Describe("Table", func() {
	var t *Table

	BeforeEach(func() {
		var err error
		t, err = NewTable(map[int64]Family{100: Legacy, 200: Legacy, 300: Modern})
		Expect(err).ToNot(HaveOccurred())
	})

	DescribeTable("resolution",
		func(build, want int64, family Family, fellBack bool) {
			r := t.Resolve(build)
			Expect(r.Requested).To(Equal(build))
			Expect(r.Build).To(Equal(want))
			Expect(r.Family).To(BeIdenticalTo(family))
			Expect(r.FellBack).To(Equal(fellBack))
		},
		Entry("exact", int64(200), int64(200), Legacy, false),
		Entry("between known builds", int64(250), int64(200), Legacy, true),
		Entry("above every build", int64(1000), int64(300), Modern, true),
		Entry("below every build", int64(50), int64(300), Modern, true),
		Entry("invalid build", int64(0), int64(300), Modern, true),
	)

	It("rejects an empty table", func() {
		_, err := NewTable(nil)
		Expect(err).To(HaveOccurred())
	})

	It("assigns families by build in the default table", func() {
		d := DefaultTable()
		Expect(d.Resolve(44401).Family).To(BeIdenticalTo(Legacy))
		Expect(d.Resolve(80949).Family).To(BeIdenticalTo(Modern))
		Expect(d.Fallback()).To(Equal(int64(94137)))
		Expect(d.Builds()).To(HaveLen(len(knownBuilds)))
	})
})

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package state

import (
	"math/rand"
	"testing"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/protocoltest"
	"github.com/danjacques/gosc2replay/replay/balance"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestState(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "State")
}

func u32(v uint32) *uint32 { return &v }
func i64(v int64) *int64   { return &v }

var _ = Describe("Unit lifecycle", func() {
	var s *State

	BeforeEach(func() {
		s = New()
		s.Balance = balance.Default()
		s.Build = 80949
	})

	It("registers, completes and unregisters a unit", func() {
		s.ApplyTracker(7, protocoltest.UnitBorn(7, "Marauder", 2, 40, 40))

		h := s.ApplyTracker(10, &event.UnitInit{UnitTagIndex: 5, UnitTagRecycle: 1, UnitTypeName: "Marine", ControlPlayerID: 1})
		Expect(h).To(BeAssignableToTypeOf(&HintRegistered{}))
		u, ok := s.Unit(5)
		Expect(ok).To(BeTrue())
		Expect(u.IsInit).To(BeTrue())

		s.ApplyTracker(20, protocoltest.UnitBorn(5, "Marine", 1, 30, 30))
		u, ok = s.Unit(5)
		Expect(ok).To(BeTrue())
		Expect(u.Name).To(Equal("Marine"))
		Expect(u.Radius).To(Equal(float32(0.375)))

		h = s.ApplyTracker(30, &event.UnitDied{
			UnitTagIndex:       5,
			UnitTagRecycle:     1,
			KillerPlayerID:     i64(2),
			KillerUnitTagIndex: u32(7),
		})
		Expect(h).To(BeAssignableToTypeOf(&HintUnregistered{}))
		hu := h.(*HintUnregistered)
		Expect(hu.Killed.Name).To(Equal("Marine"))
		Expect(hu.Killed.LastLoop).To(Equal(int64(20)))
		Expect(hu.Killer).ToNot(BeNil())
		Expect(hu.Killer.Name).To(Equal("Marauder"))

		_, ok = s.Unit(5)
		Expect(ok).To(BeFalse())
		Expect(s.UnitCount()).To(Equal(1))
	})

	It("resolves the creator of a born unit", func() {
		s.ApplyTracker(0, protocoltest.UnitBorn(1, "Barracks", 1, 10, 10))

		born := protocoltest.UnitBorn(2, "Marine", 1, 11, 11)
		born.CreatorUnitTagIndex = u32(1)
		born.CreatorAbilityName = "BarracksTrain"

		h := s.ApplyTracker(5, born).(*HintRegistered)
		Expect(h.Unit.CreatorAbility).To(Equal("Train"))
		Expect(h.Creator).ToNot(BeNil())
		Expect(h.Creator.Name).To(Equal("Barracks"))
	})

	It("completes units under construction", func() {
		s.ApplyTracker(0, &event.UnitInit{UnitTagIndex: 3, UnitTagRecycle: 1, UnitTypeName: "Barracks"})
		h := s.ApplyTracker(100, &event.UnitDone{UnitTagIndex: 3, UnitTagRecycle: 1})
		Expect(h.(*HintCompleted).Unit.IsInit).To(BeFalse())
		Expect(h.(*HintCompleted).Unit.LastLoop).To(Equal(int64(100)))
	})

	It("tolerates events for unknown units", func() {
		Expect(s.ApplyTracker(0, &event.UnitDied{UnitTagIndex: 99})).To(Equal(HintNone{}))
		Expect(s.ApplyTracker(0, &event.UnitDone{UnitTagIndex: 99})).To(Equal(HintNone{}))
		Expect(s.ApplyTracker(0, &event.UnitTypeChange{UnitTagIndex: 99})).To(Equal(HintNone{}))
		Expect(s.ApplyTracker(0, &event.UnitOwnerChange{UnitTagIndex: 99})).To(Equal(HintNone{}))
	})

	It("renames units and refreshes their metadata", func() {
		s.ApplyTracker(0, protocoltest.UnitBorn(4, "SiegeTank", 1, 5, 5))
		h := s.ApplyTracker(3, &event.UnitTypeChange{UnitTagIndex: 4, UnitTagRecycle: 1, UnitTypeName: "Marine"})
		r := h.(*HintUnitRenamed)
		Expect(r.OldName).To(Equal("SiegeTank"))
		Expect(r.Unit.Radius).To(Equal(float32(0.375)))
	})

	It("binds units to users through player setup", func() {
		s.ApplyTracker(0, &event.PlayerSetup{PlayerID: 2, Type: 1, UserID: i64(1)})
		s.ApplyTracker(0, protocoltest.UnitBorn(4, "Probe", 2, 5, 5))
		u, _ := s.Unit(4)
		Expect(u.UserID).To(Equal(i64(1)))

		h := s.ApplyTracker(9, &event.UnitOwnerChange{UnitTagIndex: 4, UnitTagRecycle: 1, ControlPlayerID: 3})
		oc := h.(*HintOwnerChanged)
		Expect(oc.OldPlayerID).To(Equal(int64(2)))
		Expect(oc.Unit.UserID).To(BeNil())
		Expect(s.Users()).To(Equal([]int64{1}))
	})

	It("moves known units", func() {
		s.ApplyTracker(0, protocoltest.UnitBorn(10, "Zergling", 1, 0, 0))
		h := s.ApplyTracker(16, &event.UnitPositions{FirstUnitIndex: 10, Items: []int64{0, 5, 6, 1, 7, 8}})

		p := h.(*HintPositions)
		Expect(p.Units).To(HaveLen(1))
		Expect(p.Units[0].Pos).To(Equal(event.Point{X: 20, Y: 24}))
	})

	It("reports stale units", func() {
		s.ApplyTracker(0, protocoltest.UnitBorn(1, "Drone", 1, 0, 0))
		s.ApplyTracker(50, protocoltest.UnitBorn(2, "Drone", 1, 0, 0))

		stale := s.StaleUnits(100, 60)
		Expect(stale).To(HaveLen(1))
		Expect(stale[0].TagIndex).To(Equal(uint32(1)))
	})
})

var _ = Describe("Selection and control groups", func() {
	var s *State

	BeforeEach(func() {
		s = New()
		for idx := uint32(1); idx <= 6; idx++ {
			s.ApplyTracker(0, protocoltest.UnitBorn(idx, "Marine", 1, 0, 0))
		}
	})

	group := func(g int) []uint32 {
		us, ok := s.UserState(0)
		Expect(ok).To(BeTrue())
		return us.ControlGroups[g]
	}

	It("toggles the selection flag and radius", func() {
		u, _ := s.Unit(3)
		base := u.Radius

		h := s.ApplyGame(1, 0, protocoltest.Select(3)).(*HintSelection)
		Expect(h.Added).To(Equal([]uint32{3}))
		u, _ = s.Unit(3)
		Expect(u.IsSelected).To(BeTrue())
		Expect(u.Radius).To(Equal(base * 2))
		Expect(s.IsSelected(event.UnitTag(3, 1))).To(BeTrue())

		h = s.ApplyGame(2, 0, protocoltest.Select()).(*HintSelection)
		Expect(h.Removed).To(Equal([]uint32{3}))
		u, _ = s.Unit(3)
		Expect(u.IsSelected).To(BeFalse())
		Expect(u.Radius).To(Equal(base))
	})

	It("does not toggle units that stay selected", func() {
		s.ApplyGame(1, 0, protocoltest.Select(1, 2))
		s.ApplyGame(2, 0, protocoltest.Select(2, 3))

		u, _ := s.Unit(2)
		Expect(u.IsSelected).To(BeTrue())
		Expect(u.Radius).To(Equal(float32(0.5 * 2)))
		Expect(s.IsSelected(event.UnitTag(1, 1))).To(BeFalse())
	})

	It("keeps group membership sorted and unique", func() {
		s.ApplyGame(1, 0, protocoltest.Select(5, 2, 5, 1))
		Expect(group(event.ActiveSelectionGroup)).To(Equal([]uint32{1, 2, 5}))

		s.ApplyGame(2, 0, &event.ControlGroupUpdate{ControlGroupIndex: 1, Action: event.ControlGroupSet})
		s.ApplyGame(3, 0, protocoltest.Select(2, 6))
		s.ApplyGame(4, 0, &event.ControlGroupUpdate{ControlGroupIndex: 1, Action: event.ControlGroupAppend})
		Expect(group(1)).To(Equal([]uint32{1, 2, 5, 6}))
	})

	It("updates non-selection groups without touching selection flags", func() {
		sd := protocoltest.Select(4)
		sd.ControlGroupID = 2
		s.ApplyGame(1, 0, sd)

		Expect(group(2)).To(Equal([]uint32{4}))
		Expect(s.IsSelected(event.UnitTag(4, 1))).To(BeFalse())
	})

	It("steals units from every other hotkey group", func() {
		s.ApplyGame(1, 0, protocoltest.Select(1, 2, 3))
		s.ApplyGame(2, 0, &event.ControlGroupUpdate{ControlGroupIndex: 1, Action: event.ControlGroupSet})
		s.ApplyGame(3, 0, &event.ControlGroupUpdate{ControlGroupIndex: 9, Action: event.ControlGroupSet})
		s.ApplyGame(4, 0, protocoltest.Select(2, 4))

		h := s.ApplyGame(5, 0, &event.ControlGroupUpdate{
			ControlGroupIndex: 3,
			Action:            event.ControlGroupAppendAndSteal,
		}).(*HintSelection)

		Expect(h.Stolen).To(Equal([]uint32{2}))
		Expect(group(3)).To(Equal([]uint32{2, 4}))
		Expect(group(1)).To(Equal([]uint32{1, 3}))
		Expect(group(9)).To(Equal([]uint32{1, 3}))
		Expect(group(event.ActiveSelectionGroup)).To(Equal([]uint32{2, 4}))
	})

	It("recalls and clears groups", func() {
		s.ApplyGame(1, 0, protocoltest.Select(1, 2))
		s.ApplyGame(2, 0, &event.ControlGroupUpdate{ControlGroupIndex: 4, Action: event.ControlGroupSet})
		s.ApplyGame(3, 0, protocoltest.Select(6))

		h := s.ApplyGame(4, 0, &event.ControlGroupUpdate{ControlGroupIndex: 4, Action: event.ControlGroupRecall}).(*HintSelection)
		Expect(h.Group).To(Equal(int64(event.ActiveSelectionGroup)))
		Expect(h.Removed).To(Equal([]uint32{6}))
		Expect(s.IsSelected(event.UnitTag(1, 1))).To(BeTrue())
		Expect(s.IsSelected(event.UnitTag(6, 1))).To(BeFalse())

		s.ApplyGame(5, 0, &event.ControlGroupUpdate{ControlGroupIndex: 4, Action: event.ControlGroupClear})
		Expect(group(4)).To(BeEmpty())
	})

	It("keeps the selection of a unit that is born after being selected", func() {
		s.ApplyTracker(1, &event.UnitInit{UnitTagIndex: 7, UnitTagRecycle: 1, UnitTypeName: "Marine", ControlPlayerID: 1})
		s.ApplyGame(2, 0, protocoltest.Select(7))
		s.ApplyTracker(3, protocoltest.UnitBorn(7, "Marine", 1, 5, 5))

		Expect(group(event.ActiveSelectionGroup)).To(Equal([]uint32{7}))
		Expect(s.IsSelected(event.UnitTag(7, 1))).To(BeTrue())
		u, _ := s.Unit(7)
		Expect(u.Radius).To(Equal(float32(0.5 * 2)))

		h := s.ApplyGame(4, 0, protocoltest.Select()).(*HintSelection)
		Expect(h.Removed).To(Equal([]uint32{7}))
		u, _ = s.Unit(7)
		Expect(u.IsSelected).To(BeFalse())
		Expect(u.Radius).To(Equal(float32(0.5)))
	})

	It("rejects updates to the reserved group", func() {
		h := s.ApplyGame(1, 0, &event.ControlGroupUpdate{ControlGroupIndex: event.ActiveSelectionGroup})
		Expect(h).To(Equal(HintNone{}))
	})

	It("maintains group invariants across random operations", func() {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 500; i++ {
			switch rng.Intn(4) {
			case 3:
				// Units appear as under construction, then are born in place.
				idx := uint32(rng.Intn(8) + 1)
				if rng.Intn(2) == 0 {
					s.ApplyTracker(int64(i), &event.UnitInit{UnitTagIndex: idx, UnitTagRecycle: 1, UnitTypeName: "Marine", ControlPlayerID: 1})
				} else {
					s.ApplyTracker(int64(i), protocoltest.UnitBorn(idx, "Marine", 1, 0, 0))
				}

			case 0:
				n := rng.Intn(5)
				idx := make([]uint32, n)
				for j := range idx {
					idx[j] = uint32(rng.Intn(8) + 1)
				}
				s.ApplyGame(int64(i), 0, protocoltest.Select(idx...))

			default:
				g := int64(rng.Intn(10))
				action := event.ControlGroupAction(rng.Intn(6))
				s.ApplyGame(int64(i), 0, &event.ControlGroupUpdate{ControlGroupIndex: g, Action: action})

				if action.Steals() {
					sel := group(event.ActiveSelectionGroup)
					for other := 0; other < event.ActiveSelectionGroup; other++ {
						if int64(other) == g {
							continue
						}
						for _, idx := range sel {
							Expect(group(other)).ToNot(ContainElement(idx))
						}
					}
				}
			}

			us, _ := s.UserState(0)
			for _, members := range us.ControlGroups {
				for j := 1; j < len(members); j++ {
					Expect(members[j]).To(BeNumerically(">", members[j-1]))
				}
			}
			for idx := uint32(1); idx <= 8; idx++ {
				u, ok := s.Unit(idx)
				if !ok {
					continue
				}
				Expect(u.IsSelected).To(Equal(containsIndex(us.Selection(), idx)))
				want := float32(0.5)
				if u.IsSelected {
					want *= 2
				}
				Expect(u.Radius).To(Equal(want))
			}
		}
	})
})

var _ = Describe("Commands and cameras", func() {
	var s *State

	BeforeEach(func() {
		s = New()
		s.ApplyTracker(0, protocoltest.UnitBorn(1, "Marine", 1, 0, 0))
		s.ApplyTracker(0, protocoltest.UnitBorn(2, "Marine", 1, 0, 0))
		s.ApplyTracker(0, protocoltest.UnitBorn(3, "Zergling", 2, 0, 0))
		s.ApplyGame(1, 0, protocoltest.Select(1, 9))
	})

	It("commands only the selected registered units", func() {
		h := s.ApplyGame(10, 0, &event.Cmd{
			Ability:  &event.CmdAbility{Link: 180},
			Target:   event.CmdTarget{Point: &event.Point{X: 3, Y: 4}},
			Sequence: 1,
		}).(*HintAbility)
		Expect(h.Units).To(Equal([]uint32{1}))

		u, _ := s.Unit(1)
		Expect(u.Cmd.Ability.Link).To(Equal(int64(180)))
		Expect(u.Cmd.TargetPoint).To(Equal(&event.Point{X: 3, Y: 4}))
		Expect(u.LastLoop).To(Equal(int64(10)))

		u, _ = s.Unit(2)
		Expect(u.Cmd.Ability).To(BeNil())
	})

	It("retargets the selected units", func() {
		h := s.ApplyGame(10, 0, &event.CmdUpdateTargetUnit{Target: event.TargetUnit{Tag: event.UnitTag(3, 1)}}).(*HintTargetUnit)
		Expect(h.Target).To(Equal(uint32(3)))
		Expect(h.TargetUnit.Name).To(Equal("Zergling"))

		u, _ := s.Unit(1)
		Expect(*u.Cmd.TargetUnit).To(Equal(uint32(3)))

		s.ApplyGame(11, 0, &event.CmdUpdateTargetPoint{Target: event.Point{X: 1, Y: 1}})
		u, _ = s.Unit(1)
		Expect(u.Cmd.TargetUnit).To(BeNil())
		Expect(u.Cmd.TargetPoint).To(Equal(&event.Point{X: 1, Y: 1}))
	})

	It("moves only the acting user's camera", func() {
		h := s.ApplyGame(10, 1, &event.CameraUpdate{Target: &event.Point{X: 40, Y: 50}, Pitch: i64(3)}).(*HintCamera)
		Expect(h.Camera.X).To(Equal(float32(40)))

		us, _ := s.UserState(1)
		Expect(us.Camera.Pitch).To(Equal(i64(3)))
		us, _ = s.UserState(0)
		Expect(us.Camera.X).To(BeZero())
	})
})

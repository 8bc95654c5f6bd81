// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

// Filter selects which merged events an Iterator yields.
//
// Filtered events are still applied to the replay state. The zero value
// accepts everything.
type Filter struct {
	// MinLoop and MaxLoop bound events by tracker-relative loop, inclusively.
	// Game loops are converted with the merge ratio. A nil MaxLoop is
	// unbounded.
	MinLoop int64
	MaxLoop *int64

	// UserID, if not nil, restricts game events to one acting user. Tracker
	// events are unaffected.
	UserID *int64

	// EventTypes, if not empty, restricts events to these type names.
	EventTypes []string

	// MaxEvents, if positive, stops iteration after this many events have
	// been accepted.
	MaxEvents int
}

// accepts returns true if item passes every restriction but the budget.
func (f *Filter) accepts(item *Item) bool {
	if float64(f.MinLoop) > item.TrackerLoop {
		return false
	}
	if f.MaxLoop != nil && item.TrackerLoop > float64(*f.MaxLoop) {
		return false
	}
	if f.UserID != nil && item.Kind == GameEvent && item.UserID != *f.UserID {
		return false
	}
	if len(f.EventTypes) > 0 {
		name := item.EventType()
		for _, t := range f.EventTypes {
			if t == name {
				return true
			}
		}
		return false
	}
	return true
}

// exhausted returns true if emitted events have used up the budget.
func (f *Filter) exhausted(emitted int) bool { return f.MaxEvents > 0 && emitted >= f.MaxEvents }

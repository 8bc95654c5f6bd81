// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package event

// A unit tag packs a unit's slot index with a recycle counter, so that a slot
// reused by a later unit yields a different tag.
const (
	unitTagRecycleBits = 18
	unitTagIndexMask   = 0x3FFF
	unitTagRecycleMask = 0x3FFFF
)

// UnitTag packs index and recycle into a unit tag.
func UnitTag(index, recycle uint32) uint32 {
	return (index << unitTagRecycleBits) + recycle
}

// UnitTagIndex returns the slot index of tag.
func UnitTagIndex(tag uint32) uint32 { return (tag >> unitTagRecycleBits) & unitTagIndexMask }

// UnitTagRecycle returns the recycle counter of tag.
func UnitTagRecycle(tag uint32) uint32 { return tag & unitTagRecycleMask }

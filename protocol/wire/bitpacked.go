// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package wire

import (
	"math/bits"

	"github.com/danjacques/gosc2replay/support/cursor"
)

// TagWidth returns the number of bits needed to encode a variant tag for a
// choice with the specified number of variants: ceil(log2(variants)).
func TagWidth(variants int) uint {
	if variants <= 1 {
		return 0
	}
	return uint(bits.Len(uint(variants - 1)))
}

// PackedInt decodes an n-bit bounded integer with lower bound min.
func PackedInt(c cursor.Bits, n uint, min int64) (cursor.Bits, int64, error) {
	return c.ReadInt(n, min)
}

// PackedBool decodes a single-bit boolean.
func PackedBool(c cursor.Bits) (cursor.Bits, bool, error) {
	nc, v, err := c.ReadBits(1)
	if err != nil {
		return c, false, err
	}
	return nc, v != 0, nil
}

// PackedOptional decodes the presence bit of an optional value.
func PackedOptional(c cursor.Bits) (cursor.Bits, bool, error) { return PackedBool(c) }

// PackedChoice decodes the variant tag of a choice with the specified number
// of variants. Validating that the tag names a known variant is up to the
// caller.
func PackedChoice(c cursor.Bits, variants int) (cursor.Bits, int, error) {
	nc, v, err := c.ReadBits(TagWidth(variants))
	if err != nil {
		return c, 0, err
	}
	return nc, int(v), nil
}

// PackedArray decodes an array length stored in lenBits bits. The elements
// follow.
func PackedArray(c cursor.Bits, lenBits uint) (cursor.Bits, int, error) {
	nc, v, err := c.ReadBits(lenBits)
	if err != nil {
		return c, 0, err
	}
	return nc, int(v), nil
}

// PackedBlob decodes a byte string whose length is stored in lenBits bits. The
// data itself is byte-aligned.
//
// PackedBlob is zero-copy.
func PackedBlob(c cursor.Bits, lenBits uint) (cursor.Bits, []byte, error) {
	nc, n, err := PackedArray(c, lenBits)
	if err != nil {
		return c, nil, err
	}
	nc, v, err := nc.ReadAlignedBytes(n)
	if err != nil {
		return c, nil, err
	}
	return nc, v, nil
}

// PackedBitArray decodes a bit array whose length is stored in lenBits bits.
//
// The returned slice is indexed by bit position: the first bit on the wire is
// the most significant, and is returned last.
func PackedBitArray(c cursor.Bits, lenBits uint) (cursor.Bits, []bool, error) {
	nc, n, err := PackedArray(c, lenBits)
	if err != nil {
		return c, nil, err
	}
	if n > nc.Remaining() {
		return c, nil, cursor.ErrUnexpectedEOF
	}

	mask := make([]bool, n)
	for i := n - 1; i >= 0; i-- {
		var v uint64
		if nc, v, err = nc.ReadBits(1); err != nil {
			return c, nil, err
		}
		mask[i] = v != 0
	}
	return nc, mask, nil
}

// WritePackedChoice encodes a variant tag for a choice with the specified
// number of variants.
func WritePackedChoice(w *cursor.BitWriter, tag, variants int) {
	w.WriteBits(uint64(tag), TagWidth(variants))
}

// WritePackedBool encodes a single-bit boolean.
func WritePackedBool(w *cursor.BitWriter, v bool) {
	if v {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
}

// WritePackedBlob encodes a length-prefixed, byte-aligned byte string.
func WritePackedBlob(w *cursor.BitWriter, d []byte, lenBits uint) {
	w.WriteBits(uint64(len(d)), lenBits)
	w.WriteAlignedBytes(d)
}

// WritePackedBitArray encodes a bit array as read by PackedBitArray.
func WritePackedBitArray(w *cursor.BitWriter, mask []bool, lenBits uint) {
	w.WriteBits(uint64(len(mask)), lenBits)
	for i := len(mask) - 1; i >= 0; i-- {
		WritePackedBool(w, mask[i])
	}
}

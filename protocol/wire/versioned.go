// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package wire implements the two tagged-value encodings used by replay
// sectors.
//
// The "versioned" encoding is byte-aligned and self-describing: every value is
// preceded by a one-byte Tag naming its kind, integers are VLQs, and structs
// carry numbered fields. Unknown values can therefore be skipped without a
// schema (see SkipInstance).
//
// The "bit-packed" encoding is dense and schema-dependent: integers are stored
// as fixed-width offsets from a lower bound and variant tags use the fewest
// bits that can express every variant.
//
// Every decode function follows the cursor contract: it takes a cursor and
// returns the advanced cursor along with the decoded value. On error, the
// input cursor is returned.
package wire

import (
	"github.com/danjacques/gosc2replay/support/cursor"

	"github.com/pkg/errors"
)

// Tag is a versioned-encoding type marker.
type Tag byte

// Versioned-encoding type markers.
const (
	TagArray    Tag = 0
	TagBitArray Tag = 1
	TagBlob     Tag = 2
	TagChoice   Tag = 3
	TagOptional Tag = 4
	TagStruct   Tag = 5
	TagU8       Tag = 6
	TagU32      Tag = 7
	TagU64      Tag = 8
	TagVInt     Tag = 9
)

// maxSkipDepth bounds SkipInstance recursion on hostile input.
const maxSkipDepth = 64

// ErrSkipDepth is returned when SkipInstance encounters more nesting than it
// is willing to follow.
var ErrSkipDepth = errors.New("value nesting too deep to skip")

// Expect consumes a type marker and verifies that it is t.
func Expect(c cursor.Bytes, t Tag) (cursor.Bytes, error) {
	nc, b, err := c.Byte()
	switch {
	case err != nil:
		return c, err
	case Tag(b) != t:
		return c, &cursor.TagMismatchError{Offset: c.Offset(), Want: byte(t), Got: b}
	default:
		return nc, nil
	}
}

// length reads a VLQ length, rejecting negative values.
func length(c cursor.Bytes) (cursor.Bytes, int, error) {
	nc, v, err := cursor.DecodeVLQ(c)
	switch {
	case err != nil:
		return c, 0, err
	case v < 0 || v > int64(c.Remaining())*8:
		// No legitimate length can exceed the number of remaining bits.
		return c, 0, errors.Errorf("invalid length %d at offset %d", v, c.Offset())
	default:
		return nc, int(v), nil
	}
}

// Int decodes a tagged VLQ integer.
func Int(c cursor.Bytes) (cursor.Bytes, int64, error) {
	nc, err := Expect(c, TagVInt)
	if err != nil {
		return c, 0, err
	}
	nc, v, err := cursor.DecodeVLQ(nc)
	if err != nil {
		return c, 0, err
	}
	return nc, v, nil
}

// Bool decodes a tagged boolean.
func Bool(c cursor.Bytes) (cursor.Bytes, bool, error) {
	nc, v, err := U8(c)
	if err != nil {
		return c, false, err
	}
	return nc, v != 0, nil
}

// U8 decodes a tagged single-byte value.
func U8(c cursor.Bytes) (cursor.Bytes, uint8, error) {
	nc, err := Expect(c, TagU8)
	if err != nil {
		return c, 0, err
	}
	nc, v, err := nc.Byte()
	if err != nil {
		return c, 0, err
	}
	return nc, v, nil
}

// U32 decodes a tagged four-byte value (for example, a FourCC).
func U32(c cursor.Bytes) (cursor.Bytes, uint32, error) {
	nc, err := Expect(c, TagU32)
	if err != nil {
		return c, 0, err
	}
	nc, v, err := nc.Uint(4)
	if err != nil {
		return c, 0, err
	}
	return nc, uint32(v), nil
}

// U64 decodes a tagged eight-byte value.
func U64(c cursor.Bytes) (cursor.Bytes, uint64, error) {
	nc, err := Expect(c, TagU64)
	if err != nil {
		return c, 0, err
	}
	nc, v, err := nc.Uint(8)
	if err != nil {
		return c, 0, err
	}
	return nc, v, nil
}

// Blob decodes a tagged, length-prefixed byte string.
//
// Blob is zero-copy.
func Blob(c cursor.Bytes) (cursor.Bytes, []byte, error) {
	nc, err := Expect(c, TagBlob)
	if err != nil {
		return c, nil, err
	}
	nc, n, err := length(nc)
	if err != nil {
		return c, nil, err
	}
	nc, v, err := nc.Next(n)
	if err != nil {
		return c, nil, err
	}
	return nc, v, nil
}

// BitArray decodes a tagged bit array, returning its length in bits and its
// backing bytes.
func BitArray(c cursor.Bytes) (cursor.Bytes, int, []byte, error) {
	nc, err := Expect(c, TagBitArray)
	if err != nil {
		return c, 0, nil, err
	}
	nc, n, err := length(nc)
	if err != nil {
		return c, 0, nil, err
	}
	nc, v, err := nc.Next((n + 7) / 8)
	if err != nil {
		return c, 0, nil, err
	}
	return nc, n, v, nil
}

// Array decodes a tagged array header, returning its element count. The
// elements follow.
func Array(c cursor.Bytes) (cursor.Bytes, int, error) {
	nc, err := Expect(c, TagArray)
	if err != nil {
		return c, 0, err
	}
	nc, n, err := length(nc)
	if err != nil {
		return c, 0, err
	}
	return nc, n, nil
}

// Choice decodes a tagged choice header, returning the variant tag. The
// variant's value follows.
func Choice(c cursor.Bytes) (cursor.Bytes, int64, error) {
	nc, err := Expect(c, TagChoice)
	if err != nil {
		return c, 0, err
	}
	nc, v, err := cursor.DecodeVLQ(nc)
	if err != nil {
		return c, 0, err
	}
	return nc, v, nil
}

// Optional decodes a tagged optional header, returning whether a value
// follows.
func Optional(c cursor.Bytes) (cursor.Bytes, bool, error) {
	nc, err := Expect(c, TagOptional)
	if err != nil {
		return c, false, err
	}
	nc, v, err := nc.Byte()
	if err != nil {
		return c, false, err
	}
	return nc, v != 0, nil
}

// Struct decodes a tagged struct header, returning its field count. Each
// field follows as a VLQ field tag and a value.
func Struct(c cursor.Bytes) (cursor.Bytes, int, error) {
	nc, err := Expect(c, TagStruct)
	if err != nil {
		return c, 0, err
	}
	nc, n, err := length(nc)
	if err != nil {
		return c, 0, err
	}
	return nc, n, nil
}

// FieldFunc decodes the value of the struct field identified by tag.
//
// If the field is not known to the caller, FieldFunc must return handled as
// false without consuming anything, and the field will be skipped.
type FieldFunc func(c cursor.Bytes, tag int64) (nc cursor.Bytes, handled bool, err error)

// DecodeStruct decodes a tagged struct, passing each field to fn. Fields that
// fn does not handle are skipped with SkipInstance.
func DecodeStruct(c cursor.Bytes, fn FieldFunc) (cursor.Bytes, error) {
	nc, n, err := Struct(c)
	if err != nil {
		return c, err
	}

	for i := 0; i < n; i++ {
		var tag int64
		if nc, tag, err = cursor.DecodeVLQ(nc); err != nil {
			return c, errors.Wrapf(err, "field #%d tag", i)
		}

		var handled bool
		fc := nc
		if nc, handled, err = fn(nc, tag); err != nil {
			return c, errors.Wrapf(err, "field %d", tag)
		}
		if !handled {
			if nc, err = SkipInstance(fc); err != nil {
				return c, errors.Wrapf(err, "skipping field %d", tag)
			}
		}
	}
	return nc, nil
}

// SkipInstance skips over one complete self-describing value.
func SkipInstance(c cursor.Bytes) (cursor.Bytes, error) { return skipInstance(c, 0) }

func skipInstance(c cursor.Bytes, depth int) (cursor.Bytes, error) {
	if depth > maxSkipDepth {
		return c, ErrSkipDepth
	}

	nc, b, err := c.Byte()
	if err != nil {
		return c, err
	}

	switch Tag(b) {
	case TagArray:
		var n int
		if nc, n, err = length(nc); err != nil {
			return c, err
		}
		for i := 0; i < n; i++ {
			if nc, err = skipInstance(nc, depth+1); err != nil {
				return c, err
			}
		}

	case TagBitArray:
		var n int
		if nc, n, err = length(nc); err != nil {
			return c, err
		}
		nc, err = nc.Skip((n + 7) / 8)

	case TagBlob:
		var n int
		if nc, n, err = length(nc); err != nil {
			return c, err
		}
		nc, err = nc.Skip(n)

	case TagChoice:
		if nc, _, err = cursor.DecodeVLQ(nc); err != nil {
			return c, err
		}
		nc, err = skipInstance(nc, depth+1)

	case TagOptional:
		var exists byte
		if nc, exists, err = nc.Byte(); err != nil {
			return c, err
		}
		if exists != 0 {
			nc, err = skipInstance(nc, depth+1)
		}

	case TagStruct:
		var n int
		if nc, n, err = length(nc); err != nil {
			return c, err
		}
		for i := 0; i < n && err == nil; i++ {
			if nc, _, err = cursor.DecodeVLQ(nc); err == nil {
				nc, err = skipInstance(nc, depth+1)
			}
		}

	case TagU8:
		nc, err = nc.Skip(1)
	case TagU32:
		nc, err = nc.Skip(4)
	case TagU64:
		nc, err = nc.Skip(8)
	case TagVInt:
		nc, _, err = cursor.DecodeVLQ(nc)

	default:
		return c, errors.Errorf("unknown type marker %d at offset %d", b, c.Offset())
	}

	if err != nil {
		return c, err
	}
	return nc, nil
}

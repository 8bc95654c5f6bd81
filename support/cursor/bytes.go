// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package cursor offers immutable, zero-copy cursors over a byte buffer.
//
// A cursor is a small value that names a position within a shared Buffer.
// Every decode operation takes a cursor and returns a new cursor positioned
// after the consumed data, leaving the original untouched. This makes it
// trivial to snapshot a position (copy the value), to retry a decode from a
// known point, and to reason about exactly how much data a record consumed.
//
// Two cursor kinds are offered:
//
//   - Bytes is byte-aligned. Its position is always a whole byte.
//   - Bits is bit-packed. Its position is a byte index plus a 0-7 bit offset
//     within that byte.
//
// With great power comes great responsibility: slices returned by zero-copy
// methods reference the underlying Buffer, which must not be modified while
// they are in use.
//
// Cursor methods never panic on malformed input. Short reads are reported as
// ErrUnexpectedEOF, and a failed operation returns the cursor that it was
// invoked on.
package cursor

import (
	"encoding/binary"
)

// Bytes is a byte-aligned cursor over an immutable buffer.
//
// The zero value is an exhausted cursor.
type Bytes struct {
	buf []byte
	pos int
}

// NewBytes returns a Bytes cursor positioned at the beginning of buf.
func NewBytes(buf []byte) Bytes { return Bytes{buf: buf} }

func (c Bytes) remainingSlice() []byte {
	if c.pos >= len(c.buf) {
		return nil
	}
	return c.buf[c.pos:]
}

// Offset returns the cursor's absolute byte offset within its buffer.
func (c Bytes) Offset() int { return c.pos }

// Remaining returns the number of bytes remaining after the cursor.
func (c Bytes) Remaining() int { return len(c.remainingSlice()) }

// Done returns true if no bytes remain.
func (c Bytes) Done() bool { return c.Remaining() == 0 }

// Peek returns up to the next n bytes without advancing.
//
// Peek is a zero-copy method. If fewer than n bytes remain, Peek returns as
// many as possible.
func (c Bytes) Peek(n int) []byte {
	v := c.remainingSlice()
	if n < len(v) {
		v = v[:n]
	}
	return v
}

// PeekByte returns the next byte without advancing.
func (c Bytes) PeekByte() (byte, error) {
	if remaining := c.remainingSlice(); len(remaining) > 0 {
		return remaining[0], nil
	}
	return 0, ErrUnexpectedEOF
}

// Next consumes exactly n bytes, returning them and the advanced cursor.
//
// Next is zero-copy. Unlike Peek, a short read is an error: if fewer than n
// bytes remain, Next returns ErrUnexpectedEOF and does not advance.
func (c Bytes) Next(n int) (Bytes, []byte, error) {
	v := c.remainingSlice()
	if n < 0 || n > len(v) {
		return c, nil, ErrUnexpectedEOF
	}
	c.pos += n
	return c, v[:n:n], nil
}

// Byte consumes a single byte.
func (c Bytes) Byte() (Bytes, byte, error) {
	remaining := c.remainingSlice()
	if len(remaining) == 0 {
		return c, 0, ErrUnexpectedEOF
	}
	c.pos++
	return c, remaining[0], nil
}

// Skip advances past n bytes.
func (c Bytes) Skip(n int) (Bytes, error) {
	nc, _, err := c.Next(n)
	return nc, err
}

// Uint consumes an n-byte (1 <= n <= 8) big-endian unsigned integer.
func (c Bytes) Uint(n int) (Bytes, uint64, error) {
	if n < 1 || n > 8 {
		return c, 0, ErrUnexpectedEOF
	}
	nc, v, err := c.Next(n)
	if err != nil {
		return c, 0, err
	}

	var full [8]byte
	copy(full[8-n:], v)
	return nc, binary.BigEndian.Uint64(full[:]), nil
}

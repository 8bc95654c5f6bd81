// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package cursor

// Bits is a bit-packed cursor over an immutable buffer.
//
// Bits are consumed starting from the least significant bit of each byte.
// When a value spans several bytes, the earliest-read bits form the most
// significant part of the value.
//
// The zero value is an exhausted cursor.
type Bits struct {
	buf []byte
	pos int
	// bit is the number of bits of buf[pos] that have already been consumed.
	bit uint
}

// NewBits returns a Bits cursor positioned at the beginning of buf.
func NewBits(buf []byte) Bits { return Bits{buf: buf} }

// Offset returns the cursor's byte index and the bit offset within that byte.
func (c Bits) Offset() (int, uint) { return c.pos, c.bit }

// Remaining returns the number of unconsumed bits.
func (c Bits) Remaining() int {
	if c.pos >= len(c.buf) {
		return 0
	}
	return (len(c.buf)-c.pos)*8 - int(c.bit)
}

// Done returns true if the cursor sits on a byte boundary with no data left.
func (c Bits) Done() bool { return c.bit == 0 && c.pos >= len(c.buf) }

// ByteAlign advances the cursor to the next byte boundary. A cursor already
// on a boundary is returned unchanged.
func (c Bits) ByteAlign() Bits {
	if c.bit != 0 {
		c.pos, c.bit = c.pos+1, 0
	}
	return c
}

// ReadBits consumes n (0 <= n <= 64) bits and returns them as an unsigned
// integer.
func (c Bits) ReadBits(n uint) (Bits, uint64, error) {
	if n > 64 || int(n) > c.Remaining() {
		return c, 0, ErrUnexpectedEOF
	}

	nc := c
	var result uint64
	for read := uint(0); read < n; {
		avail := 8 - nc.bit
		take := n - read
		if take > avail {
			take = avail
		}

		chunk := (uint64(nc.buf[nc.pos]) >> nc.bit) & ((1 << take) - 1)
		result |= chunk << (n - read - take)

		read += take
		if nc.bit += take; nc.bit == 8 {
			nc.pos, nc.bit = nc.pos+1, 0
		}
	}
	return nc, result, nil
}

// ReadInt consumes an n-bit unsigned value and adds min to it.
//
// This is how bounded integers and variant tags are encoded in the bit-packed
// format: only the offset from the type's lower bound is stored.
func (c Bits) ReadInt(n uint, min int64) (Bits, int64, error) {
	nc, v, err := c.ReadBits(n)
	if err != nil {
		return c, 0, err
	}
	return nc, min + int64(v), nil
}

// ReadAlignedBytes byte-aligns the cursor and then consumes n whole bytes.
//
// ReadAlignedBytes is zero-copy.
func (c Bits) ReadAlignedBytes(n int) (Bits, []byte, error) {
	nc := c.ByteAlign()
	if n < 0 || nc.pos+n > len(nc.buf) {
		return c, nil, ErrUnexpectedEOF
	}
	v := nc.buf[nc.pos : nc.pos+n : nc.pos+n]
	nc.pos += n
	return nc, v, nil
}

// BitWriter builds a bit-packed buffer that Bits can read back.
//
// The zero value is an empty writer.
type BitWriter struct {
	buf  []byte
	cur  byte
	bits uint
}

// WriteBits appends the low n (0 <= n <= 64) bits of v.
func (w *BitWriter) WriteBits(v uint64, n uint) {
	for remaining := n; remaining > 0; {
		take := 8 - w.bits
		if take > remaining {
			take = remaining
		}

		chunk := byte((v >> (remaining - take)) & ((1 << take) - 1))
		w.cur |= chunk << w.bits
		remaining -= take

		if w.bits += take; w.bits == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.bits = 0, 0
		}
	}
}

// WriteInt appends v as an n-bit offset from min.
func (w *BitWriter) WriteInt(v int64, n uint, min int64) { w.WriteBits(uint64(v-min), n) }

// ByteAlign pads the current byte with zero bits.
func (w *BitWriter) ByteAlign() {
	if w.bits != 0 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.bits = 0, 0
	}
}

// WriteAlignedBytes byte-aligns and appends d.
func (w *BitWriter) WriteAlignedBytes(d []byte) {
	w.ByteAlign()
	w.buf = append(w.buf, d...)
}

// Bytes returns the written data, padding any partial trailing byte.
func (w *BitWriter) Bytes() []byte {
	w.ByteAlign()
	return w.buf
}

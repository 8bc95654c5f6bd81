// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package cursor

// maxVLQSize is the maximum number of bytes in an encoded 64-bit VLQ: six
// value bits in the first byte, then seven per continuation byte.
const maxVLQSize = 10

// DecodeVLQ consumes a signed variable-length integer.
//
// The first byte carries the sign in bit 0 and the low six value bits in bits
// 1-6. Every byte with its high bit set is followed by another byte carrying
// the next seven value bits.
func DecodeVLQ(c Bytes) (Bytes, int64, error) {
	nc, b, err := c.Byte()
	if err != nil {
		return c, 0, err
	}

	negative := b&0x01 != 0
	mag := uint64(b>>1) & 0x3f
	shift := uint(6)
	for b&0x80 != 0 {
		if nc, b, err = nc.Byte(); err != nil {
			return c, 0, err
		}

		chunk := uint64(b & 0x7f)
		if shift >= 64 || (shift > 57 && chunk>>(64-shift) != 0) {
			return c, 0, ErrVLQOverflow
		}
		mag |= chunk << shift
		shift += 7
	}

	switch {
	case !negative:
		if mag > 1<<63-1 {
			return c, 0, ErrVLQOverflow
		}
		return nc, int64(mag), nil
	case mag > 1<<63:
		return c, 0, ErrVLQOverflow
	default:
		return nc, -int64(mag), nil
	}
}

// AppendVLQ appends the variable-length encoding of v to d.
func AppendVLQ(d []byte, v int64) []byte {
	var mag uint64
	var sign byte
	if v < 0 {
		mag, sign = uint64(-v), 0x01
	} else {
		mag = uint64(v)
	}

	b := byte(mag&0x3f)<<1 | sign
	mag >>= 6
	for {
		if mag != 0 {
			b |= 0x80
		}
		d = append(d, b)
		if mag == 0 {
			return d
		}
		b = byte(mag & 0x7f)
		mag >>= 7
	}
}

// VLQSize returns the number of bytes AppendVLQ would use to encode v.
func VLQSize(v int64) int {
	var buf [maxVLQSize]byte
	return len(AppendVLQ(buf[:0], v))
}

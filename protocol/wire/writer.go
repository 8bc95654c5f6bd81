// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"

	"github.com/danjacques/gosc2replay/support/cursor"
)

// VersionedWriter builds a versioned-encoding buffer.
//
// Each method appends one tagged value (or value header) and returns the
// writer, so that simple records can be written fluently.
type VersionedWriter struct {
	buf []byte
}

// Bytes returns the encoded data.
func (w *VersionedWriter) Bytes() []byte { return w.buf }

func (w *VersionedWriter) tag(t Tag) { w.buf = append(w.buf, byte(t)) }

// Int appends a tagged VLQ integer.
func (w *VersionedWriter) Int(v int64) *VersionedWriter {
	w.tag(TagVInt)
	w.buf = cursor.AppendVLQ(w.buf, v)
	return w
}

// Bool appends a tagged boolean.
func (w *VersionedWriter) Bool(v bool) *VersionedWriter {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

// U8 appends a tagged byte.
func (w *VersionedWriter) U8(v uint8) *VersionedWriter {
	w.tag(TagU8)
	w.buf = append(w.buf, v)
	return w
}

// U32 appends a tagged four-byte value.
func (w *VersionedWriter) U32(v uint32) *VersionedWriter {
	w.tag(TagU32)
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
	return w
}

// U64 appends a tagged eight-byte value.
func (w *VersionedWriter) U64(v uint64) *VersionedWriter {
	w.tag(TagU64)
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
	return w
}

// Blob appends a tagged byte string.
func (w *VersionedWriter) Blob(d []byte) *VersionedWriter {
	w.tag(TagBlob)
	w.buf = cursor.AppendVLQ(w.buf, int64(len(d)))
	w.buf = append(w.buf, d...)
	return w
}

// BitArray appends a tagged bit array of n bits backed by d.
func (w *VersionedWriter) BitArray(n int, d []byte) *VersionedWriter {
	w.tag(TagBitArray)
	w.buf = cursor.AppendVLQ(w.buf, int64(n))
	w.buf = append(w.buf, d[:(n+7)/8]...)
	return w
}

// Array appends a tagged array header. The caller appends n elements.
func (w *VersionedWriter) Array(n int) *VersionedWriter {
	w.tag(TagArray)
	w.buf = cursor.AppendVLQ(w.buf, int64(n))
	return w
}

// Choice appends a tagged choice header. The caller appends the variant value.
func (w *VersionedWriter) Choice(variant int64) *VersionedWriter {
	w.tag(TagChoice)
	w.buf = cursor.AppendVLQ(w.buf, variant)
	return w
}

// Optional appends a tagged optional header. If present is true, the caller
// appends the value.
func (w *VersionedWriter) Optional(present bool) *VersionedWriter {
	w.tag(TagOptional)
	if present {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
	return w
}

// Struct appends a tagged struct header with n fields. The caller appends
// each field with Field followed by its value.
func (w *VersionedWriter) Struct(n int) *VersionedWriter {
	w.tag(TagStruct)
	w.buf = cursor.AppendVLQ(w.buf, int64(n))
	return w
}

// Field appends a struct field tag.
func (w *VersionedWriter) Field(tag int64) *VersionedWriter {
	w.buf = cursor.AppendVLQ(w.buf, tag)
	return w
}

// OptionalInt appends an optional integer, present if v is not nil.
func (w *VersionedWriter) OptionalInt(v *int64) *VersionedWriter {
	if v == nil {
		return w.Optional(false)
	}
	return w.Optional(true).Int(*v)
}

// OptionalBlob appends an optional byte string, present if d is not nil.
func (w *VersionedWriter) OptionalBlob(d []byte) *VersionedWriter {
	if d == nil {
		return w.Optional(false)
	}
	return w.Optional(true).Blob(d)
}

// Raw appends d verbatim.
func (w *VersionedWriter) Raw(d []byte) *VersionedWriter {
	w.buf = append(w.buf, d...)
	return w
}

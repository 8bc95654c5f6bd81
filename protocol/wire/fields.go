// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package wire

import (
	"fmt"

	"github.com/danjacques/gosc2replay/support/cursor"

	"github.com/pkg/errors"
)

// MissingFieldError is returned when a struct is missing a field that its
// protocol definition requires.
//
// This indicates a protocol-version mismatch rather than damaged data, but it
// is still reported as an error: the caller decides how much to abandon.
type MissingFieldError struct {
	Struct string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Struct, e.Field)
}

// IsMissingField returns true if the cause of err is a MissingFieldError.
func IsMissingField(err error) bool {
	_, ok := errors.Cause(err).(*MissingFieldError)
	return ok
}

// Field names a struct field by its wire tag.
type Field struct {
	Tag  int64
	Name string
}

// FieldSet records which field tags of a struct have been decoded.
type FieldSet uint64

// Add marks tag as seen. Tags beyond 63 are not tracked.
func (fs *FieldSet) Add(tag int64) {
	if tag >= 0 && tag < 64 {
		*fs |= 1 << uint(tag)
	}
}

// Has returns true if tag has been marked.
func (fs FieldSet) Has(tag int64) bool {
	return tag >= 0 && tag < 64 && fs&(1<<uint(tag)) != 0
}

// Require returns a MissingFieldError for the first required field that has
// not been seen.
func (fs FieldSet) Require(structName string, required ...Field) error {
	for _, f := range required {
		if !fs.Has(f.Tag) {
			return &MissingFieldError{Struct: structName, Field: f.Name}
		}
	}
	return nil
}

// OptionalInt decodes a tagged optional integer, returning nil if it is
// absent.
func OptionalInt(c cursor.Bytes) (cursor.Bytes, *int64, error) {
	nc, present, err := Optional(c)
	if err != nil || !present {
		return nc, nil, err
	}

	var v int64
	if nc, v, err = Int(nc); err != nil {
		return c, nil, err
	}
	return nc, &v, nil
}

// OptionalBlob decodes a tagged optional byte string, returning nil if it is
// absent.
func OptionalBlob(c cursor.Bytes) (cursor.Bytes, []byte, error) {
	nc, present, err := Optional(c)
	if err != nil || !present {
		return nc, nil, err
	}

	var v []byte
	if nc, v, err = Blob(nc); err != nil {
		return c, nil, err
	}
	if v == nil {
		v = []byte{}
	}
	return nc, v, nil
}

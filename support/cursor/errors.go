// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package cursor

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnexpectedEOF is returned when a decode operation needs more data than
// remains in its cursor.
var ErrUnexpectedEOF = errors.New("unexpected end of buffer")

// ErrVLQOverflow is returned when a variable-length integer does not fit in
// 64 bits.
var ErrVLQOverflow = errors.New("variable-length integer overflows 64 bits")

// TagMismatchError is returned when a type marker does not match the marker
// that a decoder expected.
type TagMismatchError struct {
	// Offset is the byte offset of the offending marker.
	Offset int
	// Want is the expected marker.
	Want byte
	// Got is the marker that was actually read.
	Got byte
}

func (e *TagMismatchError) Error() string {
	return fmt.Sprintf("tag mismatch at offset %d: want %d, got %d", e.Offset, e.Want, e.Got)
}

// IsTagMismatch returns true if the cause of err is a TagMismatchError.
func IsTagMismatch(err error) bool {
	_, ok := errors.Cause(err).(*TagMismatchError)
	return ok
}

// IsTruncated returns true if the cause of err is ErrUnexpectedEOF.
func IsTruncated(err error) bool { return errors.Cause(err) == ErrUnexpectedEOF }

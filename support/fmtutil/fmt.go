// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers.
package fmtutil

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const hexLineBytes = 16

// Hex is a window of a larger buffer that renders as a hex dump, labelled
// with offsets into that buffer.
//
// It can be used for easy lazy hex dumping.
type Hex struct {
	// Offset is the offset of Data within its buffer.
	Offset int
	Data   []byte
}

func (h Hex) String() string {
	var sb strings.Builder
	for i := 0; i < len(h.Data); i += hexLineBytes {
		line := hex.Dump(h.Data[i:min(i+hexLineBytes, len(h.Data))])
		// Replace the dump's own 8-digit offset.
		fmt.Fprintf(&sb, "%08x%s", h.Offset+i, line[8:])
	}
	return sb.String()
}

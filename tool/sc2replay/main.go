// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package sc2replay defines the logic for the "sc2replay" tool.
//
// The tool packs extracted replay sectors into bundles, and reads bundles
// back as a merged, state-annotated event stream.
package sc2replay

import (
	"fmt"
	"os"
)

// Main is the main entry point.
func Main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

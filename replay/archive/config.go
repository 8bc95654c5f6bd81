// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"time"

	"github.com/danjacques/gosc2replay/support/logging"
)

// Config is a configuration for the generation of bundles.
type Config struct {
	// Compression is the compression to apply to sector files.
	Compression Compression
	// CompressionLevel is the compression level to apply to Compression, if
	// applicable. Zero selects the compressor's default.
	CompressionLevel int

	// TempDir is the temporary directory to stage bundles in. It must be on
	// the same filesystem as the destination. If empty, bundles are staged
	// next to their destination.
	TempDir string

	// NowFunc, if not nil, is the function to use to get the current time. If
	// nil, time.Now will be used.
	NowFunc func() time.Time

	// Logger, if not nil, receives diagnostics.
	Logger logging.L
}

func (cfg *Config) now() time.Time {
	if cfg.NowFunc != nil {
		return cfg.NowFunc()
	}
	return time.Now()
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// DefaultTrackerRatio converts tracker loops into game loops. It was derived
// empirically, and may need recalibration against sample data.
const DefaultTrackerRatio = 0.70996

// MergeConfig configures how the two event streams are interleaved.
type MergeConfig struct {
	// TrackerRatio scales tracker loops into game loops.
	TrackerRatio float64

	// TrackerPriority and GamePriority order events whose normalized loops are
	// equal: the lower priority is emitted first.
	TrackerPriority int
	GamePriority    int
}

// DefaultMergeConfig returns the default MergeConfig.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		TrackerRatio:    DefaultTrackerRatio,
		TrackerPriority: 1,
		GamePriority:    2,
	}
}

// Validate returns an error if the configuration is unusable.
func (cfg *MergeConfig) Validate() error {
	if !(cfg.TrackerRatio > 0) {
		return errors.Errorf("tracker ratio must be positive, got %v", cfg.TrackerRatio)
	}
	return nil
}

// normalizeTracker converts a tracker loop to game loops.
func (cfg *MergeConfig) normalizeTracker(loop int64) float64 { return float64(loop) * cfg.TrackerRatio }

// trackerFirst returns true if a tracker event at trackerLoop should be
// emitted before a game event at gameLoop.
func (cfg *MergeConfig) trackerFirst(trackerLoop, gameLoop int64) bool {
	t, g := cfg.normalizeTracker(trackerLoop), float64(gameLoop)
	if t != g {
		return t < g
	}
	return cfg.TrackerPriority <= cfg.GamePriority
}

// RatioFlag is a pflag.Value that sets a MergeConfig's TrackerRatio.
type RatioFlag MergeConfig

var _ pflag.Value = (*RatioFlag)(nil)

func (rf *RatioFlag) String() string { return strconv.FormatFloat(rf.TrackerRatio, 'g', -1, 64) }

// Set implements pflag.Value.
func (rf *RatioFlag) Set(v string) error {
	ratio, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid ratio %q", v)
	}
	if !(ratio > 0) {
		return errors.Errorf("ratio must be positive, got %v", ratio)
	}
	rf.TrackerRatio = ratio
	return nil
}

// Type implements pflag.Value.
func (rf *RatioFlag) Type() string { return "ratio" }

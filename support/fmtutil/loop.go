// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package fmtutil

import (
	"math"
	"strings"
	"time"

	"github.com/hako/durafmt"
)

// LoopsPerSecond is the number of game loops per real second at the "faster"
// game speed.
const LoopsPerSecond = 22.4

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:y,wk:w,d:d,h:h,m:m,s:s,ms:ms,us:us")

// LoopDuration returns the real time elapsed after loops game loops.
func LoopDuration(loops int64) time.Duration {
	return time.Duration(math.Round(float64(loops) * float64(time.Second) / LoopsPerSecond))
}

// Loop is a game loop that renders as its elapsed real time, such as "12m 30s".
type Loop int64

func (l Loop) String() string {
	d := LoopDuration(int64(l)).Truncate(time.Second)
	if d <= 0 {
		return "0s"
	}

	// durafmt separates each value from its unit ("1 m 40 s"); join them.
	parts := strings.Fields(durafmt.Parse(d).LimitFirstN(2).Format(shortUnits))
	out := make([]string, 0, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		out = append(out, parts[i]+parts[i+1])
	}
	return strings.Join(out, " ")
}

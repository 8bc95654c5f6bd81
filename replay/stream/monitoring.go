// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package stream

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	trackerStreamName = "tracker"
	gameStreamName    = "game"
)

var (
	skippedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_stream_skipped_events",
		Help: "Count of decoded records that were skipped as unsupported.",
	}, []string{"stream"})

	streamErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_stream_errors",
		Help: "Count of streams that ended on a structural error.",
	}, []string{"stream"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		skippedEvents,
		streamErrors,
	)
}

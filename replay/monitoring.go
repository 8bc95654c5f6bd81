// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	mergedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_merge_events",
		Help: "Count of events merged, by stream.",
	}, []string{"stream"})

	filteredEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sc2replay_merge_filtered_events",
		Help: "Count of merged events suppressed by a filter.",
	})

	streamsAborted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_merge_streams_aborted",
		Help: "Count of streams that ended early on an error.",
	}, []string{"stream"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		mergedEvents,
		filteredEvents,
		streamsAborted,
	)
}

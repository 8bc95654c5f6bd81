// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchReplays = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_batch_replays",
		Help: "Count of replays processed, by outcome.",
	}, []string{"outcome"})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sc2replay_batch_replay_seconds",
		Help:    "Time spent processing one replay.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		batchReplays,
		batchDuration,
	)
}

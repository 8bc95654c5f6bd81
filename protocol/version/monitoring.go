// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package version

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_protocol_fallbacks",
		Help: "Count of unknown protocol builds resolved to a nearby known build.",
	}, []string{"family"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		fallbacks,
	)
}

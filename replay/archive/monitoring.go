// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sectorBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_archive_sector_bytes",
		Help: "Decompressed sector bytes moved through bundles.",
	}, []string{"op", "compression"})

	bundlesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sc2replay_archive_bundles_written",
		Help: "Count of bundles committed.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		sectorBytes,
		bundlesWritten,
	)
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package state

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Inconsistency kinds.
const (
	unknownUnitDied     = "unknown_unit_died"
	unknownUnitDone     = "unknown_unit_done"
	unknownUnitChanged  = "unknown_unit_changed"
	unknownUnitPosition = "unknown_unit_position"
	invalidControlGroup = "invalid_control_group"
)

var (
	inconsistencies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sc2replay_state_inconsistencies",
		Help: "Count of events that referenced state that does not exist.",
	}, []string{"kind"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		inconsistencies,
	)
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package version

import (
	"fmt"
	"sort"

	"github.com/danjacques/gosc2replay/support/logging"

	"github.com/pkg/errors"
)

// LegacyCutoff is the first build of the Modern family.
const LegacyCutoff = 70000

// knownBuilds are the protocol builds that this package has layouts for.
var knownBuilds = []int64{
	15405, 16117, 16605, 17326, 18317, 19458, 21029, 23260, 24944, 26490,
	28667, 32283, 34784, 36442, 38215, 39576, 41743, 44401, 47185, 51702,
	55958, 59587, 65094, 67188,
	70154, 73286, 75689, 77379, 80949, 83830, 87702, 88500, 89720, 94137,
}

// Resolution is the outcome of resolving a requested build.
type Resolution struct {
	// Family decodes the resolved build.
	Family Family
	// Build is the resolved known build.
	Build int64
	// Requested is the build that was asked for.
	Requested int64
	// FellBack is true if Requested was not a known build.
	FellBack bool
}

func (r *Resolution) String() string {
	if r.FellBack {
		return fmt.Sprintf("%d (%s, fell back from %d)", r.Build, r.Family.Name(), r.Requested)
	}
	return fmt.Sprintf("%d (%s)", r.Build, r.Family.Name())
}

// Table maps protocol builds to families.
type Table struct {
	builds   []int64
	families map[int64]Family

	// Logger, if not nil, receives fallback warnings.
	Logger logging.L
}

// NewTable builds a Table from a build-to-family map.
func NewTable(families map[int64]Family) (*Table, error) {
	if len(families) == 0 {
		return nil, errors.New("no builds in table")
	}

	t := Table{
		builds:   make([]int64, 0, len(families)),
		families: make(map[int64]Family, len(families)),
	}
	for build, f := range families {
		if f == nil {
			return nil, errors.Errorf("build %d has no family", build)
		}
		t.builds = append(t.builds, build)
		t.families[build] = f
	}
	sort.Slice(t.builds, func(i, j int) bool { return t.builds[i] < t.builds[j] })
	return &t, nil
}

// DefaultTable returns a Table containing every known build.
func DefaultTable() *Table {
	families := make(map[int64]Family, len(knownBuilds))
	for _, b := range knownBuilds {
		if b < LegacyCutoff {
			families[b] = Legacy
		} else {
			families[b] = Modern
		}
	}
	t, err := NewTable(families)
	if err != nil {
		panic(err)
	}
	return t
}

// Builds returns the table's known builds, in ascending order.
func (t *Table) Builds() []int64 { return append([]int64(nil), t.builds...) }

// Fallback is the build used when no better match exists: the newest one.
func (t *Table) Fallback() int64 { return t.builds[len(t.builds)-1] }

// Resolve resolves a requested build to a known one.
//
// An exact match wins. Otherwise, the greatest known build below the request
// is used, or the Fallback build if there is none. Every fallback is logged
// and counted.
func (t *Table) Resolve(build int64) Resolution {
	if f, ok := t.families[build]; ok {
		return Resolution{Family: f, Build: build, Requested: build}
	}

	resolved := t.Fallback()
	if i := sort.Search(len(t.builds), func(i int) bool { return t.builds[i] > build }); i > 0 {
		resolved = t.builds[i-1]
	}

	r := Resolution{
		Family:    t.families[resolved],
		Build:     resolved,
		Requested: build,
		FellBack:  true,
	}
	fallbacks.WithLabelValues(r.Family.Name()).Inc()
	logging.Must(t.Logger).Warnf("Unknown protocol build %d; decoding as build %d (%s).",
		build, resolved, r.Family.Name())
	return r
}

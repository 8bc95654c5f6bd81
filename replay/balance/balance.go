// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package balance looks up descriptive unit and ability metadata.
//
// Metadata is only used to enrich replay state for visualization and
// reporting. A missing entry is never an error: lookups substitute defaults.
package balance

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Color is an RGBA color.
type Color [4]uint8

func (c Color) String() string { return fmt.Sprintf("#%02x%02x%02x%02x", c[0], c[1], c[2], c[3]) }

// Unit is metadata for a unit type.
type Unit struct {
	// DisplayName is the human-readable name. If empty, the type name is used.
	DisplayName string `yaml:"name,omitempty"`
	// Radius is the unit's footprint radius, in map cells.
	Radius float32 `yaml:"radius,omitempty"`
	// Color is the unit's visualization color.
	Color *Color `yaml:"color,omitempty"`
}

// Ability is metadata for an ability.
type Ability struct {
	DisplayName string `yaml:"name,omitempty"`
}

// Overlay holds metadata entries that apply from a build onward.
type Overlay struct {
	Units     map[string]Unit    `yaml:"units,omitempty"`
	Abilities map[string]Ability `yaml:"abilities,omitempty"`
}

// Table is a loaded metadata table.
//
// A nil *Table is valid, and returns defaults for every lookup.
type Table struct {
	// DefaultRadius is the radius of units without an entry.
	DefaultRadius float32 `yaml:"default_radius"`
	// DefaultColor is the color of units without an entry.
	DefaultColor Color `yaml:"default_color"`

	// Overlay is the base set of entries, applying to every build.
	Overlay `yaml:",inline"`

	// Builds are per-build overlays. An overlay applies to its build and every
	// later one, and later overlays take precedence over earlier ones.
	Builds map[int64]Overlay `yaml:"builds,omitempty"`

	buildOrder []int64
}

// Built-in defaults, used when a table omits them and for a nil *Table.
const defaultRadius = 0.5

var defaultColor = Color{0x80, 0x80, 0x80, 0xff}

// Load parses a YAML table from r.
func Load(r io.Reader) (*Table, error) {
	t := Table{
		DefaultRadius: defaultRadius,
		DefaultColor:  defaultColor,
	}
	if err := yaml.NewDecoder(r).Decode(&t); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding balance table")
	}
	if t.DefaultRadius <= 0 {
		return nil, errors.Errorf("invalid default radius %v", t.DefaultRadius)
	}

	t.buildOrder = make([]int64, 0, len(t.Builds))
	for b := range t.Builds {
		t.buildOrder = append(t.buildOrder, b)
	}
	sort.Slice(t.buildOrder, func(i, j int) bool { return t.buildOrder[i] > t.buildOrder[j] })
	return &t, nil
}

// LoadFile parses the YAML table at path.
func LoadFile(path string) (*Table, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = fd.Close()
	}()

	t, err := Load(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", path)
	}
	return t, nil
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Load(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(err)
	}
	return t
}

// Unit returns the metadata for the named unit type at build, with defaults
// filled in.
func (t *Table) Unit(build int64, name string) Unit {
	u := Unit{DisplayName: name}
	if t == nil {
		u.Radius, u.Color = defaultRadius, &defaultColor
		return u
	}

	var (
		found Unit
		ok    bool
	)
	for _, b := range t.buildOrder {
		if b > build {
			continue
		}
		if found, ok = t.Builds[b].Units[name]; ok {
			break
		}
	}
	if !ok {
		found, ok = t.Units[name]
	}

	if found.DisplayName != "" {
		u.DisplayName = found.DisplayName
	}
	u.Radius = found.Radius
	if u.Radius <= 0 {
		u.Radius = t.DefaultRadius
	}
	u.Color = found.Color
	if u.Color == nil {
		c := t.DefaultColor
		u.Color = &c
	}
	return u
}

// AbilityName returns the display name of the named ability at build. If
// there is no entry, name itself is returned.
func (t *Table) AbilityName(build int64, name string) string {
	if t == nil {
		return name
	}
	for _, b := range t.buildOrder {
		if b > build {
			continue
		}
		if a, ok := t.Builds[b].Abilities[name]; ok && a.DisplayName != "" {
			return a.DisplayName
		}
	}
	if a, ok := t.Abilities[name]; ok && a.DisplayName != "" {
		return a.DisplayName
	}
	return name
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"bytes"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// MetadataVersion is the bundle format version written by this package.
	MetadataVersion = 1

	metadataFileName = "metadata.yaml"
	headerFileName   = "header.bin"
)

// SectorInfo describes one stored sector.
type SectorInfo struct {
	// Name is the sector's name within the replay.
	Name string `yaml:"name"`
	// File is the name of the sector file within the bundle.
	File string `yaml:"file"`
	// Compression is the compression applied to File.
	Compression Compression `yaml:"compression"`
	// Size is the decompressed size of the sector.
	Size int64 `yaml:"size"`
	// StoredSize is the size of File.
	StoredSize int64 `yaml:"stored_size"`
}

// Metadata describes a bundle.
type Metadata struct {
	Version int `yaml:"version"`

	// Name is the name of the replay that the bundle was built from.
	Name string `yaml:"name"`
	// Created is the time that the bundle was written.
	Created time.Time `yaml:"created"`

	// Build and BaseBuild are copied from the replay header.
	Build     int64 `yaml:"build"`
	BaseBuild int64 `yaml:"base_build"`
	// ElapsedGameLoops is copied from the replay header.
	ElapsedGameLoops int64 `yaml:"elapsed_game_loops"`
	// Duration is ElapsedGameLoops as readable game time.
	Duration string `yaml:"duration,omitempty"`

	// SHA256 is the hex SHA-256 of the header followed by each sector's
	// decompressed content, in Sectors order.
	SHA256 string `yaml:"sha256"`

	// Sectors are sorted by name.
	Sectors []*SectorInfo `yaml:"sectors"`
}

// Sector returns the SectorInfo for name, or nil if there is none.
func (md *Metadata) Sector(name string) *SectorInfo {
	for _, si := range md.Sectors {
		if si.Name == name {
			return si
		}
	}
	return nil
}

// LoadMetadata loads the metadata of the bundle at path into md.
func LoadMetadata(path string, md *Metadata) error {
	d, err := os.ReadFile(metadataPath(path))
	if err != nil {
		return errors.Wrap(err, "reading metadata")
	}

	dec := yaml.NewDecoder(bytes.NewReader(d))
	dec.KnownFields(true)
	if err := dec.Decode(md); err != nil {
		return errors.Wrap(err, "decoding metadata")
	}

	switch {
	case md.Version == 0:
		return errors.New("metadata has no version")
	case md.Version > MetadataVersion:
		return errors.Errorf("metadata version %d is newer than supported version %d", md.Version, MetadataVersion)
	}
	return nil
}

func saveMetadata(path string, md *Metadata) error {
	d, err := yaml.Marshal(md)
	if err != nil {
		return errors.Wrap(err, "encoding metadata")
	}
	return os.WriteFile(metadataPath(path), d, 0644)
}

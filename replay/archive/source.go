// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"os"

	"github.com/danjacques/gosc2replay/protocol/header"
	"github.com/danjacques/gosc2replay/replay"

	"github.com/pkg/errors"
)

// FileSource is a replay.Source made of loose, uncompressed files, as left
// by an external archive extractor.
type FileSource struct {
	// SourceName is the name returned by Name.
	SourceName string
	// HeaderPath is the path of the encoded header.
	HeaderPath string
	// SectorPaths maps sector names to file paths.
	SectorPaths map[string]string
}

var (
	_ replay.Source = (*FileSource)(nil)
	_ SectorFiler   = (*FileSource)(nil)
)

// Name implements replay.Source.
func (fs *FileSource) Name() string { return fs.SourceName }

// Header implements replay.Source.
func (fs *FileSource) Header() (*header.Header, error) {
	d, err := os.ReadFile(fs.HeaderPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	return header.Decode(d)
}

// Sector implements replay.Source.
func (fs *FileSource) Sector(name string) ([]byte, error) {
	path, ok := fs.SectorPath(name)
	if !ok {
		return nil, replay.ErrSectorNotFound
	}
	return os.ReadFile(path)
}

// SectorPath implements SectorFiler.
func (fs *FileSource) SectorPath(name string) (string, bool) {
	path, ok := fs.SectorPaths[name]
	return path, ok && path != ""
}

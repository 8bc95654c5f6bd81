// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package archive stores extracted replays as bundles.
//
// A bundle is a directory holding a YAML metadata file, the encoded replay
// header, and one file per event sector. Each sector file may be compressed.
// A Bundle is a replay.Source, so it can be iterated directly.
package archive

import (
	"os"
	"path/filepath"

	"github.com/danjacques/gosc2replay/protocol/header"
	"github.com/danjacques/gosc2replay/replay"

	"github.com/pkg/errors"
)

// Bundle is an opened bundle.
type Bundle struct {
	path string
	md   Metadata
}

var (
	_ replay.Source        = (*Bundle)(nil)
	_ replay.ContentHasher = (*Bundle)(nil)
)

// OpenBundle opens the bundle at path.
func OpenBundle(path string) (*Bundle, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, errors.Errorf("%q is not a directory", path)
	}

	b := Bundle{path: path}
	if err := LoadMetadata(path, &b.md); err != nil {
		return nil, errors.Wrapf(err, "loading bundle %q", path)
	}
	return &b, nil
}

// Path returns the bundle's directory.
func (b *Bundle) Path() string { return b.path }

// Metadata returns the bundle's metadata.
func (b *Bundle) Metadata() *Metadata { return &b.md }

// Name implements replay.Source.
func (b *Bundle) Name() string {
	if b.md.Name != "" {
		return b.md.Name
	}
	return filepath.Base(b.path)
}

// SHA256 implements replay.ContentHasher.
func (b *Bundle) SHA256() string { return b.md.SHA256 }

// Header implements replay.Source.
func (b *Bundle) Header() (*header.Header, error) {
	d, err := os.ReadFile(headerPath(b.path))
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	return header.Decode(d)
}

// Sector implements replay.Source.
func (b *Bundle) Sector(name string) ([]byte, error) {
	si := b.md.Sector(name)
	if si == nil {
		return nil, replay.ErrSectorNotFound
	}

	d, err := readSectorFile(filepath.Join(b.path, si.File), si.Compression, si.Size)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sector %q", name)
	}
	sectorBytes.WithLabelValues("read", si.Compression.String()).Add(float64(len(d)))
	return d, nil
}

// Verify recomputes the bundle's content hash and compares it with its
// metadata.
func (b *Bundle) Verify() error {
	hdrData, err := os.ReadFile(headerPath(b.path))
	if err != nil {
		return errors.Wrap(err, "reading header")
	}

	sectors := make(map[string][]byte, len(b.md.Sectors))
	for _, si := range b.md.Sectors {
		d, err := b.Sector(si.Name)
		if err != nil {
			return err
		}
		sectors[si.Name] = d
	}

	if sum := replay.ContentHash(hdrData, sectors); sum != b.md.SHA256 {
		return errors.Errorf("content hash mismatch: metadata has %s, content is %s", b.md.SHA256, sum)
	}
	return nil
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/danjacques/gosc2replay/replay"
	"github.com/danjacques/gosc2replay/support/fmtutil"
	"github.com/danjacques/gosc2replay/support/logging"
	"github.com/danjacques/gosc2replay/support/stagingdir"

	"github.com/pkg/errors"
)

// DefaultSectors are the sectors that Write stores when none are named.
var DefaultSectors = []string{replay.TrackerEventsSector, replay.GameEventsSector}

// SectorFiler is implemented by Sources whose sectors are plain files. Write
// links uncompressed sectors from those files instead of rewriting them.
type SectorFiler interface {
	SectorPath(name string) (string, bool)
}

// Write stores the header and sectors of src as a bundle at dest, replacing
// anything already there.
//
// If no sectors are named, DefaultSectors are stored. Sectors that src does
// not have are omitted. The bundle is built in a staging directory and only
// appears at dest once it is complete.
func (cfg *Config) Write(dest string, src replay.Source, sectors ...string) (*Metadata, error) {
	logger := logging.Must(cfg.Logger)

	hdr, err := src.Header()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	hdrData, err := hdr.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "encoding header")
	}

	if len(sectors) == 0 {
		sectors = DefaultSectors
	}
	names := append([]string(nil), sectors...)
	sort.Strings(names)

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = filepath.Dir(dest)
	}
	sd, err := stagingdir.New(tempDir, filepath.Base(dest))
	if err != nil {
		return nil, err
	}
	defer func() {
		// No-op once committed.
		_ = sd.Destroy()
	}()

	if err := os.WriteFile(sd.Path(headerFileName), hdrData, 0644); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}

	md := Metadata{
		Version:          MetadataVersion,
		Name:             src.Name(),
		Created:          cfg.now().UTC(),
		Build:            hdr.Version.Build,
		BaseBuild:        hdr.BaseBuild(),
		ElapsedGameLoops: hdr.ElapsedGameLoops,
		Duration:         fmtutil.Loop(hdr.ElapsedGameLoops).String(),
	}

	hashed := make(map[string][]byte, len(names))

	filer, _ := src.(SectorFiler)
	for i, name := range names {
		if i > 0 && names[i-1] == name {
			continue
		}

		data, err := src.Sector(name)
		switch errors.Cause(err) {
		case nil:
		case replay.ErrSectorNotFound:
			logger.Debugf("Replay %q has no %q sector; omitting it.", src.Name(), name)
			continue
		default:
			return nil, errors.Wrapf(err, "reading sector %q", name)
		}
		hashed[name] = data

		si := SectorInfo{
			Name:        name,
			File:        name + cfg.Compression.ext(),
			Compression: cfg.Compression,
			Size:        int64(len(data)),
		}
		if err := cfg.storeSector(sd.Path(si.File), &si, data, filer); err != nil {
			return nil, errors.Wrapf(err, "storing sector %q", name)
		}
		sectorBytes.WithLabelValues("write", si.Compression.String()).Add(float64(si.Size))
		md.Sectors = append(md.Sectors, &si)
	}
	md.SHA256 = replay.ContentHash(hdrData, hashed)

	if err := saveMetadata(sd.Path(), &md); err != nil {
		return nil, err
	}
	if err := sd.Commit(dest); err != nil {
		return nil, errors.Wrap(err, "publishing bundle")
	}
	bundlesWritten.Inc()
	logger.Infof("Wrote bundle %q for %q (%d sector(s), %s compression).",
		dest, md.Name, len(md.Sectors), cfg.Compression)
	return &md, nil
}

func (cfg *Config) storeSector(path string, si *SectorInfo, data []byte, filer SectorFiler) error {
	if si.Compression == CompressionNone && filer != nil {
		if srcPath, ok := filer.SectorPath(si.Name); ok {
			if err := hardLinkOrCopy(srcPath, path); err != nil {
				return err
			}
			si.StoredSize = si.Size
			return nil
		}
	}

	size, err := writeSectorFile(path, data, si.Compression, cfg.CompressionLevel)
	if err != nil {
		return err
	}
	si.StoredSize = size
	return nil
}

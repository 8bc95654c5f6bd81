// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Compression is the compression applied to a stored sector.
type Compression int

const (
	// CompressionNone stores a sector verbatim.
	CompressionNone Compression = iota
	// CompressionSnappy uses the snappy framing format.
	CompressionSnappy
	// CompressionGzip uses gzip.
	CompressionGzip
	// CompressionZstd uses zstandard.
	CompressionZstd
)

var compressionNames = [...]string{"none", "snappy", "gzip", "zstd"}

var compressionExts = [...]string{"", ".sz", ".gz", ".zst"}

func (c Compression) valid() bool { return c >= 0 && int(c) < len(compressionNames) }

func (c Compression) String() string {
	if c.valid() {
		return compressionNames[c]
	}
	return "unknown"
}

// ext returns the file extension of a sector stored with c.
func (c Compression) ext() string { return compressionExts[c] }

// ParseCompression returns the Compression named v.
func ParseCompression(v string) (Compression, error) {
	for i, name := range compressionNames {
		if name == v {
			return Compression(i), nil
		}
	}
	return 0, errors.Errorf("unknown compression type: %q", v)
}

// MarshalYAML implements yaml.Marshaler.
func (c Compression) MarshalYAML() (interface{}, error) {
	if !c.valid() {
		return nil, errors.Errorf("invalid compression %d", int(c))
	}
	return c.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Compression) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	v, err := ParseCompression(name)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Large buffer size (4MB), good for sector files.
const sectorBufferSize = 1024 * 1024 * 4

// sectorWriter writes a sector file through an optional compressor.
type sectorWriter struct {
	io.Writer

	closer  io.Closer
	bw      *bufio.Writer
	snappyW *snappy.Writer
	gzipW   *gzip.Writer
	zstdW   *zstd.Encoder
}

func newSectorWriter(base io.WriteCloser) *sectorWriter {
	w := sectorWriter{
		bw:     bufio.NewWriterSize(base, sectorBufferSize),
		closer: base,
	}
	w.Writer = w.bw
	return &w
}

// beginCompression routes subsequent writes through comp. A level of zero
// selects the compressor's default.
func (w *sectorWriter) beginCompression(comp Compression, level int) error {
	switch comp {
	case CompressionSnappy:
		w.snappyW = snappy.NewBufferedWriter(w.bw)
		w.Writer = w.snappyW

	case CompressionGzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		gw, err := gzip.NewWriterLevel(w.bw, level)
		if err != nil {
			return errors.Wrap(err, "creating gzip writer")
		}
		w.gzipW = gw
		w.Writer = w.gzipW

	case CompressionZstd:
		var opts []zstd.EOption
		if level != 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		zw, err := zstd.NewWriter(w.bw, opts...)
		if err != nil {
			return errors.Wrap(err, "creating zstd writer")
		}
		w.zstdW = zw
		w.Writer = w.zstdW

	case CompressionNone:
		w.Writer = w.bw

	default:
		return errors.Errorf("unknown compression: %s", comp)
	}
	return nil
}

func (w *sectorWriter) Close() (err error) {
	// Always close our underlying base.
	defer func() {
		closeErr := w.closer.Close()
		if err == nil {
			err = closeErr
		}
	}()

	switch {
	case w.snappyW != nil:
		err = w.snappyW.Close()
	case w.gzipW != nil:
		err = w.gzipW.Close()
	case w.zstdW != nil:
		err = w.zstdW.Close()
	}
	if err != nil {
		return
	}
	return w.bw.Flush()
}

// writeSectorFile writes data to path with compression comp, and returns the
// stored size.
func writeSectorFile(path string, data []byte, comp Compression, level int) (int64, error) {
	fd, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(err, "creating sector file")
	}

	w := newSectorWriter(fd)
	if err := w.beginCompression(comp, level); err != nil {
		_ = w.Close()
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return 0, errors.Wrap(err, "writing sector")
	}
	if err := w.Close(); err != nil {
		return 0, errors.Wrap(err, "closing sector file")
	}

	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// readSectorFile reads and decompresses the sector file at path. size is the
// expected decompressed size.
func readSectorFile(path string, comp Compression, size int64) ([]byte, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = fd.Close()
	}()
	br := bufio.NewReaderSize(fd, sectorBufferSize)

	var r io.Reader
	switch comp {
	case CompressionSnappy:
		r = snappy.NewReader(br)

	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "creating gzip reader")
		}
		defer func() {
			_ = gz.Close()
		}()
		r = gz

	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd reader")
		}
		defer zr.Close()
		r = zr

	case CompressionNone:
		r = br

	default:
		return nil, errors.Errorf("unknown compression: %s", comp)
	}

	var buf bytes.Buffer
	buf.Grow(int(size))
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.Wrapf(err, "reading %s sector", comp)
	}
	if int64(buf.Len()) != size {
		return nil, errors.Errorf("sector size mismatch: expected %d bytes, read %d", size, buf.Len())
	}
	return buf.Bytes(), nil
}

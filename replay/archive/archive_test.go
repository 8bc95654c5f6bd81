// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danjacques/gosc2replay/protocol/event"
	"github.com/danjacques/gosc2replay/protocol/protocoltest"
	"github.com/danjacques/gosc2replay/protocol/version"
	"github.com/danjacques/gosc2replay/replay"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestArchive(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Archive")
}

var _ = Describe("Bundle", func() {
	var (
		tdir string
		src  *replay.MemorySource
		cfg  Config
	)

	BeforeEach(func() {
		var err error
		tdir, err = os.MkdirTemp("", "archive_test")
		Expect(err).ToNot(HaveOccurred())

		ts := protocoltest.TrackerStream{Family: version.Modern}
		ts.Add(0, protocoltest.UnitBorn(1, "Marine", 1, 10, 10)).
			Add(10, &event.UnitDone{UnitTagIndex: 1, UnitTagRecycle: 1})
		gs := protocoltest.GameStream{Family: version.Modern}
		gs.Add(5, 1, protocoltest.Select(1))

		src = &replay.MemorySource{
			SourceName: "test.SC2Replay",
			HeaderData: protocoltest.HeaderBytes(80949, 2240),
			Sectors: map[string][]byte{
				replay.TrackerEventsSector: ts.Bytes(),
				replay.GameEventsSector:    gs.Bytes(),
			},
		}

		created := time.Date(2018, time.March, 1, 12, 0, 0, 0, time.UTC)
		cfg = Config{
			TempDir: tdir,
			NowFunc: func() time.Time { return created },
		}
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	DescribeTable("round-trips sectors",
		func(comp Compression) {
			cfg.Compression = comp
			dest := filepath.Join(tdir, "bundle")

			md, err := cfg.Write(dest, src)
			Expect(err).ToNot(HaveOccurred())
			Expect(md.Sectors).To(HaveLen(2))
			Expect(md.Sectors[0].Name).To(Equal(replay.GameEventsSector))
			Expect(md.Sectors[0].Compression).To(Equal(comp))

			b, err := OpenBundle(dest)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.Name()).To(Equal("test.SC2Replay"))
			Expect(b.Metadata().Build).To(Equal(int64(80949)))
			Expect(b.Metadata().Duration).To(Equal("1m 40s"))
			Expect(b.Metadata().Created).To(BeTemporally("==", cfg.now()))
			Expect(b.SHA256()).To(HaveLen(64))

			for name, data := range src.Sectors {
				Expect(b.Sector(name)).To(Equal(data))
			}
			hdr, err := b.Header()
			Expect(err).ToNot(HaveOccurred())
			Expect(hdr.BaseBuild()).To(Equal(int64(80949)))
			Expect(b.Verify()).To(Succeed())
		},
		Entry("none", CompressionNone),
		Entry("snappy", CompressionSnappy),
		Entry("gzip", CompressionGzip),
		Entry("zstd", CompressionZstd),
	)

	It("can be iterated", func() {
		dest := filepath.Join(tdir, "bundle")
		cfg.Compression = CompressionZstd
		_, err := cfg.Write(dest, src)
		Expect(err).ToNot(HaveOccurred())

		b, err := OpenBundle(dest)
		Expect(err).ToNot(HaveOccurred())

		it, err := replay.NewIterator(b, replay.Options{})
		Expect(err).ToNot(HaveOccurred())

		var types []string
		for {
			item, err := it.Next()
			if err == io.EOF {
				break
			}
			Expect(err).ToNot(HaveOccurred())
			types = append(types, item.EventType())
		}
		Expect(types).To(Equal([]string{"UnitBorn", "SelectionDelta", "UnitDone"}))
		Expect(it.State().SHA256).To(Equal(b.SHA256()))
	})

	It("hashes the same content whether it is bundled or not", func() {
		dest := filepath.Join(tdir, "bundle")
		md, err := cfg.Write(dest, src)
		Expect(err).ToNot(HaveOccurred())

		for _, opts := range []replay.Options{{}, {SkipGame: true}, {SkipTracker: true}} {
			it, err := replay.NewIterator(src, opts)
			Expect(err).ToNot(HaveOccurred())
			Expect(it.State().SHA256).To(Equal(md.SHA256))
		}
	})

	It("omits missing sectors", func() {
		delete(src.Sectors, replay.GameEventsSector)
		dest := filepath.Join(tdir, "bundle")
		md, err := cfg.Write(dest, src)
		Expect(err).ToNot(HaveOccurred())
		Expect(md.Sectors).To(HaveLen(1))

		b, err := OpenBundle(dest)
		Expect(err).ToNot(HaveOccurred())
		_, err = b.Sector(replay.GameEventsSector)
		Expect(err).To(Equal(replay.ErrSectorNotFound))
	})

	It("replaces an existing bundle", func() {
		dest := filepath.Join(tdir, "bundle")
		_, err := cfg.Write(dest, src)
		Expect(err).ToNot(HaveOccurred())

		src.SourceName = "second.SC2Replay"
		_, err = cfg.Write(dest, src)
		Expect(err).ToNot(HaveOccurred())

		b, err := OpenBundle(dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(b.Name()).To(Equal("second.SC2Replay"))
	})

	It("leaves nothing behind when the source fails", func() {
		dest := filepath.Join(tdir, "bundle")
		src.HeaderData = []byte("garbage")
		_, err := cfg.Write(dest, src)
		Expect(err).To(HaveOccurred())
		Expect(dest).ToNot(BeADirectory())
	})

	It("detects altered content", func() {
		dest := filepath.Join(tdir, "bundle")
		_, err := cfg.Write(dest, src)
		Expect(err).ToNot(HaveOccurred())

		path := filepath.Join(dest, replay.TrackerEventsSector)
		d, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		d[0] ^= 0xFF
		Expect(os.WriteFile(path, d, 0644)).To(Succeed())

		b, err := OpenBundle(dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(b.Verify()).To(MatchError(ContainSubstring("content hash mismatch")))
	})

	It("rejects metadata from a newer format", func() {
		dest := filepath.Join(tdir, "bundle")
		_, err := cfg.Write(dest, src)
		Expect(err).ToNot(HaveOccurred())

		d, err := os.ReadFile(metadataPath(dest))
		Expect(err).ToNot(HaveOccurred())
		d = []byte(strings.Replace(string(d), "version: 1", "version: 99", 1))
		Expect(os.WriteFile(metadataPath(dest), d, 0644)).To(Succeed())

		_, err = OpenBundle(dest)
		Expect(err).To(MatchError(ContainSubstring("newer than supported")))
	})

	It("rejects a path that is not a bundle", func() {
		_, err := OpenBundle(filepath.Join(tdir, "missing"))
		Expect(err).To(HaveOccurred())

		_, err = OpenBundle(tdir)
		Expect(err).To(HaveOccurred())
	})

	It("links uncompressed sectors from a FileSource", func() {
		raw := filepath.Join(tdir, "raw")
		Expect(os.Mkdir(raw, 0755)).To(Succeed())

		fs := FileSource{
			SourceName:  "loose.SC2Replay",
			HeaderPath:  filepath.Join(raw, "header"),
			SectorPaths: map[string]string{},
		}
		Expect(os.WriteFile(fs.HeaderPath, src.HeaderData, 0644)).To(Succeed())
		for name, data := range src.Sectors {
			path := filepath.Join(raw, name)
			Expect(os.WriteFile(path, data, 0644)).To(Succeed())
			fs.SectorPaths[name] = path
		}

		dest := filepath.Join(tdir, "bundle")
		md, err := cfg.Write(dest, &fs)
		Expect(err).ToNot(HaveOccurred())
		Expect(md.Sectors[1].StoredSize).To(Equal(int64(len(src.Sectors[replay.TrackerEventsSector]))))

		b, err := OpenBundle(dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(b.Sector(replay.TrackerEventsSector)).To(Equal(src.Sectors[replay.TrackerEventsSector]))
		Expect(b.Verify()).To(Succeed())
	})
})

var _ = Describe("CompressionFlag", func() {
	It("parses compression names", func() {
		var cf CompressionFlag
		Expect(cf.Set("zstd")).To(Succeed())
		Expect(cf.Value()).To(Equal(CompressionZstd))
		Expect(cf.String()).To(Equal("zstd"))

		Expect(cf.Set("lzma")).ToNot(Succeed())
		Expect(CompressionFlagValues()).To(Equal("none, snappy, gzip, zstd"))
	})
})

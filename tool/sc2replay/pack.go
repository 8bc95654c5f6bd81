// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package sc2replay

import (
	"fmt"
	"path/filepath"

	"github.com/danjacques/gosc2replay/replay"
	"github.com/danjacques/gosc2replay/replay/archive"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) packCommand() *cobra.Command {
	var (
		cfg         archive.Config
		compression = archive.CompressionFlag(archive.CompressionSnappy)
		name        string
		headerPath  string
		trackerPath string
		gamePath    string
	)

	cmd := &cobra.Command{
		Use:   "pack DEST",
		Short: "Build a bundle from extracted replay files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := args[0]
			if name == "" {
				name = filepath.Base(dest)
			}

			src := archive.FileSource{
				SourceName: name,
				HeaderPath: headerPath,
				SectorPaths: map[string]string{
					replay.TrackerEventsSector: trackerPath,
					replay.GameEventsSector:    gamePath,
				},
			}

			cfg.Compression = compression.Value()
			cfg.Logger = a.logger
			md, err := cfg.Write(dest, &src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: build %d, %s of game time\n", dest, md.BaseBuild, md.Duration)
			for _, si := range md.Sectors {
				fmt.Fprintf(out, "  %s: %s (%s stored, %s)\n", si.Name,
					humanize.Bytes(uint64(si.Size)), humanize.Bytes(uint64(si.StoredSize)), si.Compression)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.Var(&compression, "compression", "Sector compression: "+archive.CompressionFlagValues()+".")
	fs.IntVar(&cfg.CompressionLevel, "level", 0, "Compression level. Zero is the compressor's default.")
	fs.StringVar(&cfg.TempDir, "temp-dir", "", "Directory to stage the bundle in. Defaults to the output directory.")
	fs.StringVar(&name, "name", "", "Replay name. Defaults to the bundle's base name.")
	fs.StringVar(&headerPath, "header", "", "Path of the extracted replay header.")
	fs.StringVar(&trackerPath, "tracker", "", "Path of the extracted tracker events.")
	fs.StringVar(&gamePath, "game", "", "Path of the extracted game events.")
	_ = cmd.MarkFlagRequired("header")
	return cmd
}

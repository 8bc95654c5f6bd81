// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package sc2replay

import (
	"fmt"
	"os"

	"github.com/danjacques/gosc2replay/protocol/header"
	"github.com/danjacques/gosc2replay/protocol/version"
	"github.com/danjacques/gosc2replay/replay/archive"
	"github.com/danjacques/gosc2replay/support/fmtutil"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// loadHeader reads the header of the bundle at path, or the header file at
// path.
func loadHeader(path string) (*header.Header, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		b, err := archive.OpenBundle(path)
		if err != nil {
			return nil, err
		}
		return b.Header()
	}

	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return header.Decode(d)
}

func (a *app) headerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "header PATH",
		Short: "Print a replay header, from a bundle or an extracted header file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdr, err := loadHeader(args[0])
			if err != nil {
				return errors.Wrap(err, "loading header")
			}

			table := version.DefaultTable()
			table.Logger = a.logger
			res := table.Resolve(hdr.BaseBuild())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:    %s\n", &hdr.Version)
			fmt.Fprintf(out, "base build: %d\n", hdr.BaseBuild())
			fmt.Fprintf(out, "protocol:   %s\n", &res)
			fmt.Fprintf(out, "type:       %d\n", hdr.Type)
			fmt.Fprintf(out, "game loops: %d (%s)\n", hdr.ElapsedGameLoops, fmtutil.Loop(hdr.ElapsedGameLoops))
			return nil
		},
	}
}

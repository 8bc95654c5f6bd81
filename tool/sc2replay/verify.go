// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package sc2replay

import (
	"fmt"

	"github.com/danjacques/gosc2replay/replay/archive"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify BUNDLE...",
		Short: "Check bundle contents against their recorded hashes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				b, err := archive.OpenBundle(path)
				if err == nil {
					err = b.Verify()
				}
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s: FAILED: %s\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s: OK %s\n", path, b.SHA256())
			}

			if failed > 0 {
				return errors.Errorf("%d bundle(s) failed verification", failed)
			}
			return nil
		},
	}
}

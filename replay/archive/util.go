// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"io"
	"os"
	"path/filepath"
)

func metadataPath(bundle string) string { return filepath.Join(bundle, metadataFileName) }

func headerPath(bundle string) string { return filepath.Join(bundle, headerFileName) }

// hardLinkOrCopy attempts to make dest the same file as src.
//
// Ideally, it will use a hard link. If that fails, it will fall back to
// byte-by-byte copying.
func hardLinkOrCopy(src, dest string) error {
	if err := os.Link(src, dest); err == nil {
		return nil
	}
	return copyFileByteByByte(src, dest)
}

func copyFileByteByByte(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if out != nil {
			_ = out.Close()
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}
	out = nil // Don't double-close in defer.
	return nil
}

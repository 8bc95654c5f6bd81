// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stagingdir assembles a directory off to the side and swaps it into
// its destination once it is complete, so readers of the destination never
// observe a partially-written directory.
package stagingdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrClosed is returned when a D is used after it was committed or
// destroyed.
var ErrClosed = errors.New("staging directory is closed")

// CommitError is returned by Commit when the staged directory could not be
// moved into place. The staging directory is still open, and should be
// destroyed by the caller.
type CommitError struct {
	// Dest is the destination that Commit was targeting.
	Dest string
	// Restored is true if a directory that previously existed at Dest was
	// moved aside and then put back.
	Restored bool
	// Err is the underlying filesystem error.
	Err error
}

func (e *CommitError) Error() string {
	msg := fmt.Sprintf("committing staging directory to %q: %s", e.Dest, e.Err)
	if e.Restored {
		msg += " (previous contents restored)"
	}
	return msg
}

// Cause implements errors' causer interface.
func (e *CommitError) Cause() error { return e.Err }

// IsCommitError returns true if the cause of err is a CommitError.
func IsCommitError(err error) bool {
	for err != nil {
		if _, ok := err.(*CommitError); ok {
			return true
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// D is an open staging directory.
type D struct {
	root string
}

// New creates a staging directory underneath of tempDir, named after name.
//
// If tempDir is empty, the system temporary directory is used. tempDir should
// be on the same filesystem as the eventual destination, or Commit will fail.
func New(tempDir, name string) (*D, error) {
	root, err := os.MkdirTemp(tempDir, name+".staging-")
	if err != nil {
		return nil, errors.Wrap(err, "creating staging directory")
	}
	return &D{root: root}, nil
}

// Path joins elem onto the staging directory. With no elements, it returns
// the staging directory itself.
//
// Path panics if sd is closed.
func (sd *D) Path(elem ...string) string {
	if sd.root == "" {
		panic(ErrClosed)
	}
	return filepath.Join(append([]string{sd.root}, elem...)...)
}

// Destroy deletes the staging directory and its contents.
//
// Destroy is a no-op if sd is already closed, so it can be deferred
// unconditionally ahead of Commit.
func (sd *D) Destroy() error {
	if sd.root == "" {
		return nil
	}
	if err := os.RemoveAll(sd.root); err != nil {
		return errors.Wrapf(err, "removing staging directory %q", sd.root)
	}
	sd.root = ""
	return nil
}

// Commit moves the staging directory to dest and closes sd.
//
// A directory that already exists at dest is replaced. It is first moved
// aside next to the staging directory; if the staged directory then cannot
// be moved into place, the previous one is put back and a CommitError
// reports whether that succeeded.
func (sd *D) Commit(dest string) error {
	if sd.root == "" {
		return ErrClosed
	}

	var aside string
	switch _, err := os.Lstat(dest); {
	case err == nil:
		parked, err := os.MkdirTemp(filepath.Dir(sd.root), filepath.Base(dest)+".previous-")
		if err != nil {
			return &CommitError{Dest: dest, Err: err}
		}
		defer func() {
			// A copy of the previous contents that cannot be purged is left in
			// the temporary directory.
			_ = os.RemoveAll(parked)
		}()

		aside = filepath.Join(parked, filepath.Base(dest))
		if err := os.Rename(dest, aside); err != nil {
			return &CommitError{Dest: dest, Err: err}
		}

	case !os.IsNotExist(err):
		return &CommitError{Dest: dest, Err: err}
	}

	if err := os.Rename(sd.root, dest); err != nil {
		ce := CommitError{Dest: dest, Err: err}
		if aside != "" {
			ce.Restored = os.Rename(aside, dest) == nil
		}
		return &ce
	}
	sd.root = ""
	return nil
}

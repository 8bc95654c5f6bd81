// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

import (
	"fmt"

	"github.com/danjacques/gosc2replay/protocol/header"

	"github.com/pkg/errors"
)

// Sector names.
const (
	// TrackerEventsSector holds the tracker event stream.
	TrackerEventsSector = "replay.tracker.events"
	// GameEventsSector holds the game event stream.
	GameEventsSector = "replay.game.events"
)

// ErrSectorNotFound is returned by a Source that does not contain a sector.
// A missing event sector is treated as an empty stream.
var ErrSectorNotFound = errors.New("sector not found")

// Source provides the raw contents of an extracted replay.
type Source interface {
	// Name returns the replay's name, typically its file name.
	Name() string
	// Header returns the decoded replay header.
	Header() (*header.Header, error)
	// Sector returns the raw, decompressed contents of the named sector. If
	// the sector does not exist, Sector returns ErrSectorNotFound.
	Sector(name string) ([]byte, error)
}

// ContentHasher is implemented by Sources that know their content hash.
type ContentHasher interface {
	// SHA256 returns the hex SHA-256 of the replay's content.
	SHA256() string
}

// MemorySource is a Source backed by in-memory data.
type MemorySource struct {
	// SourceName is the name returned by Name.
	SourceName string
	// HeaderData is the encoded header.
	HeaderData []byte
	// Sectors maps sector names to their contents.
	Sectors map[string][]byte
}

var _ Source = (*MemorySource)(nil)

// Name implements Source.
func (ms *MemorySource) Name() string { return ms.SourceName }

// Header implements Source.
func (ms *MemorySource) Header() (*header.Header, error) { return header.Decode(ms.HeaderData) }

// Sector implements Source.
func (ms *MemorySource) Sector(name string) ([]byte, error) {
	if d, ok := ms.Sectors[name]; ok {
		return d, nil
	}
	return nil, ErrSectorNotFound
}

// FatalError is an error that prevents a replay from being iterated at all.
//
// Errors within a stream never produce a FatalError. They end that stream,
// and are reported by Iterator.StreamErrors.
type FatalError struct {
	// Name is the name of the replay.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("replay %q: %s", e.Name, e.Err) }

// Unwrap returns the underlying error.
func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal returns true if err, or its cause, is a FatalError.
func IsFatal(err error) bool {
	_, ok := errors.Cause(err).(*FatalError)
	return ok
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ContentHash returns the hex SHA-256 that identifies a replay's content: its
// encoded header, followed by each sector in ascending name order.
//
// Bundles record this hash, and Iterators compute it for Sources that are not
// ContentHashers, so one replay hashes the same however it is read.
func ContentHash(header []byte, sectors map[string][]byte) string {
	names := make([]string, 0, len(sectors))
	for name := range sectors {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	_, _ = h.Write(header)
	for _, name := range names {
		_, _ = h.Write(sectors[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

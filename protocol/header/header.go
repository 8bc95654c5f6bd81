// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package header decodes the replay header, which identifies the protocol
// build that the rest of the replay is encoded with.
package header

import (
	"bytes"
	"fmt"

	"github.com/danjacques/gosc2replay/protocol/wire"
	"github.com/danjacques/gosc2replay/support/cursor"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Magic is the user data block magic.
var Magic = [4]byte{'M', 'P', 'Q', 0x1b}

// Signature is the expected header signature.
const Signature = "StarCraft II replay\x1b11"

// UserData is the fixed-layout block that precedes the archive. It locates
// the encoded Header.
//
//	char     magic[4];             // "MPQ\x1b"
//	uint32_t user_data_size;
//	uint32_t header_offset;
//	uint32_t user_data_header_size;
type UserData struct {
	Magic              [4]byte
	UserDataSize       uint32 `struc:",little"`
	HeaderOffset       uint32 `struc:",little"`
	UserDataHeaderSize uint32 `struc:",little"`
}

// userDataLen is the packed size of UserData.
const userDataLen = 16

// Version identifies the build that wrote the replay.
type Version struct {
	Flags     int64 `json:"flags" yaml:"flags"`
	Major     int64 `json:"major" yaml:"major"`
	Minor     int64 `json:"minor" yaml:"minor"`
	Revision  int64 `json:"revision" yaml:"revision"`
	Build     int64 `json:"build" yaml:"build"`
	BaseBuild int64 `json:"base_build" yaml:"base_build"`
}

func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Revision, v.Build)
}

// Header is the decoded replay header.
type Header struct {
	Signature        string  `json:"signature" yaml:"signature"`
	Version          Version `json:"version" yaml:"version"`
	Type             int64   `json:"type" yaml:"type"`
	ElapsedGameLoops int64   `json:"elapsed_game_loops" yaml:"elapsed_game_loops"`
	UseScaledTime    bool    `json:"use_scaled_time" yaml:"use_scaled_time"`
}

// BaseBuild is the protocol build that the replay's events are encoded with.
func (h *Header) BaseBuild() int64 { return h.Version.BaseBuild }

var (
	headerRequired = []wire.Field{
		{Tag: 0, Name: "m_signature"},
		{Tag: 1, Name: "m_version"},
		{Tag: 3, Name: "m_elapsedGameLoops"},
	}
	versionRequired = []wire.Field{{Tag: 5, Name: "m_baseBuild"}}
)

// Decode decodes a Header.
//
// data may either begin with a UserData block, in which case the header is
// read from the block's contents, or be the bare encoded header.
func Decode(data []byte) (*Header, error) {
	if bytes.HasPrefix(data, Magic[:]) {
		var ud UserData
		if err := struc.Unpack(bytes.NewReader(data), &ud); err != nil {
			return nil, errors.Wrap(err, "could not unpack user data")
		}

		end := userDataLen + int(ud.UserDataHeaderSize)
		if end > len(data) {
			return nil, errors.Errorf("user data header size %d exceeds available %d bytes",
				ud.UserDataHeaderSize, len(data)-userDataLen)
		}
		data = data[userDataLen:end]
	}

	var h Header
	c, err := decodeHeader(cursor.NewBytes(data), &h)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode header")
	}
	if !c.Done() {
		return nil, errors.Errorf("%d trailing bytes after header", c.Remaining())
	}
	if h.Signature != Signature {
		return nil, errors.Errorf("unexpected signature %q", h.Signature)
	}
	return &h, nil
}

func decodeHeader(c cursor.Bytes, h *Header) (cursor.Bytes, error) {
	var seen wire.FieldSet
	nc, err := wire.DecodeStruct(c, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var err error
		switch tag {
		case 0:
			var v []byte
			c, v, err = wire.Blob(c)
			h.Signature = string(v)
		case 1:
			c, err = decodeVersion(c, &h.Version)
		case 2:
			c, h.Type, err = wire.Int(c)
		case 3:
			c, h.ElapsedGameLoops, err = wire.Int(c)
		case 4:
			c, h.UseScaledTime, err = wire.Bool(c)
		default:
			return c, false, nil
		}
		if err == nil {
			seen.Add(tag)
		}
		return c, true, err
	})
	if err != nil {
		return c, err
	}
	return nc, seen.Require("Header", headerRequired...)
}

func decodeVersion(c cursor.Bytes, v *Version) (cursor.Bytes, error) {
	var seen wire.FieldSet
	nc, err := wire.DecodeStruct(c, func(c cursor.Bytes, tag int64) (cursor.Bytes, bool, error) {
		var dst *int64
		switch tag {
		case 0:
			dst = &v.Flags
		case 1:
			dst = &v.Major
		case 2:
			dst = &v.Minor
		case 3:
			dst = &v.Revision
		case 4:
			dst = &v.Build
		case 5:
			dst = &v.BaseBuild
		default:
			return c, false, nil
		}

		c, val, err := wire.Int(c)
		if err == nil {
			*dst = val
			seen.Add(tag)
		}
		return c, true, err
	})
	if err != nil {
		return c, errors.Wrap(err, "version")
	}
	return nc, seen.Require("Version", versionRequired...)
}

// Encode encodes h, preceded by a UserData block.
func (h *Header) Encode() ([]byte, error) {
	var w wire.VersionedWriter
	w.Struct(5).
		Field(0).Blob([]byte(h.Signature)).
		Field(1).Struct(6).
		Field(0).Int(h.Version.Flags).
		Field(1).Int(h.Version.Major).
		Field(2).Int(h.Version.Minor).
		Field(3).Int(h.Version.Revision).
		Field(4).Int(h.Version.Build).
		Field(5).Int(h.Version.BaseBuild).
		Field(2).Int(h.Type).
		Field(3).Int(h.ElapsedGameLoops).
		Field(4).Bool(h.UseScaledTime)
	content := w.Bytes()

	ud := UserData{
		Magic:              Magic,
		UserDataSize:       uint32(len(content)),
		HeaderOffset:       uint32(userDataLen + len(content)),
		UserDataHeaderSize: uint32(len(content)),
	}

	var buf bytes.Buffer
	buf.Grow(userDataLen + len(content))
	if err := struc.Pack(&buf, &ud); err != nil {
		return nil, errors.Wrap(err, "could not pack user data")
	}
	buf.Write(content)
	return buf.Bytes(), nil
}

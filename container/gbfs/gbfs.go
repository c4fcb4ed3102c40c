/*
NAME
  gbfs.go

DESCRIPTION
  gbfs.go implements the GBFS archive format a packaged GBA ROM carries its
  movie.gbm/movie.gbs pair in: a fixed 16-byte magic, a header giving the
  archive's total length and directory location, and a flat directory of
  {name, length, offset} entries (§6 "Container").

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gbfs reads and writes the GBFS archive format used to bundle a
// GBM/GBS pair (and, on real hardware, the player ROM) into one file.
package gbfs

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

const (
	magicLen   = 16
	nameLen    = 24
	headerSize = 16 + 4 + 2 + 2 + 8 // magic, total_len, dir_off, dir_nmemb, reserved
	entrySize  = nameLen + 4 + 4    // name, len, data_offset
)

var magic = []byte("PinEightGBFS\r\n\x1a\n")

// Entry describes one file stored in a GBFS archive.
type Entry struct {
	Name       string
	Len        uint32
	DataOffset uint32
}

// Archive is a parsed, read-only view over a GBFS byte slice.
type Archive struct {
	data    []byte
	entries []Entry
}

// Open parses a GBFS archive from data, validating its magic and
// directory bounds.
func Open(data []byte) (*Archive, error) {
	if len(data) < headerSize {
		return nil, errors.New("gbfs: data shorter than header")
	}
	if !bytes.Equal(data[:magicLen], magic) {
		return nil, errors.New("gbfs: bad magic")
	}
	totalLen := le32(data[16:20])
	dirOff := le16(data[20:22])
	dirNmemb := le16(data[22:24])
	if int(totalLen) > len(data) {
		return nil, errors.Errorf("gbfs: total_len %d exceeds data length %d", totalLen, len(data))
	}

	entries := make([]Entry, dirNmemb)
	for i := range entries {
		off := int(dirOff) + i*entrySize
		if off+entrySize > len(data) {
			return nil, errors.New("gbfs: directory entry out of bounds")
		}
		name := string(bytes.TrimRight(data[off:off+nameLen], "\x00"))
		entries[i] = Entry{
			Name:       name,
			Len:        le32(data[off+nameLen : off+nameLen+4]),
			DataOffset: le32(data[off+nameLen+4 : off+nameLen+8]),
		}
	}
	return &Archive{data: data[:totalLen], entries: entries}, nil
}

// Entries returns the archive's directory.
func (a *Archive) Entries() []Entry { return a.entries }

// Get returns the bytes of the named entry, or ok=false if it isn't
// present (mirrors media_source_load_file's by-name lookup).
func (a *Archive) Get(name string) (data []byte, ok bool) {
	for _, e := range a.entries {
		if e.Name == name {
			return a.data[e.DataOffset : e.DataOffset+e.Len], true
		}
	}
	return nil, false
}

// FindByExtension returns the first entry whose name ends with ext
// (case-insensitive, with or without a leading dot), mirroring
// media_source_find_gbs/find_gbm's scan-the-directory behavior.
func (a *Archive) FindByExtension(ext string) (data []byte, name string, ok bool) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, e := range a.entries {
		if strings.HasSuffix(strings.ToLower(e.Name), "."+ext) {
			return a.data[e.DataOffset : e.DataOffset+e.Len], e.Name, true
		}
	}
	return nil, "", false
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

/*
NAME
  writer.go

DESCRIPTION
  writer.go builds a GBFS archive from a set of named byte buffers,
  4-byte-aligning each region the way the reference packager does
  (§6 "Container").

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package gbfs

import "github.com/pkg/errors"

// File is one named input to Build.
type File struct {
	Name string
	Data []byte
}

func align4(x uint32) uint32 { return (x + 3) &^ 3 }

// Build packages files into a single GBFS archive, in the order given.
func Build(files []File) ([]byte, error) {
	if len(files) == 0 {
		return nil, errors.New("gbfs: no files to package")
	}
	for _, f := range files {
		if len(f.Name) >= nameLen {
			return nil, errors.Errorf("gbfs: entry name %q exceeds %d bytes", f.Name, nameLen-1)
		}
	}

	dirSize := uint32(len(files)) * entrySize
	dataStart := align4(headerSize + dirSize)

	offsets := make([]uint32, len(files))
	cursor := dataStart
	for i, f := range files {
		offsets[i] = cursor
		cursor = align4(cursor + uint32(len(f.Data)))
	}
	total := cursor

	out := make([]byte, total)
	copy(out[:magicLen], magic)
	putLE32(out[16:20], total)
	putLE16(out[20:22], uint16(headerSize))
	putLE16(out[22:24], uint16(len(files)))

	for i, f := range files {
		off := headerSize + i*entrySize
		copy(out[off:off+nameLen], f.Name)
		putLE32(out[off+nameLen:off+nameLen+4], uint32(len(f.Data)))
		putLE32(out[off+nameLen+4:off+nameLen+8], offsets[i])
		copy(out[offsets[i]:offsets[i]+uint32(len(f.Data))], f.Data)
	}

	return out, nil
}

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

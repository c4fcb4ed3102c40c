/*
NAME
  header.go

DESCRIPTION
  header.go parses the 512-byte GBM file header that precedes the first
  frame record: a 4-byte identifier, a format-version byte selecting the
  flag-stream XOR key, and reserved bytes the decoder doesn't need (§3
  GbmHeader).

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package video

import "github.com/pkg/errors"

// HeaderSize is the size in bytes of a GBM file's fixed header; the
// first frame record starts immediately after it.
const HeaderSize = 512

var identifier = [4]byte{'G', 'B', 'A', 'M'}

// FileHeader is the parsed form of a GBM file's 512-byte header.
type FileHeader struct {
	Version Version
}

// ParseFileHeader validates data's identifier and reads the version byte
// that selects the flag-stream XOR key for the rest of the file.
func ParseFileHeader(data []byte) (FileHeader, error) {
	if len(data) < HeaderSize {
		return FileHeader{}, errors.New("video: data shorter than GBM header")
	}
	if data[0] != identifier[0] || data[1] != identifier[1] || data[2] != identifier[2] || data[3] != identifier[3] {
		return FileHeader{}, errors.New("video: bad GBM identifier")
	}
	v := Version(data[4])
	if _, err := v.xorKey(); err != nil {
		return FileHeader{}, err
	}
	return FileHeader{Version: v}, nil
}

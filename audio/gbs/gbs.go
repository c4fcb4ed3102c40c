/*
NAME
  gbs.go

DESCRIPTION
  gbs.go implements the GBS container header and mode table: five ADPCM
  flavors sharing a block-synchronized predictor/step-index state, each
  with its own sample rate, channel count, block size and header size
  (§3, §4.5).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gbs implements the GBS audio container: its header, its five
// ADPCM block modes and the block-walking decoder that drains them into
// caller-supplied PCM buffers.
package gbs

import "github.com/pkg/errors"

// HeaderSize is the fixed size, in bytes, of a GBS file's leading header.
const HeaderSize = 512

var identifier = [4]byte{'G', 'B', 'A', 'L'}
var marker = [4]byte{'M', 'U', 'S', 'I'}

// Mode selects one of the five GBS ADPCM flavors.
type Mode uint32

const (
	ModeStereo4Bit Mode = iota
	ModeMono3Bit
	ModeMono4Bit
	ModeMono2Bit
	ModeMono2BitSmall
	modeCount
)

// modeInfo describes one mode's fixed framing parameters (§3 mode table).
type modeInfo struct {
	name       string
	sampleRate uint32
	channels   int
	blockSize  uint32
	headerSize uint32
}

var modeTable = [modeCount]modeInfo{
	ModeStereo4Bit:    {"stereo 4-bit IMA", 22050, 2, 1024, 8},
	ModeMono3Bit:      {"mono 3-bit", 11025, 1, 1024, 4},
	ModeMono4Bit:      {"mono 4-bit IMA", 22050, 1, 512, 4},
	ModeMono2Bit:      {"mono 2-bit", 22050, 1, 512, 4},
	ModeMono2BitSmall: {"mono 2-bit small", 22050, 1, 256, 4},
}

// info returns mode's framing parameters, or an error if mode is outside
// 0..4 (the Unsupported error case, §7).
func (m Mode) info() (modeInfo, error) {
	if m >= modeCount {
		return modeInfo{}, errors.Errorf("gbs: unsupported mode %d", m)
	}
	return modeTable[m], nil
}

func (m Mode) String() string {
	info, err := m.info()
	if err != nil {
		return "invalid"
	}
	return info.name
}

// Header is the 512-byte GBS file header: an identifier, a marker and the
// mode selector (§3 GbsHeader).
type Header struct {
	Mode Mode
}

// ParseHeader validates and parses the 512-byte header at the start of
// data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errors.Errorf("gbs: file shorter than header size %d", HeaderSize)
	}
	if [4]byte{data[0], data[1], data[2], data[3]} != identifier {
		return Header{}, errors.New("gbs: missing GBAL identifier")
	}
	if [4]byte{data[4], data[5], data[6], data[7]} != marker {
		return Header{}, errors.New("gbs: missing MUSI marker")
	}
	mode := Mode(uint32(data[8]) | uint32(data[9])<<8 | uint32(data[10])<<16 | uint32(data[11])<<24)
	if _, err := mode.info(); err != nil {
		return Header{}, err
	}
	return Header{Mode: mode}, nil
}

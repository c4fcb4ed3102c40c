/*
NAME
  pcm.go

DESCRIPTION
  pcm.go contains the buffer types the playback driver packs decoded GBS
  samples into before handing them to an AudioSink.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pcm provides the buffer types used to move decoded PCM audio
// from the playback driver to its audio sinks.
package pcm

import "github.com/pkg/errors"

// SampleFormat is the format that a PCM Buffer's samples can be in.
type SampleFormat int

// Used to represent an unknown format.
const Unknown SampleFormat = -1

// Sample formats that we use. GBS decodes to signed 8-bit PCM (§4.4.5 of
// the format); S16_LE is kept for sinks (e.g. WAV export) that widen it.
const (
	S8 SampleFormat = iota
	S16_LE
)

// BufferFormat contains the format for a PCM Buffer.
type BufferFormat struct {
	SFormat  SampleFormat
	Rate     uint
	Channels uint
}

// Buffer contains a buffer of PCM data and the format that it is in.
type Buffer struct {
	Format BufferFormat
	Data   []byte
}

// String returns the string representation of a SampleFormat.
func (f SampleFormat) String() string {
	switch f {
	case S8:
		return "S8"
	case S16_LE:
		return "S16_LE"
	default:
		return "Unknown"
	}
}

// SFFromString takes a string representing a sample format and returns the corresponding SampleFormat.
func SFFromString(s string) (SampleFormat, error) {
	switch s {
	case "S8":
		return S8, nil
	case "S16_LE":
		return S16_LE, nil
	default:
		return Unknown, errors.Errorf("unknown sample format (%s)", s)
	}
}

/*
NAME
  sinks.go

DESCRIPTION
  sinks.go defines the output sinks a Driver writes decoded frames and
  samples to, and provides a WAV file sink and a raw RGB555 frame sink.
  The ALSA sink lives in sink_alsa.go, gated behind a linux build tag
  since its yobert/alsa dependency is linux-only, mirroring device/alsa's
  platform-specific negotiation.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package playback

import (
	"encoding/binary"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/tinyreel/gbmplayer/codec/pcm"
	"github.com/tinyreel/gbmplayer/video"
)

// AudioSink receives one decoded PCM chunk at a time, already packed
// into a pcm.Buffer (signed 8-bit, interleaved when Format.Channels == 2).
type AudioSink interface {
	WriteSamples(buf pcm.Buffer) error
	Close() error
}

// VideoSink receives one decoded frame at a time, RGB555 pixels in
// row-major order.
type VideoSink interface {
	WriteFrame(pixels []uint16) error
	Close() error
}

// WavSink widens GBS's signed 8-bit PCM to 16-bit and writes a standard
// WAV file via go-audio/wav, for offline inspection of a decoded stream.
type WavSink struct {
	enc *wav.Encoder
	buf *audio.IntBuffer
}

// NewWavSink opens a WAV encoder over w for audio sampled at rate Hz with
// the given channel count.
func NewWavSink(w io.WriteSeeker, rate int, channels int) *WavSink {
	const bitDepth = 16
	return &WavSink{
		enc: wav.NewEncoder(w, rate, bitDepth, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: bitDepth,
		},
	}
}

// WriteSamples widens each pcm.S8 byte (reinterpreted as int8) to int16
// (Q8 shift) and feeds the encoder.
func (s *WavSink) WriteSamples(buf pcm.Buffer) error {
	if buf.Format.SFormat != pcm.S8 {
		return errors.Errorf("playback: WavSink got %s samples, want %s", buf.Format.SFormat, pcm.S8)
	}
	s.buf.Data = s.buf.Data[:0]
	for _, b := range buf.Data {
		s.buf.Data = append(s.buf.Data, int(int16(int8(b))<<8))
	}
	return s.enc.Write(s.buf)
}

// Close flushes the WAV header and trailer.
func (s *WavSink) Close() error { return s.enc.Close() }

// RawVideoSink writes successive frames as flat little-endian RGB555
// pixel streams, one frame after another with no per-frame framing -- a
// format a drop-folder viewer can mmap and stride through directly.
type RawVideoSink struct {
	w   io.Writer
	buf []byte
}

// NewRawVideoSink returns a VideoSink writing FrameWidth*FrameHeight
// pixels per WriteFrame call to w.
func NewRawVideoSink(w io.Writer) *RawVideoSink {
	return &RawVideoSink{w: w, buf: make([]byte, video.FrameWidth*video.FrameHeight*2)}
}

// WriteFrame serializes pixels little-endian and writes them to the sink.
func (s *RawVideoSink) WriteFrame(pixels []uint16) error {
	if len(pixels) != video.FrameWidth*video.FrameHeight {
		return errors.Errorf("playback: frame has %d pixels, want %d", len(pixels), video.FrameWidth*video.FrameHeight)
	}
	for i, p := range pixels {
		binary.LittleEndian.PutUint16(s.buf[i*2:i*2+2], p)
	}
	_, err := s.w.Write(s.buf)
	return err
}

// Close is a no-op; the caller owns the underlying writer.
func (s *RawVideoSink) Close() error { return nil }

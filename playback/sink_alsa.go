//go:build linux

/*
NAME
  sink_alsa.go

DESCRIPTION
  sink_alsa.go implements AudioSink over a local ALSA playback device,
  negotiating format/rate/channels the way device/alsa negotiates them
  for input. Restricted to linux since yobert/alsa only builds there.

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
	yalsa "github.com/yobert/alsa"

	"github.com/pkg/errors"

	"github.com/tinyreel/gbmplayer/codec/pcm"
)

// AlsaSink plays GBS PCM out the first ALSA playback device found,
// widening 8-bit samples to 16-bit since few devices negotiate S8.
type AlsaSink struct {
	dev      *yalsa.Device
	channels int
	widebuf  []byte
}

// NewAlsaSink opens and negotiates the first playback-capable ALSA
// device for the given rate and channel count.
func NewAlsaSink(rate, channels int) (*AlsaSink, error) {
	cards, err := yalsa.OpenCards()
	if err != nil {
		return nil, errors.Wrap(err, "alsa: opening cards")
	}
	defer yalsa.CloseCards(cards)

	var dev *yalsa.Device
	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, d := range devices {
			if d.Type == yalsa.PCM && d.Play {
				dev = d
				break
			}
		}
		if dev != nil {
			break
		}
	}
	if dev == nil {
		return nil, errors.New("alsa: no playback device found")
	}
	if err := dev.Open(); err != nil {
		return nil, errors.Wrap(err, "alsa: opening device")
	}
	if _, err := dev.NegotiateChannels(channels); err != nil {
		dev.Close()
		return nil, errors.Wrap(err, "alsa: negotiating channels")
	}
	if _, err := dev.NegotiateRate(rate); err != nil {
		dev.Close()
		return nil, errors.Wrap(err, "alsa: negotiating rate")
	}
	if _, err := dev.NegotiateFormat(yalsa.S16_LE); err != nil {
		dev.Close()
		return nil, errors.Wrap(err, "alsa: negotiating format")
	}
	if _, err := dev.NegotiateBufferSize(4096); err != nil {
		dev.Close()
		return nil, errors.Wrap(err, "alsa: negotiating buffer size")
	}
	if err := dev.Prepare(); err != nil {
		dev.Close()
		return nil, errors.Wrap(err, "alsa: preparing device")
	}
	return &AlsaSink{dev: dev, channels: channels}, nil
}

// WriteSamples widens each pcm.S8 byte (reinterpreted as int8) to a
// 16-bit little-endian sample and writes the interleaved buffer to the
// device.
func (s *AlsaSink) WriteSamples(buf pcm.Buffer) error {
	if buf.Format.SFormat != pcm.S8 {
		return errors.Errorf("alsa: got %s samples, want %s", buf.Format.SFormat, pcm.S8)
	}
	need := len(buf.Data) * 2
	if cap(s.widebuf) < need {
		s.widebuf = make([]byte, need)
	}
	s.widebuf = s.widebuf[:need]
	for i, b := range buf.Data {
		w := uint16(int16(int8(b)) << 8)
		s.widebuf[i*2] = byte(w)
		s.widebuf[i*2+1] = byte(w >> 8)
	}
	return s.dev.Write(s.widebuf)
}

// Close releases the ALSA device.
func (s *AlsaSink) Close() error { return s.dev.Close() }

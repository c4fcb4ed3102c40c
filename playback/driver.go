/*
NAME
  driver.go

DESCRIPTION
  driver.go implements the playback loop binding the GBM video decoder,
  the GBS audio decoder and the avsync Controller to one timebase: audio
  is decoded in fixed chunks and drives a sample counter, video frames
  are pulled whenever that counter crosses the next 100ms frame boundary,
  and a crossed minute boundary triggers the video seek described in §4.6
  and §5 ("single-threaded cooperative concurrency... one simulated
  hardware interrupt").

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package playback drives synchronized GBM/GBS playback: a chunked audio
// refill loop that doubles as the sample-rate "interrupt", video frame
// decode paced off the sample counter, and minute-boundary resync via
// avsync.Controller.
package playback

import (
	"context"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/tinyreel/gbmplayer/audio/gbs"
	"github.com/tinyreel/gbmplayer/avsync"
	"github.com/tinyreel/gbmplayer/codec/pcm"
	"github.com/tinyreel/gbmplayer/video"
)

// framesPerSecond is the GBM stream's fixed video frame rate (§2).
const framesPerSecond = 10

// audioChunkSamples is the per-channel sample count decoded and handed
// to the audio sink on each loop iteration; it stands in for the
// sample-rate interrupt's PCM double-buffer refill (§5).
const audioChunkSamples = 512

// Driver ties a GBM video stream and a GBS audio stream to a shared
// timebase and drives them into caller-supplied sinks.
type Driver struct {
	l logging.Logger

	gbmBody []byte // GBM data past its 512-byte file header
	version video.Version
	dst     []uint16 // frame currently being decoded into
	ref     []uint16 // most recently completed frame
	gbmOff  int      // byte offset of the next frame record in gbmBody
	frameN  uint32   // index of the next frame to decode

	audio *gbs.Decoder
	sync  *avsync.Controller

	samplesPerFrame uint64
}

// New opens a GBM/GBS pair and builds the I-frame table the sync
// controller needs, ready for Run.
func New(l logging.Logger, gbmData, gbsData []byte) (*Driver, error) {
	fh, err := video.ParseFileHeader(gbmData)
	if err != nil {
		return nil, errors.Wrap(err, "playback: parsing GBM header")
	}
	body := gbmData[video.HeaderSize:]

	iframes, err := avsync.BuildIFrameTable(body, fh.Version)
	if err != nil {
		return nil, errors.Wrap(err, "playback: building I-frame table")
	}

	a, err := gbs.Open(gbsData)
	if err != nil {
		return nil, errors.Wrap(err, "playback: opening GBS stream")
	}

	d := &Driver{
		l:               l,
		gbmBody:         body,
		version:         fh.Version,
		dst:             make([]uint16, video.FrameWidth*video.FrameHeight),
		ref:             make([]uint16, video.FrameWidth*video.FrameHeight),
		audio:           a,
		sync:            avsync.NewController(a.SampleRate(), iframes),
		samplesPerFrame: uint64(a.SampleRate()) / framesPerSecond,
	}
	return d, nil
}

// Run decodes audio and video in lockstep until the audio stream is
// finished or ctx is canceled, writing each through to the given sinks.
func (d *Driver) Run(ctx context.Context, vsink VideoSink, asink AudioSink) error {
	left := make([]int8, audioChunkSamples)
	var right []int8
	channels := d.audio.Channels()
	if channels == 2 {
		right = make([]int8, audioChunkSamples)
	}
	format := pcm.BufferFormat{
		SFormat:  pcm.S8,
		Rate:     uint(d.audio.SampleRate()),
		Channels: uint(channels),
	}
	interleaved := make([]byte, audioChunkSamples*channels)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.audio.Finished() {
			return nil
		}

		n, err := d.audio.Decode(left, right)
		if err != nil {
			return errors.Wrap(err, "playback: decoding audio chunk")
		}
		if n == 0 {
			return nil
		}

		interleave(interleaved[:n*channels], left[:n], right[:n], channels)
		buf := pcm.Buffer{Format: format, Data: interleaved[:n*channels]}
		if err := asink.WriteSamples(buf); err != nil {
			return errors.Wrap(err, "playback: writing audio")
		}

		d.sync.Observe(d.audio.SamplesDecoded())
		if minute, ok := d.sync.PollMinute(); ok {
			if off, ok := d.sync.IFrameOffset(minute); ok {
				d.seekVideoTo(off, minute)
			}
		}

		if err := d.drainDueFrames(vsink); err != nil {
			return err
		}
	}
}

// interleave packs left/right mono int8 buffers into one interleaved
// byte buffer (each int8 sample reinterpreted as its raw byte, per
// pcm.S8), or copies left straight through for mono streams.
func interleave(dst []byte, left, right []int8, channels int) {
	if channels == 1 {
		for i, v := range left {
			dst[i] = byte(v)
		}
		return
	}
	for i := range left {
		dst[i*2] = byte(left[i])
		dst[i*2+1] = byte(right[i])
	}
}

// drainDueFrames decodes every video frame whose presentation time has
// been reached by the audio sample counter.
func (d *Driver) drainDueFrames(vsink VideoSink) error {
	for uint64(d.frameN+1)*d.samplesPerFrame <= d.audio.SamplesDecoded() {
		if d.gbmOff >= len(d.gbmBody) {
			return nil
		}
		next, err := video.DecodeFrame(d.gbmBody, d.gbmOff, d.dst, d.ref, d.version)
		if err != nil {
			return errors.Wrap(err, "playback: decoding video frame")
		}
		if err := vsink.WriteFrame(d.dst); err != nil {
			return errors.Wrap(err, "playback: writing video frame")
		}
		d.dst, d.ref = d.ref, d.dst
		d.gbmOff = next
		d.frameN++
	}
	return nil
}

// seekVideoTo repositions the video cursor at a minute's I-frame offset
// and clears the reference buffer, since the frame at an I-frame offset
// is required to be fully intra-coded.
func (d *Driver) seekVideoTo(offset uint32, minute uint32) {
	d.gbmOff = int(offset)
	d.frameN = minute * avsync.FramesPerMinute
	for i := range d.ref {
		d.ref[i] = 0
	}
	d.l.Debug("resynced video to minute", "minute", minute, "offset", offset)
}

// SeekMinute jumps both decoders and the sync controller to the start of
// minute m, the atomic stop -> reset -> start sequence described in §5.
func (d *Driver) SeekMinute(m uint32) error {
	d.audio.SeekMinute(m)
	d.sync.SeekTo(m)
	off, ok := d.sync.IFrameOffset(m)
	if !ok {
		return errors.Errorf("playback: no I-frame table entry for minute %d", m)
	}
	d.seekVideoTo(off, m)
	return nil
}

// Play, Pause and IsPlaying delegate directly to the audio decoder's
// transport state; Stop also rewinds the video cursor to frame 0. Run
// does not consult IsPlaying: it returns only when the audio decoder is
// Finished or its context is canceled, so Pause does not halt a Run
// already in progress.
func (d *Driver) Play()           { d.audio.Play() }
func (d *Driver) Pause()          { d.audio.Pause() }
func (d *Driver) Stop()           { d.audio.Stop(); d.seekVideoTo(0, 0) }
func (d *Driver) IsPlaying() bool { return d.audio.IsPlaying() }

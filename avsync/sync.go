/*
NAME
  sync.go

DESCRIPTION
  sync.go implements the A/V synchronization contract: audio is the sync
  master because its sample timebase is hardware-clocked, so every minute
  boundary it crosses publishes a single pending-minute signal that the
  playback driver polls and uses to snap the video decoder back to the
  nearest I-frame (§4.6).

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package avsync binds the GBS audio timebase to GBM frame realignment:
// a one-time scan builds a table of per-minute I-frame offsets, and a
// one-slot signal tells the playback driver when to jump the video
// decoder to keep drift from ever exceeding one minute.
package avsync

import "sync/atomic"

// unsetSignal is the "no pending minute" sentinel; a real minute number
// is never negative, so the slot holds either -1 or the minute itself.
// The atomic word's zero value would read as minute 0, so NewController
// stores the sentinel before first use.
const unsetSignal = -1

// Controller tracks the audio sample counter against minute boundaries
// and publishes a pending-minute signal for the playback driver to
// consume (§4.6).
//
// Controller is safe for one writer (the audio refill path) and one
// reader (the playback driver's poll loop) calling concurrently, matching
// the single-interrupt concurrency model (§5): Observe is the ISR-side
// write, PollMinute is the main-loop-side read.
type Controller struct {
	samplesPerMinute uint64
	currentMinute    uint32
	nextMinuteSample uint64
	signal           int64 // atomic; unsetSignal or a pending minute number

	// IFrameTable holds one GBM byte offset per minute, built once by a
	// scan of the GBM stream's frame_len records (§3 iframe_table).
	IFrameTable []uint32
}

// NewController returns a Controller for a stream sampled at sampleRate
// Hz, with iframeTable supplying the GBM seek offset for each minute.
func NewController(sampleRate uint32, iframeTable []uint32) *Controller {
	c := &Controller{
		samplesPerMinute: uint64(sampleRate) * 60,
		IFrameTable:      iframeTable,
	}
	c.nextMinuteSample = c.samplesPerMinute
	atomic.StoreInt64(&c.signal, unsetSignal)
	return c
}

// SamplesPerMinute reports the precomputed sample-rate-derived constant.
func (c *Controller) SamplesPerMinute() uint64 { return c.samplesPerMinute }

// Observe compares samplesDecoded against the next minute boundary and,
// if crossed, advances current_audio_minute and publishes it to the
// one-slot signal. Called after every audio refill (§4.6).
func (c *Controller) Observe(samplesDecoded uint64) {
	for samplesDecoded >= c.nextMinuteSample {
		c.currentMinute++
		c.nextMinuteSample += c.samplesPerMinute
		atomic.StoreInt64(&c.signal, int64(c.currentMinute))
	}
}

// PollMinute reads the pending-minute signal, clearing it, and reports
// whether a minute boundary was pending. The playback driver calls this
// once per iteration and, on true, seeks video to IFrameTable[minute]
// (§4.6).
func (c *Controller) PollMinute() (minute uint32, ok bool) {
	v := atomic.SwapInt64(&c.signal, unsetSignal)
	if v == unsetSignal {
		return 0, false
	}
	return uint32(v), true
}

// CurrentMinute reports the most recently crossed minute boundary.
func (c *Controller) CurrentMinute() uint32 { return c.currentMinute }

// Reset returns the controller to minute 0 with the signal cleared, for
// use alongside a seek-to-start / restart of the audio decoder.
func (c *Controller) Reset() {
	c.currentMinute = 0
	c.nextMinuteSample = c.samplesPerMinute
	atomic.StoreInt64(&c.signal, unsetSignal)
}

// SeekTo repositions the controller at the start of minute m, as part of
// the atomic stop -> reset -> start seek sequence (§5 "seek_minute").
func (c *Controller) SeekTo(m uint32) {
	c.currentMinute = m
	c.nextMinuteSample = (uint64(m) + 1) * c.samplesPerMinute
	atomic.StoreInt64(&c.signal, unsetSignal)
}

// IFrameOffset returns the GBM byte offset to seek video to for minute m,
// or ok=false if m is outside the built table.
func (c *Controller) IFrameOffset(m uint32) (offset uint32, ok bool) {
	if int(m) >= len(c.IFrameTable) {
		return 0, false
	}
	return c.IFrameTable[m], true
}

/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements AudioBlockDecoder: it walks a GBS file's data
  region one block at a time, reparsing the per-block predictor/step-index
  header at each boundary and draining ADPCM codes into caller-supplied
  PCM buffers via codec/adpcm's stepping kernels (§4.5).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package gbs

import (
	"github.com/pkg/errors"

	"github.com/tinyreel/gbmplayer/codec/adpcm"
)

// bitUnpacker pulls n-bit codes LSB-first from a byte slice, accumulating
// across byte boundaries. Used by the 3-bit and 2-bit modes, whose codes
// don't align to byte boundaries within a sample (§4.5 "small sample
// buffer"). The packing direction (LSB-first) is not stated in the source
// material's surviving decoder stub; this choice is recorded as an open
// question in DESIGN.md.
type bitUnpacker struct {
	data  []byte
	pos   int
	buf   uint32
	nbits uint
}

func (u *bitUnpacker) next(n int) byte {
	for u.nbits < uint(n) {
		u.buf |= uint32(u.data[u.pos]) << u.nbits
		u.pos++
		u.nbits += 8
	}
	v := byte(u.buf & ((1 << uint(n)) - 1))
	u.buf >>= uint(n)
	u.nbits -= uint(n)
	return v
}

// Decoder walks a GBS file's blocks, maintaining the left/right channel
// state a block header resets and emitting 8-bit signed PCM.
type Decoder struct {
	data []byte // full file, header included
	body []byte // data[HeaderSize:]

	mode Mode
	info modeInfo

	totalBlocks    uint32
	samplesPerBlk  uint32
	blockIndex     uint32
	samplesInBlock uint32

	left, right adpcm.ChannelState
	unpack      bitUnpacker

	// nibbleHigh caches the second (high-nibble) sample of a mono 4-bit
	// byte until the next sample slot consumes it, in this Decode call or
	// the next one.
	nibbleHigh        byte
	nibbleHighPending bool

	samplesDecoded uint64
	playing        bool
	finished       bool
}

// Open validates data as a GBS file and positions the decoder at the
// start of block 0 (§4.5 step 1).
func Open(data []byte) (*Decoder, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	info, err := h.Mode.info()
	if err != nil {
		return nil, err
	}
	body := data[HeaderSize:]
	if info.blockSize == 0 || uint32(len(body))%info.blockSize != 0 {
		return nil, errors.Errorf("gbs: body length %d not a multiple of block size %d", len(body), info.blockSize)
	}
	dataRegion := info.blockSize - info.headerSize
	d := &Decoder{
		data:          data,
		body:          body,
		mode:          h.Mode,
		info:          info,
		totalBlocks:   uint32(len(body)) / info.blockSize,
		samplesPerBlk: samplesPerBlock(h.Mode, dataRegion),
	}
	if d.totalBlocks == 0 {
		return nil, errors.New("gbs: file has no data blocks")
	}
	d.reparseBlock()
	return d, nil
}

// samplesPerBlock returns the per-channel sample count a single block's
// data region yields, per §3's "samples / data byte" column.
func samplesPerBlock(m Mode, dataRegion uint32) uint32 {
	switch m {
	case ModeStereo4Bit:
		return dataRegion
	case ModeMono4Bit:
		return dataRegion * 2
	case ModeMono3Bit:
		return dataRegion / 3 * 8
	case ModeMono2Bit, ModeMono2BitSmall:
		return dataRegion * 4
	default:
		return 0
	}
}

// blockHeaderOffset and blockDataOffset locate block i's header and data
// region within the file.
func (d *Decoder) blockHeaderOffset(i uint32) int {
	return HeaderSize + int(i)*int(d.info.blockSize)
}

func (d *Decoder) blockDataOffset(i uint32) int {
	return d.blockHeaderOffset(i) + int(d.info.headerSize)
}

// reparseBlock reads the current block's header into channel state and
// clears carry/unpack state (§4.5 step 2, "reparse the new block's header").
func (d *Decoder) reparseBlock() {
	off := d.blockHeaderOffset(d.blockIndex)
	d.left = parseChannelState(d.mode, d.data[off:off+4])
	if d.mode == ModeStereo4Bit {
		d.right = parseChannelState(d.mode, d.data[off+4:off+8])
	}
	d.samplesInBlock = 0
	d.nibbleHighPending = false
	dataOff := d.blockDataOffset(d.blockIndex)
	dataEnd := dataOff + int(d.info.blockSize-d.info.headerSize)
	d.unpack = bitUnpacker{data: d.data[dataOff:dataEnd]}
}

// parseChannelState reads one 4-byte {predictor, step_index} record. Modes
// 0 and 2 run their predictor in the signed domain, so the header's
// biased field is un-biased immediately; modes 1/3/4 keep the predictor in
// the unsigned domain the header already stores it in (§3 ChannelState).
func parseChannelState(m Mode, rec []byte) adpcm.ChannelState {
	predictor := uint16(rec[0]) | uint16(rec[1])<<8
	stepIndex := uint16(rec[2]) | uint16(rec[3])<<8
	cs := adpcm.ChannelState{StepIndex: int32(stepIndex)}
	switch m {
	case ModeStereo4Bit, ModeMono4Bit:
		cs.Predictor = int32(predictor) - 0x8000
	default:
		cs.Predictor = int32(predictor)
	}
	return cs
}

// advanceBlock moves to the next block, or marks the stream finished once
// the last block is exhausted (§4.5 step 2).
func (d *Decoder) advanceBlock() {
	d.blockIndex++
	if d.blockIndex >= d.totalBlocks {
		d.finished = true
		return
	}
	d.reparseBlock()
}

// Decode fills left (and right, for the stereo mode) with up to len(left)
// decoded samples, advancing block boundaries as needed, and returns the
// number of samples actually emitted. Once the stream is finished the
// remainder of the buffers is zero-filled (§4.5 step 2).
func (d *Decoder) Decode(left, right []int8) (int, error) {
	if d.mode == ModeStereo4Bit && len(right) != len(left) {
		return 0, errors.New("gbs: stereo mode requires equal-length left/right buffers")
	}
	n := len(left)
	emitted := 0
	for emitted < n {
		if d.finished {
			for i := emitted; i < n; i++ {
				left[i] = 0
				if right != nil {
					right[i] = 0
				}
			}
			break
		}
		if d.samplesInBlock >= d.samplesPerBlk {
			d.advanceBlock()
			continue
		}
		d.decodeOne(left, right, emitted)
		d.samplesInBlock++
		d.samplesDecoded++
		emitted++
	}
	return emitted, nil
}

// decodeOne produces a single (per-channel) sample slot from the current
// block's bitstream according to the mode's unpacking rule (§4.5 step 2).
func (d *Decoder) decodeOne(left, right []int8, i int) {
	switch d.mode {
	case ModeStereo4Bit:
		b := d.nextDataByte()
		l, r := adpcm.StepStereo4BitIMA(b, &d.left, &d.right)
		left[i] = adpcm.Quantize8(l)
		right[i] = adpcm.Quantize8(r)
	case ModeMono4Bit:
		if d.nibbleHighPending {
			d.nibbleHighPending = false
			left[i] = adpcm.Quantize8(d.left.Step4BitIMA(d.nibbleHigh))
			return
		}
		b := d.nextDataByte()
		left[i] = adpcm.Quantize8(d.left.Step4BitIMA(b & 0xF))
		d.nibbleHigh = b >> 4
		d.nibbleHighPending = true
	case ModeMono3Bit:
		code := d.unpack.next(3)
		left[i] = adpcm.Quantize8(d.left.Step3Bit(code))
	case ModeMono2Bit, ModeMono2BitSmall:
		code := d.unpack.next(2)
		left[i] = adpcm.Quantize8(d.left.Step2Bit(code))
	}
}

// nextDataByte consumes one raw byte from the current block's data
// region, for the byte-granular (non-bit-packed) modes.
func (d *Decoder) nextDataByte() byte {
	b := d.unpack.data[d.unpack.pos]
	d.unpack.pos++
	return b
}

// Restart rewinds playback to block 0 with a fresh channel state (§4.5
// step 3).
func (d *Decoder) Restart() {
	d.blockIndex = 0
	d.samplesDecoded = 0
	d.finished = false
	d.reparseBlock()
}

// SeekMinute jumps to the block containing the start of the given minute,
// wrapping to the start of the stream if the target is past the end
// (§4.5 step 4).
func (d *Decoder) SeekMinute(minute uint32) {
	samplesPerMinute := uint64(d.info.sampleRate) * 60
	targetBlock := uint64(minute) * samplesPerMinute / uint64(d.samplesPerBlk)
	if targetBlock >= uint64(d.totalBlocks) {
		targetBlock = 0
	}
	d.blockIndex = uint32(targetBlock)
	d.finished = false
	d.reparseBlock()
	d.samplesDecoded = targetBlock * uint64(d.samplesPerBlk)
}

// Mode reports the stream's ADPCM flavor.
func (d *Decoder) Mode() Mode { return d.mode }

// SampleRate reports the stream's sample rate in Hz.
func (d *Decoder) SampleRate() uint32 { return d.info.sampleRate }

// Channels reports 1 for mono modes, 2 for the stereo mode.
func (d *Decoder) Channels() int { return d.info.channels }

// Play marks the decoder as playing; the playback driver gates its own
// timer/DMA transport on this, the decoder itself does nothing extra.
func (d *Decoder) Play() { d.playing = true }

// Pause marks the decoder as not playing.
func (d *Decoder) Pause() { d.playing = false }

// Stop pauses and rewinds the decoder to the beginning of the stream.
func (d *Decoder) Stop() {
	d.playing = false
	d.Restart()
}

// IsPlaying reports the decoder's playing/paused state.
func (d *Decoder) IsPlaying() bool { return d.playing }

// Finished reports whether the block cursor has exhausted the stream.
func (d *Decoder) Finished() bool { return d.finished }

// SamplesDecoded reports the number of per-channel samples emitted so far.
func (d *Decoder) SamplesDecoded() uint64 { return d.samplesDecoded }

// TotalSamples reports the stream's total per-channel sample count.
func (d *Decoder) TotalSamples() uint64 {
	return uint64(d.totalBlocks) * uint64(d.samplesPerBlk)
}

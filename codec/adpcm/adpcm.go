/*
NAME
  adpcm.go

DESCRIPTION
  adpcm.go implements the single-sample stepping kernels shared by the five
  GBS channel modes: 4-bit IMA, 3-bit, 2-bit, and the stereo 4-bit pair that
  drives two independent channel states from one input byte. Each kernel
  mutates a ChannelState in place and returns the reconstructed sample.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package adpcm provides the ADPCM stepping kernels used by GBS audio: a
// 4-bit IMA variant (mono and the stereo pair), a 3-bit variant and a 2-bit
// variant, each sharing the predictor/step-index channel state that a GBS
// block header resets.
package adpcm

// Step-index bounds (§3 Invariants).
const (
	MinStepIndexIMA = 0
	MaxStepIndexIMA = 88

	MinStepIndex2Bit = 0
	MaxStepIndex2Bit = 352
)

// stepTable is the standard 89-entry IMA quantizer step table, shared by
// the 4-bit and 3-bit kernels.
var stepTable = []int16{
	7, 8, 9, 10, 11, 12, 13, 14,
	16, 17, 19, 21, 23, 25, 28, 31,
	34, 37, 41, 45, 50, 55, 60, 66,
	73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658,
	724, 796, 876, 963, 1060, 1166, 1282, 1411,
	1552, 1707, 1878, 2066, 2272, 2499, 2749, 3024,
	3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484,
	7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794,
	32767,
}

// indexTable4Bit is the standard IMA step-index adjustment table, indexed
// by the full 4-bit code (sign included, per §4.4.1).
var indexTable4Bit = []int16{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// indexTable3Bit is the 3-bit step-index adjustment table (§4.4.2).
var indexTable3Bit = []int16{-1, -1, 2, 6, -1, -1, 2, 6}

// deltaTable2Bit is the 2-bit kernel's delta lookup, indexed by
// step_index+code and saturated at MaxStepIndex2Bit (§4.4.3). The source
// material this spec was distilled from did not retain the literal 356
// entries, so the table below is generated: it preserves the documented
// shape (monotonically increasing step size, fits in an int16) rather than
// reproducing an unknown original byte-for-byte. See DESIGN.md.
var deltaTable2Bit = buildDeltaTable2Bit()

func buildDeltaTable2Bit() []int16 {
	const n = 356
	t := make([]int16, n)
	// Geometric growth from a small base, slow enough that entry n-1 stays
	// well inside int16 range.
	acc := 4.0
	const ratio = 1.0165
	for i := 0; i < n; i++ {
		if acc > 32000 {
			acc = 32000
		}
		t[i] = int16(acc)
		acc *= ratio
	}
	return t
}

// ChannelState holds the running predictor/step-index pair that a GBS
// block header resets at each block boundary (§3 ChannelState).
//
// For the 4-bit IMA kernels, Predictor is a signed accumulator clamped to
// [-32768, 32767]. For the 3-bit and 2-bit kernels, Predictor runs as an
// unsigned 16-bit accumulator clamped to [0, 65535] and biased by 0x8000
// relative to the signed PCM domain; use Signed16 to read the emitted
// sample.
type ChannelState struct {
	Predictor int32
	StepIndex int32
}

// Signed16 returns the unsigned-domain Predictor reinterpreted as a signed
// 16-bit PCM sample (predictor - 0x8000), per §3.
func (cs *ChannelState) Signed16() int16 {
	return int16(cs.Predictor - 0x8000)
}

func clamp32(v, lo, hi int32) int32 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// Step4BitIMA decodes one 4-bit IMA code (bit 3 the sign, bits 2..0 the
// magnitude) against cs, which runs in the signed domain, and returns the
// clamped signed 16-bit sample (§4.4.1).
func (cs *ChannelState) Step4BitIMA(n byte) int16 {
	n &= 0xF
	step := int32(stepTable[cs.StepIndex])
	diff := step >> 3
	if n&4 != 0 {
		diff += step
	}
	if n&2 != 0 {
		diff += step >> 1
	}
	if n&1 != 0 {
		diff += step >> 2
	}
	if n&8 != 0 {
		diff = -diff
	}
	cs.Predictor = clamp32(cs.Predictor+diff, -32768, 32767)
	cs.StepIndex = clamp32(cs.StepIndex+int32(indexTable4Bit[n]), MinStepIndexIMA, MaxStepIndexIMA)
	return int16(cs.Predictor)
}

// Step3Bit decodes one 3-bit code (bit 2 the sign, bits 1..0 the magnitude)
// against cs, which runs in the unsigned domain, and returns the emitted
// signed 16-bit sample (§4.4.2).
func (cs *ChannelState) Step3Bit(n byte) int16 {
	n &= 0x7
	step := int32(stepTable[cs.StepIndex])
	diff := step >> 2
	if n&2 != 0 {
		diff += step
	}
	if n&1 != 0 {
		diff += step >> 1
	}
	if n&4 != 0 {
		diff = -diff
	}
	cs.Predictor = clamp32(cs.Predictor+diff, 0, 65535)
	cs.StepIndex = clamp32(cs.StepIndex+int32(indexTable3Bit[n]), MinStepIndexIMA, MaxStepIndexIMA)
	return cs.Signed16()
}

// Step2Bit decodes one 2-bit code against cs, which runs in the unsigned
// domain, and returns the emitted signed 16-bit sample (§4.4.3).
func (cs *ChannelState) Step2Bit(code byte) int16 {
	code &= 0x3
	idx := cs.StepIndex + int32(code)
	if idx > MaxStepIndex2Bit {
		idx = MaxStepIndex2Bit
	}
	delta := int32(deltaTable2Bit[idx])
	cs.Predictor = clamp32(cs.Predictor+delta, 0, 65535)
	if code&1 != 0 {
		cs.StepIndex = clamp32(cs.StepIndex+4, MinStepIndex2Bit, MaxStepIndex2Bit)
	} else {
		cs.StepIndex = clamp32(cs.StepIndex-4, MinStepIndex2Bit, MaxStepIndex2Bit)
	}
	return cs.Signed16()
}

// StepStereo4BitIMA decodes one byte carrying a left sample in the low
// nibble and a right sample in the high nibble, each run through the 4-bit
// IMA kernel against its own channel state (§4.4.4).
func StepStereo4BitIMA(b byte, left, right *ChannelState) (l, r int16) {
	l = left.Step4BitIMA(b & 0xF)
	r = right.Step4BitIMA(b >> 4)
	return l, r
}

// Quantize8 converts a reconstructed 16-bit PCM sample to the 8-bit signed
// sample GBS actually emits: the high byte of the 16-bit value (§4.4.5).
func Quantize8(pcm16 int16) int8 {
	return int8(pcm16 >> 8)
}

/*
NAME
  decoder_test.go

DESCRIPTION
  decoder_test.go contains tests for the block-walking Decoder.

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

import "testing"

// buildMode2File builds a 2-block mono 4-bit IMA (mode 2) GBS file.
// Block 0's header saturates the predictor high (S5); block 1's header
// resets to a distinct, easily-checked state.
func buildMode2File(t *testing.T) []byte {
	t.Helper()
	const blockSize = 512
	const dataRegion = blockSize - 4
	body := make([]byte, blockSize*2)

	// Block 0: predictor 32767 (stored biased: 32767+0x8000), step 88, all
	// codes 0x7 (max positive nibble, both halves of every byte).
	putU16(body[0:2], uint16(32767+0x8000))
	putU16(body[2:4], 88)
	for i := 4; i < blockSize; i++ {
		body[i] = 0x77
	}

	// Block 1: predictor 0 (stored biased: 0x8000), step 0, all codes 0x0.
	putU16(body[blockSize+0:blockSize+2], 0x8000)
	putU16(body[blockSize+2:blockSize+4], 0)
	// data already zero

	data := append(makeHeader(uint32(ModeMono4Bit)), body...)
	return data
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func TestDecoderMode2SaturatesThenResetsAtBlockBoundary(t *testing.T) {
	data := buildMode2File(t)
	dec, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if dec.SamplesDecoded() != 0 {
		t.Fatalf("fresh decoder has SamplesDecoded = %d, want 0", dec.SamplesDecoded())
	}

	const dataRegion = 512 - 4
	const samplesPerBlk = dataRegion * 2

	left := make([]int8, samplesPerBlk)
	n, err := dec.Decode(left, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != samplesPerBlk {
		t.Fatalf("Decode emitted %d, want %d", n, samplesPerBlk)
	}
	for i, s := range left {
		if s != 0x7F {
			t.Fatalf("sample %d = %#x, want 0x7f (S5 saturation)", i, s)
		}
	}

	// Crossing into block 1 with a fresh header: predictor resets to
	// 0x8000-0x8000=0, step to 0; code 0 keeps it there (property 10).
	more := make([]int8, 8)
	n, err = dec.Decode(more, nil)
	if err != nil {
		t.Fatalf("Decode across boundary: %v", err)
	}
	if n != 8 {
		t.Fatalf("Decode emitted %d, want 8", n)
	}
	for i, s := range more {
		if s != 0 {
			t.Fatalf("post-boundary sample %d = %#x, want 0", i, s)
		}
	}
}

func TestDecoderFinishesAndZeroFills(t *testing.T) {
	data := buildMode2File(t)
	dec, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	total := int(dec.TotalSamples())
	buf := make([]int8, total+16)
	n, err := dec.Decode(buf, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != total {
		t.Fatalf("Decode emitted %d, want %d", n, total)
	}
	if !dec.Finished() {
		t.Fatal("expected Finished() after draining the stream")
	}
	for i := total; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("tail sample %d = %#x, want 0 (zero-fill past end)", i, buf[i])
		}
	}
}

func TestDecoderRestartIsIdempotent(t *testing.T) {
	data := buildMode2File(t)
	dec, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a := make([]int8, 32)
	if _, err := dec.Decode(a, nil); err != nil {
		t.Fatal(err)
	}
	dec.Restart()
	b := make([]int8, 32)
	if _, err := dec.Decode(b, nil); err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs after restart: %#x vs %#x", i, a[i], b[i])
		}
	}
}

func TestDecoderStereoProducesIndependentChannels(t *testing.T) {
	const blockSize = 1024
	const dataRegion = blockSize - 8
	body := make([]byte, blockSize)
	putU16(body[0:2], 0x8000)
	putU16(body[2:4], 0)
	putU16(body[4:6], 0x8000)
	putU16(body[6:8], 0)
	for i := 8; i < blockSize; i++ {
		body[i] = 0x71 // low nibble 0x1 (left), high nibble 0x7 (right)
	}
	data := append(makeHeader(uint32(ModeStereo4Bit)), body...)

	dec, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if dec.Channels() != 2 {
		t.Fatalf("Channels() = %d, want 2", dec.Channels())
	}
	left := make([]int8, dataRegion)
	right := make([]int8, dataRegion)
	if _, err := dec.Decode(left, right); err != nil {
		t.Fatal(err)
	}
	// Left (code 1) and right (code 7) start from the same predictor and
	// step, so their high bytes (all Quantize8 keeps) agree for the first
	// samples; quantization to int8 only exposes the divergence once
	// right's predictor crosses a 256 boundary. Compare the full slices rather than sample 0.
	diverged := false
	for i := range left {
		if left[i] != right[i] {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Fatal("expected left and right channels to diverge somewhere in the decoded slices")
	}
}

func TestDecoderMono2BitAllZeroCodesClimbFromBias(t *testing.T) {
	const blockSize = 512
	const dataRegion = blockSize - 4
	body := make([]byte, blockSize)
	putU16(body[0:2], 0x8000)
	putU16(body[2:4], 0)
	data := append(makeHeader(uint32(ModeMono2Bit)), body...)

	dec, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// code 0 always selects deltaTable2Bit[0] (step_index is clamped at 0
	// the whole time, since code 0 keeps pushing it down from 0) and walks
	// step_index no further, so the 16-bit predictor climbs by a fixed
	// deltaTable2Bit[0] each sample: 0x8000 + 4*n. Quantize8 only exposes
	// that in the emitted int8 once the accumulated delta reaches a 256
	// boundary, at n=64 samples (index 63). This pins the test to the
	// committed (fabricated, see DESIGN.md) table's first entry rather than
	// just range-checking.
	const n = 64
	left := make([]int8, n)
	if _, err := dec.Decode(left, nil); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 63; i++ {
		if left[i] != 0 {
			t.Fatalf("sample %d = %d, want 0 (16-bit value %d hasn't reached 256 yet)", i, left[i], 4*(i+1))
		}
	}
	if left[63] != 1 {
		t.Fatalf("sample 63 = %d, want 1 (16-bit value 256 >> 8 == 1)", left[63])
	}
}

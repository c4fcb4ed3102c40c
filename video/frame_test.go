/*
NAME
  frame_test.go

DESCRIPTION
  frame_test.go contains tests for frame header parsing and the full
  macroblock-grid decode loop.

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

import "testing"

func TestParseFrameHeaderDeobfuscatesFlagBytes(t *testing.T) {
	cases := []struct {
		version Version
		key     uint16
	}{
		{Version4, 0x0000},
		{Version5, 0xD6AC},
		{Version6, 0xD669},
	}
	for _, c := range cases {
		flagBytes := uint16(150)
		bitEnc := flagBytes ^ c.key
		data := []byte{0, 0, byte(bitEnc), byte(bitEnc >> 8), 0, 0}
		h, err := ParseFrameHeader(data, 0, c.version)
		if err != nil {
			t.Fatalf("version %d: %v", c.version, err)
		}
		if h.FlagBytes != flagBytes {
			t.Errorf("version %d: FlagBytes = %d, want %d", c.version, h.FlagBytes, flagBytes)
		}
	}
}

func TestParseFrameHeaderUnsupportedVersion(t *testing.T) {
	data := make([]byte, 6)
	if _, err := ParseFrameHeader(data, 0, Version(99)); err == nil {
		t.Error("expected error for unsupported version")
	}
}

// buildZeroFlagFrame builds a minimal frame record whose flag stream is
// all-zero bits, 2 bits per macroblock across the full 30x20 grid, with no
// palette or payload bytes: every 8x8 block decodes as "copy same
// position" (property 7: full block coverage, no panics).
func buildZeroFlagFrame() []byte {
	const flagBytes = macroblocksPerRow * macroblocksPerCol * 2 / 8 // 150
	const frameLen = 2 + 2 + flagBytes
	data := make([]byte, 2+frameLen)
	data[0] = byte(frameLen)
	data[1] = byte(frameLen >> 8)
	// bitEnc for Version4 (zero key) is flagBytes itself.
	data[2] = byte(flagBytes)
	data[3] = byte(flagBytes >> 8)
	data[4] = 0
	data[5] = 0
	return data
}

func TestDecodeFrameFullGridIntraNoOp(t *testing.T) {
	data := buildZeroFlagFrame()
	dst := newTestFrame()
	for i := range dst {
		dst[i] = uint16(i)
	}
	before := append([]uint16(nil), dst...)

	next, err := DecodeFrame(data, 0, dst, dst, Version4)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if next != len(data) {
		t.Errorf("next offset = %d, want %d", next, len(data))
	}
	for i := range dst {
		if dst[i] != before[i] {
			t.Fatalf("pixel %d changed under all-zero-flag intra decode: %#x -> %#x", i, before[i], dst[i])
		}
	}
}

func TestDecodeFrameRejectsWrongBufferSize(t *testing.T) {
	data := buildZeroFlagFrame()
	bad := make([]uint16, 4)
	if _, err := DecodeFrame(data, 0, bad, bad, Version4); err == nil {
		t.Error("expected error for undersized frame buffer")
	}
}

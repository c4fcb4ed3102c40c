/*
NAME
  gbs_test.go

DESCRIPTION
  gbs_test.go contains tests for GBS header parsing and the mode table.

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

func makeHeader(mode uint32) []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:4], identifier[:])
	copy(h[4:8], marker[:])
	h[8] = byte(mode)
	h[9] = byte(mode >> 8)
	h[10] = byte(mode >> 16)
	h[11] = byte(mode >> 24)
	return h
}

func TestParseHeaderValid(t *testing.T) {
	data := makeHeader(uint32(ModeMono2Bit))
	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Mode != ModeMono2Bit {
		t.Errorf("Mode = %v, want %v", h.Mode, ModeMono2Bit)
	}
}

func TestParseHeaderBadIdentifier(t *testing.T) {
	data := makeHeader(0)
	data[0] = 'X'
	if _, err := ParseHeader(data); err == nil {
		t.Error("expected error for bad identifier")
	}
}

func TestParseHeaderBadMarker(t *testing.T) {
	data := makeHeader(0)
	data[4] = 'X'
	if _, err := ParseHeader(data); err == nil {
		t.Error("expected error for bad marker")
	}
}

func TestParseHeaderUnsupportedMode(t *testing.T) {
	data := makeHeader(99)
	if _, err := ParseHeader(data); err == nil {
		t.Error("expected error for unsupported mode")
	}
}

func TestParseHeaderTruncated(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 10)); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestSamplesPerBlockMatchesScenarioS4(t *testing.T) {
	// S4: mode 3, 512-byte block, header 4 bytes -> data region 508 bytes,
	// 4 samples/byte -> 2032 samples.
	if got := samplesPerBlock(ModeMono2Bit, 512-4); got != 2032 {
		t.Errorf("samplesPerBlock = %d, want 2032", got)
	}
}

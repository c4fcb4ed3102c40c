/*
NAME
  header_test.go

DESCRIPTION
  header_test.go contains tests for ParseFileHeader.

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

func makeFileHeader(version byte) []byte {
	h := make([]byte, HeaderSize)
	copy(h, identifier[:])
	h[4] = version
	return h
}

func TestParseFileHeaderOK(t *testing.T) {
	h, err := ParseFileHeader(makeFileHeader(6))
	if err != nil {
		t.Fatalf("ParseFileHeader: %v", err)
	}
	if h.Version != Version6 {
		t.Errorf("Version = %d, want %d", h.Version, Version6)
	}
}

func TestParseFileHeaderBadIdentifier(t *testing.T) {
	h := makeFileHeader(6)
	h[0] = 'X'
	if _, err := ParseFileHeader(h); err == nil {
		t.Error("expected error for bad identifier")
	}
}

func TestParseFileHeaderUnsupportedVersion(t *testing.T) {
	if _, err := ParseFileHeader(makeFileHeader(9)); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestParseFileHeaderTooShort(t *testing.T) {
	if _, err := ParseFileHeader(make([]byte, 10)); err == nil {
		t.Error("expected error for short data")
	}
}

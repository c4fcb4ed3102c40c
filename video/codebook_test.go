/*
NAME
  codebook_test.go

DESCRIPTION
  codebook_test.go contains tests for the video package's codebook.

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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestCodebookDeterminism checks that the formula-generated codebook
// matches the literal 256-entry table byte-for-byte (testable property 1).
func TestCodebookDeterminism(t *testing.T) {
	if !cmp.Equal(Codebook, literalCodebook) {
		t.Fatalf("computed codebook differs from literal table:\n%s", cmp.Diff(literalCodebook, Codebook))
	}
}

func TestCodebookCenterIsZero(t *testing.T) {
	// Row 8, column 8 is the (0,0) displacement.
	if got := Codebook[8*16+8]; got != 0 {
		t.Errorf("Codebook[8*16+8] = %d, want 0", got)
	}
}

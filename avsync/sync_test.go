/*
NAME
  sync_test.go

DESCRIPTION
  sync_test.go contains tests for Controller.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package avsync

import "testing"

func TestControllerSignalsAtMinuteBoundary(t *testing.T) {
	c := NewController(100, []uint32{0, 1000, 2000})
	if _, ok := c.PollMinute(); ok {
		t.Fatal("fresh controller should have no pending minute")
	}

	c.Observe(5999) // samplesPerMinute = 6000, not yet crossed
	if _, ok := c.PollMinute(); ok {
		t.Fatal("should not signal before crossing the boundary")
	}

	c.Observe(6000)
	minute, ok := c.PollMinute()
	if !ok || minute != 1 {
		t.Fatalf("PollMinute() = %d, %v; want 1, true", minute, ok)
	}

	// Idempotent: polling again with nothing new clears and returns false.
	if _, ok := c.PollMinute(); ok {
		t.Fatal("second poll without a new Observe should report no signal")
	}
}

func TestControllerSeekToIsAtomicFromObserverPerspective(t *testing.T) {
	c := NewController(100, nil)
	c.SeekTo(5)
	if c.CurrentMinute() != 5 {
		t.Fatalf("CurrentMinute() = %d, want 5", c.CurrentMinute())
	}
	if _, ok := c.PollMinute(); ok {
		t.Fatal("SeekTo should clear any pending signal")
	}
	c.Observe(6 * c.SamplesPerMinute())
	minute, ok := c.PollMinute()
	if !ok || minute != 6 {
		t.Fatalf("PollMinute() after seek+observe = %d, %v; want 6, true", minute, ok)
	}
}

func TestControllerIFrameOffsetBounds(t *testing.T) {
	c := NewController(100, []uint32{10, 20, 30})
	if off, ok := c.IFrameOffset(1); !ok || off != 20 {
		t.Fatalf("IFrameOffset(1) = %d, %v; want 20, true", off, ok)
	}
	if _, ok := c.IFrameOffset(99); ok {
		t.Fatal("expected ok=false for out-of-range minute")
	}
}

func TestControllerResetClearsState(t *testing.T) {
	c := NewController(100, nil)
	c.Observe(6 * c.SamplesPerMinute())
	c.Reset()
	if c.CurrentMinute() != 0 {
		t.Fatalf("CurrentMinute() after Reset = %d, want 0", c.CurrentMinute())
	}
	if _, ok := c.PollMinute(); ok {
		t.Fatal("Reset should clear any pending signal")
	}
}

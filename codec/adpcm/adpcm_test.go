/*
NAME
  adpcm_test.go

DESCRIPTION
  adpcm_test.go contains tests for the adpcm package.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package adpcm

import (
	"math/rand"
	"testing"
)

// TestStep4BitIMAClampAndEnvelope feeds 1e6 random 4-bit codes through the
// IMA kernel and checks the predictor/step-index stay within their
// documented ranges at every step (testable properties 8 and 9).
func TestStep4BitIMAClampAndEnvelope(t *testing.T) {
	var cs ChannelState
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1e6; i++ {
		n := byte(rng.Intn(16))
		cs.Step4BitIMA(n)
		if cs.Predictor < -32768 || cs.Predictor > 32767 {
			t.Fatalf("predictor escaped range: %d", cs.Predictor)
		}
		if cs.StepIndex < MinStepIndexIMA || cs.StepIndex > MaxStepIndexIMA {
			t.Fatalf("step index escaped range: %d", cs.StepIndex)
		}
	}
}

func TestStep3BitClampAndEnvelope(t *testing.T) {
	var cs ChannelState
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1e6; i++ {
		n := byte(rng.Intn(8))
		cs.Step3Bit(n)
		if cs.Predictor < 0 || cs.Predictor > 65535 {
			t.Fatalf("predictor escaped unsigned range: %d", cs.Predictor)
		}
		if cs.StepIndex < MinStepIndexIMA || cs.StepIndex > MaxStepIndexIMA {
			t.Fatalf("step index escaped range: %d", cs.StepIndex)
		}
	}
}

func TestStep2BitClampAndEnvelope(t *testing.T) {
	var cs ChannelState
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1e6; i++ {
		code := byte(rng.Intn(4))
		cs.Step2Bit(code)
		if cs.Predictor < 0 || cs.Predictor > 65535 {
			t.Fatalf("predictor escaped unsigned range: %d", cs.Predictor)
		}
		if cs.StepIndex < MinStepIndex2Bit || cs.StepIndex > MaxStepIndex2Bit {
			t.Fatalf("step index escaped range: %d", cs.StepIndex)
		}
	}
}

// TestStep4BitIMASaturates checks that repeated maximum-positive codes
// saturate the predictor at 32767 and the quantized byte at 0x7F (S5).
func TestStep4BitIMASaturates(t *testing.T) {
	cs := ChannelState{Predictor: 32767, StepIndex: MaxStepIndexIMA}
	for i := 0; i < 32; i++ {
		s := cs.Step4BitIMA(0x7)
		if Quantize8(s) != 0x7F {
			t.Fatalf("sample %d: Quantize8(%d) = %#x, want 0x7f", i, s, Quantize8(s))
		}
	}
}

// TestStepStereo4BitIMAIndependence checks that the left and right channel
// states evolve independently from the two nibbles of a shared input byte.
func TestStepStereo4BitIMAIndependence(t *testing.T) {
	var left, right ChannelState
	l, r := StepStereo4BitIMA(0x71, &left, &right)
	if l == r {
		t.Fatalf("expected divergent left/right samples for differing nibbles, got %d == %d", l, r)
	}
	if left.StepIndex == right.StepIndex && 0x1 != 0x7 {
		// Nibbles differ (0x1 vs 0x7) so their step indices should usually diverge too;
		// this isn't a hard invariant but documents the intent of the test.
		t.Logf("left and right step indices coincidentally equal: %d", left.StepIndex)
	}
}

func TestQuantize8(t *testing.T) {
	cases := []struct {
		in   int16
		want int8
	}{
		{0, 0},
		{32767, 0x7F},
		{-32768, -128},
		{256, 1},
	}
	for _, c := range cases {
		if got := Quantize8(c.in); got != c.want {
			t.Errorf("Quantize8(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

/*
NAME
  blockops.go

DESCRIPTION
  blockops.go provides the four pixel-rectangle primitives the GBM block
  tree drives: copy (motion compensation via a codebook displacement),
  fill (flat color), delta (motion-compensated copy plus a signed
  per-pixel offset) and their boundary arithmetic. The source device
  batches these two pixels at a time over a 32-bit bus; that batching is a
  hardware-specific optimization with no behavioral effect off-device, so
  these operate one pixel at a time (§3, §6).

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

// FrameWidth and FrameHeight are the fixed GBM frame dimensions (§2).
const (
	FrameWidth  = 240
	FrameHeight = 160
)

// PixelMask strips the unused top bit of an RGB555 pixel (§2, §6).
const PixelMask = 0x7FFF

// pixelIndex converts a byte offset, as used by the block tree and the
// codebook, to an index into a []uint16 frame buffer.
func pixelIndex(byteOffset int) int {
	return byteOffset / 2
}

// CopyBlock copies a rows x width rectangle from ref at refOff to dst at
// dstOff, both given as byte offsets on the frame's 480-byte stride. Used
// for same-position copies (no-op when dst and ref share the same buffer)
// and codebook-displaced motion copies (§6 "copy").
func CopyBlock(dst, ref []uint16, dstOff, refOff, rows, width int) {
	d := pixelIndex(dstOff)
	s := pixelIndex(refOff)
	for r := 0; r < rows; r++ {
		copy(dst[d:d+width], ref[s:s+width])
		d += FrameWidth
		s += FrameWidth
	}
}

// FillBlock writes color into every pixel of a rows x width rectangle at
// dstOff (§6 "fill").
func FillBlock(dst []uint16, dstOff, rows, width int, color uint16) {
	d := pixelIndex(dstOff)
	for r := 0; r < rows; r++ {
		row := dst[d : d+width]
		for i := range row {
			row[i] = color
		}
		d += FrameWidth
	}
}

// DeltaBlock copies a rows x width rectangle from ref at refOff to dst at
// dstOff, adding delta to every pixel after masking its top bit. The mask
// happens before the add (testable property 6): it is what keeps the
// source device's 2-pixels-per-32-bit-add trick from letting a carry out
// of one pixel corrupt its neighbor; in this one-pixel-at-a-time form it
// simply defines the wraparound arithmetic precisely (§6 "delta").
func DeltaBlock(dst, ref []uint16, dstOff, refOff, rows, width int, delta int16) {
	d := pixelIndex(dstOff)
	s := pixelIndex(refOff)
	u := uint16(delta)
	for r := 0; r < rows; r++ {
		for i := 0; i < width; i++ {
			dst[d+i] = (ref[s+i] & PixelMask) + u
		}
		d += FrameWidth
		s += FrameWidth
	}
}

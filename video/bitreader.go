/*
NAME
  bitreader.go

DESCRIPTION
  bitreader.go provides a bit reader for the GBM flag stream: MSB-first,
  refilled 32 bits at a time from a little-endian byte slice. The refill is
  synthesized byte-by-byte rather than cast through a machine word, mirroring
  the source device's unaligned-load workaround (§4.1, §9).

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package video implements the GBM frame decoder: the recursive block-tree
// parser, its bit/palette/payload sub-streams, the displacement codebook
// and the pixel-rectangle primitives the block tree drives.
package video

// sentinelState is the initial BitReader state: one consumed bit (the
// sentinel) sitting at the MSB, so the very first read forces a refill.
const sentinelState uint32 = 1 << 31

// BitReader reads single bits MSB-first from a byte slice, refilling a
// 32-bit internal word on demand. Reading past the end of data is
// undefined (the caller is trusted to stay within flag_bytes, per §4.1).
type BitReader struct {
	data  []byte
	pos   int
	state uint32
}

// NewBitReader returns a BitReader over data, starting at the sentinel
// state so the first ReadBit call triggers a refill.
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data, state: sentinelState}
}

// refill loads the next 4 bytes of data as a little-endian word, advancing
// the read position. Bytes beyond the slice are treated as zero so that a
// reader constructed over a short, trusted flag stream doesn't panic; the
// contract leaves this behavior undefined, this is simply the safest
// default.
func (b *BitReader) refill() uint32 {
	var w uint32
	for i := 0; i < 4; i++ {
		var by byte
		if b.pos+i < len(b.data) {
			by = b.data[b.pos+i]
		}
		w |= uint32(by) << uint(8*i)
	}
	b.pos += 4
	return w
}

// ReadBit returns the next bit of the stream, MSB-first.
func (b *BitReader) ReadBit() int {
	if b.state == sentinelState {
		word := b.refill()
		bit := int(word >> 31)
		b.state = (word << 1) | 1
		return bit
	}
	bit := int(b.state >> 31)
	b.state <<= 1
	return bit
}

// ReadBits reads n bits (n small; GBM only ever needs n<=2) and returns
// them as an unsigned integer formed MSB-first, identical to n consecutive
// ReadBit calls concatenated (§4.1, testable property 2).
func (b *BitReader) ReadBits(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		v = (v << 1) | b.ReadBit()
	}
	return v
}

// Read2Bits is an optimized two-bit read that avoids a refill when the
// current word already holds both bits, mirroring the source decoder's
// next_2bits fast path. It is behaviorally identical to ReadBits(2).
func (b *BitReader) Read2Bits() int {
	state := b.state

	// Fast path: sentinel sits below bit 30, so at least 2 data bits remain.
	if state&0x3FFFFFFF != 0 {
		b.state = state << 2
		return int(state >> 30)
	}

	// Medium path: sentinel at bit 30, exactly one data bit at bit 31.
	if state&(1<<30) != 0 {
		bit0 := int(state >> 31)
		word := b.refill()
		bit1 := int(word >> 31)
		b.state = (word << 1) | 1
		return (bit0 << 1) | bit1
	}

	// Slow path: sentinel at bit 31, no data bits available.
	word := b.refill()
	b.state = (word << 2) | 2
	return int(word >> 30)
}

/*
NAME
  frame.go

DESCRIPTION
  frame.go implements the GBM per-frame record parser and the recursive
  block-tree decoder it drives: 20x30 macroblocks of 8x8 pixels, each
  subdividing down to 1x1 granularity through 15 block-size decode
  functions (§3, §4.2, §4.3).

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

import "github.com/pkg/errors"

// Version identifies a GBM stream's XOR obfuscation key generation (§4.1).
type Version byte

const (
	Version4 Version = 4
	Version5 Version = 5
	Version6 Version = 6
)

// xorKey returns the value a version's obfuscated bit_enc field is XORed
// with to recover the true flag-stream length in bytes.
func (v Version) xorKey() (uint16, error) {
	switch v {
	case Version6:
		return 0xD669, nil
	case Version5:
		return 0xD6AC, nil
	case Version4:
		return 0x0000, nil
	default:
		return 0, errors.Errorf("video: unsupported GBM version %d", v)
	}
}

// macroblocksPerRow and macroblocksPerCol tile a frame into 8x8 blocks
// (§2: 240x160 = 30x20 macroblocks).
const (
	macroblocksPerRow = FrameWidth / 8
	macroblocksPerCol = FrameHeight / 8
)

// FrameHeader is the per-frame record preceding a frame's flag, palette
// and payload sub-streams (§4.1).
type FrameHeader struct {
	FrameLen     uint16 // bytes following this field: bitEnc+paletteBytes+substreams
	BitEnc       uint16 // obfuscated flag-stream byte count
	PaletteBytes uint16
	FlagBytes    uint16 // BitEnc deobfuscated
}

// ParseFrameHeader reads the 6-byte record at offset and deobfuscates its
// flag-stream length using version's XOR key.
func ParseFrameHeader(data []byte, offset int, version Version) (FrameHeader, error) {
	if offset+6 > len(data) {
		return FrameHeader{}, errors.Errorf("video: frame header at %d exceeds stream length %d", offset, len(data))
	}
	key, err := version.xorKey()
	if err != nil {
		return FrameHeader{}, err
	}
	h := FrameHeader{
		FrameLen:     uint16(data[offset]) | uint16(data[offset+1])<<8,
		BitEnc:       uint16(data[offset+2]) | uint16(data[offset+3])<<8,
		PaletteBytes: uint16(data[offset+4]) | uint16(data[offset+5])<<8,
	}
	h.FlagBytes = h.BitEnc ^ key
	return h, nil
}

// blockDecoder holds the three sub-stream cursors and destination/
// reference frame buffers threaded through one frame's recursive block
// tree (§4.2).
type blockDecoder struct {
	bits        *BitReader
	payload     []byte
	payloadPos  int
	palette     []byte
	palettePos  int
	dst, ref    []uint16
	blockOffset int // byte offset on the 480-byte stride, matches Codebook units
}

func (d *blockDecoder) readCode() byte {
	c := d.payload[d.payloadPos]
	d.payloadPos++
	return c
}

func (d *blockDecoder) readPaletteColor() uint16 {
	c := uint16(d.palette[d.palettePos]) | uint16(d.palette[d.palettePos+1])<<8
	d.palettePos += 2
	return c
}

// DecodeFrame decodes one frame record starting at offset in data into
// dst, predicting from ref (pass dst itself for intra prediction, per
// §3's "ref==dst for intra" convention), and returns the offset of the
// next frame record.
func DecodeFrame(data []byte, offset int, dst, ref []uint16, version Version) (int, error) {
	if len(dst) != FrameWidth*FrameHeight || len(ref) != FrameWidth*FrameHeight {
		return 0, errors.New("video: dst/ref must hold exactly FrameWidth*FrameHeight pixels")
	}
	h, err := ParseFrameHeader(data, offset, version)
	if err != nil {
		return 0, err
	}

	nextOffset := offset + 2 + int(h.FrameLen)
	flagStart := offset + 6
	flagEnd := flagStart + int(h.FlagBytes)
	palStart := flagEnd
	palEnd := palStart + int(h.PaletteBytes)
	if palEnd > len(data) || nextOffset > len(data) {
		return 0, errors.Errorf("video: frame at %d extends past stream length %d", offset, len(data))
	}

	d := &blockDecoder{
		bits:    NewBitReader(data[flagStart:flagEnd]),
		payload: data[palEnd:nextOffset],
		palette: data[palStart:palEnd],
		dst:     dst,
		ref:     ref,
	}

	for yBlock := 0; yBlock < macroblocksPerCol; yBlock++ {
		rowOffset := yBlock * 8 * rowBytes
		for xBlock := 0; xBlock < macroblocksPerRow; xBlock++ {
			d.blockOffset = rowOffset + xBlock*8*2
			d.decodeBlock8x8()
		}
	}

	return nextOffset, nil
}

func (d *blockDecoder) decodeBlock8x8() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 8, 8)
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 8)
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock8x4()
			d.decodeBlock8x4()
		} else {
			d.decodeBlock4x8()
			d.decodeBlock4x8()
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 8, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 8, 8, color)
		}
	}
}

func (d *blockDecoder) decodeBlock8x4() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 4, 8)
		d.blockOffset += 0x780
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 8)
		d.blockOffset += 0x780
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock8x2()
			d.decodeBlock8x2()
		} else {
			d.decodeBlock4x4()
			d.decodeBlock4x4()
			d.blockOffset += 0x770
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 8, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 4, 8, color)
		}
		d.blockOffset += 0x780
	}
}

func (d *blockDecoder) decodeBlock4x8() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 8, 4)
		d.blockOffset += 8
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 4)
		d.blockOffset += 8
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock4x4()
			d.blockOffset += 0x778
			d.decodeBlock4x4()
			d.blockOffset -= 0x780
		} else {
			d.decodeBlock2x8()
			d.decodeBlock2x8()
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 4, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 8, 4, color)
		}
		d.blockOffset += 8
	}
}

func (d *blockDecoder) decodeBlock2x8() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 8, 2)
		d.blockOffset += 4
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 2)
		d.blockOffset += 4
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock2x4()
			d.blockOffset += 0x77C
			d.decodeBlock2x4()
			d.blockOffset -= 0x780
		} else {
			d.decodeBlock1x8()
			d.decodeBlock1x8()
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 2, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 8, 2, color)
		}
		d.blockOffset += 4
	}
}

func (d *blockDecoder) decodeBlock1x8() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 8, 1)
		d.blockOffset += 2
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 1)
		d.blockOffset += 2
	case 2:
		d.decodeBlock1x4()
		d.blockOffset += 0x77E
		d.decodeBlock1x4()
		d.blockOffset -= 0x780
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 8, 1, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 8, 1, color)
		}
		d.blockOffset += 2
	}
}

func (d *blockDecoder) decodeBlock4x4() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 4, 4)
		d.blockOffset += 8
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 4)
		d.blockOffset += 8
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock4x2()
			d.blockOffset += 0x3B8
			d.decodeBlock4x2()
			d.blockOffset -= 0x3C0
		} else {
			d.decodeBlock2x4()
			d.decodeBlock2x4()
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 4, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 4, 4, color)
		}
		d.blockOffset += 8
	}
}

func (d *blockDecoder) decodeBlock8x2() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 2, 8)
		d.blockOffset += 0x3C0
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 8)
		d.blockOffset += 0x3C0
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock8x1()
			d.decodeBlock8x1()
		} else {
			d.decodeBlock4x2()
			d.decodeBlock4x2()
			d.blockOffset += 0x3B0
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 8, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 2, 8, color)
		}
		d.blockOffset += 0x3C0
	}
}

func (d *blockDecoder) decodeBlock2x4() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 4, 2)
		d.blockOffset += 4
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 2)
		d.blockOffset += 4
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock2x2()
			d.blockOffset += 0x3BC
			d.decodeBlock2x2()
			d.blockOffset -= 0x3C0
		} else {
			d.decodeBlock1x4()
			d.decodeBlock1x4()
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 2, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 4, 2, color)
		}
		d.blockOffset += 4
	}
}

func (d *blockDecoder) decodeBlock4x2() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 2, 4)
		d.blockOffset += 8
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 4)
		d.blockOffset += 8
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock4x1()
			d.blockOffset += 0x1D8
			d.decodeBlock4x1()
			d.blockOffset -= 0x1E0
		} else {
			d.decodeBlock2x2()
			d.decodeBlock2x2()
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 4, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 2, 4, color)
		}
		d.blockOffset += 8
	}
}

func (d *blockDecoder) decodeBlock8x1() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 1, 8)
		d.blockOffset += 0x1E0
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 1, 8)
		d.blockOffset += 0x1E0
	case 2:
		d.decodeBlock4x1()
		d.decodeBlock4x1()
		d.blockOffset += 0x1D0
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 1, 8, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 1, 8, color)
		}
		d.blockOffset += 0x1E0
	}
}

func (d *blockDecoder) decodeBlock1x4() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 4, 1)
		d.blockOffset += 2
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 1)
		d.blockOffset += 2
	case 2:
		d.decodeBlock1x2()
		d.blockOffset += 0x3BE
		d.decodeBlock1x2()
		d.blockOffset -= 0x3C0
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 4, 1, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 4, 1, color)
		}
		d.blockOffset += 2
	}
}

func (d *blockDecoder) decodeBlock2x2() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 2, 2)
		d.blockOffset += 4
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 2)
		d.blockOffset += 4
	case 2:
		if d.bits.ReadBit() == 0 {
			d.decodeBlock2x1()
			d.blockOffset += 0x1DC
			d.decodeBlock2x1()
			d.blockOffset -= 0x1E0
		} else {
			d.decodeBlock1x2()
			d.decodeBlock1x2()
		}
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 2, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 2, 2, color)
		}
		d.blockOffset += 4
	}
}

func (d *blockDecoder) decodeBlock4x1() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 1, 4)
		d.blockOffset += 8
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 1, 4)
		d.blockOffset += 8
	case 2:
		d.decodeBlock2x1()
		d.decodeBlock2x1()
	case 3:
		if d.bits.ReadBit() == 0 {
			code := d.readCode()
			color := int16(d.readPaletteColor())
			DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 1, 4, color)
		} else {
			color := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 1, 4, color)
		}
		d.blockOffset += 8
	}
}

// decodeBlock1x2 and decodeBlock2x1 are the tree's leaves: a single pixel
// column/row pair with no further subdivision, per §4.3's "only two block
// shapes bottom out the recursion" note.

func (d *blockDecoder) decodeBlock1x2() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 2, 1)
		d.blockOffset += 2
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 1)
		d.blockOffset += 2
	case 2:
		code := d.readCode()
		color := int16(d.readPaletteColor())
		DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 2, 1, color)
		d.blockOffset += 2
	case 3:
		if d.bits.ReadBit() == 0 {
			color0 := d.readPaletteColor()
			FillBlock(d.dst, d.blockOffset, 2, 1, color0)
		} else {
			color0 := d.readPaletteColor()
			color1 := d.readPaletteColor()
			p := pixelIndex(d.blockOffset)
			d.dst[p] = color0
			d.dst[p+FrameWidth] = color1
		}
		d.blockOffset += 2
	}
}

func (d *blockDecoder) decodeBlock2x1() {
	switch d.bits.Read2Bits() {
	case 0:
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset, 1, 2)
		d.blockOffset += 4
	case 1:
		code := d.readCode()
		CopyBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 1, 2)
		d.blockOffset += 4
	case 2:
		code := d.readCode()
		color := int16(d.readPaletteColor())
		DeltaBlock(d.dst, d.ref, d.blockOffset, d.blockOffset+int(Codebook[code]), 1, 2, color)
		d.blockOffset += 4
	case 3:
		if d.bits.ReadBit() == 0 {
			color0 := d.readPaletteColor()
			p := pixelIndex(d.blockOffset)
			d.dst[p] = color0
			d.dst[p+1] = color0
		} else {
			color0 := d.readPaletteColor()
			color1 := d.readPaletteColor()
			p := pixelIndex(d.blockOffset)
			d.dst[p] = color0
			d.dst[p+1] = color1
		}
		d.blockOffset += 4
	}
}

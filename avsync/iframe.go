/*
NAME
  iframe.go

DESCRIPTION
  iframe.go builds the per-minute I-frame offset table a Controller uses
  to snap video back in sync: a one-time scan of the GBM stream's frame
  records, recording the byte offset of every 600th frame (10 fps x 60 s,
  a minute boundary the source encoder guarantees is a full I-frame) (§3).

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

import "github.com/tinyreel/gbmplayer/video"

// FramesPerMinute is the video frame rate (10 fps) times 60 seconds: the
// frame index stride at which the encoder guarantees a full I-frame.
const FramesPerMinute = 600

// BuildIFrameTable walks every frame record in a GBM stream without
// decoding pixels, recording the byte offset of each minute boundary
// frame. The result indexes directly by minute number.
func BuildIFrameTable(gbmData []byte, version video.Version) ([]uint32, error) {
	var table []uint32
	offset := 0
	frameIndex := 0
	for offset < len(gbmData) {
		if frameIndex%FramesPerMinute == 0 {
			table = append(table, uint32(offset))
		}
		h, err := video.ParseFrameHeader(gbmData, offset, version)
		if err != nil {
			return nil, err
		}
		offset += 2 + int(h.FrameLen)
		frameIndex++
	}
	return table, nil
}

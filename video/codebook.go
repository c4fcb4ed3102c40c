/*
NAME
  codebook.go

DESCRIPTION
  codebook.go provides the 256-entry displacement codebook used by the GBM
  motion-copy and delta-add block operations (§3, §6). Every entry is
  a byte displacement of the form row_delta*480 + col_delta*2, laid out as
  16 row-major rows of 16 columns with row_delta, col_delta ranging -8..+7.

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

// rowBytes is the frame buffer's stride in bytes (240 pixels * 2 bytes).
const rowBytes = FrameWidth * 2

// Codebook holds the 256 signed displacements (in bytes, on the 480-byte
// stride buffer) that a codebook index selects for a motion-copy or
// delta-add block operation.
var Codebook = computeCodebook()

// computeCodebook builds the literal table from its row/column formula
// (§6) rather than hand-transcribing 256 numbers; TestCodebookDeterminism
// checks this against the literal values reproduced from the source
// material.
func computeCodebook() [256]int16 {
	var cb [256]int16
	for r := 0; r < 16; r++ {
		rowDelta := (r - 8) * rowBytes
		for c := 0; c < 16; c++ {
			colDelta := (c - 8) * 2
			cb[r*16+c] = int16(rowDelta + colDelta)
		}
	}
	return cb
}

// literalCodebook is the 256-entry table reproduced byte-for-byte from the
// source material, used only to prove computeCodebook's determinism.
var literalCodebook = [256]int16{
	-3856, -3854, -3852, -3850, -3848, -3846, -3844, -3842,
	-3840, -3838, -3836, -3834, -3832, -3830, -3828, -3826,
	-3376, -3374, -3372, -3370, -3368, -3366, -3364, -3362,
	-3360, -3358, -3356, -3354, -3352, -3350, -3348, -3346,
	-2896, -2894, -2892, -2890, -2888, -2886, -2884, -2882,
	-2880, -2878, -2876, -2874, -2872, -2870, -2868, -2866,
	-2416, -2414, -2412, -2410, -2408, -2406, -2404, -2402,
	-2400, -2398, -2396, -2394, -2392, -2390, -2388, -2386,
	-1936, -1934, -1932, -1930, -1928, -1926, -1924, -1922,
	-1920, -1918, -1916, -1914, -1912, -1910, -1908, -1906,
	-1456, -1454, -1452, -1450, -1448, -1446, -1444, -1442,
	-1440, -1438, -1436, -1434, -1432, -1430, -1428, -1426,
	-976, -974, -972, -970, -968, -966, -964, -962,
	-960, -958, -956, -954, -952, -950, -948, -946,
	-496, -494, -492, -490, -488, -486, -484, -482,
	-480, -478, -476, -474, -472, -470, -468, -466,
	-16, -14, -12, -10, -8, -6, -4, -2,
	0, 2, 4, 6, 8, 10, 12, 14,
	464, 466, 468, 470, 472, 474, 476, 478,
	480, 482, 484, 486, 488, 490, 492, 494,
	944, 946, 948, 950, 952, 954, 956, 958,
	960, 962, 964, 966, 968, 970, 972, 974,
	1424, 1426, 1428, 1430, 1432, 1434, 1436, 1438,
	1440, 1442, 1444, 1446, 1448, 1450, 1452, 1454,
	1904, 1906, 1908, 1910, 1912, 1914, 1916, 1918,
	1920, 1922, 1924, 1926, 1928, 1930, 1932, 1934,
	2384, 2386, 2388, 2390, 2392, 2394, 2396, 2398,
	2400, 2402, 2404, 2406, 2408, 2410, 2412, 2414,
	2864, 2866, 2868, 2870, 2872, 2874, 2876, 2878,
	2880, 2882, 2884, 2886, 2888, 2890, 2892, 2894,
	3344, 3346, 3348, 3350, 3352, 3354, 3356, 3358,
	3360, 3362, 3364, 3366, 3368, 3370, 3372, 3374,
}

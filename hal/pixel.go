package hal

// RGB565 packs 8-bit channels into a 5-6-5 pixel, dropping the low bits.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3
}

// rgb888From565 widens a 5-6-5 pixel by replicating the high bits into the
// low ones, so full scale maps to 255.
func rgb888From565(p uint16) (r, g, b uint8) {
	r5, g6, b5 := uint8(p>>11), uint8(p>>5)&0x3F, uint8(p)&0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// rgbaFrom565 expands little-endian RGB565 pixels into opaque RGBA.
func rgbaFrom565(dst, src []byte) {
	for len(src) >= 2 && len(dst) >= 4 {
		r, g, b := rgb888From565(uint16(src[0]) | uint16(src[1])<<8)
		dst[0], dst[1], dst[2], dst[3] = r, g, b, 0xFF
		src, dst = src[2:], dst[4:]
	}
}

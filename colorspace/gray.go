// Package colorspace converts interleaved color samples to gray.
package colorspace

// BT.601 luma weights in 14-bit fixed point, the same integer coefficients
// OpenCV uses for RGB2GRAY, so 8-bit results are bit-identical to it.
const (
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaShift = 14
	lumaRound = 1 << (lumaShift - 1)
)

// Luma reduces one RGB triplet to gray. The inputs may be 8- or 16-bit
// samples; the result has the same range as the inputs.
func Luma(r, g, b int) int {
	return (r*lumaR + g*lumaG + b*lumaB + lumaRound) >> lumaShift
}

// RGBToGray8 reduces interleaved 8-bit pixels with the given number of
// channels (3 or 4; a fourth alpha channel is dropped) to one gray byte per pixel.
func RGBToGray8(src []byte, channels int) []byte {
	numPixels := len(src) / channels
	gray := make([]byte, numPixels)

	for i := 0; i < numPixels; i++ {
		p := src[i*channels:]
		gray[i] = byte(Luma(int(p[0]), int(p[1]), int(p[2])))
	}

	return gray
}

// RGB16ToGray16 reduces interleaved little-endian 16-bit RGB pixels to
// little-endian 16-bit gray.
func RGB16ToGray16(src []byte) []byte {
	numPixels := len(src) / 6
	gray := make([]byte, numPixels*2)

	for i := 0; i < numPixels; i++ {
		p := src[i*6:]
		r := int(p[0]) | int(p[1])<<8
		g := int(p[2]) | int(p[3])<<8
		b := int(p[4]) | int(p[5])<<8
		v := Luma(r, g, b)
		gray[i*2] = byte(v)
		gray[i*2+1] = byte(v >> 8)
	}

	return gray
}

// Scale16To8 maps a 16-bit sample onto 8 bits with rounding.
func Scale16To8(v int) int {
	return (v*255 + 32767) / 65535
}

// Scale8To16 maps an 8-bit sample onto 16 bits, v*65535/255.
func Scale8To16(v int) int {
	return v * 257
}

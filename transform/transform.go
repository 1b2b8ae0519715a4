// Package transform implements the pure pixel transforms applied to decoded
// buffers: photometric inversion, bit-depth promotion, gray flattening and
// linear contrast/brightness. Every function returns a new buffer and leaves
// its input untouched.
package transform

import (
	"fmt"
	"math"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/colorspace"
	"github.com/cocosip/go-diconde/pixel"
)

// Invert replaces every channel value v of an 8-bit RGB buffer with 255-v.
func Invert(src *pixel.Buffer) (*pixel.Buffer, error) {
	if src.BitDepth != 8 || src.Channels != 3 {
		return nil, fmt.Errorf("%w: invert needs rgb8, got %s", codec.ErrInvalidShape, src.Format())
	}

	dst := &pixel.Buffer{
		Width:    src.Width,
		Height:   src.Height,
		BitDepth: 8,
		Channels: 3,
		Pix:      make([]byte, len(src.Pix)),
	}
	for i, v := range src.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst, nil
}

// PromoteTo16BitGrayscale rescales an 8-bit buffer to 16-bit gray with
// out = in*65535/255. Color input is first reduced with BT.601 luma; a fourth
// (alpha) channel is dropped.
func PromoteTo16BitGrayscale(src *pixel.Buffer) (*pixel.Buffer, error) {
	if src.BitDepth != 8 {
		return nil, fmt.Errorf("%w: promote needs an 8-bit buffer, got %s", codec.ErrUnsupportedFormat, src.Format())
	}

	var gray []byte
	switch src.Channels {
	case 1:
		gray = src.Pix
	case 3, 4:
		gray = colorspace.RGBToGray8(src.Pix, src.Channels)
	default:
		return nil, fmt.Errorf("%w: promote cannot handle %s", codec.ErrUnsupportedFormat, src.Format())
	}

	dst := &pixel.Buffer{
		Width:    src.Width,
		Height:   src.Height,
		BitDepth: 16,
		Channels: 1,
		Pix:      make([]byte, len(gray)*2),
	}
	for i, v := range gray {
		w := colorspace.Scale8To16(int(v))
		dst.Pix[i*2] = byte(w)
		dst.Pix[i*2+1] = byte(w >> 8)
	}
	return dst, nil
}

// FlattenToGray8 reduces any buffer to 8-bit gray. 16-bit samples are
// rescaled to 8 bits, color is reduced with BT.601 luma and alpha is dropped.
// An empty buffer stays empty.
func FlattenToGray8(src *pixel.Buffer) *pixel.Buffer {
	if src.IsEmpty() {
		return pixel.Empty()
	}

	eight := src
	if src.BitDepth == 16 {
		eight = &pixel.Buffer{
			Width:    src.Width,
			Height:   src.Height,
			BitDepth: 8,
			Channels: src.Channels,
			Pix:      make([]byte, src.Len()),
		}
		for i := range eight.Pix {
			eight.Pix[i] = byte(colorspace.Scale16To8(src.Sample(i)))
		}
	}

	if eight.Channels == 1 {
		if eight == src {
			return src.Clone()
		}
		return eight
	}

	return &pixel.Buffer{
		Width:    src.Width,
		Height:   src.Height,
		BitDepth: 8,
		Channels: 1,
		Pix:      colorspace.RGBToGray8(eight.Pix, eight.Channels),
	}
}

// Coerce16BitGrayscale returns a 16-bit gray copy of src, the shape the RAW,
// DICOM and TIFF writers store. 16-bit gray input is cloned, 8-bit input is
// promoted and 16-bit color is reduced with luma at full depth.
func Coerce16BitGrayscale(src *pixel.Buffer) (*pixel.Buffer, error) {
	switch {
	case src.IsEmpty():
		return nil, fmt.Errorf("%w: empty buffer", codec.ErrUnsupportedFormat)
	case src.BitDepth == 16 && src.Channels == 1:
		return src.Clone(), nil
	case src.BitDepth == 16 && src.Channels == 3:
		return &pixel.Buffer{
			Width:    src.Width,
			Height:   src.Height,
			BitDepth: 16,
			Channels: 1,
			Pix:      colorspace.RGB16ToGray16(src.Pix),
		}, nil
	default:
		return PromoteTo16BitGrayscale(src)
	}
}

// ApplyContrastBrightness computes clamp(round(v*factor + offset), 0, max)
// for every sample, where max is 255 or 65535 by bit depth. factor 1 and
// offset 0 reproduce the input exactly.
func ApplyContrastBrightness(src *pixel.Buffer, factor float64, offset int) (*pixel.Buffer, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("%w: contrast factor %v", codec.ErrInvalidParameter, factor)
	}

	dst := &pixel.Buffer{
		Width:    src.Width,
		Height:   src.Height,
		BitDepth: src.BitDepth,
		Channels: src.Channels,
		Pix:      make([]byte, len(src.Pix)),
	}

	off := float64(offset)
	if src.BitDepth == 16 {
		for i := 0; i+1 < len(src.Pix); i += 2 {
			v := float64(uint16(src.Pix[i]) | uint16(src.Pix[i+1])<<8)
			out := clamp(math.Round(v*factor+off), 0xFFFF)
			dst.Pix[i] = byte(out)
			dst.Pix[i+1] = byte(out >> 8)
		}
		return dst, nil
	}

	for i, v := range src.Pix {
		dst.Pix[i] = byte(clamp(math.Round(float64(v)*factor+off), 0xFF))
	}
	return dst, nil
}

func clamp(v float64, ceil int) int {
	if v <= 0 {
		return 0
	}
	if v >= float64(ceil) {
		return ceil
	}
	return int(v)
}

// Package raster bridges pixel buffers to the standard image types and
// provides the PNG, JPEG, BMP and TIFF container codecs.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/colorspace"
	"github.com/cocosip/go-diconde/pixel"
)

// ToImage wraps a copy of b in the matching image type: gray8 becomes
// *image.Gray, gray16 *image.Gray16, rgb8 an opaque *image.RGBA, rgba8
// *image.NRGBA and rgb16 an opaque *image.RGBA64.
func ToImage(b *pixel.Buffer) (image.Image, error) {
	if b.IsEmpty() {
		return nil, fmt.Errorf("%w: empty image", codec.ErrUnsupportedFormat)
	}
	rect := image.Rect(0, 0, b.Width, b.Height)
	n := b.Width * b.Height

	switch {
	case b.BitDepth == 8 && b.Channels == 1:
		img := image.NewGray(rect)
		copy(img.Pix, b.Pix)
		return img, nil

	case b.BitDepth == 16 && b.Channels == 1:
		img := image.NewGray16(rect)
		for i := 0; i < n; i++ {
			// image.Gray16 is big-endian.
			img.Pix[i*2] = b.Pix[i*2+1]
			img.Pix[i*2+1] = b.Pix[i*2]
		}
		return img, nil

	case b.BitDepth == 8 && b.Channels == 3:
		img := image.NewRGBA(rect)
		for i := 0; i < n; i++ {
			copy(img.Pix[i*4:i*4+3], b.Pix[i*3:i*3+3])
			img.Pix[i*4+3] = 0xFF
		}
		return img, nil

	case b.BitDepth == 8 && b.Channels == 4:
		img := image.NewNRGBA(rect)
		copy(img.Pix, b.Pix)
		return img, nil

	case b.BitDepth == 16 && b.Channels == 3:
		img := image.NewRGBA64(rect)
		for i := 0; i < n; i++ {
			for c := 0; c < 3; c++ {
				v := b.Sample(i*3 + c)
				img.Pix[i*8+c*2] = byte(v >> 8)
				img.Pix[i*8+c*2+1] = byte(v)
			}
			img.Pix[i*8+6] = 0xFF
			img.Pix[i*8+7] = 0xFF
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedFormat, b.Format())
}

// FromImage copies img into a buffer. Gray images keep their depth; 8-bit
// color becomes rgb8, or rgba8 when any pixel is translucent; 16-bit color
// becomes rgb16 with alpha dropped. Paletted images with a gray palette
// become gray8. Other color models are converted through color.NRGBAModel.
func FromImage(img image.Image) (*pixel.Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		out, err := pixel.New(w, h, 8, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(out.Pix[y*w:(y+1)*w], src.Pix[off:off+w])
		}
		return out, nil

	case *image.Gray16:
		out, err := pixel.New(w, h, 16, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := 0; x < w; x++ {
				out.SetSample(y*w+x, int(src.Pix[off+x*2])<<8|int(src.Pix[off+x*2+1]))
			}
		}
		return out, nil

	case *image.RGBA64, *image.NRGBA64:
		out, err := pixel.New(w, h, 16, 3)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
				i := (y*w + x) * 3
				out.SetSample(i, int(c.R))
				out.SetSample(i+1, int(c.G))
				out.SetSample(i+2, int(c.B))
			}
		}
		return out, nil

	case *image.Paletted:
		if levels, ok := grayPalette(src.Palette); ok {
			out, err := pixel.New(w, h, 8, 1)
			if err != nil {
				return nil, err
			}
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					out.Pix[y*w+x] = levels[src.ColorIndexAt(bounds.Min.X+x, bounds.Min.Y+y)]
				}
			}
			return out, nil
		}
	}

	return fromNRGBA(img, w, h)
}

// grayPalette reports whether every entry of p is an opaque gray, which is how
// 8-bit gray images come back from BMP.
func grayPalette(p color.Palette) ([256]byte, bool) {
	var levels [256]byte
	if len(p) > len(levels) {
		return levels, false
	}
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		if n.A != 0xFF || n.R != n.G || n.G != n.B {
			return levels, false
		}
		levels[i] = n.R
	}
	return levels, true
}

func fromNRGBA(img image.Image, w, h int) (*pixel.Buffer, error) {
	bounds := img.Bounds()
	rgba := make([]byte, 0, w*h*4)
	opaque := true
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			if c.A != 0xFF {
				opaque = false
			}
			rgba = append(rgba, c.R, c.G, c.B, c.A)
		}
	}

	if !opaque {
		return pixel.FromBytes(w, h, 8, 4, rgba)
	}
	rgb := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		copy(rgb[i*3:i*3+3], rgba[i*4:i*4+3])
	}
	return pixel.FromBytes(w, h, 8, 3, rgb)
}

// to8Bit reduces 16-bit buffers for containers that only hold 8-bit samples.
// Samples are rescaled with rounding; the channel count is kept.
func to8Bit(b *pixel.Buffer) *pixel.Buffer {
	if b.BitDepth == 8 {
		return b
	}
	out := &pixel.Buffer{
		Width:    b.Width,
		Height:   b.Height,
		BitDepth: 8,
		Channels: b.Channels,
		Pix:      make([]byte, b.Len()),
	}
	for i := range out.Pix {
		out.Pix[i] = byte(colorspace.Scale16To8(b.Sample(i)))
	}
	return out
}

// Package pixel holds the normalized in-memory image every container codec
// decodes into and every transform operates on.
package pixel

import (
	"bytes"
	"errors"
	"fmt"
)

// MaxDimension is the largest width or height a buffer may have. Both the RAW
// header and the DICOM Rows/Columns attributes are 16-bit fields.
const MaxDimension = 65535

var (
	// ErrInvalidDimensions is returned when width or height is outside [1, MaxDimension]
	ErrInvalidDimensions = errors.New("invalid image dimensions")

	// ErrInvalidBitDepth is returned when the bit depth is neither 8 nor 16
	ErrInvalidBitDepth = errors.New("invalid bit depth")

	// ErrInvalidChannels is returned for an unsupported channel count or a 16-bit RGBA request
	ErrInvalidChannels = errors.New("invalid number of channels")

	// ErrSizeMismatch is returned when the sample bytes do not match the dimensions
	ErrSizeMismatch = errors.New("sample buffer size does not match dimensions")
)

// Buffer is a tightly packed, row-major image.
//
// Samples are interleaved per pixel (R, G, B[, A] for color buffers). 16-bit
// samples are stored little-endian, two bytes per sample.
type Buffer struct {
	Width    int
	Height   int
	BitDepth int // 8 or 16
	Channels int // 1 (gray), 3 (RGB) or 4 (RGBA, 8-bit only)
	Pix      []byte
}

// New allocates a zeroed buffer.
func New(width, height, bitDepth, channels int) (*Buffer, error) {
	if err := validate(width, height, bitDepth, channels); err != nil {
		return nil, err
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
		Channels: channels,
		Pix:      make([]byte, width*height*channels*bitDepth/8),
	}, nil
}

// FromBytes wraps pix without copying. The length of pix must match the
// shape exactly.
func FromBytes(width, height, bitDepth, channels int, pix []byte) (*Buffer, error) {
	if err := validate(width, height, bitDepth, channels); err != nil {
		return nil, err
	}
	want := width * height * channels * bitDepth / 8
	if len(pix) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(pix), want)
	}
	return &Buffer{Width: width, Height: height, BitDepth: bitDepth, Channels: channels, Pix: pix}, nil
}

// FromUint16 builds a 16-bit buffer from native samples.
func FromUint16(width, height, channels int, samples []uint16) (*Buffer, error) {
	b, err := New(width, height, 16, channels)
	if err != nil {
		return nil, err
	}
	if len(samples) != b.Len() {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrSizeMismatch, len(samples), b.Len())
	}
	for i, v := range samples {
		b.Pix[i*2] = byte(v)
		b.Pix[i*2+1] = byte(v >> 8)
	}
	return b, nil
}

// Empty returns the zero-sized buffer used when a decode path has nothing to
// render.
func Empty() *Buffer {
	return &Buffer{BitDepth: 8, Channels: 1, Pix: []byte{}}
}

func validate(width, height, bitDepth, channels int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if bitDepth != 8 && bitDepth != 16 {
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}
	switch channels {
	case 1, 3:
	case 4:
		if bitDepth != 8 {
			return fmt.Errorf("%w: %d channels at %d bits", ErrInvalidChannels, channels, bitDepth)
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	return nil
}

// IsEmpty reports whether the buffer carries no pixels.
func (b *Buffer) IsEmpty() bool {
	return b == nil || b.Width == 0 || b.Height == 0
}

// Len returns the number of samples (pixels times channels).
func (b *Buffer) Len() int {
	return b.Width * b.Height * b.Channels
}

// BytesPerSample is 1 for 8-bit buffers and 2 for 16-bit buffers.
func (b *Buffer) BytesPerSample() int {
	return b.BitDepth / 8
}

// Stride returns the number of bytes in one row.
func (b *Buffer) Stride() int {
	return b.Width * b.Channels * b.BytesPerSample()
}

// MaxValue is the largest representable sample value.
func (b *Buffer) MaxValue() int {
	if b.BitDepth == 16 {
		return 0xFFFF
	}
	return 0xFF
}

// IsGray reports whether the buffer has a single channel.
func (b *Buffer) IsGray() bool {
	return b.Channels == 1
}

// Sample returns the i-th sample in storage order.
func (b *Buffer) Sample(i int) int {
	if b.BitDepth == 16 {
		return int(uint16(b.Pix[i*2]) | uint16(b.Pix[i*2+1])<<8)
	}
	return int(b.Pix[i])
}

// SetSample stores v as the i-th sample. v is truncated to the bit depth.
func (b *Buffer) SetSample(i, v int) {
	if b.BitDepth == 16 {
		b.Pix[i*2] = byte(v)
		b.Pix[i*2+1] = byte(v >> 8)
		return
	}
	b.Pix[i] = byte(v)
}

// At returns channel c of the pixel at (x, y).
func (b *Buffer) At(x, y, c int) int {
	return b.Sample((y*b.Width+x)*b.Channels + c)
}

// Set stores channel c of the pixel at (x, y).
func (b *Buffer) Set(x, y, c, v int) {
	b.SetSample((y*b.Width+x)*b.Channels+c, v)
}

// Uint16s copies the samples of a 16-bit buffer out as native integers.
func (b *Buffer) Uint16s() []uint16 {
	out := make([]uint16, b.Len())
	for i := range out {
		out[i] = uint16(b.Sample(i))
	}
	return out
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = append([]byte(nil), b.Pix...)
	return &c
}

// Equal reports whether both buffers have the same shape and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Width == o.Width && b.Height == o.Height &&
		b.BitDepth == o.BitDepth && b.Channels == o.Channels &&
		bytes.Equal(b.Pix, o.Pix)
}

// Format names the shape, e.g. "gray16" or "rgb8".
func (b *Buffer) Format() string {
	var name string
	switch b.Channels {
	case 1:
		name = "gray"
	case 3:
		name = "rgb"
	case 4:
		name = "rgba"
	default:
		name = fmt.Sprintf("c%d-", b.Channels)
	}
	return fmt.Sprintf("%s%d", name, b.BitDepth)
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%dx%d %s", b.Width, b.Height, b.Format())
}

package raster

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/gen2brain/jpegn"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
)

var _ codec.Codec = (*Codec)(nil)

// Codec stores a buffer in a plain raster container. Raster containers carry
// no tags: decoding yields an empty map and encoding ignores the map.
type Codec struct {
	name       string
	extensions []string
	decode     func(io.Reader) (image.Image, error)
	encode     func(io.Writer, *pixel.Buffer, codec.Options) error
}

// Name returns the codec name
func (c *Codec) Name() string {
	return c.name
}

// Extensions returns the file extensions handled
func (c *Codec) Extensions() []string {
	return c.extensions
}

// Decode decodes a raster file
func (c *Codec) Decode(path string) (*codec.DecodeResult, error) {
	img, err := decodeFile(path, c.decode)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Tags: tags.New()}, nil
}

// Encode encodes params.Image to a raster file
func (c *Codec) Encode(params codec.EncodeParams) error {
	if params.Options != nil {
		if err := params.Options.Validate(); err != nil {
			return err
		}
	}
	if params.Image.IsEmpty() {
		return fmt.Errorf("%w: empty image", codec.ErrUnsupportedFormat)
	}
	return encodeFile(params.Path, func(w io.Writer) error {
		return c.encode(w, params.Image, params.Options)
	})
}

// NewPNGCodec creates the PNG codec. PNG keeps 16-bit samples.
func NewPNGCodec() *Codec {
	return &Codec{
		name:       "png",
		extensions: []string{".png"},
		decode:     png.Decode,
		encode: func(w io.Writer, b *pixel.Buffer, _ codec.Options) error {
			img, err := ToImage(b)
			if err != nil {
				return err
			}
			return png.Encode(w, img)
		},
	}
}

// NewJPEGCodec creates the JPEG codec. 16-bit buffers are reduced to 8 bits
// before encoding.
func NewJPEGCodec() *Codec {
	return &Codec{
		name:       "jpeg",
		extensions: []string{".jpg", ".jpeg"},
		decode: func(r io.Reader) (image.Image, error) {
			return jpegn.Decode(r, &jpegn.Options{UpsampleMethod: jpegn.CatmullRom})
		},
		encode: func(w io.Writer, b *pixel.Buffer, opts codec.Options) error {
			img, err := ToImage(to8Bit(b))
			if err != nil {
				return err
			}
			return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(opts)})
		},
	}
}

// NewBMPCodec creates the BMP codec. 16-bit buffers are reduced to 8 bits
// before encoding.
func NewBMPCodec() *Codec {
	return &Codec{
		name:       "bmp",
		extensions: []string{".bmp"},
		decode:     bmp.Decode,
		encode: func(w io.Writer, b *pixel.Buffer, _ codec.Options) error {
			img, err := ToImage(to8Bit(b))
			if err != nil {
				return err
			}
			return bmp.Encode(w, img)
		},
	}
}

func decodeFile(path string, decode func(io.Reader) (image.Image, error)) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrFileOpen, err)
	}
	defer f.Close()

	img, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", codec.ErrUnsupportedFormat, path, err)
	}
	buf, err := FromImage(img)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("path", path).Stringer("image", buf).Msg("decoded raster image")
	return buf, nil
}

func encodeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", codec.ErrFileOpen, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := encode(w); err != nil {
		return err
	}
	return w.Flush()
}

func init() {
	codec.Register(NewPNGCodec())
	codec.Register(NewJPEGCodec())
	codec.Register(NewBMPCodec())
	codec.Register(NewTIFFCodec())
}

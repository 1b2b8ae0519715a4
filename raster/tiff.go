package raster

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/tiff"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
)

// SidecarSuffix is appended to a TIFF path to name the file holding its tags.
const SidecarSuffix = ".tags.json"

var (
	_ codec.Codec       = (*TIFFCodec)(nil)
	_ codec.Constrained = (*TIFFCodec)(nil)
)

// TIFFCodec stores images as TIFF and their tags in a JSON sidecar file.
type TIFFCodec struct{}

// NewTIFFCodec creates the TIFF codec
func NewTIFFCodec() *TIFFCodec {
	return &TIFFCodec{}
}

// Name returns the codec name
func (c *TIFFCodec) Name() string {
	return "tiff"
}

// Extensions returns the file extensions handled
func (c *TIFFCodec) Extensions() []string {
	return []string{".tif", ".tiff"}
}

// Requires reports the shape files are written in
func (c *TIFFCodec) Requires() codec.Requirement {
	return codec.Gray16
}

// Decode decodes a TIFF file and its sidecar
func (c *TIFFCodec) Decode(path string) (*codec.DecodeResult, error) {
	img, t, err := LoadTIFFWithTags(path)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Tags: t}, nil
}

// Encode encodes params.Image to a TIFF file and its sidecar
func (c *TIFFCodec) Encode(params codec.EncodeParams) error {
	var opts *TIFFOptions
	switch o := params.Options.(type) {
	case nil:
	case *TIFFOptions:
		opts = o
	default:
		return fmt.Errorf("%w: tiff options have type %T", codec.ErrInvalidParameter, params.Options)
	}
	return saveTIFF(params.Image, params.Path, params.Tags, opts)
}

// LoadTIFFWithTags reads a TIFF image and the tag map stored next to it. A
// missing sidecar yields an empty map; an unreadable one is logged and
// ignored.
func LoadTIFFWithTags(path string) (*pixel.Buffer, tags.Map, error) {
	img, err := decodeFile(path, tiff.Decode)
	if err != nil {
		return nil, nil, err
	}

	t, err := readSidecar(path + SidecarSuffix)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring tiff tag sidecar")
		t = tags.New()
	}
	return img, t, nil
}

// SaveTIFFWithTags writes img as TIFF and t to the sidecar.
func SaveTIFFWithTags(img *pixel.Buffer, path string, t tags.Map) error {
	return saveTIFF(img, path, t, nil)
}

func saveTIFF(img *pixel.Buffer, path string, t tags.Map, opts *TIFFOptions) error {
	src, err := ToImage(img)
	if err != nil {
		return err
	}

	to := &tiff.Options{Compression: tiff.Uncompressed}
	if opts != nil && opts.Deflate {
		to.Compression = tiff.Deflate
	}
	if err := encodeFile(path, func(w io.Writer) error {
		return tiff.Encode(w, src, to)
	}); err != nil {
		return err
	}

	meta, err := t.Clone().MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path+SidecarSuffix, meta, 0o644); err != nil {
		return fmt.Errorf("%w: %w", codec.ErrFileOpen, err)
	}

	log.Debug().Str("path", path).Stringer("image", img).Int("tags", len(t)).Msg("encoded tiff image")
	return nil
}

func readSidecar(path string) (tags.Map, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return tags.New(), nil
	}
	if err != nil {
		return nil, err
	}
	t, err := tags.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrCorruptTrailer, err)
	}
	return t, nil
}

package raster

import (
	"github.com/cocosip/go-diconde/codec"
)

// DefaultJPEGQuality is used when no quality is given.
const DefaultJPEGQuality = 90

var (
	_ codec.Options = (*JPEGOptions)(nil)
	_ codec.Options = (*TIFFOptions)(nil)
)

// JPEGOptions contains options for JPEG encoding
type JPEGOptions struct {
	codec.BaseOptions
}

// Validate checks if the options are valid
func (o *JPEGOptions) Validate() error {
	return o.BaseOptions.Validate()
}

// TIFFOptions contains options for TIFF encoding
type TIFFOptions struct {
	// Deflate compresses strips with zlib; otherwise strips are stored raw
	Deflate bool
}

// Validate checks if the options are valid
func (o *TIFFOptions) Validate() error {
	return nil
}

func jpegQuality(opts codec.Options) int {
	var q int
	switch o := opts.(type) {
	case *JPEGOptions:
		q = o.Quality
	case *codec.BaseOptions:
		q = o.Quality
	}
	if q == 0 {
		return DefaultJPEGQuality
	}
	return q
}

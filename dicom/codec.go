// Package dicom reads and writes the DICONDE subset of DICOM: a fixed set of
// descriptive and image attributes plus uncompressed pixel data.
//
// Decoding extracts the tag set with github.com/suyashkumar/dicom and
// decodes pixels through the transfer-syntax-aware image model of
// github.com/cocosip/go-dicom. Encoding writes explicit VR little endian
// Secondary Capture files.
package dicom

import (
	"fmt"

	"github.com/cocosip/go-diconde/codec"
)

var (
	_ codec.Codec       = (*Codec)(nil)
	_ codec.Constrained = (*Codec)(nil)
)

// Codec adapts Decode and Encode to the codec registry.
type Codec struct{}

// NewCodec creates a DICOM codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the codec name
func (c *Codec) Name() string {
	return "dicom"
}

// Extensions returns the file extensions handled
func (c *Codec) Extensions() []string {
	return []string{".dcm", ".dicom"}
}

// Requires reports the shape files are written in
func (c *Codec) Requires() codec.Requirement {
	return codec.Gray16
}

// Decode decodes a DICOM file
func (c *Codec) Decode(path string) (*codec.DecodeResult, error) {
	img, t, info, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Tags: t, Info: info}, nil
}

// Encode encodes params.Image to a DICOM file
func (c *Codec) Encode(params codec.EncodeParams) error {
	var opts *Options
	switch o := params.Options.(type) {
	case nil:
	case *Options:
		opts = o
	default:
		return fmt.Errorf("%w: dicom options have type %T", codec.ErrInvalidParameter, params.Options)
	}
	return EncodeWithOptions(params.Image, params.Path, params.Tags, opts)
}

func init() {
	codec.Register(NewCodec())
}

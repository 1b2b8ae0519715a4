// Package raw implements the length-trailer RAW container: a 4-byte
// little-endian height/width header, the 16-bit gray samples, a compact JSON
// tag object and a trailing uint32 holding the JSON length.
package raw

import (
	"github.com/cocosip/go-diconde/codec"
)

var (
	_ codec.Codec       = (*Codec)(nil)
	_ codec.Constrained = (*Codec)(nil)
)

// Codec adapts Decode and Encode to the codec registry.
type Codec struct{}

// NewCodec creates a RAW codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the codec name
func (c *Codec) Name() string {
	return "raw"
}

// Extensions returns the file extensions handled
func (c *Codec) Extensions() []string {
	return []string{".raw"}
}

// Requires reports that only 16-bit gray buffers can be stored
func (c *Codec) Requires() codec.Requirement {
	return codec.Gray16
}

// Decode decodes a RAW file
func (c *Codec) Decode(path string) (*codec.DecodeResult, error) {
	img, t, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{Image: img, Tags: t}, nil
}

// Encode encodes params.Image to a RAW file
func (c *Codec) Encode(params codec.EncodeParams) error {
	if params.Options != nil {
		if err := params.Options.Validate(); err != nil {
			return err
		}
	}
	return Encode(params.Image, params.Path, params.Tags)
}

func init() {
	codec.Register(NewCodec())
}

package codec

import (
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
)

// Codec is the universal interface for all image container codecs
type Codec interface {
	// Decode reads the container at path
	Decode(path string) (*DecodeResult, error)

	// Encode writes params.Image and params.Tags to params.Path
	Encode(params EncodeParams) error

	// Name returns a human-readable name
	Name() string

	// Extensions returns the file extensions handled, lower-case with a leading dot
	Extensions() []string
}

// EncodeParams contains parameters for encoding
type EncodeParams struct {
	Image   *pixel.Buffer // Pixels to write
	Tags    tags.Map      // Metadata to write, may be nil
	Path    string        // Destination file
	Options Options       // Codec-specific options
}

// Options is an interface for codec-specific encoding options
type Options interface {
	// Validate checks if the options are valid
	Validate() error
}

// DecodeResult contains the result of decoding
type DecodeResult struct {
	Image *pixel.Buffer // Decoded pixels
	Tags  tags.Map      // Decoded metadata, never nil
	Info  string        // Human-readable diagnostic text, may be empty
}

// Requirement describes the buffer shape a codec can store. Callers that
// hold an arbitrary buffer coerce it before calling Encode.
type Requirement int

const (
	// AnyShape means the codec stores the buffer as given.
	AnyShape Requirement = iota
	// Gray16 means the codec only stores 16-bit single-channel buffers.
	Gray16
)

// Constrained is implemented by codecs that only accept a specific shape.
type Constrained interface {
	Requires() Requirement
}

// RequirementOf reports the shape c needs.
func RequirementOf(c Codec) Requirement {
	if cc, ok := c.(Constrained); ok {
		return cc.Requires()
	}
	return AnyShape
}

// BaseOptions provides common options for all codecs
type BaseOptions struct {
	// Quality factor for lossy codecs (1-100, higher is better)
	// Zero selects the codec default; not used for lossless codecs
	Quality int
}

// Validate validates base options
func (o *BaseOptions) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return ErrInvalidQuality
	}
	return nil
}

package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a codec is not found in the registry
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter is returned when encoding/decoding parameters are invalid
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidQuality is returned when quality parameter is invalid
	ErrInvalidQuality = errors.New("invalid quality (must be 1-100)")

	// ErrUnsupportedFormat is returned when a buffer or file format is not supported
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidShape is returned when a transform receives a buffer shape it is not defined for
	ErrInvalidShape = errors.New("invalid buffer shape")

	// ErrFileOpen is returned when a path cannot be opened for reading or writing
	ErrFileOpen = errors.New("cannot open file")

	// ErrTruncatedFile is returned when a file ends inside a mandatory block
	ErrTruncatedFile = errors.New("truncated file")

	// ErrCorruptTrailer marks unusable trailing metadata. Decoders log it and
	// continue with an empty tag map rather than returning it.
	ErrCorruptTrailer = errors.New("corrupt metadata trailer")

	// ErrDicomLoad is returned when a DICOM dataset cannot be parsed
	ErrDicomLoad = errors.New("cannot load DICOM dataset")
)

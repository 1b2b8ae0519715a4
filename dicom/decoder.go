package dicom

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
)

const infoHeader = "DICOM file information:\n"

// Decode reads a DICOM file in two phases: the fixed tag set is extracted
// first, then the pixel data is decoded using the image attributes found
// there. The returned text is a human-readable summary on success and the
// failure message otherwise.
func Decode(path string) (*pixel.Buffer, tags.Map, string, error) {
	t, meta, err := extractTags(path)
	if err != nil {
		info := "Error: failed to load DICONDE file: " + err.Error()
		if errors.Is(err, codec.ErrFileOpen) {
			return nil, nil, info, err
		}
		return nil, nil, info, fmt.Errorf("%w: %w", codec.ErrDicomLoad, err)
	}
	info := infoHeader + t.String()

	obj, err := openImage(path, meta)
	if err != nil {
		info = "Error: failed to create image object: " + err.Error()
		if errors.Is(err, codec.ErrUnsupportedFormat) {
			return nil, nil, info, err
		}
		return nil, nil, info, fmt.Errorf("%w: %w", codec.ErrDicomLoad, err)
	}

	img, err := decodePixels(obj, meta)
	if err != nil {
		return nil, nil, info, err
	}

	log.Debug().
		Str("path", path).
		Stringer("image", img).
		Str("photometric", meta.PhotometricInterpretation).
		Int("bits_allocated", meta.BitsAllocated).
		Int("bits_stored", meta.BitsStored).
		Msg("decoded dicom image")

	return img, t, info, nil
}

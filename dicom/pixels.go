package dicom

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	ctag "github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/imaging"
	"github.com/rs/zerolog/log"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/transform"
)

// imageObject is the transfer-syntax-aware view of a file's pixel data.
type imageObject struct {
	samplesPerPixel int

	// frame is the first frame in native layout; element is the PixelData
	// value as stored. frame falls back to element when the image model
	// cannot produce it.
	frame   []byte
	element []byte
}

// openImage loads the dataset with its pixel data. The image model is only
// consulted when the stored element can hold the frame meta describes.
func openImage(path string, meta ImageMetadata) (*imageObject, error) {
	res, err := parser.ParseFile(path, parser.WithReadOption(parser.ReadAll))
	if err != nil {
		return nil, err
	}
	if res.TransferSyntax != nil && res.TransferSyntax.IsEncapsulated() {
		return nil, fmt.Errorf("%w: encapsulated transfer syntax", codec.ErrUnsupportedFormat)
	}
	ds := res.Dataset

	pdElem, ok := ds.Get(ctag.PixelData)
	if !ok {
		return nil, fmt.Errorf("dataset has no pixel data")
	}
	var stored []byte
	switch v := pdElem.(type) {
	case *element.OtherByte:
		stored = v.GetData()
	case *element.OtherWord:
		stored = v.GetData()
	default:
		return nil, fmt.Errorf("unexpected pixel data element %T", pdElem)
	}

	obj := &imageObject{
		samplesPerPixel: int(ds.TryGetUInt16(ctag.SamplesPerPixel, 0)),
		frame:           stored,
		element:         stored,
	}

	if !meta.fits(len(stored), obj.samplesPerPixel) {
		return obj, nil
	}
	pd, err := imaging.CreatePixelData(ds)
	if err == nil && pd.FrameCount() > 0 {
		if frame, ferr := pd.GetFrame(0); ferr == nil {
			obj.frame = frame
		} else {
			err = ferr
		}
	}
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("using stored pixel data element")
	}
	return obj, nil
}

// decodePixels turns the image object into a buffer according to meta.
func decodePixels(img *imageObject, meta ImageMetadata) (*pixel.Buffer, error) {
	if meta.Width <= 0 || meta.Height <= 0 {
		log.Warn().Int("width", meta.Width).Int("height", meta.Height).Msg("dicom image has no extent")
		return pixel.Empty(), nil
	}
	if meta.Width > pixel.MaxDimension || meta.Height > pixel.MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d dicom image", codec.ErrUnsupportedFormat, meta.Width, meta.Height)
	}
	if meta.IsMonochrome() {
		return decodeMonochrome(img.frame, meta)
	}
	return decodeColor(img.element, img.samplesPerPixel, meta)
}

func decodeMonochrome(data []byte, meta ImageMetadata) (*pixel.Buffer, error) {
	n := meta.pixels()

	switch {
	case meta.BitsAllocated == 16 && meta.BitsStored <= 12:
		if err := need(data, n*2); err != nil {
			return nil, err
		}
		// Stored bits are moved to the top of the word, not rescaled.
		shift := uint(16 - meta.BitsStored)
		out, err := pixel.New(meta.Width, meta.Height, 16, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", codec.ErrUnsupportedFormat, err)
		}
		for i := 0; i < n; i++ {
			v := uint16(data[i*2]) | uint16(data[i*2+1])<<8
			out.SetSample(i, int(v<<shift))
		}
		return out, nil

	case meta.HasStandardPolarity():
		return render8(data, meta)

	default:
		log.Warn().
			Int("bits_allocated", meta.BitsAllocated).
			Int("bits_stored", meta.BitsStored).
			Str("photometric", meta.PhotometricInterpretation).
			Msg("unsupported monochrome layout, returning empty image")
		return pixel.Empty(), nil
	}
}

// render8 produces the 8-bit gray rendering of a MONOCHROME1/2 frame.
// MONOCHROME1 is not inverted.
func render8(data []byte, meta ImageMetadata) (*pixel.Buffer, error) {
	n := meta.pixels()

	switch meta.BitsAllocated {
	case 8:
		if err := need(data, n); err != nil {
			return nil, err
		}
		out, err := pixel.FromBytes(meta.Width, meta.Height, 8, 1, append([]byte(nil), data[:n]...))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", codec.ErrUnsupportedFormat, err)
		}
		return out, nil
	case 16:
		if err := need(data, n*2); err != nil {
			return nil, err
		}
		out, err := pixel.New(meta.Width, meta.Height, 8, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", codec.ErrUnsupportedFormat, err)
		}
		stored := meta.BitsStored
		if stored > 16 {
			stored = 16
		}
		mask := uint16(1<<uint(stored) - 1)
		shift := uint(stored - 8)
		for i := 0; i < n; i++ {
			v := uint16(data[i*2]) | uint16(data[i*2+1])<<8
			out.Pix[i] = byte((v & mask) >> shift)
		}
		return out, nil
	default:
		log.Warn().Int("bits_allocated", meta.BitsAllocated).Msg("cannot render monochrome image, returning empty image")
		return pixel.Empty(), nil
	}
}

// decodeColor reads non-monochrome data. Three samples per pixel are taken
// as RGB and inverted; anything else is read as 16-bit gray. Both results
// are flattened to 8-bit gray.
func decodeColor(data []byte, samplesPerPixel int, meta ImageMetadata) (*pixel.Buffer, error) {
	n := meta.pixels()

	if samplesPerPixel == 3 {
		if err := need(data, n*3); err != nil {
			return nil, err
		}
		rgb, err := pixel.FromBytes(meta.Width, meta.Height, 8, 3, append([]byte(nil), data[:n*3]...))
		if err != nil {
			return nil, err
		}
		inverted, err := transform.Invert(rgb)
		if err != nil {
			return nil, err
		}
		return transform.FlattenToGray8(inverted), nil
	}

	if err := need(data, n*2); err != nil {
		return nil, err
	}
	gray, err := pixel.FromBytes(meta.Width, meta.Height, 16, 1, data[:n*2])
	if err != nil {
		return nil, err
	}
	return transform.FlattenToGray8(gray), nil
}

func need(data []byte, size int) error {
	if len(data) < size {
		return fmt.Errorf("%w: pixel data has %d bytes, image needs %d", codec.ErrTruncatedFile, len(data), size)
	}
	return nil
}

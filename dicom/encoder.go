package dicom

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
)

// Encode writes img and t to path as a Secondary Capture object in explicit
// VR little endian.
func Encode(img *pixel.Buffer, path string, t tags.Map) error {
	return EncodeWithOptions(img, path, t, nil)
}

// EncodeWithOptions is Encode with explicit options; opts may be nil.
func EncodeWithOptions(img *pixel.Buffer, path string, t tags.Map, opts *Options) (err error) {
	if img.IsEmpty() {
		return fmt.Errorf("%w: empty image", codec.ErrUnsupportedFormat)
	}
	if img.Channels == 4 {
		return fmt.Errorf("%w: dicom cannot store %s", codec.ErrUnsupportedFormat, img.Format())
	}
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return err
		}
	}

	ds, err := buildDataset(img, t, opts.instanceUID())
	if err != nil {
		return err
	}

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
	if err := dcm.Write(w, ds, dcm.SkipVRVerification(), dcm.SkipValueTypeVerification()); err != nil {
		return fmt.Errorf("writing dicom dataset: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	log.Debug().Str("path", path).Stringer("image", img).Msg("encoded dicom image")
	return nil
}

func buildDataset(img *pixel.Buffer, t tags.Map, instanceUID string) (dcm.Dataset, error) {
	b := &datasetBuilder{}

	b.add(tagFileMetaInformationVersion, "OB", []byte{0x00, 0x01})
	b.add(tagMediaStorageSOPClassUID, "UI", []string{SecondaryCaptureImageStorage})
	b.add(tagMediaStorageSOPInstanceUID, "UI", []string{instanceUID})
	b.add(tagTransferSyntaxUID, "UI", []string{ExplicitVRLittleEndian})

	b.add(tagSpecificCharacterSet, "CS", []string{characterSetUTF8})
	b.add(tagSOPClassUID, "UI", []string{SecondaryCaptureImageStorage})
	b.add(tagSOPInstanceUID, "UI", []string{instanceUID})

	for _, ft := range fixedTags {
		value := t.Get(ft.Label)
		switch {
		case ft.VR == "US":
			b.add(ft.Tag, ft.VR, []int{coerceInt(ft, value)})
		case ft.Numeric:
			b.add(ft.Tag, ft.VR, []string{strconv.Itoa(coerceInt(ft, value))})
		default:
			b.add(ft.Tag, ft.VR, []string{value})
		}
	}

	// The buffer's own geometry wins over whatever the map says.
	bits := img.BitDepth
	b.add(tagRows, "US", []int{img.Height})
	b.add(tagColumns, "US", []int{img.Width})
	b.add(tagBitsAllocated, "US", []int{bits})
	b.add(tagBitsStored, "US", []int{bits})
	b.add(tagHighBit, "US", []int{bits - 1})
	b.add(tagPixelRepresentation, "US", []int{0})
	b.add(tagSamplesPerPixel, "US", []int{img.Channels})
	if img.Channels == 3 {
		b.add(tagPlanarConfiguration, "US", []int{0})
	}

	photometric := t.Get(LabelPhotometricInterpretation)
	switch {
	case img.Channels == 3:
		photometric = "RGB"
	case photometric == "":
		photometric = "MONOCHROME2"
	}
	b.add(tagPhotometricInterpretation, "CS", []string{photometric})

	data := img.Pix
	vr := "OB"
	if bits == 16 {
		vr = "OW"
	}
	if len(data)%2 == 1 {
		data = append(append([]byte(nil), data...), 0)
	}
	b.add(tagPixelData, vr, dcm.PixelDataInfo{IntentionallyUnprocessed: true, UnprocessedValueData: data})

	return b.dataset()
}

// coerceInt converts a numeric tag value. Values that are not integers are
// written as 0; a non-empty one is logged.
func coerceInt(ft fixedTag, value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		if value != "" {
			log.Warn().
				Str("tag", ft.Label).
				Str("value", value).
				Str("caveat", "NumericCoercionFallback").
				Msg("non-numeric tag value written as 0")
		}
		return 0
	}
	return n
}

// datasetBuilder collects elements keyed by tag so later writes replace
// earlier ones, then emits them in ascending tag order.
type datasetBuilder struct {
	elements map[tag.Tag]*dcm.Element
	err      error
}

func (b *datasetBuilder) add(t tag.Tag, vr string, data any) {
	if b.err != nil {
		return
	}
	if b.elements == nil {
		b.elements = make(map[tag.Tag]*dcm.Element)
	}
	value, err := dcm.NewValue(data)
	if err != nil {
		b.err = fmt.Errorf("building %s element %v: %w", vr, t, err)
		return
	}
	b.elements[t] = &dcm.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, vr),
		RawValueRepresentation: vr,
		Value:                  value,
	}
}

func (b *datasetBuilder) dataset() (dcm.Dataset, error) {
	if b.err != nil {
		return dcm.Dataset{}, b.err
	}
	elems := make([]*dcm.Element, 0, len(b.elements))
	for _, el := range b.elements {
		elems = append(elems, el)
	}
	sort.Slice(elems, func(i, j int) bool {
		if elems[i].Tag.Group != elems[j].Tag.Group {
			return elems[i].Tag.Group < elems[j].Tag.Group
		}
		return elems[i].Tag.Element < elems[j].Tag.Element
	})
	return dcm.Dataset{Elements: elems}, nil
}

package dicom

import "strings"

// ImageMetadata carries the image attributes read during tag extraction into
// pixel decoding. It belongs to a single Decode call.
type ImageMetadata struct {
	Width                     int
	Height                    int
	BitsAllocated             int
	BitsStored                int
	HighBit                   int
	PhotometricInterpretation string
}

// IsMonochrome reports whether the photometric interpretation is one of the
// MONOCHROME variants.
func (m ImageMetadata) IsMonochrome() bool {
	return strings.HasPrefix(m.PhotometricInterpretation, "MONOCHROME")
}

// HasStandardPolarity reports whether the interpretation is exactly
// MONOCHROME1 or MONOCHROME2, the two the 8-bit render path accepts.
func (m ImageMetadata) HasStandardPolarity() bool {
	return m.PhotometricInterpretation == "MONOCHROME1" || m.PhotometricInterpretation == "MONOCHROME2"
}

func (m ImageMetadata) pixels() int {
	return m.Width * m.Height
}

// fits reports whether size bytes hold one frame of the described image.
func (m ImageMetadata) fits(size, samplesPerPixel int) bool {
	if m.Width <= 0 || m.Height <= 0 || m.BitsAllocated <= 0 {
		return false
	}
	if samplesPerPixel < 1 {
		samplesPerPixel = 1
	}
	frame := int64(m.Width) * int64(m.Height) * int64(samplesPerPixel) * int64((m.BitsAllocated+7)/8)
	return int64(size) >= frame
}

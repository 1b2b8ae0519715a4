package dicom

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/tags"
)

// extractTags parses the dataset without its pixel data and reads the fixed
// tag set. Missing attributes never fail extraction.
func extractTags(path string) (tags.Map, ImageMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ImageMetadata{}, fmt.Errorf("%w: %w", codec.ErrFileOpen, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, ImageMetadata{}, fmt.Errorf("%w: %w", codec.ErrFileOpen, err)
	}

	ds, err := dcm.Parse(f, info.Size(), nil, dcm.SkipPixelData())
	if err != nil {
		return nil, ImageMetadata{}, err
	}

	t, meta := tagsFromDataset(&ds)
	return t, meta, nil
}

func tagsFromDataset(ds *dcm.Dataset) (tags.Map, ImageMetadata) {
	t := tags.New()
	for _, ft := range fixedTags {
		value, ok := lookup(ds, ft.Tag)
		switch {
		case ok && ft.Numeric:
			t.Set(ft.Label, strconv.Itoa(toInt(value)))
		case ok:
			t.Set(ft.Label, value)
		case ft.Optional:
		case ft.Numeric:
			t.Set(ft.Label, "0")
		default:
			t.Set(ft.Label, "")
		}
	}

	meta := ImageMetadata{
		Width:                     toInt(t.Get(LabelColumns)),
		Height:                    toInt(t.Get(LabelRows)),
		BitsAllocated:             toInt(t.Get(LabelBitsAllocated)),
		BitsStored:                toInt(t.Get(LabelBitsStored)),
		HighBit:                   toInt(t.Get(LabelHighBit)),
		PhotometricInterpretation: t.Get(LabelPhotometricInterpretation),
	}
	return t, meta
}

// lookup renders an element value as text. Multi-valued elements are joined
// with the DICOM value separator.
func lookup(ds *dcm.Dataset, t tag.Tag) (string, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil || el.Value == nil {
		return "", false
	}

	switch v := el.Value.GetValue().(type) {
	case []string:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = trimPadding(s)
		}
		return strings.Join(parts, `\`), true
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, `\`), true
	case []float64:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.FormatFloat(n, 'f', -1, 64)
		}
		return strings.Join(parts, `\`), true
	case []byte:
		return trimPadding(string(v)), true
	default:
		return "", false
	}
}

func trimPadding(s string) string {
	return strings.TrimRight(s, " \x00")
}

// toInt reads the first value of a numeric attribute. Decimal strings are
// truncated; anything unparseable is 0.
func toInt(s string) int {
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

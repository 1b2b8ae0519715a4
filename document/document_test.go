package document

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"

	_ "github.com/cocosip/go-diconde/dicom"
	_ "github.com/cocosip/go-diconde/raster"
	"github.com/cocosip/go-diconde/raw"
)

// memCodec keeps encoded files in memory so tests can inspect what was saved.
type memCodec struct {
	name     string
	ext      string
	requires codec.Requirement
	files    map[string]codec.EncodeParams
}

func newMemCodec(name, ext string, requires codec.Requirement) *memCodec {
	return &memCodec{name: name, ext: ext, requires: requires, files: make(map[string]codec.EncodeParams)}
}

func (c *memCodec) Name() string                { return c.name }
func (c *memCodec) Extensions() []string        { return []string{c.ext} }
func (c *memCodec) Requires() codec.Requirement { return c.requires }

func (c *memCodec) Decode(path string) (*codec.DecodeResult, error) {
	p, ok := c.files[path]
	if !ok {
		return nil, codec.ErrFileOpen
	}
	return &codec.DecodeResult{Image: p.Image.Clone(), Tags: p.Tags.Clone(), Info: "in memory"}, nil
}

func (c *memCodec) Encode(params codec.EncodeParams) error {
	c.files[params.Path] = params
	return nil
}

func memRegistry(t *testing.T, img *pixel.Buffer, tm tags.Map) (*codec.Registry, *memCodec, *memCodec) {
	t.Helper()
	plain := newMemCodec("mem", ".mem", codec.AnyShape)
	gray := newMemCodec("mem16", ".mem16", codec.Gray16)
	r := codec.NewRegistry()
	r.Register(plain)
	r.Register(gray)
	plain.files["in.mem"] = codec.EncodeParams{Image: img, Tags: tm}
	return r, plain, gray
}

func gray8(t *testing.T, pix ...byte) *pixel.Buffer {
	t.Helper()
	b, err := pixel.FromBytes(len(pix), 1, 8, 1, pix)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func rgb8(t *testing.T, pix ...byte) *pixel.Buffer {
	t.Helper()
	b, err := pixel.FromBytes(len(pix)/3, 1, 8, 3, pix)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func open(t *testing.T, img *pixel.Buffer, tm tags.Map) (*Document, *memCodec, *memCodec) {
	t.Helper()
	r, plain, gray := memRegistry(t, img, tm)
	d, err := Open("in.mem", WithRegistry(r), WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return d, plain, gray
}

func TestOpen(t *testing.T) {
	img := gray8(t, 1, 2, 3)
	d, _, _ := open(t, img, tags.Map{"Modality": "DX"})

	if !d.Original().Equal(img) || !d.Current().Equal(img) {
		t.Errorf("Original/Current = %v/%v, want %v", d.Original(), d.Current(), img)
	}
	if d.Tags().Get("Modality") != "DX" {
		t.Errorf("tags = %v", d.Tags())
	}
	if d.Info() != "in memory" {
		t.Errorf("Info = %q", d.Info())
	}
	if d.Contrast() != 100 || d.Brightness() != 0 || d.Inverted() {
		t.Errorf("sliders = %d/%d/%v, want neutral", d.Contrast(), d.Brightness(), d.Inverted())
	}
}

func TestOpenErrors(t *testing.T) {
	r, plain, _ := memRegistry(t, gray8(t, 1), nil)
	plain.files["empty.mem"] = codec.EncodeParams{Image: pixel.Empty(), Tags: tags.New()}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"unknown extension", "image.xyz", codec.ErrCodecNotFound},
		{"no extension", "image", codec.ErrCodecNotFound},
		{"decode failure", "missing.mem", codec.ErrFileOpen},
		{"no pixels", "empty.mem", codec.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.path, WithRegistry(r)); !errors.Is(err, tt.want) {
				t.Errorf("Open error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAdjustmentsDoNotCompound(t *testing.T) {
	d, _, _ := open(t, gray8(t, 10, 100, 200), nil)

	if err := d.SetContrast(150); err != nil {
		t.Fatal(err)
	}
	if err := d.SetContrast(150); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{15, 150, 255}, d.Current().Pix); diff != "" {
		t.Errorf("contrast 150 (-want +got):\n%s", diff)
	}

	if err := d.SetBrightness(-20); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0, 130, 255}, d.Current().Pix); diff != "" {
		t.Errorf("contrast 150 brightness -20 (-want +got):\n%s", diff)
	}

	if err := d.SetContrast(100); err != nil {
		t.Fatal(err)
	}
	if err := d.SetBrightness(0); err != nil {
		t.Fatal(err)
	}
	if !d.Current().Equal(d.Original()) {
		t.Errorf("neutral sliders did not restore the original: %v", d.Current().Pix)
	}
}

func TestSlidersClamp(t *testing.T) {
	d, _, _ := open(t, gray8(t, 100), nil)
	if err := d.SetContrast(1000); err != nil {
		t.Fatal(err)
	}
	if err := d.SetBrightness(-1000); err != nil {
		t.Fatal(err)
	}
	if d.Contrast() != 200 || d.Brightness() != -100 {
		t.Errorf("sliders = %d/%d, want 200/-100", d.Contrast(), d.Brightness())
	}
	if got := d.Current().Pix[0]; got != 100 {
		t.Errorf("pixel = %d, want 100", got)
	}
}

func TestSixteenBitBrightness(t *testing.T) {
	img, err := pixel.FromUint16(1, 1, 1, []uint16{1000})
	if err != nil {
		t.Fatal(err)
	}
	d, _, _ := open(t, img, nil)
	if err := d.SetBrightness(10); err != nil {
		t.Fatal(err)
	}
	if got := d.Current().Sample(0); got != 1000+10*257 {
		t.Errorf("sample = %d, want %d", got, 1000+10*257)
	}
}

func TestInvert(t *testing.T) {
	d, _, _ := open(t, rgb8(t, 0, 100, 255), nil)

	if err := d.Invert(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{255, 155, 0}, d.Current().Pix); diff != "" {
		t.Errorf("inverted (-want +got):\n%s", diff)
	}
	if err := d.SetBrightness(-5); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{250, 150, 0}, d.Current().Pix); diff != "" {
		t.Errorf("inverted then darkened (-want +got):\n%s", diff)
	}

	if err := d.Invert(); err != nil {
		t.Fatal(err)
	}
	d.Reset()
	if d.Inverted() || !d.Current().Equal(d.Original()) {
		t.Errorf("Reset left %v inverted=%v", d.Current().Pix, d.Inverted())
	}
}

func TestInvertRejectsGray(t *testing.T) {
	d, _, _ := open(t, gray8(t, 1, 2), nil)
	if err := d.Invert(); !errors.Is(err, codec.ErrInvalidShape) {
		t.Errorf("Invert error = %v, want ErrInvalidShape", err)
	}
	if d.Inverted() {
		t.Error("failed Invert changed the state")
	}
}

func TestTags(t *testing.T) {
	d, _, _ := open(t, gray8(t, 1), tags.Map{"Modality": "DX", "Manufacturer": "ACME"})

	if err := d.SetTag("  Seam Number ", " 7 "); err != nil {
		t.Fatal(err)
	}
	if got := d.Tags().Get("Seam Number"); got != "7" {
		t.Errorf("Seam Number = %q, want 7", got)
	}
	for _, kv := range [][2]string{{"", "x"}, {"k", "  "}} {
		if err := d.SetTag(kv[0], kv[1]); !errors.Is(err, codec.ErrInvalidParameter) {
			t.Errorf("SetTag(%q, %q) error = %v, want ErrInvalidParameter", kv[0], kv[1], err)
		}
	}

	got, err := d.FilterTags("acme|seam")
	if err != nil {
		t.Fatal(err)
	}
	want := tags.Map{"Manufacturer": "ACME", "Seam Number": "7"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterTags (-want +got):\n%s", diff)
	}

	if _, err := d.FilterTags("("); !errors.Is(err, codec.ErrInvalidParameter) {
		t.Errorf("FilterTags(\"(\") error = %v, want ErrInvalidParameter", err)
	}
}

func TestSaveCoercesForGray16Containers(t *testing.T) {
	d, plain, gray := open(t, rgb8(t, 255, 255, 255, 0, 0, 0), tags.Map{"a": "b"})

	if err := d.Save("out.mem"); err != nil {
		t.Fatal(err)
	}
	if got := plain.files["out.mem"].Image; got.Format() != "rgb8" {
		t.Errorf("pass-through save wrote %s, want rgb8", got.Format())
	}

	if err := d.Save("out.mem16"); err != nil {
		t.Fatal(err)
	}
	saved := gray.files["out.mem16"]
	if saved.Image.Format() != "gray16" {
		t.Fatalf("gray16 container got %s", saved.Image.Format())
	}
	if diff := cmp.Diff([]uint16{0xFFFF, 0}, saved.Image.Uint16s()); diff != "" {
		t.Errorf("coerced samples (-want +got):\n%s", diff)
	}
	if saved.Tags.Get("a") != "b" {
		t.Errorf("saved tags = %v", saved.Tags)
	}

	d.Tags().Set("a", "changed")
	if saved.Tags.Get("a") != "b" {
		t.Error("saved tags alias the document tags")
	}
}

func TestSaveErrors(t *testing.T) {
	d, _, _ := open(t, gray8(t, 1), nil)
	if err := d.Save("out.unknown"); !errors.Is(err, codec.ErrCodecNotFound) {
		t.Errorf("Save error = %v, want ErrCodecNotFound", err)
	}
}

func TestOpenSaveRawThroughDefaultRegistry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	pngDoc, _, _ := open(t, gray8(t, 0, 128, 255), tags.New())
	pngDoc.registry = codec.Default()
	if err := pngDoc.Save(src); err != nil {
		t.Fatalf("Save png: %v", err)
	}

	var logs bytes.Buffer
	d, err := Open(src, WithLogger(zerolog.New(&logs)))
	if err != nil {
		t.Fatalf("Open png: %v", err)
	}
	if !strings.Contains(logs.String(), `"codec":"png"`) {
		t.Errorf("open log = %s", logs.String())
	}
	if err := d.SetTag("Object Material", "steel"); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.raw")
	if err := d.Save(out); err != nil {
		t.Fatalf("Save raw: %v", err)
	}
	img, tm, err := raw.Decode(out)
	if err != nil {
		t.Fatalf("raw.Decode: %v", err)
	}
	if diff := cmp.Diff([]uint16{0, 128 * 257, 0xFFFF}, img.Uint16s()); diff != "" {
		t.Errorf("raw samples (-want +got):\n%s", diff)
	}
	if tm.Get("Object Material") != "steel" {
		t.Errorf("raw tags = %v", tm)
	}
}

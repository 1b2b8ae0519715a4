// Package document holds an opened image together with its tags and the
// viewer adjustments applied to it, and saves the result to any registered
// container.
package document

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
	"github.com/cocosip/go-diconde/transform"
)

// Option configures a Document.
type Option func(*Document)

// WithRegistry selects the codecs used to open and save files.
func WithRegistry(r *codec.Registry) Option {
	return func(d *Document) {
		d.registry = r
	}
}

// WithLogger overrides the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// Document is an opened image. Adjustments are always recomputed from the
// decoded pixels, so repeated slider moves never compound.
type Document struct {
	Path string

	registry *codec.Registry
	logger   zerolog.Logger

	original *pixel.Buffer
	current  *pixel.Buffer
	tags     tags.Map
	info     string

	contrast   int
	brightness int
	inverted   bool
}

// Open decodes path with the codec registered for its extension.
func Open(path string, opts ...Option) (*Document, error) {
	d := &Document{
		Path:       path,
		registry:   codec.Default(),
		logger:     log.Logger,
		contrast:   transform.ContrastSliderNeutral,
		brightness: transform.BrightnessSliderNeutral,
	}
	for _, opt := range opts {
		opt(d)
	}

	c, err := d.registry.ForPath(path)
	if err != nil {
		return nil, err
	}
	res, err := c.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if res.Image.IsEmpty() {
		return nil, fmt.Errorf("open %s: %w: no displayable pixels", path, codec.ErrUnsupportedFormat)
	}

	d.original = res.Image
	d.current = res.Image
	d.tags = res.Tags
	if d.tags == nil {
		d.tags = tags.New()
	}
	d.info = res.Info

	d.logger.Info().
		Str("path", path).
		Str("codec", c.Name()).
		Stringer("image", res.Image).
		Int("tags", len(d.tags)).
		Msg("opened image")
	return d, nil
}

// Original returns the decoded pixels.
func (d *Document) Original() *pixel.Buffer {
	return d.original
}

// Current returns the pixels with every adjustment applied.
func (d *Document) Current() *pixel.Buffer {
	return d.current
}

// Info returns the decoder's diagnostic text, if any.
func (d *Document) Info() string {
	return d.info
}

// Contrast returns the contrast slider position.
func (d *Document) Contrast() int {
	return d.contrast
}

// Brightness returns the brightness slider position.
func (d *Document) Brightness() int {
	return d.brightness
}

// Inverted reports whether Invert has been applied an odd number of times.
func (d *Document) Inverted() bool {
	return d.inverted
}

// SetContrast moves the contrast slider. Positions outside the slider range
// are clamped.
func (d *Document) SetContrast(slider int) error {
	return d.adjust(slider, d.brightness, d.inverted)
}

// SetBrightness moves the brightness slider. Positions outside the slider
// range are clamped.
func (d *Document) SetBrightness(slider int) error {
	return d.adjust(d.contrast, slider, d.inverted)
}

// Invert toggles photometric inversion. Only 8-bit RGB images can be
// inverted.
func (d *Document) Invert() error {
	return d.adjust(d.contrast, d.brightness, !d.inverted)
}

// Reset drops every adjustment.
func (d *Document) Reset() {
	d.contrast = transform.ContrastSliderNeutral
	d.brightness = transform.BrightnessSliderNeutral
	d.inverted = false
	d.current = d.original
}

func (d *Document) adjust(contrast, brightness int, inverted bool) error {
	contrast = clamp(contrast, transform.ContrastSliderMin, transform.ContrastSliderMax)
	brightness = clamp(brightness, transform.BrightnessSliderMin, transform.BrightnessSliderMax)

	img := d.original
	if inverted {
		var err error
		if img, err = transform.Invert(img); err != nil {
			return err
		}
	}
	if contrast != transform.ContrastSliderNeutral || brightness != transform.BrightnessSliderNeutral {
		var err error
		img, err = transform.ApplyContrastBrightness(img,
			transform.ContrastFactor(contrast),
			transform.BrightnessOffset(brightness, img.BitDepth))
		if err != nil {
			return err
		}
	}

	d.contrast, d.brightness, d.inverted = contrast, brightness, inverted
	d.current = img
	d.logger.Debug().
		Int("contrast", contrast).
		Int("brightness", brightness).
		Bool("inverted", inverted).
		Msg("adjusted image")
	return nil
}

// Tags returns the tag map. Changes to it are saved with the image.
func (d *Document) Tags() tags.Map {
	return d.tags
}

// SetTag adds or replaces a tag. Key and value are trimmed and must not be
// empty.
func (d *Document) SetTag(key, value string) error {
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if key == "" || value == "" {
		return fmt.Errorf("%w: tag key and value must not be empty", codec.ErrInvalidParameter)
	}
	d.tags.Set(key, value)
	return nil
}

// FilterTags returns the tags whose key or value matches the regular
// expression pattern, ignoring case.
func (d *Document) FilterTags(pattern string) (tags.Map, error) {
	m, err := d.tags.Filter(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrInvalidParameter, err)
	}
	return m, nil
}

// Save writes the current pixels and the tags to path.
func (d *Document) Save(path string) error {
	return d.SaveWithOptions(path, nil)
}

// SaveWithOptions writes the current pixels and the tags to path with
// codec-specific options. Containers that only hold 16-bit gray receive a
// coerced copy.
func (d *Document) SaveWithOptions(path string, opts codec.Options) error {
	c, err := d.registry.ForPath(path)
	if err != nil {
		return err
	}

	img := d.current
	if codec.RequirementOf(c) == codec.Gray16 {
		if img, err = transform.Coerce16BitGrayscale(img); err != nil {
			return err
		}
	}

	err = c.Encode(codec.EncodeParams{
		Image:   img,
		Tags:    d.tags.Clone(),
		Path:    path,
		Options: opts,
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	d.logger.Info().
		Str("path", path).
		Str("codec", c.Name()).
		Stringer("image", img).
		Msg("saved image")
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

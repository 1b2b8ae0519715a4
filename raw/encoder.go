package raw

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
)

// Encode writes img and t to path as a RAW container. img must already be
// 16-bit grayscale; Encode does not convert.
func Encode(img *pixel.Buffer, path string, t tags.Map) (err error) {
	if img.IsEmpty() {
		return fmt.Errorf("%w: empty image", codec.ErrUnsupportedFormat)
	}
	if img.BitDepth != 16 || img.Channels != 1 {
		return fmt.Errorf("%w: raw stores gray16, got %s", codec.ErrUnsupportedFormat, img.Format())
	}

	meta, err := t.Clone().MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding raw metadata: %w", err)
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
	if err := binary.Write(w, binary.LittleEndian, [2]uint16{uint16(img.Height), uint16(img.Width)}); err != nil {
		return err
	}
	if _, err := w.Write(img.Pix); err != nil {
		return err
	}
	if _, err := w.Write(meta); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(meta))); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	log.Debug().Str("path", path).Stringer("image", img).Int("json_bytes", len(meta)).Msg("encoded raw image")
	return nil
}

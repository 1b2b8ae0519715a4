package raw

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/tags"
)

const (
	headerSize  = 4 // uint16 height, uint16 width
	trailerSize = 4 // uint32 JSON length
)

// Decode reads a RAW container. The pixel block is mandatory; the JSON
// trailer is best effort and any problem with it yields an empty tag map.
func Decode(path string) (*pixel.Buffer, tags.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", codec.ErrFileOpen, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", codec.ErrFileOpen, err)
	}
	fileSize := info.Size()

	r := bufio.NewReader(f)

	var header struct {
		Height uint16
		Width  uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, truncated("header", err)
	}
	if header.Width == 0 || header.Height == 0 {
		return nil, nil, fmt.Errorf("%w: %dx%d raw image", codec.ErrUnsupportedFormat, header.Width, header.Height)
	}

	pixelBytes := int64(header.Width) * int64(header.Height) * 2
	if fileSize < headerSize+pixelBytes {
		return nil, nil, fmt.Errorf("%w: pixel block needs %d bytes, file has %d after the header",
			codec.ErrTruncatedFile, pixelBytes, fileSize-headerSize)
	}
	pix := make([]byte, pixelBytes)
	if _, err := io.ReadFull(r, pix); err != nil {
		return nil, nil, truncated("pixel block", err)
	}

	img, err := pixel.FromBytes(int(header.Width), int(header.Height), 16, 1, pix)
	if err != nil {
		return nil, nil, err
	}
	checkRange(img)

	t, err := readTrailer(f, fileSize, pixelBytes)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring raw metadata trailer")
		t = tags.New()
	}

	log.Debug().
		Str("path", path).
		Int("width", img.Width).
		Int("height", img.Height).
		Int("tags", len(t)).
		Msg("decoded raw image")

	return img, t, nil
}

// readTrailer locates and parses the JSON tag block using the length stored
// in the last four bytes of the file.
func readTrailer(f io.ReaderAt, fileSize, pixelBytes int64) (tags.Map, error) {
	if fileSize < headerSize+pixelBytes+trailerSize {
		return nil, fmt.Errorf("%w: no room for a trailer", codec.ErrCorruptTrailer)
	}

	var lenBuf [trailerSize]byte
	if _, err := f.ReadAt(lenBuf[:], fileSize-trailerSize); err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrCorruptTrailer, err)
	}
	jsonLength := int64(binary.LittleEndian.Uint32(lenBuf[:]))

	maxLength := fileSize - trailerSize - pixelBytes - headerSize
	if jsonLength == 0 || jsonLength > maxLength {
		return nil, fmt.Errorf("%w: json length %d outside [1, %d]", codec.ErrCorruptTrailer, jsonLength, maxLength)
	}

	data := make([]byte, jsonLength)
	if _, err := f.ReadAt(data, fileSize-trailerSize-jsonLength); err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrCorruptTrailer, err)
	}

	t, err := tags.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrCorruptTrailer, err)
	}
	return t, nil
}

// checkRange asserts every sample lies in [0, 65535]. Samples are uint16 so
// the check can never fail; 0 and 65535 are ordinary values, not saturation.
func checkRange(img *pixel.Buffer) {
	for i := 0; i < img.Len(); i++ {
		if v := img.Sample(i); v < 0 || v > 0xFFFF {
			log.Warn().Int("index", i).Int("value", v).Msg("raw sample out of range")
			return
		}
	}
}

func truncated(block string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", codec.ErrTruncatedFile, block)
	}
	return fmt.Errorf("reading raw %s: %w", block, err)
}

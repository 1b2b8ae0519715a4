package dicom

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// part10 assembles an explicit VR little endian Part 10 file byte by byte.
// Elements must be added in ascending tag order.
type part10 struct {
	meta []byte
	body []byte
}

func newPart10() *part10 {
	p := &part10{}
	p.meta = append(p.meta, encodeElement(0x0002, 0x0001, "OB", []byte{0x00, 0x01})...)
	p.meta = append(p.meta, encodeElement(0x0002, 0x0002, "UI", padUID(SecondaryCaptureImageStorage))...)
	p.meta = append(p.meta, encodeElement(0x0002, 0x0003, "UI", padUID("1.2.3.4"))...)
	p.meta = append(p.meta, encodeElement(0x0002, 0x0010, "UI", padUID(ExplicitVRLittleEndian))...)
	return p
}

func (p *part10) str(group, elem uint16, vr, value string) *part10 {
	if len(value)%2 == 1 {
		value += " "
	}
	p.body = append(p.body, encodeElement(group, elem, vr, []byte(value))...)
	return p
}

func (p *part10) us(group, elem uint16, value uint16) *part10 {
	p.body = append(p.body, encodeElement(group, elem, "US", binary.LittleEndian.AppendUint16(nil, value))...)
	return p
}

func (p *part10) ul(group, elem uint16, value uint32) *part10 {
	p.body = append(p.body, encodeElement(group, elem, "UL", binary.LittleEndian.AppendUint32(nil, value))...)
	return p
}

func (p *part10) pixels(vr string, data []byte) *part10 {
	p.body = append(p.body, encodeElement(0x7FE0, 0x0010, vr, data)...)
	return p
}

func (p *part10) bytes() []byte {
	out := make([]byte, 128)
	out = append(out, "DICM"...)
	out = append(out, encodeElement(0x0002, 0x0000, "UL", binary.LittleEndian.AppendUint32(nil, uint32(len(p.meta))))...)
	out = append(out, p.meta...)
	return append(out, p.body...)
}

func (p *part10) write(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.dcm")
	if err := os.WriteFile(path, p.bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func encodeElement(group, elem uint16, vr string, value []byte) []byte {
	var out []byte
	out = binary.LittleEndian.AppendUint16(out, group)
	out = binary.LittleEndian.AppendUint16(out, elem)
	out = append(out, vr...)
	switch vr {
	case "OB", "OW", "OF", "SQ", "UT", "UN":
		out = append(out, 0, 0)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(value)))
	default:
		out = binary.LittleEndian.AppendUint16(out, uint16(len(value)))
	}
	return append(out, value...)
}

func padUID(uid string) []byte {
	b := []byte(uid)
	if len(b)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

// monoImage builds a single-frame monochrome image with the given geometry.
func monoImage(rows, cols, allocated, stored uint16, photometric string, data []byte) *part10 {
	vr := "OW"
	if allocated == 8 {
		vr = "OB"
	}
	return newPart10().
		us(0x0028, 0x0002, 1).
		str(0x0028, 0x0004, "CS", photometric).
		us(0x0028, 0x0010, rows).
		us(0x0028, 0x0011, cols).
		us(0x0028, 0x0100, allocated).
		us(0x0028, 0x0101, stored).
		us(0x0028, 0x0102, stored-1).
		us(0x0028, 0x0103, 0).
		pixels(vr, data)
}

func repeat16(v uint16, n int) []byte {
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

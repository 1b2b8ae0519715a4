package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cocosip/go-diconde/pixel"
	"github.com/cocosip/go-diconde/raw"
	"github.com/cocosip/go-diconde/tags"
)

func writeRaw(t *testing.T, dir string) string {
	t.Helper()
	img, err := pixel.FromUint16(3, 2, 1, []uint16{0, 100, 1000, 10000, 40000, 65535})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "in.raw")
	if err := raw.Encode(img, path, tags.Map{"Manufacturer": "ACME", "Modality": "DX"}); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInfo(t *testing.T) {
	in := writeRaw(t, t.TempDir())
	code, out, errOut := runCLI(t, "info", in)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"Format: gray16", "Dimensions: 3x2", "Tags: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestTags(t *testing.T) {
	in := writeRaw(t, t.TempDir())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"all", []string{"tags", in}, "Manufacturer: ACME\nModality: DX\n"},
		{"filtered", []string{"tags", "-filter", "acme", in}, "Manufacturer: ACME\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, errOut)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := writeRaw(t, dir)
	out := filepath.Join(dir, "out.raw")

	code, _, errOut := runCLI(t, "-log-level", "warn", "convert", "-brightness", "10", "-set", "Seam Number=4", in, out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}

	img, tm, err := raw.Decode(out)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.Sample(0), 10*257; got != want {
		t.Errorf("first sample = %d, want %d", got, want)
	}
	if got := img.Sample(5); got != 65535 {
		t.Errorf("last sample = %d, want 65535", got)
	}
	if tm.Get("Seam Number") != "4" || tm.Get("Manufacturer") != "ACME" {
		t.Errorf("tags = %v", tm)
	}
}

func TestConvertToRaster(t *testing.T) {
	dir := t.TempDir()
	in := writeRaw(t, dir)
	for _, name := range []string{"out.png", "out.jpg", "out.bmp", "out.tiff", "out.dcm"} {
		t.Run(name, func(t *testing.T) {
			code, _, errOut := runCLI(t, "convert", "-quality", "80", "-deflate", in, filepath.Join(dir, name))
			if code != 0 {
				t.Fatalf("exit %d: %s", code, errOut)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	in := writeRaw(t, t.TempDir())
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"explode"}, 2},
		{"bad level", []string{"-log-level", "loud", "info", in}, 2},
		{"info without file", []string{"info"}, 2},
		{"convert one arg", []string{"convert", in}, 2},
		{"bad set flag", []string{"convert", "-set", "novalue", in, in + ".png"}, 2},
		{"missing file", []string{"info", "missing.raw"}, 1},
		{"unknown output", []string{"convert", in, "out.xyz"}, 1},
		{"bad filter", []string{"tags", "-filter", "(", in}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tt.args...); code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
		})
	}
}

func TestLogLevelFromEnvironment(t *testing.T) {
	t.Setenv(logLevelEnv, "error")
	in := writeRaw(t, t.TempDir())
	code, _, errOut := runCLI(t, "info", in)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if strings.Contains(errOut, "opened image") {
		t.Errorf("info log written at level error:\n%s", errOut)
	}
}

func TestCodecsCommand(t *testing.T) {
	code, out, _ := runCLI(t, "codecs")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{"dicom\t.dcm .dicom", "raw\t.raw", "tiff\t.tif .tiff"} {
		if !strings.Contains(out, want) {
			t.Errorf("codecs output missing %q:\n%s", want, out)
		}
	}
}

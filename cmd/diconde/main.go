// Command diconde inspects and converts DICONDE, RAW and raster images.
//
// Usage:
//
//	diconde [-log-level level] [-log-json] info <file>
//	diconde [-log-level level] [-log-json] tags [-filter re] <file>
//	diconde [-log-level level] [-log-json] convert [flags] <in> <out>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cocosip/go-diconde/codec"
	"github.com/cocosip/go-diconde/document"
	"github.com/cocosip/go-diconde/raster"
	"github.com/cocosip/go-diconde/transform"

	// Register the container codecs
	_ "github.com/cocosip/go-diconde/dicom"
	_ "github.com/cocosip/go-diconde/raw"
)

const logLevelEnv = "DICONDE_LOG_LEVEL"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("diconde", flag.ContinueOnError)
	fs.SetOutput(stderr)
	level := fs.String("log-level", envOr(logLevelEnv, "info"), "log level (trace, debug, info, warn, error)")
	jsonLogs := fs.Bool("log-json", false, "write logs as JSON instead of console text")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: diconde [flags] info|tags|convert ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := setupLogging(*level, *jsonLogs, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var err error
	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "info":
		err = runInfo(rest, stdout, stderr)
	case "tags":
		err = runTags(rest, stdout, stderr)
	case "convert":
		err = runConvert(rest, stderr)
	case "codecs":
		for _, c := range codec.List() {
			fmt.Fprintf(stdout, "%s\t%s\n", c.Name(), strings.Join(c.Extensions(), " "))
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	var usage usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		fmt.Fprintln(stderr, usage.msg)
		return 2
	default:
		log.Error().Err(err).Msg("command failed")
		return 1
	}
}

func setupLogging(level string, jsonLogs bool, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if jsonLogs {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: true})
	}
	return nil
}

type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func runInfo(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() != 1 {
		return usageError{"usage: diconde info <file>"}
	}

	d, err := document.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	img := d.Original()
	fmt.Fprintf(stdout, "File: %s\n", d.Path)
	fmt.Fprintf(stdout, "Format: %s\n", img.Format())
	fmt.Fprintf(stdout, "Dimensions: %dx%d\n", img.Width, img.Height)
	fmt.Fprintf(stdout, "Tags: %d\n", len(d.Tags()))
	if info := d.Info(); info != "" {
		fmt.Fprintf(stdout, "\n%s", info)
	}
	return nil
}

func runTags(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	fs.SetOutput(stderr)
	filter := fs.String("filter", "", "case-insensitive regular expression matched against keys and values")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() != 1 {
		return usageError{"usage: diconde tags [-filter re] <file>"}
	}

	d, err := document.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	t, err := d.FilterTags(*filter)
	if err != nil {
		return err
	}
	_, err = t.WriteTo(stdout)
	return err
}

// tagFlags collects repeated -set key=value flags.
type tagFlags [][2]string

func (f *tagFlags) String() string {
	parts := make([]string, len(*f))
	for i, kv := range *f {
		parts[i] = kv[0] + "=" + kv[1]
	}
	return strings.Join(parts, ",")
}

func (f *tagFlags) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	*f = append(*f, [2]string{k, v})
	return nil
}

func runConvert(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	contrast := fs.Int("contrast", transform.ContrastSliderNeutral, "contrast slider position (0..200)")
	brightness := fs.Int("brightness", transform.BrightnessSliderNeutral, "brightness slider position (-100..100)")
	invert := fs.Bool("invert", false, "invert an 8-bit RGB image")
	quality := fs.Int("quality", 0, "JPEG quality (1..100, 0 for the default)")
	deflate := fs.Bool("deflate", false, "Deflate-compress TIFF output")
	var set tagFlags
	fs.Var(&set, "set", "add or replace a tag as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() != 2 {
		return usageError{"usage: diconde convert [flags] <in> <out>"}
	}
	in, out := fs.Arg(0), fs.Arg(1)

	d, err := document.Open(in)
	if err != nil {
		return err
	}
	if *invert {
		if err := d.Invert(); err != nil {
			return err
		}
	}
	if err := d.SetContrast(*contrast); err != nil {
		return err
	}
	if err := d.SetBrightness(*brightness); err != nil {
		return err
	}
	for _, kv := range set {
		if err := d.SetTag(kv[0], kv[1]); err != nil {
			return err
		}
	}

	return d.SaveWithOptions(out, saveOptions(out, *quality, *deflate))
}

func saveOptions(path string, quality int, deflate bool) codec.Options {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil
	}
	switch c.Name() {
	case "jpeg":
		return &raster.JPEGOptions{BaseOptions: codec.BaseOptions{Quality: quality}}
	case "tiff":
		return &raster.TIFFOptions{Deflate: deflate}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

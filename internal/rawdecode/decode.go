package rawdecode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
)

var (
	// ErrDecode wraps every failure to read or decode a source file.
	ErrDecode = errors.New("decode failed")

	// ErrUnsupported is returned for files with an unknown extension.
	ErrUnsupported = errors.New("unsupported file type")
)

// DefaultDcrawBinary is looked up on PATH when Dcraw.Binary is empty.
const DefaultDcrawBinary = "dcraw"

// Dcraw decodes camera RAW files by running dcraw.
type Dcraw struct {
	// Binary is the dcraw executable; DefaultDcrawBinary if empty.
	Binary string
}

// dcrawArgs request TIFF on stdout (-T -c), camera white balance (-w) and
// linear 16-bit samples without auto brightening (-4).
var dcrawArgs = []string{"-c", "-w", "-4", "-T"}

func (d Dcraw) binary() string {
	if d.Binary == "" {
		return DefaultDcrawBinary
	}
	return d.Binary
}

// Available reports whether the dcraw executable can be found.
func (d Dcraw) Available() error {
	if _, err := exec.LookPath(d.binary()); err != nil {
		return fmt.Errorf("dcraw not available: %w", err)
	}
	return nil
}

// Decode runs dcraw on path and normalises its output to [0,1].
func (d Dcraw) Decode(ctx context.Context, path string) (*imaging.ColorBuffer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	args := append(append([]string{}, dcrawArgs...), path)
	cmd := exec.CommandContext(ctx, d.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, filepath.Base(path), err)
		}
		return nil, fmt.Errorf("%w: %s: %w: %s", ErrDecode, filepath.Base(path), err, msg)
	}

	img, err := tiff.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: dcraw output: %w", ErrDecode, filepath.Base(path), err)
	}
	return toBuffer(img, path)
}

// Standard decodes PNG, JPEG and TIFF files in-process. Samples are treated
// as linear light.
type Standard struct{}

// Decode reads and decodes path.
func (Standard) Decode(ctx context.Context, path string) (*imaging.ColorBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	var img image.Image
	switch extension(path) {
	case "tif", "tiff":
		img, err = tiff.Decode(f)
	default:
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, filepath.Base(path), err)
	}
	return toBuffer(img, path)
}

// Auto picks a decoder from the file extension.
//
// PNG and JPEG go to Standard. TIFF is tried with Standard first and handed
// to Raw if it is not a plain TIFF image (some cameras store RAW data in .tif
// containers). Every other RAW extension goes straight to Raw.
type Auto struct {
	Standard imaging.Decoder
	Raw      imaging.Decoder
}

// NewAuto returns an Auto decoder that runs the given dcraw binary.
func NewAuto(dcrawBinary string) *Auto {
	return &Auto{
		Standard: Standard{},
		Raw:      Dcraw{Binary: dcrawBinary},
	}
}

// Decode dispatches path to the matching decoder.
func (a *Auto) Decode(ctx context.Context, path string) (*imaging.ColorBuffer, error) {
	switch ext := extension(path); {
	case ext == "png" || ext == "jpg" || ext == "jpeg":
		return a.Standard.Decode(ctx, path)
	case ext == "tif" || ext == "tiff":
		buf, err := a.Standard.Decode(ctx, path)
		if err == nil {
			return buf, nil
		}
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, err
		}
		return a.Raw.Decode(ctx, path)
	case contains(RawExtensions, ext):
		return a.Raw.Decode(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
	}
}

func toBuffer(img image.Image, path string) (*imaging.ColorBuffer, error) {
	buf, err := imaging.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, filepath.Base(path), err)
	}
	return buf, nil
}

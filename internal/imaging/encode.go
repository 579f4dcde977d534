package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Supported output bit depths.
const (
	BitDepth8  = 8
	BitDepth16 = 16
)

// JPEGQuality is used whenever a buffer is written as JPEG.
const JPEGQuality = 95

// EffectiveBitDepth returns the depth actually written for path.
// 16-bit output is only honoured for PNG and TIFF; everything else is 8-bit.
func EffectiveBitDepth(path string, depth int) int {
	if depth != BitDepth16 {
		return BitDepth8
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".tif", ".tiff":
		return BitDepth16
	default:
		return BitDepth8
	}
}

// ToImage encodes b with EncodeSRGB and quantises it.
//
// The result is an opaque *image.NRGBA for 8-bit output or *image.NRGBA64
// for 16-bit output. Quantisation truncates, so 1.0 maps to 255 (or 65535)
// and anything just below maps to the step beneath.
func ToImage(b *ColorBuffer, bitDepth int) (image.Image, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if bitDepth != BitDepth8 && bitDepth != BitDepth16 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	enc := EncodeSRGB(b)
	rect := enc.Bounds()
	if bitDepth == BitDepth8 {
		img := image.NewNRGBA(rect)
		forEachRow(enc.Height, func(y int) {
			for x := 0; x < enc.Width; x++ {
				r, g, bl := enc.At(x, y)
				img.SetNRGBA(x, y, color.NRGBA{
					R: uint8(r * 255),
					G: uint8(g * 255),
					B: uint8(bl * 255),
					A: 0xff,
				})
			}
		})
		return img, nil
	}

	img := image.NewNRGBA64(rect)
	forEachRow(enc.Height, func(y int) {
		for x := 0; x < enc.Width; x++ {
			r, g, bl := enc.At(x, y)
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(r * 65535),
				G: uint16(g * 65535),
				B: uint16(bl * 65535),
				A: 0xffff,
			})
		}
	})
	return img, nil
}

// FormatFromPath resolves the output format from a file extension.
func FormatFromPath(path string) (imaging.Format, error) {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return 0, fmt.Errorf("output format for %q: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Encode writes b to w in the given format.
// Depths other than 8 are only kept for PNG and TIFF.
func Encode(w io.Writer, b *ColorBuffer, format imaging.Format, bitDepth int) error {
	if format != imaging.PNG && format != imaging.TIFF {
		bitDepth = BitDepth8
	}
	img, err := ToImage(b, bitDepth)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// EncodeBytes encodes b into memory.
func EncodeBytes(b *ColorBuffer, format imaging.Format, bitDepth int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, b, format, bitDepth); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes b to path, choosing the format from the extension.
//
// A failed write may leave a partial file behind; callers must treat an
// error as "no new image available".
func Save(b *ColorBuffer, path string, bitDepth int) error {
	if _, err := FormatFromPath(path); err != nil {
		return err
	}
	img, err := ToImage(b, EffectiveBitDepth(path, bitDepth))
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

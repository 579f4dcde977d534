package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Channels is the number of interleaved samples per pixel in a ColorBuffer.
const Channels = 3

// Placeholder dimensions used when no source image is loaded.
const (
	EmptyWidth  = 256
	EmptyHeight = 256
)

var (
	// ErrInvalidDimensions is returned for buffers with a zero or negative side.
	ErrInvalidDimensions = errors.New("invalid buffer dimensions")

	// ErrPixelCount is returned when len(Pix) does not match Width*Height*Channels.
	ErrPixelCount = errors.New("pixel count does not match dimensions")
)

// ColorBuffer is a linear-light RGB image with float32 samples.
//
// Samples are stored row-major with three interleaved channels, so the red
// component of pixel (x, y) lives at Pix[(y*Width+x)*3]. Values are not
// bounded: exposure and contrast may push them outside [0,1]. Clipping
// happens only when the buffer is encoded for display or saved.
//
// A ColorBuffer held by an editing session is treated as immutable. All
// adjustment stages return a new buffer.
type ColorBuffer struct {
	Width  int
	Height int
	Pix    []float32
}

// NewColorBuffer allocates a black buffer of the given size.
func NewColorBuffer(width, height int) (*ColorBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &ColorBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*Channels),
	}, nil
}

// EmptyBuffer returns the 256x256 black placeholder shown when nothing is open.
func EmptyBuffer() *ColorBuffer {
	return &ColorBuffer{
		Width:  EmptyWidth,
		Height: EmptyHeight,
		Pix:    make([]float32, EmptyWidth*EmptyHeight*Channels),
	}
}

// Validate reports whether the buffer can enter the render pipeline.
func (b *ColorBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidDimensions)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Width, b.Height)
	}
	if want := b.Width * b.Height * Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: have %d samples, want %d", ErrPixelCount, len(b.Pix), want)
	}
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *ColorBuffer) Clone() *ColorBuffer {
	pix := make([]float32, len(b.Pix))
	copy(pix, b.Pix)
	return &ColorBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *ColorBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

func (b *ColorBuffer) offset(x, y int) int {
	return (y*b.Width + x) * Channels
}

// At returns the linear RGB values at (x, y). The caller must stay in bounds.
func (b *ColorBuffer) At(x, y int) (r, g, bl float32) {
	i := b.offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Set stores linear RGB values at (x, y). The caller must stay in bounds.
func (b *ColorBuffer) Set(x, y int, r, g, bl float32) {
	i := b.offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
}

// Fill sets every pixel to the same value.
func (b *ColorBuffer) Fill(r, g, bl float32) {
	for i := 0; i < len(b.Pix); i += Channels {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
	}
}

// Equal reports whether two buffers have the same size and bit-identical samples.
func (b *ColorBuffer) Equal(o *ColorBuffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i, v := range b.Pix {
		if math.Float32bits(v) != math.Float32bits(o.Pix[i]) {
			return false
		}
	}
	return true
}

// FromImage converts any decoded image to a ColorBuffer in [0,1].
//
// Components are read through color.Color.RGBA, which yields 16-bit values,
// and divided by 65535. Decoders that produce linear 16-bit output therefore
// map directly onto linear light. Alpha is ignored.
func FromImage(img image.Image) (*ColorBuffer, error) {
	bounds := img.Bounds()
	buf, err := NewColorBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	const scale = 1.0 / 65535.0
	switch src := img.(type) {
	case *image.RGBA64:
		forEachRow(buf.Height, func(y int) {
			for x := 0; x < buf.Width; x++ {
				c := src.RGBA64At(bounds.Min.X+x, bounds.Min.Y+y)
				buf.Set(x, y, float32(float64(c.R)*scale), float32(float64(c.G)*scale), float32(float64(c.B)*scale))
			}
		})
	default:
		forEachRow(buf.Height, func(y int) {
			for x := 0; x < buf.Width; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				buf.Set(x, y, float32(float64(r)*scale), float32(float64(g)*scale), float32(float64(b)*scale))
			}
		})
	}
	return buf, nil
}

package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// solidBuffer returns a buffer filled with one linear color.
func solidBuffer(t *testing.T, width, height int, r, g, b float32) *ColorBuffer {
	t.Helper()
	buf, err := NewColorBuffer(width, height)
	if err != nil {
		t.Fatalf("NewColorBuffer failed: %v", err)
	}
	buf.Fill(r, g, b)
	return buf
}

// rampBuffer returns a buffer whose samples sweep from lo to hi.
func rampBuffer(t *testing.T, width, height int, lo, hi float32) *ColorBuffer {
	t.Helper()
	buf, err := NewColorBuffer(width, height)
	if err != nil {
		t.Fatalf("NewColorBuffer failed: %v", err)
	}
	n := len(buf.Pix)
	for i := range buf.Pix {
		buf.Pix[i] = lo + (hi-lo)*float32(i)/float32(n-1)
	}
	return buf
}

func approx(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestNewColorBuffer(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"small", 2, 3, false},
		{"single pixel", 1, 1, false},
		{"zero width", 0, 5, true},
		{"zero height", 5, 0, true},
		{"negative", -1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewColorBuffer(tt.w, tt.h)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDimensions) {
					t.Errorf("got %v, want ErrInvalidDimensions", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewColorBuffer failed: %v", err)
			}
			if len(buf.Pix) != tt.w*tt.h*Channels {
				t.Errorf("len(Pix): got %d, want %d", len(buf.Pix), tt.w*tt.h*Channels)
			}
			for _, v := range buf.Pix {
				if v != 0 {
					t.Fatal("new buffer is not black")
				}
			}
		})
	}
}

func TestEmptyBuffer(t *testing.T) {
	buf := EmptyBuffer()
	if buf.Width != 256 || buf.Height != 256 {
		t.Errorf("dimensions: got %dx%d, want 256x256", buf.Width, buf.Height)
	}
	if err := buf.Validate(); err != nil {
		t.Errorf("placeholder invalid: %v", err)
	}
	if EmptyBuffer() == buf {
		t.Error("EmptyBuffer returned a shared instance")
	}
}

func TestValidate(t *testing.T) {
	var nilBuf *ColorBuffer
	tests := []struct {
		name string
		buf  *ColorBuffer
		want error
	}{
		{"nil", nilBuf, ErrInvalidDimensions},
		{"zero size", &ColorBuffer{}, ErrInvalidDimensions},
		{"short pix", &ColorBuffer{Width: 2, Height: 2, Pix: make([]float32, 11)}, ErrPixelCount},
		{"long pix", &ColorBuffer{Width: 1, Height: 1, Pix: make([]float32, 4)}, ErrPixelCount},
		{"valid", &ColorBuffer{Width: 2, Height: 1, Pix: make([]float32, 6)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	buf := solidBuffer(t, 3, 2, 0.1, 0.2, 0.3)
	c := buf.Clone()

	if !c.Equal(buf) {
		t.Fatal("clone differs from original")
	}
	c.Set(0, 0, 9, 9, 9)
	if r, _, _ := buf.At(0, 0); r != 0.1 {
		t.Error("modifying the clone changed the original")
	}
}

func TestAtSet(t *testing.T) {
	buf := solidBuffer(t, 4, 3, 0, 0, 0)
	buf.Set(3, 2, 0.25, -0.5, 1.75)

	r, g, b := buf.At(3, 2)
	if r != 0.25 || g != -0.5 || b != 1.75 {
		t.Errorf("At(3,2): got (%v,%v,%v)", r, g, b)
	}
	// Last pixel occupies the last three samples.
	if buf.Pix[len(buf.Pix)-3] != 0.25 {
		t.Error("row-major layout broken")
	}
}

func TestEqual(t *testing.T) {
	a := solidBuffer(t, 2, 2, 0.5, 0.5, 0.5)
	b := solidBuffer(t, 2, 2, 0.5, 0.5, 0.5)
	if !a.Equal(b) {
		t.Error("identical buffers not equal")
	}

	b.Set(1, 1, 0.5, 0.5, 0.50001)
	if a.Equal(b) {
		t.Error("different samples reported equal")
	}

	zero := solidBuffer(t, 1, 1, 0, 0, 0)
	negZero := solidBuffer(t, 1, 1, float32(math.Copysign(0, -1)), 0, 0)
	if zero.Equal(negZero) {
		t.Error("Equal should compare bits, +0 and -0 differ")
	}

	if a.Equal(solidBuffer(t, 4, 1, 0.5, 0.5, 0.5)) {
		t.Error("different shapes reported equal")
	}
	if a.Equal(nil) {
		t.Error("buffer equal to nil")
	}
}

func TestFromImage(t *testing.T) {
	buf, err := FromImage(createPatternImage(4, 4))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	tests := []struct {
		x, y    int
		r, g, b float32
	}{
		{0, 0, 1, 0, 0},
		{3, 0, 0, 1, 0},
		{0, 3, 0, 0, 1},
		{3, 3, 1, 1, 1},
	}
	for _, tt := range tests {
		r, g, b := buf.At(tt.x, tt.y)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("At(%d,%d): got (%v,%v,%v), want (%v,%v,%v)", tt.x, tt.y, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestFromImage_Sixteen(t *testing.T) {
	img := image.NewRGBA64(image.Rect(10, 10, 12, 11)) // non-zero origin
	img.SetRGBA64(10, 10, color.RGBA64{R: 65535, G: 32768, B: 0, A: 65535})

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Width != 2 || buf.Height != 1 {
		t.Fatalf("dimensions: got %dx%d, want 2x1", buf.Width, buf.Height)
	}
	r, g, b := buf.At(0, 0)
	if r != 1 || !approx(g, 32768.0/65535.0, 1e-7) || b != 0 {
		t.Errorf("At(0,0): got (%v,%v,%v)", r, g, b)
	}
}

func TestFromImage_Empty(t *testing.T) {
	if _, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("got %v, want ErrInvalidDimensions", err)
	}
}

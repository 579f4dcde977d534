package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

func TestEffectiveBitDepth(t *testing.T) {
	tests := []struct {
		path  string
		depth int
		want  int
	}{
		{"out.png", 16, 16},
		{"out.PNG", 16, 16},
		{"out.tif", 16, 16},
		{"out.tiff", 16, 16},
		{"out.jpg", 16, 8},
		{"out.bmp", 16, 8},
		{"out.png", 8, 8},
		{"out.png", 12, 8},
	}
	for _, tt := range tests {
		if got := EffectiveBitDepth(tt.path, tt.depth); got != tt.want {
			t.Errorf("EffectiveBitDepth(%q, %d) = %d, want %d", tt.path, tt.depth, got, tt.want)
		}
	}
}

func TestToImage_Eight(t *testing.T) {
	buf := solidBuffer(t, 3, 1, 0, 0, 0)
	buf.Set(1, 0, 1, 0.5, -4)
	buf.Set(2, 0, 9, 0.999, 0.0001)

	img, err := ToImage(buf, BitDepth8)
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("got %T, want *image.NRGBA", img)
	}

	tests := []struct {
		x       int
		r, g, b uint8
	}{
		{0, 0, 0, 0},
		{1, 255, 187, 0}, // sRGB(0.5)*255 = 187.5, truncated
		{2, 255, 254, 0},
	}
	for _, tt := range tests {
		c := nrgba.NRGBAAt(tt.x, 0)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
			t.Errorf("pixel %d: got %v, want (%d,%d,%d,255)", tt.x, c, tt.r, tt.g, tt.b)
		}
	}
}

func TestToImage_Sixteen(t *testing.T) {
	buf := solidBuffer(t, 2, 1, 1, 0.5, 0)
	img, err := ToImage(buf, BitDepth16)
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	nrgba, ok := img.(*image.NRGBA64)
	if !ok {
		t.Fatalf("got %T, want *image.NRGBA64", img)
	}
	c := nrgba.NRGBA64At(0, 0)
	if c.R != 65535 || c.G != 48191 || c.B != 0 || c.A != 65535 {
		t.Errorf("got %v", c)
	}
}

func TestToImage_QuantisesEncodedBuffer(t *testing.T) {
	buf := randomBuffer(t, 16, 8, 11)
	enc := EncodeSRGB(buf)

	img, err := ToImage(buf, BitDepth8)
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	nrgba := img.(*image.NRGBA)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b := enc.At(x, y)
			want := [3]uint8{uint8(r * 255), uint8(g * 255), uint8(b * 255)}
			c := nrgba.NRGBAAt(x, y)
			if got := [3]uint8{c.R, c.G, c.B}; got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestToImage_Errors(t *testing.T) {
	if _, err := ToImage(solidBuffer(t, 1, 1, 0, 0, 0), 12); err == nil {
		t.Error("expected error for 12-bit output")
	}
	if _, err := ToImage(&ColorBuffer{}, BitDepth8); err == nil {
		t.Error("expected error for empty buffer")
	}
}

func TestEncode_RandomPNG(t *testing.T) {
	buf := randomBuffer(t, 100, 100, 7)

	data, err := EncodeBytes(buf, imaging.PNG, BitDepth8)
	if err != nil {
		t.Fatalf("EncodeBytes failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if _, ok := img.(*image.RGBA); !ok {
		t.Errorf("8-bit opaque PNG decoded as %T, want *image.RGBA", img)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("size %v, want 100x100", b)
	}
}

func TestEncode_JPEGIgnoresSixteen(t *testing.T) {
	var out bytes.Buffer
	if err := Encode(&out, randomBuffer(t, 10, 10, 8), imaging.JPEG, BitDepth16); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := jpeg.Decode(&out); err != nil {
		t.Errorf("output is not JPEG: %v", err)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	buf := randomBuffer(t, 12, 6, 9)

	t.Run("16-bit png", func(t *testing.T) {
		path := filepath.Join(dir, "out.png")
		if err := Save(buf, path, BitDepth16); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		img := decodeFile(t, path, png.Decode)
		if _, ok := img.(*image.RGBA64); !ok {
			t.Errorf("decoded as %T, want *image.RGBA64", img)
		}
	})

	t.Run("16-bit tiff", func(t *testing.T) {
		path := filepath.Join(dir, "out.tif")
		if err := Save(buf, path, BitDepth16); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		img := decodeFile(t, path, tiff.Decode)
		switch img.(type) {
		case *image.RGBA64, *image.NRGBA64:
		default:
			t.Errorf("decoded as %T, want a 16-bit image", img)
		}
	})

	t.Run("jpeg", func(t *testing.T) {
		path := filepath.Join(dir, "out.jpeg")
		if err := Save(buf, path, BitDepth16); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		img := decodeFile(t, path, jpeg.Decode)
		if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 6 {
			t.Errorf("size %v, want 12x6", b)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		if err := Save(buf, filepath.Join(dir, "out.raw"), BitDepth8); err == nil {
			t.Error("expected error for unknown extension")
		}
	})
}

func decodeFile(t *testing.T, path string, decode func(r io.Reader) (image.Image, error)) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	img, err := decode(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    imaging.Format
		wantErr bool
	}{
		{"a.jpg", imaging.JPEG, false},
		{"a.JPEG", imaging.JPEG, false},
		{"a.png", imaging.PNG, false},
		{"a.tif", imaging.TIFF, false},
		{"a.bmp", imaging.BMP, false},
		{"a.cr2", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FormatFromPath(%q): expected error", tt.path)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
		}
	}
}

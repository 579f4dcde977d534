package imaging

import (
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name         string
		w, h, edge   int
		wantW, wantH int
	}{
		{"landscape", 1000, 500, ThumbnailEdge, 512, 256},
		{"portrait", 300, 600, 100, 50, 100},
		{"small image kept", 40, 30, ThumbnailEdge, 40, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb, err := Thumbnail(solidBuffer(t, tt.w, tt.h, 0.2, 0.3, 0.4), tt.edge)
			if err != nil {
				t.Fatalf("Thumbnail failed: %v", err)
			}
			b := thumb.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnail_Errors(t *testing.T) {
	if _, err := Thumbnail(solidBuffer(t, 4, 4, 0, 0, 0), 0); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := Thumbnail(&ColorBuffer{}, 64); err == nil {
		t.Error("expected error for empty buffer")
	}
}

func TestSaveThumbnail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thumb.jpg")
	if err := SaveThumbnail(randomBuffer(t, 200, 100, 3), path, 64); err != nil {
		t.Fatalf("SaveThumbnail failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open thumbnail: %v", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("thumbnail is not JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("size: got %v, want 64x32", b)
	}
}

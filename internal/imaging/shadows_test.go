package imaging

import (
	"math"
	"testing"
)

func TestDefaultShadowHighlight(t *testing.T) {
	opts := DefaultShadowHighlight(Parameter{Shadows: 40, Highlights: 25, Saturation: -50})
	want := ShadowHighlightOptions{
		ShadowAmount:    0.4,
		ShadowTone:      0.5,
		ShadowRadius:    5,
		HighlightAmount: 0.25,
		HighlightTone:   0.5,
		HighlightRadius: 5,
		Color:           -0.5,
	}
	if opts != want {
		t.Errorf("got %+v, want %+v", opts, want)
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-3, 1, 0},
		{7, 1, 0},
		{-7, 3, 1},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestBoxBlur(t *testing.T) {
	t.Run("constant stays constant", func(t *testing.T) {
		src := make([]float32, 9*6)
		for i := range src {
			src[i] = 100
		}
		for _, v := range boxBlur(src, 9, 6, 5) {
			if !approx(v, 100, 1e-4) {
				t.Fatalf("got %v, want 100", v)
			}
		}
	})

	t.Run("impulse spreads over the window", func(t *testing.T) {
		w, h := 7, 7
		src := make([]float32, w*h)
		src[3*w+3] = 9

		out := boxBlur(src, w, h, 3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				want := float32(0)
				if x >= 2 && x <= 4 && y >= 2 && y <= 4 {
					want = 1
				}
				if !approx(out[y*w+x], want, 1e-5) {
					t.Errorf("(%d,%d): got %v, want %v", x, y, out[y*w+x], want)
				}
			}
		}
	})

	t.Run("size one is a no-op", func(t *testing.T) {
		src := []float32{1, 2, 3, 4}
		out := boxBlur(src, 2, 2, 1)
		for i := range src {
			if out[i] != src[i] {
				t.Fatalf("got %v, want %v", out, src)
			}
		}
	})
}

func TestShadowMask(t *testing.T) {
	mask := shadowMask([]float32{0, 63.75, 127.5, 200}, 0.5)
	want := []float32{255, 127.5, 0, 0}
	for i := range want {
		if !approx(mask[i], want[i], 1e-3) {
			t.Errorf("mask[%d] = %v, want %v", i, mask[i], want[i])
		}
	}

	for _, v := range shadowMask([]float32{0, 10}, 0) {
		if v != 0 {
			t.Error("zero tone should give an empty mask")
		}
	}
}

func TestHighlightMask(t *testing.T) {
	mask := highlightMask([]float32{255, 191.25, 127.5, 20}, 0.5)
	want := []float32{255, 127.5, 0, 0}
	for i := range want {
		if !approx(mask[i], want[i], 1e-3) {
			t.Errorf("mask[%d] = %v, want %v", i, mask[i], want[i])
		}
	}
}

func TestShadowHighlight_NeutralKeepsGreys(t *testing.T) {
	src := rampBuffer(t, 16, 16, 0, 1)
	// Greys only: copy red into green and blue.
	for i := 0; i < len(src.Pix); i += Channels {
		src.Pix[i+1], src.Pix[i+2] = src.Pix[i], src.Pix[i]
	}

	out := ShadowHighlight(src, DefaultShadowHighlight(Parameter{}))
	for i, v := range out.Pix {
		if !approx(v, src.Pix[i], 1.5/255) {
			t.Fatalf("Pix[%d]: got %v, want %v", i, v, src.Pix[i])
		}
	}
}

func TestShadowHighlight_LiftsShadows(t *testing.T) {
	src := solidBuffer(t, 8, 8, 0.1, 0.1, 0.1)
	out := ShadowHighlight(src, DefaultShadowHighlight(Parameter{Shadows: 100}))

	r, g, b := out.At(4, 4)
	if r <= 0.15 {
		t.Errorf("shadows not lifted: %v", r)
	}
	if r != g || g != b {
		t.Errorf("grey became colored: (%v,%v,%v)", r, g, b)
	}
}

func TestShadowHighlight_RecoversHighlights(t *testing.T) {
	src := solidBuffer(t, 8, 8, 0.9, 0.9, 0.9)
	out := ShadowHighlight(src, DefaultShadowHighlight(Parameter{Highlights: 100}))

	if r, _, _ := out.At(4, 4); r >= 0.85 {
		t.Errorf("highlights not compressed: %v", r)
	}
}

func TestShadowHighlight_Saturation(t *testing.T) {
	src := solidBuffer(t, 8, 8, 0.3, 0.2, 0.15)
	spread := func(b *ColorBuffer) float32 {
		r, _, bl := b.At(4, 4)
		return r - bl
	}

	boosted := ShadowHighlight(src, DefaultShadowHighlight(Parameter{Shadows: 50, Saturation: 100}))
	muted := ShadowHighlight(src, DefaultShadowHighlight(Parameter{Shadows: 50, Saturation: -100}))
	plain := ShadowHighlight(src, DefaultShadowHighlight(Parameter{Shadows: 50}))

	if !(spread(boosted) > spread(plain)) {
		t.Errorf("saturation boost: spread %v, plain %v", spread(boosted), spread(plain))
	}
	if !(spread(muted) < spread(plain)) {
		t.Errorf("saturation cut: spread %v, plain %v", spread(muted), spread(plain))
	}
}

func TestShadowHighlight_QuantisesAndClips(t *testing.T) {
	src := solidBuffer(t, 4, 4, 5, -2, 0.37)
	src.Set(0, 0, float32(math.Inf(1)), 0.5, 0.5)

	out := ShadowHighlight(src, DefaultShadowHighlight(Parameter{Shadows: 30, Highlights: 30}))
	for i, v := range out.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("Pix[%d] = %v outside [0,1]", i, v)
		}
		steps := v * 255
		if !approx(steps, float32(math.Round(float64(steps))), 1e-3) {
			t.Fatalf("Pix[%d] = %v is not a whole 8-bit step", i, v)
		}
	}
}

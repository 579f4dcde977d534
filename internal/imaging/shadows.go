package imaging

// ShadowHighlightOptions controls the local shadow/highlight correction.
//
// Amounts and tones are fractions in [0,1]. Radius is the width in pixels of
// the box window used to smooth the tone masks; a radius of 0 disables
// smoothing. Color in [-1,1] adjusts saturation in the corrected tones.
type ShadowHighlightOptions struct {
	ShadowAmount float64
	ShadowTone   float64
	ShadowRadius int

	HighlightAmount float64
	HighlightTone   float64
	HighlightRadius int

	Color float64
}

// DefaultShadowHighlight returns the options the render pipeline derives from
// a Parameter: both masks cover half the tonal range and use a 5 pixel window.
func DefaultShadowHighlight(p Parameter) ShadowHighlightOptions {
	return ShadowHighlightOptions{
		ShadowAmount:    float64(p.Shadows) / 100,
		ShadowTone:      0.5,
		ShadowRadius:    5,
		HighlightAmount: float64(p.Highlights) / 100,
		HighlightTone:   0.5,
		HighlightRadius: 5,
		Color:           float64(p.Saturation) / 100,
	}
}

// BT.601 style luma/chroma weights.
const (
	lumaR = 0.3
	lumaG = 0.59
	lumaB = 0.11
)

// ShadowHighlight lifts shadows and compresses highlights in luma while
// leaving chroma alone, then converts back to RGB.
//
// The correction works on a copy scaled to [0,255] and clipped to that range.
// Each pixel is weighted by a smoothed shadow or highlight mask, so the
// adjustment follows local brightness rather than tone alone. The result is
// rounded to whole 8-bit steps, clamped to [0,255] and rescaled to [0,1].
func ShadowHighlight(b *ColorBuffer, opts ShadowHighlightOptions) *ColorBuffer {
	out := b.Clone()
	shadowHighlightInPlace(out, opts)
	return out
}

func shadowHighlightInPlace(b *ColorBuffer, opts ShadowHighlightOptions) {
	w, h := b.Width, b.Height
	n := w * h

	lumY := make([]float32, n)
	chrU := make([]float32, n)
	chrV := make([]float32, n)
	forEachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			p := i * Channels
			r := clampf(b.Pix[p]*255, 0, 255)
			g := clampf(b.Pix[p+1]*255, 0, 255)
			bl := clampf(b.Pix[p+2]*255, 0, 255)
			lumY[i] = lumaR*r + lumaG*g + lumaB*bl
			chrU[i] = -r*0.168736 - g*0.331264 + bl*0.5
			chrV[i] = r*0.5 - g*0.418688 - bl*0.081312
		}
	})

	shadowMap := shadowMask(lumY, opts.ShadowTone)
	highlightMap := highlightMask(lumY, opts.HighlightTone)

	if opts.ShadowAmount*float64(opts.ShadowRadius) > 0 {
		shadowMap = boxBlur(shadowMap, w, h, opts.ShadowRadius)
	}
	if opts.HighlightAmount*float64(opts.HighlightRadius) > 0 {
		highlightMap = boxBlur(highlightMap, w, h, opts.HighlightRadius)
	}

	shadowLUT := ShadowLUT(ToneGain(opts.ShadowAmount))
	highlightLUT := HighlightLUT(ToneGain(opts.HighlightAmount))

	var chroma []float32
	if opts.Color != 0 {
		chroma = ChromaLUT(opts.Color)
	}

	forEachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			s := shadowMap[i] / 255
			hl := highlightMap[i] / 255

			ly := lumY[i]
			ly = (1-s)*ly + s*shadowLUT.Lookup(ly)
			ly = (1-hl)*ly + hl*highlightLUT.Lookup(ly)

			u, v := chrU[i], chrV[i]
			if chroma != nil {
				gain := chroma[chromaIndex(u, v)]
				wt := 1 - minf(2-(s+hl), 1)
				u = wt*u + (1-wt)*u*gain
				v = wt*v + (1-wt)*v*gain
			}

			p := i * Channels
			b.Pix[p] = toUnit(ly + 1.402*v)
			b.Pix[p+1] = toUnit(ly - 0.34414*u - 0.71414*v)
			b.Pix[p+2] = toUnit(ly + 1.772*u)
		}
	})
}

// shadowMask is 255 at black, falling linearly to 0 at the shadow tone.
func shadowMask(lumY []float32, tonePercent float64) []float32 {
	mask := make([]float32, len(lumY))
	tone := float32(tonePercent * 255)
	if tone <= 0 {
		return mask
	}
	for i, y := range lumY {
		if y < tone {
			mask[i] = 255 - y*255/tone
		}
	}
	return mask
}

// highlightMask is 255 at white, falling linearly to 0 at the highlight tone.
func highlightMask(lumY []float32, tonePercent float64) []float32 {
	mask := make([]float32, len(lumY))
	tone := float32(255 - tonePercent*255)
	if tone >= 255 {
		return mask
	}
	for i, y := range lumY {
		if y > tone {
			mask[i] = 255 - (255-y)*255/(255-tone)
		}
	}
	return mask
}

// boxBlur averages each sample over a size x size window centred on it.
// Borders reflect without repeating the edge sample (dcb|abcd|cba).
func boxBlur(src []float32, w, h, size int) []float32 {
	if size <= 1 {
		return src
	}
	anchor := size / 2
	norm := 1 / float64(size)

	tmp := make([]float32, len(src))
	forEachRow(h, func(y int) {
		row := src[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var sum float64
			for k := 0; k < size; k++ {
				sum += float64(row[reflect101(x-anchor+k, w)])
			}
			tmp[y*w+x] = float32(sum * norm)
		}
	})

	out := make([]float32, len(src))
	forEachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			var sum float64
			for k := 0; k < size; k++ {
				sum += float64(tmp[reflect101(y-anchor+k, h)*w+x])
			}
			out[y*w+x] = float32(sum * norm)
		}
	})
	return out
}

// reflect101 folds i back into [0,n) mirroring around the edge samples.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// toUnit rounds an 8-bit scaled value half up, clamps it to [0,255] and
// rescales it to [0,1].
func toUnit(v float32) float32 {
	q := float32(int32(v + 0.5))
	return clampf(q, 0, 255) / 255
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

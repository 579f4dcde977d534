package imaging

import "math"

// ContrastPivot is the linear tone held fixed by the contrast stage.
const ContrastPivot = 0.416

// ContrastGain converts a UI contrast value (-100..100) to a slope around
// ContrastPivot. Zero contrast gives a gain of exactly 1.
func ContrastGain(contrast float32) float32 {
	return contrast/800 + 1
}

// AdjustExposure scales every sample by 2^stops. No clipping is applied.
func AdjustExposure(b *ColorBuffer, stops float32) *ColorBuffer {
	out := b.Clone()
	exposeInPlace(out, stops)
	return out
}

// AdjustContrast stretches samples away from ContrastPivot.
func AdjustContrast(b *ColorBuffer, contrast float32) *ColorBuffer {
	out := b.Clone()
	contrastInPlace(out, contrast)
	return out
}

// AdjustBlackLevels remaps [0,1] onto [bl,1] where bl = level/200.
// Negative levels push the black point below zero.
func AdjustBlackLevels(b *ColorBuffer, level float32) *ColorBuffer {
	out := b.Clone()
	blackLevelsInPlace(out, level)
	return out
}

// ClipUnit returns a copy of b with every sample limited to [0,1].
func ClipUnit(b *ColorBuffer) *ColorBuffer {
	out := b.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = clampf(v, 0, 1)
	}
	return out
}

// EncodeSRGB clips b to [0,1] and applies the sRGB transfer curve. The
// result is clipped again so curve rounding never leaves [0,1].
func EncodeSRGB(b *ColorBuffer) *ColorBuffer {
	out := ClipUnit(b)
	forEachRow(out.Height, func(y int) {
		row := out.Pix[y*out.Width*Channels : (y+1)*out.Width*Channels]
		for i, v := range row {
			row[i] = clampf(SRGB(v), 0, 1)
		}
	})
	return out
}

// SRGB encodes a linear value in [0,1] with the piecewise sRGB curve.
func SRGB(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}

func exposeInPlace(b *ColorBuffer, stops float32) {
	if stops == 0 {
		return
	}
	factor := float32(math.Exp2(float64(stops)))
	forEachRow(b.Height, func(y int) {
		row := b.Pix[y*b.Width*Channels : (y+1)*b.Width*Channels]
		for i := range row {
			row[i] *= factor
		}
	})
}

func contrastInPlace(b *ColorBuffer, contrast float32) {
	gain := ContrastGain(contrast)
	if gain == 1 {
		return
	}
	const pivot = float32(ContrastPivot)
	forEachRow(b.Height, func(y int) {
		row := b.Pix[y*b.Width*Channels : (y+1)*b.Width*Channels]
		for i, v := range row {
			row[i] = (v-pivot)*gain + pivot
		}
	})
}

func blackLevelsInPlace(b *ColorBuffer, level float32) {
	bl := level / 100 / 2
	if bl == 0 {
		return
	}
	scale := 1 - bl
	forEachRow(b.Height, func(y int) {
		row := b.Pix[y*b.Width*Channels : (y+1)*b.Width*Channels]
		for i, v := range row {
			row[i] = v*scale + bl
		}
	})
}

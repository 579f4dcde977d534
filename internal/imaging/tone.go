package imaging

import "math"

// ToneLUT maps an 8-bit tone to a corrected 8-bit tone.
type ToneLUT [256]uint8

// ChromaLUTSize is the number of entries in a chroma gain table, indexed by
// U²+V² of a pixel in the [0,255] scaled YUV space.
const ChromaLUTSize = 32768

// ToneGain converts a correction amount in [0,1] to the exponent used by the
// shadow and highlight curves.
func ToneGain(amount float64) float64 {
	return 1 + amount*6
}

// ShadowLUT builds the shadow lifting curve 255*(1-(1-t/255)^gain).
// A gain of 1 yields the identity table.
func ShadowLUT(gain float64) ToneLUT {
	var lut ToneLUT
	for t := range lut {
		v := (1 - math.Pow(1-float64(t)/255, gain)) * 255
		lut[t] = roundByte(v)
	}
	return lut
}

// HighlightLUT builds the highlight compression curve 255*(t/255)^gain.
// A gain of 1 yields the identity table.
func HighlightLUT(gain float64) ToneLUT {
	var lut ToneLUT
	for t := range lut {
		v := math.Pow(float64(t)/255, gain) * 255
		lut[t] = roundByte(v)
	}
	return lut
}

// Lookup returns the table entry for v, clamping the index to [0,255].
// Fractional indices are truncated.
func (l *ToneLUT) Lookup(v float32) float32 {
	return float32(l[toneIndex(v)])
}

func toneIndex(v float32) int {
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v >= 255 {
		return 255
	}
	return int(v)
}

// ChromaLUT builds the saturation gain table for a color amount in [-1,1].
// Positive amounts boost weak chroma more than strong chroma; negative
// amounts desaturate strong chroma more than weak chroma.
func ChromaLUT(amount float64) []float32 {
	lut := make([]float32, ChromaLUTSize)
	for i := range lut {
		s := math.Sqrt(float64(i)) / 128
		if amount > 0 {
			lut[i] = float32((1-s)*amount + 1)
		} else {
			lut[i] = float32(s*amount + 1)
		}
	}
	return lut
}

// chromaIndex rounds U²+V² and clamps it to the chroma table.
func chromaIndex(u, v float32) int {
	sq := float64(u)*float64(u) + float64(v)*float64(v) + 0.5
	if !(sq > 0) {
		return 0
	}
	if sq >= ChromaLUTSize-1 {
		return ChromaLUTSize - 1
	}
	return int(sq)
}

// roundByte rounds half up and clamps to [0,255].
func roundByte(v float64) uint8 {
	i := int(v + 0.5)
	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}
	return uint8(i)
}

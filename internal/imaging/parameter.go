package imaging

// Parameter holds the user-facing tone adjustments for one image.
//
// The zero value is the neutral edit. Parameter is a plain value and is
// copied into every render request, so a render never observes later edits.
type Parameter struct {
	// Exposure in photographic stops, typically -5..5.
	Exposure float32 `json:"exposure"`

	// Contrast in UI units, -100..100.
	Contrast float32 `json:"contrast"`

	// Highlights recovery amount, 0..100.
	Highlights float32 `json:"highlights"`

	// Shadows lift amount, 0..100.
	Shadows float32 `json:"shadows"`

	// BlackLevels raises or lowers the black point, -100..100.
	BlackLevels float32 `json:"black_levels"`

	// Saturation adjusts chroma in the shadow/highlight stage, -100..100.
	Saturation float32 `json:"saturation"`
}

// Parameter ranges.
const (
	MinExposure    = -5
	MaxExposure    = 5
	MinContrast    = -100
	MaxContrast    = 100
	MinHighlights  = 0
	MaxHighlights  = 100
	MinShadows     = 0
	MaxShadows     = 100
	MinBlackLevels = -100
	MaxBlackLevels = 100
	MinSaturation  = -100
	MaxSaturation  = 100
)

// Reset returns every adjustment to zero.
func (p *Parameter) Reset() {
	*p = Parameter{}
}

// IsNeutral reports whether p applies no adjustment.
func (p Parameter) IsNeutral() bool {
	return p == Parameter{}
}

// Clamp limits every field to its documented range.
func (p Parameter) Clamp() Parameter {
	return Parameter{
		Exposure:    clampf(p.Exposure, MinExposure, MaxExposure),
		Contrast:    clampf(p.Contrast, MinContrast, MaxContrast),
		Highlights:  clampf(p.Highlights, MinHighlights, MaxHighlights),
		Shadows:     clampf(p.Shadows, MinShadows, MaxShadows),
		BlackLevels: clampf(p.BlackLevels, MinBlackLevels, MaxBlackLevels),
		Saturation:  clampf(p.Saturation, MinSaturation, MaxSaturation),
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

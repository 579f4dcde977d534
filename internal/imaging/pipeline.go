package imaging

import "fmt"

// Render applies p to src and returns a new linear buffer.
//
// Stages run in a fixed order: exposure, contrast, black levels, then the
// shadow/highlight correction. The result is still linear; gamma encoding
// and clipping are left to the encoder. Render does not mutate src and has
// no shared state, so identical inputs give bit-identical output.
func Render(src *ColorBuffer, p Parameter) (*ColorBuffer, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	work := src.Clone()
	exposeInPlace(work, p.Exposure)
	contrastInPlace(work, p.Contrast)
	blackLevelsInPlace(work, p.BlackLevels)
	shadowHighlightInPlace(work, DefaultShadowHighlight(p))
	return work, nil
}

// Package suggest bridges the editor and a remote vision model that proposes
// adjustments.
//
// The package does no networking. BuildPrompt produces the text sent along
// with the current preview, and Parse turns the model's JSON reply into a
// Parameter that callers feed back through the normal render path.
package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
)

// ErrInvalidResponse is returned when a reply is not the expected JSON object.
var ErrInvalidResponse = errors.New("suggestion response is not valid JSON")

// Suggestion is a parsed model reply.
type Suggestion struct {
	// Feedback is the model's free-text advice.
	Feedback string `json:"feedback"`

	// Params are the recommended adjustments, clamped to their ranges.
	Params imaging.Parameter `json:"params"`
}

// BuildPrompt returns the instruction text sent with the preview image.
func BuildPrompt(request string, current imaging.Parameter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this image: I want %s; ", strings.TrimSpace(request))
	fmt.Fprintf(&b, "Current parameters are {exposure: %s, contrast: %s, highlights: %s, shadows: %s, black_levels: %s, saturation: %s} ",
		formatValue(current.Exposure), formatValue(current.Contrast), formatValue(current.Highlights),
		formatValue(current.Shadows), formatValue(current.BlackLevels), formatValue(current.Saturation))
	b.WriteString(`and return a JSON object with the following fields:
{
  "improvement_suggestions": "A couple of sentences on how to improve the image.",
  "exposure_adjustment": "A float number between -5 and 5 indicating the recommended stops of exposure adjustment.",
  "contrast_adjustment": "An integer between -100 and 100 indicating the recommended contrast adjustment.",
  "highlight_adjustment": "An integer between 0 and 100 indicating the recommended highlight adjustment.",
  "shadows_adjustment": "An integer between 0 and 100 indicating the recommended shadows adjustment.",
  "black_levels_adjustment": "An integer between -100 and 100 indicating the recommended black levels adjustment.",
  "saturation_adjustment": "An integer between -100 and 100 indicating the recommended saturation adjustment."
}
Ensure the response is valid JSON and nothing else.
`)
	return b.String()
}

func formatValue(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// number accepts both JSON numbers and numeric strings; models are not
// consistent about quoting.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	*n = number(f)
	return nil
}

type response struct {
	Feedback    string  `json:"improvement_suggestions"`
	Exposure    *number `json:"exposure_adjustment"`
	Contrast    *number `json:"contrast_adjustment"`
	Highlights  *number `json:"highlight_adjustment"`
	Shadows     *number `json:"shadows_adjustment"`
	BlackLevels *number `json:"black_levels_adjustment"`
	Saturation  *number `json:"saturation_adjustment"`
}

// Parse decodes a model reply. Markdown code fences around the JSON are
// ignored. Saturation is optional and defaults to zero; the other five
// adjustments are required.
func Parse(text string) (*Suggestion, error) {
	body := stripFences(text)

	var r response
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	required := map[string]*number{
		"exposure_adjustment":     r.Exposure,
		"contrast_adjustment":     r.Contrast,
		"highlight_adjustment":    r.Highlights,
		"shadows_adjustment":      r.Shadows,
		"black_levels_adjustment": r.BlackLevels,
	}
	for name, v := range required {
		if v == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidResponse, name)
		}
	}

	p := imaging.Parameter{
		Exposure:    float32(*r.Exposure),
		Contrast:    float32(*r.Contrast),
		Highlights:  float32(*r.Highlights),
		Shadows:     float32(*r.Shadows),
		BlackLevels: float32(*r.BlackLevels),
	}
	if r.Saturation != nil {
		p.Saturation = float32(*r.Saturation)
	}

	return &Suggestion{
		Feedback: strings.TrimSpace(r.Feedback),
		Params:   p.Clamp(),
	}, nil
}

// stripFences removes a surrounding ``` or ```json block.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

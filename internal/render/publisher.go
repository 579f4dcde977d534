package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	rimaging "github.com/ironsheep/rawtone-mcp/internal/imaging"
)

// Artifact base names inside the publisher directory.
const (
	PreviewName  = "preview"
	OriginalName = "original"
)

// ArtifactPublisher writes each published render to a fixed file in Dir,
// replacing the previous one. Artifacts are 8-bit.
type ArtifactPublisher struct {
	Dir    string
	Format imaging.Format
}

// NewArtifactPublisher creates dir if needed and publishes in the given
// format extension ("png", "tif", "jpg", ...).
func NewArtifactPublisher(dir, ext string) (*ArtifactPublisher, error) {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("preview format %q: %w", ext, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}
	return &ArtifactPublisher{Dir: dir, Format: format}, nil
}

// Path returns the artifact path for the edited or original render.
func (p *ArtifactPublisher) Path(original bool) string {
	name := PreviewName
	if original {
		name = OriginalName
	}
	return filepath.Join(p.Dir, name+extensionFor(p.Format))
}

// Publish encodes img and writes it to its artifact path.
func (p *ArtifactPublisher) Publish(img *rimaging.ColorBuffer, original bool) (string, []byte, error) {
	encoded, err := rimaging.EncodeBytes(img, p.Format, rimaging.BitDepth8)
	if err != nil {
		return "", nil, err
	}
	path := p.Path(original)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, encoded, nil
}

func extensionFor(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return ".jpg"
	case imaging.PNG:
		return ".png"
	case imaging.GIF:
		return ".gif"
	case imaging.TIFF:
		return ".tif"
	case imaging.BMP:
		return ".bmp"
	default:
		return ""
	}
}

// MimeType returns the MIME type of the artifacts.
func (p *ArtifactPublisher) MimeType() string {
	switch p.Format {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	default:
		return "image/png"
	}
}

package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ThumbnailEdge is the default long edge of library thumbnails, in pixels.
const ThumbnailEdge = 512

// Thumbnail renders b for display and shrinks it to fit a longEdge square,
// keeping the aspect ratio. Images already small enough are not enlarged.
func Thumbnail(b *ColorBuffer, longEdge int) (*image.NRGBA, error) {
	if longEdge <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %d", longEdge)
	}
	img, err := ToImage(b, BitDepth8)
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, longEdge, longEdge, imaging.Lanczos), nil
}

// SaveThumbnail writes a thumbnail of b to path; the format follows the
// extension (library thumbnails use .jpg).
func SaveThumbnail(b *ColorBuffer, path string, longEdge int) error {
	thumb, err := Thumbnail(b, longEdge)
	if err != nil {
		return err
	}
	if err := imaging.Save(thumb, path, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return nil
}

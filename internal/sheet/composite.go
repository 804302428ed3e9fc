package sheet

import (
	"fmt"
	"image"
	"image/draw"

	"impostor/internal/raster"
)

// Compose resizes every cropped record to tileWidth x tileHeight and
// stacks them on a transparent canvas, batch order top to bottom. Band n
// of the result is exactly record n's resized raster; source alpha is
// copied through, never flattened against a background.
func Compose(records []Record, tileWidth, tileHeight int, backend raster.Backend) (*image.RGBA, error) {
	if tileWidth < 1 || tileHeight < 1 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrDegenerateGeometry, tileWidth, tileHeight)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrDegenerateGeometry)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, tileWidth, tileHeight*len(records)))
	for n, r := range records {
		tile, err := backend.Resize(r.Image, tileWidth, tileHeight)
		if err != nil {
			return nil, fmt.Errorf("resize %s: %w", r.Name, err)
		}
		band := image.Rect(0, n*tileHeight, tileWidth, (n+1)*tileHeight)
		draw.Draw(canvas, band, tile, image.Point{}, draw.Src)
	}
	return canvas, nil
}

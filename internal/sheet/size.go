package sheet

import (
	"fmt"
	"image"
)

// CalcPhysicalSize converts the crop's pixel geometry into the real-world
// billboard size. Meters-per-pixel is anchored to the pre-crop maximum
// extents, which are the pixel dimensions of the full captured frame;
// anchoring to the content-only crop would distort the scale.
func CalcPhysicalSize(frame FrameSize, maxWidth, maxHeight int, crop image.Rectangle) (PhysicalSize, error) {
	if maxWidth < 1 || maxHeight < 1 {
		return PhysicalSize{}, fmt.Errorf("%w: frame pixel extent %dx%d", ErrDegenerateGeometry, maxWidth, maxHeight)
	}
	if crop.Dx() < 1 || crop.Dy() < 1 {
		return PhysicalSize{}, fmt.Errorf("%w: crop rectangle %v", ErrDegenerateGeometry, crop)
	}

	metersPerPixelX := frame.Width / float64(maxWidth)
	metersPerPixelY := frame.Height / float64(maxHeight)

	return PhysicalSize{
		Width:  metersPerPixelX * float64(crop.Dx()),
		Height: metersPerPixelY * float64(crop.Dy()),
	}, nil
}

// Package sheet assembles extracted captures into one aligned,
// size-normalized impostor texture: it validates that captures agree in
// scale, computes the single shared crop rectangle, stacks the resized
// tiles vertically and derives the physical billboard size.
package sheet

import (
	"errors"
	"image"
)

// Failure categories. The CLI maps these to distinct exit codes.
var (
	// ErrExtraction marks a capture whose frame or content could not be
	// isolated. The batch is all-or-nothing, so one bad capture fails
	// the whole run.
	ErrExtraction = errors.New("extraction failed")

	// ErrConsistency marks a batch whose cropped sizes vary beyond the
	// allowed tolerance band.
	ErrConsistency = errors.New("capture sizes inconsistent")

	// ErrDegenerateGeometry marks zero-area boxes or zero pixel extents
	// that would otherwise produce infinite physical sizes.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// Record is one capture after extraction: the content raster with the
// backdrop keyed out, and the content bounding box in the raster's
// coordinate space. The uniform crop replaces Image with the shared-crop
// version; the pre-crop raster is not retained.
type Record struct {
	Name  string
	Image *image.RGBA
	BBox  image.Rectangle
}

// FrameSize is the physical size, in meters, that the captured frame
// rectangle corresponds to.
type FrameSize struct {
	Width  float64
	Height float64
}

// PhysicalSize is the real-world size the finished billboard must have,
// in the same unit as FrameSize.
type PhysicalSize struct {
	Width  float64
	Height float64
}

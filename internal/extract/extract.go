// Package extract isolates the usable content of a single capture: the
// photograph is surrounded by a solid-color frame and backed by a
// solid-color backdrop, and only the region inside the frame, with the
// backdrop keyed to transparent, is meaningful to the alignment pipeline.
package extract

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Normalizer reduces one capture raster to its content: a cropped RGBA
// image with the backdrop transparent, plus the bounding box of the
// remaining opaque content in the cropped image's coordinate space.
//
// The alignment pipeline does not know how the content is found; other
// extraction strategies can be substituted behind this interface.
type Normalizer interface {
	Normalize(img *image.RGBA) (*image.RGBA, image.Rectangle, error)
}

const (
	defaultFrameTolerance      = 24
	defaultBackgroundTolerance = 32
)

// FrameNormalizer detects the solid frame from the outer border, crops to
// the frame interior and keys the solid backdrop color to transparent.
type FrameNormalizer struct {
	// FrameTolerance is the max per-channel distance from the sampled
	// frame color for a pixel to still count as frame.
	FrameTolerance int
	// BackgroundTolerance is the same for the backdrop keying pass.
	BackgroundTolerance int
}

// NewFrameNormalizer returns a FrameNormalizer with default tolerances.
func NewFrameNormalizer() *FrameNormalizer {
	return &FrameNormalizer{
		FrameTolerance:      defaultFrameTolerance,
		BackgroundTolerance: defaultBackgroundTolerance,
	}
}

// Normalize implements Normalizer.
func (f *FrameNormalizer) Normalize(img *image.RGBA) (*image.RGBA, image.Rectangle, error) {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return nil, image.Rectangle{}, fmt.Errorf("image %dx%d too small to hold a frame", b.Dx(), b.Dy())
	}

	frame := img.RGBAAt(b.Min.X, b.Min.Y)
	corners := []image.Point{
		{b.Min.X, b.Min.Y},
		{b.Max.X - 1, b.Min.Y},
		{b.Min.X, b.Max.Y - 1},
		{b.Max.X - 1, b.Max.Y - 1},
	}
	for _, pt := range corners {
		if !f.isFrame(img.RGBAAt(pt.X, pt.Y), frame) {
			return nil, image.Rectangle{}, fmt.Errorf("corner %v does not match frame color", pt)
		}
	}

	interior, err := f.frameInterior(img, frame)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	cropped := image.NewRGBA(image.Rect(0, 0, interior.Dx(), interior.Dy()))
	draw.Draw(cropped, cropped.Bounds(), img, interior.Min, draw.Src)

	backdrop := cropped.RGBAAt(0, 0)
	keyBackground(cropped, backdrop, f.BackgroundTolerance)

	bbox, ok := opaqueBounds(cropped)
	if !ok {
		return nil, image.Rectangle{}, fmt.Errorf("no content left after removing backdrop")
	}

	return cropped, bbox, nil
}

// frameInterior walks inward from each edge while full rows/columns still
// match the frame color. The frame must leave a non-empty interior.
func (f *FrameNormalizer) frameInterior(img *image.RGBA, frame color.RGBA) (image.Rectangle, error) {
	b := img.Bounds()

	left := b.Min.X
	for left < b.Max.X && f.columnIsFrame(img, left, frame) {
		left++
	}
	right := b.Max.X
	for right > left && f.columnIsFrame(img, right-1, frame) {
		right--
	}
	top := b.Min.Y
	for top < b.Max.Y && f.rowIsFrame(img, top, frame) {
		top++
	}
	bottom := b.Max.Y
	for bottom > top && f.rowIsFrame(img, bottom-1, frame) {
		bottom--
	}

	if left == b.Min.X || right == b.Max.X || top == b.Min.Y || bottom == b.Max.Y {
		return image.Rectangle{}, fmt.Errorf("frame does not enclose the image on all sides")
	}
	if left >= right || top >= bottom {
		return image.Rectangle{}, fmt.Errorf("frame leaves no interior")
	}
	return image.Rect(left, top, right, bottom), nil
}

func (f *FrameNormalizer) columnIsFrame(img *image.RGBA, x int, frame color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if !f.isFrame(img.RGBAAt(x, y), frame) {
			return false
		}
	}
	return true
}

func (f *FrameNormalizer) rowIsFrame(img *image.RGBA, y int, frame color.RGBA) bool {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		if !f.isFrame(img.RGBAAt(x, y), frame) {
			return false
		}
	}
	return true
}

func (f *FrameNormalizer) isFrame(c, frame color.RGBA) bool {
	return within(c, frame, f.FrameTolerance)
}

func keyBackground(img *image.RGBA, backdrop color.RGBA, tolerance int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if within(img.RGBAAt(x, y), backdrop, tolerance) {
				i := img.PixOffset(x, y)
				img.Pix[i+3] = 0
			}
		}
	}
}

// opaqueBounds returns the bounding box of pixels with non-zero alpha.
func opaqueBounds(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	found := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 0 {
				continue
			}
			found = true
			if x < minX {
				minX = x
			}
			if x >= maxX {
				maxX = x + 1
			}
			if y < minY {
				minY = y
			}
			if y >= maxY {
				maxY = y + 1
			}
		}
	}
	if !found {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}

func within(c, ref color.RGBA, tolerance int) bool {
	return absDiff(c.R, ref.R) <= tolerance &&
		absDiff(c.G, ref.G) <= tolerance &&
		absDiff(c.B, ref.B) <= tolerance
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

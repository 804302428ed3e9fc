package sheet

import (
	"image"
	"image/draw"
)

// SharedCropRect computes the single crop rectangle applied to every
// capture: the smallest rectangle that contains the union of all content
// bounding boxes and is horizontally symmetric about the canvas midpoint.
// Only the horizontal axis is centered; the vertical extent is exactly the
// union's vertical span.
func SharedCropRect(records []Record, maxWidth int) image.Rectangle {
	union := records[0].BBox
	for _, r := range records[1:] {
		union = union.Union(r.BBox)
	}

	xcenter := maxWidth / 2
	leftSpan := xcenter - union.Min.X
	if leftSpan < 0 {
		leftSpan = 0
	}
	rightSpan := union.Max.X - xcenter
	if rightSpan > maxWidth {
		rightSpan = maxWidth
	}
	// Symmetric about xcenter, wide enough that neither side clips
	// content even if that includes blank margin on the shorter side.
	halfSpan := leftSpan
	if rightSpan > halfSpan {
		halfSpan = rightSpan
	}

	return image.Rect(xcenter-halfSpan, union.Min.Y, xcenter+halfSpan, union.Max.Y)
}

// ApplyCrop crops every record's raster under rect, returning a new record
// set whose images all have identical pixel dimensions. Regions of rect
// outside a source raster stay transparent.
func ApplyCrop(records []Record, rect image.Rectangle) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(dst, dst.Bounds(), r.Image, rect.Min, draw.Src)
		out[i] = Record{Name: r.Name, Image: dst, BBox: r.BBox}
	}
	return out
}

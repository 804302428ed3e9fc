package sheet

import "fmt"

// MaxSizeMismatch is the allowed variation between each capture's cropped
// size and the largest cropped size in the batch. Downstream stages assume
// all captures are at nearly the same physical scale; bigger mismatches
// mean a capture error that must not be absorbed silently by scaling.
const MaxSizeMismatch = 0.05

// ValidateSizes checks that every record's cropped size lies within the
// tolerance band of the batch maximum and returns the maximum extents,
// which are the canvas for the shared crop and the pixel anchor for the
// physical size calculation.
func ValidateSizes(records []Record) (maxWidth, maxHeight int, err error) {
	if len(records) == 0 {
		return 0, 0, fmt.Errorf("%w: empty batch", ErrDegenerateGeometry)
	}

	for _, r := range records {
		b := r.Image.Bounds()
		if b.Dx() > maxWidth {
			maxWidth = b.Dx()
		}
		if b.Dy() > maxHeight {
			maxHeight = b.Dy()
		}
	}
	if maxWidth < 1 || maxHeight < 1 {
		return 0, 0, fmt.Errorf("%w: zero pixel extents", ErrDegenerateGeometry)
	}

	for _, r := range records {
		b := r.Image.Bounds()
		w, h := b.Dx(), b.Dy()
		if float64(maxWidth-w)/float64(maxWidth) > MaxSizeMismatch ||
			float64(maxHeight-h)/float64(maxHeight) > MaxSizeMismatch {
			return 0, 0, fmt.Errorf("%w: %s is %dx%d against batch max %dx%d",
				ErrConsistency, r.Name, w, h, maxWidth, maxHeight)
		}
	}

	return maxWidth, maxHeight, nil
}

package sheet

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestCalcPhysicalSizeReferenceScenario(t *testing.T) {
	frame := FrameSize{Width: 6.0, Height: 3.0}
	crop := image.Rect(38, 10, 162, 90)

	size, err := CalcPhysicalSize(frame, 200, 100, crop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(size.Width-3.72) > 1e-9 || math.Abs(size.Height-2.4) > 1e-9 {
		t.Fatalf("expected 3.72 x 2.4 m, got %v x %v", size.Width, size.Height)
	}
}

func TestCalcPhysicalSizeScaleLinear(t *testing.T) {
	crop := image.Rect(38, 10, 162, 90)

	base, err := CalcPhysicalSize(FrameSize{Width: 6.0, Height: 3.0}, 200, 100, crop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doubled, err := CalcPhysicalSize(FrameSize{Width: 12.0, Height: 6.0}, 200, 100, crop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(doubled.Width-2*base.Width) > 1e-9 || math.Abs(doubled.Height-2*base.Height) > 1e-9 {
		t.Fatalf("doubling the frame should double the size: base %v, doubled %v", base, doubled)
	}
}

func TestCalcPhysicalSizeIsPure(t *testing.T) {
	frame := FrameSize{Width: 6.0, Height: 3.0}
	crop := image.Rect(38, 10, 162, 90)

	first, err := CalcPhysicalSize(frame, 200, 100, crop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := CalcPhysicalSize(frame, 200, 100, crop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("identical inputs produced %v then %v", first, second)
	}
}

func TestCalcPhysicalSizeRejectsDegenerateInput(t *testing.T) {
	frame := FrameSize{Width: 6.0, Height: 3.0}
	valid := image.Rect(38, 10, 162, 90)

	cases := []struct {
		name string
		maxW int
		maxH int
		crop image.Rectangle
	}{
		{"zero width", 0, 100, valid},
		{"zero height", 200, 0, valid},
		{"empty crop", 200, 100, image.Rect(10, 10, 10, 90)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CalcPhysicalSize(frame, tc.maxW, tc.maxH, tc.crop); !errors.Is(err, ErrDegenerateGeometry) {
				t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
			}
		})
	}
}

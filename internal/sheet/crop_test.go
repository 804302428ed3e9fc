package sheet

import (
	"image"
	"image/color"
	"testing"
)

func TestSharedCropRectReferenceScenario(t *testing.T) {
	records := []Record{
		newRecord("a.png", 200, 100, image.Rect(40, 10, 160, 90)),
		newRecord("b.png", 200, 100, image.Rect(42, 10, 158, 88)),
		newRecord("c.png", 200, 100, image.Rect(38, 12, 162, 90)),
	}

	rect := SharedCropRect(records, 200)
	want := image.Rect(38, 10, 162, 90)
	if rect != want {
		t.Fatalf("expected crop rect %v, got %v", want, rect)
	}
}

func TestSharedCropRectSymmetryAndContainment(t *testing.T) {
	cases := []struct {
		name     string
		maxWidth int
		bboxes   []image.Rectangle
	}{
		{"centered", 200, []image.Rectangle{image.Rect(40, 10, 160, 90)}},
		{"left heavy", 200, []image.Rectangle{image.Rect(10, 5, 120, 95)}},
		{"right heavy", 200, []image.Rectangle{image.Rect(90, 0, 195, 40)}},
		{"mixed", 300, []image.Rectangle{
			image.Rect(20, 10, 140, 50),
			image.Rect(130, 5, 290, 60),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var records []Record
			union := tc.bboxes[0]
			for i, b := range tc.bboxes {
				records = append(records, newRecord(string(rune('a'+i))+".png", tc.maxWidth, 100, b))
				union = union.Union(b)
			}

			rect := SharedCropRect(records, tc.maxWidth)
			xcenter := tc.maxWidth / 2
			if rect.Min.X+rect.Max.X != 2*xcenter {
				t.Fatalf("crop rect %v not symmetric about x=%d", rect, xcenter)
			}
			if !union.In(rect) {
				t.Fatalf("crop rect %v does not contain union %v", rect, union)
			}
			if rect.Min.Y != union.Min.Y || rect.Max.Y != union.Max.Y {
				t.Fatalf("vertical extent of %v should equal union's %v", rect, union)
			}
		})
	}
}

func TestApplyCropYieldsIdenticalDimensions(t *testing.T) {
	records := []Record{
		newRecord("a.png", 200, 100, image.Rect(40, 10, 160, 90)),
		newRecord("b.png", 198, 96, image.Rect(42, 10, 158, 88)),
		newRecord("c.png", 200, 100, image.Rect(38, 12, 162, 90)),
	}
	rect := SharedCropRect(records, 200)

	cropped := ApplyCrop(records, rect)
	if len(cropped) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(cropped))
	}
	for _, r := range cropped {
		b := r.Image.Bounds()
		if b.Dx() != rect.Dx() || b.Dy() != rect.Dy() {
			t.Fatalf("record %s cropped to %dx%d, want %dx%d", r.Name, b.Dx(), b.Dy(), rect.Dx(), rect.Dy())
		}
	}
}

func TestApplyCropTranslatesContent(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	red := color.RGBA{R: 255, A: 255}
	src.SetRGBA(50, 50, red)
	records := []Record{{Name: "a.png", Image: src, BBox: image.Rect(40, 10, 160, 90)}}

	cropped := ApplyCrop(records, image.Rect(38, 10, 162, 90))
	got := cropped[0].Image.RGBAAt(50-38, 50-10)
	if got != red {
		t.Fatalf("expected red pixel at translated position, got %v", got)
	}
}

func TestApplyCropPadsOutsideSourceTransparent(t *testing.T) {
	// A slightly narrower source leaves the crop's right margin empty.
	records := []Record{newRecord("a.png", 150, 100, image.Rect(40, 10, 140, 90))}

	cropped := ApplyCrop(records, image.Rect(38, 10, 162, 90))
	img := cropped[0].Image
	got := img.RGBAAt(img.Bounds().Max.X-1, 0)
	if got.A != 0 {
		t.Fatalf("expected transparent padding beyond source bounds, got alpha %d", got.A)
	}
}

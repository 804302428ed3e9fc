package extract

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

var (
	testFrame    = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	testBackdrop = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	testContent  = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// framed builds a capture: frame border of the given thickness, backdrop
// interior, one content rectangle in full-image coordinates.
func framed(w, h, border int, content image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(testFrame), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(border, border, w-border, h-border), image.NewUniform(testBackdrop), image.Point{}, draw.Src)
	draw.Draw(img, content, image.NewUniform(testContent), image.Point{}, draw.Src)
	return img
}

func TestNormalizeCropsAndKeys(t *testing.T) {
	img := framed(200, 100, 10, image.Rect(60, 30, 140, 70))

	cropped, bbox, err := NewFrameNormalizer().Normalize(img)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if b := cropped.Bounds(); b.Dx() != 180 || b.Dy() != 80 {
		t.Fatalf("expected 180x80 interior, got %dx%d", b.Dx(), b.Dy())
	}
	// Content shifts by the border thickness into interior coordinates.
	if want := image.Rect(50, 20, 130, 60); bbox != want {
		t.Fatalf("expected bbox %v, got %v", want, bbox)
	}

	// Backdrop pixels are keyed, content pixels stay opaque.
	if a := cropped.RGBAAt(0, 0).A; a != 0 {
		t.Fatalf("backdrop corner still opaque, alpha=%d", a)
	}
	if a := cropped.RGBAAt(90, 40).A; a != 255 {
		t.Fatalf("content center not opaque, alpha=%d", a)
	}
	if c := cropped.RGBAAt(90, 40); c.R != testContent.R || c.G != testContent.G || c.B != testContent.B {
		t.Fatalf("content color altered: %v", c)
	}
}

func TestNormalizeToleratesNearFramePixels(t *testing.T) {
	img := framed(60, 40, 5, image.Rect(20, 15, 40, 25))
	// Nudge one border pixel within tolerance of the sampled frame color.
	img.SetRGBA(2, 2, color.RGBA{R: 50, G: 45, B: 38, A: 255})

	_, bbox, err := NewFrameNormalizer().Normalize(img)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if want := image.Rect(15, 10, 35, 20); bbox != want {
		t.Fatalf("expected bbox %v, got %v", want, bbox)
	}
}

func TestNormalizeRejectsMismatchedCorner(t *testing.T) {
	img := framed(60, 40, 5, image.Rect(20, 15, 40, 25))
	img.SetRGBA(59, 0, color.RGBA{R: 250, G: 250, B: 250, A: 255})

	if _, _, err := NewFrameNormalizer().Normalize(img); err == nil {
		t.Fatalf("expected error for mismatched corner")
	}
}

func TestNormalizeRejectsUnenclosedFrame(t *testing.T) {
	// Frame color everywhere except a gap that reaches the right edge, so
	// no column on that side is fully frame-colored.
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	draw.Draw(img, img.Bounds(), image.NewUniform(testFrame), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(5, 5, 60, 35), image.NewUniform(testBackdrop), image.Point{}, draw.Src)
	img.SetRGBA(59, 0, testFrame)
	img.SetRGBA(59, 39, testFrame)

	if _, _, err := NewFrameNormalizer().Normalize(img); err == nil {
		t.Fatalf("expected error for frame open on one side")
	}
}

func TestNormalizeRejectsEmptyContent(t *testing.T) {
	// Frame around pure backdrop: everything inside keys to transparent.
	img := framed(60, 40, 5, image.Rect(0, 0, 0, 0))

	if _, _, err := NewFrameNormalizer().Normalize(img); err == nil {
		t.Fatalf("expected error when nothing remains after keying")
	}
}

func TestNormalizeRejectsTinyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if _, _, err := NewFrameNormalizer().Normalize(img); err == nil {
		t.Fatalf("expected error for image too small to hold a frame")
	}
}

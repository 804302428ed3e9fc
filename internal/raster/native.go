package raster

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Native is a pure-Go backend on the standard image packages plus
// golang.org/x/image for resampling and the extra decode formats.
type Native struct{}

// NewNative returns the native backend.
func NewNative() *Native {
	return &Native{}
}

func (n *Native) Name() string { return "native" }

// Available always reports true; the native backend has no external runtime.
func (n *Native) Available() bool { return true }

func (n *Native) Decode(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ToRGBA(img), nil
}

func (n *Native) Encode(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func (n *Native) Resize(src *image.RGBA, width, height int) (*image.RGBA, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("resize to %dx%d: degenerate target", width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// CatmullRom is the sharpest resampler x/image ships; Src keeps the
	// source alpha instead of compositing against the empty destination.
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// ToRGBA converts any decoded image to RGBA without copying when it
// already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

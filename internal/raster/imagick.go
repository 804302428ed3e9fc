package raster

import (
	"fmt"
	"image"
	"sync"

	"gopkg.in/gographics/imagick.v3/imagick"
)

var imagickInit sync.Once

// Imagick is a MagickWand-backed raster backend. It trades a cgo
// dependency for ImageMagick's resampling and format coverage.
type Imagick struct{}

// NewImagick returns the ImageMagick backend, initializing the wand
// environment on first use. Termination is left to process exit.
func NewImagick() *Imagick {
	imagickInit.Do(imagick.Initialize)
	return &Imagick{}
}

func (im *Imagick) Name() string { return "imagemagick" }

func (im *Imagick) Available() bool { return true }

func (im *Imagick) Decode(path string) (*image.RGBA, error) {
	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	if err := mw.ReadImage(path); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	w := int(mw.GetImageWidth())
	h := int(mw.GetImageHeight())
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("read %s: empty image", path)
	}

	raw, err := mw.ExportImagePixels(0, 0, uint(w), uint(h), "RGBA", imagick.PIXEL_CHAR)
	if err != nil {
		return nil, fmt.Errorf("export pixels %s: %w", path, err)
	}
	pix, ok := raw.([]uint8)
	if !ok {
		return nil, fmt.Errorf("export pixels %s: unexpected storage type", path)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	return img, nil
}

func (im *Imagick) Encode(path string, src image.Image) error {
	rgba := ToRGBA(src)
	mw, err := wandFromRGBA(rgba)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	defer mw.Destroy()

	if err := mw.SetImageFormat("PNG"); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := mw.WriteImage(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (im *Imagick) Resize(src *image.RGBA, width, height int) (*image.RGBA, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("resize to %dx%d: degenerate target", width, height)
	}

	mw, err := wandFromRGBA(src)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	defer mw.Destroy()

	if err := mw.ResizeImage(uint(width), uint(height), imagick.FILTER_LANCZOS); err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}

	raw, err := mw.ExportImagePixels(0, 0, uint(width), uint(height), "RGBA", imagick.PIXEL_CHAR)
	if err != nil {
		return nil, fmt.Errorf("resize export: %w", err)
	}
	pix, ok := raw.([]uint8)
	if !ok {
		return nil, fmt.Errorf("resize export: unexpected storage type")
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(dst.Pix, pix)
	return dst, nil
}

func wandFromRGBA(img *image.RGBA) (*imagick.MagickWand, error) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	mw := imagick.NewMagickWand()
	pw := imagick.NewPixelWand()
	defer pw.Destroy()
	pw.SetColor("none")

	if err := mw.NewImage(uint(w), uint(h), pw); err != nil {
		mw.Destroy()
		return nil, err
	}
	if err := mw.ImportImagePixels(0, 0, uint(w), uint(h), "RGBA", imagick.PIXEL_CHAR, packedPix(img)); err != nil {
		mw.Destroy()
		return nil, err
	}
	return mw, nil
}

// packedPix returns img's pixel data with no row padding, copying only
// when the stride does not match the width.
func packedPix(img *image.RGBA) []uint8 {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if img.Stride == 4*w {
		return img.Pix
	}
	out := make([]uint8, 4*w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		copy(out[y*4*w:], row)
	}
	return out
}

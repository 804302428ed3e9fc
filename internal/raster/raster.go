// Package raster provides pixel I/O and resampling behind a backend
// interface, so the alignment pipeline never touches a decoder directly.
package raster

import (
	"image"
	"log/slog"
)

// Backend performs raster decode, encode and resize operations.
type Backend interface {
	Name() string
	Available() bool
	// Decode reads an image file into an RGBA raster. The file handle is
	// closed before Decode returns.
	Decode(path string) (*image.RGBA, error)
	// Encode writes img as RGBA PNG to path.
	Encode(path string, img image.Image) error
	// Resize resamples src to exactly width x height using a
	// Lanczos-class filter, preserving the alpha channel.
	Resize(src *image.RGBA, width, height int) (*image.RGBA, error)
}

// Select picks a backend by name with fallback to the native one.
func Select(preferred string, fallbacks []string, log *slog.Logger) Backend {
	candidates := append([]string{preferred}, fallbacks...)
	for _, name := range candidates {
		b := byName(name)
		if b == nil {
			continue
		}
		if !b.Available() {
			log.Debug("raster backend unavailable", "backend", name)
			continue
		}
		log.Debug("raster backend selected", "backend", b.Name())
		return b
	}
	log.Warn("no configured raster backend available, using native")
	return NewNative()
}

func byName(name string) Backend {
	switch name {
	case "native", "":
		return NewNative()
	case "imagemagick", "imagick":
		return NewImagick()
	default:
		return nil
	}
}

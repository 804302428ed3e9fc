package sheet

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"impostor/internal/extract"
	"impostor/internal/fsutil"
	"impostor/internal/raster"
)

// BuildRequest describes one sheet build.
type BuildRequest struct {
	Files      []string
	Frame      FrameSize
	TileWidth  int
	TileHeight int
	// Output overrides the derived output name when non-empty.
	Output string
	// Faces and Form describe the billboard geometry for the viewer.
	// They are carried through to the build record but do not influence
	// the sheet itself.
	Faces string
	Form  string
}

// BuildSummary reports a completed build.
type BuildSummary struct {
	Output      string
	Count       int
	CropRect    image.Rectangle
	FramePixelW int
	FramePixelH int
	TileWidth   int
	TileHeight  int
	Physical    PhysicalSize
}

// Meta flattens the summary for the build store and structured logs.
func (s BuildSummary) Meta() map[string]any {
	return map[string]any{
		"output":          s.Output,
		"count":           s.Count,
		"crop_rect":       fmt.Sprintf("(%d,%d)-(%d,%d)", s.CropRect.Min.X, s.CropRect.Min.Y, s.CropRect.Max.X, s.CropRect.Max.Y),
		"crop_px":         fmt.Sprintf("%dx%d", s.CropRect.Dx(), s.CropRect.Dy()),
		"frame_px":        fmt.Sprintf("%dx%d", s.FramePixelW, s.FramePixelH),
		"tile_px":         fmt.Sprintf("%dx%d", s.TileWidth, s.TileHeight),
		"physical_width":  s.Physical.Width,
		"physical_height": s.Physical.Height,
	}
}

// Builder runs the full alignment pipeline: decode and extract every
// capture, validate sizes, apply the shared crop, compose the sheet,
// derive the physical size and persist the composite.
type Builder struct {
	log        *slog.Logger
	normalizer extract.Normalizer
	backend    raster.Backend
	parallel   int
}

// NewBuilder wires a Builder. parallel bounds concurrent per-capture
// extraction; values below 1 mean sequential.
func NewBuilder(log *slog.Logger, normalizer extract.Normalizer, backend raster.Backend, parallel int) *Builder {
	if parallel < 1 {
		parallel = 1
	}
	return &Builder{
		log:        log,
		normalizer: normalizer,
		backend:    backend,
		parallel:   parallel,
	}
}

// Build executes the pipeline for one batch. Failures short-circuit the
// remaining stages; there is no partial output.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (BuildSummary, error) {
	if len(req.Files) == 0 {
		return BuildSummary{}, fmt.Errorf("%w: no input files", ErrDegenerateGeometry)
	}

	records, err := b.extractAll(ctx, req.Files)
	if err != nil {
		return BuildSummary{}, err
	}
	b.log.Debug("captures extracted", "count", len(records))

	maxW, maxH, err := ValidateSizes(records)
	if err != nil {
		return BuildSummary{}, err
	}

	rect := SharedCropRect(records, maxW)
	cropped := ApplyCrop(records, rect)
	b.log.Debug("shared crop applied",
		"rect", rect.String(),
		"canvas", fmt.Sprintf("%dx%d", maxW, maxH),
	)

	physical, err := CalcPhysicalSize(req.Frame, maxW, maxH, rect)
	if err != nil {
		return BuildSummary{}, err
	}

	composite, err := Compose(cropped, req.TileWidth, req.TileHeight, b.backend)
	if err != nil {
		return BuildSummary{}, err
	}

	output := req.Output
	if output == "" {
		output = OutputName(req.Files)
	}
	if err := fsutil.EnsureDir(output); err != nil {
		return BuildSummary{}, fmt.Errorf("prepare output dir: %w", err)
	}
	if err := b.backend.Encode(output, composite); err != nil {
		return BuildSummary{}, fmt.Errorf("write composite: %w", err)
	}

	summary := BuildSummary{
		Output:      output,
		Count:       len(records),
		CropRect:    rect,
		FramePixelW: maxW,
		FramePixelH: maxH,
		TileWidth:   req.TileWidth,
		TileHeight:  req.TileHeight,
		Physical:    physical,
	}
	b.log.Info("impostor sheet written",
		"output", output,
		"captures", summary.Count,
		"physical_m", fmt.Sprintf("%.3f x %.3f", physical.Width, physical.Height),
	)
	return summary, nil
}

// extractAll decodes and normalizes every capture. Per-capture work is
// independent and runs on a bounded worker group; results rejoin in input
// order before the shared crop, which needs the whole batch at once.
func (b *Builder) extractAll(ctx context.Context, files []string) ([]Record, error) {
	records := make([]Record, len(files))
	errs := make([]error, len(files))

	sem := make(chan struct{}, b.parallel)
	var wg sync.WaitGroup
	for i, name := range files {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}

			img, err := b.backend.Decode(name)
			if err != nil {
				errs[i] = fmt.Errorf("%w: %s: %v", ErrExtraction, name, err)
				return
			}
			content, bbox, err := b.normalizer.Normalize(img)
			if err != nil {
				errs[i] = fmt.Errorf("%w: %s: %v", ErrExtraction, name, err)
				return
			}
			records[i] = Record{Name: name, Image: content, BBox: bbox}
		}(i, name)
	}
	wg.Wait()

	// All-or-nothing: report the first failing capture in input order.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Package watch monitors a capture directory and submits a build once the
// set of shots in it has stopped changing for the settle window. Capture
// sessions write one file per billboard face; building before the last
// shot lands would produce a short sheet.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"impostor/internal/fsutil"
	"impostor/internal/pipeline"

	"github.com/fsnotify/fsnotify"
)

// Submitter accepts build jobs; satisfied by *pipeline.Pipeline.
type Submitter interface {
	Submit(job pipeline.Job) error
}

// Watcher monitors one directory for capture sets.
type Watcher struct {
	dir     string
	settle  time.Duration
	pipe    Submitter
	log     *slog.Logger
	output  string
	options map[string]any
	nextID  func() string
}

// New creates a Watcher over dir. output and options are attached
// verbatim to every submitted build job; nextID supplies job identifiers.
func New(dir string, settle time.Duration, pipe Submitter, output string, options map[string]any, nextID func() string, log *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = 3 * time.Second
	}
	return &Watcher{
		dir:     dir,
		settle:  settle,
		pipe:    pipe,
		log:     log,
		output:  output,
		options: options,
		nextID:  nextID,
	}
}

// Run watches until ctx is cancelled. Every time the directory's image set
// has been quiet for the settle window, the current set is submitted as
// one build batch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching capture directory", "dir", w.dir, "settle", w.settle.String())

	// The timer stays stopped until the first relevant event.
	settle := time.NewTimer(w.settle)
	if !settle.Stop() {
		<-settle.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !fsutil.IsImageFile(event.Name) {
				continue
			}
			w.log.Debug("capture changed", "path", event.Name, "op", event.Op.String())
			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(w.settle)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)

		case <-settle.C:
			if err := w.submitBatch(); err != nil {
				w.log.Error("failed to submit capture batch", "error", err)
			}
		}
	}
}

func (w *Watcher) submitBatch() error {
	files, err := fsutil.ListImages(w.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		w.log.Debug("capture directory settled empty", "dir", w.dir)
		return nil
	}

	job := pipeline.Job{
		ID:      w.nextID(),
		Type:    pipeline.JobBuild,
		Files:   files,
		Output:  w.output,
		Options: w.options,
	}
	w.log.Info("capture set settled, submitting build", "id", job.ID, "captures", len(files))
	return w.pipe.Submit(job)
}

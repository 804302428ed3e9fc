package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"impostor/internal/config"
	"impostor/internal/pipeline"
	"impostor/internal/sheet"
	"impostor/internal/storage"
)

// Exit codes per failure category.
const (
	ExitGeneric     = 1
	ExitExtraction  = 2
	ExitConsistency = 3
	ExitGeometry    = 4
)

// ExitCode maps a build error to its process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, sheet.ErrExtraction):
		return ExitExtraction
	case errors.Is(err, sheet.ErrConsistency):
		return ExitConsistency
	case errors.Is(err, sheet.ErrDegenerateGeometry):
		return ExitGeometry
	default:
		return ExitGeneric
	}
}

type pipelineClient interface {
	Submit(job pipeline.Job) error
	Subscribe() (<-chan pipeline.Result, func())
}

// Root wires CLI commands to the pipeline.
type Root struct {
	pipeline pipelineClient
	cfg      *config.Config
	log      *slog.Logger
	store    *storage.Store
}

// NewRoot constructs the CLI root.
func NewRoot(pipe *pipeline.Pipeline, cfg *config.Config, logger *slog.Logger, store *storage.Store) *Root {
	return &Root{
		pipeline: pipe,
		cfg:      cfg,
		log:      logger,
		store:    store,
	}
}

// enqueueAndWait submits one job and blocks until its result arrives.
func (r *Root) enqueueAndWait(ctx context.Context, job pipeline.Job) error {
	resCh, unsubscribe := r.pipeline.Subscribe()
	defer unsubscribe()

	if err := r.pipeline.Submit(job); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-resCh:
			if !ok {
				return fmt.Errorf("pipeline stopped before job %s finished", job.ID)
			}
			if res.Job.ID != job.ID {
				continue
			}
			return res.Error
		}
	}
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, time.Now().UnixMilli(), rand.Intn(10000))
}

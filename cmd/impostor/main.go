package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"impostor/internal/cli"
	"impostor/internal/config"
	"impostor/internal/extract"
	"impostor/internal/logging"
	"impostor/internal/pipeline"
	"impostor/internal/raster"
	"impostor/internal/sheet"
	"impostor/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(cli.ExitGeneric)
	}

	log, err := logging.Setup(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logging:", err)
		os.Exit(cli.ExitGeneric)
	}

	store, err := storage.New(cfg.Paths.DatabasePath)
	if err != nil {
		// A missing build store degrades history, not builds.
		log.Warn("build store unavailable", "path", cfg.Paths.DatabasePath, "error", err)
		store = nil
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := raster.Select(cfg.Tools.Raster.Preferred, cfg.Tools.Raster.Fallbacks, log)
	builder := sheet.NewBuilder(log, extract.NewFrameNormalizer(), backend, cfg.Processing.ParallelJobs)

	pipe := pipeline.New(ctx, cfg.Processing.ParallelJobs, log, store, builder)

	rootCmd := cli.NewRootCmd(cfg, log, store, pipe)
	err = rootCmd.ExecuteContext(ctx)
	pipe.Stop()

	if err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"impostor/internal/config"
)

// level backs every handler Setup builds, so raising it later (the
// verbose flag) reaches loggers that were handed out before the flag
// was parsed.
var level slog.LevelVar

// SetLevel changes the level of all Setup-built loggers.
func SetLevel(s string) {
	level.Set(parseLevel(s))
}

// Setup configures global logging with optional file output.
func Setup(cfg *config.Config) (*slog.Logger, error) {
	var writers []io.Writer

	// Diagnostics go to stderr so the composite path stays the only stdout output.
	writers = append(writers, os.Stderr)

	if cfg.Logging.FileOutput {
		if err := os.MkdirAll(cfg.Logging.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}

		logFile := filepath.Join(cfg.Logging.LogDir, fmt.Sprintf("impostor-%s.log",
			time.Now().Format("2006-01-02")))

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %v", err)
		}

		writers = append(writers, file)
	}

	out := io.MultiWriter(writers...)
	level.Set(parseLevel(cfg.Logging.Level))
	opts := &slog.HandlerOptions{Level: &level}

	var handler slog.Handler
	if strings.ToLower(cfg.Logging.Format) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogBuildStart logs the beginning of a sheet build.
func LogBuildStart(logger *slog.Logger, buildID string, inputs []string, output string, options map[string]any) {
	logger.Info("build started",
		"id", buildID,
		"inputs", len(inputs),
		"output", output,
		"options", options,
	)
}

// LogBuildComplete logs successful build completion.
func LogBuildComplete(logger *slog.Logger, buildID string, duration time.Duration, resultInfo map[string]any) {
	logger.Info("build completed successfully",
		"id", buildID,
		"duration_ms", duration.Milliseconds(),
		"duration_human", duration.String(),
		"result", resultInfo,
	)
}

// LogBuildError logs build failures.
func LogBuildError(logger *slog.Logger, buildID string, duration time.Duration, err error, context map[string]any) {
	logger.Error("build failed",
		"id", buildID,
		"duration_ms", duration.Milliseconds(),
		"error", err.Error(),
		"context", context,
	)
}

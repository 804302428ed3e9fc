package logging

import (
	"context"
	"log/slog"
	"testing"

	"impostor/internal/config"
)

func TestSetLevelReachesSetupLoggers(t *testing.T) {
	cfg := &config.Config{Logging: config.Logging{Level: "info", Format: "text"}}
	log, err := Setup(cfg)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { SetLevel(cfg.Logging.Level) })

	ctx := context.Background()
	if log.Handler().Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("debug must be off at info level")
	}

	// Loggers handed out before the level change must see it.
	SetLevel("debug")
	if !log.Handler().Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("raising the level did not reach an existing logger")
	}

	SetLevel("error")
	if log.Handler().Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("lowering to error left info enabled")
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	defaultConfigPath = "~/.config/impostor/config.json"
	defaultParallel   = 4

	// Reference tile size used when no --rez override is given.
	defaultTileWidth  = 128
	defaultTileHeight = 64
)

// Config holds user-editable settings for the impostor builder.
type Config struct {
	Frame      Frame      `json:"frame"`
	Output     Output     `json:"output"`
	Processing Processing `json:"processing"`
	Logging    Logging    `json:"logging"`
	Paths      Paths      `json:"paths"`
	Tools      Tools      `json:"tools"`
	Watch      Watch      `json:"watch"`
}

// Frame is the physical size, in meters, of the captured frame rectangle.
// Billboard measurements are always derived against the full frame, never
// against the content-only crop.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Output controls the composite sheet geometry.
type Output struct {
	TileWidth  int `json:"tile_width"`
	TileHeight int `json:"tile_height"`
}

// TileForRez resolves the per-tile pixel size for a --rez override.
// rez sets the tile width; height keeps the reference 2:1 tile aspect.
// rez <= 0 means "use the configured tile".
func (o Output) TileForRez(rez int) (int, int) {
	if rez <= 0 {
		return o.TileWidth, o.TileHeight
	}
	h := rez / 2
	if h < 1 {
		h = 1
	}
	return rez, h
}

// Processing captures execution preferences.
type Processing struct {
	ParallelJobs int    `json:"parallel_jobs"`
	TempDir      string `json:"temp_dir"`
}

// Logging controls logging verbosity and destinations.
type Logging struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // text, json
	FileOutput bool   `json:"file_output"` // Enable file logging
	LogDir     string `json:"log_dir"`     // Directory for log files
}

// Paths configures default locations.
type Paths struct {
	DefaultOutput string `json:"default_output"`
	DatabasePath  string `json:"database_path"`
}

// Tools defines which backend to use for raster operations.
type Tools struct {
	Raster RasterToolConfig `json:"raster"`
}

// RasterToolConfig selects the raster backend with fallbacks.
type RasterToolConfig struct {
	Preferred string   `json:"preferred"` // "native", "imagemagick"
	Fallbacks []string `json:"fallbacks"`
}

// Watch configures the capture-directory watcher.
type Watch struct {
	SettleSeconds int `json:"settle_seconds"`
}

// Load reads configuration from disk, falling back to sensible defaults.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("IMPOSTOR_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	expanded, err := expandUser(configPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Frame: Frame{
			Width:  6.0,
			Height: 3.0,
		},
		Output: Output{
			TileWidth:  defaultTileWidth,
			TileHeight: defaultTileHeight,
		},
		Processing: Processing{
			ParallelJobs: defaultParallel,
			TempDir:      os.TempDir(),
		},
		Logging: Logging{
			Level:      "info",
			Format:     "text",
			FileOutput: false,
			LogDir:     "./logs",
		},
		Paths: Paths{
			DefaultOutput: ".",
			DatabasePath:  filepath.Join(os.TempDir(), "impostor.db"),
		},
		Tools: Tools{
			Raster: RasterToolConfig{
				Preferred: "native",
				Fallbacks: []string{"imagemagick"},
			},
		},
		Watch: Watch{
			SettleSeconds: 3,
		},
	}
}

func expandUser(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}

package cli

import (
	"fmt"
	"log/slog"
	"time"

	"impostor/internal/config"
	"impostor/internal/logging"
	"impostor/internal/pipeline"
	"impostor/internal/server"
	"impostor/internal/storage"
	"impostor/internal/watch"

	"github.com/spf13/cobra"
)

var knownForms = map[string]bool{
	"STAR":  true,
	"TSTAR": true,
}

// NewRootCmd creates the root Cobra command.
func NewRootCmd(cfg *config.Config, log *slog.Logger, store *storage.Store, pipe *pipeline.Pipeline) *cobra.Command {
	root := NewRoot(pipe, cfg, log, store)

	rootCmd := newBuildCmd(root)
	rootCmd.AddCommand(newWatchCmd(root))
	rootCmd.AddCommand(newServeCmd(root))
	rootCmd.AddCommand(newBuildsCmd(root))
	rootCmd.AddCommand(newConfigCmd(root))
	rootCmd.AddCommand(newVersionCmd(root))

	return rootCmd
}

// buildFlags is the option surface shared by the one-shot build and the
// directory watcher.
type buildFlags struct {
	width   float64
	height  float64
	rez     int
	faces   string
	form    string
	output  string
	verbose bool
}

func (f *buildFlags) register(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().Float64Var(&f.width, "width", cfg.Frame.Width, "physical width of the capture frame in meters")
	cmd.Flags().Float64Var(&f.height, "height", cfg.Frame.Height, "physical height of the capture frame in meters")
	cmd.Flags().IntVar(&f.rez, "rez", 64, "output tile width in pixels (tile height keeps the 2:1 aspect)")
	cmd.Flags().StringVar(&f.faces, "faces", "8", "total faces, including top and bottom")
	cmd.Flags().StringVar(&f.form, "form", "STAR", "layout form (STAR = N faces in a star pattern, TSTAR = star plus top and bottom)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file path (default derives from the input names)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose mode")
}

// options resolves the flag set into job options. The configured tile is
// used unless --rez was given explicitly.
func (f *buildFlags) options(cmd *cobra.Command, cfg *config.Config) (map[string]any, error) {
	if !knownForms[f.form] {
		return nil, fmt.Errorf("unknown form %q (known: STAR, TSTAR)", f.form)
	}

	rez := 0
	if cmd.Flags().Changed("rez") {
		rez = f.rez
	}
	tw, th := cfg.Output.TileForRez(rez)

	return map[string]any{
		"frame_width":  f.width,
		"frame_height": f.height,
		"tile_width":   tw,
		"tile_height":  th,
		"faces":        f.faces,
		"form":         f.form,
		"source":       "cli",
	}, nil
}

func newBuildCmd(root *Root) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "impostor [flags] <capture files...>",
		Short: "Assemble framed captures into one impostor sheet",
		Long: `Impostor assembles a set of individually captured, frame-bordered
photographs into one aligned, size-normalized composite texture suitable
as a billboard impostor, and reports the physical size the finished
billboard must have.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if flags.verbose {
				logging.SetLevel("debug")
			}

			options, err := flags.options(cmd, root.cfg)
			if err != nil {
				return err
			}

			job := pipeline.Job{
				ID:      newID("build"),
				Type:    pipeline.JobBuild,
				Files:   args,
				Output:  flags.output,
				Options: options,
			}
			return root.enqueueAndWait(cmd.Context(), job)
		},
	}

	flags.register(cmd, root.cfg)
	return cmd
}

func newWatchCmd(root *Root) *cobra.Command {
	var flags buildFlags
	var settleSeconds int

	cmd := &cobra.Command{
		Use:   "watch <capture directory>",
		Short: "Watch a capture directory and build when the set settles",
		Long: `Watch monitors a directory of captures. Once the image set has been
quiet for the settle window, the whole set is submitted as one build.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.verbose {
				logging.SetLevel("debug")
			}

			options, err := flags.options(cmd, root.cfg)
			if err != nil {
				return err
			}
			options["source"] = "watch"

			w := watch.New(
				args[0],
				time.Duration(settleSeconds)*time.Second,
				root.pipeline,
				flags.output,
				options,
				func() string { return newID("watch") },
				root.log,
			)
			return w.Run(cmd.Context())
		},
	}

	flags.register(cmd, root.cfg)
	cmd.Flags().IntVar(&settleSeconds, "settle", root.cfg.Watch.SettleSeconds, "seconds of quiet before a capture set is considered complete")
	return cmd
}

func newServeCmd(root *Root) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server over build history and live results",
		Long: `Serve exposes build history from the store plus a live result stream.

Endpoints: /healthz, /builds, /builds/{id}/meta, /stream (SSE), /ws (websocket).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			realPipeline, ok := root.pipeline.(*pipeline.Pipeline)
			if !ok {
				return fmt.Errorf("pipeline unavailable for server startup")
			}

			root.log.Info("starting server", "addr", addr)
			return server.Serve(cmd.Context(), addr, root.store, realPipeline, root.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "server address (host:port)")
	return cmd
}

func newBuildsCmd(root *Root) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:          "builds",
		Short:        "List recent builds",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := root.store.RecentBuilds(limit)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				line := fmt.Sprintf("%s  %-9s  %d inputs  %s", rec.ID, rec.Status, len(rec.Inputs), rec.OutputPath)
				if rec.Error != "" {
					line += "  (" + rec.Error + ")"
				}
				cmd.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of builds to list")
	return cmd
}

func newConfigCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			cmd.Printf("Frame Size (m): %.2f x %.2f\n", cfg.Frame.Width, cfg.Frame.Height)
			cmd.Printf("Tile Size (px): %d x %d\n", cfg.Output.TileWidth, cfg.Output.TileHeight)
			cmd.Printf("Parallel Jobs: %d\n", cfg.Processing.ParallelJobs)
			cmd.Printf("Raster Backend: %s\n", cfg.Tools.Raster.Preferred)
			cmd.Printf("Database Path: %s\n", cfg.Paths.DatabasePath)
			cmd.Printf("Log Level: %s\n", cfg.Logging.Level)
			cmd.Printf("Log Format: %s\n", cfg.Logging.Format)
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cfg.Frame.Width <= 0 || cfg.Frame.Height <= 0 {
				return fmt.Errorf("frame size must be positive, got %.2f x %.2f", cfg.Frame.Width, cfg.Frame.Height)
			}
			if cfg.Output.TileWidth < 1 || cfg.Output.TileHeight < 1 {
				return fmt.Errorf("tile size must be at least 1x1, got %d x %d", cfg.Output.TileWidth, cfg.Output.TileHeight)
			}
			cmd.Println("Configuration is valid")
			return nil
		},
	}

	cmd.AddCommand(showCmd, validateCmd)
	return cmd
}

func newVersionCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Impostor v1.0.0")
		},
	}
}

package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/layercast/internal/catalog"
	"github.com/roach88/layercast/internal/config"
	"github.com/roach88/layercast/internal/console"
	"github.com/roach88/layercast/internal/engine"
	"github.com/roach88/layercast/internal/instructions"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config      string
	Grammar     string
	Load        string
	Journal     string
	MetricsAddr string
	MaxFPS      float64
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the compositor and the operator console",
		Long: `Start the layercast compositor.

The render loop reads the instruction list every frame and draws the result
to the vive and monitor outputs, while the console reads commands from
stdin. Type "help" at the prompt for the command list. The compositor stops
on "exit", end of input, SIGINT or SIGTERM.

Settings come from built-in defaults, then --config, then the flags below.

Example:
  layercast run --config ./layercast.yaml
  layercast run --load show --journal ./layercast.db --metrics-addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, cmd)
			if err != nil {
				return err
			}
			return runCompositor(opts, cfg, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.Grammar, "grammar", "", "command grammar file (default: built-in)")
	cmd.Flags().StringVar(&opts.Load, "load", "", "instruction file to load at start")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite database to journal edits into")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().Float64Var(&opts.MaxFPS, "max-fps", 0, "frame rate cap, 0 for uncapped")

	return cmd
}

// resolveConfig layers explicitly set flags over the configuration file.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("grammar") {
		cfg.Grammar = opts.Grammar
	}
	if flags.Changed("load") {
		cfg.Load = opts.Load
	}
	if flags.Changed("journal") {
		cfg.Journal = opts.Journal
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	if flags.Changed("max-fps") {
		cfg.MaxFPS = opts.MaxFPS
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid settings", err)
	}
	return cfg, nil
}

func newLogger(verbose bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func runCompositor(opts *RunOptions, cfg config.Config, cmd *cobra.Command) error {
	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := commandContext(cmd)
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c, err := build(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer c.close()

	consoleOpts := []console.Option{
		console.WithOutputs(c.outputs),
		console.WithInstructionsDir(cfg.InstructionsDir),
		console.WithWriter(cmd.OutOrStdout()),
		console.WithLogger(logger),
		console.WithExit(cancel),
	}
	if c.session != nil {
		consoleOpts = append(consoleOpts, console.WithHistory(c.session))
	}
	con := console.New(c.grammar, c.store, consoleOpts...)
	if cfg.Load != "" {
		con.Load(ctx, cfg.Load)
	}

	renderer := engine.NewRenderer(c.store,
		engine.NewExecutor(c.camera, c.catalog, c.outputs,
			engine.WithLogger(logger),
			engine.WithText(c.text),
		),
		engine.WithMaxFPS(cfg.MaxFPS),
		engine.WithRenderLogger(logger),
	)

	// Prompt only when a person is typing.
	in := cmd.InOrStdin()
	prompt := false
	if f, ok := in.(*os.File); ok {
		prompt = console.Interactive(f)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return renderer.Run(gctx)
	})
	g.Go(func() error {
		// End of input or exit stops everything else.
		defer cancel()
		return con.Run(gctx, in, prompt)
	})
	g.Go(func() error {
		if err := c.catalog.Watch(gctx, catalog.DefaultDebounce); err != nil {
			logger.Warn("catalog watch stopped", "error", err)
		}
		return nil
	})
	if c.gst != nil {
		g.Go(func() error {
			if err := c.gst.Run(gctx); err != nil {
				logger.Warn("camera stopped, holding last frame", "error", err)
			}
			return nil
		})
	}
	if cfg.MetricsAddr != "" {
		serveMetrics(gctx, g, cfg.MetricsAddr, logger)
	}

	logger.Info("compositor started",
		"vive", cfg.Devices.Vive,
		"monitor", cfg.Devices.Monitor,
		"camera", cfg.Camera.Device,
		"grammar", c.grammar.Source(),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "compositor error", err)
	}
	logger.Info("compositor stopped", "frames", renderer.Frames())
	return nil
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// storeOptions are the instruction store options every compositor gets.
func storeOptions(c *components, logger *slog.Logger) []instructions.Option {
	opts := []instructions.Option{
		instructions.WithImages(c.catalog),
		instructions.WithLogger(logger),
	}
	if c.session != nil {
		opts = append(opts, instructions.WithJournal(c.session))
	}
	return opts
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/runtime"
	"github.com/zeusync/scenebridge/internal/injector"
	"github.com/zeusync/scenebridge/internal/inspector"
)

type runOptions struct {
	Scene         string
	Templates     []string
	Frames        int
	TickRate      int
	InspectorAddr string
	MetricsAddr   string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run --scene <file> [--fsm <file>...]",
		Short: "Load a scene and tick it",
		Long: `Load state machine templates and a scene fixture, then tick the host
until the frame limit is reached or the process is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runtime.LoadConfig()
			if err != nil {
				return err
			}
			if root.LogLevel != "" {
				cfg.LogLevel = root.LogLevel
			}
			if cmd.Flags().Changed("tick-rate") {
				cfg.TickRate = opts.TickRate
			}
			if opts.InspectorAddr != "" {
				cfg.InspectorAddr = opts.InspectorAddr
			}
			if opts.MetricsAddr != "" {
				cfg.MetricsAddr = opts.MetricsAddr
			}
			return runScene(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Scene, "scene", "", "scene fixture (YAML)")
	cmd.Flags().StringSliceVar(&opts.Templates, "fsm", nil, "state machine template files (YAML or JSON)")
	cmd.Flags().IntVar(&opts.Frames, "frames", 0, "stop after this many frames (0 runs until interrupted)")
	cmd.Flags().IntVar(&opts.TickRate, "tick-rate", 60, "frames per second")
	cmd.Flags().StringVar(&opts.InspectorAddr, "inspector", "", "serve the websocket event feed on this address")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics", "", "serve Prometheus metrics on this address")
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}

func runScene(ctx context.Context, cfg runtime.Config, opts *runOptions) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := injector.ProvideLogger()
	logger.SetLevel(level)
	defer func() { _ = logger.Sync() }()

	host, err := injector.InitializeHost(cfg)
	if err != nil {
		return err
	}
	if _, err = host.LoadTemplates(opts.Templates...); err != nil {
		return err
	}
	fixture, err := runtime.LoadFixtureFile(opts.Scene)
	if err != nil {
		return err
	}
	if _, _, err = host.Build(fixture); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)

	g.Go(func() error {
		defer cancel()
		err := host.Run(runCtx, opts.Frames)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.InspectorAddr != "" {
		serve(runCtx, g, logger, "inspector", cfg.InspectorAddr, inspector.New(host.Events(), logger))
	}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", host.Metrics().Handler())
		serve(runCtx, g, logger, "metrics", cfg.MetricsAddr, mux)
	}

	return g.Wait()
}

// serve runs an HTTP server in g until ctx is done.
func serve(ctx context.Context, g *errgroup.Group, logger log.Log, name, addr string, handler http.Handler) {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.Info("http server listening", log.String("server", name), log.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/interviewer/pkg/audit/recorder"
	"mercator-hq/interviewer/pkg/audit/retention"
	"mercator-hq/interviewer/pkg/audit/storage"
	"mercator-hq/interviewer/pkg/cli"
	"mercator-hq/interviewer/pkg/config"
	"mercator-hq/interviewer/pkg/providerfactory"
	"mercator-hq/interviewer/pkg/relay"
	"mercator-hq/interviewer/pkg/server"
	"mercator-hq/interviewer/pkg/telemetry"
	"mercator-hq/interviewer/pkg/telemetry/health"
)

// telemetryFlushTimeout bounds span and log flushing at exit.
const telemetryFlushTimeout = 5 * time.Second

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat relay",
	Long: `Start the chat relay with the specified configuration.

The relay serves GET /chat, prepends the interviewer persona to each transcript
and streams the provider's reply as server-sent events. Health, readiness,
version and metrics endpoints are served alongside.

Examples:
  # Start with defaults and AZURE_OPENAI_* variables
  interviewer serve

  # Start with a config file and reload it on change
  interviewer serve --config /etc/interviewer/config.yaml --watch

  # Override listen address
  interviewer serve --listen 0.0.0.0:8080

  # Validate config without starting the relay
  interviewer serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the relay")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload log level and persona when the config file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	if err := config.ValidateServe(cfg); err != nil {
		return cli.NewConfigError("", "invalid configuration", err)
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	tel, err := telemetry.New(cfg.Telemetry, Version)
	if err != nil {
		return cli.NewConfigError("telemetry", "failed to initialize telemetry", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	ctx, stop := cli.ShutdownContext(cmd.Context())
	defer stop()

	provider, err := providerfactory.NewProviderWithHealthCheck(ctx, cfg.Provider)
	if err != nil {
		return cli.NewConfigError("provider", "failed to create provider", err)
	}
	defer provider.Close()
	tel.Health.RegisterCheck("provider", health.ProviderCheck(provider))

	g, gctx := errgroup.WithContext(ctx)

	opts := []relay.Option{relay.WithMetrics(tel.Metrics), relay.WithTracer(tel.Tracer)}
	if cfg.Audit.Enabled {
		store, err := storage.New(cfg.Audit)
		if err != nil {
			return cli.NewConfigError("audit", "failed to open audit storage", err)
		}
		defer store.Close()

		rec := recorder.NewRecorder(store, recorder.FromConfig(cfg.Audit))
		defer rec.Close()
		opts = append(opts, relay.WithRecorder(rec))

		if cfg.Audit.Retention.Days > 0 && cfg.Audit.Retention.PruneSchedule != "" {
			pruner := retention.NewPruner(store, cfg.Audit.Retention.Days)
			scheduler, err := retention.NewScheduler(pruner, cfg.Audit.Retention.PruneSchedule)
			if err != nil {
				return cli.NewConfigError("audit.retention.prune_schedule", "invalid schedule", err)
			}
			g.Go(func() error { return scheduler.Run(gctx) })
		}
		slog.Info("audit recording enabled", "backend", cfg.Audit.Backend)
	}

	rl := relay.New(provider, relay.FromConfig(cfg), opts...)
	srv := server.NewServer(cfg, rl, tel, server.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error {
		return providerfactory.NewHealthMonitor(provider, tel.Metrics, 0).Run(gctx)
	})

	if serveFlags.watch {
		if cfgFile == "" {
			slog.Warn("--watch ignored: no config file")
		} else {
			watcher, err := config.NewWatcher(cfgFile, 0, slog.Default())
			if err != nil {
				return cli.NewCommandError("serve", err)
			}
			g.Go(func() error {
				return watcher.Watch(gctx, func(next *config.Config) {
					tel.Apply(next.Telemetry)
					rl.SetPersona(next.Relay.Persona)
				})
			})
		}
	}

	printBanner(cmd, cfg)

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Relay stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	addr := cfg.Server.ListenAddress
	h := cfg.Telemetry.Health

	fmt.Fprintf(out, "Interviewer v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", cfgFile)
	}
	fmt.Fprintf(out, "✓ Provider: %s (deployment %s)\n", cfg.Provider.Type, cfg.Provider.Deployment)
	fmt.Fprintf(out, "✓ Chat endpoint: http://%s%s\n", addr, server.ChatPath)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s%s\n", addr, h.LivenessPath)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}

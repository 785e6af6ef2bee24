package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/refresh"
	"mercator-hq/converter/pkg/server"
	"mercator-hq/converter/pkg/telemetry/health"
)

var runFlags struct {
	listenAddress string
	fetchOnStart  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the preview server",
	Long: `Start the HTTP server with the preview page and the JSON API.

The server holds one record set in memory. Load it with the Fetch button,
POST /api/fetch, --fetch-on-start or a source.refresh.schedule cron entry.
With watch: true the configuration file is reloaded on change; SIGHUP
reloads it on demand.

Examples:
  converter run
  converter run --listen 0.0.0.0:8080 --fetch-on-start`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().BoolVar(&runFlags.fetchOnStart, "fetch-on-start", false, "fetch once before serving")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.close(flushCtx)
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "converter v%s\n", Version)
	if path != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", path)
	} else {
		fmt.Fprintln(out, "✓ Configuration loaded (defaults)")
	}

	if runFlags.fetchOnStart {
		set, err := a.adapter.Fetch(ctx)
		if err != nil {
			slog.Warn("initial fetch failed", "error", err)
		} else {
			fmt.Fprintf(out, "✓ Loaded %d records from %s\n", set.Len(), set.Source)
		}
	}

	scheduler := refresh.NewScheduler(cfg.Source.Refresh.Schedule, a.adapter)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer scheduler.Stop()
	if next := scheduler.NextRun(); next != nil {
		fmt.Fprintf(out, "✓ Refresh scheduled (%s), next at %s\n", cfg.Source.Refresh.Schedule, next.Format(time.RFC3339))
	}

	if cfg.Watch && path != "" {
		watcher, err := config.NewFileWatcher(path, 0, nil)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()
		go func() {
			if err := watcher.Watch(ctx, a.reconfigure); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("configuration watcher stopped", "error", err)
			}
		}()
		fmt.Fprintln(out, "✓ Watching configuration for changes")
	}

	if path != "" {
		reload := cli.ReloadSignal()
		defer signal.Stop(reload)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-reload:
					newCfg, err := config.ReloadConfig(path)
					if err != nil {
						slog.Error("configuration reload failed", "error", err)
						continue
					}
					a.reconfigure(newCfg)
				}
			}
		}()
	}

	checker := health.New(5 * time.Second)
	checker.Register("config", func(context.Context) error {
		if config.GetConfig() == nil {
			return errors.New("configuration not loaded")
		}
		return nil
	})
	checker.Register("history", func(ctx context.Context) error {
		_, err := a.history.List(ctx, 1)
		return err
	})

	srv := server.NewServer(&cfg.Server, server.Deps{
		Holder:      a.holder,
		Fetcher:     a.adapter,
		Exports:     a.runner,
		Metrics:     a.metrics,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Tracer:      a.tracer,
		Checker:     checker,
		Version:     health.NewVersionInfo(Version, GitCommit, BuildDate),
	})

	fmt.Fprintf(out, "✓ Server listening on http://%s\n", cfg.Server.ListenAddress)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}


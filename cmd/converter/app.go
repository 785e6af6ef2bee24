package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/converter/pkg/cli"
	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/export"
	"mercator-hq/converter/pkg/history"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/secrets"
	"mercator-hq/converter/pkg/source"
	"mercator-hq/converter/pkg/telemetry/logging"
	"mercator-hq/converter/pkg/telemetry/metrics"
	"mercator-hq/converter/pkg/telemetry/tracing"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	history history.Store
	holder  *records.Holder
	secrets *secrets.Resolver
	adapter *source.Adapter
	runner  *export.Runner
}

// configPath resolves --config. The default path may be absent, in which case
// the defaults and environment apply; an explicit path must exist.
func configPath(cmd *cobra.Command) (string, error) {
	explicit := cmd.Flags().Changed("config")
	path, err := config.ResolvePath(cfgFile, !explicit)
	if err != nil {
		return "", cli.NewConfigError("", err.Error())
	}
	return path, nil
}

// loadConfig loads and validates the configuration and installs it as the
// global instance.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		var vErr config.ValidationError
		if errors.As(err, &vErr) {
			return nil, path, vErr
		}
		return nil, path, cli.NewConfigError("", err.Error())
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	config.SetConfig(cfg)
	return cfg, path, nil
}

// newApp builds the component graph from cfg. Logs go to stderr so command
// output on stdout stays machine-readable.
func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(logging.FromConfig(&cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	store, err := history.New(&cfg.History)
	if err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to open export history: %w", err)
	}

	resolver, err := secrets.New(&cfg.Secrets)
	if err != nil {
		_ = store.Close()
		_ = tracer.Shutdown(context.Background())
		return nil, cli.NewConfigError("secrets.dir", err.Error())
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	holder := records.NewHolder()

	adapter, err := source.NewAdapter(&cfg.Source, holder,
		source.WithMetrics(collector),
		source.WithTracer(tracer),
		source.WithSecrets(resolver),
	)
	if err != nil {
		_ = store.Close()
		_ = tracer.Shutdown(context.Background())
		return nil, cli.NewConfigError("source.type", err.Error())
	}

	runner := export.NewRunner(&cfg.Export, holder,
		export.WithHistory(store),
		export.WithMetrics(collector),
		export.WithTracer(tracer),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		tracer:  tracer,
		history: store,
		holder:  holder,
		secrets: resolver,
		adapter: adapter,
		runner:  runner,
	}, nil
}

// setupApp loads the configuration and builds the app.
func setupApp(cmd *cobra.Command) (*app, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

// reconfigure applies a reloaded configuration to the components that
// support it and warns about sections that need a restart. Cached secret
// values are dropped so rotated ones are picked up.
func (a *app) reconfigure(cfg *config.Config) {
	a.secrets.Invalidate()
	if err := a.adapter.Reconfigure(&cfg.Source); err != nil {
		slog.Warn("source configuration not applied", "error", err)
	}
	a.runner.Reconfigure(&cfg.Export)
	slog.Info("configuration reloaded",
		"source", cfg.Source.Type,
		"pdf_layout", cfg.Export.PDF.Layout,
	)
	if sections := config.RestartRequired(a.cfg, cfg); len(sections) > 0 {
		slog.Warn("changed settings take effect after restart", "sections", sections)
	}
}

// close releases the history store and flushes pending spans.
func (a *app) close(ctx context.Context) {
	if err := a.history.Close(); err != nil {
		slog.Warn("failed to close export history", "error", err)
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}

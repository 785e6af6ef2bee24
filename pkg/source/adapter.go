package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/telemetry/logging"
	"mercator-hq/converter/pkg/telemetry/metrics"
	"mercator-hq/converter/pkg/telemetry/tracing"

	"github.com/google/uuid"
)

// maxLoggedRecords bounds how many records a fetch writes to the debug log.
const maxLoggedRecords = 5

// Adapter fetches from the configured source into a holder. At most one
// fetch runs at a time; a concurrent call returns records.ErrBusy.
type Adapter struct {
	holder  *records.Holder
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
	secrets SecretExpander
	now     func() time.Time

	mu     sync.RWMutex
	cfg    config.SourceConfig
	source Source
}

// SecretExpander replaces ${secret:name} references in a string.
type SecretExpander interface {
	Expand(ctx context.Context, s string) (string, error)
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMetrics records fetch metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Adapter) { a.metrics = c }
}

// WithTracer creates a span per fetch.
func WithTracer(t *tracing.Tracer) Option {
	return func(a *Adapter) { a.tracer = t }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithSecrets expands secret references in the HTTP URL, the HTTP headers
// and the SQL DSN before each fetch. The stored configuration keeps the
// references.
func WithSecrets(e SecretExpander) Option {
	return func(a *Adapter) { a.secrets = e }
}

// WithSource bypasses the registry and uses s regardless of cfg.Type.
func WithSource(s Source) Option {
	return func(a *Adapter) { a.source = s }
}

// WithClock overrides the time source used to stamp fetched sets.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// NewAdapter binds the source selected by cfg.Type to holder.
func NewAdapter(cfg *config.SourceConfig, holder *records.Holder, opts ...Option) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("source config is nil")
	}
	if holder == nil {
		return nil, errors.New("holder is nil")
	}

	a := &Adapter{
		holder: holder,
		cfg:    *cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default().With("component", "source")
	}

	if a.source == nil {
		s, err := Get(cfg.Type)
		if err != nil {
			return nil, err
		}
		a.source = s
	}
	return a, nil
}

// Fetch loads a new record set and replaces the held one. On failure the
// holder keeps its previous set and the error matches
// records.ErrSourceUnavailable.
func (a *Adapter) Fetch(ctx context.Context) (records.RecordSet, error) {
	a.mu.RLock()
	cfg := a.cfg
	src := a.source
	a.mu.RUnlock()

	typ := src.Spec().Type

	release, err := a.holder.BeginFetch()
	if err != nil {
		a.metrics.RecordFetch(typ, metrics.StatusBusy, 0, 0)
		a.logger.WarnContext(ctx, "fetch rejected, another fetch is running", "source", typ)
		return records.RecordSet{}, err
	}
	defer release()

	ctx = logging.WithSource(ctx, typ)
	ctx, span := a.tracer.Start(ctx, "source.fetch")
	fetchID := uuid.NewString()
	start := time.Now()

	a.logger.DebugContext(ctx, "fetching records", "fetch_id", fetchID)

	set, err := a.fetch(ctx, src, cfg)
	duration := time.Since(start)
	if err != nil {
		srcErr := records.NewSourceError(typ, err)
		a.metrics.RecordFetch(typ, metrics.StatusError, duration, 0)
		tracing.End(span, srcErr)
		a.logger.ErrorContext(ctx, "fetch failed",
			"fetch_id", fetchID,
			"duration", duration,
			"error", err,
		)
		return records.RecordSet{}, srcErr
	}

	set.FetchedAt = a.now()
	set.Source = typ
	a.holder.Replace(set)

	fields := len(set.Headers())
	a.metrics.RecordFetch(typ, metrics.StatusSuccess, duration, set.Len())
	tracing.SetFetchAttributes(span, typ, set.Len(), fields)
	tracing.End(span, nil)

	a.logger.InfoContext(ctx, "records fetched",
		"fetch_id", fetchID,
		"records", set.Len(),
		"fields", fields,
		"duration", duration,
	)
	for i, rec := range set.Records {
		if i == maxLoggedRecords {
			break
		}
		a.logger.DebugContext(ctx, "fetched record", "fetch_id", fetchID, "index", i, "record", rec)
	}

	return set, nil
}

func (a *Adapter) fetch(ctx context.Context, src Source, cfg config.SourceConfig) (records.RecordSet, error) {
	if a.secrets != nil {
		var err error
		if cfg, err = expandSecrets(ctx, a.secrets, cfg); err != nil {
			return records.RecordSet{}, err
		}
	}
	return src.Fetch(ctx, &cfg)
}

// expandSecrets returns a copy of cfg with credentials resolved.
func expandSecrets(ctx context.Context, e SecretExpander, cfg config.SourceConfig) (config.SourceConfig, error) {
	var err error
	if cfg.HTTP.URL, err = e.Expand(ctx, cfg.HTTP.URL); err != nil {
		return cfg, fmt.Errorf("source.http.url: %w", err)
	}
	if len(cfg.HTTP.Headers) > 0 {
		headers := make(map[string]string, len(cfg.HTTP.Headers))
		for k, v := range cfg.HTTP.Headers {
			if headers[k], err = e.Expand(ctx, v); err != nil {
				return cfg, fmt.Errorf("source.http.headers.%s: %w", k, err)
			}
		}
		cfg.HTTP.Headers = headers
	}
	if cfg.SQL.DSN, err = e.Expand(ctx, cfg.SQL.DSN); err != nil {
		return cfg, fmt.Errorf("source.sql.dsn: %w", err)
	}
	return cfg, nil
}

// Busy reports whether a fetch is in flight.
func (a *Adapter) Busy() bool {
	return a.holder.Busy()
}

// Type returns the type of the bound source.
func (a *Adapter) Type() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source.Spec().Type
}

// Reconfigure applies a reloaded source configuration. If the type changed,
// the new source is looked up first and the old configuration is kept on
// error. A fetch in flight finishes with the configuration it started with.
func (a *Adapter) Reconfigure(cfg *config.SourceConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	src := a.source
	if cfg.Type != src.Spec().Type {
		s, err := Get(cfg.Type)
		if err != nil {
			return err
		}
		src = s
	}
	a.cfg = *cfg
	a.source = src
	return nil
}

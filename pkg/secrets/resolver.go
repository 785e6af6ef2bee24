package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"mercator-hq/converter/pkg/config"
)

var referencePattern = regexp.MustCompile(`\$\{secret:([A-Za-z0-9_.-]+)\}`)

// HasReferences reports whether s contains a ${secret:name} reference.
func HasReferences(s string) bool {
	return referencePattern.MatchString(s)
}

// Resolver looks secrets up through an ordered list of providers.
// It is safe for concurrent use.
type Resolver struct {
	providers []Provider
	cache     *cache
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithProviders replaces the providers derived from the configuration.
func WithProviders(p ...Provider) Option {
	return func(r *Resolver) { r.providers = p }
}

// New builds a resolver from cfg: the environment first, then cfg.Dir when
// set.
func New(cfg *config.SecretsConfig, opts ...Option) (*Resolver, error) {
	if cfg == nil {
		return nil, errors.New("secrets config is nil")
	}
	r := &Resolver{
		providers: []Provider{NewEnvProvider(cfg.EnvPrefix)},
		cache:     newCache(cfg.CacheTTL),
	}
	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir)
		if err != nil {
			return nil, err
		}
		r.providers = append(r.providers, fp)
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "secrets")
	}
	return r, nil
}

// Lookup returns the value of the named secret from the first provider
// that has it. Errors other than ErrNotFound stop the search.
func (r *Resolver) Lookup(ctx context.Context, name string) (string, error) {
	if v, ok := r.cache.get(name); ok {
		return v, nil
	}

	var misses []error
	for _, p := range r.providers {
		v, err := p.Lookup(ctx, name)
		if err == nil {
			r.cache.put(name, v)
			r.logger.DebugContext(ctx, "secret resolved", "secret", redact(name), "provider", p.Name())
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", &LookupError{Secret: name, Err: fmt.Errorf("%s provider: %w", p.Name(), err)}
		}
		misses = append(misses, err)
	}
	if len(misses) == 0 {
		misses = append(misses, ErrNotFound)
	}
	return "", &LookupError{Secret: name, Err: errors.Join(misses...)}
}

// Expand replaces every ${secret:name} reference in s. The first reference
// that cannot be resolved fails the whole expansion.
func (r *Resolver) Expand(ctx context.Context, s string) (string, error) {
	if !HasReferences(s) {
		return s, nil
	}
	var firstErr error
	out := referencePattern.ReplaceAllStringFunc(s, func(ref string) string {
		if firstErr != nil {
			return ref
		}
		name := referencePattern.FindStringSubmatch(ref)[1]
		v, err := r.Lookup(ctx, name)
		if err != nil {
			firstErr = err
			return ref
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// Invalidate drops every cached value.
func (r *Resolver) Invalidate() {
	r.cache.clear()
	r.logger.Debug("secret cache cleared")
}

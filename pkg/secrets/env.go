package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider returns a provider reading prefix + upper-cased name.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// Lookup implements Provider. An empty variable counts as unset.
func (p *EnvProvider) Lookup(_ context.Context, name string) (string, error) {
	key := p.Variable(name)
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w in environment (%s)", ErrNotFound, key)
}

// Name implements Provider.
func (p *EnvProvider) Name() string { return "env" }

// Variable returns the environment variable holding name.
func (p *EnvProvider) Variable(name string) string {
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return p.prefix + strings.ToUpper(name)
}

package secrets

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a provider that has no value for a name.
// The resolver moves on to the next provider only for this error.
var ErrNotFound = errors.New("secret not found")

// Provider looks up secret values by name.
type Provider interface {
	// Lookup returns the value for name, or an error wrapping ErrNotFound.
	Lookup(ctx context.Context, name string) (string, error)

	// Name identifies the provider in logs, e.g. "env" or "file".
	Name() string
}

// LookupError reports a reference that no provider could resolve.
type LookupError struct {
	Secret string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("secret %q: %v", redact(e.Secret), e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// redact keeps the first and last two characters of a secret name.
func redact(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "***" + name[len(name)-2:]
}

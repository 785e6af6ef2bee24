package cli

import (
	"errors"
	"fmt"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitConfig            = 2
	ExitEmptyInput        = 3
	ExitSourceUnavailable = 4
	ExitBusy              = 5
)

// ConfigError reports an invalid or unreadable configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError wraps the failure of a subcommand.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewCommandError creates a CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ConfigErrors converts a configuration load failure into one ConfigError per
// invalid field. Errors that are not validation errors become a single
// ConfigError without a field.
func ConfigErrors(err error) []*ConfigError {
	if err == nil {
		return nil
	}

	var vErr config.ValidationError
	if errors.As(err, &vErr) {
		out := make([]*ConfigError, 0, len(vErr.Errors))
		for _, fe := range vErr.Errors {
			out = append(out, NewConfigError(fe.Field, fe.Message))
		}
		return out
	}
	return []*ConfigError{{Message: err.Error()}}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	var cfgErr *ConfigError
	var vErr config.ValidationError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &cfgErr), errors.As(err, &vErr):
		return ExitConfig
	case errors.Is(err, records.ErrEmptyInput):
		return ExitEmptyInput
	case errors.Is(err, records.ErrSourceUnavailable):
		return ExitSourceUnavailable
	case errors.Is(err, records.ErrBusy):
		return ExitBusy
	default:
		return ExitFailure
	}
}

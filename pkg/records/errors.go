package records

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable indicates the backend could not produce a record set.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEmptyInput indicates an export was attempted with no loaded data.
	ErrEmptyInput = errors.New("no data to export")

	// ErrRenderFailure indicates an encoder failed while producing output.
	ErrRenderFailure = errors.New("render failure")

	// ErrBusy indicates the same operation is already in flight.
	ErrBusy = errors.New("operation already in progress")
)

// SourceError wraps a failed fetch.
type SourceError struct {
	// Source is the source type that failed.
	Source string

	// Cause is the underlying transport or decode error.
	Cause error
}

// NewSourceError creates a new SourceError.
func NewSourceError(source string, cause error) *SourceError {
	return &SourceError{Source: source, Cause: cause}
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source unavailable [source=%s]: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Is matches ErrSourceUnavailable.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// ExportError represents an error during export.
type ExportError struct {
	// Format is the export format (xlsx, pdf, csv, json, html).
	Format string

	// RecordCount is the number of records being exported.
	RecordCount int

	// Kind is ErrEmptyInput or ErrRenderFailure.
	Kind error

	// Cause is the underlying error, nil for empty input.
	Cause error
}

// NewEmptyInputError reports an export attempted without data.
func NewEmptyInputError(format string) *ExportError {
	return &ExportError{Format: format, Kind: ErrEmptyInput}
}

// NewRenderError reports an encoder failure.
func NewRenderError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{
		Format:      format,
		RecordCount: recordCount,
		Kind:        ErrRenderFailure,
		Cause:       cause,
	}
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("export error [format=%s, record_count=%d]: %v",
			e.Format, e.RecordCount, e.Kind)
	}
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v: %v",
		e.Format, e.RecordCount, e.Kind, e.Cause)
}

// Unwrap returns the error kind and the cause.
func (e *ExportError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

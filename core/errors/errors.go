// Package errors provides the error types shared by the lexicon loader,
// the letter-to-sound pipeline and the surrounding tools.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a lexicon, job or entry was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates malformed input such as a bad lexicon line
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal indicates a broken internal invariant
	ErrInternal = errors.New("internal error")
	// ErrUnsupported indicates an unsupported format or encoding
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string // e.g. "lexicon", "job"
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // "read", "open", "decompress", ...
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a malformed resource. Line is 1-based; zero means
// the position is unknown.
type ParseError struct {
	Format  string // "lexicon", "allophones", "MaryXML", "config"
	Path    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	var where string
	switch {
	case e.Path != "" && e.Line > 0:
		where = fmt.Sprintf(" at %s:%d", e.Path, e.Line)
	case e.Path != "":
		where = " at " + e.Path
	case e.Line > 0:
		where = fmt.Sprintf(" at line %d", e.Line)
	}
	return fmt.Sprintf("failed to parse %s%s: %s", e.Format, where, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// ConsistencyError reports parallel per-unit columns that drifted out of
// alignment. It can only be caused by a bug in a rewrite pass.
type ConsistencyError struct {
	Stage   string
	Word    string
	Lengths map[string]int
}

func (e *ConsistencyError) Error() string {
	var b strings.Builder
	for _, col := range []string{"codepoints", "symbols", "types", "status"} {
		if n, ok := e.Lengths[col]; ok {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%d", col, n)
		}
	}
	if e.Word != "" {
		return fmt.Sprintf("inconsistent unit sequence after %s for %q: %s", e.Stage, e.Word, b.String())
	}
	return fmt.Sprintf("inconsistent unit sequence after %s: %s", e.Stage, b.String())
}

func (e *ConsistencyError) Unwrap() error {
	return ErrInternal
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path string, line int, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Line:    line,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

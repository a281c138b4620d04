// Package errors provides the error taxonomy of the lectionary engine.
//
// Engine errors are never fatal to a batch: a ParseFailure drops one reading
// option, a NoMatchError drops catalogue enrichment, a MalformedDescriptionError
// skips one row. Callers classify them with errors.Is against the sentinels.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or translation
	ErrUnsupported = errors.New("unsupported")
	// ErrParseFailure indicates a citation produced no canonical code
	ErrParseFailure = errors.New("citation parse failure")
	// ErrBoundaryOverrun indicates a range walked off the boundary table
	ErrBoundaryOverrun = errors.New("boundary overrun")
	// ErrNoMatch indicates no catalogue entry matched a day description
	ErrNoMatch = errors.New("no catalogue match")
	// ErrMalformedDescription indicates free text that is not a day description
	ErrMalformedDescription = errors.New("malformed day description")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "book", "job", "entry")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
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
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
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
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
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

// ParseError represents a parsing or deserialization error of an input file
type ParseError struct {
	Format  string // Format being parsed (e.g., "YAML", "XHTML", "TSV")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or translation
type UnsupportedError struct {
	Feature string // Feature that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// ParseFailure records a cleaned citation the parser could not canonicalise.
type ParseFailure struct {
	Citation string // cleaned citation text handed to the parser
	Raw      string // raw cell the citation came from
	Err      error  // underlying parser or enumerator error
}

func (e *ParseFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse citation %q: %v", e.Citation, e.Err)
	}
	return fmt.Sprintf("cannot parse citation %q", e.Citation)
}

func (e *ParseFailure) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParseFailure, e.Err}
	}
	return []error{ErrParseFailure}
}

// BoundaryOverrunError reports a range walk that left the boundary table
// (or passed its end identifier) without reaching the declared end verse.
type BoundaryOverrunError struct {
	Translation string
	Start       string
	End         string
}

func (e *BoundaryOverrunError) Error() string {
	return fmt.Sprintf("range %s-%s overruns %s boundary table", e.Start, e.End, e.Translation)
}

// Unwrap exposes both sentinels: an overrun is a parse failure of its citation.
func (e *BoundaryOverrunError) Unwrap() []error {
	return []error{ErrBoundaryOverrun, ErrParseFailure}
}

// NoMatchError reports a day description with no catalogue entry.
type NoMatchError struct {
	Description string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no catalogue entry for %q", e.Description)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// MalformedDescriptionError reports free text that matches no day grammar.
type MalformedDescriptionError struct {
	Text   string
	Reason string
}

func (e *MalformedDescriptionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed day description %q: %s", e.Text, e.Reason)
	}
	return fmt.Sprintf("malformed day description %q", e.Text)
}

func (e *MalformedDescriptionError) Unwrap() error {
	return ErrMalformedDescription
}

// Helper functions for creating common errors

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
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
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

// NewMalformed creates a MalformedDescriptionError
func NewMalformed(text, reason string) *MalformedDescriptionError {
	return &MalformedDescriptionError{
		Text:   text,
		Reason: reason,
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

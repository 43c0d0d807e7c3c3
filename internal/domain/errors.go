package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrStaleData marks a cache read served from an expired snapshot
	// after a failed refresh. The accompanying snapshot is still usable.
	ErrStaleData = errors.New("stale data")

	// ErrInputTooLarge marks a translation input exceeding the configured
	// maximum. The request is rejected, never truncated.
	ErrInputTooLarge = errors.New("input too large")

	// ErrInvalidRuleSet marks a rule set failing canonical validation.
	// Fatal at startup.
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// ErrSourceUnavailable marks a terminology authority that could not be
	// queried. Non-fatal to the aggregate lookup.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrAuditWrite marks a failed audit append. The primary action is not
	// rolled back.
	ErrAuditWrite = errors.New("audit write failed")

	// ErrWriteFailed marks a failed glossary write. No partial state is
	// left behind.
	ErrWriteFailed = errors.New("glossary write failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// StaleDataWarning reports that the cache served a snapshot older than the
// TTL because the refresh failed. Age is the snapshot's age at serve time.
type StaleDataWarning struct {
	Age      time.Duration
	FetchErr error
}

func (e *StaleDataWarning) Error() string {
	return fmt.Sprintf("serving stale glossary (age %s): %v", e.Age.Round(time.Second), e.FetchErr)
}

func (e *StaleDataWarning) Unwrap() error { return ErrStaleData }

// InputTooLargeError reports a source text exceeding the size limit.
// Lengths are in Unicode code points.
type InputTooLargeError struct {
	Length int
	Max    int
}

func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("input of %d characters exceeds limit of %d", e.Length, e.Max)
}

func (e *InputTooLargeError) Unwrap() error { return ErrInputTooLarge }

// InvalidRuleSetError reports every problem found while validating a rule
// set, so a broken file can be fixed in one pass.
type InvalidRuleSetError struct {
	Problems []string
}

func (e *InvalidRuleSetError) Error() string {
	return fmt.Sprintf("invalid rule set: %s", strings.Join(e.Problems, "; "))
}

func (e *InvalidRuleSetError) Unwrap() error { return ErrInvalidRuleSet }

// SourceError reports a terminology authority failure, carried as a lookup
// notice rather than failing the aggregate call.
type SourceError struct {
	Source Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source.DisplayName(), e.Err)
}

func (e *SourceError) Unwrap() error { return ErrSourceUnavailable }

// AuditWriteError reports a failed audit append attached as a warning to an
// otherwise successful operation.
type AuditWriteError struct {
	Err error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit write failed: %v", e.Err)
}

func (e *AuditWriteError) Unwrap() error { return ErrAuditWrite }

// GlossaryWriteError reports a failed glossary write for a single entry.
type GlossaryWriteError struct {
	SourceTerm string
	Err        error
}

func (e *GlossaryWriteError) Error() string {
	return fmt.Sprintf("glossary write for %q failed: %v", e.SourceTerm, e.Err)
}

func (e *GlossaryWriteError) Unwrap() error { return ErrWriteFailed }

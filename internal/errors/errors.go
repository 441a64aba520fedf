// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrSourceNotFound indicates a raw or intermediate data file is absent.
	// The owning pipeline stage is skipped; sibling stages keep running.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrMalformedRecord indicates a row with a bad date or payload.
	// Recovered locally by substituting a sentinel value, never propagated.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrCorpusEmpty indicates no usable conversations remain after filtering.
	ErrCorpusEmpty = errors.New("training corpus is empty")

	// ErrExternalService indicates the text-generation service failed after retries.
	ErrExternalService = errors.New("external generation service failure")

	// ErrModelLoad indicates a missing or corrupt model bundle artifact at load time.
	ErrModelLoad = errors.New("model bundle load failure")

	// ErrInvalidAlgorithm indicates an unknown classification algorithm name.
	ErrInvalidAlgorithm = errors.New("invalid algorithm name")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// IsSourceNotFound reports whether err wraps ErrSourceNotFound.
func IsSourceNotFound(err error) bool {
	return errors.Is(err, ErrSourceNotFound)
}

// IsCorpusEmpty reports whether err wraps ErrCorpusEmpty.
func IsCorpusEmpty(err error) bool {
	return errors.Is(err, ErrCorpusEmpty)
}

// IsExternalService reports whether err wraps ErrExternalService.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService)
}

// IsModelLoad reports whether err wraps ErrModelLoad.
func IsModelLoad(err error) bool {
	return errors.Is(err, ErrModelLoad)
}

// IsInvalidAlgorithm reports whether err wraps ErrInvalidAlgorithm.
func IsInvalidAlgorithm(err error) bool {
	return errors.Is(err, ErrInvalidAlgorithm)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// StageError represents a pipeline stage failure with context.
// A StageError never aborts sibling stages; the runner reports it and moves on.
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("stage error (stage=%s, path=%s): %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("stage error (stage=%s): %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new stage error.
func NewStageError(stage, path string, err error) *StageError {
	return &StageError{
		Stage: stage,
		Path:  path,
		Err:   err,
	}
}

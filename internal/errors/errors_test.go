package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		checkFn  func(error) bool
		expected bool
	}{
		{
			name:     "ErrSourceNotFound is recognized",
			err:      ErrSourceNotFound,
			checkFn:  IsSourceNotFound,
			expected: true,
		},
		{
			name:     "Wrapped ErrSourceNotFound is recognized",
			err:      fmt.Errorf("clean_messages: %w", ErrSourceNotFound),
			checkFn:  IsSourceNotFound,
			expected: true,
		},
		{
			name:     "Different error is not ErrSourceNotFound",
			err:      ErrCorpusEmpty,
			checkFn:  IsSourceNotFound,
			expected: false,
		},
		{
			name:     "ErrCorpusEmpty is recognized",
			err:      ErrCorpusEmpty,
			checkFn:  IsCorpusEmpty,
			expected: true,
		},
		{
			name:     "ErrModelLoad is recognized",
			err:      fmt.Errorf("load bundle: %w", ErrModelLoad),
			checkFn:  IsModelLoad,
			expected: true,
		},
		{
			name:     "ErrInvalidAlgorithm is recognized",
			err:      ErrInvalidAlgorithm,
			checkFn:  IsInvalidAlgorithm,
			expected: true,
		},
		{
			name:     "ErrExternalService is recognized",
			err:      errors.Join(ErrExternalService, errors.New("timeout")),
			checkFn:  IsExternalService,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checkFn(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("message", "empty body")

	if err.Field != "message" {
		t.Errorf("expected field 'message', got '%s'", err.Field)
	}

	if err.Message != "empty body" {
		t.Errorf("expected message 'empty body', got '%s'", err.Message)
	}

	expected := "validation failed on message: empty body"
	if err.Error() != expected {
		t.Errorf("expected error '%s', got '%s'", expected, err.Error())
	}
}

func TestStageError(t *testing.T) {
	baseErr := errors.New("unexpected end of JSON input")
	err := NewStageError("merge_data", "data/processed/messages_clean.json", baseErr)

	if err.Stage != "merge_data" {
		t.Errorf("expected stage 'merge_data', got '%s'", err.Stage)
	}

	if !errors.Is(err, baseErr) {
		t.Error("expected error to wrap base error")
	}

	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}

	// Test without path
	err2 := NewStageError("train_lstm", "", baseErr)
	if err2.Error() == "" {
		t.Error("expected non-empty error message")
	}
}

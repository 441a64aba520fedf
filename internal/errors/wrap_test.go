package errors

import (
	"errors"
	"testing"
)

func TestErrorWrapper(t *testing.T) {
	wrapper := NewWrapper("chatbot", "load_bundle")

	t.Run("Wrap returns nil for nil error", func(t *testing.T) {
		result := wrapper.Wrap(nil, "Le chatbot est en maintenance.")
		if result != nil {
			t.Errorf("expected nil, got %v", result)
		}
	})

	t.Run("Wrap creates WrappedError", func(t *testing.T) {
		baseErr := errors.New("label_encoder.json missing")
		wrapped := wrapper.Wrap(baseErr, "Le chatbot est en maintenance.")

		if wrapped == nil {
			t.Fatal("expected non-nil wrapped error")
		}

		wrappedErr, ok := wrapped.(*WrappedError)
		if !ok {
			t.Fatal("expected WrappedError type")
		}

		if wrappedErr.Module != "chatbot" {
			t.Errorf("expected module 'chatbot', got '%s'", wrappedErr.Module)
		}

		if wrappedErr.Operation != "load_bundle" {
			t.Errorf("expected operation 'load_bundle', got '%s'", wrappedErr.Operation)
		}

		if wrappedErr.UserMessage != "Le chatbot est en maintenance." {
			t.Errorf("expected user message 'Le chatbot est en maintenance.', got '%s'", wrappedErr.UserMessage)
		}

		if !errors.Is(wrapped, baseErr) {
			t.Error("wrapped error should unwrap to base error")
		}
	})

	t.Run("Wrapf formats message", func(t *testing.T) {
		baseErr := errors.New("not found")
		wrapped := wrapper.Wrapf(baseErr, "modèle introuvable : %s", "naive_bayes")

		wrappedErr := wrapped.(*WrappedError)
		expected := "modèle introuvable : naive_bayes"
		if wrappedErr.UserMessage != expected {
			t.Errorf("expected '%s', got '%s'", expected, wrappedErr.UserMessage)
		}
	})
}

func TestGetUserMessage(t *testing.T) {
	t.Run("returns empty string for nil", func(t *testing.T) {
		result := GetUserMessage(nil)
		if result != "" {
			t.Errorf("expected empty string, got '%s'", result)
		}
	})

	t.Run("returns user message from WrappedError", func(t *testing.T) {
		wrapped := &WrappedError{
			Operation:   "test",
			Module:      "test",
			Cause:       errors.New("base error"),
			UserMessage: "user friendly message",
		}

		result := GetUserMessage(wrapped)
		if result != "user friendly message" {
			t.Errorf("expected 'user friendly message', got '%s'", result)
		}
	})

	t.Run("returns error string for non-WrappedError", func(t *testing.T) {
		err := errors.New("plain error")
		result := GetUserMessage(err)
		if result != "plain error" {
			t.Errorf("expected 'plain error', got '%s'", result)
		}
	})
}

func TestWrappedError_Error(t *testing.T) {
	wrapped := &WrappedError{
		Operation:   "clean_messages",
		Module:      "pipeline",
		Cause:       errors.New("csv read error"),
		UserMessage: "nettoyage impossible",
	}

	errMsg := wrapped.Error()
	expected := "[pipeline:clean_messages] nettoyage impossible: csv read error"
	if errMsg != expected {
		t.Errorf("expected '%s', got '%s'", expected, errMsg)
	}
}

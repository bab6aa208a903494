package errors

import (
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("target_column", "column not present in dataset", "price")

	var vErr *ValidationError
	if !As(err, &vErr) {
		t.Fatalf("As() failed for %T", err)
	}
	if vErr.Field != "target_column" {
		t.Errorf("Field = %q", vErr.Field)
	}
	if !strings.Contains(err.Error(), "price") {
		t.Errorf("message does not carry the value: %v", err)
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("models", "abc-123")
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false")
	}
	if IsNotFound(New("something else")) {
		t.Error("IsNotFound() matched an unrelated error")
	}

	wrapped := Wrap(err, "lookup failed")
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound() lost through wrapping")
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := New("disk full")
	err := NewStorageError("writeAll", "/data/models.csv", cause)

	if !Is(err, cause) {
		t.Error("Is() did not find the cause through the chain")
	}
	var sErr *StorageError
	if !As(err, &sErr) {
		t.Fatal("As() failed")
	}
	if sErr.Op != "writeAll" || sErr.Path != "/data/models.csv" {
		t.Errorf("fields = %q/%q", sErr.Op, sErr.Path)
	}
}

func TestSentinelMatching(t *testing.T) {
	err := Wrapf(ErrUnknownModelType, "%q", "gradient_boosting")
	if !Is(err, ErrUnknownModelType) {
		t.Error("wrapped sentinel does not match")
	}
	if !strings.Contains(err.Error(), "gradient_boosting") {
		t.Errorf("message lost the context: %v", err)
	}
}

func TestWarningHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer SetWarningHandler(func(w error) {})

	warning := NewUndefinedMetricWarning("precision", "no predicted positives", 0)
	Warn(warning)

	if len(captured) != 1 {
		t.Fatalf("captured %d warnings, want 1", len(captured))
	}
	if !strings.Contains(captured[0].Error(), "precision") {
		t.Errorf("warning message = %v", captured[0])
	}
}

func TestNotFittedErrorMessage(t *testing.T) {
	err := NewNotFittedError("Regression", "Predict")
	msg := err.Error()
	if !strings.Contains(msg, "Regression") || !strings.Contains(msg, "Predict") {
		t.Errorf("message = %q", msg)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "population size must be positive, got %d", -3)
	want := "INVALID_CONFIG: population size must be positive, got -3"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeStore, cause, "persist layout %s", "abc123")

	want := "STORE_ERROR: persist layout abc123: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error does not match its cause with errors.Is")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{name: "DirectMatch", err: New(ErrCodeNotFound, "missing"), code: ErrCodeNotFound, want: true},
		{name: "DirectMismatch", err: New(ErrCodeNotFound, "missing"), code: ErrCodeStore, want: false},
		{name: "ThroughFmtWrap", err: fmt.Errorf("outer: %w", New(ErrCodeTimeout, "slow")), code: ErrCodeTimeout, want: true},
		{name: "PlainError", err: stderrors.New("plain"), code: ErrCodeNotFound, want: false},
		{name: "Nil", err: nil, code: ErrCodeNotFound, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestIsFindsOutermostCode(t *testing.T) {
	inner := New(ErrCodeNotFound, "layout missing")
	outer := Wrap(ErrCodeStore, inner, "load failed")
	if !Is(outer, ErrCodeStore) {
		t.Error("Is() does not match the outermost code")
	}
	if Is(outer, ErrCodeNotFound) {
		t.Error("Is() matched an inner code past the outermost Error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeFamilyNotFound, "no such family")); got != ErrCodeFamilyNotFound {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeFamilyNotFound)
	}
	if got := GetCode(fmt.Errorf("outer: %w", New(ErrCodeInternal, "boom"))); got != ErrCodeInternal {
		t.Errorf("GetCode(wrapped) = %q, want %q", got, ErrCodeInternal)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "file is not valid JSON")); got != "file is not valid JSON" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

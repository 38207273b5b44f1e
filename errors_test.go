package islet

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	errs := []error{
		ErrIslandNotRegistered,
		ErrBadRequest,
		ErrMethodNotAllowed,
		ErrDecryptFailed,
		ErrInvalidFormat,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIsConfigurationError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrIslandNotRegistered", ErrIslandNotRegistered, true},
		{"wrapped", fmt.Errorf("component %q: %w", "x", ErrIslandNotRegistered), true},
		{"other error", errors.New("other"), false},
		{"ErrBadRequest", ErrBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigurationError(tt.err); got != tt.expect {
				t.Errorf("IsConfigurationError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrBadRequest", ErrBadRequest, true},
		{"wrapped", fmt.Errorf("wrapped: %w", ErrBadRequest), true},
		{"ErrMethodNotAllowed", ErrMethodNotAllowed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.expect {
				t.Errorf("IsValidationError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestIsMethodNotAllowed(t *testing.T) {
	if !IsMethodNotAllowed(fmt.Errorf("%w: PUT", ErrMethodNotAllowed)) {
		t.Error("wrapped ErrMethodNotAllowed not detected")
	}
	if IsMethodNotAllowed(ErrBadRequest) {
		t.Error("ErrBadRequest misdetected as method error")
	}
}

func TestIsCryptographicError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrDecryptFailed", ErrDecryptFailed, true},
		{"ErrInvalidFormat", ErrInvalidFormat, true},
		{"wrapped ErrDecryptFailed", fmt.Errorf("wrapped: %w", ErrDecryptFailed), true},
		{"ErrBadRequest", ErrBadRequest, false},
		{"other error", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCryptographicError(tt.err); got != tt.expect {
				t.Errorf("IsCryptographicError(%v) = %v, want %v", tt.err, got, tt.expect)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	// Ensure error messages carry the "islet:" prefix
	errs := []error{
		ErrIslandNotRegistered,
		ErrBadRequest,
		ErrMethodNotAllowed,
		ErrDecryptFailed,
		ErrInvalidFormat,
	}

	for _, err := range errs {
		if !strings.HasPrefix(err.Error(), "islet:") {
			t.Errorf("Error %q should start with 'islet:'", err.Error())
		}
	}
}

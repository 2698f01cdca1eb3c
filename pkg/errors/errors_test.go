package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeVersionNotFound, "version %s not found", "9.9")
	if got, want := err.Error(), "VERSION_NOT_FOUND: version 9.9 not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("connection reset")
	wrapped := Wrap(ErrCodeManifestUnavailable, cause, "version manifest unavailable")
	if got, want := wrapped.Error(), "MANIFEST_UNAVAILABLE: version manifest unavailable: connection reset"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}
}

// jvmErr stands in for structured errors of other packages.
type jvmErr struct{ reason string }

func (e *jvmErr) Error() string { return "no suitable JVM found: " + e.reason }
func (e *jvmErr) Code() Code    { return ErrCodeJvmNotFound }

func TestCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"error", New(ErrCodeInvalidConfig, "bad"), ErrCodeInvalidConfig},
		{"outermost wins", Wrap(ErrCodeDownload, New(ErrCodeTimeout, "slow"), "download failed"), ErrCodeDownload},
		{"coder behind fmt", fmt.Errorf("jvm: %w", &jvmErr{reason: "unsupported_arch"}), ErrCodeJvmNotFound},
		{"joined", errors.Join(errors.New("plain"), New(ErrCodeCertificate, "x509")), ErrCodeCertificate},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false, want true", tt.code)
			}
			if Is(tt.err, ErrCodeInternal) {
				t.Error("Is(INTERNAL_ERROR) = true, want false")
			}
		})
	}
}

func TestIsInnerCode(t *testing.T) {
	err := Wrap(ErrCodeDownload, New(ErrCodeTimeout, "slow"), "download failed")
	if !Is(err, ErrCodeTimeout) {
		t.Error("Is() should find codes deeper in the chain")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Wrap(ErrCodeInvalidMetadata, errors.New("eof"), "metadata: /libraries is not a list")); got != "metadata: /libraries is not a list" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want the plain message", got)
	}
}

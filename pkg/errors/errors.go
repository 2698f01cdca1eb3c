// Package errors provides structured error types for mcinstall.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or metadata validation failures
//   - *_NOT_FOUND: Resource not found (version, jar, JVM)
//   - NETWORK_ERROR, TIMEOUT, CERTIFICATE, HTTP_STATUS: Transport failures
//   - DOWNLOAD_FAILED: Aggregate download failure
//   - INTERNAL_*: Unexpected internal errors
//
// Structured error types defined in other packages (for example the parent
// chain error in metadata or the aggregate download error) implement [Coder]
// so [GetCode] and [Is] work on them too.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeVersionNotFound, "version %s not found", id)
//	if errors.Is(err, errors.ErrCodeVersionNotFound) {
//	    // Handle missing version
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidVersion   Code = "INVALID_VERSION"
	ErrCodeInvalidMetadata  Code = "INVALID_METADATA"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeChainTooDeep     Code = "CHAIN_TOO_DEEP"
	ErrCodeUnsupportedValue Code = "UNSUPPORTED_VALUE"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeVersionNotFound Code = "VERSION_NOT_FOUND"
	ErrCodeJarNotFound     Code = "JAR_NOT_FOUND"
	ErrCodeJvmNotFound     Code = "JVM_NOT_FOUND"

	// Network errors
	ErrCodeNetwork             Code = "NETWORK_ERROR"
	ErrCodeTimeout             Code = "TIMEOUT"
	ErrCodeCertificate         Code = "CERTIFICATE"
	ErrCodeHTTPStatus          Code = "HTTP_STATUS"
	ErrCodeManifestUnavailable Code = "MANIFEST_UNAVAILABLE"

	// Download errors
	ErrCodeDownload Code = "DOWNLOAD_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Coder is implemented by structured error types that carry a [Code]
// without being an [*Error].
type Coder interface {
	Code() Code
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It walks the error chain and returns true for the first *Error or
// [Coder] whose code matches.
func Is(err error, code Code) bool {
	for err != nil {
		if c, ok := codeOf(err); ok && c == code {
			return true
		}
		err = unwrapOne(err)
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		if c, ok := codeOf(err); ok {
			return c
		}
		err = unwrapOne(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func codeOf(err error) (Code, bool) {
	switch e := err.(type) {
	case *Error:
		return e.Code, true
	case Coder:
		return e.Code(), true
	}
	return "", false
}

func unwrapOne(err error) error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range u.Unwrap() {
			if GetCode(inner) != "" {
				return inner
			}
		}
		return nil
	}
	return errors.Unwrap(err)
}

package download

import (
	"errors"
	"fmt"
	"strings"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/session"
)

// Code classifies why an entry failed.
type Code string

// Failure codes.
const (
	CodeConnection  Code = "connection"
	CodeTimeout     Code = "timeout"
	CodeCertificate Code = "certificate"
	CodeStatus      Code = "http_status"
	CodeInvalidSize Code = "invalid_size"
	CodeInvalidSHA1 Code = "invalid_sha1"
	CodeIO          Code = "io"
)

// Failure is one entry that could not be downloaded.
type Failure struct {
	Entry Entry
	Code  Code
	Err   error
}

// Error aggregates every failure of one run.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("download failed: %s: %s", f.Entry.Label(), f.Code)
	}
	counts := make(map[Code]int)
	var order []Code
	for _, f := range e.Failures {
		if counts[f.Code] == 0 {
			order = append(order, f.Code)
		}
		counts[f.Code]++
	}
	parts := make([]string, len(order))
	for i, c := range order {
		parts[i] = fmt.Sprintf("%d %s", counts[c], c)
	}
	return fmt.Sprintf("download failed for %d entries (%s)", len(e.Failures), strings.Join(parts, ", "))
}

// Code reports DOWNLOAD_FAILED.
func (e *Error) Code() mcerrors.Code {
	return mcerrors.ErrCodeDownload
}

// IsError reports whether err carries an aggregate download error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

func codeFor(err error) Code {
	var serr *session.Error
	if errors.As(err, &serr) {
		switch serr.Kind {
		case session.KindTimeout:
			return CodeTimeout
		case session.KindCertificate:
			return CodeCertificate
		case session.KindStatus:
			return CodeStatus
		}
		return CodeConnection
	}
	return CodeIO
}

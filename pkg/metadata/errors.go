package metadata

import (
	"fmt"
	"strings"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

// VersionNotFoundError reports an identifier no repository knows.
type VersionNotFoundError struct {
	ID string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version not found: %s", e.ID)
}

func (e *VersionNotFoundError) Code() mcerrors.Code { return mcerrors.ErrCodeVersionNotFound }

// ChainTooDeepError reports a parent chain longer than allowed, usually a
// cycle. Chain lists the identifiers visited, child first.
type ChainTooDeepError struct {
	Chain []string
	Max   int
}

func (e *ChainTooDeepError) Error() string {
	return fmt.Sprintf("version chain exceeds %d parents: %s", e.Max, strings.Join(e.Chain, " -> "))
}

func (e *ChainTooDeepError) Code() mcerrors.Code { return mcerrors.ErrCodeChainTooDeep }

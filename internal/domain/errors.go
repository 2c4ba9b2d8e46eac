package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedTimestamp marks an unparseable timestamp in event metadata.
// The time window filter fails open on it; it never surfaces to clients.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// ErrRetrievalBackend marks a vector-path failure. The fallback retriever
// recovers it per request by switching to keyword retrieval.
var ErrRetrievalBackend = errors.New("retrieval backend failed")

// GenerationError wraps any transport, quota, timeout, or format problem from
// the text generator. Recovered locally via the templated fallback reply.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ConfigurationError indicates a missing or unreadable prompt fragment. This
// is operator misconfiguration and the only error class allowed to fail a
// request.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("prompt fragment %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

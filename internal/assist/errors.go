// Package assist implements the conversational pipeline over the portfolio
// catalog. This file centralizes pipeline-level error values so that they can
// be consistently returned by pipeline stages and checked by callers.
//
// These errors are intended for internal use by the assist layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package assist

import (
	"errors"
	"fmt"
)

// Validation and policy errors.
var (
	// ErrEmptyMessage is returned when the incoming message is empty or
	// whitespace only.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when the message exceeds the configured
	// maximum length.
	ErrMessageTooLong = errors.New("message too long")

	// ErrForbiddenContent is returned when the message contains a forbidden
	// keyword and must not be processed further.
	ErrForbiddenContent = errors.New("message contains forbidden content")

	// ErrEmptyCompletion is returned when the language model produced no
	// usable content.
	ErrEmptyCompletion = errors.New("model returned empty completion")

	// ErrMissingAudio is returned when the audio flow receives no audio data.
	ErrMissingAudio = errors.New("audio payload is empty")
)

// UpstreamError wraps a failure from an external collaborator (translation,
// completion, speech, storage). It records which provider failed so the
// handler can surface diagnostics while keeping the user-facing message
// generic.
type UpstreamError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *UpstreamError) Unwrap() error { return e.Err }

// upstream wraps err as an UpstreamError unless it is nil.
func upstream(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Provider: provider, Err: err}
}

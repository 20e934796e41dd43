package chat

import (
	"errors"
	"fmt"
)

// ErrorKind classifies session failures so callers can decide how to recover.
type ErrorKind string

const (
	// KindConfiguration: bad or missing credential or model id. Needs new input.
	KindConfiguration ErrorKind = "configuration"
	// KindEndpointInit: the remote endpoint could not be created. Retry start/reset.
	KindEndpointInit ErrorKind = "endpoint_init"
	// KindRemoteCall: a single send failed. The user turn stays in the transcript.
	KindRemoteCall ErrorKind = "remote_call"
	// KindInvalidInput: the submitted text was empty.
	KindInvalidInput ErrorKind = "invalid_input"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Error carries the kind of a session failure and its cause.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("chat: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("chat: %s: %s: %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind ErrorKind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// KindOf returns the kind of a session error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var chatErr *Error
	if errors.As(err, &chatErr) {
		return chatErr.Kind
	}
	return ""
}

func IsConfigurationError(err error) bool { return KindOf(err) == KindConfiguration }
func IsEndpointInitError(err error) bool { return KindOf(err) == KindEndpointInit }
func IsRemoteCallError(err error) bool { return KindOf(err) == KindRemoteCall }
func IsInvalidInputError(err error) bool { return KindOf(err) == KindInvalidInput }

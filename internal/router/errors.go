package router

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies why an invocation produced no result.
type Kind string

const (
	// KindConfigUnavailable is only logged, defaults are used instead.
	KindConfigUnavailable  Kind = "CONFIG_UNAVAILABLE"
	KindAudioUnreadable    Kind = "AUDIO_UNREADABLE"
	KindAllProvidersFailed Kind = "ALL_PROVIDERS_FAILED"
	KindTimeout            Kind = "TIMEOUT"
	KindCanceled           Kind = "CANCELED"
)

// Error is returned by Process.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a router error, or "" for any other error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

func contextError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "invocation timed out", Err: err}
	}
	return &Error{Kind: KindCanceled, Message: "invocation canceled", Err: err}
}

package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindUnavailable   ErrorKind = "UNAVAILABLE"
	KindQuotaExceeded ErrorKind = "QUOTA_EXCEEDED"
	KindInvalidAudio  ErrorKind = "INVALID_AUDIO"
)

// minAudioBytes rejects uploads that are almost certainly empty or truncated.
const minAudioBytes = 1000

// ProviderError is returned by every Provider on failure.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Detail   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Detail)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func newProviderError(kind ErrorKind, provider, detail string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Provider: provider, Detail: detail, Err: err}
}

// kindFromStatus maps an upstream HTTP status to an error kind.
func kindFromStatus(status int) ErrorKind {
	switch status {
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return KindQuotaExceeded
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return KindInvalidAudio
	default:
		return KindUnavailable
	}
}

// asProviderError keeps typed errors and wraps anything else as UNAVAILABLE.
func asProviderError(err error, provider, detail string) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newProviderError(KindUnavailable, provider, detail+": timed out", err)
	}
	return newProviderError(KindUnavailable, provider, detail, err)
}

func checkAudio(provider string, audio Audio) error {
	if len(audio.Data) < minAudioBytes {
		return newProviderError(KindInvalidAudio, provider,
			fmt.Sprintf("audio too small (%d bytes), may be empty or corrupted", len(audio.Data)), nil)
	}
	return nil
}

package stt

import "context"

// Strategy names one transcription approach the router can try.
type Strategy string

const (
	StrategyPrimary   Strategy = "PRIMARY"
	StrategySecondary Strategy = "SECONDARY"
	StrategyHybrid    Strategy = "HYBRID"
)

// Provider defines the interface for speech-to-text strategies
type Provider interface {
	// Transcribe transcribes the audio and returns a single attempt.
	// Failures are returned as *ProviderError.
	Transcribe(ctx context.Context, audio Audio, language string) (*Attempt, error)

	// Name returns the name of the provider (e.g., "google", "openai-whisper")
	Name() string

	// Strategy returns the slot this provider fills in a try-order.
	Strategy() Strategy
}
